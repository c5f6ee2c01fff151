package dto

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ReviewRequest is the write representation of a review.  Rating is a
// pointer so an explicit 0 is reported as out of range rather than
// missing.
type ReviewRequest struct {
	ListingID string  `json:"listing_id" validate:"required"`
	UserID    *uint64 `json:"user_id" validate:"required"`
	Rating    *int    `json:"rating" validate:"required"`
	Comment   string  `json:"comment" validate:"required"`
}

// ReviewRequestFrom prefills a request from a stored review for PATCH.
func ReviewRequestFrom(rv model.Review) ReviewRequest {
	user, rating := rv.UserID, rv.Rating
	return ReviewRequest{
		ListingID: rv.ListingID,
		UserID:    &user,
		Rating:    &rating,
		Comment:   rv.Comment,
	}
}

// Validate checks field shapes, the rating bounds and both references.
func (r *ReviewRequest) Validate(ctx context.Context, refs References) error {
	r.ListingID = strings.TrimSpace(r.ListingID)

	out := checkStruct(r)
	if r.Rating != nil && !model.RatingInRange(*r.Rating) {
		out.Add("rating", MsgRatingRange)
	}
	if err := checkListingRef(ctx, refs, out, "listing_id", r.ListingID); err != nil {
		return err
	}
	if err := checkAccountRef(ctx, refs, out, "user_id", r.UserID); err != nil {
		return err
	}
	return out.OrNil()
}

// ApplyTo copies the validated values onto rv.
func (r *ReviewRequest) ApplyTo(rv *model.Review) {
	rv.ListingID = r.ListingID
	rv.UserID = *r.UserID
	rv.Rating = *r.Rating
	rv.Comment = r.Comment
}

// ReviewResponse embeds the reviewed listing and its author.
type ReviewResponse struct {
	ReviewID  string          `json:"review_id"`
	Listing   ListingResponse `json:"listing"`
	User      AccountResponse `json:"user"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewReviewResponse converts a joined review row.
func NewReviewResponse(d model.ReviewDetail) ReviewResponse {
	return ReviewResponse{
		ReviewID:  d.ID,
		Listing:   NewListingResponse(d.Listing),
		User:      NewAccountResponse(d.Author),
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

// NewReviewResponses converts a slice, never returning nil.
func NewReviewResponses(ds []model.ReviewDetail) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewReviewResponse(d))
	}
	return out
}
