package model

import "time"

// Rating bounds, inclusive.  Storage carries the same CHECK constraint.
const (
	MinRating = 1
	MaxRating = 5
)

// RatingInRange reports whether r lies within [MinRating, MaxRating].
func RatingInRange(r int) bool { return r >= MinRating && r <= MaxRating }

// Review is a rating and comment left by an account against a listing.
// Reviews are listed newest first.
type Review struct {
	ID        string    // reviews.review_id (UUID)
	ListingID string    // reviews.listing_id
	UserID    uint64    // reviews.user_id
	Rating    int       // reviews.rating
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}

// ReviewDetail is a review joined with its listing (and host) and author.
type ReviewDetail struct {
	Review
	Listing ListingDetail
	Author  Account
}

// ReviewFilter narrows a review query.
type ReviewFilter struct {
	ListingID string
	UserID    *uint64
	Rating    int    // 0 means any
	Search    string // listing title, username or comment
}
