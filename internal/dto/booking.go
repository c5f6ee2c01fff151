package dto

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// BookingRequest is the write representation of a booking.  Status may be
// omitted on create, in which case the booking starts as pending.
type BookingRequest struct {
	ListingID  string  `json:"listing_id" validate:"required"`
	UserID     *uint64 `json:"user_id" validate:"required"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	TotalPrice Decimal `json:"total_price" validate:"required"`
	Status     string  `json:"status" validate:"omitempty,oneof=pending confirmed canceled"`

	start, end time.Time
	total      decimal.Decimal
}

// BookingRequestFrom prefills a request from a stored booking for PATCH.
func BookingRequestFrom(b model.Booking) BookingRequest {
	user := b.UserID
	return BookingRequest{
		ListingID:  b.ListingID,
		UserID:     &user,
		StartDate:  formatDate(b.StartDate),
		EndDate:    formatDate(b.EndDate),
		TotalPrice: DecimalFrom(b.TotalPrice),
		Status:     string(b.Status),
	}
}

// Validate checks field shapes, the date ordering and both references.
// The total price is stored as given; it is not derived from the nightly
// rate.
func (r *BookingRequest) Validate(ctx context.Context, refs References) error {
	r.ListingID = strings.TrimSpace(r.ListingID)
	r.Status = strings.TrimSpace(r.Status)

	out := checkStruct(r)

	startOK, endOK := false, false
	if r.StartDate != "" && !out.Has("start_date") {
		if r.start, startOK = parseDate(r.StartDate); !startOK {
			out.Add("start_date", MsgInvalidDate)
		}
	}
	if r.EndDate != "" && !out.Has("end_date") {
		if r.end, endOK = parseDate(r.EndDate); !endOK {
			out.Add("end_date", MsgInvalidDate)
		}
	}
	if startOK && endOK && !r.start.Before(r.end) {
		out.Add("end_date", MsgEndBeforeStart)
	}

	if r.TotalPrice != "" && !out.Has("total_price") {
		v, msg := parseMoney(r.TotalPrice)
		if msg != "" {
			out.Add("total_price", msg)
		}
		r.total = v
	}

	if err := checkListingRef(ctx, refs, out, "listing_id", r.ListingID); err != nil {
		return err
	}
	if err := checkAccountRef(ctx, refs, out, "user_id", r.UserID); err != nil {
		return err
	}
	return out.OrNil()
}

// ApplyTo copies the validated values onto b.
func (r *BookingRequest) ApplyTo(b *model.Booking) {
	b.ListingID = r.ListingID
	b.UserID = *r.UserID
	b.StartDate = r.start
	b.EndDate = r.end
	b.TotalPrice = r.total
	// oneof already rejected anything outside the set
	b.Status, _ = model.ParseBookingStatus(r.Status)
}

// BookingResponse embeds the full listing (with its host) and the guest.
type BookingResponse struct {
	BookingID  string          `json:"booking_id"`
	Listing    ListingResponse `json:"listing"`
	User       AccountResponse `json:"user"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalPrice string          `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewBookingResponse converts a joined booking row.
func NewBookingResponse(d model.BookingDetail) BookingResponse {
	return BookingResponse{
		BookingID:  d.ID,
		Listing:    NewListingResponse(d.Listing),
		User:       NewAccountResponse(d.Guest),
		StartDate:  formatDate(d.StartDate),
		EndDate:    formatDate(d.EndDate),
		TotalPrice: d.TotalPrice.StringFixed(moneyPlaces),
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
	}
}

// NewBookingResponses converts a slice, never returning nil.
func NewBookingResponses(ds []model.BookingDetail) []BookingResponse {
	out := make([]BookingResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewBookingResponse(d))
	}
	return out
}
