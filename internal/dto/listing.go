package dto

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ListingRequest is the write representation of a listing.  The host is
// referenced by id only; listing_id and timestamps are server-assigned and
// therefore not part of the shape (unknown keys are ignored on decode).
type ListingRequest struct {
	HostID        *uint64 `json:"host_id" validate:"required"`
	Title         string  `json:"title" validate:"required,max=255"`
	Description   string  `json:"description" validate:"required"`
	Location      string  `json:"location" validate:"required,max=255"`
	PricePerNight Decimal `json:"price_per_night" validate:"required"`

	price decimal.Decimal
}

// ListingRequestFrom prefills a request with the stored values so a PATCH
// body can be decoded over it.
func ListingRequestFrom(l model.Listing) ListingRequest {
	host := l.HostID
	return ListingRequest{
		HostID:        &host,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: DecimalFrom(l.PricePerNight),
	}
}

// Validate checks field shapes and that host_id names an existing account.
// A *ValidationError is returned for client mistakes; any other error comes
// from refs.
func (r *ListingRequest) Validate(ctx context.Context, refs References) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)

	out := checkStruct(r)
	if r.PricePerNight != "" && !out.Has("price_per_night") {
		v, msg := parseMoney(r.PricePerNight)
		if msg != "" {
			out.Add("price_per_night", msg)
		}
		r.price = v
	}
	if err := checkAccountRef(ctx, refs, out, "host_id", r.HostID); err != nil {
		return err
	}
	return out.OrNil()
}

// ApplyTo copies the validated values onto l.  Identity and timestamps are
// left alone.
func (r *ListingRequest) ApplyTo(l *model.Listing) {
	l.HostID = *r.HostID
	l.Title = r.Title
	l.Description = r.Description
	l.Location = r.Location
	l.PricePerNight = r.price
}

// ListingResponse is the read representation: the host is embedded.
type ListingResponse struct {
	ListingID     string          `json:"listing_id"`
	Host          AccountResponse `json:"host"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	PricePerNight string          `json:"price_per_night"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewListingResponse converts a joined listing row.
func NewListingResponse(d model.ListingDetail) ListingResponse {
	return ListingResponse{
		ListingID:     d.ID,
		Host:          NewAccountResponse(d.Host),
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		PricePerNight: d.PricePerNight.StringFixed(moneyPlaces),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// NewListingResponses converts a slice, never returning nil.
func NewListingResponses(ds []model.ListingDetail) []ListingResponse {
	out := make([]ListingResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewListingResponse(d))
	}
	return out
}
