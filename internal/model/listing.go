package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a rentable property owned by a host account.  It maps to the
// `listings` table.  PricePerNight is DECIMAL(10,2); negative prices are
// not rejected anywhere.
type Listing struct {
	ID            string          // listings.listing_id (UUID)
	HostID        uint64          // listings.host_id
	Title         string          // listings.title
	Description   string          // listings.description
	Location      string          // listings.location
	PricePerNight decimal.Decimal // listings.price_per_night
	CreatedAt     time.Time       // listings.created_at
	UpdatedAt     time.Time       // listings.updated_at
}

// ListingDetail is a listing joined with its host account.
type ListingDetail struct {
	Listing
	Host Account
}

// ListingFilter narrows a listing query.  Zero values mean "no filter".
type ListingFilter struct {
	HostID        *uint64
	Location      string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string // substring over title, description, location
}
