// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// BookingCreatedEvent is published after a booking is stored.  It carries
// enough of the listing and guest for consumers to log or notify without
// querying the primary database.
type BookingCreatedEvent struct {
	BookingID     string `json:"booking_id"`
	ListingID     string `json:"listing_id"`
	ListingTitle  string `json:"listing_title"`
	Location      string `json:"location"`
	HostID        uint64 `json:"host_id"`
	GuestID       uint64 `json:"guest_id"`
	GuestUsername string `json:"guest_username"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Nights        int    `json:"nights"`
	TotalPrice    string `json:"total_price"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// NewBookingCreatedEvent builds the event from a joined booking row.
func NewBookingCreatedEvent(d model.BookingDetail) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID:     d.ID,
		ListingID:     d.ListingID,
		ListingTitle:  d.Listing.Title,
		Location:      d.Listing.Location,
		HostID:        d.Listing.HostID,
		GuestID:       d.UserID,
		GuestUsername: d.Guest.Username,
		StartDate:     d.StartDate.Format("2006-01-02"),
		EndDate:       d.EndDate.Format("2006-01-02"),
		Nights:        d.Nights(),
		TotalPrice:    d.TotalPrice.StringFixed(2),
		Status:        string(d.Status),
		CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
