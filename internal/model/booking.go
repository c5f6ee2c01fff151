package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the closed set of states a booking can be in.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

// BookingStatuses lists every valid status in display order.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCanceled}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCanceled:
		return true
	}
	return false
}

// ParseBookingStatus converts a wire value into a BookingStatus.  The empty
// string yields the default (pending).
func ParseBookingStatus(v string) (BookingStatus, error) {
	if v == "" {
		return BookingPending, nil
	}
	s := BookingStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown booking status %q", v)
	}
	return s, nil
}

// Booking records a guest's reservation of a listing for a date range.
// StartDate < EndDate is checked by the dto layer, not by storage.
//
// Fields:
//  ID         – bookings.booking_id (UUID).
//  ListingID  – listing being reserved.
//  UserID     – guest account.
//  StartDate  – first night (date only, UTC midnight).
//  EndDate    – checkout date (date only, UTC midnight).
//  TotalPrice – amount supplied by the caller, stored verbatim.
//  Status     – pending, confirmed or canceled.
//  CreatedAt  – creation timestamp.
type Booking struct {
	ID         string
	ListingID  string
	UserID     uint64
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice decimal.Decimal
	Status     BookingStatus
	CreatedAt  time.Time
}

// Nights returns the number of nights covered by the booking.
func (b Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// BookingDetail is a booking joined with its listing (and host) and guest.
type BookingDetail struct {
	Booking
	Listing ListingDetail
	Guest   Account
}

// BookingFilter narrows a booking query.
type BookingFilter struct {
	ListingID   string
	UserID      *uint64
	Status      BookingStatus
	StartAfter  *time.Time
	StartBefore *time.Time
	Search      string // listing title or guest username
}
