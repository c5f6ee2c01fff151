package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// BookingRepo encapsulates all database queries related to bookings.
// Date ordering and status validity are checked before a booking reaches
// this layer; overlapping bookings of the same listing are not rejected.
type BookingRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookingRepo constructs a BookingRepo with the provided DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, now: utcNow}
}

// Create inserts a booking, generating its UUID and CreatedAt.  An empty
// status is stored as pending.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	b.CreatedAt = r.now()
	const q = `INSERT INTO bookings (booking_id, listing_id, user_id, start_date, end_date, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.ListingID, b.UserID,
		b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.TotalPrice, string(b.Status), b.CreatedAt)
	return translate(err)
}

// GetByID fetches a booking with its listing, host and guest.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.BookingDetail, error) {
	ds := bookingDetailDataset().Where(goqu.I("b.booking_id").Eq(id))
	return queryOne(ctx, r.db, ds, scanBookingDetail, ErrBookingNotFound)
}

// List returns the bookings matching f, newest first.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	ds := bookingDetailDataset()
	if f.ListingID != "" {
		ds = ds.Where(goqu.I("b.listing_id").Eq(f.ListingID))
	}
	if f.UserID != nil {
		ds = ds.Where(goqu.I("b.user_id").Eq(*f.UserID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.I("b.status").Eq(string(f.Status)))
	}
	if f.StartAfter != nil {
		ds = ds.Where(goqu.I("b.start_date").Gte(f.StartAfter.Format(dateLayout)))
	}
	if f.StartBefore != nil {
		ds = ds.Where(goqu.I("b.start_date").Lte(f.StartBefore.Format(dateLayout)))
	}
	if p := likePattern(f.Search); p != "" {
		ds = ds.Where(goqu.Or(
			goqu.I("l.title").ILike(p),
			goqu.I("g.username").ILike(p),
		))
	}
	ds = ds.Order(goqu.I("b.created_at").Desc(), goqu.I("b.booking_id").Asc())
	return queryAll(ctx, r.db, ds, scanBookingDetail)
}

// Update overwrites every mutable column of an existing booking.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings SET listing_id = ?, user_id = ?, start_date = ?, end_date = ?, total_price = ?, status = ?
		WHERE booking_id = ?`
	res, err := r.db.ExecContext(ctx, q, b.ListingID, b.UserID,
		b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.TotalPrice, string(b.Status), b.ID)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res, ErrBookingNotFound)
}

// Delete removes a single booking.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE booking_id = ?", id)
	if err != nil {
		return err
	}
	return affectedOne(res, ErrBookingNotFound)
}
