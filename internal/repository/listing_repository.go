package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ListingRepo encapsulates all database queries related to listings.  Reads
// always join the host account so callers receive a ListingDetail.
type ListingRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewListingRepo constructs a ListingRepo with the provided DB handle.
func NewListingRepo(db *sql.DB) *ListingRepo {
	return &ListingRepo{db: db, now: utcNow}
}

// Create inserts a new listing.  A UUID is generated when l.ID is empty,
// and CreatedAt/UpdatedAt are both set to the current time.  A host_id
// that does not reference an account surfaces as ErrInvalidReference.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := r.now()
	l.CreatedAt, l.UpdatedAt = now, now
	const q = `INSERT INTO listings (listing_id, host_id, title, description, location, price_per_night, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, l.ID, l.HostID, l.Title, l.Description, l.Location, l.PricePerNight, l.CreatedAt, l.UpdatedAt)
	return translate(err)
}

// GetByID fetches a listing with its host or returns ErrListingNotFound.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*model.ListingDetail, error) {
	ds := listingDetailDataset().Where(goqu.I("l.listing_id").Eq(id))
	return queryOne(ctx, r.db, ds, scanListingDetail, ErrListingNotFound)
}

// List returns the listings matching f, newest first.
func (r *ListingRepo) List(ctx context.Context, f model.ListingFilter) ([]model.ListingDetail, error) {
	ds := listingDetailDataset()
	if f.HostID != nil {
		ds = ds.Where(goqu.I("l.host_id").Eq(*f.HostID))
	}
	if f.Location != "" {
		ds = ds.Where(goqu.I("l.location").Eq(f.Location))
	}
	if f.CreatedAfter != nil {
		ds = ds.Where(goqu.I("l.created_at").Gte(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		ds = ds.Where(goqu.I("l.created_at").Lt(*f.CreatedBefore))
	}
	if p := likePattern(f.Search); p != "" {
		ds = ds.Where(goqu.Or(
			goqu.I("l.title").ILike(p),
			goqu.I("l.description").ILike(p),
			goqu.I("l.location").ILike(p),
		))
	}
	ds = ds.Order(goqu.I("l.created_at").Desc(), goqu.I("l.listing_id").Asc())
	return queryAll(ctx, r.db, ds, scanListingDetail)
}

// Update overwrites the mutable fields of an existing listing.  UpdatedAt
// never moves backwards: if the clock reads earlier than the stored value,
// the stored value is kept.  CreatedAt is left untouched.
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	now := r.now()
	if now.After(l.UpdatedAt) {
		l.UpdatedAt = now
	}
	const q = `UPDATE listings SET host_id = ?, title = ?, description = ?, location = ?, price_per_night = ?, updated_at = ?
		WHERE listing_id = ?`
	res, err := r.db.ExecContext(ctx, q, l.HostID, l.Title, l.Description, l.Location, l.PricePerNight, l.UpdatedAt, l.ID)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res, ErrListingNotFound)
}

// Exists reports whether a listing with id is present.
func (r *ListingRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM listings WHERE listing_id = ?", id)
}

// DeleteCascade removes a listing and its reviews and bookings in one
// transaction.  Other listings and all accounts are unaffected.
func (r *ListingRepo) DeleteCascade(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE listing_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE listing_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE listing_id = ?", id)
		if err != nil {
			return err
		}
		return affectedOne(res, ErrListingNotFound)
	})
}
