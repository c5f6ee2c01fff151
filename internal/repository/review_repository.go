package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ReviewRepo encapsulates all database queries related to reviews.  The
// table carries a CHECK constraint on rating, so a value outside 1..5 is
// rejected here as ErrConstraint even if validation is bypassed.
type ReviewRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewReviewRepo constructs a ReviewRepo with the provided DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db, now: utcNow}
}

// Create inserts a review, generating its UUID and CreatedAt.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	rv.CreatedAt = r.now()
	const q = "INSERT INTO reviews (review_id, listing_id, user_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, rv.ID, rv.ListingID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt)
	return translate(err)
}

// GetByID fetches a review with its listing, host and author.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*model.ReviewDetail, error) {
	ds := reviewDetailDataset().Where(goqu.I("r.review_id").Eq(id))
	return queryOne(ctx, r.db, ds, scanReviewDetail, ErrReviewNotFound)
}

// List returns the reviews matching f, most recent first.
func (r *ReviewRepo) List(ctx context.Context, f model.ReviewFilter) ([]model.ReviewDetail, error) {
	ds := reviewDetailDataset()
	if f.ListingID != "" {
		ds = ds.Where(goqu.I("r.listing_id").Eq(f.ListingID))
	}
	if f.UserID != nil {
		ds = ds.Where(goqu.I("r.user_id").Eq(*f.UserID))
	}
	if f.Rating != 0 {
		ds = ds.Where(goqu.I("r.rating").Eq(f.Rating))
	}
	if p := likePattern(f.Search); p != "" {
		ds = ds.Where(goqu.Or(
			goqu.I("l.title").ILike(p),
			goqu.I("u.username").ILike(p),
			goqu.I("r.comment").ILike(p),
		))
	}
	ds = ds.Order(goqu.I("r.created_at").Desc(), goqu.I("r.review_id").Asc())
	return queryAll(ctx, r.db, ds, scanReviewDetail)
}

// Update overwrites the mutable columns of an existing review.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	const q = "UPDATE reviews SET listing_id = ?, user_id = ?, rating = ?, comment = ? WHERE review_id = ?"
	res, err := r.db.ExecContext(ctx, q, rv.ListingID, rv.UserID, rv.Rating, rv.Comment, rv.ID)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res, ErrReviewNotFound)
}

// Delete removes a single review.
func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE review_id = ?", id)
	if err != nil {
		return err
	}
	return affectedOne(res, ErrReviewNotFound)
}
