package repository

import (
	"context"
	"database/sql"
)

// Store groups the per-table repositories over one connection pool.
type Store struct {
	db       *sql.DB
	Accounts *AccountRepo
	Listings *ListingRepo
	Bookings *BookingRepo
	Reviews  *ReviewRepo
	Tokens   *TokenRepo
}

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Accounts: NewAccountRepo(db),
		Listings: NewListingRepo(db),
		Bookings: NewBookingRepo(db),
		Reviews:  NewReviewRepo(db),
		Tokens:   NewTokenRepo(db),
	}
}

// ClearDemoData deletes all reviews, bookings and listings, then every
// account that is not a superuser (with its refresh tokens).  Superusers
// and their sessions survive.  Runs in one transaction.
func (s *Store) ClearDemoData(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM reviews",
		"DELETE FROM bookings",
		"DELETE FROM listings",
		"DELETE FROM refresh_tokens WHERE account_id IN (SELECT id FROM accounts WHERE is_superuser = 0)",
		"DELETE FROM accounts WHERE is_superuser = 0",
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
}
