package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// AccountRepo encapsulates all database queries related to accounts.
// Accounts are created by registration and the seed command; the rest of
// the service only reads them, except for the cascading delete.
type AccountRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewAccountRepo constructs an AccountRepo with the provided DB handle.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db, now: utcNow}
}

const accountSelect = "SELECT id, username, email, first_name, last_name, password_hash, is_superuser, created_at FROM accounts"

func scanAccount(s rowScanner) (*model.Account, error) {
	var a model.Account
	if err := s.Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash, &a.IsSuperuser, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account.  PasswordHash must already be set.  The
// email is normalised to lower case.  On success a.ID and a.CreatedAt are
// populated.  Duplicate usernames or emails surface as ErrConflict.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.CreatedAt = r.now()
	const q = "INSERT INTO accounts (username, email, first_name, last_name, password_hash, is_superuser, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, a.Username, a.Email, a.FirstName, a.LastName, a.PasswordHash, a.IsSuperuser, a.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an account by primary key or returns ErrAccountNotFound.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, accountSelect+" WHERE id = ?", id))
}

// GetByUsername fetches an account by its login name.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, accountSelect+" WHERE username = ? LIMIT 1", strings.TrimSpace(username)))
}

// Exists reports whether an account with id is present.
func (r *AccountRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM accounts WHERE id = ?", id)
}

// DeleteCascade removes an account together with everything that depends
// on it: reviews and bookings written by the account or placed against its
// listings, the listings it hosts, and its refresh tokens.  All statements
// run in one transaction.  ErrAccountNotFound is returned (and nothing is
// removed) when the account does not exist.
func (r *AccountRepo) DeleteCascade(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const hosted = "SELECT listing_id FROM listings WHERE host_id = ?"
		if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE user_id = ? OR listing_id IN ("+hosted+")", id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE user_id = ? OR listing_id IN ("+hosted+")", id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE host_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE account_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
		if err != nil {
			return err
		}
		return affectedOne(res, ErrAccountNotFound)
	})
}
