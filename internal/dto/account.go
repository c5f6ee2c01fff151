package dto

import (
	"context"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// References answers foreign-key existence questions during validation.
type References interface {
	AccountExists(ctx context.Context, id uint64) (bool, error)
	ListingExists(ctx context.Context, id string) (bool, error)
}

// AccountResponse is the public representation of an account.  It never
// carries the password hash or the superuser flag.
type AccountResponse struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewAccountResponse converts a model.Account.
func NewAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

// checkAccountRef adds an invalid-pk error to out when id is set but does
// not resolve.  Fields that already failed are not checked again.
func checkAccountRef(ctx context.Context, refs References, out *ValidationError, field string, id *uint64) error {
	if id == nil || out.Has(field) {
		return nil
	}
	ok, err := refs.AccountExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		out.Add(field, invalidPK(*id))
	}
	return nil
}

func checkListingRef(ctx context.Context, refs References, out *ValidationError, field, id string) error {
	if id == "" || out.Has(field) {
		return nil
	}
	ok, err := refs.ListingExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		out.Add(field, invalidPK(id))
	}
	return nil
}
