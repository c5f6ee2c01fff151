// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// between failure scenarios with errors.Is without inspecting driver
// messages.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the parent of every "<entity> not found" error.
var ErrNotFound = errors.New("not found")

var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("review %w", ErrNotFound)
)

// ErrForbidden is returned when the caller attempts an operation it is not
// allowed to perform.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict wraps unique-key violations (MySQL 1062), such as a duplicate
// username.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidReference wraps foreign-key violations (MySQL 1451/1452): the
// row points at an account or listing that does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// ErrConstraint wraps CHECK constraint violations (MySQL 3819), e.g. a
// rating outside 1..5 that slipped past validation.
var ErrConstraint = errors.New("constraint violated")

// MySQL server error numbers mapped by translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlCheckConstraint = 3819
)

// translate maps driver errors onto the sentinels above, keeping the
// original error in the chain.  Other errors pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case mysqlRowIsReferenced, mysqlNoReferencedRow:
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	case mysqlCheckConstraint:
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}
