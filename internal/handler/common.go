package handler // contains HTTP handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/model"
	"github.com/iliyamo/rental-listing-service/internal/repository"
)

// opTimeout bounds the storage work of a single request.
const opTimeout = 5 * time.Second

// AccountStore is the account persistence used by the handlers.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id uint64) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	DeleteCascade(ctx context.Context, id uint64) error
}

// ListingStore is the listing persistence used by the handlers.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.ListingDetail, error)
	List(ctx context.Context, f model.ListingFilter) ([]model.ListingDetail, error)
	Update(ctx context.Context, l *model.Listing) error
	Exists(ctx context.Context, id string) (bool, error)
	DeleteCascade(ctx context.Context, id string) error
}

// BookingStore is the booking persistence used by the handlers.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.BookingDetail, error)
	List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error)
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id string) error
}

// ReviewStore is the review persistence used by the handlers.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id string) (*model.ReviewDetail, error)
	List(ctx context.Context, f model.ReviewFilter) ([]model.ReviewDetail, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id string) error
}

// TokenStore persists refresh-token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, accountID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForAccount(ctx context.Context, accountID uint64) error
}

// references resolves foreign keys for dto validation.
type references struct {
	accounts AccountStore
	listings ListingStore
}

func (r references) AccountExists(ctx context.Context, id uint64) (bool, error) {
	return r.accounts.Exists(ctx, id)
}

func (r references) ListingExists(ctx context.Context, id string) (bool, error) {
	return r.listings.Exists(ctx, id)
}

// requestContext derives the bounded context for storage calls.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), opTimeout)
}

// items wraps a collection the way every list endpoint renders it.
func items(v any) echo.Map { return echo.Map{"items": v} }

// errBadBody marks a body that could not be decoded at all.
var errBadBody = errors.New("invalid request body")

// bindBody decodes the JSON body into dst.  Fields absent from the body keep
// their current value, which is how PATCH overlays stored data.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// parseAccountID reads the numeric :id path parameter.
func parseAccountID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// respondError maps domain errors onto HTTP responses in one place.
// Unexpected errors are logged with the request context and hidden from
// the client.
func respondError(c echo.Context, err error) error {
	var verr *dto.ValidationError
	switch {
	case errors.Is(err, errBadBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errBadBody.Error()})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "referenced object does not exist"})
	case errors.Is(err, repository.ErrConstraint):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value violates a storage constraint"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "timeout"})
	}
	log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
