package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/repository"
)

// AccountHandler serves /v1/accounts: the account itself and the records
// it owns.
type AccountHandler struct {
	Accounts AccountStore
	Listings ListingStore
	Bookings BookingStore
	Reviews  ReviewStore
}

func NewAccountHandler(a AccountStore, l ListingStore, b BookingStore, r ReviewStore) *AccountHandler {
	return &AccountHandler{Accounts: a, Listings: l, Bookings: b, Reviews: r}
}

// Get handles GET /v1/accounts/:id.
func (h *AccountHandler) Get(c echo.Context) error {
	id, ok := parseAccountID(c)
	if !ok {
		return respondError(c, repository.ErrAccountNotFound)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewAccountResponse(*a))
}

// Delete handles DELETE /v1/accounts/:id.  The account's listings (with
// their bookings and reviews), its own bookings and reviews, and its
// refresh tokens are removed in the same transaction.
func (h *AccountHandler) Delete(c echo.Context) error {
	id, ok := parseAccountID(c)
	if !ok {
		return respondError(c, repository.ErrAccountNotFound)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Accounts.DeleteCascade(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListListings handles GET /v1/accounts/:id/listings.
func (h *AccountHandler) ListListings(c echo.Context) error {
	f, err := dto.ListingFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	id, ok := parseAccountID(c)
	if !ok {
		return respondError(c, repository.ErrAccountNotFound)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	f.HostID = &id
	ls, err := h.Listings.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewListingResponses(ls)))
}

// ListBookings handles GET /v1/accounts/:id/bookings: bookings made by the
// account as a guest.
func (h *AccountHandler) ListBookings(c echo.Context) error {
	f, err := dto.BookingFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	id, ok := parseAccountID(c)
	if !ok {
		return respondError(c, repository.ErrAccountNotFound)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	f.UserID = &id
	bs, err := h.Bookings.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewBookingResponses(bs)))
}

// ListReviews handles GET /v1/accounts/:id/reviews.
func (h *AccountHandler) ListReviews(c echo.Context) error {
	f, err := dto.ReviewFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	id, ok := parseAccountID(c)
	if !ok {
		return respondError(c, repository.ErrAccountNotFound)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	f.UserID = &id
	rs, err := h.Reviews.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewReviewResponses(rs)))
}
