package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ListingHandler serves /v1/listings and the per-listing booking and
// review collections.
type ListingHandler struct {
	Listings ListingStore
	Bookings BookingStore
	Reviews  ReviewStore
	refs     dto.References
}

func NewListingHandler(a AccountStore, l ListingStore, b BookingStore, r ReviewStore) *ListingHandler {
	return &ListingHandler{Listings: l, Bookings: b, Reviews: r, refs: references{accounts: a, listings: l}}
}

// List handles GET /v1/listings with the location, created_after,
// created_before and search filters.
func (h *ListingHandler) List(c echo.Context) error {
	f, err := dto.ListingFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ls, err := h.Listings.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewListingResponses(ls)))
}

// Create handles POST /v1/listings.
func (h *ListingHandler) Create(c echo.Context) error {
	var req dto.ListingRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	var l model.Listing
	req.ApplyTo(&l)
	if err := h.Listings.Create(ctx, &l); err != nil {
		return respondError(c, err)
	}
	d, err := h.Listings.GetByID(ctx, l.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewListingResponse(*d))
}

// Get handles GET /v1/listings/:id.
func (h *ListingHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Listings.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewListingResponse(*d))
}

// Update handles PUT (full) and PATCH (partial) /v1/listings/:id.
func (h *ListingHandler) Update(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	existing, err := h.Listings.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	var req dto.ListingRequest
	if c.Request().Method == http.MethodPatch {
		req = dto.ListingRequestFrom(existing.Listing)
	}
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	l := existing.Listing
	req.ApplyTo(&l)
	if err := h.Listings.Update(ctx, &l); err != nil {
		return respondError(c, err)
	}
	d, err := h.Listings.GetByID(ctx, l.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewListingResponse(*d))
}

// Delete handles DELETE /v1/listings/:id.  The listing's bookings and
// reviews go with it.
func (h *ListingHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Listings.DeleteCascade(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/listings/:id/bookings.
func (h *ListingHandler) ListBookings(c echo.Context) error {
	f, err := dto.BookingFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if _, err := h.Listings.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	f.ListingID = id
	bs, err := h.Bookings.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewBookingResponses(bs)))
}

// ListReviews handles GET /v1/listings/:id/reviews, newest first.
func (h *ListingHandler) ListReviews(c echo.Context) error {
	f, err := dto.ReviewFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if _, err := h.Listings.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	f.ListingID = id
	rs, err := h.Reviews.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewReviewResponses(rs)))
}
