package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/model"
)

// ReviewHandler serves /v1/reviews.
type ReviewHandler struct {
	Reviews ReviewStore
	refs    dto.References
}

func NewReviewHandler(a AccountStore, l ListingStore, r ReviewStore) *ReviewHandler {
	return &ReviewHandler{Reviews: r, refs: references{accounts: a, listings: l}}
}

// List handles GET /v1/reviews, newest first.
func (h *ReviewHandler) List(c echo.Context) error {
	f, err := dto.ReviewFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	rs, err := h.Reviews.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewReviewResponses(rs)))
}

// Create handles POST /v1/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req dto.ReviewRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	var rv model.Review
	req.ApplyTo(&rv)
	if err := h.Reviews.Create(ctx, &rv); err != nil {
		return respondError(c, err)
	}
	d, err := h.Reviews.GetByID(ctx, rv.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewReviewResponse(*d))
}

// Get handles GET /v1/reviews/:id.
func (h *ReviewHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewReviewResponse(*d))
}

// Update handles PUT and PATCH /v1/reviews/:id.
func (h *ReviewHandler) Update(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	existing, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	var req dto.ReviewRequest
	if c.Request().Method == http.MethodPatch {
		req = dto.ReviewRequestFrom(existing.Review)
	}
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	rv := existing.Review
	req.ApplyTo(&rv)
	if err := h.Reviews.Update(ctx, &rv); err != nil {
		return respondError(c, err)
	}
	d, err := h.Reviews.GetByID(ctx, rv.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewReviewResponse(*d))
}

// Delete handles DELETE /v1/reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Reviews.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
