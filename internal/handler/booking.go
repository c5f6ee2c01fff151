package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/model"
	"github.com/iliyamo/rental-listing-service/internal/queue"
	"github.com/iliyamo/rental-listing-service/internal/service"
)

// BookingHandler serves /v1/bookings.
type BookingHandler struct {
	Bookings BookingStore
	Events   service.EventPublisher // optional
	refs     dto.References
}

func NewBookingHandler(a AccountStore, l ListingStore, b BookingStore, events service.EventPublisher) *BookingHandler {
	return &BookingHandler{Bookings: b, Events: events, refs: references{accounts: a, listings: l}}
}

// List handles GET /v1/bookings with the status, start_after, start_before
// and search filters.
func (h *BookingHandler) List(c echo.Context) error {
	f, err := dto.BookingFilterFrom(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	bs, err := h.Bookings.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items(dto.NewBookingResponses(bs)))
}

// Create handles POST /v1/bookings and announces the new booking on the
// event queue.  A failed publish is logged; the booking stands.
func (h *BookingHandler) Create(c echo.Context) error {
	var req dto.BookingRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	var b model.Booking
	req.ApplyTo(&b)
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return respondError(c, err)
	}
	d, err := h.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return respondError(c, err)
	}

	if h.Events != nil {
		if err := h.Events.PublishBookingCreated(ctx, queue.NewBookingCreatedEvent(*d)); err != nil {
			log.Warn().Err(err).Str("booking_id", d.ID).Msg("booking.created not published")
		}
	}
	return c.JSON(http.StatusCreated, dto.NewBookingResponse(*d))
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBookingResponse(*d))
}

// Update handles PUT and PATCH /v1/bookings/:id.  The date ordering is
// checked against the merged values, so a PATCH of only end_date is
// validated against the stored start_date.  Status defaults to pending on
// create only; a PUT without it keeps the stored status.
func (h *BookingHandler) Update(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	existing, err := h.Bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	var req dto.BookingRequest
	if c.Request().Method == http.MethodPatch {
		req = dto.BookingRequestFrom(existing.Booking)
	}
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if strings.TrimSpace(req.Status) == "" {
		req.Status = string(existing.Status)
	}
	if err := req.Validate(ctx, h.refs); err != nil {
		return respondError(c, err)
	}
	b := existing.Booking
	req.ApplyTo(&b)
	if err := h.Bookings.Update(ctx, &b); err != nil {
		return respondError(c, err)
	}
	d, err := h.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBookingResponse(*d))
}

// Delete handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Bookings.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
