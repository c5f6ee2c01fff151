package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-listing-service/internal/handler"
	"github.com/iliyamo/rental-listing-service/internal/middleware"
	"github.com/iliyamo/rental-listing-service/internal/model"
)

// RegisterWrites registers the create, update and delete endpoints under
// /v1.  All routes require a valid JWT of either role.  The guards are per
// route so unknown /v1 paths still answer 404.
func RegisterWrites(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1")
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}

	// ---- Listings ----
	g.POST("/listings", h.Listings.Create, auth...)
	g.PUT("/listings/:id", h.Listings.Update, auth...)
	g.PATCH("/listings/:id", h.Listings.Update, auth...) // partial update
	g.DELETE("/listings/:id", h.Listings.Delete, auth...)

	// ---- Bookings ----
	g.POST("/bookings", h.Bookings.Create, auth...)
	g.PUT("/bookings/:id", h.Bookings.Update, auth...)
	g.PATCH("/bookings/:id", h.Bookings.Update, auth...)
	g.DELETE("/bookings/:id", h.Bookings.Delete, auth...)

	// ---- Reviews ----
	g.POST("/reviews", h.Reviews.Create, auth...)
	g.PUT("/reviews/:id", h.Reviews.Update, auth...)
	g.PATCH("/reviews/:id", h.Reviews.Update, auth...)
	g.DELETE("/reviews/:id", h.Reviews.Delete, auth...)
}

// RegisterAdmin registers superuser-only endpoints.  Deleting an account
// cascades to everything it owns, so it needs the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AccountHandler, jwtSecret string) {
	e.DELETE("/v1/accounts/:id", a.Delete,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
}
