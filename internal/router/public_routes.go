package router

import "github.com/labstack/echo/v4"

// RegisterPublic registers the read endpoints.  No token is needed to
// browse listings, bookings, reviews or accounts.
func RegisterPublic(e *echo.Echo, h Handlers) {
	g := e.Group("/v1")

	// ---- Listings ----
	g.GET("/listings", h.Listings.List)
	g.GET("/listings/:id", h.Listings.Get)
	g.GET("/listings/:id/bookings", h.Listings.ListBookings)
	g.GET("/listings/:id/reviews", h.Listings.ListReviews)

	// ---- Bookings ----
	g.GET("/bookings", h.Bookings.List)
	g.GET("/bookings/:id", h.Bookings.Get)

	// ---- Reviews ----
	g.GET("/reviews", h.Reviews.List)
	g.GET("/reviews/:id", h.Reviews.Get)

	// ---- Accounts ----
	g.GET("/accounts/:id", h.Accounts.Get)
	g.GET("/accounts/:id/listings", h.Accounts.ListListings)
	g.GET("/accounts/:id/bookings", h.Accounts.ListBookings)
	g.GET("/accounts/:id/reviews", h.Accounts.ListReviews)
}
