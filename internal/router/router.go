package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/handler"
	"github.com/iliyamo/rental-listing-service/internal/middleware"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Health   echo.HandlerFunc
	Auth     *handler.AuthHandler
	Listings *handler.ListingHandler
	Bookings *handler.BookingHandler
	Reviews  *handler.ReviewHandler
	Accounts *handler.AccountHandler
}

// Edge holds the optional Redis-backed middleware settings.  A nil Redis
// client turns both features into pass-throughs.
type Edge struct {
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Setup installs the global middleware chain and every route.  The order
// matters: the request id must exist before the logger reads it, and the
// optional identity must be known before the rate limiter keys on it.
func Setup(e *echo.Echo, h Handlers, edge Edge, jwtSecret string) {
	e.HideBanner = true
	e.Validator = dto.Validator{}

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(middleware.OptionalJWT(jwtSecret))
	e.Use(middleware.NewTokenBucket(edge.RateLimit, edge.Redis))
	e.Use(middleware.NewRedisCache(edge.Cache, edge.Redis))

	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, jwtSecret)
	RegisterPublic(e, h)
	RegisterWrites(e, h, jwtSecret)
	RegisterAdmin(e, h.Accounts, jwtSecret)
}

// RegisterRoutes registers routes that do not require authentication and
// sit outside /v1.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers all authentication-related routes.  Token
// exchanges live under /v1/auth; /v1/me needs a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)             // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // access only
	// a bearer logs out every session; a refresh_token body just that one
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}
