package middleware // contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-listing-service/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the account id and role claims into the request context.  The
// provided secret must match the one used when issuing tokens.  Wrap every
// write route with it; handlers read the caller via AccountID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxAccountID, claims.AccountID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// OptionalJWT sets the identity when a valid bearer token is present and
// otherwise lets the request through anonymously.  Used on routes, such as
// logout, that behave differently for authenticated callers.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					c.Set(CtxAccountID, claims.AccountID)
					c.Set(CtxRole, claims.Role)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
