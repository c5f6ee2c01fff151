package middleware

// identity.go defines the context keys set by JWTAuth and helpers shared
// across middleware files and handlers.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
	CtxAccountID = "user_id" // uint64
	CtxRole      = "role"    // string
)

// AccountID returns the authenticated account id, if any.
func AccountID(c echo.Context) (uint64, bool) {
	switch v := c.Get(CtxAccountID).(type) {
	case uint64:
		return v, v != 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id != 0
	}
	return 0, false
}

// Role returns the role claim of the authenticated account, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// identity names the caller for rate-limit keys: the account id when a
// token was verified, "anon" otherwise.
func identity(c echo.Context) string {
	if id, ok := AccountID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
