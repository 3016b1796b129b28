package middleware

// identity.go defines helpers shared across middleware files for naming
// the caller in cache and rate-limit keys.  Anonymous requests (public
// routes before JWTAuth runs) are keyed as "guest".

import (
	"github.com/labstack/echo/v4"
)

// currentUsername extracts the authenticated username stored by JWTAuth.
// It returns "guest" when no user is authenticated.
func currentUsername(c echo.Context) string {
	if v := c.Get("username"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "guest"
}
