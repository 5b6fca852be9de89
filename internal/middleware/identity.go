package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID reads the uint64 user id the JWT middleware stored in the
// Echo context; rate-limit keys fall back to "anon" for unauthenticated
// routes such as login.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or
// "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if id, ok := v.(uint64); ok && id > 0 {
            return strconv.FormatUint(id, 10)
        }
    }
    return "anon"
}
