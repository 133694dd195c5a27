package middleware

// identity.go defines the context keys JWTAuth fills and the accessors
// handlers and other middleware use to read them.

import "github.com/labstack/echo/v4"

const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user id, or "" when the request is
// anonymous.
func UserID(c echo.Context) string {
    s, _ := c.Get(ctxUserID).(string)
    return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
    s, _ := c.Get(ctxRole).(string)
    return s
}

// SetIdentity stores the caller in the echo context.
func SetIdentity(c echo.Context, userID, role string) {
    c.Set(ctxUserID, userID)
    c.Set(ctxRole, role)
}
