package middleware

import "github.com/labstack/echo/v4"

// StaffID returns the subject stored by JWTAuth, or "" when the request is
// unauthenticated.
func StaffID(c echo.Context) string {
    s, _ := c.Get(ctxStaffID).(string)
    return s
}

// staffID is StaffID with "anon" for unauthenticated requests, used to build
// rate limit keys.
func staffID(c echo.Context) string {
    if s := StaffID(c); s != "" {
        return s
    }
    return "anon"
}
