package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/lunchly/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/lunchly/internal/middleware" // JWT, role, cache and rate limit middleware
	"github.com/iliyamo/lunchly/internal/utils"      // staff roles
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check backed
// by db (nil skips the database ping).
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// ReservationDeps bundles the middleware shared by the reservation routes.
type ReservationDeps struct {
	JWTSecret string                   // empty leaves write routes open
	Cache     *middleware.ResponseCache // may be inert
	RateLimit echo.MiddlewareFunc      // applied to write routes; nil skips it
}

// RegisterReservations registers the reservation endpoints under /v1.  Reads
// are public and cached; writes are rate limited and, when a JWT secret is
// configured, restricted to the HOST role.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, deps ReservationDeps) {
	read := e.Group("/v1", deps.Cache.Middleware())
	read.GET("/customers/:id/reservations", h.ListByCustomer)
	read.GET("/reservations/:id", h.Get)

	writeMW := []echo.MiddlewareFunc{
		middleware.JWTAuth(deps.JWTSecret),
		middleware.RequireRole(deps.JWTSecret != "", utils.RoleHost),
	}
	if deps.RateLimit != nil {
		writeMW = append(writeMW, deps.RateLimit)
	}
	write := e.Group("/v1", writeMW...)
	write.POST("/customers/:id/reservations", h.Create)
	write.PUT("/reservations/:id", h.Update)
}
