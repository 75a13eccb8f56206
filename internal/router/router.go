package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-reconciliation/internal/handler"
	"github.com/iliyamo/booking-reconciliation/internal/middleware"
	"github.com/iliyamo/booking-reconciliation/internal/utils"
)

// RegisterRoutes registers the unauthenticated probes: /healthz for
// liveness and /readyz, which pings the database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// Options carries the middleware the protected group is wrapped in.
// Nil entries are skipped.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterImports registers the operator API under /v1.  Every route
// requires a valid token with the OPERATOR role and is rate limited;
// booking reads additionally go through the response cache.
func RegisterImports(e *echo.Echo, h *handler.ImportHandler, opts Options) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(opts.JWTSecret))
	g.Use(middleware.RequireRole(utils.RoleOperator))
	if opts.RateLimit != nil {
		g.Use(opts.RateLimit)
	}

	g.POST("/imports", h.Import)

	var read []echo.MiddlewareFunc
	if opts.Cache != nil {
		read = append(read, opts.Cache)
	}
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/:id", h.GetBooking, read...)
}
