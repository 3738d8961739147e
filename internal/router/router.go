package router // router wires HTTP routes to their handlers

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/bhevents/souq-stall-booking/internal/config"
    "github.com/bhevents/souq-stall-booking/internal/handler"
    "github.com/bhevents/souq-stall-booking/internal/middleware"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
    Stalls  *handler.StallsHandler
    Booking *handler.BookingHandler
    Admin   *handler.AdminHandler
    Auth    *handler.AuthHandler
}

// Register attaches all routes.  Public reads and the session endpoints are
// anonymous; the booking submit carries the Redis rate limit; everything
// under /v1/admin requires the admin session cookie.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
    e.GET("/healthz", handler.Health)

    v1 := e.Group("/v1")

    // Public read surface.
    v1.GET("/layouts", h.Stalls.GetLayouts)
    v1.GET("/stalls", h.Stalls.GetStalls)
    v1.GET("/stalls/:id", h.Stalls.GetStall)

    // Anonymous visitor session: selection state machine over HTTP.
    v1.GET("/session", h.Booking.GetSession)
    v1.POST("/session/layout", h.Booking.SwitchLayout)
    v1.POST("/session/tap", h.Booking.Tap)
    v1.POST("/session/deselect", h.Booking.Deselect)
    v1.POST("/session/form/open", h.Booking.OpenForm)
    v1.POST("/session/form/cancel", h.Booking.CancelForm)

    // The one public mutation, behind the token bucket.
    v1.POST("/bookings", h.Booking.Submit, middleware.BookingRateLimit(rlCfg, rdb))

    // Admin login/logout and session probe.
    v1.POST("/auth/login", h.Auth.Login)
    v1.POST("/auth/logout", h.Auth.Logout)
    v1.GET("/me", h.Auth.Me, middleware.AdminAuth(jwtSecret))

    // Privileged dashboard operations.
    admin := v1.Group("/admin")
    admin.Use(middleware.AdminAuth(jwtSecret))
    admin.GET("/stalls", h.Admin.ListStalls)
    admin.PATCH("/stalls/:id", h.Admin.UpdateStatus)
    admin.POST("/seed", h.Admin.Seed)
}
