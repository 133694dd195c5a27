package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-reservation/internal/config"
	"github.com/iliyamo/event-seat-reservation/internal/handler"
	"github.com/iliyamo/event-seat-reservation/internal/middleware"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

// Deps bundles what the routes need.  Redis and DB may be nil: the rate
// limiter and response cache then pass through and /healthz skips the
// database ping.
type Deps struct {
	JWTSecret   string
	Events      *handler.EventHandler
	Seats       *handler.SeatHandler
	Reservation *handler.ReservationHandler
	DB          handler.Pinger
	Redis       *redis.Client
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	Logger      *slog.Logger
}

// RegisterRoutes registers the health check, the public read endpoints and
// the authenticated seat flow on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	// Public reads.  Event documents are cached briefly; seat maps carry
	// live lock state and are never cached.
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Logger)
	e.GET("/events", d.Events.ListPublic, cache)
	e.GET("/events/:id", d.Events.Get, cache)
	e.GET("/events/:id/seats", d.Seats.List)

	auth := middleware.JWTAuth(d.JWTSecret)
	org := middleware.RequireRole(service.RoleOrg)

	// Organiser endpoints.  Ownership is checked by the services.
	e.POST("/events", d.Events.Create, auth, org)
	e.GET("/org/events", d.Events.ListMine, auth, org)
	e.POST("/events/:id/seats", d.Seats.Provision, auth, org)
	e.PATCH("/events/:id/stage-shape", d.Seats.UpdateStageShape, auth, org)

	// Seat flow, open to any authenticated role and rate limited per
	// user and route.
	seats := e.Group("/seats", auth, middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger))
	seats.POST("/:id/lock", d.Seats.Lock)
	seats.POST("/:id/confirm", d.Seats.Confirm)
	seats.POST("/:id/release", d.Seats.Release)

	e.GET("/me/reservations", d.Reservation.ListMine, auth)
}
