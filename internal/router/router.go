// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/quickshow/quickshow-api/internal/config"
	"github.com/quickshow/quickshow-api/internal/handler"
	"github.com/quickshow/quickshow-api/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Show    *handler.ShowHandler
	Booking *handler.BookingHandler
	User    *handler.UserHandler
	Admin   *handler.AdminHandler
	Webhook *handler.WebhookHandler
}

// Register mounts all routes on e. The rate limiter covers the /api
// group except the payment webhook; the response cache covers only
// the public catalog reads.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	auth := middleware.JWTAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole("admin")

	api := e.Group("/api", limiter)

	// Public catalog reads. The literal now-playing route must be
	// registered before the :movieId parameter route.
	show := api.Group("/show")
	show.GET("", h.Show.ListShows, cache)
	show.GET("/now-playing", h.Show.NowPlaying, auth, adminOnly)
	show.GET("/:movieId", h.Show.GetShow, cache)

	bk := api.Group("/booking")
	bk.GET("/seats/:showId", h.Booking.OccupiedSeats)
	bk.POST("/create", h.Booking.Create, auth)

	user := api.Group("/user", auth)
	user.GET("/bookings", h.User.MyBookings)
	user.POST("/update-favorite", h.User.UpdateFavorite)
	user.GET("/favorites", h.User.ListFavorites)

	admin := api.Group("/admin", auth, adminOnly)
	admin.GET("/is-admin", h.Admin.IsAdmin)
	admin.POST("/add-show", h.Show.AddShow)
	admin.GET("/all-shows", h.Admin.AllShows)
	admin.GET("/all-bookings", h.Admin.AllBookings)
	admin.GET("/dashboard", h.Admin.Dashboard)

	// Provider confirmations are gated by the HMAC signature, not the
	// client rate limiter: a burst of settlements must never be 429'd
	// into the provider's retry queue.
	e.POST("/api/webhooks/payment", h.Webhook.PaymentCompleted)
}
