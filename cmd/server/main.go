package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/quickshow/quickshow-api/internal/booking"
	"github.com/quickshow/quickshow-api/internal/catalog"
	"github.com/quickshow/quickshow-api/internal/config"
	"github.com/quickshow/quickshow-api/internal/database"
	"github.com/quickshow/quickshow-api/internal/handler"
	"github.com/quickshow/quickshow-api/internal/payment"
	"github.com/quickshow/quickshow-api/internal/queue"
	"github.com/quickshow/quickshow-api/internal/repository"
	"github.com/quickshow/quickshow-api/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}
	cancel()

	movieRepo := repository.NewMovieRepo(db)
	showRepo := repository.NewShowRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	reservations := repository.NewReservationStore(db, showRepo, bookingRepo)

	grid := booking.SeatGrid{Rows: cfg.SeatRows, Cols: cfg.SeatCols}
	engine := booking.NewEngine(reservations, grid, cfg.MaxSeatsPerBooking)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	watchmode := &catalog.WatchmodeClient{
		BaseURL:    cfg.WatchmodeBaseURL,
		APIKey:     cfg.WatchmodeAPIKey,
		HTTPClient: httpClient,
	}
	omdb := &catalog.OMDbClient{
		BaseURL:    cfg.OMDbBaseURL,
		APIKey:     cfg.OMDbAPIKey,
		HTTPClient: httpClient,
	}
	movieCatalog := catalog.NewAdapter(watchmode, omdb, movieRepo)

	payments := &payment.Client{
		APIURL:     cfg.PaymentAPIURL,
		APIKey:     cfg.PaymentAPIKey,
		PublicURL:  cfg.PaymentPublicURL,
		HTTPClient: httpClient,
	}

	events := queue.NewPublisher()
	go queue.StartPaymentConsumer(bookingRepo)

	if cfg.BookingTTLMin > 0 {
		ttl := time.Duration(cfg.BookingTTLMin) * time.Minute
		sweeper := booking.NewSweeper(reservations, ttl, time.Minute)
		go sweeper.Run(context.Background())
	}

	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, cfg, router.Handlers{
		Show: handler.NewShowHandler(showRepo, movieRepo, movieCatalog, events),
		Booking: &handler.BookingHandler{
			Engine:   engine,
			Shows:    showRepo,
			Movies:   movieRepo,
			Bookings: bookingRepo,
			Payments: payments,
			Events:   events,
		},
		User:    handler.NewUserHandler(favoriteRepo, bookingRepo),
		Admin:   handler.NewAdminHandler(showRepo, bookingRepo),
		Webhook: &handler.WebhookHandler{Bookings: bookingRepo, Secret: cfg.PaymentWebhookSecret},
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
