// Package config loads application configuration from environment
// variables. Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message; optional
// values fall back to documented defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret string // secret the identity provider signs tokens with

	WatchmodeAPIKey  string // primary catalog provider API key
	WatchmodeBaseURL string // primary catalog provider base URL
	OMDbAPIKey       string // secondary catalog provider API key
	OMDbBaseURL      string // secondary catalog provider base URL

	PaymentAPIURL        string // checkout provider API base URL (empty = dev mode)
	PaymentAPIKey        string // checkout provider API key
	PaymentPublicURL     string // public base URL for dev-mode checkout redirects
	PaymentWebhookSecret string // HMAC secret for inbound payment webhooks (empty = unsigned)

	SeatRows           int // seat grid rows per show
	SeatCols           int // seats per row
	MaxSeatsPerBooking int // upper bound on seats in one booking

	BookingTTLMin int // minutes an unpaid booking holds its seats (0 disables the sweep)
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret: must("JWT_SECRET"),

		WatchmodeAPIKey:  must("WATCHMODE_API_KEY"),
		WatchmodeBaseURL: getenv("WATCHMODE_BASE_URL", "https://api.watchmode.com"),
		OMDbAPIKey:       must("OMDB_API_KEY"),
		OMDbBaseURL:      getenv("OMDB_BASE_URL", "https://www.omdbapi.com"),

		PaymentAPIURL:        os.Getenv("PAYMENT_API_URL"),
		PaymentAPIKey:        os.Getenv("PAYMENT_API_KEY"),
		PaymentPublicURL:     getenv("PAYMENT_PUBLIC_URL", "http://localhost:3000"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),

		SeatRows:           envInt("SEAT_ROWS", 10),
		SeatCols:           envInt("SEAT_COLS", 9),
		MaxSeatsPerBooking: envInt("MAX_SEATS_PER_BOOKING", 5),

		BookingTTLMin: envInt("BOOKING_TTL_MIN", 30),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// Shared env helpers used by the cache, rate-limit and Redis loaders.

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
