package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/catalog"
	"github.com/quickshow/quickshow-api/internal/model"
	"github.com/quickshow/quickshow-api/internal/queue"
)

// ShowStore is the slice of the show repository the handlers need.
type ShowStore interface {
	ListUpcomingMovies(ctx context.Context) ([]model.Movie, error)
	ListUpcomingByMovie(ctx context.Context, movieID string) ([]model.Show, error)
	CreateBatch(ctx context.Context, shows []model.Show) (int, error)
}

// MovieResolver fetches and caches movie metadata from the upstream
// catalog providers.
type MovieResolver interface {
	ResolveMovie(ctx context.Context, externalID string) (*model.Movie, error)
	NowPlaying(ctx context.Context) ([]model.Movie, error)
}

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, event any) error
}

type ShowHandler struct {
	Shows   ShowStore
	Movies  MovieGetter
	Catalog MovieResolver
	Events  EventPublisher
}

func NewShowHandler(shows ShowStore, movies MovieGetter, cat MovieResolver, events EventPublisher) *ShowHandler {
	return &ShowHandler{Shows: shows, Movies: movies, Catalog: cat, Events: events}
}

// ListShows returns each movie that has at least one upcoming show.
func (h *ShowHandler) ListShows(c echo.Context) error {
	movies, err := h.Shows.ListUpcomingMovies(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load shows")
	}
	return ok(c, http.StatusOK, echo.Map{"shows": movies})
}

// ShowTime is one screening slot inside a date group.
type ShowTime struct {
	Time   time.Time `json:"time"`
	ShowID uint64    `json:"showId"`
}

// GetShow returns a movie's details and its upcoming shows grouped by
// calendar date. The movie is read from the store only: it exists
// there from the moment a show was scheduled for it, and a public
// read must never trigger upstream resolution or a write.
func (h *ShowHandler) GetShow(c echo.Context) error {
	movieID := c.Param("movieId")
	ctx := c.Request().Context()

	movie, err := h.Movies.GetByID(ctx, movieID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load movie")
	}
	if movie == nil {
		return fail(c, http.StatusNotFound, "movie not found")
	}

	shows, err := h.Shows.ListUpcomingByMovie(ctx, movieID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load shows")
	}

	return ok(c, http.StatusOK, echo.Map{
		"movie":    movie,
		"dateTime": groupShowsByDate(shows),
	})
}

// groupShowsByDate buckets shows under their YYYY-MM-DD start date.
// Slots within a date keep ascending start order.
func groupShowsByDate(shows []model.Show) map[string][]ShowTime {
	grouped := make(map[string][]ShowTime, len(shows))
	for _, s := range shows {
		date := s.StartsAt.Format("2006-01-02")
		grouped[date] = append(grouped[date], ShowTime{Time: s.StartsAt, ShowID: s.ID})
	}
	for _, slots := range grouped {
		sort.Slice(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })
	}
	return grouped
}

// NowPlaying lists currently popular movies from the catalog so an
// admin can pick one to schedule.
func (h *ShowHandler) NowPlaying(c echo.Context) error {
	movies, err := h.Catalog.NowPlaying(c.Request().Context())
	if err != nil {
		if errors.Is(err, catalog.ErrUpstreamUnavailable) {
			return fail(c, http.StatusBadGateway, "movie catalog unavailable")
		}
		return fail(c, http.StatusInternalServerError, "could not load movies")
	}
	return ok(c, http.StatusOK, echo.Map{"movies": movies})
}

type addShowInput struct {
	MovieID    string `json:"movieId"`
	ShowsInput []struct {
		Date string   `json:"date"`
		Time []string `json:"time"`
	} `json:"showsInput"`
	ShowPrice uint32 `json:"showPrice"`
}

// AddShow resolves the movie and creates one show row per (date, time)
// pair. All rows are inserted in a single transaction.
func (h *ShowHandler) AddShow(c echo.Context) error {
	var in addShowInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if in.MovieID == "" || len(in.ShowsInput) == 0 {
		return fail(c, http.StatusBadRequest, "movieId and showsInput are required")
	}
	if in.ShowPrice == 0 {
		return fail(c, http.StatusBadRequest, "showPrice must be positive")
	}

	ctx := c.Request().Context()
	movie, err := h.Catalog.ResolveMovie(ctx, in.MovieID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrMovieNotFound):
			return fail(c, http.StatusNotFound, "movie not found")
		case errors.Is(err, catalog.ErrUpstreamUnavailable):
			return fail(c, http.StatusBadGateway, "movie catalog unavailable")
		default:
			return fail(c, http.StatusInternalServerError, "could not resolve movie")
		}
	}

	var shows []model.Show
	for _, group := range in.ShowsInput {
		for _, t := range group.Time {
			startsAt, err := time.Parse("2006-01-02T15:04", group.Date+"T"+t)
			if err != nil {
				return fail(c, http.StatusBadRequest, "invalid show date or time")
			}
			shows = append(shows, model.Show{
				MovieID:    in.MovieID,
				StartsAt:   startsAt,
				PriceCents: in.ShowPrice,
			})
		}
	}
	if len(shows) == 0 {
		return fail(c, http.StatusBadRequest, "showsInput has no time slots")
	}

	count, err := h.Shows.CreateBatch(ctx, shows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not create shows")
	}

	if h.Events != nil {
		evt := queue.ShowAddedEvent{
			MovieID:    in.MovieID,
			MovieTitle: movie.Title,
			ShowCount:  count,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.Publish(ctx, queue.ShowAddedQueue, evt); err != nil {
			log.Printf("show-handler: publish %s: %v", queue.ShowAddedQueue, err)
		}
	}

	return ok(c, http.StatusCreated, echo.Map{"message": "shows added"})
}
