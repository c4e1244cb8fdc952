package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/model"
	"github.com/quickshow/quickshow-api/internal/repository"
)

// FavoriteStore toggles and lists a user's favorite movies.
type FavoriteStore interface {
	Toggle(ctx context.Context, userID, movieID string) (bool, error)
	ListMovies(ctx context.Context, userID string) ([]model.Movie, error)
}

// UserBookingLister returns a user's bookings with show and movie
// details attached.
type UserBookingLister interface {
	ListByUser(ctx context.Context, userID string) ([]repository.BookingDetail, error)
}

type UserHandler struct {
	Favorites FavoriteStore
	Bookings  UserBookingLister
}

func NewUserHandler(favorites FavoriteStore, bookings UserBookingLister) *UserHandler {
	return &UserHandler{Favorites: favorites, Bookings: bookings}
}

type updateFavoriteInput struct {
	MovieID string `json:"movieId"`
}

// UpdateFavorite flips the favorite state of a movie for the current
// user. Toggling twice restores the original state.
func (h *UserHandler) UpdateFavorite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authorized")
	}

	var in updateFavoriteInput
	if err := c.Bind(&in); err != nil || in.MovieID == "" {
		return fail(c, http.StatusBadRequest, "movieId is required")
	}

	added, err := h.Favorites.Toggle(c.Request().Context(), userID, in.MovieID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not update favorite")
	}

	msg := "favorite removed"
	if added {
		msg = "favorite added"
	}
	return ok(c, http.StatusOK, echo.Map{"message": msg, "favorited": added})
}

// ListFavorites returns the user's favorite movies, most recently
// added first.
func (h *UserHandler) ListFavorites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authorized")
	}

	movies, err := h.Favorites.ListMovies(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load favorites")
	}
	return ok(c, http.StatusOK, echo.Map{"movies": movies})
}

// MyBookings returns the current user's bookings, newest first.
func (h *UserHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authorized")
	}

	bookings, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load bookings")
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": bookings})
}
