package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/quickshow/quickshow-api/internal/model"
	"github.com/quickshow/quickshow-api/internal/repository"
)

type fakeFavoriteStore struct {
	favorites map[string]map[string]bool
}

func (f *fakeFavoriteStore) Toggle(_ context.Context, userID, movieID string) (bool, error) {
	if f.favorites == nil {
		f.favorites = map[string]map[string]bool{}
	}
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[string]bool{}
	}
	if f.favorites[userID][movieID] {
		delete(f.favorites[userID], movieID)
		return false, nil
	}
	f.favorites[userID][movieID] = true
	return true, nil
}

func (f *fakeFavoriteStore) ListMovies(_ context.Context, userID string) ([]model.Movie, error) {
	var out []model.Movie
	for id := range f.favorites[userID] {
		out = append(out, model.Movie{ID: id})
	}
	return out, nil
}

type fakeBookingLister struct{ bookings []repository.BookingDetail }

func (f *fakeBookingLister) ListByUser(context.Context, string) ([]repository.BookingDetail, error) {
	return f.bookings, nil
}

func TestUpdateFavoriteToggleRoundTrip(t *testing.T) {
	store := &fakeFavoriteStore{}
	h := NewUserHandler(store, nil)

	// First toggle adds, second removes, third adds again.
	wantMsgs := []string{"favorite added", "favorite removed", "favorite added"}
	for i, want := range wantMsgs {
		c, rec := newContext(http.MethodPost, "/api/user/update-favorite", `{"movieId": "3173903"}`)
		c.Set("user_id", "user-1")

		if err := h.UpdateFavorite(c); err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %d status = %d", i+1, rec.Code)
		}
		body := decodeBody(t, rec)
		if body["message"] != want {
			t.Errorf("toggle %d message = %v, want %q", i+1, body["message"], want)
		}
		if body["favorited"] != (want == "favorite added") {
			t.Errorf("toggle %d favorited = %v", i+1, body["favorited"])
		}
	}
	if !store.favorites["user-1"]["3173903"] {
		t.Error("favorite missing after odd number of toggles")
	}
}

func TestUpdateFavoriteRequiresMovieID(t *testing.T) {
	h := NewUserHandler(&fakeFavoriteStore{}, nil)

	c, rec := newContext(http.MethodPost, "/api/user/update-favorite", `{}`)
	c.Set("user_id", "user-1")

	if err := h.UpdateFavorite(c); err != nil {
		t.Fatalf("UpdateFavorite: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateFavoriteUnauthenticated(t *testing.T) {
	h := NewUserHandler(&fakeFavoriteStore{}, nil)

	c, rec := newContext(http.MethodPost, "/api/user/update-favorite", `{"movieId": "1"}`)
	if err := h.UpdateFavorite(c); err != nil {
		t.Fatalf("UpdateFavorite: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListFavorites(t *testing.T) {
	store := &fakeFavoriteStore{favorites: map[string]map[string]bool{
		"user-1": {"3173903": true},
	}}
	h := NewUserHandler(store, nil)

	c, rec := newContext(http.MethodGet, "/api/user/favorites", "")
	c.Set("user_id", "user-1")

	if err := h.ListFavorites(c); err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	body := decodeBody(t, rec)
	movies, ok := body["movies"].([]any)
	if !ok || len(movies) != 1 {
		t.Errorf("movies = %v, want one entry", body["movies"])
	}
}

func TestMyBookings(t *testing.T) {
	h := NewUserHandler(nil, &fakeBookingLister{bookings: []repository.BookingDetail{
		{ID: 42, UserID: "user-1", Seats: []string{"A1"}},
	}})

	c, rec := newContext(http.MethodGet, "/api/user/bookings", "")
	c.Set("user_id", "user-1")

	if err := h.MyBookings(c); err != nil {
		t.Fatalf("MyBookings: %v", err)
	}
	body := decodeBody(t, rec)
	bookings, ok := body["bookings"].([]any)
	if !ok || len(bookings) != 1 {
		t.Errorf("bookings = %v, want one entry", body["bookings"])
	}
}
