package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickshow/quickshow-api/internal/model"
)

// memStore is an in-memory catalog.Store for adapter tests.
type memStore struct {
	movies  map[string]*model.Movie
	creates int
}

func newMemStore() *memStore {
	return &memStore{movies: map[string]*model.Movie{}}
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Movie, error) {
	return s.movies[id], nil
}

func (s *memStore) Create(_ context.Context, m *model.Movie) error {
	s.creates++
	s.movies[m.ID] = m
	return nil
}

func watchmodeServer(t *testing.T, title string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/title/"):
			if title == "" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, `{"id": 3173903, "title": %q}`, title)
		case r.URL.Path == "/v1/list-titles/":
			fmt.Fprintf(w, `{"titles": [{"id": 3173903, "title": %q}, {"id": 55555, "title": "Unknown Elsewhere"}]}`, title)
		default:
			http.NotFound(w, r)
		}
	}))
}

func omdbServer(t *testing.T, want, respondTitle string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != want {
			fmt.Fprint(w, `{"Response": "False", "Error": "Movie not found!"}`)
			return
		}
		fmt.Fprintf(w, `{
			"Title": %q,
			"Plot": "A thief steals corporate secrets through dream-sharing.",
			"Poster": "https://img.example/inception.jpg",
			"Genre": "Action, Sci-Fi, N/A",
			"Actors": "Leonardo DiCaprio, Elliot Page",
			"Released": "16 Jul 2010",
			"Language": "English",
			"imdbRating": "8.8",
			"Runtime": "148 min",
			"Response": "True"
		}`, respondTitle)
	}))
}

func newTestAdapter(wmURL, omdbURL string, store Store) *Adapter {
	return NewAdapter(
		&WatchmodeClient{BaseURL: wmURL, APIKey: "k", HTTPClient: http.DefaultClient},
		&OMDbClient{BaseURL: omdbURL, APIKey: "k", HTTPClient: http.DefaultClient},
		store,
	)
}

func TestResolveMovieMergesProviders(t *testing.T) {
	wm := watchmodeServer(t, "Inception")
	defer wm.Close()
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	store := newMemStore()
	a := newTestAdapter(wm.URL, om.URL, store)

	movie, err := a.ResolveMovie(context.Background(), "3173903")
	if err != nil {
		t.Fatalf("ResolveMovie: %v", err)
	}
	if movie.ID != "3173903" {
		t.Errorf("id = %q, want the external id", movie.ID)
	}
	if movie.Title != "Inception" {
		t.Errorf("title = %q", movie.Title)
	}
	if movie.Runtime != 148 {
		t.Errorf("runtime = %d, want 148", movie.Runtime)
	}
	if movie.VoteAverage != 8.8 {
		t.Errorf("rating = %v, want 8.8", movie.VoteAverage)
	}
	if len(movie.Genres) != 2 {
		t.Errorf("genres = %v, want N/A entry dropped", movie.Genres)
	}
	if len(movie.Casts) != 2 || movie.Casts[0].Name != "Leonardo DiCaprio" {
		t.Errorf("casts = %v", movie.Casts)
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestResolveMovieIdempotent(t *testing.T) {
	wm := watchmodeServer(t, "Inception")
	defer wm.Close()
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	store := newMemStore()
	a := newTestAdapter(wm.URL, om.URL, store)

	first, err := a.ResolveMovie(context.Background(), "3173903")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Second resolve must come from the store, not the providers.
	wm.Close()
	om.Close()

	second, err := a.ResolveMovie(context.Background(), "3173903")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.Title != first.Title {
		t.Errorf("stored title = %q, want %q", second.Title, first.Title)
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestResolveMovieUnknownID(t *testing.T) {
	wm := watchmodeServer(t, "") // 404 for title details
	defer wm.Close()
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	_, err := a.ResolveMovie(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
}

func TestResolveMovieSecondaryMiss(t *testing.T) {
	wm := watchmodeServer(t, "Obscure Festival Film")
	defer wm.Close()
	om := omdbServer(t, "Something Else Entirely", "Something Else Entirely")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	_, err := a.ResolveMovie(context.Background(), "3173903")
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
}

func TestResolveMovieTitleMismatch(t *testing.T) {
	wm := watchmodeServer(t, "Inception")
	defer wm.Close()
	// OMDb answers the query but with a different film's title.
	om := omdbServer(t, "Inception", "Inception 2: The Sequel")
	defer om.Close()

	store := newMemStore()
	a := newTestAdapter(wm.URL, om.URL, store)
	_, err := a.ResolveMovie(context.Background(), "3173903")
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound on mismatched titles", err)
	}
	if store.creates != 0 {
		t.Error("mismatched merge must not be persisted")
	}
}

func TestResolveMovieTitleMatchIsCaseInsensitive(t *testing.T) {
	wm := watchmodeServer(t, "INCEPTION")
	defer wm.Close()
	om := omdbServer(t, "INCEPTION", " Inception ")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	if _, err := a.ResolveMovie(context.Background(), "3173903"); err != nil {
		t.Fatalf("ResolveMovie: %v", err)
	}
}

func TestResolveMovieUpstreamDown(t *testing.T) {
	wm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer wm.Close()
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	_, err := a.ResolveMovie(context.Background(), "3173903")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestResolveMovieTransportError(t *testing.T) {
	wm := watchmodeServer(t, "Inception")
	wm.Close() // connection refused from here on
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	_, err := a.ResolveMovie(context.Background(), "3173903")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestNowPlayingSkipsUnresolvableTitles(t *testing.T) {
	wm := watchmodeServer(t, "Inception")
	defer wm.Close()
	// Only "Inception" resolves; "Unknown Elsewhere" misses and must
	// be skipped rather than failing the listing.
	om := omdbServer(t, "Inception", "Inception")
	defer om.Close()

	a := newTestAdapter(wm.URL, om.URL, newMemStore())
	movies, err := a.NowPlaying(context.Background())
	if err != nil {
		t.Fatalf("NowPlaying: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Inception" {
		t.Fatalf("movies = %+v, want just Inception", movies)
	}
	if movies[0].ID != "3173903" {
		t.Errorf("id = %q, want the primary provider's id", movies[0].ID)
	}
}
