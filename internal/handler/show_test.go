package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/catalog"
	"github.com/quickshow/quickshow-api/internal/model"
)

type fakeShowStore struct {
	movies  []model.Movie
	shows   []model.Show
	created []model.Show
}

func (f *fakeShowStore) ListUpcomingMovies(context.Context) ([]model.Movie, error) {
	return f.movies, nil
}

func (f *fakeShowStore) ListUpcomingByMovie(context.Context, string) ([]model.Show, error) {
	return f.shows, nil
}

func (f *fakeShowStore) CreateBatch(_ context.Context, shows []model.Show) (int, error) {
	f.created = append(f.created, shows...)
	return len(shows), nil
}

type fakeResolver struct {
	movie    *model.Movie
	err      error
	resolves int
}

func (f *fakeResolver) ResolveMovie(context.Context, string) (*model.Movie, error) {
	f.resolves++
	return f.movie, f.err
}

func (f *fakeResolver) NowPlaying(context.Context) ([]model.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.Movie{*f.movie}, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, queueName string, _ any) error {
	f.published = append(f.published, queueName)
	return nil
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestGroupShowsByDate(t *testing.T) {
	day1 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	shows := []model.Show{
		{ID: 3, StartsAt: day2.Add(18 * time.Hour)},
		{ID: 2, StartsAt: day1.Add(21 * time.Hour)},
		{ID: 1, StartsAt: day1.Add(14 * time.Hour)},
	}

	grouped := groupShowsByDate(shows)
	if len(grouped) != 2 {
		t.Fatalf("groups = %d, want 2", len(grouped))
	}

	d1 := grouped["2026-09-01"]
	if len(d1) != 2 || d1[0].ShowID != 1 || d1[1].ShowID != 2 {
		t.Errorf("day one slots out of order: %+v", d1)
	}
	d2 := grouped["2026-09-02"]
	if len(d2) != 1 || d2[0].ShowID != 3 {
		t.Errorf("day two slots = %+v", d2)
	}
}

func TestGetShowReturnsMovieAndGroupedTimes(t *testing.T) {
	movie := &model.Movie{ID: "3173903", Title: "Inception"}
	starts := time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)
	store := &fakeShowStore{shows: []model.Show{{ID: 7, MovieID: movie.ID, StartsAt: starts}}}
	h := NewShowHandler(store, &fakeMovieGetter{movie: movie}, &fakeResolver{}, nil)

	c, rec := newContext(http.MethodGet, "/api/show/3173903", "")
	c.SetParamNames("movieId")
	c.SetParamValues("3173903")

	if err := h.GetShow(c); err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("success flag missing")
	}
	dateTime, ok := body["dateTime"].(map[string]any)
	if !ok {
		t.Fatalf("dateTime = %T", body["dateTime"])
	}
	if _, ok := dateTime["2026-09-01"]; !ok {
		t.Errorf("expected a 2026-09-01 group, got %v", dateTime)
	}
}

func TestGetShowUnstoredMovieIs404WithoutResolution(t *testing.T) {
	// A movie id nobody scheduled a show for is simply absent. The
	// public read must answer 404 from the store alone; it must never
	// reach out to the catalog providers or persist anything.
	resolver := &fakeResolver{movie: &model.Movie{ID: "999", Title: "Should Not Appear"}}
	h := NewShowHandler(&fakeShowStore{}, &fakeMovieGetter{}, resolver, nil)

	c, rec := newContext(http.MethodGet, "/api/show/999", "")
	c.SetParamNames("movieId")
	c.SetParamValues("999")

	if err := h.GetShow(c); err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["success"] != false {
		t.Error("failure envelope expected")
	}
	if resolver.resolves != 0 {
		t.Errorf("catalog resolved %d times on a public read, want 0", resolver.resolves)
	}
}

func TestNowPlayingUpstreamDown(t *testing.T) {
	h := NewShowHandler(&fakeShowStore{}, &fakeMovieGetter{}, &fakeResolver{err: catalog.ErrUpstreamUnavailable}, nil)

	c, rec := newContext(http.MethodGet, "/api/show/now-playing", "")
	if err := h.NowPlaying(c); err != nil {
		t.Fatalf("NowPlaying: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestAddShowCreatesOneRowPerSlot(t *testing.T) {
	movie := &model.Movie{ID: "3173903", Title: "Inception"}
	store := &fakeShowStore{}
	events := &fakePublisher{}
	h := NewShowHandler(store, &fakeMovieGetter{}, &fakeResolver{movie: movie}, events)

	payload := `{
		"movieId": "3173903",
		"showsInput": [
			{"date": "2026-09-01", "time": ["14:00", "21:30"]},
			{"date": "2026-09-02", "time": ["18:00"]}
		],
		"showPrice": 1500
	}`
	c, rec := newContext(http.MethodPost, "/api/admin/add-show", payload)

	if err := h.AddShow(c); err != nil {
		t.Fatalf("AddShow: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 3 {
		t.Fatalf("created %d shows, want 3", len(store.created))
	}
	first := store.created[0]
	if first.PriceCents != 1500 || first.MovieID != "3173903" {
		t.Errorf("show = %+v", first)
	}
	if got := first.StartsAt.Format("2006-01-02T15:04"); got != "2026-09-01T14:00" {
		t.Errorf("starts at %s", got)
	}
	if len(events.published) != 1 {
		t.Errorf("published %v, want one show added event", events.published)
	}
}

func TestAddShowValidation(t *testing.T) {
	h := NewShowHandler(&fakeShowStore{}, &fakeMovieGetter{}, &fakeResolver{movie: &model.Movie{ID: "1"}}, nil)

	cases := []struct {
		name    string
		payload string
	}{
		{"missing movie", `{"showsInput": [{"date": "2026-09-01", "time": ["14:00"]}], "showPrice": 1500}`},
		{"missing shows", `{"movieId": "1", "showsInput": [], "showPrice": 1500}`},
		{"zero price", `{"movieId": "1", "showsInput": [{"date": "2026-09-01", "time": ["14:00"]}]}`},
		{"bad time", `{"movieId": "1", "showsInput": [{"date": "2026-09-01", "time": ["25:99"]}], "showPrice": 1500}`},
		{"no slots", `{"movieId": "1", "showsInput": [{"date": "2026-09-01", "time": []}], "showPrice": 1500}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/api/admin/add-show", tc.payload)
			if err := h.AddShow(c); err != nil {
				t.Fatalf("AddShow: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
