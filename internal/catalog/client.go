package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// WatchmodeClient is a thin client for the Watchmode title API, the
// primary catalog provider. BaseURL is injectable so tests can point
// it at a local server.
type WatchmodeClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// WatchmodeTitle is the subset of a Watchmode title response this
// service consumes.
type WatchmodeTitle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TitleDetails fetches the canonical title for an external id. A 404
// from the provider means the id is unknown (ErrMovieNotFound); any
// transport failure or non-2xx status maps to ErrUpstreamUnavailable.
func (c *WatchmodeClient) TitleDetails(ctx context.Context, externalID string) (*WatchmodeTitle, error) {
	u := fmt.Sprintf("%s/v1/title/%s/details/?apiKey=%s", c.BaseURL, url.PathEscape(externalID), url.QueryEscape(c.APIKey))
	var t WatchmodeTitle
	if err := c.getJSON(ctx, u, &t); err != nil {
		return nil, err
	}
	if t.Title == "" {
		return nil, ErrMovieNotFound
	}
	return &t, nil
}

// ListTitles fetches the most popular movie titles, used for the
// now-playing admin listing.
func (c *WatchmodeClient) ListTitles(ctx context.Context, limit int) ([]WatchmodeTitle, error) {
	u := fmt.Sprintf("%s/v1/list-titles/?apiKey=%s&types=movie&sort_by=popularity_desc&limit=%d",
		c.BaseURL, url.QueryEscape(c.APIKey), limit)
	var out struct {
		Titles []WatchmodeTitle `json:"titles"`
	}
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out.Titles, nil
}

func (c *WatchmodeClient) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrMovieNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: watchmode status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode watchmode response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// OMDbClient is a thin client for the OMDb API, the secondary
// provider supplying descriptive fields.
type OMDbClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// OMDbTitle mirrors the OMDb response fields this service consumes.
// List-valued fields (Genre, Actors) arrive comma-separated and
// Runtime as "NNN min"; parsing happens during the merge.
type OMDbTitle struct {
	Title      string `json:"Title"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Genre      string `json:"Genre"`
	Actors     string `json:"Actors"`
	Released   string `json:"Released"`
	Language   string `json:"Language"`
	ImdbRating string `json:"imdbRating"`
	Runtime    string `json:"Runtime"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// ByTitle looks a movie up by its exact title. OMDb signals a miss
// with Response == "False", which maps to ErrMovieNotFound.
func (c *OMDbClient) ByTitle(ctx context.Context, title string) (*OMDbTitle, error) {
	u := fmt.Sprintf("%s/?apikey=%s&t=%s", c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: omdb status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	var t OMDbTitle
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decode omdb response: %v", ErrUpstreamUnavailable, err)
	}
	if t.Response == "False" {
		return nil, ErrMovieNotFound
	}
	return &t, nil
}

// parseRuntime extracts the minute count from OMDb's "NNN min" form.
func parseRuntime(s string) uint32 {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			s = s[:i]
			break
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// parseRating converts OMDb's imdbRating string to a float; "N/A"
// and other unparseable values become 0.
func parseRating(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
