package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/quickshow/quickshow-api/internal/model"
)

// Store is the persistence the adapter needs: lookup by external id
// and insert-once. GetByID returns (nil, nil) when the id has not
// been stored, which is how the adapter decides to resolve upstream.
type Store interface {
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
}

// nowPlayingLimit caps how many titles the now-playing listing pulls
// from the primary provider per request.
const nowPlayingLimit = 10

// Adapter merges the two providers into normalized Movie records.
type Adapter struct {
	Watchmode *WatchmodeClient
	OMDb      *OMDbClient
	Movies    Store
}

// NewAdapter constructs an Adapter. All dependencies must be non-nil.
func NewAdapter(watchmode *WatchmodeClient, omdb *OMDbClient, movies Store) *Adapter {
	if watchmode == nil || omdb == nil || movies == nil {
		panic("nil dependency passed to catalog.NewAdapter")
	}
	return &Adapter{Watchmode: watchmode, OMDb: omdb, Movies: movies}
}

// ResolveMovie returns the Movie for an external catalog id,
// resolving and persisting it on first reference. Re-resolving a
// stored id is a no-op read. The merge requires OMDb to report the
// same title Watchmode did (case- and whitespace-insensitive);
// anything else is ErrMovieNotFound rather than a guess.
func (a *Adapter) ResolveMovie(ctx context.Context, externalID string) (*model.Movie, error) {
	stored, err := a.Movies.GetByID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	primary, err := a.Watchmode.TitleDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}
	detail, err := a.OMDb.ByTitle(ctx, primary.Title)
	if err != nil {
		return nil, err
	}
	if !titlesMatch(primary.Title, detail.Title) {
		return nil, ErrMovieNotFound
	}

	movie := mergeTitle(externalID, detail)
	if err := a.Movies.Create(ctx, movie); err != nil {
		return nil, err
	}
	return movie, nil
}

// NowPlaying lists currently popular movies merged across both
// providers. Titles the secondary provider cannot resolve are
// skipped; a failing primary call fails the whole listing.
func (a *Adapter) NowPlaying(ctx context.Context) ([]model.Movie, error) {
	titles, err := a.Watchmode.ListTitles(ctx, nowPlayingLimit)
	if err != nil {
		return nil, err
	}
	movies := make([]model.Movie, 0, len(titles))
	for _, t := range titles {
		detail, err := a.OMDb.ByTitle(ctx, t.Title)
		if errors.Is(err, ErrMovieNotFound) || (err == nil && !titlesMatch(t.Title, detail.Title)) {
			continue
		}
		if err != nil {
			return nil, err
		}
		movies = append(movies, *mergeTitle(strconv.FormatInt(t.ID, 10), detail))
	}
	return movies, nil
}

func titlesMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// mergeTitle builds the normalized record from the secondary
// provider's descriptive fields. Watchmode contributes identity (the
// external id and the title used for the lookup); OMDb everything
// else. OMDb has no backdrop or tagline, those stay empty.
func mergeTitle(externalID string, detail *OMDbTitle) *model.Movie {
	casts := make([]model.CastMember, 0)
	for _, name := range splitList(detail.Actors) {
		casts = append(casts, model.CastMember{Name: name})
	}
	return &model.Movie{
		ID:               externalID,
		Title:            detail.Title,
		Overview:         detail.Plot,
		PosterPath:       detail.Poster,
		Genres:           splitList(detail.Genre),
		Casts:            casts,
		ReleaseDate:      detail.Released,
		Runtime:          parseRuntime(detail.Runtime),
		VoteAverage:      parseRating(detail.ImdbRating),
		OriginalLanguage: detail.Language,
	}
}

// splitList splits OMDb's comma-separated list fields, dropping
// empty and "N/A" entries.
func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "N/A" {
			continue
		}
		out = append(out, part)
	}
	return out
}
