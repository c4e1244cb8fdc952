package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quickshow/quickshow-api/internal/model"
)

// movieCols is the column list every movie query selects, in the
// order scanMovieRow expects. Join queries reuse it with an "m."
// prefix via prefixMovieCols.
const movieCols = `id, title, overview, poster_path, backdrop_path, genres, casts,
       release_date, runtime, vote_average, original_language, tagline, created_at`

const movieColsPrefixed = `m.id, m.title, m.overview, m.poster_path, m.backdrop_path, m.genres, m.casts,
       m.release_date, m.runtime, m.vote_average, m.original_language, m.tagline, m.created_at`

// MovieRepo provides access to the movies table. Movies are written
// once, on first resolution through the catalog adapter, and never
// updated afterwards.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// GetByID returns the stored movie, or (nil, nil) when the id has not
// been stored yet. Absence is an expected outcome here, not an error:
// the catalog adapter uses it to decide whether to resolve upstream.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	const q = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	m, err := scanMovieRow(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a movie. Inserting an id that already exists is a
// no-op, which keeps catalog resolution idempotent under concurrent
// first references.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	genres, err := stringListJSON(m.Genres)
	if err != nil {
		return err
	}
	casts, err := castListJSON(m.Casts)
	if err != nil {
		return err
	}
	const q = `INSERT INTO movies
	           (id, title, overview, poster_path, backdrop_path, genres, casts,
	            release_date, runtime, vote_average, original_language, tagline)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE id = id`
	_, err = r.db.ExecContext(ctx, q,
		m.ID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, genres, casts,
		m.ReleaseDate, m.Runtime, m.VoteAverage, m.OriginalLanguage, m.Tagline,
	)
	return err
}

// scanMovieRow scans one movies row (movieCols order) into a Movie,
// decoding the JSON genre and cast columns.
func scanMovieRow(s interface{ Scan(dest ...any) error }) (*model.Movie, error) {
	var m model.Movie
	var genres, casts []byte
	if err := s.Scan(
		&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.BackdropPath, &genres, &casts,
		&m.ReleaseDate, &m.Runtime, &m.VoteAverage, &m.OriginalLanguage, &m.Tagline, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if m.Genres, err = parseStringList(genres); err != nil {
		return nil, err
	}
	if m.Casts, err = parseCastList(casts); err != nil {
		return nil, err
	}
	return &m, nil
}
