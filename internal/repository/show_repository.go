// Package repository contains data access logic for the Show domain.
// A Show is one scheduled screening of a movie; its occupancy map and
// version column live on the shows row so the reservation engine can
// update both with a single conditional write.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quickshow/quickshow-api/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// GetByID retrieves a show with its occupancy map and version. It
// returns ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, starts_at, price_cents, occupied_seats, version, created_at, updated_at
	           FROM shows WHERE id = ?`
	var s model.Show
	var occ []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.StartsAt, &s.PriceCents, &occ, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.OccupiedSeats, err = parseSeatMap(occ); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateBatch inserts one show per element in a single transaction
// and returns the number created. Every show starts with an empty
// occupancy map and version 0. Passing an empty slice is a no-op.
func (r *ShowRepo) CreateBatch(ctx context.Context, shows []model.Show) (int, error) {
	if len(shows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO shows (movie_id, starts_at, price_cents, occupied_seats, version)
	           VALUES (?, ?, ?, '{}', 0)`
	for i := range shows {
		res, err := tx.ExecContext(ctx, q, shows[i].MovieID, shows[i].StartsAt.UTC(), shows[i].PriceCents)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		shows[i].ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(shows), nil
}

// ListUpcomingMovies returns the distinct movies that have at least
// one show starting at or after now, ordered by their earliest
// upcoming show. De-duplication keeps the first occurrence.
func (r *ShowRepo) ListUpcomingMovies(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT ` + movieColsPrefixed + `
	           FROM shows s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.starts_at >= UTC_TIMESTAMP()
	           ORDER BY s.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		m, err := scanMovieRow(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// ListUpcomingByMovie returns all upcoming shows for one movie,
// ordered by scheduled datetime ascending.
func (r *ShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string) ([]model.Show, error) {
	const q = `SELECT id, movie_id, starts_at, price_cents, occupied_seats, version, created_at, updated_at
	           FROM shows
	           WHERE movie_id = ? AND starts_at >= UTC_TIMESTAMP()
	           ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shows := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		var occ []byte
		if err := rows.Scan(&s.ID, &s.MovieID, &s.StartsAt, &s.PriceCents, &occ, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if s.OccupiedSeats, err = parseSeatMap(occ); err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

// ShowListItem is an upcoming show with its movie embedded and the
// seats already claimed, as listed on the admin dashboard.
type ShowListItem struct {
	ID            uint64      `json:"_id"`
	Movie         model.Movie `json:"movie"`
	StartsAt      time.Time   `json:"showDateTime"`
	PriceCents    uint32      `json:"showPrice"`
	OccupiedCount int         `json:"occupiedSeats"`
}

// ListUpcoming returns every upcoming show joined with its movie,
// ordered by scheduled datetime ascending.
func (r *ShowRepo) ListUpcoming(ctx context.Context) ([]ShowListItem, error) {
	const q = `SELECT s.id, s.starts_at, s.price_cents, s.occupied_seats, ` + movieColsPrefixed + `
	           FROM shows s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.starts_at >= UTC_TIMESTAMP()
	           ORDER BY s.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]ShowListItem, 0)
	for rows.Next() {
		var it ShowListItem
		var occ []byte
		var m model.Movie
		var genres, casts []byte
		if err := rows.Scan(
			&it.ID, &it.StartsAt, &it.PriceCents, &occ,
			&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.BackdropPath, &genres, &casts,
			&m.ReleaseDate, &m.Runtime, &m.VoteAverage, &m.OriginalLanguage, &m.Tagline, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if m.Genres, err = parseStringList(genres); err != nil {
			return nil, err
		}
		if m.Casts, err = parseCastList(casts); err != nil {
			return nil, err
		}
		seatMap, err := parseSeatMap(occ)
		if err != nil {
			return nil, err
		}
		it.Movie = m
		it.OccupiedCount = len(seatMap)
		items = append(items, it)
	}
	return items, rows.Err()
}
