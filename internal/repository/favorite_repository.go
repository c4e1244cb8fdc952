package repository

import (
	"context"
	"database/sql"

	"github.com/quickshow/quickshow-api/internal/model"
)

// FavoriteRepo stores a user's favorited movies as (user_id,
// movie_id) rows with a composite primary key.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a new FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Toggle flips the favorite state for a (user, movie) pair and
// returns the resulting state: true when the movie is now favorited.
// Toggling twice restores the original state. Concurrent toggles for
// the same pair race harmlessly (last write wins); the ON DUPLICATE
// clause keeps the insert from failing if another request created the
// row between our delete and insert.
func (r *FavoriteRepo) Toggle(ctx context.Context, userID, movieID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	const ins = `INSERT INTO favorites (user_id, movie_id) VALUES (?, ?)
	             ON DUPLICATE KEY UPDATE movie_id = movie_id`
	if _, err := r.db.ExecContext(ctx, ins, userID, movieID); err != nil {
		return false, err
	}
	return true, nil
}

// ListMovies returns the movies a user has favorited, most recently
// favorited first.
func (r *FavoriteRepo) ListMovies(ctx context.Context, userID string) ([]model.Movie, error) {
	const q = `SELECT ` + movieColsPrefixed + `
	           FROM favorites f
	           JOIN movies m ON m.id = f.movie_id
	           WHERE f.user_id = ?
	           ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovieRow(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}
