package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quickshow/quickshow-api/internal/model"
)

// BookingRepo provides CRUD operations for bookings. A booking row is
// created by the reservation store together with the occupancy write;
// afterwards only the payment reference and the paid flag change.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	seats, err := stringListJSON(b.Seats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings (user_id, show_id, seats, amount_cents) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowID, seats, b.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate DB defaults.
	const sel = `SELECT is_paid, created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.IsPaid, &b.CreatedAt)
}

// SetPaymentRef attaches the external payment session reference to a
// booking after the checkout session has been created.
func (r *BookingRepo) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	const q = `UPDATE bookings SET payment_ref = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, ref, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// MarkPaid transitions a booking to paid. The update is conditional
// on the booking still being unpaid, so concurrent confirmations
// (webhook plus queue consumer) flip the flag exactly once. The
// returned bool is true for the call that performed the transition.
func (r *BookingRepo) MarkPaid(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE bookings SET is_paid = 1 WHERE id = ? AND is_paid = 0`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Distinguish "already paid" from "no such booking".
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrBookingNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// BookingDetail is a booking joined with its show and movie, as
// returned to customers and admins.
type BookingDetail struct {
	ID          uint64      `json:"_id"`
	UserID      string      `json:"user"`
	ShowID      uint64      `json:"showId"`
	StartsAt    time.Time   `json:"showDateTime"`
	Movie       model.Movie `json:"movie"`
	Seats       []string    `json:"bookedSeats"`
	AmountCents uint32      `json:"amount"`
	IsPaid      bool        `json:"isPaid"`
	CreatedAt   time.Time   `json:"createdAt"`
}

const bookingDetailQuery = `SELECT b.id, b.user_id, b.show_id, b.seats, b.amount_cents, b.is_paid, b.created_at,
       s.starts_at, ` + movieColsPrefixed + `
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           JOIN movies m ON m.id = s.movie_id`

// ListByUser returns all bookings for the given user, newest first.
// When no bookings exist, an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]BookingDetail, error) {
	const q = bookingDetailQuery + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

// ListAll returns every booking, newest first. Used by admin views.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	const q = bookingDetailQuery + ` ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

func scanBookingDetails(rows *sql.Rows) ([]BookingDetail, error) {
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var seats []byte
		var m model.Movie
		var genres, casts []byte
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ShowID, &seats, &d.AmountCents, &d.IsPaid, &d.CreatedAt,
			&d.StartsAt,
			&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.BackdropPath, &genres, &casts,
			&m.ReleaseDate, &m.Runtime, &m.VoteAverage, &m.OriginalLanguage, &m.Tagline, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		var err error
		if d.Seats, err = parseStringList(seats); err != nil {
			return nil, err
		}
		if m.Genres, err = parseStringList(genres); err != nil {
			return nil, err
		}
		if m.Casts, err = parseCastList(casts); err != nil {
			return nil, err
		}
		d.Movie = m
		details = append(details, d)
	}
	return details, rows.Err()
}

// DashboardStats aggregates paid-booking totals for the admin
// dashboard.
type DashboardStats struct {
	TotalBookings     uint64 `json:"totalBookings"`
	TotalRevenueCents uint64 `json:"totalRevenue"`
	TotalUsers        uint64 `json:"totalUser"`
}

// Dashboard computes paid-booking counts, revenue and the number of
// distinct users that ever booked.
func (r *BookingRepo) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	const paidQ = `SELECT COUNT(*), COALESCE(SUM(amount_cents), 0) FROM bookings WHERE is_paid = 1`
	if err := r.db.QueryRowContext(ctx, paidQ).Scan(&stats.TotalBookings, &stats.TotalRevenueCents); err != nil {
		return DashboardStats{}, err
	}
	const usersQ = `SELECT COUNT(DISTINCT user_id) FROM bookings`
	if err := r.db.QueryRowContext(ctx, usersQ).Scan(&stats.TotalUsers); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
