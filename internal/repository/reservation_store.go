package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quickshow/quickshow-api/internal/booking"
	"github.com/quickshow/quickshow-api/internal/model"
)

// ReservationStore adapts the show and booking repositories to the
// reservation engine's Store contract. The occupancy write is a
// compare-and-swap on the shows.version column: the UPDATE matches
// only when the version the engine read is still current, so two
// concurrent reservations for the same show can never both land on
// overlapping seats.
type ReservationStore struct {
	db       *sql.DB
	shows    *ShowRepo
	bookings *BookingRepo
}

// NewReservationStore constructs a ReservationStore. All dependencies
// must be non-nil and share the same database.
func NewReservationStore(db *sql.DB, shows *ShowRepo, bookings *BookingRepo) *ReservationStore {
	if db == nil || shows == nil || bookings == nil {
		panic("nil dependency passed to NewReservationStore")
	}
	return &ReservationStore{db: db, shows: shows, bookings: bookings}
}

// GetShow loads a show for the engine, translating the repository
// sentinel into the engine's.
func (s *ReservationStore) GetShow(ctx context.Context, showID uint64) (*model.Show, error) {
	sh, err := s.shows.GetByID(ctx, showID)
	if errors.Is(err, ErrShowNotFound) {
		return nil, booking.ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// ApplyReservation persists the new occupancy map and the booking in
// one transaction. The occupancy UPDATE is conditional on the version
// the engine observed; zero affected rows means another reservation
// won the race, and the whole transaction rolls back with
// booking.ErrVersionConflict.
func (s *ReservationStore) ApplyReservation(ctx context.Context, show *model.Show, b *model.Booking) error {
	occ, err := seatMapJSON(show.OccupiedSeats)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE shows SET occupied_seats = ?, version = version + 1 WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, occ, show.ID, show.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrVersionConflict
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReleaseExpired removes unpaid bookings created before the cutoff
// and frees their seats. Each booking is released in its own
// transaction so one poisoned row cannot stall the whole sweep; a
// booking paid between the candidate query and its transaction is
// left untouched.
func (s *ReservationStore) ReleaseExpired(ctx context.Context, olderThan time.Time) (int, error) {
	const q = `SELECT id, user_id, show_id, seats FROM bookings WHERE is_paid = 0 AND created_at < ?`
	rows, err := s.db.QueryContext(ctx, q, olderThan.UTC())
	if err != nil {
		return 0, err
	}
	type candidate struct {
		id     uint64
		userID string
		showID uint64
		seats  []string
	}
	var stale []candidate
	for rows.Next() {
		var c candidate
		var seats []byte
		if err := rows.Scan(&c.id, &c.userID, &c.showID, &seats); err != nil {
			rows.Close()
			return 0, err
		}
		if c.seats, err = parseStringList(seats); err != nil {
			rows.Close()
			return 0, err
		}
		stale = append(stale, c)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	released := 0
	for _, c := range stale {
		ok, err := s.releaseOne(ctx, c.id, c.userID, c.showID, c.seats)
		if err != nil {
			return released, err
		}
		if ok {
			released++
		}
	}
	return released, nil
}

func (s *ReservationStore) releaseOne(ctx context.Context, bookingID uint64, userID string, showID uint64, seats []string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Re-check the paid flag inside the transaction; a payment that
	// landed after the candidate query must keep its seats.
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ? AND is_paid = 0`, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	// Lock the show row and rewrite its occupancy without this
	// booking's seats. The row lock keeps the engine's CAS honest:
	// its version check cannot interleave with this update.
	var occ []byte
	err = tx.QueryRowContext(ctx, `SELECT occupied_seats FROM shows WHERE id = ? FOR UPDATE`, showID).Scan(&occ)
	if errors.Is(err, sql.ErrNoRows) {
		// Show gone; nothing to free, but the booking is deleted.
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return true, nil
	}
	if err != nil {
		return false, err
	}
	seatMap, err := parseSeatMap(occ)
	if err != nil {
		return false, err
	}
	for _, label := range seats {
		if seatMap[label] == userID {
			delete(seatMap, label)
		}
	}
	next, err := seatMapJSON(seatMap)
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE shows SET occupied_seats = ?, version = version + 1 WHERE id = ?`, next, showID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
