package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/quickshow/quickshow-api/internal/model"
)

// casRetries is how many times a reservation is re-attempted after
// losing the optimistic write race. One retry against fresh state,
// then the failure surfaces to the caller.
const casRetries = 1

// Store is the persistence contract the engine coordinates through.
// All cross-request coordination happens via ApplyReservation's
// conditional write; the engine holds no locks of its own.
type Store interface {
	// GetShow loads a show with its current occupancy map and
	// version. It returns ErrShowNotFound for unknown ids.
	GetShow(ctx context.Context, showID uint64) (*model.Show, error)

	// ApplyReservation atomically persists the show's new occupancy
	// map and the booking record. The write must be conditional on
	// show.Version still being current and must fail with
	// ErrVersionConflict otherwise, without any partial effect.
	// On success the booking's generated fields are populated.
	ApplyReservation(ctx context.Context, show *model.Show, b *model.Booking) error
}

// Engine validates and executes seat reservations. Concurrent calls
// against the same show never both succeed for an overlapping seat:
// the occupancy check and write execute as one atomic unit through
// the store's compare-and-swap.
type Engine struct {
	store    Store
	grid     SeatGrid
	maxSeats int
	now      func() time.Time
}

// NewEngine constructs an Engine. maxSeats bounds the size of a
// single booking's seat set.
func NewEngine(store Store, grid SeatGrid, maxSeats int) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{store: store, grid: grid, maxSeats: maxSeats, now: time.Now}
}

// Reserve claims the requested seats on a show for a user and returns
// the created booking. Preconditions are checked in order, first
// failure wins:
//
//  1. seat set non-empty and within the per-booking maximum
//     (*SeatCountError);
//  2. show exists and has not started (ErrShowNotFound,
//     ErrShowExpired);
//  3. every label lies inside the seat grid (*InvalidSeatError);
//  4. no label intersects current occupancy (*SeatUnavailableError
//     naming the conflicts).
//
// A reservation that loses the optimistic write race is re-validated
// once against fresh state; a second loss surfaces as
// *SeatUnavailableError. Failures never partially reserve.
func (e *Engine) Reserve(ctx context.Context, showID uint64, userID string, seats []string) (*model.Booking, error) {
	requested := dedupe(seats)
	if len(requested) == 0 || len(requested) > e.maxSeats {
		return nil, &SeatCountError{Requested: len(requested), Max: e.maxSeats}
	}

	for attempt := 0; ; attempt++ {
		show, err := e.store.GetShow(ctx, showID)
		if err != nil {
			return nil, err
		}
		if !show.Upcoming(e.now()) {
			return nil, ErrShowExpired
		}
		if bad := e.outsideGrid(requested); len(bad) > 0 {
			return nil, &InvalidSeatError{Seats: bad}
		}
		if taken := conflicts(show.OccupiedSeats, requested); len(taken) > 0 {
			return nil, &SeatUnavailableError{Seats: taken}
		}

		next := make(map[string]string, len(show.OccupiedSeats)+len(requested))
		for label, holder := range show.OccupiedSeats {
			next[label] = holder
		}
		for _, label := range requested {
			next[label] = userID
		}
		updated := *show
		updated.OccupiedSeats = next

		b := &model.Booking{
			UserID:      userID,
			ShowID:      show.ID,
			Seats:       requested,
			AmountCents: show.PriceCents * uint32(len(requested)),
		}
		err = e.store.ApplyReservation(ctx, &updated, b)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		if attempt >= casRetries {
			// Lost the race twice; the seats we wanted were moving
			// under us, report them as unavailable.
			return nil, &SeatUnavailableError{Seats: requested}
		}
	}
}

func (e *Engine) outsideGrid(seats []string) []string {
	var bad []string
	for _, s := range seats {
		if !e.grid.Contains(s) {
			bad = append(bad, s)
		}
	}
	return bad
}

// conflicts returns the requested labels already present in the
// occupancy map, sorted for deterministic error messages.
func conflicts(occupied map[string]string, requested []string) []string {
	var taken []string
	for _, s := range requested {
		if _, ok := occupied[s]; ok {
			taken = append(taken, s)
		}
	}
	sort.Strings(taken)
	return taken
}

// dedupe removes duplicate and empty labels preserving first-seen order.
func dedupe(seats []string) []string {
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
