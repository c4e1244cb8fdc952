package booking

import (
	"context"
	"log"
	"time"
)

// ExpiredReleaser releases the seats held by unpaid bookings created
// before the cutoff and removes those bookings. Implementations must
// release through the same conditional occupancy write as
// reservation so the disjointness invariant is never bypassed.
type ExpiredReleaser interface {
	ReleaseExpired(ctx context.Context, olderThan time.Time) (int, error)
}

// Sweeper periodically reclaims seats from unpaid bookings that
// outlived the reservation TTL. Without it an abandoned checkout
// would hold its seats forever.
type Sweeper struct {
	store    ExpiredReleaser
	ttl      time.Duration
	interval time.Duration
}

// NewSweeper constructs a Sweeper. ttl is how long an unpaid booking
// may hold its seats; interval is how often the sweep runs.
func NewSweeper(store ExpiredReleaser, ttl, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: store, ttl: ttl, interval: interval}
}

// Run sweeps on the configured interval until ctx is cancelled.
// Sweep failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().UTC().Add(-s.ttl)
			released, err := s.store.ReleaseExpired(ctx, cutoff)
			if err != nil {
				log.Printf("booking-sweeper: release expired failed: %v", err)
				continue
			}
			if released > 0 {
				log.Printf("booking-sweeper: released %d expired unpaid booking(s)", released)
			}
		}
	}
}
