package model

import "time"

// Show represents one scheduled screening of a movie at a specific
// datetime and price. The occupancy map records, per seat label, the
// user holding the seat; it is mutated only by the reservation engine
// through a compare-and-swap on Version.
//
// Fields:
//  ID            – primary key identifier.
//  MovieID       – external id of the movie being screened.
//  StartsAt      – scheduled datetime (UTC).
//  PriceCents    – ticket price per seat in cents.
//  OccupiedSeats – seat label → user id for every claimed seat.
//  Version       – optimistic-concurrency counter; incremented on
//                  every occupancy write.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Show struct {
	ID            uint64            `json:"_id"`
	MovieID       string            `json:"movie"`
	StartsAt      time.Time         `json:"showDateTime"`
	PriceCents    uint32            `json:"showPrice"`
	OccupiedSeats map[string]string `json:"occupiedSeats"`
	Version       uint64            `json:"-"`
	CreatedAt     time.Time         `json:"-"`
	UpdatedAt     time.Time         `json:"-"`
}

// Upcoming reports whether the show's scheduled datetime is still in
// the future relative to now.
func (s *Show) Upcoming(now time.Time) bool {
	return s.StartsAt.After(now)
}
