// Package booking implements the seat reservation engine: validation
// of a requested seat set against a show's occupancy map and the
// atomic claim of those seats through the store's compare-and-swap
// primitive. This file defines the error values the engine surfaces
// so handlers can map each failure to the right HTTP response.
package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShowNotFound is returned when the requested show does not exist.
// Store implementations must return it from GetShow for unknown ids.
var ErrShowNotFound = errors.New("show not found")

// ErrShowExpired is returned when the show's scheduled datetime is
// already in the past.
var ErrShowExpired = errors.New("show already started")

// ErrVersionConflict is returned by Store.ApplyReservation when the
// show's occupancy changed between the engine's read and its write.
// The engine retries once on this error; it never reaches callers.
var ErrVersionConflict = errors.New("show version conflict")

// SeatCountError reports a request for zero seats or for more seats
// than a single booking may hold.
type SeatCountError struct {
	Requested int
	Max       int
}

func (e *SeatCountError) Error() string {
	if e.Requested == 0 {
		return "no seats selected"
	}
	return fmt.Sprintf("cannot book %d seats, maximum is %d", e.Requested, e.Max)
}

// InvalidSeatError reports seat labels outside the configured grid.
type InvalidSeatError struct {
	Seats []string
}

func (e *InvalidSeatError) Error() string {
	return "invalid seats: " + strings.Join(e.Seats, ", ")
}

// SeatUnavailableError reports seats already claimed by another
// booking at the time of the reservation attempt.
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return "seats unavailable: " + strings.Join(e.Seats, ", ")
}
