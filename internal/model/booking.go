package model

import "time"

// Booking records a user's claim on a set of seats for one show. The
// seat set is fixed at creation together with the occupancy update;
// afterwards only the paid flag may transition (unpaid → paid, once)
// and stale unpaid bookings may be removed by the expiry sweep.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – opaque user id issued by the identity provider.
//  ShowID      – show the seats belong to.
//  Seats       – seat labels claimed by this booking.
//  AmountCents – total price in cents (show price × seat count).
//  IsPaid      – whether payment has been confirmed.
//  CreatedAt   – creation timestamp.
type Booking struct {
	ID          uint64    `json:"_id"`
	UserID      string    `json:"user"`
	ShowID      uint64    `json:"show"`
	Seats       []string  `json:"bookedSeats"`
	AmountCents uint32    `json:"amount"`
	IsPaid      bool      `json:"isPaid"`
	CreatedAt   time.Time `json:"-"`
}
