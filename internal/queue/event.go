// Package queue defines message payloads exchanged over the message
// broker and the background consumer for payment confirmations.
package queue

// Queue names. All queues are declared durable by both producer and
// consumer so declaration is idempotent regardless of start order.
const (
	ShowAddedQueue        = "show.added"
	BookingCreatedQueue   = "booking.created"
	PaymentCompletedQueue = "payment.completed"
)

// ShowAddedEvent is published when an admin schedules shows for a
// movie. Downstream consumers use it for notifications and analytics
// without querying the primary database.
type ShowAddedEvent struct {
	MovieID    string `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	ShowCount  int    `json:"show_count"`
	CreatedAt  string `json:"created_at"`
}

// BookingCreatedEvent is published when a reservation succeeds. The
// booking is unpaid at this point; PaymentCompletedEvent follows once
// the provider confirms.
type BookingCreatedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	UserID      string   `json:"user_id"`
	ShowID      uint64   `json:"show_id"`
	MovieTitle  string   `json:"movie_title"`
	Seats       []string `json:"seats"`
	AmountCents uint32   `json:"amount_cents"`
	CreatedAt   string   `json:"created_at"`
}

// PaymentCompletedEvent arrives from the payment dispatcher when a
// checkout session settles. Paid false means the session was
// cancelled or expired and must not flip the booking's flag.
type PaymentCompletedEvent struct {
	BookingID  uint64 `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
	Paid       bool   `json:"paid"`
}
