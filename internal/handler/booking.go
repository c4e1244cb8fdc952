package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/booking"
	"github.com/quickshow/quickshow-api/internal/model"
	"github.com/quickshow/quickshow-api/internal/payment"
	"github.com/quickshow/quickshow-api/internal/queue"
	"github.com/quickshow/quickshow-api/internal/repository"
)

// Reserver executes the seat reservation flow.
type Reserver interface {
	Reserve(ctx context.Context, showID uint64, userID string, seats []string) (*model.Booking, error)
}

// ShowGetter loads a single show row.
type ShowGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
}

// MovieGetter loads stored movie metadata. A nil movie with nil error
// means the movie is not stored.
type MovieGetter interface {
	GetByID(ctx context.Context, id string) (*model.Movie, error)
}

// PaymentRefSetter attaches a checkout session reference to a booking.
type PaymentRefSetter interface {
	SetPaymentRef(ctx context.Context, id uint64, ref string) error
}

// SessionCreator opens a checkout session with the payment provider.
type SessionCreator interface {
	CreateSession(ctx context.Context, reference string, amountCents uint32, description string) (*payment.Session, error)
}

type BookingHandler struct {
	Engine   Reserver
	Shows    ShowGetter
	Movies   MovieGetter
	Bookings PaymentRefSetter
	Payments SessionCreator
	Events   EventPublisher
}

// OccupiedSeats returns the sorted seat labels currently held on a
// show, so clients can render the grid.
func (h *BookingHandler) OccupiedSeats(c echo.Context) error {
	showID, err := parseID(c.Param("showId"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid show id")
	}

	show, err := h.Shows.GetByID(c.Request().Context(), showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return fail(c, http.StatusNotFound, "show not found")
		}
		return fail(c, http.StatusInternalServerError, "could not load show")
	}

	seats := make([]string, 0, len(show.OccupiedSeats))
	for label := range show.OccupiedSeats {
		seats = append(seats, label)
	}
	sort.Strings(seats)

	return ok(c, http.StatusOK, echo.Map{"occupiedSeats": seats})
}

type createBookingInput struct {
	ShowID        uint64   `json:"showId"`
	SelectedSeats []string `json:"selectedSeats"`
}

// Create reserves the selected seats and opens a payment session for
// the resulting booking. The seats are held immediately; the booking
// stays unpaid until the payment confirmation arrives.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authorized")
	}

	var in createBookingInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if in.ShowID == 0 {
		return fail(c, http.StatusBadRequest, "showId is required")
	}

	ctx := c.Request().Context()
	b, err := h.Engine.Reserve(ctx, in.ShowID, userID, in.SelectedSeats)
	if err != nil {
		return reservationError(c, err)
	}

	desc := fmt.Sprintf("booking %d", b.ID)
	var movieTitle string
	if show, serr := h.Shows.GetByID(ctx, b.ShowID); serr == nil {
		if movie, merr := h.Movies.GetByID(ctx, show.MovieID); merr == nil && movie != nil {
			movieTitle = movie.Title
			desc = movie.Title
		}
	}

	session, err := h.Payments.CreateSession(ctx, fmt.Sprintf("booking-%d", b.ID), b.AmountCents, desc)
	if err != nil {
		// Seats stay held; the TTL sweeper releases them if payment
		// never completes.
		return fail(c, http.StatusBadGateway, "payment provider unavailable")
	}
	if err := h.Bookings.SetPaymentRef(ctx, b.ID, session.Ref); err != nil {
		return fail(c, http.StatusInternalServerError, "could not record payment session")
	}

	if h.Events != nil {
		evt := queue.BookingCreatedEvent{
			BookingID:   b.ID,
			UserID:      b.UserID,
			ShowID:      b.ShowID,
			MovieTitle:  movieTitle,
			Seats:       b.Seats,
			AmountCents: b.AmountCents,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.Publish(ctx, queue.BookingCreatedQueue, evt); err != nil {
			log.Printf("booking-handler: publish %s: %v", queue.BookingCreatedQueue, err)
		}
	}

	return ok(c, http.StatusCreated, echo.Map{"url": session.URL})
}

// reservationError maps engine failures onto HTTP statuses. Seat
// conflicts and expired shows are 409s so clients know to re-fetch the
// grid rather than fix the request.
func reservationError(c echo.Context, err error) error {
	var countErr *booking.SeatCountError
	var invalidErr *booking.InvalidSeatError
	var unavailErr *booking.SeatUnavailableError

	switch {
	case errors.As(err, &countErr):
		return fail(c, http.StatusBadRequest, countErr.Error())
	case errors.As(err, &invalidErr):
		return fail(c, http.StatusBadRequest, invalidErr.Error())
	case errors.As(err, &unavailErr):
		return fail(c, http.StatusConflict, unavailErr.Error())
	case errors.Is(err, booking.ErrShowExpired):
		return fail(c, http.StatusConflict, "show has already started")
	case errors.Is(err, booking.ErrShowNotFound):
		return fail(c, http.StatusNotFound, "show not found")
	default:
		return fail(c, http.StatusInternalServerError, "could not create booking")
	}
}
