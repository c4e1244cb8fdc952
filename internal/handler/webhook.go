package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/repository"
)

// PaidSetter flips a booking's paid flag. The bool reports whether
// this call performed the flip, so duplicate deliveries are detected.
type PaidSetter interface {
	MarkPaid(ctx context.Context, id uint64) (bool, error)
}

// WebhookHandler receives payment confirmations pushed directly by the
// provider, as an alternative to the broker queue. Both paths funnel
// into the same conditional update so replays are harmless.
type WebhookHandler struct {
	Bookings PaidSetter
	Secret   string
}

type paymentWebhookPayload struct {
	BookingID  uint64 `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
	Paid       bool   `json:"paid"`
}

func (h *WebhookHandler) PaymentCompleted(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "could not read body")
	}

	if h.Secret != "" {
		sig := c.Request().Header.Get("X-Webhook-Signature")
		if !validSignature(h.Secret, body, sig) {
			return fail(c, http.StatusUnauthorized, "invalid signature")
		}
	}

	var payload paymentWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.BookingID == 0 {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	if !payload.Paid {
		// Cancelled or expired session. The TTL sweeper reclaims the
		// seats; nothing to record here.
		return ok(c, http.StatusOK, echo.Map{"message": "ignored"})
	}

	flipped, err := h.Bookings.MarkPaid(c.Request().Context(), payload.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "could not update booking")
	}
	if !flipped {
		log.Printf("webhook: duplicate payment confirmation for booking %d", payload.BookingID)
	}

	return ok(c, http.StatusOK, echo.Map{"message": "payment recorded"})
}

func validSignature(secret string, body []byte, got string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return got != "" && hmac.Equal([]byte(want), []byte(got))
}
