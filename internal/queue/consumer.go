package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PaidMarker flips a booking's paid flag. The transition must be
// conditional so replayed confirmations have no effect; the bool
// reports whether this call performed the flip.
type PaidMarker interface {
	MarkPaid(ctx context.Context, bookingID uint64) (bool, error)
}

// StartPaymentConsumer connects to RabbitMQ, declares the
// payment.completed queue (durable) and consumes settlement events,
// flipping the paid flag on the referenced booking exactly once per
// booking. It runs a reconnect loop with exponential backoff and
// keeps running across broker restarts; processing errors are logged
// and the offending message rejected without requeue so the consumer
// never tight-loops on a poisoned payload.
func StartPaymentConsumer(bookings PaidMarker) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("payment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(conn, bookings)
		_ = conn.Close()
		if err != nil {
			log.Printf("payment-consumer: consume loop ended: %v; reconnecting", err)
		}
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection, bookings PaidMarker) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("payment-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(PaymentCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(PaymentCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handlePayment(d.Body, bookings); err != nil {
			log.Printf("payment-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handlePayment(body []byte, bookings PaidMarker) error {
	var ev PaymentCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 {
		return errors.New("missing booking_id")
	}
	if !ev.Paid {
		log.Printf("payment-consumer: session %s not paid, booking %d untouched", ev.PaymentRef, ev.BookingID)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	first, err := bookings.MarkPaid(ctx, ev.BookingID)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if first {
		log.Printf("payment-consumer: booking %d confirmed (ref=%s)", ev.BookingID, ev.PaymentRef)
	} else {
		log.Printf("payment-consumer: booking %d already paid, ignoring duplicate", ev.BookingID)
	}
	return nil
}
