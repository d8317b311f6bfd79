package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event is a domain event carried across the bus.
type Event struct {
	Topic       string          `json:"topic"`
	OrderNumber string          `json:"orderNumber"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// Notifier reacts to emitted events (e.g. queueing customer notifications).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans domain events out to downstream handlers. Notifier failures are
// logged and joined but never fail the emitting operation's caller.
type Bus struct {
	Notifiers []Notifier
	Log       zerolog.Logger
}

// Emit dispatches the event to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, topic, orderNumber string, payload any) (Event, error) {
	if b == nil {
		return Event{}, errors.New("events: bus not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return Event{}, errors.New("events: order number is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode payload: %w", err)
	}
	ev := Event{
		Topic:       topic,
		OrderNumber: orderNumber,
		Payload:     encoded,
		OccurredAt:  time.Now().UTC(),
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			b.Log.Error().Err(notifyErr).Str("topic", topic).Str("order_number", orderNumber).Msg("event notifier failed")
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return ev, joined
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		return encodePayload([]byte(v))
	default:
		return json.Marshal(v)
	}
}
