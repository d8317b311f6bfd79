package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// OrderSource resolves contact details when the task payload carries none.
type OrderSource interface {
	ByNumber(ctx context.Context, number string) (order.Order, error)
}

// Processor handles queued notification tasks in the worker process.
type Processor struct {
	Orders OrderSource
	Email  EmailSender
	SMS    SMSSender
	Log    zerolog.Logger
}

// Register attaches the task handlers to the worker mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderConfirmation, p.HandleOrderConfirmation)
	mux.HandleFunc(TypePaymentReceipt, p.HandlePaymentReceipt)
}

// HandleOrderConfirmation sends the order-received notification.
func (p *Processor) HandleOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	payload, err := p.decode(ctx, t)
	if err != nil {
		return err
	}
	subject := "Order Received"
	body := fmt.Sprintf("Your order #%s has been received. Total: R%s.",
		payload.OrderNumber, pricing.FormatMoney(payload.Amount))
	return p.deliver(ctx, payload, subject, body)
}

// HandlePaymentReceipt sends the payment-confirmed notification.
func (p *Processor) HandlePaymentReceipt(ctx context.Context, t *asynq.Task) error {
	payload, err := p.decode(ctx, t)
	if err != nil {
		return err
	}
	subject := "Order Payment Confirmed"
	body := fmt.Sprintf("Thank you for your payment of R%s. Your order #%s has been confirmed.",
		pricing.FormatMoney(payload.Amount), payload.OrderNumber)
	return p.deliver(ctx, payload, subject, body)
}

// decode unmarshals the payload and backfills contact details from the order
// record when the task carries none.
func (p *Processor) decode(ctx context.Context, t *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return TaskPayload{}, fmt.Errorf("decode %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	if payload.Email == "" && payload.Phone == "" && p.Orders != nil {
		o, err := p.Orders.ByNumber(ctx, payload.OrderNumber)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return TaskPayload{}, fmt.Errorf("order %s: %w: %w", payload.OrderNumber, err, asynq.SkipRetry)
			}
			return TaskPayload{}, err
		}
		payload.Email = o.Email
		payload.Phone = o.Phone
		if payload.Amount == 0 {
			payload.Amount = o.Total
		}
	}
	return payload, nil
}

func (p *Processor) deliver(ctx context.Context, payload TaskPayload, subject, body string) error {
	var joined error
	if payload.Email != "" && p.Email != nil {
		if err := p.Email.SendEmail(ctx, payload.Email, subject, body); err != nil {
			countNotification("email", "error")
			joined = errors.Join(joined, fmt.Errorf("email %s: %w", payload.OrderNumber, err))
		} else {
			countNotification("email", "ok")
		}
	}
	if payload.Phone != "" && p.SMS != nil {
		if err := p.SMS.SendSMS(ctx, payload.Phone, body); err != nil {
			countNotification("sms", "error")
			joined = errors.Join(joined, fmt.Errorf("sms %s: %w", payload.OrderNumber, err))
		} else {
			countNotification("sms", "ok")
		}
	}
	if joined != nil {
		p.Log.Error().Err(joined).Str("order_number", payload.OrderNumber).Msg("notification delivery failed")
	}
	return joined
}

func countNotification(channel, result string) {
	if obs.NotificationTotal != nil {
		obs.NotificationTotal.WithLabelValues(channel, result).Inc()
	}
}
