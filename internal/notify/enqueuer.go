package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/events"
)

// TaskClient is the asynq surface the enqueuer needs. *asynq.Client satisfies it.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer translates order events into queued notification tasks. It
// implements events.Notifier.
type Enqueuer struct {
	Client TaskClient
	Log    zerolog.Logger
}

// Notify queues the notification task for the event.
func (e *Enqueuer) Notify(ctx context.Context, ev events.Event) error {
	if e == nil || e.Client == nil {
		return nil
	}
	var task *asynq.Task
	var err error
	switch ev.Topic {
	case events.TopicOrderCreated:
		var body struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
			Total int64  `json:"total"`
		}
		if err := json.Unmarshal(ev.Payload, &body); err != nil {
			return fmt.Errorf("decode order.created payload: %w", err)
		}
		task, err = NewOrderConfirmationTask(TaskPayload{
			OrderNumber: ev.OrderNumber,
			Email:       body.Email,
			Phone:       body.Phone,
			Amount:      body.Total,
		})
	case events.TopicOrderPaid:
		var body struct {
			Amount int64 `json:"amount"`
		}
		if err := json.Unmarshal(ev.Payload, &body); err != nil {
			return fmt.Errorf("decode order.paid payload: %w", err)
		}
		task, err = NewPaymentReceiptTask(TaskPayload{
			OrderNumber: ev.OrderNumber,
			Amount:      body.Amount,
		})
	default:
		return nil
	}
	if err != nil {
		return err
	}
	info, err := e.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	e.Log.Debug().Str("task_id", info.ID).Str("type", task.Type()).Str("order_number", ev.OrderNumber).Msg("notification queued")
	return nil
}
