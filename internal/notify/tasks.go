package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// Task types processed by the notification worker.
const (
	TypeOrderConfirmation = "notify:order_confirmation"
	TypePaymentReceipt    = "notify:payment_receipt"
)

// TaskPayload is the shared payload for notification tasks.
type TaskPayload struct {
	OrderNumber string        `json:"orderNumber"`
	Email       string        `json:"email,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	Amount      pricing.Money `json:"amount"`
}

// NewOrderConfirmationTask builds the task queued when an order is created.
func NewOrderConfirmationTask(p TaskPayload) (*asynq.Task, error) {
	return newTask(TypeOrderConfirmation, p)
}

// NewPaymentReceiptTask builds the task queued when an order is paid.
func NewPaymentReceiptTask(p TaskPayload) (*asynq.Task, error) {
	return newTask(TypePaymentReceipt, p)
}

func newTask(kind string, p TaskPayload) (*asynq.Task, error) {
	if p.OrderNumber == "" {
		return nil, fmt.Errorf("%s: order number is required", kind)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", kind, err)
	}
	return asynq.NewTask(kind, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}
