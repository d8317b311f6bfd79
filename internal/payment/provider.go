package payment

import (
	"context"
	"net/http"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// IntentRequest captures the information required to open a payment with a provider.
type IntentRequest struct {
	OrderNumber   string
	Amount        pricing.Money
	ItemName      string
	ReturnBaseURL string
}

// IntentResponse is the normalised provider reply. Stripe fills ClientSecret;
// PayFast fills RedirectURL plus the signed form fields the kiosk posts.
type IntentResponse struct {
	Provider     string            `json:"provider"`
	ClientSecret string            `json:"clientSecret,omitempty"`
	RedirectURL  string            `json:"redirectUrl,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// NotifyResult contains the normalised data extracted from a provider
// notification after signature verification.
type NotifyResult struct {
	Valid           bool
	OrderNumber     string
	Amount          pricing.Money
	Status          string
	ProviderPayload []byte
	Err             error
}

// Payment statuses normalised across providers.
const (
	StatusPaid    = "PAID"
	StatusPending = "PENDING"
	StatusFailed  = "FAILED"
)

// Provider abstracts the operations required from an upstream payment provider.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error)
	VerifyNotification(r *http.Request, body []byte) (NotifyResult, error)
}
