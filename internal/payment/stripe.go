package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/resilience"
)

// Stripe implements the Provider interface using the PaymentIntents API.
// Confirmation happens on the kiosk via the client secret; there is no
// server-side notification flow for this provider.
type Stripe struct {
	SecretKey string
	Currency  string
	BaseURL   string
	Client    *resilience.HTTPClient
}

// Name identifies the provider in metrics and intent responses.
func (s Stripe) Name() string { return "stripe" }

func (s Stripe) apiURL() string {
	host := strings.TrimSpace(s.BaseURL)
	if host == "" {
		host = "https://api.stripe.com"
	}
	return strings.TrimRight(host, "/") + "/v1/payment_intents"
}

func (s Stripe) httpClient() resilience.HTTPClient {
	if s.Client != nil {
		return *s.Client
	}
	return resilience.HTTPClient{
		Client:      &http.Client{Timeout: 10 * time.Second},
		MaxAttempts: 3,
		BaseBackoff: 200 * time.Millisecond,
	}
}

// CreateIntent opens a PaymentIntent for the order amount and returns its
// client secret.
func (s Stripe) CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error) {
	if req.Amount <= 0 {
		return IntentResponse{}, errors.New("amount must be greater than zero")
	}
	currency := strings.ToLower(strings.TrimSpace(s.Currency))
	if currency == "" {
		currency = "zar"
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", currency)
	if req.OrderNumber != "" {
		form.Set("metadata[order_number]", req.OrderNumber)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.apiURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return IntentResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(s.SecretKey, "")

	resp, err := s.httpClient().Do(ctx, httpReq)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		ClientSecret string `json:"client_secret"`
		Error        struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return IntentResponse{}, fmt.Errorf("decode stripe response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := payload.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return IntentResponse{}, fmt.Errorf("stripe: %s", msg)
	}
	if payload.ClientSecret == "" {
		return IntentResponse{}, errors.New("stripe: missing client secret")
	}
	return IntentResponse{
		Provider:     s.Name(),
		ClientSecret: payload.ClientSecret,
	}, nil
}

// VerifyNotification is not supported; Stripe payments are confirmed client
// side and reconciled by amount when the order completes.
func (s Stripe) VerifyNotification(*http.Request, []byte) (NotifyResult, error) {
	return NotifyResult{Valid: false, Err: errors.New("stripe notifications not supported")}, nil
}
