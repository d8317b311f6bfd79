package payment

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// PayFast implements the Provider interface for PayFast's redirect flow.
// CreateIntent returns the signed form fields the kiosk posts to the process
// URL; VerifyNotification validates the ITN callback PayFast sends back.
type PayFast struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	BaseURL     string
	Sandbox     bool
}

// Name identifies the provider in metrics and intent responses.
func (p PayFast) Name() string { return "payfast" }

func (p PayFast) processURL() string {
	host := strings.TrimSpace(p.BaseURL)
	if host == "" {
		if p.Sandbox {
			return "https://sandbox.payfast.co.za/eng/process"
		}
		return "https://www.payfast.co.za/eng/process"
	}
	return host
}

// CreateIntent builds the signed redirect form for an order.
func (p PayFast) CreateIntent(_ context.Context, req IntentRequest) (IntentResponse, error) {
	if strings.TrimSpace(req.OrderNumber) == "" {
		return IntentResponse{}, errors.New("order number is required")
	}
	if req.Amount <= 0 {
		return IntentResponse{}, errors.New("amount must be greater than zero")
	}
	base := strings.TrimRight(req.ReturnBaseURL, "/")
	itemName := req.ItemName
	if itemName == "" {
		itemName = fmt.Sprintf("Restaurant Order #%s", req.OrderNumber)
	}
	fields := map[string]string{
		"merchant_id":  p.MerchantID,
		"merchant_key": p.MerchantKey,
		"return_url":   base + "/payment/success",
		"cancel_url":   base + "/payment/cancel",
		"notify_url":   base + "/api/v1/payments/notify",
		"m_payment_id": req.OrderNumber,
		"amount":       pricing.FormatMoney(req.Amount),
		"item_name":    itemName,
	}
	fields["signature"] = p.sign(fields)
	return IntentResponse{
		Provider:    p.Name(),
		RedirectURL: p.processURL(),
		Fields:      fields,
	}, nil
}

// sign computes the MD5 signature over the sorted field pairs plus the
// passphrase, matching what PayFast computes on its side.
func (p PayFast) sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	payload := strings.Join(pairs, "&")
	if p.Passphrase != "" {
		payload += "&passphrase=" + p.Passphrase
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyNotification validates an ITN post. The signature is rebuilt from the
// received fields and the posted merchant id must match ours before any of
// the payload is trusted.
func (p PayFast) VerifyNotification(_ *http.Request, body []byte) (NotifyResult, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return NotifyResult{Valid: false, Err: err}, nil
	}
	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	provided := fields["signature"]
	if provided == "" {
		return NotifyResult{Valid: false, Err: errors.New("missing signature")}, nil
	}
	expected := p.sign(fields)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
		return NotifyResult{Valid: false, Err: errors.New("invalid signature")}, nil
	}
	if p.MerchantID != "" && fields["merchant_id"] != p.MerchantID {
		return NotifyResult{Valid: false, Err: errors.New("merchant id mismatch")}, nil
	}

	orderNumber := fields["m_payment_id"]
	if orderNumber == "" {
		return NotifyResult{Valid: false, Err: errors.New("missing m_payment_id")}, nil
	}
	amount, err := pricing.ParseMoney(fields["amount_gross"])
	if err != nil {
		return NotifyResult{Valid: false, Err: err}, nil
	}

	status := StatusPending
	switch strings.ToUpper(strings.TrimSpace(fields["payment_status"])) {
	case "COMPLETE":
		status = StatusPaid
	case "FAILED", "CANCELLED":
		status = StatusFailed
	}

	return NotifyResult{
		Valid:           true,
		OrderNumber:     orderNumber,
		Amount:          amount,
		Status:          status,
		ProviderPayload: body,
	}, nil
}
