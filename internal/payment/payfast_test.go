package payment_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/payment"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

func testPayFast() payment.PayFast {
	return payment.PayFast{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "jt7NOE43FZPn",
		Sandbox:     true,
	}
}

func TestPayFastIntentFields(t *testing.T) {
	pf := testPayFast()
	resp, err := pf.CreateIntent(context.Background(), payment.IntentRequest{
		OrderNumber:   "AB12CD34",
		Amount:        21700,
		ReturnBaseURL: "https://kiosk.example.com/",
	})
	require.NoError(t, err)
	require.Equal(t, "payfast", resp.Provider)
	require.Equal(t, "https://sandbox.payfast.co.za/eng/process", resp.RedirectURL)
	require.Equal(t, "217.00", resp.Fields["amount"])
	require.Equal(t, "AB12CD34", resp.Fields["m_payment_id"])
	require.Equal(t, "https://kiosk.example.com/payment/success", resp.Fields["return_url"])
	require.Equal(t, "https://kiosk.example.com/api/v1/payments/notify", resp.Fields["notify_url"])

	// Recompute the signature the way the gateway does: sorted key=value
	// pairs joined with & then the passphrase appended.
	keys := make([]string, 0, len(resp.Fields))
	for k := range resp.Fields {
		if k != "signature" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+resp.Fields[k])
	}
	sum := md5.Sum([]byte(strings.Join(pairs, "&") + "&passphrase=jt7NOE43FZPn"))
	require.Equal(t, hex.EncodeToString(sum[:]), resp.Fields["signature"])
}

func TestPayFastIntentValidation(t *testing.T) {
	pf := testPayFast()
	_, err := pf.CreateIntent(context.Background(), payment.IntentRequest{Amount: 100})
	require.Error(t, err)
	_, err = pf.CreateIntent(context.Background(), payment.IntentRequest{OrderNumber: "AB12CD34"})
	require.Error(t, err)
}

// signedITN builds an ITN form body signed with the given provider config.
func signedITN(t *testing.T, pf payment.PayFast, fields map[string]string) []byte {
	t.Helper()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	payload := strings.Join(pairs, "&")
	if pf.Passphrase != "" {
		payload += "&passphrase=" + pf.Passphrase
	}
	sum := md5.Sum([]byte(payload))

	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	form.Set("signature", hex.EncodeToString(sum[:]))
	return []byte(form.Encode())
}

func TestPayFastVerifyNotification(t *testing.T) {
	pf := testPayFast()
	body := signedITN(t, pf, map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "COMPLETE",
		"amount_gross":   "217.00",
	})

	result, err := pf.VerifyNotification(nil, body)
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, "AB12CD34", result.OrderNumber)
	require.Equal(t, pricing.Money(21700), result.Amount)
	require.Equal(t, payment.StatusPaid, result.Status)
}

func TestPayFastVerifyRejectsTampering(t *testing.T) {
	pf := testPayFast()
	body := signedITN(t, pf, map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "COMPLETE",
		"amount_gross":   "217.00",
	})
	tampered := []byte(strings.Replace(string(body), "217.00", "1.00", 1))

	result, err := pf.VerifyNotification(nil, tampered)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Error(t, result.Err)
}

func TestPayFastVerifyRejectsForeignMerchant(t *testing.T) {
	pf := testPayFast()
	// correctly signed, but for some other merchant account
	body := signedITN(t, pf, map[string]string{
		"merchant_id":    "20000200",
		"m_payment_id":   "AB12CD34",
		"payment_status": "COMPLETE",
		"amount_gross":   "217.00",
	})

	result, err := pf.VerifyNotification(nil, body)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Error(t, result.Err)
}

func TestPayFastVerifyMissingSignature(t *testing.T) {
	pf := testPayFast()
	form := url.Values{}
	form.Set("m_payment_id", "AB12CD34")
	form.Set("payment_status", "COMPLETE")
	form.Set("amount_gross", "217.00")

	result, err := pf.VerifyNotification(nil, []byte(form.Encode()))
	require.NoError(t, err)
	require.False(t, result.Valid)
}

func TestPayFastVerifyNonComplete(t *testing.T) {
	pf := testPayFast()
	body := signedITN(t, pf, map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "FAILED",
		"amount_gross":   "217.00",
	})

	result, err := pf.VerifyNotification(nil, body)
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, payment.StatusFailed, result.Status)
}
