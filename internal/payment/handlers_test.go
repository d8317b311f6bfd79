package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/payment"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

type fakeOrders struct {
	totals map[string]pricing.Money
	paid   map[string]pricing.Money
}

func (f *fakeOrders) AmountDue(_ context.Context, number string) (pricing.Money, error) {
	total, ok := f.totals[number]
	if !ok {
		return 0, order.ErrNotFound
	}
	return total, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, number string, amount pricing.Money) error {
	if _, ok := f.totals[number]; !ok {
		return order.ErrNotFound
	}
	f.paid[number] = amount
	return nil
}

func newPaymentRouter(orders *fakeOrders) chi.Router {
	h := &payment.Handler{
		PayFast: testPayFast(),
		Stripe:  payment.Stripe{SecretKey: "sk_test_123"},
		Orders:  orders,
	}
	r := chi.NewRouter()
	r.Mount("/api/v1/payments", h.Routes())
	return r
}

func TestPayFastFormEndpoint(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{"AB12CD34": 21700}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	body, _ := json.Marshal(map[string]string{"orderNumber": "AB12CD34", "baseUrl": "https://kiosk.example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/payfast", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data payment.IntentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "payfast", resp.Data.Provider)
	require.Equal(t, "217.00", resp.Data.Fields["amount"], "amount comes from the stored order")
	require.NotEmpty(t, resp.Data.Fields["signature"])
}

func TestIntentUnknownOrder(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	body, _ := json.Marshal(map[string]string{"orderNumber": "MISSING1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/payfast", bytes.NewReader(body)))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/intent", bytes.NewReader([]byte(`{}`))))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifyMarksOrderPaid(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{"AB12CD34": 21700}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	body := signedITN(t, testPayFast(), map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "COMPLETE",
		"amount_gross":   "217.00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, pricing.Money(21700), orders.paid["AB12CD34"])
}

func TestNotifyRejectsAmountMismatch(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{"AB12CD34": 21700}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	// valid signature, wrong amount: must not settle the order
	body := signedITN(t, testPayFast(), map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "COMPLETE",
		"amount_gross":   "5.00",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, orders.paid)
}

func TestNotifyRejectsBadSignature(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{"AB12CD34": 21700}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	body := []byte("m_payment_id=AB12CD34&payment_status=COMPLETE&amount_gross=217.00&signature=deadbeef")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, orders.paid)
}

func TestNotifyIgnoresNonComplete(t *testing.T) {
	orders := &fakeOrders{totals: map[string]pricing.Money{"AB12CD34": 21700}, paid: map[string]pricing.Money{}}
	router := newPaymentRouter(orders)

	body := signedITN(t, testPayFast(), map[string]string{
		"merchant_id":    "10000100",
		"m_payment_id":   "AB12CD34",
		"payment_status": "PENDING",
		"amount_gross":   "217.00",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, orders.paid)
}
