package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// OrderLookup is the order surface the payment handlers need.
type OrderLookup interface {
	AmountDue(ctx context.Context, orderNumber string) (pricing.Money, error)
	MarkPaid(ctx context.Context, orderNumber string, amount pricing.Money) error
}

// Handler exposes the payment endpoints. The amount for an intent is always
// read from the stored order, never taken from the client.
type Handler struct {
	PayFast Provider
	Stripe  Provider
	Orders  OrderLookup
	// BaseURL is the fallback for return and notify URLs when the kiosk
	// client does not send its own.
	BaseURL string
	Log     zerolog.Logger
}

type intentBody struct {
	OrderNumber string `json:"orderNumber"`
	BaseURL     string `json:"baseUrl"`
}

// Routes returns the payment routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/stripe/intent", h.stripeIntent)
	r.Post("/payfast", h.payfastForm)
	r.Post("/notify", h.notify)
	return r
}

func (h *Handler) stripeIntent(w http.ResponseWriter, r *http.Request) {
	h.createIntent(w, r, h.Stripe)
}

func (h *Handler) payfastForm(w http.ResponseWriter, r *http.Request) {
	h.createIntent(w, r, h.PayFast)
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request, provider Provider) {
	var body intentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	if body.OrderNumber == "" {
		common.JSONError(w, http.StatusBadRequest, "MISSING_ORDER", "orderNumber is required", nil)
		return
	}
	amount, err := h.Orders.AmountDue(r.Context(), body.OrderNumber)
	if err != nil {
		countIntent(provider.Name(), "error")
		if errors.Is(err, order.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "unknown order", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	base := body.BaseURL
	if base == "" {
		base = h.BaseURL
	}
	resp, err := provider.CreateIntent(r.Context(), IntentRequest{
		OrderNumber:   body.OrderNumber,
		Amount:        amount,
		ReturnBaseURL: base,
	})
	if err != nil {
		countIntent(provider.Name(), "error")
		h.Log.Error().Err(err).Str("provider", provider.Name()).Str("order_number", body.OrderNumber).Msg("create payment intent")
		common.JSONError(w, http.StatusBadGateway, "PAYMENT_PROVIDER", "failed to create payment intent", nil)
		return
	}
	countIntent(provider.Name(), "ok")
	common.JSONData(w, http.StatusOK, resp)
}

// notify handles PayFast ITN posts. PayFast retries until it receives a 200,
// so verification failures are logged and answered with 400 only when the
// payload itself is unusable.
func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		countNotify(h.PayFast.Name(), "error")
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable body", nil)
		return
	}
	result, err := h.PayFast.VerifyNotification(r, body)
	if err != nil {
		countNotify(h.PayFast.Name(), "error")
		common.WriteError(w, err)
		return
	}
	if !result.Valid {
		countNotify(h.PayFast.Name(), "invalid")
		h.Log.Warn().Err(result.Err).Msg("rejected payment notification")
		common.JSONError(w, http.StatusBadRequest, "INVALID_NOTIFICATION", "notification rejected", nil)
		return
	}
	if result.Status != StatusPaid {
		countNotify(h.PayFast.Name(), "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}
	due, err := h.Orders.AmountDue(r.Context(), result.OrderNumber)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			countNotify(h.PayFast.Name(), "unknown_order")
			h.Log.Warn().Str("order_number", result.OrderNumber).Msg("notification for unknown order")
			common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "unknown order", nil)
			return
		}
		countNotify(h.PayFast.Name(), "error")
		common.WriteError(w, err)
		return
	}
	if result.Amount != due {
		countNotify(h.PayFast.Name(), "amount_mismatch")
		h.Log.Warn().Str("order_number", result.OrderNumber).
			Int64("notified_amount", result.Amount).Int64("amount_due", due).
			Msg("notification amount does not match order total")
		common.JSONError(w, http.StatusBadRequest, "AMOUNT_MISMATCH", "notified amount does not match order", nil)
		return
	}
	if err := h.Orders.MarkPaid(r.Context(), result.OrderNumber, result.Amount); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			countNotify(h.PayFast.Name(), "unknown_order")
			h.Log.Warn().Str("order_number", result.OrderNumber).Msg("notification for unknown order")
			common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "unknown order", nil)
			return
		}
		countNotify(h.PayFast.Name(), "error")
		common.WriteError(w, err)
		return
	}
	countNotify(h.PayFast.Name(), "ok")
	h.Log.Info().Str("order_number", result.OrderNumber).Int64("amount", result.Amount).Msg("order paid")
	w.WriteHeader(http.StatusOK)
}

func countIntent(provider, result string) {
	if obs.PaymentIntentTotal != nil {
		obs.PaymentIntentTotal.WithLabelValues(provider, result).Inc()
	}
}

func countNotify(provider, result string) {
	if obs.PaymentNotifyTotal != nil {
		obs.PaymentNotifyTotal.WithLabelValues(provider, result).Inc()
	}
}
