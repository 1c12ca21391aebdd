package insights

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/insights"
)

const (
	// defaultCashFlowDays is the window used when the caller gives no range.
	defaultCashFlowDays = 30
	// subscriptionLookbackDays covers enough charges to establish a
	// monthly cadence.
	subscriptionLookbackDays = 180

	defaultCurrency = "USD"
)

type Handler struct {
	svc *insights.Service
	now func() time.Time
}

func NewHandler(svc *insights.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cashflow", h.cashFlow)
	r.Get("/subscriptions", h.subscriptions)
	r.Put("/subscriptions/overrides/{merchant}", h.addOverride)
	r.Delete("/subscriptions/overrides/{merchant}", h.removeOverride)
}

func userID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-User-ID"))
}

func (h *Handler) window(r *http.Request, defaultDays int) (time.Time, time.Time) {
	to := h.now().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -defaultDays)

	if s := r.URL.Query().Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			from = t
		}
	}

	if s := r.URL.Query().Get("to"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			to = t
		}
	}

	return from, to
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	from, to := h.window(r, defaultCashFlowDays)

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = defaultCurrency
	}

	aggregates, err := h.svc.CashFlow(r.Context(), user, from, to, currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	net, err := aggregates.Net()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toCashFlowResponse(aggregates, net, from, to)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) subscriptions(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	from, to := h.window(r, subscriptionLookbackDays)

	subs, err := h.svc.Subscriptions(r.Context(), user, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSubscriptionResponseList(subs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) addOverride(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	merchant := chi.URLParam(r, "merchant")
	if merchant == "" {
		http.Error(w, "merchant is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.SuppressMerchant(r.Context(), user, merchant); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeOverride(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	merchant := chi.URLParam(r, "merchant")
	if merchant == "" {
		http.Error(w, "merchant is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.UnsuppressMerchant(r.Context(), user, merchant); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
