package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcarver/ledgerlink/internal/webhook"
)

type Handler struct {
	verifier   *webhook.Verifier
	dispatcher *webhook.Dispatcher
}

func NewHandler(verifier *webhook.Verifier, dispatcher *webhook.Dispatcher) *Handler {
	return &Handler{verifier: verifier, dispatcher: dispatcher}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/provider", h.receive)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	if err := h.verifier.Verify(token); err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event webhook.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// 200 regardless of whether the event matched anything, so the
	// provider stops retrying deliveries we have chosen to ignore.
	w.WriteHeader(http.StatusOK)
}
