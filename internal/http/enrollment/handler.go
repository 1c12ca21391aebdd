package enrollment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/enrollment"
	"github.com/jcarver/ledgerlink/internal/provider"
	"github.com/jcarver/ledgerlink/internal/syncer"
)

type Handler struct {
	svc   *enrollment.Service
	syncs *syncer.Service
}

func NewHandler(svc *enrollment.Service, syncs *syncer.Service) *Handler {
	return &Handler{svc: svc, syncs: syncs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.connect)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/sync", h.sync)
	r.Post("/{id}/disconnect", h.disconnect)
}

func userID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-User-ID"))
}

type connectRequest struct {
	AccessToken          string  `json:"access_token"`
	ProviderEnrollmentID string  `json:"enrollment_id"`
	InstitutionName      *string `json:"institution_name,omitempty"`
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AccessToken == "" || req.ProviderEnrollmentID == "" {
		http.Error(w, "access_token and enrollment_id are required", http.StatusBadRequest)
		return
	}

	e, err := h.syncs.Connect(r.Context(), syncer.ConnectParams{
		UserID:               user,
		AccessToken:          req.AccessToken,
		ProviderEnrollmentID: req.ProviderEnrollmentID,
		InstitutionName:      req.InstitutionName,
	})
	if err != nil {
		var provErr *provider.Error
		if errors.As(err, &provErr) {
			http.Error(w, provErr.Message, http.StatusBadGateway)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	enrollments, err := h.svc.List(r.Context(), user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(enrollments)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			http.Error(w, "enrollment not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.syncs.SyncTransactions(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, enrollment.ErrNotFound):
			http.Error(w, "enrollment not found", http.StatusNotFound)
		case errors.Is(err, syncer.ErrSyncInProgress):
			http.Error(w, "sync already in progress", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Disconnect(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrNotFound):
			http.Error(w, "enrollment not found", http.StatusNotFound)
		case errors.Is(err, enrollment.ErrInvalidTransition):
			http.Error(w, "enrollment already disconnected", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
