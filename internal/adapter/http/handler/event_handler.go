package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/albisri/kasledger/internal/adapter/http/dto"
	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

// ReconcilerService defines the behavior needed by EventHandler.
type ReconcilerService interface {
	Reconcile(ctx context.Context, event *domain.PostingEvent) (*usecase.ReconcileResult, error)
	Unpost(ctx context.Context, module, sourceID string) (*usecase.ReconcileResult, error)
}

// EventHandler receives finalized business events from origin modules and
// hands them to the reconciler.
type EventHandler struct {
	reconcilerUC ReconcilerService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(reconcilerUC ReconcilerService) *EventHandler {
	return &EventHandler{reconcilerUC: reconcilerUC}
}

// Post reconciles an event into a posted ledger entry. A malformed event is
// a 400; an operational failure still returns 200 with a warning, because
// the originating business action has already succeeded.
func (h *EventHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostingEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.reconcilerUC.Reconcile(r.Context(), req.ToDomain())
	if err != nil {
		writeError(w, mapDomainError(err), "invalid event", err.Error())
		return
	}

	status := http.StatusCreated
	if result.AlreadyPosted || result.Warning != "" {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.ReconcileFromResult(result))
}

// Unpost reverses the posting for a deleted origin record.
func (h *EventHandler) Unpost(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	sourceID := chi.URLParam(r, "sourceID")

	result, err := h.reconcilerUC.Unpost(r.Context(), module, sourceID)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid unpost request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconcileFromResult(result))
}
