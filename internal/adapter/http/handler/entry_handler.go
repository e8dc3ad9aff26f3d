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

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error)
	CancelEntry(ctx context.Context, id string) (*domain.Entry, error)
	LinkSource(ctx context.Context, id, module, sourceID string) (*domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
}

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create records a manual ledger entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput(actor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Cancel marks an entry cancelled and resyncs the account balance.
func (h *EntryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.CancelEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// LinkSource backfills the origin reference on a manual entry.
func (h *EntryHandler) LinkSource(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.LinkSource(r.Context(), chi.URLParam(r, "id"), req.SourceModule, req.SourceID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to link source", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries matching query filters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("account_id"))
}

// ListByAccount lists the entries of one account.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *EntryHandler) list(w http.ResponseWriter, r *http.Request, accountID string) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	}

	filter := domain.EntryFilter{
		AccountID:    accountID,
		From:         from,
		To:           to,
		SourceModule: r.URL.Query().Get("source_module"),
		SourceID:     r.URL.Query().Get("source_id"),
		Status:       domain.EntryStatus(r.URL.Query().Get("status")),
		Limit:        parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:       parseIntQuery(r, "offset", 0),
	}
	if v := r.URL.Query().Get("auto_posted"); v != "" {
		autoPosted := v == "true"
		filter.AutoPosted = &autoPosted
	}

	entries, err := h.entryUC.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
