package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/albisri/kasledger/internal/adapter/http/dto"
	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

// MonitorService defines the behavior needed by MonitorHandler.
type MonitorService interface {
	FindDuplicates(ctx context.Context) ([]*domain.DuplicateGroup, error)
	FindOrphans(ctx context.Context) ([]*domain.Entry, error)
	SummarizeAutoPosted(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error)
	CheckBalances(ctx context.Context) ([]*usecase.BalanceDrift, error)
}

// MonitorHandler exposes the read-only consistency checks.
type MonitorHandler struct {
	monitorUC MonitorService
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorUC MonitorService) *MonitorHandler {
	return &MonitorHandler{monitorUC: monitorUC}
}

// Duplicates lists suspected duplicate posting groups.
func (h *MonitorHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.monitorUC.FindDuplicates(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to find duplicates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DuplicateGroupsFromDomain(groups))
}

// Orphans lists auto-posted entries whose origin record is gone.
func (h *MonitorHandler) Orphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := h.monitorUC.FindOrphans(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to find orphans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(orphans))
}

// Summary aggregates auto-posted entries per origin module. Defaults to the
// last 30 days when no range is given.
func (h *MonitorHandler) Summary(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.AddDate(0, 0, -30)
		from = &start
	}

	summaries, err := h.monitorUC.SummarizeAutoPosted(r.Context(), *from, *to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to summarize", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummariesFromDomain(summaries))
}

// BalanceDrift reports accounts whose cached balance disagrees with the one
// derived from posted entries.
func (h *MonitorHandler) BalanceDrift(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.monitorUC.CheckBalances(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DriftsFromUseCase(drifts))
}
