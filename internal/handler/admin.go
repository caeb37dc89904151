package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fxrates/fxrates/internal/model"
	"github.com/fxrates/fxrates/internal/service"
)

// Refresher forces a dataset refresh.
type Refresher interface {
	Trigger(ctx context.Context) error
}

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	svc       *service.RatesService
	refresher Refresher
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.RatesService, refresher Refresher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:       svc,
		refresher: refresher,
		logger:    logger,
	}
}

// RefreshResponse describes the dataset after a forced refresh.
type RefreshResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	Days       int       `json:"days"`
	Currencies int       `json:"currencies"`
	Timeframe  [2]string `json:"timeframe"`
}

// Refresh forces an immediate dataset refresh and reports the result.
// POST /api/v1/refresh
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.Trigger(r.Context()); err != nil {
		h.logger.Error("forced refresh failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "refresh failed: " + err.Error(),
		})
		return
	}

	ds := h.svc.Dataset()
	first, last, ok := ds.Timeframe()
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "no rates available",
		})
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		SnapshotID: ds.ID,
		Days:       len(ds.Days),
		Currencies: len(ds.Currencies),
		Timeframe: [2]string{
			first.Format(model.DateLayout),
			last.Format(model.DateLayout),
		},
	})
}
