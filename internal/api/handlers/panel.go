package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

// PanelHandler handles panel-related API endpoints
// ⭐ SSOT: 패널 API 핸들러는 이 구조체에서만
type PanelHandler struct {
	store  *panel.Store
	cfg    *config.Config
	logger *logger.Logger
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(store *panel.Store, cfg *config.Config, log *logger.Logger) *PanelHandler {
	return &PanelHandler{
		store:  store,
		cfg:    cfg,
		logger: log,
	}
}

// GetPanel returns the current panel with its descriptive metadata
// GET /api/v1/panel
func (h *PanelHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	frame := h.store.Load()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta": frame.Meta(),
		"rows": frame.Rows,
	})
}

// GetStatus returns the last run verdict from status.json
// GET /api/v1/status
func (h *PanelHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.cfg.Paths.StatusFile)
	if err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "No run status available yet")
			return
		}
		h.logger.WithError(err).Error("Failed to read status file")
		respondError(w, http.StatusInternalServerError, "Failed to read run status")
		return
	}

	var status json.RawMessage
	if err := json.Unmarshal(data, &status); err != nil {
		h.logger.WithError(err).Error("Corrupt status file")
		respondError(w, http.StatusInternalServerError, "Run status is corrupt")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// GetLineage returns the batch history, newest first
// GET /api/v1/lineage?limit=N
func (h *PanelHandler) GetLineage(w http.ResponseWriter, r *http.Request) {
	records, err := panel.ReadLineage(h.cfg.Paths.LineageLogFile)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read lineage log")
		respondError(w, http.StatusInternalServerError, "Failed to read lineage history")
		return
	}

	// newest first
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"batches": records,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
