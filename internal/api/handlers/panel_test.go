package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/lineage"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

func newTestHandler(t *testing.T) (*PanelHandler, *panel.Store, *config.Config) {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			StatusFile:     filepath.Join(root, "status.json"),
			LineageLogFile: filepath.Join(root, "lineage_log.jsonl"),
		},
	}
	log := logger.NewNop()
	store := panel.NewStore(filepath.Join(root, "panel_monthly.csv"), log)
	return NewPanelHandler(store, cfg, log), store, cfg
}

func TestGetPanelEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panel", nil)
	rec := httptest.NewRecorder()
	h.GetPanel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Meta contracts.PanelMeta    `json:"meta"`
		Rows []contracts.MonthlyRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Meta.NRows)
	assert.Empty(t, body.Rows)
}

func TestGetPanelWithRows(t *testing.T) {
	h, store, _ := newTestHandler(t)

	batch := lineage.StartBatch(contracts.SourceEIA, "")
	_, err := store.AppendRevision([]contracts.MonthlyRow{
		{
			Period:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			ValueMMCF: 100,
			Metric:    contracts.MetricCompressorFuel,
			Freq:      contracts.FreqMonthly,
			Lineage:   batch,
		},
		{
			Period:    time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
			ValueMMCF: 110,
			Metric:    contracts.MetricCompressorFuel,
			Freq:      contracts.FreqMonthly,
			Lineage:   batch,
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panel", nil)
	rec := httptest.NewRecorder()
	h.GetPanel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Meta contracts.PanelMeta    `json:"meta"`
		Rows []contracts.MonthlyRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Meta.NRows)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, 100.0, body.Rows[0].ValueMMCF)
}

func TestGetStatusMissing(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatusOK(t *testing.T) {
	h, _, cfg := newTestHandler(t)

	content := `{"schema_version": 1, "status": "ok", "mode": "normal"}`
	require.NoError(t, os.WriteFile(cfg.Paths.StatusFile, []byte(content), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetStatusCorrupt(t *testing.T) {
	h, _, cfg := newTestHandler(t)

	require.NoError(t, os.WriteFile(cfg.Paths.StatusFile, []byte("{not json"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetLineageNewestFirst(t *testing.T) {
	h, _, cfg := newTestHandler(t)

	for i, id := range []string{"batch-a", "batch-b", "batch-c"} {
		rec := contracts.LineageRecord{
			BatchID:   id,
			AsofTS:    time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			RowsAdded: i + 1,
			Source:    contracts.SourceEIA,
		}
		require.NoError(t, panel.AppendLineage(cfg.Paths.LineageLogFile, rec))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lineage", nil)
	rec := httptest.NewRecorder()
	h.GetLineage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int                       `json:"count"`
		Batches []contracts.LineageRecord `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Batches, 3)
	assert.Equal(t, "batch-c", body.Batches[0].BatchID)
	assert.Equal(t, "batch-a", body.Batches[2].BatchID)
}

func TestGetLineageLimit(t *testing.T) {
	h, _, cfg := newTestHandler(t)

	for _, id := range []string{"batch-a", "batch-b", "batch-c"} {
		require.NoError(t, panel.AppendLineage(cfg.Paths.LineageLogFile, contracts.LineageRecord{
			BatchID: id,
			Source:  contracts.SourceEIA,
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lineage?limit=2", nil)
	rec := httptest.NewRecorder()
	h.GetLineage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int                       `json:"count"`
		Batches []contracts.LineageRecord `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "batch-c", body.Batches[0].BatchID)
}

func TestGetLineageBadLimit(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lineage?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.GetLineage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLineageEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lineage", nil)
	rec := httptest.NewRecorder()
	h.GetLineage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}
