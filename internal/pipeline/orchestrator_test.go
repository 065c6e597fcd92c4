package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fueltracker/internal/cache"
	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/eia"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/internal/validate"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/httputil"
	"github.com/wonny/fueltracker/pkg/logger"
)

// fixedNow keeps staleness deterministic: panels ending 2024-01-31 are
// one business day old.
var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

// eiaResponse builds an EIA v2 payload with monthly periods from 2023-01
// through 2024-01 (13 rows).
func eiaResponse(override map[string]float64) string {
	type row struct {
		Period string  `json:"period"`
		Value  float64 `json:"value"`
	}
	rows := make([]row, 0, 13)
	cur := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		period := cur.Format("2006-01")
		value := 100.0 + float64(i)
		if v, ok := override[period]; ok {
			value = v
		}
		rows = append(rows, row{Period: period, Value: value})
		cur = cur.AddDate(0, 1, 0)
	}

	payload := map[string]interface{}{
		"response": map[string]interface{}{
			"total": fmt.Sprintf("%d", len(rows)),
			"data":  rows,
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

type testEnv struct {
	orch  *Orchestrator
	cfg   *config.Config
	cache *cache.Cache
}

// warmCache plants a fresh success marker so the next run decides ModeNormal.
func (e *testEnv) warmCache(t *testing.T) {
	t.Helper()
	_, err := e.cache.RecordSuccess([]byte(`{}`))
	require.NoError(t, err)
}

func newTestEnv(t *testing.T, serverURL string) *testEnv {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		Env:  "development",
		Mode: "publish",
		Paths: config.PathsConfig{
			DataDir:        filepath.Join(root, "data"),
			OutputsDir:     filepath.Join(root, "outputs"),
			SnapshotsDir:   filepath.Join(root, "snapshots"),
			PanelFile:      filepath.Join(root, "outputs", "panel_monthly.csv"),
			SnapshotFile:   filepath.Join(root, "snapshots", "panel_monthly_prev.csv"),
			LineageLogFile: filepath.Join(root, "outputs", "lineage_log.jsonl"),
			StatusFile:     filepath.Join(root, "outputs", "status.json"),
			RunMetaFile:    filepath.Join(root, "outputs", "run_meta.json"),
			NoticeFile:     filepath.Join(root, "outputs", "FORECAST_NOTICE.txt"),
			MetricsFile:    filepath.Join(root, "outputs", "metrics.csv"),
			ForecastFile:   filepath.Join(root, "outputs", "forecast_12m.csv"),
		},
		EIA: config.EIAConfig{
			APIKey:  "test-key",
			BaseURL: serverURL,
			Timeout: 5 * time.Second,
		},
		CacheTTLBusinessDays: 3,
		Validation:           config.ValidationConfig{MaxStaleBusinessDays: 3, TolerancePct: 0.02},
		Backtest:             config.BacktestConfig{Horizon: 12, Lookback: 60},
		LogLevel:             "error",
		LogFormat:            "console",
	}
	require.NoError(t, cfg.EnsureDirs())

	log := logger.NewNop()
	endpoints := config.Endpoints{
		"compressor_fuel": {Path: "natural-gas/cons/sum/data", Params: map[string]string{"frequency": "monthly"}},
	}

	httpClient := httputil.New(log, cfg.EIA.Timeout)
	client := eia.NewClient(httpClient, log, cfg.EIA, endpoints)
	builder := panel.NewBuilder(log)
	store := panel.NewStore(cfg.Paths.PanelFile, log)
	snaps := panel.NewStore(cfg.Paths.SnapshotFile, log)
	gate := validate.NewGate(validate.Config{
		MaxStaleBusinessDays: cfg.Validation.MaxStaleBusinessDays,
		TolerancePct:         cfg.Validation.TolerancePct,
	}, func() time.Time { return fixedNow })
	dataCache := cache.New(cfg.Paths.DataDir, func() time.Time { return fixedNow }, zerolog.Nop())

	return &testEnv{
		orch:  NewOrchestrator(client, builder, store, snaps, gate, dataCache, cfg, log),
		cfg:   cfg,
		cache: dataCache,
	}
}

func jsonServer(body func() string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body()))
	}))
}

func TestRunSuccessfulPull(t *testing.T) {
	server := jsonServer(func() string { return eiaResponse(nil) })
	defer server.Close()

	env := newTestEnv(t, server.URL)
	env.warmCache(t)

	result, err := env.orch.Run(context.Background(), RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, ExitOK, result.ExitCode)
	assert.Equal(t, contracts.ModeNormal, result.Decision.Mode)
	assert.True(t, result.FetchOK)
	assert.Equal(t, 13, result.RowsAdded)
	assert.Equal(t, 13, result.PanelRows)
	assert.Equal(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), result.PanelStart)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), result.PanelEnd)

	// status.json
	var report StatusReport
	data, err := os.ReadFile(env.cfg.Paths.StatusFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 1, report.SchemaVersion)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, contracts.ModeNormal, report.Mode)
	assert.Empty(t, report.Reasons)
	assert.Equal(t, result.Batch.BatchID.String(), report.BatchID)

	// run_meta.json
	var meta RunMeta
	data, err = os.ReadFile(env.cfg.Paths.RunMetaFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, 13, meta.RowsAdded)
	assert.True(t, meta.FetchOK)

	// lineage log
	records, err := panel.ReadLineage(env.cfg.Paths.LineageLogFile)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.Batch.BatchID.String(), records[0].BatchID)
	assert.Equal(t, 13, records[0].RowsAdded)

	// snapshot updated after a clean publish
	snap, err := panel.ReadFrame(env.cfg.Paths.SnapshotFile)
	require.NoError(t, err)
	assert.Equal(t, 13, snap.Len())

	// no provisional notice
	_, statErr := os.Stat(env.cfg.Paths.NoticeFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRevisionWithinTolerance(t *testing.T) {
	values := map[string]float64{}
	server := jsonServer(func() string { return eiaResponse(values) })
	defer server.Close()

	env := newTestEnv(t, server.URL)
	ctx := context.Background()

	_, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	// +1% on 2023-06: within the 2% band
	values["2023-06"] = 105.0 * 1.01

	result, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 0, result.RowsAdded, "revision adds no new periods")
	assert.Equal(t, 13, result.PanelRows)
}

func TestRunToleranceBreachVerdicts(t *testing.T) {
	values := map[string]float64{}
	server := jsonServer(func() string { return eiaResponse(values) })
	defer server.Close()

	tests := []struct {
		name       string
		mode       string
		wantStatus string
		wantExit   int
	}{
		{"publish hard-fails", "publish", StatusFailed, ExitValidation},
		{"ci soft-fails", "ci", StatusNeedsReview, ExitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, server.URL)
			ctx := context.Background()

			delete(values, "2023-06")
			_, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
			require.NoError(t, err)

			values["2023-06"] = 105.0 * 1.10
			result, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: tt.mode})
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantExit, result.ExitCode)
			require.Len(t, result.Issues, 1)
			assert.Contains(t, result.Issues[0], "tolerance:")

			// snapshot keeps the old baseline on a non-ok run
			snap, readErr := panel.ReadFrame(env.cfg.Paths.SnapshotFile)
			require.NoError(t, readErr)
			for _, row := range snap.Rows {
				if row.Period.Equal(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)) {
					assert.Equal(t, 105.0, row.ValueMMCF)
				}
			}
		})
	}
}

func TestRunFetchFailureFreshCache(t *testing.T) {
	server := jsonServer(func() string { return eiaResponse(nil) })

	env := newTestEnv(t, server.URL)
	ctx := context.Background()

	// first run succeeds and refreshes the cache
	_, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	// API goes away
	server.Close()

	result, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status, "fresh cache keeps the run publishable")
	assert.Equal(t, contracts.ModeNormal, result.Decision.Mode)
	assert.False(t, result.FetchOK)
	assert.True(t, result.CacheFresh)
	assert.Equal(t, 0, result.RowsAdded)
	assert.Equal(t, 13, result.PanelRows, "prior panel reused")
}

func TestRunFetchFailureStaleCache(t *testing.T) {
	server := jsonServer(func() string { return "" })
	server.Close() // immediately unreachable

	env := newTestEnv(t, server.URL)

	result, err := env.orch.Run(context.Background(), RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, ExitAPI, result.ExitCode)
	assert.Equal(t, contracts.ModeProvisional, result.Decision.Mode)
	assert.False(t, result.Decision.CanPublish)

	// verdict still lands in status.json
	var report StatusReport
	data, readErr := os.ReadFile(env.cfg.Paths.StatusFile)
	require.NoError(t, readErr)
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, StatusFailed, report.Status)

	// failed runs never enter the lineage log
	records, readErr := panel.ReadLineage(env.cfg.Paths.LineageLogFile)
	require.NoError(t, readErr)
	assert.Empty(t, records)
}

func TestRunSchemaError(t *testing.T) {
	server := jsonServer(func() string {
		return `{"response": {"total": "1", "data": [{"period": "2023-01", "value": -5.0}]}}`
	})
	defer server.Close()

	env := newTestEnv(t, server.URL)

	result, err := env.orch.Run(context.Background(), RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, ExitSchema, result.ExitCode)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "schema:")
}

func TestRunDryRun(t *testing.T) {
	server := jsonServer(func() string { return eiaResponse(nil) })
	defer server.Close()

	env := newTestEnv(t, server.URL)

	result, err := env.orch.Run(context.Background(), RunConfig{Series: "compressor_fuel", Mode: "publish", DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 13, result.PanelRows, "dry run still validates the would-be merge")

	_, statErr := os.Stat(env.cfg.Paths.PanelFile)
	assert.True(t, os.IsNotExist(statErr), "dry run must not write the panel")

	records, readErr := panel.ReadLineage(env.cfg.Paths.LineageLogFile)
	require.NoError(t, readErr)
	assert.Empty(t, records, "dry run must not append lineage")

	// status.json is still written for CI inspection
	_, statErr = os.Stat(env.cfg.Paths.StatusFile)
	assert.NoError(t, statErr)
}

func TestRunProvisionalNoticeLifecycle(t *testing.T) {
	server := jsonServer(func() string { return eiaResponse(nil) })
	defer server.Close()

	env := newTestEnv(t, server.URL)
	ctx := context.Background()

	// stale cache + successful fetch = provisional publish
	result, err := env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	// first ever run: no cache marker yet when freshness was judged
	assert.Equal(t, contracts.ModeProvisional, result.Decision.Mode)

	notice, readErr := os.ReadFile(env.cfg.Paths.NoticeFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(notice), "PROVISIONAL")
	assert.Contains(t, string(notice), result.Batch.BatchID.String())

	// second run sees the fresh cache: normal mode clears the notice
	result, err = env.orch.Run(ctx, RunConfig{Series: "compressor_fuel", Mode: "publish"})
	require.NoError(t, err)
	assert.Equal(t, contracts.ModeNormal, result.Decision.Mode)

	_, statErr := os.Stat(env.cfg.Paths.NoticeFile)
	assert.True(t, os.IsNotExist(statErr))
}
