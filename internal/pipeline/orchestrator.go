// Package pipeline coordinates one ingestion run: fetch, build, merge,
// validate, decide, publish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fueltracker/internal/cache"
	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/eia"
	"github.com/wonny/fueltracker/internal/lineage"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/internal/provisional"
	"github.com/wonny/fueltracker/internal/validate"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

// Process exit codes. The CLI maps a RunResult to one of these.
const (
	ExitOK         = 0
	ExitValidation = 2
	ExitAPI        = 3
	ExitSchema     = 4
)

// Run statuses written to status.json.
const (
	StatusOK          = "ok"
	StatusNeedsReview = "needs_review"
	StatusFailed      = "failed"
)

// Orchestrator coordinates the full pull pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	client  *eia.Client
	builder *panel.Builder
	store   *panel.Store
	snaps   *panel.Store
	gate    *validate.Gate
	cache   *cache.Cache
	cfg     *config.Config
	logger  *logger.Logger
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	client *eia.Client,
	builder *panel.Builder,
	store *panel.Store,
	snaps *panel.Store,
	gate *validate.Gate,
	dataCache *cache.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		client:  client,
		builder: builder,
		store:   store,
		snaps:   snaps,
		gate:    gate,
		cache:   dataCache,
		cfg:     cfg,
		logger:  log,
	}
}

// RunConfig holds per-run parameters.
type RunConfig struct {
	Series string // endpoint key in the endpoints file
	Mode   string // "publish" (hard gate) or "ci" (soft gate)
	DryRun bool   // validate without touching the panel file
	Notes  string
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	Batch      contracts.BatchMeta
	Status     string
	Decision   contracts.PublishDecision
	Issues     []string
	FetchOK    bool
	CacheFresh bool
	RowsAdded  int
	PanelRows  int
	PanelStart time.Time
	PanelEnd   time.Time
	ExitCode   int
	Duration   time.Duration
}

// Run executes the pipeline: fetch → build → merge → validate → decide.
// Stage failures degrade into the result rather than aborting; the returned
// error covers only artifact-persistence problems.
func (o *Orchestrator) Run(ctx context.Context, rc RunConfig) (*RunResult, error) {
	startTime := time.Now()

	batch := lineage.StartBatch(contracts.SourceEIA, rc.Notes)
	result := &RunResult{
		Batch:    batch,
		Status:   StatusFailed,
		ExitCode: ExitOK,
	}

	o.logger.WithFields(map[string]interface{}{
		"batch_id": batch.BatchID.String(),
		"asof_ts":  batch.AsofTS.Format(time.RFC3339),
		"series":   rc.Series,
		"mode":     rc.Mode,
		"dry_run":  rc.DryRun,
	}).Info("Starting pull run")

	// 캐시 신선도는 fetch 결과와 무관하게 먼저 판정
	result.CacheFresh = o.cache.IsFresh(o.cfg.CacheTTLBusinessDays)

	fetched, fetchErr := o.runFetch(ctx, rc.Series)
	result.FetchOK = fetchErr == nil

	result.Decision = provisional.Decide(result.CacheFresh, result.FetchOK)

	if !result.Decision.CanPublish {
		// 신선한 데이터가 전혀 없음: 게시 불가
		result.Status = StatusFailed
		result.Issues = append(result.Issues, fmt.Sprintf("api: %v", fetchErr))
		result.ExitCode = ExitAPI
		result.Duration = time.Since(startTime)
		return result, o.writeArtifacts(result, rc)
	}

	frame, buildErr := o.runBuild(fetched, batch, rc.DryRun, result)
	if buildErr != nil {
		if contracts.IsSchemaError(buildErr) {
			result.Status = StatusFailed
			result.Issues = append(result.Issues, buildErr.Error())
			result.ExitCode = ExitSchema
			result.Duration = time.Since(startTime)
			return result, o.writeArtifacts(result, rc)
		}
		result.Duration = time.Since(startTime)
		return result, fmt.Errorf("merge revision: %w", buildErr)
	}
	result.PanelRows = frame.Len()
	if !frame.Empty() {
		result.PanelStart = frame.Start()
		result.PanelEnd = frame.End()
	}

	result.Issues = append(result.Issues, o.runValidate(frame)...)

	o.finalize(result, rc)
	result.Duration = time.Since(startTime)

	if err := o.writeArtifacts(result, rc); err != nil {
		return result, err
	}

	if result.Status == StatusOK && result.FetchOK && !rc.DryRun {
		if err := o.snaps.Save(frame); err != nil {
			return result, fmt.Errorf("update snapshot: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"batch_id":   batch.BatchID.String(),
		"status":     result.Status,
		"mode":       string(result.Decision.Mode),
		"rows_added": result.RowsAdded,
		"panel_rows": result.PanelRows,
		"issues":     len(result.Issues),
		"duration":   result.Duration.Seconds(),
	}).Info("Pull run completed")

	return result, nil
}

// runFetch retrieves the series and refreshes the cache on success. A fetch
// failure is reported, not fatal; the provisional policy decides what it
// means.
func (o *Orchestrator) runFetch(ctx context.Context, series string) (*eia.FetchResult, error) {
	o.logger.Info("Running fetch stage")

	fetched, err := o.client.Fetch(ctx, series)
	if err != nil {
		o.logger.WithError(err).Warn("fetch failed")
		return nil, err
	}

	if _, err := o.cache.RecordSuccess(fetched.Payload); err != nil {
		// 캐시 갱신 실패는 치명적이지 않음
		o.logger.WithError(err).Warn("failed to record cache payload")
	}

	o.logger.WithField("rows", len(fetched.Rows)).Info("fetch stage completed")
	return fetched, nil
}

// runBuild normalizes fetched rows and merges them into the panel. When the
// fetch failed but publishing is still allowed, the prior panel is reused
// untouched.
func (o *Orchestrator) runBuild(fetched *eia.FetchResult, batch contracts.BatchMeta, dryRun bool, result *RunResult) (*panel.Frame, error) {
	o.logger.Info("Running build stage")

	if fetched == nil {
		frame := o.store.Load()
		o.logger.WithField("panel_rows", frame.Len()).Info("no new data, reusing prior panel")
		return frame, nil
	}

	built, err := o.builder.Build(fetched.Rows, batch)
	if err != nil {
		return nil, err
	}
	if built.Empty() {
		frame := o.store.Load()
		o.logger.Warn("fetch returned no rows, reusing prior panel")
		return frame, nil
	}
	rows := built.Rows

	existing := o.store.Load()
	known := make(map[int64]bool, existing.Len())
	for _, r := range existing.Rows {
		known[r.Period.Unix()] = true
	}

	var merged *panel.Frame
	if dryRun {
		merged = o.store.Merge(rows)
		o.logger.Info("dry run: panel file not modified")
	} else {
		merged, err = o.store.AppendRevision(rows)
		if err != nil {
			return nil, err
		}
	}

	for _, r := range merged.Rows {
		if !known[r.Period.Unix()] {
			result.RowsAdded++
		}
	}

	return merged, nil
}

// runValidate checks the merged panel against the prior published snapshot.
func (o *Orchestrator) runValidate(frame *panel.Frame) []string {
	o.logger.Info("Running validation stage")

	var snapshot *panel.Frame
	if o.snaps != nil {
		if snap, err := panel.ReadFrame(o.snaps.Path()); err == nil {
			snapshot = snap
		}
	}

	issues := o.gate.Check(frame, snapshot)
	if len(issues) > 0 {
		o.logger.WithField("issues", issues).Warn("validation issues found")
	}
	return issues
}

// finalize maps validation issues and the publish decision to a status and
// exit code. CI mode soft-fails validation issues to needs_review.
func (o *Orchestrator) finalize(result *RunResult, rc RunConfig) {
	switch {
	case len(result.Issues) == 0:
		result.Status = StatusOK
		result.ExitCode = ExitOK
	case rc.Mode == "ci":
		result.Status = StatusNeedsReview
		result.ExitCode = ExitOK
	default:
		result.Status = StatusFailed
		result.ExitCode = ExitValidation
	}
}
