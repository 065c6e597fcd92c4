package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/panel"
)

// statusSchemaVersion guards downstream consumers of status.json against
// silent shape changes.
const statusSchemaVersion = 1

// StatusReport is the machine-readable run verdict written to status.json.
type StatusReport struct {
	SchemaVersion int                   `json:"schema_version"`
	Status        string                `json:"status"`
	Mode          contracts.PublishMode `json:"mode"`
	Reasons       []string              `json:"reasons"`
	BatchID       string                `json:"batch_id"`
	AsofTS        string                `json:"asof_ts"`
	PanelRows     int                   `json:"panel_rows"`
	GeneratedAt   string                `json:"generated_at"`
}

// RunMeta is the operational record written to run_meta.json.
type RunMeta struct {
	BatchID    string `json:"batch_id"`
	AsofTS     string `json:"asof_ts"`
	Source     string `json:"source"`
	Series     string `json:"series"`
	Mode       string `json:"mode"`
	DryRun     bool   `json:"dry_run"`
	FetchOK    bool   `json:"fetch_ok"`
	CacheFresh bool   `json:"cache_fresh"`
	RowsAdded  int    `json:"rows_added"`
	PanelRows  int    `json:"panel_rows"`
	DurationMS int64  `json:"duration_ms"`
}

// writeArtifacts persists status.json, run_meta.json, the provisional
// notice and the lineage record. Dry runs still write status and run meta
// so CI can inspect the verdict, but never touch the lineage log.
func (o *Orchestrator) writeArtifacts(result *RunResult, rc RunConfig) error {
	if err := o.writeStatus(result); err != nil {
		return err
	}
	if err := o.writeRunMeta(result, rc); err != nil {
		return err
	}
	if err := o.writeNotice(result); err != nil {
		return err
	}

	if rc.DryRun || result.ExitCode == ExitAPI {
		return nil
	}

	rec := contracts.LineageRecord{
		BatchID:   result.Batch.BatchID.String(),
		AsofTS:    result.Batch.AsofTS.UTC().Format(time.RFC3339),
		RowsAdded: result.RowsAdded,
		Source:    result.Batch.Source,
		Notes:     result.Batch.Notes,
	}
	if !result.PanelStart.IsZero() {
		rec.Start = result.PanelStart.Format("2006-01-02")
		rec.End = result.PanelEnd.Format("2006-01-02")
	}
	if err := panel.AppendLineage(o.cfg.Paths.LineageLogFile, rec); err != nil {
		return fmt.Errorf("append lineage: %w", err)
	}
	return nil
}

func (o *Orchestrator) writeStatus(result *RunResult) error {
	report := StatusReport{
		SchemaVersion: statusSchemaVersion,
		Status:        result.Status,
		Mode:          result.Decision.Mode,
		Reasons:       result.Issues,
		BatchID:       result.Batch.BatchID.String(),
		AsofTS:        result.Batch.AsofTS.UTC().Format(time.RFC3339),
		PanelRows:     result.PanelRows,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if report.Reasons == nil {
		report.Reasons = []string{}
	}
	return writeJSON(o.cfg.Paths.StatusFile, report)
}

func (o *Orchestrator) writeRunMeta(result *RunResult, rc RunConfig) error {
	meta := RunMeta{
		BatchID:    result.Batch.BatchID.String(),
		AsofTS:     result.Batch.AsofTS.UTC().Format(time.RFC3339),
		Source:     string(result.Batch.Source),
		Series:     rc.Series,
		Mode:       rc.Mode,
		DryRun:     rc.DryRun,
		FetchOK:    result.FetchOK,
		CacheFresh: result.CacheFresh,
		RowsAdded:  result.RowsAdded,
		PanelRows:  result.PanelRows,
		DurationMS: result.Duration.Milliseconds(),
	}
	return writeJSON(o.cfg.Paths.RunMetaFile, meta)
}

// writeNotice maintains the provisional marker file: present with an
// explanation while the last publish was provisional, absent otherwise.
func (o *Orchestrator) writeNotice(result *RunResult) error {
	path := o.cfg.Paths.NoticeFile

	if result.Decision.Mode != contracts.ModeProvisional {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove notice: %w", err)
		}
		return nil
	}

	body := fmt.Sprintf(
		"PROVISIONAL DATA NOTICE\n\n"+
			"The monthly fuel panel was last published in provisional mode.\n"+
			"Reason: %s\n"+
			"Batch: %s\n"+
			"As of: %s\n\n"+
			"Downstream forecasts built on this vintage should be treated as\n"+
			"provisional until a normal-mode publish replaces it.\n",
		result.Decision.Reason,
		result.Batch.BatchID.String(),
		result.Batch.AsofTS.UTC().Format(time.RFC3339),
	)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write notice: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
