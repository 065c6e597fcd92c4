package contracts

import "time"

const (
	// MetricCompressorFuel 패널이 추적하는 고정 지표
	MetricCompressorFuel = "pipeline_compressor_fuel"
	// FreqMonthly 패널 주기는 월간 고정
	FreqMonthly = "monthly"
)

// PanelColumns is the fixed persisted schema of the monthly panel, in order.
var PanelColumns = []string{"period", "value", "metric", "freq", "batch_id", "asof_ts"}

// MonthlyRow is one observation of the monthly fuel-consumption panel.
// Period is always the last calendar day of its month, and after a merge at
// most one row per period survives in a store.
type MonthlyRow struct {
	Period    time.Time `json:"period"`
	ValueMMCF float64   `json:"value_mmcf"` // million cubic feet, non-negative
	Metric    string    `json:"metric"`
	Freq      string    `json:"freq"`
	Lineage   BatchMeta `json:"lineage"`
}

// PanelMeta is descriptive information about a panel frame.
type PanelMeta struct {
	VintageLabel string    `json:"vintage_label"`
	NRows        int       `json:"n_rows"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// LineageRecord is one append-only lineage log entry, written per run.
type LineageRecord struct {
	BatchID   string `json:"batch_id"`
	AsofTS    string `json:"asof_ts"`
	RowsAdded int    `json:"rows_added"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Source    Source `json:"source"`
	Notes     string `json:"notes,omitempty"`
}

// MonthEnd coerces any date to the last calendar day of its month.
// Already month-end input is a no-op.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	// day 0 of the next month = last day of this month
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}
