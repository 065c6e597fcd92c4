// Package panel builds, merges and persists the canonical monthly
// fuel-consumption panel.
package panel

import (
	"sort"
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
)

// Frame is an ordered sequence of monthly rows plus the column set it was
// persisted with. A merged frame is sorted ascending by period and holds at
// most one row per period.
type Frame struct {
	Columns []string
	Rows    []contracts.MonthlyRow
}

// NewFrame returns an empty frame with the canonical column set.
func NewFrame() *Frame {
	cols := make([]string, len(contracts.PanelColumns))
	copy(cols, contracts.PanelColumns)
	return &Frame{Columns: cols}
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}

// Len returns the row count.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// HasColumn reports whether the frame carries the named column.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Sort orders rows ascending by period, stable so later-inserted rows keep
// their relative position among equal periods.
func (f *Frame) Sort() {
	sort.SliceStable(f.Rows, func(i, j int) bool {
		return f.Rows[i].Period.Before(f.Rows[j].Period)
	})
}

// Dedup removes duplicate observations. Rows sharing (period, batch_id)
// collapse to the later-inserted one; among the survivors the later-inserted
// batch wins per period, so one row per period remains.
func (f *Frame) Dedup() {
	type batchKey struct {
		period  int64
		batchID string
	}

	byBatch := make(map[batchKey]int, len(f.Rows))
	order := make([]batchKey, 0, len(f.Rows))
	for i, row := range f.Rows {
		k := batchKey{period: row.Period.Unix(), batchID: row.Lineage.BatchID.String()}
		if _, seen := byBatch[k]; !seen {
			order = append(order, k)
		}
		byBatch[k] = i // later-inserted wins
	}

	byPeriod := make(map[int64]int, len(order))
	periods := make([]int64, 0, len(order))
	for _, k := range order {
		i := byBatch[k]
		if _, seen := byPeriod[k.period]; !seen {
			periods = append(periods, k.period)
		}
		byPeriod[k.period] = i
	}

	rows := make([]contracts.MonthlyRow, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, f.Rows[byPeriod[p]])
	}
	f.Rows = rows
}

// Values returns the value series in row order.
func (f *Frame) Values() []float64 {
	vals := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		vals[i] = r.ValueMMCF
	}
	return vals
}

// Periods returns the period series in row order.
func (f *Frame) Periods() []time.Time {
	ps := make([]time.Time, len(f.Rows))
	for i, r := range f.Rows {
		ps[i] = r.Period
	}
	return ps
}

// Start returns the earliest period, zero when empty.
func (f *Frame) Start() time.Time {
	if f.Empty() {
		return time.Time{}
	}
	min := f.Rows[0].Period
	for _, r := range f.Rows[1:] {
		if r.Period.Before(min) {
			min = r.Period
		}
	}
	return min
}

// End returns the latest period, zero when empty.
func (f *Frame) End() time.Time {
	if f.Empty() {
		return time.Time{}
	}
	max := f.Rows[0].Period
	for _, r := range f.Rows[1:] {
		if r.Period.After(max) {
			max = r.Period
		}
	}
	return max
}

// Meta returns descriptive information about the frame.
func (f *Frame) Meta() contracts.PanelMeta {
	meta := contracts.PanelMeta{NRows: len(f.Rows)}
	if f.Empty() {
		return meta
	}

	meta.Start = f.Start()
	meta.End = f.End()

	// Vintage label comes from the newest batch stamped on the frame.
	latest := f.Rows[0].Lineage
	for _, r := range f.Rows[1:] {
		if r.Lineage.AsofTS.After(latest.AsofTS) {
			latest = r.Lineage
		}
	}
	meta.VintageLabel = latest.VintageLabel()

	return meta
}
