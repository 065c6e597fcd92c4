// Package validate runs schema, staleness and tolerance checks over the
// monthly panel and reports issues without side effects.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/panel"
)

// Config holds gate thresholds.
type Config struct {
	MaxStaleBusinessDays int
	TolerancePct         float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxStaleBusinessDays: 3,
		TolerancePct:         0.02,
	}
}

// Gate validates a panel frame. Every check runs unconditionally and all
// issues are concatenated; the gate itself never fails.
// ⭐ 결정적 테스트를 위해 Now는 주입 가능
type Gate struct {
	config Config
	now    func() time.Time
}

// NewGate creates a Gate with the given thresholds and clock. A nil clock
// defaults to UTC wall time.
func NewGate(config Config, now func() time.Time) *Gate {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Gate{config: config, now: now}
}

// Check runs the schema, staleness and tolerance checks in order and
// returns every issue found. snapshot may be nil; the tolerance check is
// then skipped. An empty result means the panel passed.
func (g *Gate) Check(frame *panel.Frame, snapshot *panel.Frame) []string {
	var issues []string
	issues = append(issues, g.CheckSchema(frame)...)
	issues = append(issues, g.CheckStaleness(frame)...)
	issues = append(issues, g.CheckTolerance(frame, snapshot)...)
	return issues
}

// CheckSchema verifies required columns, non-emptiness and period
// uniqueness.
func (g *Gate) CheckSchema(frame *panel.Frame) []string {
	var issues []string

	var missing []string
	for _, col := range []string{"period", "value"} {
		if !frame.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("schema: missing columns %v", missing))
	}

	if frame.Empty() {
		issues = append(issues, "schema: panel is empty")
	}

	seen := make(map[int64]bool, frame.Len())
	dup := false
	for _, row := range frame.Rows {
		k := row.Period.Unix()
		if seen[k] {
			dup = true
			break
		}
		seen[k] = true
	}
	if dup {
		issues = append(issues, "schema: duplicate periods present")
	}

	return issues
}

// CheckStaleness flags panels whose newest period trails "now" by more than
// the configured number of business days. Business days are a simple
// Mon-Fri count from the month-end of the newest period through now,
// inclusive.
func (g *Gate) CheckStaleness(frame *panel.Frame) []string {
	if frame.Empty() {
		return nil
	}

	monthEnd := contracts.MonthEnd(frame.End())
	today := truncateDay(g.now())
	daysDiff := int(today.Sub(truncateDay(monthEnd)).Hours() / 24)
	if daysDiff <= 0 {
		return nil
	}

	bizDays := 0
	for d := 0; d <= daysDiff; d++ {
		wd := monthEnd.AddDate(0, 0, d).Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			bizDays++
		}
	}

	if bizDays > g.config.MaxStaleBusinessDays {
		return []string{fmt.Sprintf(
			"staleness: %d business days past month-end (> %d)",
			bizDays, g.config.MaxStaleBusinessDays,
		)}
	}
	return nil
}

// CheckTolerance compares overlapping periods against a prior published
// snapshot and flags relative deviations above the threshold. A zero prior
// value never breaches. Skipped entirely when snapshot is nil.
func (g *Gate) CheckTolerance(frame *panel.Frame, snapshot *panel.Frame) []string {
	if snapshot == nil {
		return nil
	}

	if !snapshot.HasColumn("period") || !snapshot.HasColumn("value") {
		return []string{"tolerance: snapshot missing period/value"}
	}

	snapValues := make(map[int64]float64, snapshot.Len())
	for _, row := range snapshot.Rows {
		snapValues[row.Period.Unix()] = row.ValueMMCF
	}

	type breach struct {
		period time.Time
		diff   float64
	}
	var breaches []breach
	for _, row := range frame.Rows {
		old, ok := snapValues[row.Period.Unix()]
		if !ok {
			continue
		}
		if old == 0 {
			// zero baseline is treated as non-breaching
			continue
		}
		diff := abs(row.ValueMMCF-old) / old
		if diff > g.config.TolerancePct {
			breaches = append(breaches, breach{period: row.Period, diff: diff})
		}
	}

	if len(breaches) == 0 {
		return nil
	}

	sort.Slice(breaches, func(i, j int) bool { return breaches[i].period.Before(breaches[j].period) })
	parts := make([]string, len(breaches))
	for i, b := range breaches {
		parts[i] = fmt.Sprintf("%s=%.1f%%", b.period.Format("2006-01-02"), b.diff*100)
	}
	return []string{fmt.Sprintf(
		"tolerance: +/-%d%% breached on %s",
		int(g.config.TolerancePct*100), strings.Join(parts, ", "),
	)}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
