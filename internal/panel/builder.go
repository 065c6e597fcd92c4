package panel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/pkg/logger"
)

// RawRow is one record as delivered by the external source, with column
// names the builder still has to resolve.
type RawRow map[string]interface{}

// Ordered alias lists per canonical field. Resolution is a case-insensitive
// exact match, first alias wins; no fuzzy matching.
var (
	periodAliases = []string{"period", "date", "time", "timestamp"}
	valueAliases  = []string{"value", "value_mmcf", "consumption", "fuel_consumption"}
)

// Builder maps heterogeneous raw rows to the canonical monthly schema.
// ⭐ SSOT: 원시 데이터 → 패널 스키마 변환은 여기서만
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates a new Builder instance
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{logger: log}
}

// Build transforms raw rows into a canonical frame stamped with batch
// lineage. Empty input yields an empty frame and no error; unmappable input
// fails with a SchemaError.
func (b *Builder) Build(raw []RawRow, batch contracts.BatchMeta) (*Frame, error) {
	frame := NewFrame()
	if len(raw) == 0 {
		b.logger.Warn("raw input is empty, returning empty panel")
		return frame, nil
	}

	periodCol, err := resolveColumn(raw[0], periodAliases, "period")
	if err != nil {
		return nil, err
	}
	valueCol, err := resolveColumn(raw[0], valueAliases, "value")
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(map[string]interface{}{
		"raw_rows":   len(raw),
		"period_col": periodCol,
		"value_col":  valueCol,
		"batch_id":   batch.BatchID.String(),
	}).Info("building monthly panel")

	rows := make([]contracts.MonthlyRow, 0, len(raw))
	for i, rec := range raw {
		rawPeriod, ok := lookup(rec, periodCol)
		if !ok {
			return nil, &contracts.SchemaError{Field: "period", Detail: fmt.Sprintf("row %d missing column %q", i, periodCol)}
		}
		rawValue, ok := lookup(rec, valueCol)
		if !ok {
			return nil, &contracts.SchemaError{Field: "value", Detail: fmt.Sprintf("row %d missing column %q", i, valueCol)}
		}

		period, err := parsePeriod(rawPeriod)
		if err != nil {
			return nil, &contracts.SchemaError{Field: "period", Detail: fmt.Sprintf("row %d: %v", i, err)}
		}
		value, err := parseValue(rawValue)
		if err != nil {
			return nil, &contracts.SchemaError{Field: "value", Detail: fmt.Sprintf("row %d: %v", i, err)}
		}
		if value < 0 {
			return nil, &contracts.SchemaError{Field: "value", Detail: fmt.Sprintf("row %d: negative value %v", i, value)}
		}

		rows = append(rows, contracts.MonthlyRow{
			Period:    contracts.MonthEnd(period),
			ValueMMCF: value,
			Metric:    contracts.MetricCompressorFuel,
			Freq:      contracts.FreqMonthly,
			Lineage:   batch,
		})
	}

	frame.Rows = rows
	frame.Sort()

	b.logger.WithFields(map[string]interface{}{
		"final_rows": frame.Len(),
		"start":      frame.Start().Format("2006-01-02"),
		"end":        frame.End().Format("2006-01-02"),
	}).Info("monthly panel built")

	return frame, nil
}

// resolveColumn finds the first alias present in the record, matched
// case-insensitively against the record's keys.
func resolveColumn(rec RawRow, aliases []string, field string) (string, error) {
	for _, alias := range aliases {
		for key := range rec {
			if strings.EqualFold(key, alias) {
				return key, nil
			}
		}
	}
	return "", &contracts.SchemaError{
		Field:  field,
		Detail: fmt.Sprintf("no column matches aliases %v", aliases),
	}
}

func lookup(rec RawRow, col string) (interface{}, bool) {
	v, ok := rec[col]
	return v, ok
}

// parsePeriod accepts time.Time values or strings in YYYY-MM, YYYY-MM-DD or
// RFC3339 form.
func parsePeriod(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable period %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported period type %T", v)
	}
}

// parseValue accepts numeric values or numeric strings.
func parseValue(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable value %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
