package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{"mid-month", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"first day", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"already month-end", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"february leap year", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"february non-leap", time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"december rollover", time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthEnd(tt.input); !got.Equal(tt.want) {
				t.Errorf("MonthEnd(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthEndIdempotent(t *testing.T) {
	d := time.Date(2023, 7, 19, 0, 0, 0, 0, time.UTC)
	once := MonthEnd(d)
	twice := MonthEnd(once)
	if !once.Equal(twice) {
		t.Errorf("MonthEnd not idempotent: %s vs %s", once, twice)
	}
}

func TestVintageLabel(t *testing.T) {
	batch := BatchMeta{
		BatchID: uuid.New(),
		AsofTS:  time.Date(2026, 1, 15, 7, 30, 45, 0, time.UTC),
		Source:  SourceEIA,
	}

	if got := batch.VintageLabel(); got != "20260115T073045Z" {
		t.Errorf("VintageLabel() = %q, want 20260115T073045Z", got)
	}
}

func TestVintageLabelNormalizesZone(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	batch := BatchMeta{AsofTS: time.Date(2026, 1, 15, 16, 0, 0, 0, loc)}

	if got := batch.VintageLabel(); got != "20260115T070000Z" {
		t.Errorf("VintageLabel() = %q, want UTC-normalized 20260115T070000Z", got)
	}
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Field: "value", Detail: "negative value -3.5"}

	if err.Error() != "schema: value: negative value -3.5" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := fmt.Errorf("build panel: %w", err)
	if !IsSchemaError(wrapped) {
		t.Error("IsSchemaError should match wrapped SchemaError")
	}
	if IsSchemaError(errors.New("something else")) {
		t.Error("IsSchemaError should not match unrelated errors")
	}
}

func TestInsufficientDataError(t *testing.T) {
	err := &InsufficientDataError{Needed: 24, Got: 10}
	var target *InsufficientDataError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match InsufficientDataError")
	}
	if target.Needed != 24 || target.Got != 10 {
		t.Errorf("unexpected fields: %+v", target)
	}
}
