package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wonny/fueltracker/internal/contracts"
)

// AppendLineage writes one lineage record to the append-only JSONL log.
func AppendLineage(path string, rec contracts.LineageRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open lineage log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal lineage record: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append lineage record: %w", err)
	}
	return nil
}

// ReadLineage loads every record from the lineage log. A missing file is an
// empty history.
func ReadLineage(path string) ([]contracts.LineageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lineage log: %w", err)
	}

	var records []contracts.LineageRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec contracts.LineageRecord
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("decode lineage record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
