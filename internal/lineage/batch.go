// Package lineage mints batch identities for ingestion runs.
package lineage

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fueltracker/internal/contracts"
)

// StartBatch mints a new lineage identity for one ingestion run.
// ⭐ SSOT: batch_id와 asof_ts는 여기서만 생성
func StartBatch(source contracts.Source, notes string) contracts.BatchMeta {
	return contracts.BatchMeta{
		BatchID: uuid.New(),
		AsofTS:  time.Now().UTC(),
		Source:  source,
		Notes:   notes,
	}
}
