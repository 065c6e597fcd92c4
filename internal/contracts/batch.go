package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Source 데이터 출처
type Source string

const (
	// SourceEIA 미국 에너지정보청 (EIA v2 API)
	SourceEIA Source = "EIA"
)

// BatchMeta identifies one ingestion run. Every row written in that run
// carries a reference to it for provenance and dedup.
// ⭐ SSOT: 배치 정체성은 실행당 한 번만 생성됨
type BatchMeta struct {
	BatchID uuid.UUID `json:"batch_id"`
	AsofTS  time.Time `json:"asof_ts"`
	Source  Source    `json:"source"`
	Notes   string    `json:"notes,omitempty"`
}

// VintageLabel returns the fixed-format label used to mark a panel vintage.
func (b BatchMeta) VintageLabel() string {
	return b.AsofTS.UTC().Format("20060102T150405Z")
}
