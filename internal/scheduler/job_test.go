package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobHistoryRetention(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < historyKeep+10; i++ {
		h.AddResult(JobResult{
			JobName:   "panel_pull",
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Success:   true,
		})
	}

	assert.Len(t, h.Results, historyKeep)

	latest, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(historyKeep+9)*time.Hour), latest.StartTime)
}

func TestJobHistoryEmpty(t *testing.T) {
	h := &JobHistory{}

	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Equal(t, 0, h.FailureCount())
}

func TestJobHistoryFailureCount(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 5; i++ {
		h.AddResult(JobResult{
			JobName: "monthly_backtest",
			Success: i%2 == 0,
			Error:   fmt.Sprintf("attempt %d", i),
		})
	}

	assert.Equal(t, 2, h.FailureCount())
}
