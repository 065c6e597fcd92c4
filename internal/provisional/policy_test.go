package provisional

import (
	"testing"

	"github.com/wonny/fueltracker/internal/contracts"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		cacheFresh bool
		fetchOK    bool
		wantMode   contracts.PublishMode
		wantPub    bool
	}{
		{"fresh cache, fetch ok", true, true, contracts.ModeNormal, true},
		{"fresh cache, fetch failed", true, false, contracts.ModeNormal, true},
		{"stale cache, fetch ok", false, true, contracts.ModeProvisional, true},
		{"stale cache, fetch failed", false, false, contracts.ModeProvisional, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.cacheFresh, tt.fetchOK)
			if got.Mode != tt.wantMode {
				t.Errorf("Decide(%v, %v).Mode = %v, want %v", tt.cacheFresh, tt.fetchOK, got.Mode, tt.wantMode)
			}
			if got.CanPublish != tt.wantPub {
				t.Errorf("Decide(%v, %v).CanPublish = %v, want %v", tt.cacheFresh, tt.fetchOK, got.CanPublish, tt.wantPub)
			}
			if got.Reason == "" {
				t.Error("Reason should never be empty")
			}
		})
	}
}
