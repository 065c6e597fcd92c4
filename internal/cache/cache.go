// Package cache records successful fetch payloads and answers the
// freshness question the provisional policy depends on.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const markerFile = "last_success.json"

// Marker records the most recent successful fetch.
type Marker struct {
	LastSuccessFile string    `json:"last_success_file"`
	LastSuccessTime time.Time `json:"last_success_time"`
}

// Cache stores raw payload snapshots and the last-success marker under a
// single directory.
type Cache struct {
	dir string
	now func() time.Time
	log zerolog.Logger
}

// New creates a Cache rooted at dir. A nil clock defaults to UTC wall time.
func New(dir string, now func() time.Time, log zerolog.Logger) *Cache {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Cache{
		dir: dir,
		now: now,
		log: log.With().Str("component", "cache").Logger(),
	}
}

// RecordSuccess persists the raw payload under a timestamped file and
// updates the last-success marker.
func (c *Cache) RecordSuccess(payload []byte) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	ts := c.now()
	name := fmt.Sprintf("eia_data_%s.json", ts.Format("20060102_150405"))
	path := filepath.Join(c.dir, name)

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write cache payload: %w", err)
	}

	marker := Marker{
		LastSuccessFile: name,
		LastSuccessTime: ts,
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cache marker: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, markerFile), data, 0o644); err != nil {
		return "", fmt.Errorf("write cache marker: %w", err)
	}

	c.log.Info().Str("cache_file", path).Msg("payload cached")
	return path, nil
}

// LastSuccess returns the marker, or nil when none exists or it cannot be
// read. Never fatal.
func (c *Cache) LastSuccess() *Marker {
	data, err := os.ReadFile(filepath.Join(c.dir, markerFile))
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Msg("failed to read cache marker")
		}
		return nil
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		c.log.Warn().Err(err).Msg("corrupt cache marker")
		return nil
	}
	return &marker
}

// IsFresh reports whether the last success lies within businessDays
// weekdays of now. A missing or corrupt marker is never fresh.
func (c *Cache) IsFresh(businessDays int) bool {
	marker := c.LastSuccess()
	if marker == nil {
		return false
	}

	cutoff := subtractBusinessDays(c.now(), businessDays)
	fresh := marker.LastSuccessTime.After(cutoff)

	c.log.Debug().
		Time("last_success", marker.LastSuccessTime).
		Time("cutoff", cutoff).
		Int("business_days", businessDays).
		Bool("fresh", fresh).
		Msg("cache freshness check")

	return fresh
}

// subtractBusinessDays steps back n weekdays from t.
func subtractBusinessDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, -1)
		wd := t.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}
