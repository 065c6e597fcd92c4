package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEndpointsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eia_endpoints.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEndpoints(t *testing.T) {
	path := writeEndpointsFile(t, `
compressor_fuel:
  path: natural-gas/cons/sum/data
  params:
    frequency: monthly
    "data[0]": value
`)

	eps, err := LoadEndpoints(path)
	require.NoError(t, err)

	ep, ok := eps.Lookup("compressor_fuel")
	require.True(t, ok)
	assert.Equal(t, "natural-gas/cons/sum/data", ep.Path)
	assert.Equal(t, "monthly", ep.Params["frequency"])
	assert.Equal(t, "value", ep.Params["data[0]"])

	_, ok = eps.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestLoadEndpointsUnknownField(t *testing.T) {
	path := writeEndpointsFile(t, `
compressor_fuel:
  path: natural-gas/cons/sum/data
  pramas:
    frequency: monthly
`)

	_, err := LoadEndpoints(path)
	assert.Error(t, err, "typo in field name must fail fast")
}

func TestLoadEndpointsMissingFile(t *testing.T) {
	_, err := LoadEndpoints(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
