package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Endpoint describes one EIA series endpoint from the YAML config file.
type Endpoint struct {
	Path   string            `yaml:"path"`
	Params map[string]string `yaml:"params"`
}

// Endpoints maps endpoint keys to their definitions.
type Endpoints map[string]Endpoint

// LoadEndpoints reads the EIA endpoint definitions from a YAML file.
// 알 수 없는 필드 발견 시 즉시 에러 (오타 방지)
func LoadEndpoints(path string) (Endpoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	var eps Endpoints
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&eps); err != nil {
		return nil, fmt.Errorf("decode endpoints file: %w", err)
	}

	return eps, nil
}

// Lookup returns the endpoint for key, or false when not configured.
func (e Endpoints) Lookup(key string) (Endpoint, bool) {
	ep, ok := e[key]
	return ep, ok
}
