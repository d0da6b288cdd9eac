// Config struct shape follows cmd/orizon-config/main.go's ProjectConfig:
// a JSON-tagged struct loaded with encoding/json, with a schema_version
// field checked against a semver constraint rather than an exact string
// compare, so older config files keep working as fields are added.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
)

// schemaConstraint is the range of heaplab.json schema versions this build
// understands. Bump the lower bound when a config field's meaning changes
// in a way old files can't satisfy.
const schemaConstraint = ">=1.0.0, <2.0.0"

type Config struct {
	SchemaVersion string       `json:"schema_version"`
	TraceDir      string       `json:"trace_dir"`
	Alignment     int64        `json:"alignment"`
	HeapCapBytes  int64        `json:"heap_cap_bytes"`
	Allocators    []string     `json:"allocators"`
	Watch         WatchOptions `json:"watch"`
}

type WatchOptions struct {
	Enabled    bool `json:"enabled"`
	DebounceMs int  `json:"debounce_ms"`
}

func defaultConfig() *Config {
	return &Config{
		SchemaVersion: "1.0.0",
		TraceDir:      "testdata/traces",
		Alignment:     8,
		HeapCapBytes:  50 * 1024 * 1024,
		Allocators:    []string{"blockalloc", "refalloc", "badalloc"},
		Watch:         WatchOptions{Enabled: false, DebounceMs: 250},
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	v, err := semver.NewVersion(cfg.SchemaVersion)
	if err != nil {
		return fmt.Errorf("schema_version %q is not a valid version: %w", cfg.SchemaVersion, err)
	}

	c, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return fmt.Errorf("internal: bad schema constraint %q: %w", schemaConstraint, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("heaplab.json schema_version %s does not satisfy %s", cfg.SchemaVersion, schemaConstraint)
	}

	if cfg.Alignment <= 0 || cfg.Alignment&(cfg.Alignment-1) != 0 {
		return fmt.Errorf("alignment must be a positive power of two, got %d", cfg.Alignment)
	}

	if cfg.HeapCapBytes <= 0 {
		return fmt.Errorf("heap_cap_bytes must be positive, got %d", cfg.HeapCapBytes)
	}

	if len(cfg.Allocators) == 0 {
		return fmt.Errorf("allocators list must name at least one implementation")
	}

	return nil
}

func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	data, err := json.MarshalIndent(defaultConfig(), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
