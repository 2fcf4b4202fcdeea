// Package config loads and validates fluxkit's YAML configuration: the
// Go analogue of the original's JSON/TS config objects, validated at
// the boundary rather than trusted at every call site (grounded in
// khangdcicloud-fluxor/pkg/config/yaml.go's os.ReadFile+yaml.Unmarshal
// shape and 2lar-b2/backend/internal/config/config.go's struct-tag
// validation via go-playground/validator).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ApiConfig mirrors query.Config's tunables: the reducer mount path, the
// default query retention window, and the base URL FetchBaseQuery sends
// requests against.
type ApiConfig struct {
	ReducerPath              string `yaml:"reducer_path" validate:"required"`
	KeepUnusedDataForSeconds int    `yaml:"keep_unused_data_for_seconds" validate:"min=0"`
	BaseURL                  string `yaml:"base_url" validate:"required,url"`
}

// KeepUnusedDataFor converts KeepUnusedDataForSeconds to a time.Duration.
func (c ApiConfig) KeepUnusedDataFor() time.Duration {
	return time.Duration(c.KeepUnusedDataForSeconds) * time.Second
}

// PersistConfig mirrors persist.Config's tunables for one persisted key.
type PersistConfig struct {
	Key               string   `yaml:"key" validate:"required"`
	Version           int      `yaml:"version" validate:"min=0"`
	ThrottleMS        int      `yaml:"throttle_ms" validate:"min=0"`
	RehydrateStrategy string   `yaml:"rehydrate_strategy" validate:"omitempty,oneof=replace merge"`
	Whitelist         []string `yaml:"whitelist"`
	Blacklist         []string `yaml:"blacklist"`
}

// Throttle converts ThrottleMS to a time.Duration.
func (c PersistConfig) Throttle() time.Duration {
	return time.Duration(c.ThrottleMS) * time.Millisecond
}

// Root is the top-level shape config.Load reads a YAML file into.
type Root struct {
	Api     ApiConfig       `yaml:"api" validate:"required"`
	Persist []PersistConfig `yaml:"persist" validate:"dive"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validator.New().Struct(&root); err != nil {
		return nil, fmt.Errorf("config: validate %s: %w", path, err)
	}

	return &root, nil
}
