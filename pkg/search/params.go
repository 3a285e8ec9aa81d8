package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parameters bounds the work done at one search depth.
type Parameters struct {
	// DivisionSamples sizes the policy-driven division below the root.
	DivisionSamples int `json:"divisionSamples"`
	// CombinationSamples is roughly how many birth combinations are scored.
	CombinationSamples int `json:"combinationSamples"`
	// BroadSearch is how many candidates survive the one-ply ranking.
	BroadSearch int `json:"broadSearch"`
	// DeepSearch is how many candidates survive deepening. Zero stops
	// recursion into this depth, and stays zero under Scale.
	DeepSearch int `json:"deepSearch"`
}

// Scale multiplies every field by f. Widths never drop below 1, except a
// DeepSearch of 0 which stays 0.
func (p Parameters) Scale(f float64) Parameters {
	deep := 0
	if p.DeepSearch > 0 {
		deep = max(int(float64(p.DeepSearch)*f), 1)
	}
	return Parameters{
		DivisionSamples:    int(float64(p.DivisionSamples) * f),
		CombinationSamples: int(float64(p.CombinationSamples) * f),
		BroadSearch:        max(int(float64(p.BroadSearch)*f), 1),
		DeepSearch:         deep,
	}
}

// Config configures an Engine.
type Config struct {
	Parameters []Parameters `json:"parameters"`
	// Async lets the root search one candidate on a second goroutine.
	Async bool `json:"async"`
	// KeepNoOpBirths keeps every birth target in a division, even those whose
	// successor equals the pass successor. Useful for exhaustive analysis.
	KeepNoOpBirths bool `json:"keepNoOpBirths"`
}

// DefaultConfig is the tournament setting for 18x16 boards.
func DefaultConfig() Config {
	return Config{
		Parameters: []Parameters{
			{DivisionSamples: 600, CombinationSamples: 600, BroadSearch: 200, DeepSearch: 30},
			{DivisionSamples: 100, CombinationSamples: 100, BroadSearch: 20, DeepSearch: 15},
			{DivisionSamples: 25, CombinationSamples: 25, BroadSearch: 1, DeepSearch: 1},
		},
		Async: true,
	}
}

// LoadConfig reads a JSON config on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as indented JSON.
func SaveConfig(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
