// Package feature turns raw acoustic measurements from the analysis engine
// into validated, debounced, classified feature states.
package feature

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Type identifies one acoustic metric tracked by the pipeline.
type Type string

const (
	// TypeF0 is fundamental frequency in Hz.
	TypeF0 Type = "f0"
	// TypeJitter is local jitter in percent.
	TypeJitter Type = "jitter"
	// TypeShimmer is local shimmer in percent.
	TypeShimmer Type = "shimmer"
	// TypeEnergy is signal energy in dB.
	TypeEnergy Type = "energy"
)

// AllTypes lists every known feature type.
func AllTypes() []Type {
	return []Type{TypeF0, TypeJitter, TypeShimmer, TypeEnergy}
}

// Measurement is the immutable per-feature configuration: what the value
// means, what range it may take, and how its updates are processed.
// Loaded once at startup and shared read-only across all observers.
type Measurement struct {
	Type              Type
	DisplayName       string
	Unit              string
	MinValue          float64
	MaxValue          float64
	ProcessingTimeout time.Duration
	DebounceThreshold float64
	MinimumConfidence float64
}

// InRange reports whether a value sits inside the valid range (inclusive).
func (m Measurement) InRange(value float64) bool {
	return value >= m.MinValue && value <= m.MaxValue
}

// Registry is the read-only feature configuration table, keyed by Type.
type Registry struct {
	measurements map[Type]Measurement
}

// DefaultRegistry returns the built-in feature table.
func DefaultRegistry() *Registry {
	return newRegistry(
		Measurement{
			Type: TypeF0, DisplayName: "Fundamental Frequency", Unit: "Hz",
			MinValue: 75, MaxValue: 500,
			ProcessingTimeout: 60 * time.Second,
			DebounceThreshold: 0.1, MinimumConfidence: 0.6,
		},
		Measurement{
			Type: TypeJitter, DisplayName: "Jitter", Unit: "%",
			MinValue: 0, MaxValue: 10,
			ProcessingTimeout: 45 * time.Second,
			DebounceThreshold: 0.05, MinimumConfidence: 0.5,
		},
		Measurement{
			Type: TypeShimmer, DisplayName: "Shimmer", Unit: "%",
			MinValue: 0, MaxValue: 10,
			ProcessingTimeout: 45 * time.Second,
			DebounceThreshold: 0.05, MinimumConfidence: 0.5,
		},
		Measurement{
			Type: TypeEnergy, DisplayName: "Energy", Unit: "dB",
			MinValue: -60, MaxValue: 0,
			ProcessingTimeout: 30 * time.Second,
			DebounceThreshold: 0.5, MinimumConfidence: 0.4,
		},
	)
}

// measurementYAML is the on-disk form of a Measurement. Durations are
// written as strings ("45s", "1m") and parsed with time.ParseDuration.
type measurementYAML struct {
	Type              Type    `yaml:"type"`
	DisplayName       string  `yaml:"display_name"`
	Unit              string  `yaml:"unit"`
	MinValue          float64 `yaml:"min_value"`
	MaxValue          float64 `yaml:"max_value"`
	ProcessingTimeout string  `yaml:"processing_timeout"`
	DebounceThreshold float64 `yaml:"debounce_threshold"`
	MinimumConfidence float64 `yaml:"minimum_confidence"`
}

// LoadRegistry reads a feature table from a YAML file. Entries override the
// defaults per type; types absent from the file keep their defaults.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature config: %w", err)
	}

	var file struct {
		Features []measurementYAML `yaml:"features"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse feature config: %w", err)
	}

	reg := DefaultRegistry()
	for _, entry := range file.Features {
		if _, ok := reg.measurements[entry.Type]; !ok {
			return nil, fmt.Errorf("feature config: unknown feature type %q", entry.Type)
		}
		if entry.MinValue >= entry.MaxValue {
			return nil, fmt.Errorf("feature config: %s has empty valid range", entry.Type)
		}
		timeout, err := time.ParseDuration(entry.ProcessingTimeout)
		if err != nil {
			return nil, fmt.Errorf("feature config: %s processing_timeout: %w", entry.Type, err)
		}
		reg.measurements[entry.Type] = Measurement{
			Type:              entry.Type,
			DisplayName:       entry.DisplayName,
			Unit:              entry.Unit,
			MinValue:          entry.MinValue,
			MaxValue:          entry.MaxValue,
			ProcessingTimeout: timeout,
			DebounceThreshold: entry.DebounceThreshold,
			MinimumConfidence: entry.MinimumConfidence,
		}
	}
	return reg, nil
}

func newRegistry(measurements ...Measurement) *Registry {
	table := make(map[Type]Measurement, len(measurements))
	for _, m := range measurements {
		table[m.Type] = m
	}
	return &Registry{measurements: table}
}

// Lookup returns the configuration for a feature type.
func (r *Registry) Lookup(t Type) (Measurement, bool) {
	m, ok := r.measurements[t]
	return m, ok
}

// Types returns every configured feature type.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.measurements))
	for t := range r.measurements {
		types = append(types, t)
	}
	return types
}

// All returns every configured measurement.
func (r *Registry) All() []Measurement {
	all := make([]Measurement, 0, len(r.measurements))
	for _, m := range r.measurements {
		all = append(all, m)
	}
	return all
}
