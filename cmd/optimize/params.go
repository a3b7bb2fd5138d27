package main

import (
	"github.com/pthm-cable/planets/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Villager movement
			{Name: "wander_speed", Path: "villagers.wander_speed", Min: 2, Max: 20, Default: 7},
			{Name: "work_speed", Path: "villagers.work_speed", Min: 5, Max: 30, Default: 15},
			{Name: "wander_range", Path: "villagers.wander_range", Min: 5, Max: 60, Default: 20},
			// Work and spawning
			{Name: "production_interval", Path: "villagers.production_interval", Min: 0.3, Max: 3.0, Default: 1.0},
			{Name: "spawn_interval", Path: "villagers.spawn_interval", Min: 1, Max: 20, Default: 5},
			// Resources
			{Name: "tree_amount", Path: "resources.tree.amount", Min: 5, Max: 60, Default: 20},
			{Name: "bush_amount", Path: "resources.bush.amount", Min: 5, Max: 60, Default: 20},
			// Sawmill reach
			{Name: "sawmill_range", Path: "buildings.sawmill.range", Min: 20, Max: 120, Default: 60},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct and recomputes
// its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Villagers.WanderSpeed = float32(clamped[0])
	cfg.Villagers.WorkSpeed = float32(clamped[1])
	cfg.Villagers.WanderRange = float32(clamped[2])
	cfg.Villagers.ProductionInterval = float32(clamped[3])
	cfg.Villagers.SpawnInterval = float32(clamped[4])
	cfg.Resources.Tree.Amount = uint32(clamped[5])
	cfg.Resources.Bush.Amount = uint32(clamped[6])
	cfg.Buildings.Sawmill.Range = float32(clamped[7])

	return cfg.Finalize()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		float64(cfg.Villagers.WanderSpeed),
		float64(cfg.Villagers.WorkSpeed),
		float64(cfg.Villagers.WanderRange),
		float64(cfg.Villagers.ProductionInterval),
		float64(cfg.Villagers.SpawnInterval),
		float64(cfg.Resources.Tree.Amount),
		float64(cfg.Resources.Bush.Amount),
		float64(cfg.Buildings.Sawmill.Range),
	}
}
