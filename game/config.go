package game

import (
	"fmt"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/telemetry"
)

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64
	RunID          string
	LogStats       bool
	StatsWindowSec float64 // 0 uses the config value
	OutputDir      string  // empty disables CSV output
	Metrics        *telemetry.Metrics

	// StatsCallback is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// resourcesFrom converts a config resource table such as {food: 20} to Resources.
func resourcesFrom(table map[string]uint32) (components.Resources, error) {
	res := make(components.Resources, len(table))
	for name, amount := range table {
		r, err := components.ParseResourceType(name)
		if err != nil {
			return nil, fmt.Errorf("resource table: %w", err)
		}
		res[r] += amount
	}
	return res, nil
}
