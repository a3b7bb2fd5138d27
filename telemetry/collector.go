package telemetry

import "github.com/pthm-cable/planets/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	runID               string
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	placed   int
	rejected int
	spawned  int
	depleted int
	moved    int
	blocked  int
	produced components.Resources
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(runID string, windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec/float64(dt) + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		runID:               runID,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		produced:            components.Resources{},
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventPlaced:
		c.placed++
	case EventRejected:
		c.rejected++
	case EventSpawned:
		c.spawned++
	case EventDepleted:
		c.depleted++
	}
}

// RecordSteps counts navigation outcomes.
func (c *Collector) RecordSteps(moved, blocked int) {
	c.moved += moved
	c.blocked += blocked
}

// RecordProduced counts resources produced by workers.
func (c *Collector) RecordProduced(res components.Resources) {
	c.produced = c.produced.Combine(res)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Snapshot is the world state sampled when a window closes.
type Snapshot struct {
	Planets   int
	Villagers int
	Wandering int
	Working   int
	Hidden    int
	Stored    components.Resources
	Remaining []float64 // amount left on each natural resource
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, snap Snapshot) WindowStats {
	mean, p10, p50, p90 := ComputeSpread(snap.Remaining)

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Planets:   snap.Planets,
		Villagers: snap.Villagers,
		Wandering: snap.Wandering,
		Working:   snap.Working,
		Hidden:    snap.Hidden,

		MovedSteps:   c.moved,
		BlockedSteps: c.blocked,

		PlacementsOK:       c.placed,
		PlacementsRejected: c.rejected,
		Spawned:            c.spawned,
		Depleted:           c.depleted,

		FoodStored:   uint64(snap.Stored.Amount(components.Food)),
		WoodStored:   uint64(snap.Stored.Amount(components.Wood)),
		FoodProduced: uint64(c.produced.Amount(components.Food)),
		WoodProduced: uint64(c.produced.Amount(components.Wood)),

		NaturalCount:  len(snap.Remaining),
		RemainingMean: mean,
		RemainingP10:  p10,
		RemainingP50:  p50,
		RemainingP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.placed = 0
	c.rejected = 0
	c.spawned = 0
	c.depleted = 0
	c.moved = 0
	c.blocked = 0
	c.produced = components.Resources{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
