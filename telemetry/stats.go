package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Planets   int `csv:"planets"`
	Villagers int `csv:"villagers"`
	Wandering int `csv:"wandering"`
	Working   int `csv:"working"`
	Hidden    int `csv:"hidden"`

	// Navigation during window
	MovedSteps   int `csv:"moved_steps"`
	BlockedSteps int `csv:"blocked_steps"`

	// Placement during window
	PlacementsOK       int `csv:"placements_ok"`
	PlacementsRejected int `csv:"placements_rejected"`
	Spawned            int `csv:"spawned"`
	Depleted           int `csv:"depleted"`

	// Economy
	FoodStored   uint64 `csv:"food"`
	WoodStored   uint64 `csv:"wood"`
	FoodProduced uint64 `csv:"food_produced"`
	WoodProduced uint64 `csv:"wood_produced"`

	// Natural resources left, sampled at window end
	NaturalCount  int     `csv:"naturals"`
	RemainingMean float64 `csv:"remaining_mean"`
	RemainingP10  float64 `csv:"remaining_p10"`
	RemainingP50  float64 `csv:"remaining_p50"`
	RemainingP90  float64 `csv:"remaining_p90"`
}

// ComputeSpread calculates the mean and empirical percentiles of values.
// Returns zeros for an empty slice.
func ComputeSpread(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("planets", s.Planets),
		slog.Int("villagers", s.Villagers),
		slog.Int("wandering", s.Wandering),
		slog.Int("working", s.Working),
		slog.Int("hidden", s.Hidden),
		slog.Int("moved_steps", s.MovedSteps),
		slog.Int("blocked_steps", s.BlockedSteps),
		slog.Int("placements_ok", s.PlacementsOK),
		slog.Int("placements_rejected", s.PlacementsRejected),
		slog.Int("spawned", s.Spawned),
		slog.Int("depleted", s.Depleted),
		slog.Uint64("food", s.FoodStored),
		slog.Uint64("wood", s.WoodStored),
		slog.Uint64("food_produced", s.FoodProduced),
		slog.Uint64("wood_produced", s.WoodProduced),
		slog.Int("naturals", s.NaturalCount),
		slog.Float64("remaining_mean", s.RemainingMean),
		slog.Float64("remaining_p50", s.RemainingP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"villagers", s.Villagers,
		"working", s.Working,
		"blocked_steps", s.BlockedSteps,
		"placements_ok", s.PlacementsOK,
		"placements_rejected", s.PlacementsRejected,
		"spawned", s.Spawned,
		"depleted", s.Depleted,
		"food", s.FoodStored,
		"wood", s.WoodStored,
		"naturals", s.NaturalCount,
		"remaining_p50", s.RemainingP50,
	)
}
