package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planets/config"
	"github.com/pthm-cable/planets/game"
	"github.com/pthm-cable/planets/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Invalid parameter sets score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("invalid parameters", "error", err)
		return math.Inf(1)
	}

	// Run all seeds in parallel; each run owns its world
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Warn("run failed", "seed", s, "error", err)
				results[idx] = seedResult{fitness: math.Inf(1)}
				return
			}
			quality := computeQuality(windows)
			results[idx] = seedResult{
				fitness: computeFitness(windows, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats

	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	if err := g.Run(context.Background(), fe.maxTicks); err != nil {
		return nil, err
	}
	return windows, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(finalVillagers × (1.0 + 0.2 × quality))
func computeFitness(windows []telemetry.WindowStats, quality float64) float64 {
	if len(windows) == 0 {
		return 0
	}
	final := float64(windows[len(windows)-1].Villagers)
	return -(final * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightThroughput = 0.50
	qualityWeightBusy       = 0.30
	qualityWeightMobility   = 0.20

	qualityWarmupWindows = 1 // skip first N windows (warmup)
)

// computeQuality computes village quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	throughput := make([]float64, 0, len(valid))
	busy := make([]float64, 0, len(valid))
	mobility := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Villagers == 0 {
			continue
		}
		villagers := float64(w.Villagers)

		// 1. Resources produced per villager
		produced := float64(w.FoodProduced + w.WoodProduced)
		throughput = append(throughput, 1.0-math.Exp(-produced/villagers/5.0))

		// 2. Share of villagers with a job
		busy = append(busy, float64(w.Working)/villagers)

		// 3. Steps that were not blocked by water
		steps := float64(w.MovedSteps + w.BlockedSteps)
		if steps > 0 {
			mobility = append(mobility, float64(w.MovedSteps)/steps)
		}
	}

	if len(throughput) == 0 {
		return 0
	}

	quality := qualityWeightThroughput*stat.Mean(throughput, nil) +
		qualityWeightBusy*stat.Mean(busy, nil)
	if len(mobility) > 0 {
		quality += qualityWeightMobility * stat.Mean(mobility, nil)
	}

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
