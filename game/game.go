// Package game owns the simulation world: setup from config, the tick loop and telemetry.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
	"github.com/pthm-cable/planets/systems"
	"github.com/pthm-cable/planets/telemetry"
)

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	// Systems
	queries   *systems.SurfaceQueries
	villagers *systems.VillagerSystem
	occupancy *systems.OccupancySystem
	stick     *systems.StickSystem
	economy   *systems.Economy

	// Filters used for assignment and sampling
	occupableFilter *ecs.Filter2[components.Sticker, components.Occupable]
	villagerFilter  *ecs.Filter2[components.Villager, components.Walker]
	naturalFilter   *ecs.Filter1[components.NaturalResource]
	workingMap      *ecs.Map[components.Working]
	wanderingMap    *ecs.Map[components.Wandering]

	planets    []ecs.Entity
	mainPlanet ecs.Entity

	// Telemetry
	runID         string
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	metrics       *telemetry.Metrics
	pending       []telemetry.Event // events not yet written to events.csv
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// State
	tick          int32
	spawnCooldown int
	villagerCount int
}

// NewGame builds the world described by cfg.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	queries := systems.NewSurfaceQueries(world, rng)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	collector := telemetry.NewCollector(opts.RunID, statsWindow, cfg.Derived.DT32)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,

		queries:   queries,
		villagers: systems.NewVillagerSystem(world, queries, rng, cfg),
		occupancy: systems.NewOccupancySystem(world, cfg),
		stick:     systems.NewStickSystem(world, cfg.Placement.SurfaceSink),
		economy:   systems.NewEconomy(queries, cfg),

		occupableFilter: ecs.NewFilter2[components.Sticker, components.Occupable](world),
		villagerFilter:  ecs.NewFilter2[components.Villager, components.Walker](world),
		naturalFilter:   ecs.NewFilter1[components.NaturalResource](world),
		workingMap:      ecs.NewMap[components.Working](world),
		wanderingMap:    ecs.NewMap[components.Wandering](world),

		runID:         opts.RunID,
		collector:     collector,
		perfCollector: telemetry.NewPerfCollector(int(collector.WindowDurationTicks())),
		outputManager: om,
		metrics:       opts.Metrics,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,

		spawnCooldown: cfg.Derived.SpawnIntervalTick,
	}

	if err := g.setup(); err != nil {
		om.Close()
		return nil, err
	}
	g.stick.Update()

	slog.Info("world ready",
		"run_id", g.runID,
		"planets", len(g.planets),
		"villagers", g.villagerCount,
	)
	return g, nil
}

// Step runs a single tick of the simulation.
func (g *Game) Step() {
	start := time.Now()
	g.perfCollector.StartTick()

	// 1. Move villagers, produce and deplete
	g.perfCollector.StartPhase(telemetry.PhaseVillagers)
	stats := g.villagers.Update(g.cfg.Derived.DT32)
	g.collector.RecordSteps(stats.Moved, stats.Blocked)
	g.collector.RecordProduced(stats.Produced)
	g.metrics.ObserveSteps(stats.Moved, stats.Blocked)
	for i := 0; i < stats.Depleted; i++ {
		g.record(telemetry.NewDepletedEvent(g.tick))
	}

	// 2. Put idle villagers to work
	g.perfCollector.StartPhase(telemetry.PhaseOccupancy)
	g.assignWorkers()

	// 3. Spawn villagers from stored food
	g.perfCollector.StartPhase(telemetry.PhaseSpawning)
	g.spawnCooldown--
	if g.spawnCooldown <= 0 {
		g.spawnCooldown = g.cfg.Derived.SpawnIntervalTick
		g.trySpawn()
	}

	// 4. Sync world transforms
	g.perfCollector.StartPhase(telemetry.PhaseStick)
	g.stick.Update()

	g.tick++

	// 5. Close the stats window
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	g.metrics.ObserveTick(g.tick, time.Since(start))
}

// Run steps the simulation until ctx is done or maxTicks is reached (0 = unlimited).
func (g *Game) Run(ctx context.Context, maxTicks int) error {
	for maxTicks <= 0 || int(g.tick) < maxTicks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		g.Step()
	}
	slog.Info("max ticks reached", "tick", g.tick)
	return nil
}

// assignWorkers gives every occupable with free capacity at most one new worker.
func (g *Game) assignWorkers() {
	var open []ecs.Entity
	query := g.occupableFilter.Query()
	for query.Next() {
		_, occ := query.Get()
		if occ.MaxWorkers > 0 {
			open = append(open, query.Entity())
		}
	}

	for _, occ := range open {
		if g.occupancy.Capacity(occ) <= 0 {
			continue
		}
		if _, err := g.occupancy.Assign(occ); err != nil {
			slog.Debug("assign skipped", "occupable", occ.ID(), "error", err)
		}
	}
}

// trySpawn spends food on the main planet for a new villager.
func (g *Game) trySpawn() {
	if len(g.planets) == 0 {
		return
	}
	if !g.queries.CanAfford(g.mainPlanet, g.economy.VillagerCost()) {
		return
	}

	v, err := g.economy.SpawnVillager(g.mainPlanet, g.nextVillagerName())
	if err != nil {
		slog.Debug("spawn failed", "tick", g.tick, "error", err)
		g.record(telemetry.NewRejectedEvent(g.tick, g.mainPlanet.ID(), components.KindAgent, 0))
		return
	}

	var angle float32
	if f, ok := g.queries.Placement(v); ok {
		angle = f.Position.Get()
	}
	g.record(telemetry.NewPlacedEvent(g.tick, g.mainPlanet.ID(), components.KindAgent, angle))
	g.record(telemetry.NewSpawnedEvent(g.tick, g.mainPlanet.ID(), angle))
	slog.Info("villager spawned", "tick", g.tick, "planet", g.mainPlanet.ID(), "angle", angle)
}

// record counts an event and queues it for events.csv.
func (g *Game) record(ev telemetry.Event) {
	g.collector.Record(ev)
	g.metrics.Observe(ev)
	if g.outputManager != nil {
		g.pending = append(g.pending, ev)
	}
}

func (g *Game) nextVillagerName() string {
	g.villagerCount++
	return fmt.Sprintf("villager-%d", g.villagerCount)
}

// Close flushes pending output and closes files.
func (g *Game) Close() error {
	if err := g.outputManager.WriteEvents(g.pending); err != nil {
		slog.Error("failed to write events", "error", err)
	}
	g.pending = nil
	return g.outputManager.Close()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// RunID returns the identifier stamped on telemetry rows.
func (g *Game) RunID() string {
	return g.runID
}

// World returns the ECS world.
func (g *Game) World() *ecs.World {
	return g.world
}

// Queries returns the surface query service over the world.
func (g *Game) Queries() *systems.SurfaceQueries {
	return g.queries
}

// Planets returns the planet entities in config order.
func (g *Game) Planets() []ecs.Entity {
	return g.planets
}
