package game

import (
	"log/slog"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/telemetry"
)

func (g *Game) recordPlaced(s components.Sticker, kind components.Kind) {
	g.record(telemetry.NewPlacedEvent(g.tick, s.Planet.ID(), kind, s.Position.Get()))
}

func rejectedAt(tick int32, s components.Sticker, kind components.Kind) telemetry.Event {
	return telemetry.NewRejectedEvent(tick, s.Planet.ID(), kind, s.Position.Get())
}

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.snapshot())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	g.metrics.ObserveWindow(stats)

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, g.runID, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if err := g.outputManager.WriteEvents(g.pending); err != nil {
			slog.Error("failed to write events", "error", err)
		}
		g.pending = g.pending[:0]
	}
}

// snapshot samples populations, storage and natural resources.
func (g *Game) snapshot() telemetry.Snapshot {
	snap := telemetry.Snapshot{
		Planets: len(g.planets),
		Stored:  components.Resources{},
	}

	query := g.villagerFilter.Query()
	for query.Next() {
		e := query.Entity()
		_, walker := query.Get()
		snap.Villagers++
		if g.wanderingMap.Has(e) {
			snap.Wandering++
		}
		if g.workingMap.Has(e) {
			snap.Working++
		}
		if walker.Hidden {
			snap.Hidden++
		}
	}

	naturals := g.naturalFilter.Query()
	for naturals.Next() {
		snap.Remaining = append(snap.Remaining, float64(naturals.Get().Remaining))
	}

	for _, planet := range g.planets {
		snap.Stored = snap.Stored.Combine(g.queries.AggregateOnPlanet(planet))
	}
	return snap
}
