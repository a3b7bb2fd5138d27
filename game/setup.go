package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
	"github.com/pthm-cable/planets/systems"
)

// stockpileAngle is where the initial stockpile goes on the main planet,
// opposite the villager spawn point at 0.
const stockpileAngle = 180

// setup creates planets and everything placed on them at start.
func (g *Game) setup() error {
	planetMapper := ecs.NewMap2[components.Planet, components.Transform](g.world)

	for i, pc := range g.cfg.Planets {
		planet := planetMapper.NewEntity(
			&components.Planet{Name: pc.Name, Radius: pc.Radius, Main: i == g.cfg.Derived.MainPlanet},
			&components.Transform{Position: r2.Vec{X: pc.X, Y: pc.Y}},
		)
		g.planets = append(g.planets, planet)
		if i == g.cfg.Derived.MainPlanet {
			g.mainPlanet = planet
		}
	}

	// Water first so everything else avoids it
	for i, pc := range g.cfg.Planets {
		for _, w := range pc.Waters {
			sticker := components.NewSticker(g.planets[i], w.Angle)
			if _, err := g.queries.TryPlace(components.ObstaclePayload{}, sticker, components.NewCollider(w.Width)); err != nil {
				return fmt.Errorf("planet %s: water at %v: %w", pc.Name, w.Angle, err)
			}
			g.recordPlaced(sticker, components.KindObstacle)
		}
	}

	if len(g.planets) > 0 {
		if err := g.placeStockpile(); err != nil {
			return err
		}
	}

	for i, pc := range g.cfg.Planets {
		planet := g.planets[i]
		g.scatter(planet, pc.Name, pc.Trees, treePayload(g.cfg.Resources.Tree), g.cfg.Resources.Tree.Width)
		g.scatter(planet, pc.Name, pc.Bushes, bushPayload(g.cfg.Resources.Bush), g.cfg.Resources.Bush.Width)
		if pc.Sawmill {
			if err := g.placeSawmill(planet, pc.Name); err != nil {
				return err
			}
		}
	}

	if len(g.planets) > 0 {
		for i := 0; i < g.cfg.Villagers.Initial; i++ {
			v, err := g.economy.PlaceVillager(g.mainPlanet, g.nextVillagerName())
			if err != nil {
				slog.Warn("initial villager not placed", "index", i, "error", err)
				break
			}
			if f, ok := g.queries.Placement(v); ok {
				g.recordPlaced(f.Sticker, components.KindAgent)
			}
		}
	}
	return nil
}

// placeStockpile puts the starting storage on the main planet.
func (g *Game) placeStockpile() error {
	bc := g.cfg.Buildings.Stockpile
	initial, err := resourcesFrom(bc.Initial)
	if err != nil {
		return fmt.Errorf("stockpile: %w", err)
	}
	payload := components.BuildingPayload{
		Building: components.Building{Type: components.Stockpile},
		Storage:  &components.Storage{Resources: initial},
	}
	collider := components.NewCollider(bc.Width)

	e, err := g.queries.TryPlace(payload, components.NewSticker(g.mainPlanet, stockpileAngle), collider)
	if errors.Is(err, systems.ErrPlacementRejected) {
		e, err = g.economy.PlaceRandom(payload, g.mainPlanet, collider)
	}
	if err != nil {
		return fmt.Errorf("stockpile: %w", err)
	}
	if f, ok := g.queries.Placement(e); ok {
		g.recordPlaced(f.Sticker, components.KindBuilding)
	}
	return nil
}

// placeSawmill buys a sawmill at a random free angle on planet.
func (g *Game) placeSawmill(planet ecs.Entity, name string) error {
	bc := g.cfg.Buildings.Sawmill
	cost, err := resourcesFrom(bc.Cost)
	if err != nil {
		return fmt.Errorf("sawmill: %w", err)
	}

	angle, ok := g.queries.RandomValidPlacement(planet, bc.Width, g.cfg.Placement.MaxTries)
	if !ok {
		slog.Warn("no room for sawmill", "planet", name)
		return nil
	}
	sticker := components.NewSticker(planet, angle)
	if _, err := g.economy.PlaceBuilding(sawmillPayload(bc), sticker, components.NewCollider(bc.Width), cost); err != nil {
		slog.Warn("sawmill not placed", "planet", name, "error", err)
		g.record(rejectedAt(g.tick, sticker, components.KindBuilding))
		return nil
	}
	g.recordPlaced(sticker, components.KindBuilding)
	return nil
}

// scatter places up to n copies of payload at random free angles on planet.
func (g *Game) scatter(planet ecs.Entity, name string, n int, payload components.Payload, width float32) {
	collider := components.NewCollider(width)
	for i := 0; i < n; i++ {
		e, err := g.economy.PlaceRandom(payload, planet, collider)
		if err != nil {
			slog.Warn("planet full", "planet", name, "kind", payload.Kind(), "placed", i, "wanted", n)
			return
		}
		if f, ok := g.queries.Placement(e); ok {
			g.recordPlaced(f.Sticker, payload.Kind())
		}
	}
}

func treePayload(nc config.NaturalConfig) components.ResourcePayload {
	return components.ResourcePayload{
		Natural:   components.NaturalResource{Produces: components.Wood, Remaining: nc.Amount},
		Occupable: components.Occupable{Type: components.Cutting, Produces: components.Wood, MaxWorkers: nc.MaxWorkers},
	}
}

func bushPayload(nc config.NaturalConfig) components.ResourcePayload {
	return components.ResourcePayload{
		Natural:   components.NaturalResource{Produces: components.Food, Remaining: nc.Amount},
		Occupable: components.Occupable{Type: components.Foraging, Produces: components.Food, MaxWorkers: nc.MaxWorkers},
	}
}

func sawmillPayload(bc config.BuildingConfig) components.BuildingPayload {
	return components.BuildingPayload{
		Building:  components.Building{Type: components.Sawmill},
		Occupable: &components.Occupable{Type: components.Interior, Produces: components.Wood, MaxWorkers: bc.MaxWorkers},
		Extractor: &components.Extractor{Range: bc.Range, Exploits: components.Wood},
	}
}
