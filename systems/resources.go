package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
)

// Economy spends planet resources on villagers and buildings.
type Economy struct {
	queries   *SurfaceQueries
	placement config.PlacementConfig
	villagers config.VillagerConfig
}

// NewEconomy creates an economy over the given queries.
func NewEconomy(queries *SurfaceQueries, cfg *config.Config) *Economy {
	return &Economy{
		queries:   queries,
		placement: cfg.Placement,
		villagers: cfg.Villagers,
	}
}

// VillagerCost is what a new villager costs its planet.
func (e *Economy) VillagerCost() components.Resources {
	return components.Resources{components.Food: e.villagers.FoodCost}
}

// SpawnVillager pays for and places a new villager on planet.
func (e *Economy) SpawnVillager(planet ecs.Entity, name string) (ecs.Entity, error) {
	cost := e.VillagerCost()
	if !e.queries.CanAfford(planet, cost) {
		return ecs.Entity{}, fmt.Errorf("spawn villager: %w", ErrInsufficientResources)
	}
	villager, err := e.PlaceVillager(planet, name)
	if err != nil {
		return ecs.Entity{}, err
	}
	if err := e.queries.RemoveResources(planet, cost); err != nil {
		return ecs.Entity{}, fmt.Errorf("spawn villager: %w", err)
	}
	return villager, nil
}

// PlaceVillager places a villager at 0 degrees, or at a random free angle when
// that spot is taken. It does not charge the planet.
func (e *Economy) PlaceVillager(planet ecs.Entity, name string) (ecs.Entity, error) {
	payload := components.AgentPayload{Villager: components.Villager{Name: name}}
	collider := components.NewCollider(e.villagers.Width)

	villager, err := e.queries.TryPlace(payload, components.NewSticker(planet, 0), collider)
	if err == nil || !errors.Is(err, ErrPlacementRejected) {
		return villager, err
	}
	return e.PlaceRandom(payload, planet, collider)
}

// PlaceRandom places payload at a random free angle on planet.
func (e *Economy) PlaceRandom(payload components.Payload, planet ecs.Entity, collider components.Collider) (ecs.Entity, error) {
	angle, ok := e.queries.RandomValidPlacement(planet, collider.Width, e.placement.MaxTries)
	if !ok {
		return ecs.Entity{}, fmt.Errorf("place %s after %d tries: %w", payload.Kind(), e.placement.MaxTries, ErrNoValidPlacement)
	}
	return e.queries.TryPlace(payload, components.NewSticker(planet, angle), collider)
}

// PlaceBuilding places a building and charges its cost to the planet. The planet
// is only charged once the building is placed.
func (e *Economy) PlaceBuilding(payload components.BuildingPayload, sticker components.Sticker, collider components.Collider, cost components.Resources) (ecs.Entity, error) {
	if !e.queries.CanAfford(sticker.Planet, cost) {
		return ecs.Entity{}, fmt.Errorf("place %s: %w", payload.Building.Type, ErrInsufficientResources)
	}
	building, err := e.queries.TryPlace(payload, sticker, collider)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("place %s: %w", payload.Building.Type, err)
	}
	if err := e.queries.RemoveResources(sticker.Planet, cost); err != nil {
		return ecs.Entity{}, fmt.Errorf("place %s: %w", payload.Building.Type, err)
	}
	return building, nil
}
