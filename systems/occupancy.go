package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
)

// OccupancySystem assigns villagers to occupables and tracks how many work at each.
type OccupancySystem struct {
	world *ecs.World
	cfg   config.VillagerConfig

	workFilter   *ecs.Filter1[components.Working]
	wanderFilter *ecs.Filter2[components.Sticker, components.Wandering]

	stickerMap   *ecs.Map[components.Sticker]
	occupableMap *ecs.Map[components.Occupable]
	workingMap   *ecs.Map[components.Working]
	wanderingMap *ecs.Map[components.Wandering]
	walkerMap    *ecs.Map[components.Walker]
}

// NewOccupancySystem creates an occupancy system.
func NewOccupancySystem(w *ecs.World, cfg *config.Config) *OccupancySystem {
	return &OccupancySystem{
		world: w,
		cfg:   cfg.Villagers,

		workFilter:   ecs.NewFilter1[components.Working](w),
		wanderFilter: ecs.NewFilter2[components.Sticker, components.Wandering](w),

		stickerMap:   ecs.NewMap[components.Sticker](w),
		occupableMap: ecs.NewMap[components.Occupable](w),
		workingMap:   ecs.NewMap[components.Working](w),
		wanderingMap: ecs.NewMap[components.Wandering](w),
		walkerMap:    ecs.NewMap[components.Walker](w),
	}
}

// Workers returns the villagers currently assigned to occupable.
func (s *OccupancySystem) Workers(occupable ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	query := s.workFilter.Query()
	for query.Next() {
		if query.Get().Occupable == occupable {
			out = append(out, query.Entity())
		}
	}
	return out
}

// Capacity returns how many more workers occupable accepts.
func (s *OccupancySystem) Capacity(occupable ecs.Entity) int {
	if !s.world.Alive(occupable) || !s.occupableMap.Has(occupable) {
		return 0
	}
	limit := int(s.occupableMap.Get(occupable).MaxWorkers)
	return limit - len(s.Workers(occupable))
}

// Assign turns the wandering villager closest to occupable on its planet into a worker.
func (s *OccupancySystem) Assign(occupable ecs.Entity) (ecs.Entity, error) {
	if !s.world.Alive(occupable) || !s.occupableMap.Has(occupable) || !s.stickerMap.Has(occupable) {
		return ecs.Entity{}, fmt.Errorf("assign: %w", ErrNotOccupable)
	}
	if s.Capacity(occupable) <= 0 {
		return ecs.Entity{}, fmt.Errorf("assign: %w", ErrOccupancyFull)
	}

	target := *s.stickerMap.Get(occupable)
	var best ecs.Entity
	found := false
	var bestDist float32

	query := s.wanderFilter.Query()
	for query.Next() {
		sticker, _ := query.Get()
		if sticker.Planet != target.Planet {
			continue
		}
		d := sticker.Position.Distance(target.Position)
		if !found || d < bestDist {
			best, bestDist, found = query.Entity(), d, true
		}
	}
	if !found {
		return ecs.Entity{}, fmt.Errorf("assign: %w", ErrNoIdleVillager)
	}

	s.wanderingMap.Remove(best)
	s.workingMap.Add(best, &components.Working{Occupable: occupable, ProductionTimer: s.cfg.ProductionInterval})
	if s.walkerMap.Has(best) {
		s.walkerMap.Get(best).ClearDestination()
	}
	return best, nil
}

// Unassign returns the most recently listed worker of occupable to wandering.
// Returns false if nobody works there.
func (s *OccupancySystem) Unassign(occupable ecs.Entity) (ecs.Entity, bool) {
	workers := s.Workers(occupable)
	if len(workers) == 0 {
		return ecs.Entity{}, false
	}
	e := workers[len(workers)-1]

	s.workingMap.Remove(e)
	s.wanderingMap.Add(e, &components.Wandering{})
	if s.walkerMap.Has(e) {
		walker := s.walkerMap.Get(e)
		walker.ClearDestination()
		walker.Hidden = false
	}
	return e, true
}
