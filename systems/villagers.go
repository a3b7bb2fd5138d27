package systems

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
)

// VillagerStats counts what happened to villagers during one update.
type VillagerStats struct {
	Moved    int
	Arrived  int
	Blocked  int
	Skipped  int
	Produced components.Resources
	Depleted int // natural resources exhausted and removed
}

// VillagerSystem drives wandering and working villagers along planet surfaces.
type VillagerSystem struct {
	world   *ecs.World
	queries *SurfaceQueries
	rng     *rand.Rand
	cfg     config.VillagerConfig

	wanderFilter *ecs.Filter3[components.Sticker, components.Walker, components.Wandering]
	workFilter   *ecs.Filter3[components.Sticker, components.Walker, components.Working]

	planetMap    *ecs.Map[components.Planet]
	stickerMap   *ecs.Map[components.Sticker]
	occupableMap *ecs.Map[components.Occupable]
	naturalMap   *ecs.Map[components.NaturalResource]
	extractorMap *ecs.Map[components.Extractor]
	workingMap   *ecs.Map[components.Working]
	wanderingMap *ecs.Map[components.Wandering]

	// obstacles per planet, rebuilt every update
	obstacles map[ecs.Entity][]components.Footprint
}

// NewVillagerSystem creates a villager system.
func NewVillagerSystem(w *ecs.World, queries *SurfaceQueries, rng *rand.Rand, cfg *config.Config) *VillagerSystem {
	return &VillagerSystem{
		world:   w,
		queries: queries,
		rng:     rng,
		cfg:     cfg.Villagers,

		wanderFilter: ecs.NewFilter3[components.Sticker, components.Walker, components.Wandering](w),
		workFilter:   ecs.NewFilter3[components.Sticker, components.Walker, components.Working](w),

		planetMap:    ecs.NewMap[components.Planet](w),
		stickerMap:   ecs.NewMap[components.Sticker](w),
		occupableMap: ecs.NewMap[components.Occupable](w),
		naturalMap:   ecs.NewMap[components.NaturalResource](w),
		extractorMap: ecs.NewMap[components.Extractor](w),
		workingMap:   ecs.NewMap[components.Working](w),
		wanderingMap: ecs.NewMap[components.Wandering](w),

		obstacles: make(map[ecs.Entity][]components.Footprint),
	}
}

// Update advances every villager by dt seconds.
func (s *VillagerSystem) Update(dt float32) VillagerStats {
	stats := VillagerStats{Produced: components.Resources{}}
	clear(s.obstacles)

	s.updateWandering(dt, &stats)
	orphans, exhausted := s.updateWorking(dt, &stats)

	// Structural changes once the queries are closed
	for _, e := range orphans {
		s.stopWorking(e)
	}
	for _, e := range exhausted {
		if s.queries.Remove(e) {
			stats.Depleted++
		}
	}
	return stats
}

// planetObstacles returns the obstacle footprints of planet, fetched once per update.
func (s *VillagerSystem) planetObstacles(planet ecs.Entity) []components.Footprint {
	obs, ok := s.obstacles[planet]
	if !ok {
		obs = s.queries.Obstacles(planet)
		s.obstacles[planet] = obs
	}
	return obs
}

func (s *VillagerSystem) validPlanet(planet ecs.Entity) bool {
	return s.world.Alive(planet) && s.planetMap.Has(planet)
}

// waitTime draws an idle duration between WaitMin and WaitMax.
func (s *VillagerSystem) waitTime() float32 {
	return s.cfg.WaitMin + s.rng.Float32()*(s.cfg.WaitMax-s.cfg.WaitMin)
}

func (s *VillagerSystem) updateWandering(dt float32, stats *VillagerStats) {
	query := s.wanderFilter.Query()
	for query.Next() {
		sticker, walker, wander := query.Get()
		if !s.validPlanet(sticker.Planet) {
			stats.Skipped++
			continue
		}
		walker.Hidden = false

		if !walker.HasDestination {
			if wander.WaitTime > 0 {
				wander.WaitTime -= dt
				continue
			}
			offset := (s.rng.Float32()*2 - 1) * s.cfg.WanderRange
			walker.SetDestination(sticker.Position.Add(offset))
		}

		switch Step(sticker, walker, s.planetObstacles(sticker.Planet), dt, s.cfg.WanderSpeed) {
		case StepMoved:
			stats.Moved++
		case StepArrived:
			stats.Arrived++
			walker.ClearDestination()
			wander.WaitTime = s.waitTime()
		case StepBlocked:
			// Wanderers give up and pick somewhere else after a pause
			stats.Blocked++
			walker.ClearDestination()
			wander.WaitTime = s.waitTime()
		}
	}
}

// updateWorking moves workers to their occupables and runs production. It returns
// workers whose occupable is gone and natural resources that ran out.
func (s *VillagerSystem) updateWorking(dt float32, stats *VillagerStats) (orphans, exhausted []ecs.Entity) {
	query := s.workFilter.Query()
	for query.Next() {
		sticker, walker, work := query.Get()
		if !s.validPlanet(sticker.Planet) {
			stats.Skipped++
			continue
		}
		if !s.world.Alive(work.Occupable) || !s.occupableMap.Has(work.Occupable) {
			orphans = append(orphans, query.Entity())
			continue
		}

		target := *s.stickerMap.Get(work.Occupable)
		occupable := s.occupableMap.Get(work.Occupable)
		walker.SetDestination(s.workPosition(target, *sticker, occupable.Type))

		switch Step(sticker, walker, s.planetObstacles(sticker.Planet), dt, s.cfg.WorkSpeed) {
		case StepMoved:
			stats.Moved++
			walker.Hidden = false
			continue
		case StepBlocked:
			stats.Blocked++
			continue
		}

		stats.Arrived++
		walker.Hidden = occupable.Type == components.Interior
		work.ProductionTimer -= dt
		if work.ProductionTimer > 0 {
			continue
		}
		work.ProductionTimer += s.cfg.ProductionInterval

		if depleted, ok := s.produce(*sticker, work.Occupable, occupable.Produces, stats); ok {
			exhausted = append(exhausted, depleted)
		}
	}
	return orphans, exhausted
}

// workPosition returns where a worker stands: beside the occupable on the worker's
// side, or at its center for interiors.
func (s *VillagerSystem) workPosition(target, worker components.Sticker, t components.OccupableType) angular.Scalar {
	if t == components.Interior {
		return target.Position
	}
	side := target.Position.Direction(worker.Position)
	if side == 0 {
		side = 1
	}
	return target.Position.Add(float32(side) * s.cfg.WorkOffset)
}

// produce makes one unit of kind at occupable and deposits it near the worker.
// Returns the natural resource that ran out, if one did.
func (s *VillagerSystem) produce(at components.Sticker, occupable ecs.Entity, kind components.ResourceType, stats *VillagerStats) (ecs.Entity, bool) {
	source, drawn := s.source(occupable)
	if !drawn && (s.extractorMap.Has(occupable) || s.naturalMap.Has(occupable)) {
		return ecs.Entity{}, false // nothing left to draw from
	}

	if !s.queries.Deposit(at, components.Resources{kind: 1}) {
		slog.Debug("no storage for produce", "planet", at.Planet.ID(), "resource", kind)
		return ecs.Entity{}, false
	}
	stats.Produced[kind]++

	if !drawn {
		return ecs.Entity{}, false
	}
	natural := s.naturalMap.Get(source)
	natural.Remaining--
	return source, natural.Remaining == 0
}

// source returns the natural resource an occupable draws from: itself, or for an
// extractor the first exploited resource with something left.
func (s *VillagerSystem) source(occupable ecs.Entity) (ecs.Entity, bool) {
	if s.naturalMap.Has(occupable) {
		return occupable, s.naturalMap.Get(occupable).Remaining > 0
	}
	if !s.extractorMap.Has(occupable) {
		return ecs.Entity{}, false
	}
	for _, e := range s.extractorMap.Get(occupable).Exploited {
		if s.world.Alive(e) && s.naturalMap.Has(e) && s.naturalMap.Get(e).Remaining > 0 {
			return e, true
		}
	}
	return ecs.Entity{}, false
}

// stopWorking returns a worker to wandering.
func (s *VillagerSystem) stopWorking(e ecs.Entity) {
	if !s.world.Alive(e) || !s.workingMap.Has(e) {
		return
	}
	s.workingMap.Remove(e)
	s.wanderingMap.Add(e, &components.Wandering{WaitTime: s.waitTime()})
}
