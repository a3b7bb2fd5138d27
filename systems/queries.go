package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
)

// MaxWaterArcs is the most water intervals reported per planet.
const MaxWaterArcs = 8

// ClosestSurface is the nearest point on any planet surface to a world position.
type ClosestSurface struct {
	Planet   ecs.Entity
	Angle    float32 // degrees clockwise from the planet's up direction
	Distance float32 // signed: negative inside the planet
}

// Sticker returns a placement at the closest point.
func (c ClosestSurface) Sticker() components.Sticker {
	return components.NewSticker(c.Planet, c.Angle)
}

// Arc is an unwrapped angular interval in degrees.
type Arc struct {
	Start, End float32
}

// SurfaceQueries answers spatial questions about surface placements and performs
// the gated insertions and removals that keep placements non-overlapping.
type SurfaceQueries struct {
	world *ecs.World
	rng   *rand.Rand

	placedMapper *ecs.Map4[components.Sticker, components.Collider, components.Occupant, components.Transform]

	planetFilter  *ecs.Filter2[components.Planet, components.Transform]
	placedFilter  *ecs.Filter3[components.Sticker, components.Collider, components.Occupant]
	naturalFilter *ecs.Filter2[components.Sticker, components.NaturalResource]
	storageFilter *ecs.Filter2[components.Sticker, components.Storage]
	waterFilter   *ecs.Filter3[components.Sticker, components.Collider, components.Water]

	planetMap    *ecs.Map[components.Planet]
	stickerMap   *ecs.Map[components.Sticker]
	colliderMap  *ecs.Map[components.Collider]
	naturalMap   *ecs.Map[components.NaturalResource]
	occupableMap *ecs.Map[components.Occupable]
	buildingMap  *ecs.Map[components.Building]
	storageMap   *ecs.Map[components.Storage]
	extractorMap *ecs.Map[components.Extractor]
	waterMap     *ecs.Map[components.Water]
	villagerMap  *ecs.Map[components.Villager]
	walkerMap    *ecs.Map[components.Walker]
	wanderingMap *ecs.Map[components.Wandering]
}

// NewSurfaceQueries creates the query service for a world. rng drives random placement.
func NewSurfaceQueries(world *ecs.World, rng *rand.Rand) *SurfaceQueries {
	return &SurfaceQueries{
		world: world,
		rng:   rng,

		placedMapper: ecs.NewMap4[components.Sticker, components.Collider, components.Occupant, components.Transform](world),

		planetFilter:  ecs.NewFilter2[components.Planet, components.Transform](world),
		placedFilter:  ecs.NewFilter3[components.Sticker, components.Collider, components.Occupant](world),
		naturalFilter: ecs.NewFilter2[components.Sticker, components.NaturalResource](world),
		storageFilter: ecs.NewFilter2[components.Sticker, components.Storage](world),
		waterFilter:   ecs.NewFilter3[components.Sticker, components.Collider, components.Water](world),

		planetMap:    ecs.NewMap[components.Planet](world),
		stickerMap:   ecs.NewMap[components.Sticker](world),
		colliderMap:  ecs.NewMap[components.Collider](world),
		naturalMap:   ecs.NewMap[components.NaturalResource](world),
		occupableMap: ecs.NewMap[components.Occupable](world),
		buildingMap:  ecs.NewMap[components.Building](world),
		storageMap:   ecs.NewMap[components.Storage](world),
		extractorMap: ecs.NewMap[components.Extractor](world),
		waterMap:     ecs.NewMap[components.Water](world),
		villagerMap:  ecs.NewMap[components.Villager](world),
		walkerMap:    ecs.NewMap[components.Walker](world),
		wanderingMap: ecs.NewMap[components.Wandering](world),
	}
}

// Planet returns the planet component of e, or false if e is not a live planet.
func (q *SurfaceQueries) Planet(e ecs.Entity) (*components.Planet, bool) {
	if !q.world.Alive(e) || !q.planetMap.Has(e) {
		return nil, false
	}
	return q.planetMap.Get(e), true
}

// FindClosestSurface returns the planet surface point nearest to worldPos.
// Returns false when the world has no planets.
func (q *SurfaceQueries) FindClosestSurface(worldPos r2.Vec) (ClosestSurface, bool) {
	var best ClosestSurface
	found := false
	bestAbs := math.Inf(1)

	query := q.planetFilter.Query()
	for query.Next() {
		planet, tr := query.Get()
		d := r2.Sub(worldPos, tr.Position)
		dist := r2.Norm(d) - float64(planet.Radius)
		if math.Abs(dist) >= bestAbs {
			continue
		}
		bestAbs = math.Abs(dist)
		found = true
		best = ClosestSurface{
			Planet:   query.Entity(),
			Angle:    surfaceAngle(d),
			Distance: float32(dist),
		}
	}
	return best, found
}

// surfaceAngle returns the clockwise angle in degrees from the up vector (0, 1) to d.
func surfaceAngle(d r2.Vec) float32 {
	up := r2.Vec{X: 0, Y: 1}
	cross := d.X*up.Y - d.Y*up.X
	dot := d.X*up.X + d.Y*up.Y
	return angular.Wrap(float32(math.Atan2(cross, dot) * 180 / math.Pi))
}

// AttachToSurface is FindClosestSurface restricted to points within threshold of
// a surface, inside or out.
func (q *SurfaceQueries) AttachToSurface(worldPos r2.Vec, threshold float32) (ClosestSurface, bool) {
	closest, ok := q.FindClosestSurface(worldPos)
	if !ok || float32(math.Abs(float64(closest.Distance))) > threshold {
		return ClosestSurface{}, false
	}
	return closest, true
}

// staticFootprints returns every non-agent footprint on planet.
func (q *SurfaceQueries) staticFootprints(planet ecs.Entity) []components.Footprint {
	var out []components.Footprint
	query := q.placedFilter.Query()
	for query.Next() {
		sticker, collider, occ := query.Get()
		if sticker.Planet != planet || !occ.Kind.Static() {
			continue
		}
		out = append(out, components.Footprint{Sticker: *sticker, Collider: *collider})
	}
	return out
}

// RandomValidPlacement samples up to maxTries uniform angles on planet and returns
// the first where a collider of width degrees fits. Returns false if none did.
func (q *SurfaceQueries) RandomValidPlacement(planet ecs.Entity, width float32, maxTries int) (float32, bool) {
	existing := q.staticFootprints(planet)
	for i := 0; i < maxTries; i++ {
		angle := angular.Wrap(q.rng.Float32() * angular.Period)
		if !OverlapsAnything(components.NewFootprint(planet, angle, width), existing) {
			return angle, true
		}
	}
	return 0, false
}

// ResourcesInRange returns natural resources of the given type on origin's planet
// whose surface distance from origin is at most rangeDist.
func (q *SurfaceQueries) ResourcesInRange(origin components.Sticker, rangeDist float32, kind components.ResourceType) []ecs.Entity {
	planet, ok := q.Planet(origin.Planet)
	if !ok {
		return nil
	}

	var out []ecs.Entity
	query := q.naturalFilter.Query()
	for query.Next() {
		sticker, natural := query.Get()
		if natural.Produces != kind {
			continue
		}
		if d, same := origin.ArcDistance(*sticker, planet.Radius); same && d <= rangeDist {
			out = append(out, query.Entity())
		}
	}
	return out
}

// AggregateOnPlanet sums the contents of every storage on planet.
func (q *SurfaceQueries) AggregateOnPlanet(planet ecs.Entity) components.Resources {
	total := components.Resources{}
	query := q.storageFilter.Query()
	for query.Next() {
		sticker, storage := query.Get()
		if sticker.Planet == planet {
			total = total.Combine(storage.Resources)
		}
	}
	return total
}

// CanAfford reports whether the storages on planet together hold cost.
func (q *SurfaceQueries) CanAfford(planet ecs.Entity, cost components.Resources) bool {
	return q.AggregateOnPlanet(planet).Contains(cost)
}

// RemoveResources takes cost from the storages on planet, draining them in query
// order. Nothing is removed if the planet cannot afford the full cost.
func (q *SurfaceQueries) RemoveResources(planet ecs.Entity, cost components.Resources) error {
	if have := q.AggregateOnPlanet(planet); !have.Contains(cost) {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientResources, cost, have)
	}

	owed := components.Resources{}.Combine(cost)
	query := q.storageFilter.Query()
	for query.Next() {
		sticker, storage := query.Get()
		if sticker.Planet != planet || owed.IsEmpty() {
			continue
		}
		owed = storage.RemoveMany(owed)
	}
	return nil
}

// Deposit adds res to the storage on at's planet closest to at.
// Returns false if the planet has no storage.
func (q *SurfaceQueries) Deposit(at components.Sticker, res components.Resources) bool {
	var best ecs.Entity
	found := false
	bestDist := float32(math.MaxFloat32)

	query := q.storageFilter.Query()
	for query.Next() {
		sticker, _ := query.Get()
		if sticker.Planet != at.Planet {
			continue
		}
		if d := at.Position.Distance(sticker.Position); d < bestDist {
			bestDist = d
			best = query.Entity()
			found = true
		}
	}
	if !found {
		return false
	}
	q.storageMap.Get(best).Add(res)
	return true
}

// TryPlace creates an entity for payload at sticker if its collider fits among the
// static occupants of the planet. On rejection nothing is created.
func (q *SurfaceQueries) TryPlace(payload components.Payload, sticker components.Sticker, collider components.Collider) (ecs.Entity, error) {
	if payload == nil {
		return ecs.Entity{}, errors.New("try place: nil payload")
	}
	if _, ok := q.Planet(sticker.Planet); !ok {
		return ecs.Entity{}, fmt.Errorf("try place %s: %w", payload.Kind(), ErrUnknownPlanet)
	}

	candidate := components.Footprint{Sticker: sticker, Collider: collider}
	if OverlapsAnything(candidate, q.staticFootprints(sticker.Planet)) {
		return ecs.Entity{}, fmt.Errorf("%w: %s at %s", ErrPlacementRejected, payload.Kind(), sticker.Position)
	}

	occ := components.Occupant{Kind: payload.Kind()}
	e := q.placedMapper.NewEntity(&sticker, &collider, &occ, &components.Transform{})

	switch p := payload.(type) {
	case components.ResourcePayload:
		q.naturalMap.Add(e, &p.Natural)
		q.occupableMap.Add(e, &p.Occupable)
	case components.BuildingPayload:
		q.buildingMap.Add(e, &p.Building)
		if p.Occupable != nil {
			occupable := *p.Occupable
			q.occupableMap.Add(e, &occupable)
		}
		if p.Storage != nil {
			storage := components.Storage{Resources: components.Resources{}.Combine(p.Storage.Resources)}
			q.storageMap.Add(e, &storage)
		}
		if p.Extractor != nil {
			extractor := *p.Extractor
			extractor.Exploited = q.ResourcesInRange(sticker, extractor.Range, extractor.Exploits)
			q.extractorMap.Add(e, &extractor)
		}
	case components.AgentPayload:
		q.villagerMap.Add(e, &p.Villager)
		q.walkerMap.Add(e, &components.Walker{})
		q.wanderingMap.Add(e, &p.Wandering)
	case components.ObstaclePayload:
		q.waterMap.Add(e, &components.Water{})
	}
	return e, nil
}

// Remove deletes e along with its placement and collider.
// Returns false if e was already gone.
func (q *SurfaceQueries) Remove(e ecs.Entity) bool {
	if !q.world.Alive(e) {
		return false
	}
	q.world.RemoveEntity(e)
	return true
}

// Placement returns the footprint of a placed entity.
func (q *SurfaceQueries) Placement(e ecs.Entity) (components.Footprint, bool) {
	if !q.world.Alive(e) || !q.stickerMap.Has(e) || !q.colliderMap.Has(e) {
		return components.Footprint{}, false
	}
	return components.Footprint{Sticker: *q.stickerMap.Get(e), Collider: *q.colliderMap.Get(e)}, true
}

// Obstacles returns the water footprints on planet. Callers fetch them once per
// tick and share the slice across agents.
func (q *SurfaceQueries) Obstacles(planet ecs.Entity) []components.Footprint {
	var out []components.Footprint
	query := q.waterFilter.Query()
	for query.Next() {
		sticker, collider, _ := query.Get()
		if sticker.Planet == planet {
			out = append(out, components.Footprint{Sticker: *sticker, Collider: *collider})
		}
	}
	return out
}

// WaterArcs returns up to limit water intervals on planet, capped at MaxWaterArcs.
func (q *SurfaceQueries) WaterArcs(planet ecs.Entity, limit int) []Arc {
	limit = min(limit, MaxWaterArcs)
	var out []Arc
	for _, f := range q.Obstacles(planet) {
		if len(out) >= limit {
			break
		}
		start, end := f.Interval()
		out = append(out, Arc{Start: start, End: end})
	}
	return out
}
