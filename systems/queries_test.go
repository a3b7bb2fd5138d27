package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/components"
)

// newTestQueries creates a world with a radius 100 planet at each center.
func newTestQueries(centers ...r2.Vec) (*SurfaceQueries, []ecs.Entity) {
	w := ecs.NewWorld()
	planetMapper := ecs.NewMap2[components.Planet, components.Transform](w)
	planets := make([]ecs.Entity, len(centers))
	for i, c := range centers {
		planets[i] = planetMapper.NewEntity(
			&components.Planet{Radius: 100, Main: i == 0},
			&components.Transform{Position: c},
		)
	}
	return NewSurfaceQueries(w, rand.New(rand.NewSource(1))), planets
}

func treePayload() components.ResourcePayload {
	return components.ResourcePayload{
		Natural:   components.NaturalResource{Produces: components.Wood, Remaining: 20},
		Occupable: components.Occupable{Type: components.Cutting, Produces: components.Wood, MaxWorkers: 1},
	}
}

func bushPayload() components.ResourcePayload {
	return components.ResourcePayload{
		Natural:   components.NaturalResource{Produces: components.Food, Remaining: 20},
		Occupable: components.Occupable{Type: components.Foraging, Produces: components.Food, MaxWorkers: 1},
	}
}

func stockpilePayload(res components.Resources) components.BuildingPayload {
	return components.BuildingPayload{
		Building: components.Building{Type: components.Stockpile},
		Storage:  &components.Storage{Resources: res},
	}
}

func countPlaced(q *SurfaceQueries) int {
	n := 0
	query := q.placedFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// TestFindClosestSurface verifies distance and clockwise angle from up.
func TestFindClosestSurface(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{}, r2.Vec{X: 1000})

	tests := []struct {
		name      string
		pos       r2.Vec
		planet    ecs.Entity
		wantAngle float32
		wantDist  float32
	}{
		{"above", r2.Vec{X: 0, Y: 130}, planets[0], 0, 30},
		{"right", r2.Vec{X: 130, Y: 0}, planets[0], 90, 30},
		{"below", r2.Vec{X: 0, Y: -130}, planets[0], 180, 30},
		{"left", r2.Vec{X: -130, Y: 0}, planets[0], 270, 30},
		{"inside", r2.Vec{X: 0, Y: 50}, planets[0], 0, -50},
		{"second planet", r2.Vec{X: 900, Y: 0}, planets[1], 270, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := q.FindClosestSurface(tt.pos)
			if !ok {
				t.Fatal("expected a surface")
			}
			if got.Planet != tt.planet {
				t.Errorf("planet = %v, want %v", got.Planet, tt.planet)
			}
			if math.Abs(float64(got.Angle-tt.wantAngle)) > 1e-3 {
				t.Errorf("angle = %v, want %v", got.Angle, tt.wantAngle)
			}
			if math.Abs(float64(got.Distance-tt.wantDist)) > 1e-3 {
				t.Errorf("distance = %v, want %v", got.Distance, tt.wantDist)
			}
		})
	}
}

// TestFindClosestSurfaceNoPlanets verifies the not-found result.
func TestFindClosestSurfaceNoPlanets(t *testing.T) {
	q, _ := newTestQueries()
	if _, ok := q.FindClosestSurface(r2.Vec{X: 1, Y: 1}); ok {
		t.Error("expected no surface in an empty world")
	}
}

// TestAttachToSurface verifies the attach threshold applies on both sides.
func TestAttachToSurface(t *testing.T) {
	q, _ := newTestQueries(r2.Vec{})

	if _, ok := q.AttachToSurface(r2.Vec{X: 0, Y: 115}, 20); !ok {
		t.Error("15 above the surface should attach")
	}
	if _, ok := q.AttachToSurface(r2.Vec{X: 0, Y: 85}, 20); !ok {
		t.Error("15 below the surface should attach")
	}
	if _, ok := q.AttachToSurface(r2.Vec{X: 0, Y: 130}, 20); ok {
		t.Error("30 above the surface should not attach")
	}
}

// TestTryPlaceRejectsOverlap verifies a rejected placement creates nothing.
func TestTryPlaceRejectsOverlap(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]

	if _, err := q.TryPlace(treePayload(), components.NewSticker(p, 10), components.NewCollider(8)); err != nil {
		t.Fatalf("first placement: %v", err)
	}
	_, err := q.TryPlace(treePayload(), components.NewSticker(p, 15), components.NewCollider(8))
	if !errors.Is(err, ErrPlacementRejected) {
		t.Fatalf("overlapping placement err = %v, want ErrPlacementRejected", err)
	}
	if n := countPlaced(q); n != 1 {
		t.Errorf("placed count = %d, want 1", n)
	}
	if _, err := q.TryPlace(treePayload(), components.NewSticker(p, 18), components.NewCollider(8)); err != nil {
		t.Errorf("touching placement should succeed: %v", err)
	}
}

// TestTryPlaceAgents verifies agents are gated on spawn but never block others.
func TestTryPlaceAgents(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]
	agent := components.AgentPayload{Villager: components.Villager{Name: "a"}}

	if _, err := q.TryPlace(treePayload(), components.NewSticker(p, 10), components.NewCollider(8)); err != nil {
		t.Fatal(err)
	}
	if _, err := q.TryPlace(agent, components.NewSticker(p, 12), components.NewCollider(2)); !errors.Is(err, ErrPlacementRejected) {
		t.Errorf("agent on a tree err = %v, want ErrPlacementRejected", err)
	}

	e, err := q.TryPlace(agent, components.NewSticker(p, 100), components.NewCollider(2))
	if err != nil {
		t.Fatalf("agent spawn: %v", err)
	}
	if !q.walkerMap.Has(e) || !q.wanderingMap.Has(e) {
		t.Error("agent should start with a walker and wandering state")
	}
	if _, err := q.TryPlace(components.ObstaclePayload{}, components.NewSticker(p, 100), components.NewCollider(8)); err != nil {
		t.Errorf("static placement over an agent should succeed: %v", err)
	}
}

// TestTryPlaceUnknownPlanet verifies placements need a live planet.
func TestTryPlaceUnknownPlanet(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	q.Remove(planets[0])

	_, err := q.TryPlace(treePayload(), components.NewSticker(planets[0], 0), components.NewCollider(8))
	if !errors.Is(err, ErrUnknownPlanet) {
		t.Errorf("err = %v, want ErrUnknownPlanet", err)
	}
}

// TestRemoveLeavesNoGhost verifies a removed placement no longer blocks its arc.
func TestRemoveLeavesNoGhost(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]

	e, err := q.TryPlace(treePayload(), components.NewSticker(p, 40), components.NewCollider(8))
	if err != nil {
		t.Fatal(err)
	}
	if !q.Remove(e) {
		t.Fatal("Remove returned false for a live entity")
	}
	if q.Remove(e) {
		t.Error("second Remove should report the entity gone")
	}
	if _, err := q.TryPlace(treePayload(), components.NewSticker(p, 40), components.NewCollider(8)); err != nil {
		t.Errorf("re-placement after remove: %v", err)
	}
}

// TestRandomValidPlacement verifies sampling on empty and full planets.
func TestRandomValidPlacement(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{}, r2.Vec{X: 1000})

	for i := 0; i < 20; i++ {
		angle, ok := q.RandomValidPlacement(planets[0], 8, 1)
		if !ok {
			t.Fatal("empty planet should accept the first sample")
		}
		if angle < 0 || angle >= 360 {
			t.Fatalf("angle %v out of range", angle)
		}
	}

	if _, err := q.TryPlace(components.ObstaclePayload{}, components.NewSticker(planets[1], 0), components.NewCollider(360)); err != nil {
		t.Fatal(err)
	}
	if _, ok := q.RandomValidPlacement(planets[1], 1, 10); ok {
		t.Error("fully covered planet should have no valid placement")
	}
}

// TestRandomValidPlacementAvoidsOccupants verifies results never collide.
func TestRandomValidPlacementAvoidsOccupants(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]
	if _, err := q.TryPlace(components.ObstaclePayload{}, components.NewSticker(p, 90), components.NewCollider(180)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		angle, ok := q.RandomValidPlacement(p, 4, 10)
		if !ok {
			continue
		}
		if IsColliding(components.NewFootprint(p, angle, 4), components.NewFootprint(p, 90, 180)) {
			t.Fatalf("sampled angle %v collides with the obstacle", angle)
		}
	}
}

// TestResourcesInRange verifies type and surface distance filtering.
func TestResourcesInRange(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{}, r2.Vec{X: 1000})
	p := planets[0]

	near, _ := q.TryPlace(treePayload(), components.NewSticker(p, 10), components.NewCollider(4))
	q.TryPlace(treePayload(), components.NewSticker(p, 40), components.NewCollider(4))
	q.TryPlace(bushPayload(), components.NewSticker(p, 350), components.NewCollider(4))
	q.TryPlace(treePayload(), components.NewSticker(planets[1], 0), components.NewCollider(4))

	// 10 degrees on radius 100 is about 17.45 units of surface
	got := q.ResourcesInRange(components.NewSticker(p, 0), 20, components.Wood)
	if len(got) != 1 || got[0] != near {
		t.Errorf("wood in range = %v, want [%v]", got, near)
	}
	if food := q.ResourcesInRange(components.NewSticker(p, 0), 20, components.Food); len(food) != 1 {
		t.Errorf("food in range = %d entities, want 1", len(food))
	}
}

// TestExtractorFillsExploited verifies the range query runs on placement.
func TestExtractorFillsExploited(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]

	tree, _ := q.TryPlace(treePayload(), components.NewSticker(p, 20), components.NewCollider(4))
	q.TryPlace(treePayload(), components.NewSticker(p, 120), components.NewCollider(4))

	sawmill := components.BuildingPayload{
		Building:  components.Building{Type: components.Sawmill},
		Occupable: &components.Occupable{Type: components.Interior, Produces: components.Wood, MaxWorkers: 3},
		Extractor: &components.Extractor{Range: 50, Exploits: components.Wood},
	}
	e, err := q.TryPlace(sawmill, components.NewSticker(p, 0), components.NewCollider(16))
	if err != nil {
		t.Fatal(err)
	}
	exploited := q.extractorMap.Get(e).Exploited
	if len(exploited) != 1 || exploited[0] != tree {
		t.Errorf("exploited = %v, want [%v]", exploited, tree)
	}
}

// TestRemoveResources verifies costs are drawn across storages atomically.
func TestRemoveResources(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{}, r2.Vec{X: 1000})
	p := planets[0]

	q.TryPlace(stockpilePayload(components.Resources{components.Food: 5}), components.NewSticker(p, 0), components.NewCollider(8))
	q.TryPlace(stockpilePayload(components.Resources{components.Food: 10, components.Wood: 4}), components.NewSticker(p, 90), components.NewCollider(8))
	q.TryPlace(stockpilePayload(components.Resources{components.Food: 100}), components.NewSticker(planets[1], 0), components.NewCollider(8))

	if !q.CanAfford(p, components.Resources{components.Food: 15}) {
		t.Error("planet should afford 15 food")
	}
	if q.CanAfford(p, components.Resources{components.Food: 16}) {
		t.Error("planet should not afford 16 food")
	}

	err := q.RemoveResources(p, components.Resources{components.Food: 30})
	if !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("err = %v, want ErrInsufficientResources", err)
	}
	if got := q.AggregateOnPlanet(p).Amount(components.Food); got != 15 {
		t.Errorf("food after failed removal = %d, want 15", got)
	}

	if err := q.RemoveResources(p, components.Resources{components.Food: 12, components.Wood: 4}); err != nil {
		t.Fatal(err)
	}
	total := q.AggregateOnPlanet(p)
	if total.Amount(components.Food) != 3 || total.Amount(components.Wood) != 0 {
		t.Errorf("remaining = %s, want Food:3", total)
	}
	if got := q.AggregateOnPlanet(planets[1]).Amount(components.Food); got != 100 {
		t.Errorf("other planet food = %d, want 100", got)
	}
}

// TestDeposit verifies produce goes to the nearest storage on the same planet.
func TestDeposit(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{}, r2.Vec{X: 1000})
	p := planets[0]

	far, _ := q.TryPlace(stockpilePayload(nil), components.NewSticker(p, 0), components.NewCollider(8))
	near, _ := q.TryPlace(stockpilePayload(nil), components.NewSticker(p, 180), components.NewCollider(8))

	if !q.Deposit(components.NewSticker(p, 170), components.Resources{components.Wood: 2}) {
		t.Fatal("deposit should find a storage")
	}
	if got := q.storageMap.Get(near).Resources.Amount(components.Wood); got != 2 {
		t.Errorf("near storage wood = %d, want 2", got)
	}
	if got := q.storageMap.Get(far).Resources.Amount(components.Wood); got != 0 {
		t.Errorf("far storage wood = %d, want 0", got)
	}
	if q.Deposit(components.NewSticker(planets[1], 0), components.Resources{components.Wood: 1}) {
		t.Error("planet without storage should reject deposits")
	}
}

// TestWaterArcs verifies obstacle intervals and the per-planet cap.
func TestWaterArcs(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{})
	p := planets[0]
	for i := 0; i < 10; i++ {
		if _, err := q.TryPlace(components.ObstaclePayload{}, components.NewSticker(p, float32(i*30)), components.NewCollider(10)); err != nil {
			t.Fatal(err)
		}
	}

	if n := len(q.Obstacles(p)); n != 10 {
		t.Errorf("obstacles = %d, want 10", n)
	}
	arcs := q.WaterArcs(p, 20)
	if len(arcs) != MaxWaterArcs {
		t.Fatalf("arcs = %d, want %d", len(arcs), MaxWaterArcs)
	}
	if arcs[0].End-arcs[0].Start != 10 {
		t.Errorf("arc width = %v, want 10", arcs[0].End-arcs[0].Start)
	}
}
