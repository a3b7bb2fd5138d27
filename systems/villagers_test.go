package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/components"
	"github.com/pthm-cable/planets/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	return cfg
}

// villageFixture is a single planet with villager, occupancy and economy systems.
type villageFixture struct {
	q         *SurfaceQueries
	planet    ecs.Entity
	villagers *VillagerSystem
	occupancy *OccupancySystem
	economy   *Economy
}

func newVillageFixture(t *testing.T) *villageFixture {
	cfg := testConfig(t)
	q, planets := newTestQueries(r2.Vec{})
	rng := rand.New(rand.NewSource(7))
	return &villageFixture{
		q:         q,
		planet:    planets[0],
		villagers: NewVillagerSystem(q.world, q, rng, cfg),
		occupancy: NewOccupancySystem(q.world, cfg),
		economy:   NewEconomy(q, cfg),
	}
}

func (f *villageFixture) place(t *testing.T, payload components.Payload, angle, width float32) ecs.Entity {
	t.Helper()
	e, err := f.q.TryPlace(payload, components.NewSticker(f.planet, angle), components.NewCollider(width))
	if err != nil {
		t.Fatalf("placing %s at %v: %v", payload.Kind(), angle, err)
	}
	return e
}

func (f *villageFixture) villager(t *testing.T, angle float32) ecs.Entity {
	return f.place(t, components.AgentPayload{Villager: components.Villager{Name: "v"}}, angle, 2)
}

func (f *villageFixture) run(ticks int, dt float32) VillagerStats {
	total := VillagerStats{Produced: components.Resources{}}
	for i := 0; i < ticks; i++ {
		s := f.villagers.Update(dt)
		total.Moved += s.Moved
		total.Arrived += s.Arrived
		total.Blocked += s.Blocked
		total.Depleted += s.Depleted
		total.Produced = total.Produced.Combine(s.Produced)
	}
	return total
}

// TestWanderCycle verifies a wanderer picks a nearby destination, walks, then waits.
func TestWanderCycle(t *testing.T) {
	f := newVillageFixture(t)
	v := f.villager(t, 100)

	first := f.villagers.Update(0.1)
	walker := f.q.walkerMap.Get(v)
	if !walker.HasDestination && first.Arrived == 0 {
		t.Fatal("wanderer should pick a destination straight away")
	}
	if d := walker.Destination.Distance(f.villagers.stickerMap.Get(v).Position); walker.HasDestination && d > 20 {
		t.Errorf("destination %v degrees away, want at most 20", d)
	}

	// 20 degrees at 7 degrees per second is under 3 seconds
	arrived := first.Arrived > 0
	for i := 0; i < 40 && !arrived; i++ {
		if f.villagers.Update(0.1).Arrived > 0 {
			arrived = true
		}
	}
	if !arrived {
		t.Fatal("wanderer never arrived")
	}
	wait := f.q.wanderingMap.Get(v).WaitTime
	if wait < 0.5 || wait > 2.5 {
		t.Errorf("wait time = %v, want within [0.5, 2.5]", wait)
	}
	if f.q.walkerMap.Get(v).HasDestination {
		t.Error("destination should be cleared while waiting")
	}
}

// TestWorkerHarvestsTree verifies production, deposit and depletion.
func TestWorkerHarvestsTree(t *testing.T) {
	f := newVillageFixture(t)
	stockpile := f.place(t, stockpilePayload(nil), 200, 12)
	tree := f.place(t, components.ResourcePayload{
		Natural:   components.NaturalResource{Produces: components.Wood, Remaining: 3},
		Occupable: components.Occupable{Type: components.Cutting, Produces: components.Wood, MaxWorkers: 1},
	}, 100, 8)
	v := f.villager(t, 130)

	if _, err := f.occupancy.Assign(tree); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// 25 degrees at 15 degrees per second
	f.run(30, 0.1)
	pos := f.villagers.stickerMap.Get(v).Position.Get()
	if math.Abs(float64(pos-105)) > 0.2 {
		t.Errorf("worker at %v, want beside the tree at 105", pos)
	}

	stats := f.run(50, 0.1)
	if got := f.q.storageMap.Get(stockpile).Resources.Amount(components.Wood); got != 3 {
		t.Errorf("stockpile wood = %d, want 3", got)
	}
	if stats.Depleted != 1 {
		t.Errorf("depleted = %d, want 1", stats.Depleted)
	}
	if f.q.world.Alive(tree) {
		t.Error("exhausted tree should be removed")
	}
	if !f.q.wanderingMap.Has(v) {
		t.Error("worker should wander once the tree is gone")
	}
}

// TestInteriorWorkerIsHidden verifies interior work and extraction from nearby trees.
func TestInteriorWorkerIsHidden(t *testing.T) {
	f := newVillageFixture(t)
	stockpile := f.place(t, stockpilePayload(nil), 200, 12)
	tree := f.place(t, treePayload(), 70, 8)
	sawmill := f.place(t, components.BuildingPayload{
		Building:  components.Building{Type: components.Sawmill},
		Occupable: &components.Occupable{Type: components.Interior, Produces: components.Wood, MaxWorkers: 3},
		Extractor: &components.Extractor{Range: 60, Exploits: components.Wood},
	}, 50, 16)
	v := f.villager(t, 60)

	if _, err := f.occupancy.Assign(sawmill); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	f.run(40, 0.1)

	walker := f.q.walkerMap.Get(v)
	if !walker.Hidden {
		t.Error("worker inside the sawmill should be hidden")
	}
	if pos := f.villagers.stickerMap.Get(v).Position.Get(); math.Abs(float64(pos-50)) > 0.2 {
		t.Errorf("worker at %v, want at the sawmill center 50", pos)
	}
	wood := f.q.storageMap.Get(stockpile).Resources.Amount(components.Wood)
	if wood == 0 {
		t.Error("sawmill work should deposit wood")
	}
	if left := f.q.naturalMap.Get(tree).Remaining; left != 20-wood {
		t.Errorf("tree remaining = %d, want %d", left, 20-wood)
	}
}

// TestOrphanedWorkerWanders verifies workers revert when their occupable disappears.
func TestOrphanedWorkerWanders(t *testing.T) {
	f := newVillageFixture(t)
	tree := f.place(t, treePayload(), 100, 8)
	v := f.villager(t, 130)
	if _, err := f.occupancy.Assign(tree); err != nil {
		t.Fatal(err)
	}

	f.q.Remove(tree)
	f.villagers.Update(0.1)

	if f.villagers.workingMap.Has(v) || !f.q.wanderingMap.Has(v) {
		t.Error("worker of a removed tree should be wandering")
	}
}

// TestWorkWithoutStorageProducesNothing verifies trees keep their wood when
// there is nowhere to put it.
func TestWorkWithoutStorageProducesNothing(t *testing.T) {
	f := newVillageFixture(t)
	tree := f.place(t, treePayload(), 100, 8)
	f.villager(t, 108)
	if _, err := f.occupancy.Assign(tree); err != nil {
		t.Fatal(err)
	}

	stats := f.run(50, 0.1)
	if !stats.Produced.IsEmpty() {
		t.Errorf("produced = %s, want nothing", stats.Produced)
	}
	if left := f.q.naturalMap.Get(tree).Remaining; left != 20 {
		t.Errorf("tree remaining = %d, want 20", left)
	}
}
