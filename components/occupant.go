package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/angular"
)

// Kind distinguishes what occupies a surface placement.
type Kind uint8

const (
	KindResource Kind = iota // trees and bushes villagers harvest
	KindBuilding             // player structures, some with storage
	KindAgent                // villagers; the only kind that moves
	KindObstacle             // water and other regions agents cannot cross
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindBuilding:
		return "building"
	case KindAgent:
		return "agent"
	case KindObstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// Static reports whether placements of this kind stay where they were put.
// Only static occupants take part in placement overlap checks.
func (k Kind) Static() bool {
	return k != KindAgent
}

// Occupant tags every surface entity with its kind.
type Occupant struct {
	Kind Kind
}

// Water marks an obstacle arc agents cannot walk through.
type Water struct{}

// OccupableType determines how villagers work at an occupable.
type OccupableType uint8

const (
	Cutting OccupableType = iota
	Foraging
	Fishing
	Interior // villagers go inside and are hidden while working
)

// String returns the display name for an OccupableType.
func (t OccupableType) String() string {
	switch t {
	case Cutting:
		return "cutting"
	case Foraging:
		return "foraging"
	case Fishing:
		return "fishing"
	case Interior:
		return "interior"
	default:
		return "unknown"
	}
}

// Occupable is a placement villagers can be assigned to work at.
type Occupable struct {
	Type       OccupableType
	Produces   ResourceType
	MaxWorkers uint32
}

// NaturalResource is a harvestable placement that disappears once exhausted.
type NaturalResource struct {
	Produces  ResourceType
	Remaining uint32
}

// BuildingType identifies a constructible structure.
type BuildingType uint8

const (
	Stockpile BuildingType = iota
	Sawmill
)

// String returns the display name for a BuildingType.
func (b BuildingType) String() string {
	switch b {
	case Stockpile:
		return "stockpile"
	case Sawmill:
		return "sawmill"
	default:
		return "unknown"
	}
}

// Building tags a structure placement.
type Building struct {
	Type BuildingType
}

// Extractor lets a building draw from nearby natural resources.
// Exploited is filled by a range query when the building is placed.
type Extractor struct {
	Range     float32
	Exploits  ResourceType
	Exploited []ecs.Entity
}

// Villager is a walking agent.
type Villager struct {
	Name string
}

// Walker holds navigation state for an agent.
type Walker struct {
	Destination    angular.Scalar
	HasDestination bool
	FacingLeft     bool // set from the sign of the last committed direction
	Hidden         bool // inside an interior occupable
}

// SetDestination points the walker at pos.
func (w *Walker) SetDestination(pos angular.Scalar) {
	w.Destination = pos
	w.HasDestination = true
}

// ClearDestination leaves the walker idle.
func (w *Walker) ClearDestination() {
	w.HasDestination = false
}

// Wandering is the idle villager state: walk somewhere nearby, wait, repeat.
type Wandering struct {
	WaitTime float32 // seconds left before picking the next destination
}

// Working is the villager state of serving an occupable.
type Working struct {
	Occupable       ecs.Entity
	ProductionTimer float32 // seconds until the next unit is produced
}
