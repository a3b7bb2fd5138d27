package systems

import "errors"

var (
	// ErrPlacementRejected is returned when a candidate overlaps an existing static occupant.
	ErrPlacementRejected = errors.New("placement rejected")
	// ErrNoValidPlacement is returned when random sampling found no free angle.
	ErrNoValidPlacement = errors.New("no valid placement")
	// ErrInsufficientResources is returned when a planet cannot pay a cost.
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrUnknownPlanet is returned for an entity that is not a live planet.
	ErrUnknownPlanet = errors.New("unknown planet")

	// ErrNotOccupable is returned when assigning workers to an entity nobody can work at.
	ErrNotOccupable = errors.New("not occupable")
	// ErrOccupancyFull is returned when an occupable already has MaxWorkers.
	ErrOccupancyFull = errors.New("occupancy full")
	// ErrNoIdleVillager is returned when no wandering villager is on the planet.
	ErrNoIdleVillager = errors.New("no idle villager")
)
