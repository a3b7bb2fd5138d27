package systems

import (
	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
)

// ArriveEpsilon is the angular distance at which a walker counts as arrived.
const ArriveEpsilon float32 = 0.1

// StepResult is the outcome of one navigation step.
type StepResult uint8

const (
	StepArrived StepResult = iota // no destination or already there; no movement
	StepMoved                     // moved along a free direction
	StepBlocked                   // both directions obstructed; no movement
	StepSkipped                   // walker has no valid planet; no-op
)

// String returns the display name for a StepResult.
func (r StepResult) String() string {
	switch r {
	case StepArrived:
		return "arrived"
	case StepMoved:
		return "moved"
	case StepBlocked:
		return "blocked"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step advances a walker toward its destination by speed*dt degrees.
//
// The shortest direction is tried first and the long way around second. Movement
// stops at the destination rather than passing it. obstacles should be the
// footprints on the walker's planet; others are ignored.
func Step(sticker *components.Sticker, walker *components.Walker, obstacles []components.Footprint, dt, speed float32) StepResult {
	if sticker == nil || walker == nil {
		return StepSkipped
	}
	if !walker.HasDestination || sticker.Position.Distance(walker.Destination) < ArriveEpsilon {
		return StepArrived
	}

	dir, ok := WalkDirection(*sticker, walker.Destination, obstacles)
	if !ok {
		return StepBlocked
	}

	move := min(speed*dt, travelDistance(sticker.Position, walker.Destination, dir))
	sticker.Position = sticker.Position.Add(float32(dir) * move)
	walker.FacingLeft = dir < 0
	return StepMoved
}

// WalkDirection picks the direction to walk from sticker to dest: the shortest if it
// is free, otherwise the longest. Returns false when both are obstructed.
func WalkDirection(sticker components.Sticker, dest angular.Scalar, obstacles []components.Footprint) (int, bool) {
	shortest := sticker.Position.Direction(dest)
	if shortest == 0 {
		shortest = 1
	}
	if IsPathFree(sticker, dest, shortest, obstacles) {
		return shortest, true
	}
	longest := -shortest
	if IsPathFree(sticker, dest, longest, obstacles) {
		return longest, true
	}
	return 0, false
}

// IsPathFree reports whether no obstacle on sticker's planet obstructs the walk to
// end in direction dir.
func IsPathFree(sticker components.Sticker, end angular.Scalar, dir int, obstacles []components.Footprint) bool {
	for _, o := range obstacles {
		if o.Planet != sticker.Planet {
			continue
		}
		if IsObstructing(o, sticker.Position, end, dir) {
			return false
		}
	}
	return true
}

// IsObstructing reports whether obstacle blocks the walk from start to end in
// direction dir (positive is clockwise).
//
// A walk may not begin or finish strictly inside the obstacle. Otherwise the walk
// is blocked when the traveled arc holds either obstacle edge strictly inside it,
// or the obstacle's center. Both directions use the same predicate.
func IsObstructing(obstacle components.Footprint, start, end angular.Scalar, dir int) bool {
	if obstacle.CoversPlanet() {
		return true
	}
	oStart, oEnd := obstacle.Interval()
	if angular.IsStrictlyBetween(start.Get(), oStart, oEnd, true) ||
		angular.IsStrictlyBetween(end.Get(), oStart, oEnd, true) {
		return true
	}

	forward := dir > 0
	s, e := start.Get(), end.Get()
	return angular.IsStrictlyBetween(oStart, s, e, forward) ||
		angular.IsStrictlyBetween(oEnd, s, e, forward) ||
		angular.IsBetween(obstacle.Position.Get(), s, e, forward)
}

// travelDistance is how far it is from pos to dest walking in direction dir.
func travelDistance(pos, dest angular.Scalar, dir int) float32 {
	if dir > 0 {
		return angular.Wrap(dest.Get() - pos.Get())
	}
	return angular.Wrap(pos.Get() - dest.Get())
}
