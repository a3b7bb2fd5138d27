package systems

import (
	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
)

// IsColliding reports whether two footprints occupy overlapping arcs.
//
// Footprints on different planets never collide. Arcs that only touch (center
// separation equal to the sum of half-widths) do not collide, so colliders can be
// packed edge to edge. The result does not depend on argument order.
func IsColliding(a, b components.Footprint) bool {
	if a.Planet != b.Planet {
		return false
	}
	if a.CoversPlanet() || b.CoversPlanet() {
		return true
	}

	ref, other := orderByWidth(a, b)
	refStart, refEnd := ref.Interval()
	otherStart, otherEnd := other.Interval()

	// An endpoint of the narrower arc strictly inside the wider one
	if angular.IsStrictlyBetween(otherStart, refStart, refEnd, true) ||
		angular.IsStrictlyBetween(otherEnd, refStart, refEnd, true) {
		return true
	}

	// The wider arc lying wholly inside the other, which with ref being the wider
	// one means two identical arcs
	return ref.Width > 0 &&
		angular.IsBetween(refStart, otherStart, otherEnd, true) &&
		angular.IsBetween(refEnd, otherStart, otherEnd, true)
}

// orderByWidth returns the wider footprint first. Equal widths are ordered by
// position so both argument orders evaluate the exact same float operations.
func orderByWidth(a, b components.Footprint) (wider, narrower components.Footprint) {
	switch {
	case a.Width > b.Width:
		return a, b
	case b.Width > a.Width:
		return b, a
	case b.Position.Get() < a.Position.Get():
		return b, a
	default:
		return a, b
	}
}

// OverlapsAnything reports whether candidate collides with any footprint in existing.
func OverlapsAnything(candidate components.Footprint, existing []components.Footprint) bool {
	for _, f := range existing {
		if IsColliding(candidate, f) {
			return true
		}
	}
	return false
}
