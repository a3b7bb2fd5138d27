// Package components defines ECS components for the planet simulation.
package components

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planets/angular"
)

// Sticker binds an entity to a position on a planet's surface.
type Sticker struct {
	Planet   ecs.Entity
	Position angular.Scalar
}

// NewSticker creates a sticker at the given angle in degrees.
func NewSticker(planet ecs.Entity, degrees float32) Sticker {
	return Sticker{Planet: planet, Position: angular.New(degrees)}
}

// ArcDistance returns the surface distance to other on a planet of the given radius.
// Returns false if the two stickers are on different planets.
func (s Sticker) ArcDistance(other Sticker, radius float32) (float32, bool) {
	if s.Planet != other.Planet {
		return 0, false
	}
	return ArcLength(s.Position.Distance(other.Position), radius), true
}

// ArcLength converts an angular distance in degrees to surface distance.
func ArcLength(degrees, radius float32) float32 {
	return radius * degrees * math.Pi / 180
}

// Collider gives a sticker an angular size.
// Width is the full size in degrees; the occupied arc is Position ± Width/2.
type Collider struct {
	Width float32
}

// NewCollider creates a collider of the given width in degrees.
func NewCollider(width float32) Collider {
	return Collider{Width: width}
}

// Footprint is a sticker together with its collider: the arc an entity occupies.
type Footprint struct {
	Sticker
	Collider
}

// NewFootprint builds a footprint on planet centered at degrees.
func NewFootprint(planet ecs.Entity, degrees, width float32) Footprint {
	return Footprint{Sticker: NewSticker(planet, degrees), Collider: NewCollider(width)}
}

// Interval returns the arc's endpoints without re-wrapping them, so start may be
// negative and end may exceed the period when the arc straddles 0.
func (f Footprint) Interval() (start, end float32) {
	pos := f.Position.Get()
	return pos - f.Width/2, pos + f.Width/2
}

// Contains reports whether pos lies within the arc, edges included.
func (f Footprint) Contains(pos angular.Scalar) bool {
	return f.Position.Distance(pos) <= f.Width/2
}

// EdgeDistance returns the angular distance from pos to the nearer arc edge.
func (f Footprint) EdgeDistance(pos angular.Scalar) float32 {
	start, end := f.Interval()
	return min(angular.New(start).Distance(pos), angular.New(end).Distance(pos))
}

// CoversPlanet reports whether the arc spans the whole surface.
func (f Footprint) CoversPlanet() bool {
	return f.Width >= angular.Period
}
