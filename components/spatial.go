package components

import "gonum.org/v1/gonum/spatial/r2"

// Transform is an entity's world-space pose.
// For stickers it is derived from the surface angle every tick.
type Transform struct {
	Position r2.Vec
	Rotation float64 // radians, counter-clockwise from +Y
}
