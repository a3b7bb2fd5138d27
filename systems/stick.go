package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
)

// SurfaceTransform returns the world pose of a point at angle on a planet.
// sink pulls the point slightly below the surface so sprites sit on the ground.
func SurfaceTransform(center r2.Vec, radius float32, angle angular.Scalar, sink float32) components.Transform {
	theta := angle.Radians()
	normal := r2.Vec{X: math.Sin(theta), Y: math.Cos(theta)}
	return components.Transform{
		Position: r2.Add(center, r2.Scale(float64(radius-sink), normal)),
		Rotation: -theta,
	}
}

// StickSystem keeps each sticker's Transform on its planet's surface.
type StickSystem struct {
	world        *ecs.World
	filter       *ecs.Filter2[components.Sticker, components.Transform]
	planetMap    *ecs.Map[components.Planet]
	transformMap *ecs.Map[components.Transform]
	sink         float32
}

// NewStickSystem creates a stick system.
func NewStickSystem(w *ecs.World, sink float32) *StickSystem {
	return &StickSystem{
		world:        w,
		filter:       ecs.NewFilter2[components.Sticker, components.Transform](w),
		planetMap:    ecs.NewMap[components.Planet](w),
		transformMap: ecs.NewMap[components.Transform](w),
		sink:         sink,
	}
}

// Update writes the surface pose of every sticker. Stickers on missing planets keep
// their last pose.
func (s *StickSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		sticker, tr := query.Get()
		if !s.world.Alive(sticker.Planet) || !s.planetMap.Has(sticker.Planet) {
			continue
		}
		planet := s.planetMap.Get(sticker.Planet)
		center := s.transformMap.Get(sticker.Planet).Position
		*tr = SurfaceTransform(center, planet.Radius, sticker.Position, s.sink)
	}
}
