package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/planets/angular"
	"github.com/pthm-cable/planets/components"
)

// TestSurfaceTransform verifies positions and rotations around the planet.
func TestSurfaceTransform(t *testing.T) {
	center := r2.Vec{X: 10, Y: 20}

	tests := []struct {
		name         string
		angle        float32
		wantX, wantY float64
		wantRot      float64
	}{
		{"top", 0, 10, 120, 0},
		{"right", 90, 110, 20, -math.Pi / 2},
		{"bottom", 180, 10, -80, -math.Pi},
		{"left", 270, -90, 20, -3 * math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := SurfaceTransform(center, 100, angular.New(tt.angle), 0)
			if math.Abs(tr.Position.X-tt.wantX) > 1e-4 || math.Abs(tr.Position.Y-tt.wantY) > 1e-4 {
				t.Errorf("position = %v, want (%v, %v)", tr.Position, tt.wantX, tt.wantY)
			}
			if math.Abs(tr.Rotation-tt.wantRot) > 1e-6 {
				t.Errorf("rotation = %v, want %v", tr.Rotation, tt.wantRot)
			}
		})
	}
}

// TestSurfaceTransformRoundTrip verifies FindClosestSurface inverts the transform.
func TestSurfaceTransformRoundTrip(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{X: -50, Y: 300})

	for _, deg := range []float32{0, 12.5, 90, 181, 359} {
		tr := SurfaceTransform(r2.Vec{X: -50, Y: 300}, 100, angular.New(deg), 0.75)
		got, ok := q.FindClosestSurface(tr.Position)
		if !ok || got.Planet != planets[0] {
			t.Fatalf("angle %v: no surface found", deg)
		}
		if angular.New(deg).Distance(angular.New(got.Angle)) > 1e-3 {
			t.Errorf("angle %v: round trip gave %v", deg, got.Angle)
		}
		if math.Abs(float64(got.Distance)+0.75) > 1e-3 {
			t.Errorf("angle %v: distance = %v, want -0.75", deg, got.Distance)
		}
	}
}

// TestStickSystemUpdate verifies stickers follow their planet.
func TestStickSystemUpdate(t *testing.T) {
	q, planets := newTestQueries(r2.Vec{X: 500, Y: 0})
	e, err := q.TryPlace(treePayload(), components.NewSticker(planets[0], 90), components.NewCollider(4))
	if err != nil {
		t.Fatal(err)
	}

	sys := NewStickSystem(q.world, 0)
	sys.Update()

	tr := ecs.NewMap[components.Transform](q.world).Get(e)
	if math.Abs(tr.Position.X-600) > 1e-4 || math.Abs(tr.Position.Y) > 1e-4 {
		t.Errorf("position = %v, want (600, 0)", tr.Position)
	}
}
