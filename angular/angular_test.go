package angular

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewWraps(t *testing.T) {
	tests := []struct {
		name string
		raw  float32
		want float32
	}{
		{"zero", 0, 0},
		{"inside range", 45, 45},
		{"period", 360, 0},
		{"above period", 370, 10},
		{"several turns", 725, 5},
		{"negative", -10, 350},
		{"negative period", -360, 0},
		{"negative several turns", -725, 355},
		{"tiny negative", -1e-9, 0},
		{"nan", float32(math.NaN()), 0},
		{"inf", float32(math.Inf(1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.raw).Get()
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("New(%v).Get() = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		raw := (rng.Float32()*2 - 1) * 1e5
		got := New(raw).Get()
		if got < 0 || got >= Period {
			t.Fatalf("New(%v).Get() = %v, outside [0, %v)", raw, got, Period)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := New(350)

	if got := a.Add(20).Get(); got != 10 {
		t.Errorf("350 + 20 = %v, want 10", got)
	}
	if got := New(10).Sub(20).Get(); got != 350 {
		t.Errorf("10 - 20 = %v, want 350", got)
	}
	if got := New(200).Mul(2).Get(); got != 40 {
		t.Errorf("200 * 2 = %v, want 40", got)
	}
	if got := New(90).Div(-2).Get(); got != 315 {
		t.Errorf("90 / -2 = %v, want 315", got)
	}
	if got := New(90).Div(0).Get(); got != 0 {
		t.Errorf("90 / 0 = %v, want 0", got)
	}
	if got := a.AddScalar(New(30)).Get(); got != 20 {
		t.Errorf("350 + 30 = %v, want 20", got)
	}
	if got := New(5).SubScalar(New(10)).Get(); got != 355 {
		t.Errorf("5 - 10 = %v, want 355", got)
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		name     string
		from, to float32
		want     float32
	}{
		{"same", 40, 40, 0},
		{"forward", 10, 30, 20},
		{"backward", 30, 10, -20},
		{"across seam forward", 350, 10, 20},
		{"across seam backward", 10, 350, -20},
		{"long way is shorter backward", 0, 270, -90},
		{"tie positive raw delta", 0, 180, 180},
		{"tie negative raw delta", 180, 0, 180},
		{"tie off origin", 100, 280, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.from).Difference(New(tt.to))
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("Difference(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDirectionTieIsClockwise(t *testing.T) {
	if got := New(0).Direction(New(180)); got != 1 {
		t.Errorf("Direction(0 -> 180) = %d, want 1", got)
	}
	if got := New(180).Direction(New(0)); got != 1 {
		t.Errorf("Direction(180 -> 0) = %d, want 1", got)
	}
	if got := New(12).Direction(New(12)); got != 0 {
		t.Errorf("Direction(12 -> 12) = %d, want 0", got)
	}
}

func TestDifferenceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		a := New(rng.Float32() * 720)
		b := New(rng.Float32()*720 - 360)

		d := a.Difference(b)
		if d < -Half || d > Half {
			t.Fatalf("|Difference(%v, %v)| = %v exceeds %v", a, b, d, Half)
		}

		landed := a.Add(d)
		if miss := landed.Distance(b); miss > 1e-3 {
			t.Fatalf("%v + Difference = %v, want %v (miss %v)", a, landed, b, miss)
		}

		if a.Distance(b) != b.Distance(a) {
			t.Fatalf("Distance not symmetric for %v, %v: %v vs %v", a, b, a.Distance(b), b.Distance(a))
		}
	}
}

func TestIsBetween(t *testing.T) {
	tests := []struct {
		name    string
		x       float32
		lo, hi  float32
		forward bool
		want    bool
		strict  bool
	}{
		{"inside forward", 20, 10, 30, true, true, true},
		{"outside forward", 40, 10, 30, true, false, false},
		{"inside backward walk", 40, 10, 30, false, true, true},
		{"outside backward walk", 20, 10, 30, false, false, false},
		{"forward across seam", 5, 350, 10, true, true, true},
		{"backward across seam", 355, 10, 350, false, true, true},
		{"endpoint lo", 10, 10, 30, true, true, false},
		{"endpoint hi", 30, 10, 30, true, true, false},
		{"unwrapped interval", 1, 354, 362, true, true, true},
		{"degenerate walk", 10, 10, 10, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBetween(tt.x, tt.lo, tt.hi, tt.forward); got != tt.want {
				t.Errorf("IsBetween(%v, %v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, tt.forward, got, tt.want)
			}
			if got := IsStrictlyBetween(tt.x, tt.lo, tt.hi, tt.forward); got != tt.strict {
				t.Errorf("IsStrictlyBetween(%v, %v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, tt.forward, got, tt.strict)
			}
		})
	}
}
