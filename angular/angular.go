// Package angular provides wraparound scalars for positions along a planet surface.
//
// Every Scalar holds a value in [0, Period). Surface positions are measured in degrees
// clockwise from the planet's up direction, so increasing values walk clockwise.
package angular

import (
	"math"
	"strconv"
)

// Period is the length of one full turn in degrees.
const Period float32 = 360

// Half is the largest possible shortest-path distance between two scalars.
const Half = Period / 2

// Scalar is a real number that wraps on Period. The zero value is 0 degrees.
type Scalar struct {
	value float32
}

// New wraps raw into [0, Period). Non-finite input maps to 0.
func New(raw float32) Scalar {
	return Scalar{value: Wrap(raw)}
}

// Wrap normalizes v into [0, Period).
func Wrap(v float32) float32 {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return 0
	}
	if v >= Period {
		v = float32(math.Mod(float64(v), float64(Period)))
	} else if v < 0 {
		v = Period + float32(math.Mod(float64(v), float64(Period)))
	}
	// -Period and tiny negatives round up to Period after the addition above
	if v >= Period {
		v = 0
	}
	return v
}

// Get returns the wrapped value in degrees.
func (s Scalar) Get() float32 {
	return s.value
}

// Radians returns the value converted to radians.
func (s Scalar) Radians() float64 {
	return float64(s.value) * math.Pi / 180
}

// Add returns s + v, wrapped.
func (s Scalar) Add(v float32) Scalar {
	return New(s.value + v)
}

// Sub returns s - v, wrapped.
func (s Scalar) Sub(v float32) Scalar {
	return New(s.value - v)
}

// Mul returns s * v, wrapped.
func (s Scalar) Mul(v float32) Scalar {
	return New(s.value * v)
}

// Div returns s / v, wrapped. Division by zero yields 0.
func (s Scalar) Div(v float32) Scalar {
	return New(s.value / v)
}

// AddScalar returns s + o, wrapped.
func (s Scalar) AddScalar(o Scalar) Scalar {
	return s.Add(o.value)
}

// SubScalar returns s - o, wrapped.
func (s Scalar) SubScalar(o Scalar) Scalar {
	return s.Sub(o.value)
}

// MulScalar returns s * o, wrapped.
func (s Scalar) MulScalar(o Scalar) Scalar {
	return s.Mul(o.value)
}

// DivScalar returns s / o, wrapped.
func (s Scalar) DivScalar(o Scalar) Scalar {
	return s.Div(o.value)
}

// Difference returns the signed shortest delta from s to other, in [-Half, Half].
//
// When both ways around are exactly Half long the result is +Half: ties always
// resolve to the increasing (clockwise) direction, whichever operand comes first.
func (s Scalar) Difference(other Scalar) float32 {
	delta := other.value - s.value
	var wrapped float32
	if delta > 0 {
		wrapped = delta - Period
	} else {
		wrapped = delta + Period
	}

	absDelta := abs(delta)
	absWrapped := abs(wrapped)
	switch {
	case absDelta < absWrapped:
		return delta
	case absWrapped < absDelta:
		return wrapped
	default:
		return Half
	}
}

// Direction returns the sign of Difference: 1 clockwise, -1 counter-clockwise, 0 equal.
func (s Scalar) Direction(other Scalar) int {
	d := s.Difference(other)
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

// Distance returns the unsigned shortest distance between s and other.
func (s Scalar) Distance(other Scalar) float32 {
	return abs(s.Difference(other))
}

// IsBetween reports whether walking from lo to hi in the given direction passes
// through s, endpoints included.
func (s Scalar) IsBetween(lo, hi float32, forward bool) bool {
	return IsBetween(s.value, lo, hi, forward)
}

// IsStrictlyBetween is IsBetween with both endpoints excluded.
func (s Scalar) IsStrictlyBetween(lo, hi float32, forward bool) bool {
	return IsStrictlyBetween(s.value, lo, hi, forward)
}

// String formats the wrapped value.
func (s Scalar) String() string {
	return strconv.FormatFloat(float64(s.value), 'f', -1, 32)
}

// IsBetween reports whether walking from lo to hi passes through x. forward walks in
// the increasing direction, otherwise in the decreasing one. Inputs may be unwrapped.
func IsBetween(x, lo, hi float32, forward bool) bool {
	span, offset := travel(x, lo, hi, forward)
	return offset <= span
}

// IsStrictlyBetween reports whether x lies on the walk from lo to hi without being
// either endpoint.
func IsStrictlyBetween(x, lo, hi float32, forward bool) bool {
	span, offset := travel(x, lo, hi, forward)
	return offset > 0 && offset < span
}

// travel returns the length of the walk from lo to hi and how far along it x sits.
func travel(x, lo, hi float32, forward bool) (span, offset float32) {
	if forward {
		return Wrap(hi - lo), Wrap(x - lo)
	}
	return Wrap(lo - hi), Wrap(lo - x)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
