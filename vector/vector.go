// Package vector provides the small fixed-size numeric types carried by the fluid fields.
package vector

import "math"

// Quantity is the arithmetic shared by every value stored in a fluid field.
// Both Scalar and the fixed-size vectors satisfy it, so relaxation and
// interpolation are written once for all of them.
type Quantity[T any] interface {
	Add(T) T
	Sub(T) T
	Scale(float64) T
	DivScalar(float64) T
}

// Scalar is a single float64 quantity, used for pressure, divergence and vorticity.
type Scalar float64

func (s Scalar) Add(o Scalar) Scalar { return s + o }
func (s Scalar) Sub(o Scalar) Scalar { return s - o }
func (s Scalar) Scale(k float64) Scalar { return s * Scalar(k) }
func (s Scalar) DivScalar(k float64) Scalar { return s / Scalar(k) }
func (s Scalar) Clamp(lo, hi Scalar) Scalar { return Scalar(clamp(float64(s), float64(lo), float64(hi))) }
func (s Scalar) Abs() Scalar { return Scalar(math.Abs(float64(s))) }

// clamp maps NaN to lo, so the result always lies in [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
