package vector

import "math"

// Vec2 is a two component vector. Indexing outside 0..1 panics.
type Vec2 [2]float64

// V2 builds a Vec2 from its components.
func V2(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) X() float64 { return v[0] }
func (v Vec2) Y() float64 { return v[1] }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v[0] * o[0], v[1] * o[1]} }
func (v Vec2) Div(o Vec2) Vec2 { return Vec2{v[0] / o[0], v[1] / o[1]} }

func (v Vec2) AddScalar(k float64) Vec2 { return Vec2{v[0] + k, v[1] + k} }
func (v Vec2) SubScalar(k float64) Vec2 { return Vec2{v[0] - k, v[1] - k} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v[0] * k, v[1] * k} }
func (v Vec2) DivScalar(k float64) Vec2 { return Vec2{v[0] / k, v[1] / k} }

// Sum returns the sum of the components.
func (v Vec2) Sum() float64 { return v[0] + v[1] }

func (v Vec2) Dot(o Vec2) float64 { return v.Mul(o).Sum() }

func (v Vec2) Magnitude2() float64 { return v.Dot(v) }

func (v Vec2) Magnitude() float64 { return math.Sqrt(v.Magnitude2()) }

// Normal returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec2) Normal() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.DivScalar(m)
}

// Clamp limits every component to the matching components of lo and hi.
func (v Vec2) Clamp(lo, hi Vec2) Vec2 {
	return Vec2{clamp(v[0], lo[0], hi[0]), clamp(v[1], lo[1], hi[1])}
}

// Wedge is the scalar cross product of two planar vectors.
func (v Vec2) Wedge(o Vec2) float64 {
	return v[0]*o[1] - v[1]*o[0]
}
