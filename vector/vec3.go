package vector

import "math"

// Vec3 is a three component vector, used for dye colour. Indexing outside 0..2 panics.
type Vec3 [3]float64

// V3 builds a Vec3 from its components.
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }
func (v Vec3) Div(o Vec3) Vec3 { return Vec3{v[0] / o[0], v[1] / o[1], v[2] / o[2]} }

func (v Vec3) AddScalar(k float64) Vec3 { return Vec3{v[0] + k, v[1] + k, v[2] + k} }
func (v Vec3) SubScalar(k float64) Vec3 { return Vec3{v[0] - k, v[1] - k, v[2] - k} }
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v[0] * k, v[1] * k, v[2] * k} }
func (v Vec3) DivScalar(k float64) Vec3 { return Vec3{v[0] / k, v[1] / k, v[2] / k} }

func (v Vec3) Sum() float64 { return v[0] + v[1] + v[2] }

func (v Vec3) Dot(o Vec3) float64 { return v.Mul(o).Sum() }

func (v Vec3) Magnitude2() float64 { return v.Dot(v) }

func (v Vec3) Magnitude() float64 { return math.Sqrt(v.Magnitude2()) }

// Normal returns the unit vector in the direction of v, or v itself when it is zero.
func (v Vec3) Normal() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.DivScalar(m)
}

func (v Vec3) Clamp(lo, hi Vec3) Vec3 {
	return Vec3{
		clamp(v[0], lo[0], hi[0]),
		clamp(v[1], lo[1], hi[1]),
		clamp(v[2], lo[2], hi[2]),
	}
}

// Cross returns the 3-D cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}
