// Package brush turns pointer movement into forces and dye for the solver.
package brush

import (
	"math"

	"github.com/esimov/stable-fluid/config"
	"github.com/esimov/stable-fluid/vector"
)

// Injector receives the brush output. *fluid.Solver satisfies it.
type Injector interface {
	InsertForce(x, y int, fx, fy float64)
	InsertDensity(x, y int, r, g, b float64)
	Time() float64
}

// Brush paints a square of cells around the pointer every frame.
type Brush struct {
	Radius          int
	ForceMultiplier float64
	TimeMultiplier  float64
}

// New builds a brush from its config section.
func New(c config.BrushConfig) *Brush {
	return &Brush{
		Radius:          c.Radius,
		ForceMultiplier: c.ForceMultiplier,
		TimeMultiplier:  c.TimeMultiplier,
	}
}

// Stroke applies a force proportional to the pointer movement prev -> cur and
// dye coloured by the simulation clock to every cell within Radius of cur.
// Both points are in grid coordinates.
func (b *Brush) Stroke(dst Injector, prev, cur vector.Vec2) {
	force := cur.Sub(prev).Scale(b.ForceMultiplier)
	colour := Gradient(dst.Time() * b.TimeMultiplier)

	cx, cy := int(math.Floor(cur[0])), int(math.Floor(cur[1]))
	for x := cx - b.Radius; x <= cx+b.Radius; x++ {
		for y := cy - b.Radius; y <= cy+b.Radius; y++ {
			dst.InsertForce(x, y, force[0], force[1])
			dst.InsertDensity(x, y, colour[0], colour[1], colour[2])
		}
	}
}

// Gradient cycles smoothly through colours as t increases.
func Gradient(t float64) vector.Vec3 {
	f := func(x, y float64) float64 { return (1 + math.Sin(x+y)) * 0.5 }
	return vector.V3(f(t, 1), f(t, 2), f(t, 3))
}

// Scale maps between screen and grid coordinates.
type Scale struct {
	X, Y float64
}

// NewScale returns the screen pixels per grid cell.
func NewScale(screenW, screenH, gridW, gridH int) Scale {
	return Scale{
		X: float64(screenW) / float64(gridW),
		Y: float64(screenH) / float64(gridH),
	}
}

func (s Scale) ToWorld(x, y float64) vector.Vec2 {
	return vector.V2(x/s.X, y/s.Y)
}

func (s Scale) ToScreen(p vector.Vec2) (float64, float64) {
	return p[0] * s.X, p[1] * s.Y
}
