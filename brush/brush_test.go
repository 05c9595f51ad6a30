package brush

import (
	"math"
	"testing"

	"github.com/esimov/stable-fluid/config"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/vector"
)

type recorder struct {
	forces map[[2]int]vector.Vec2
	dye    map[[2]int]vector.Vec3
	time   float64
}

func newRecorder() *recorder {
	return &recorder{forces: map[[2]int]vector.Vec2{}, dye: map[[2]int]vector.Vec3{}}
}

func (r *recorder) InsertForce(x, y int, fx, fy float64) { r.forces[[2]int{x, y}] = vector.V2(fx, fy) }
func (r *recorder) InsertDensity(x, y int, cr, cg, cb float64) {
	r.dye[[2]int{x, y}] = vector.V3(cr, cg, cb)
}
func (r *recorder) Time() float64 { return r.time }

func TestStrokeCoversSquare(t *testing.T) {
	b := &Brush{Radius: 1, ForceMultiplier: 5, TimeMultiplier: 0.5}
	r := newRecorder()
	r.time = 2

	b.Stroke(r, vector.V2(4, 4), vector.V2(5.5, 4.2))

	if len(r.forces) != 9 || len(r.dye) != 9 {
		t.Fatalf("painted %d/%d cells, want 9", len(r.forces), len(r.dye))
	}
	want := vector.V2(1.5, 0.2).Scale(5)
	for x := 4; x <= 6; x++ {
		for y := 3; y <= 5; y++ {
			f, ok := r.forces[[2]int{x, y}]
			if !ok {
				t.Fatalf("cell (%d,%d) not painted", x, y)
			}
			if math.Abs(f[0]-want[0]) > 1e-12 || math.Abs(f[1]-want[1]) > 1e-12 {
				t.Errorf("force at (%d,%d) = %v, want %v", x, y, f, want)
			}
			if r.dye[[2]int{x, y}] != Gradient(1) {
				t.Errorf("dye at (%d,%d) = %v, want %v", x, y, r.dye[[2]int{x, y}], Gradient(1))
			}
		}
	}
}

func TestGradientRange(t *testing.T) {
	for _, tt := range []float64{-3, 0, 0.5, 7, 1000} {
		c := Gradient(tt)
		for i := range c {
			if c[i] < 0 || c[i] > 1 {
				t.Errorf("Gradient(%v)[%d] = %v out of [0,1]", tt, i, c[i])
			}
		}
	}
	if Gradient(0) == Gradient(1) {
		t.Error("gradient does not change over time")
	}
}

func TestStrokeIntoSolverNearEdge(t *testing.T) {
	fs, err := fluid.New(8, 8, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := New(config.BrushConfig{Radius: 2, ForceMultiplier: 1, TimeMultiplier: 1})
	// Half of the square falls outside the grid; the solver drops those cells.
	b.Stroke(fs, vector.V2(0, 0), vector.V2(1, 1))
	fs.Update()

	if fs.Stats().TotalDye <= 0 {
		t.Error("expected dye from the in-grid part of the stroke")
	}
	if fs.Density().At(0, 0) != (vector.Vec3{}) {
		t.Error("corner cell was painted")
	}
}

func TestScale(t *testing.T) {
	s := NewScale(900, 450, 100, 50)
	p := s.ToWorld(450, 225)
	if p != vector.V2(50, 25) {
		t.Errorf("ToWorld = %v, want (50, 25)", p)
	}
	x, y := s.ToScreen(vector.V2(10, 10))
	if x != 90 || y != 90 {
		t.Errorf("ToScreen = (%v, %v), want (90, 90)", x, y)
	}
}
