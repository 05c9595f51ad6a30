package fluid

import (
	"github.com/esimov/stable-fluid/field"
	"github.com/esimov/stable-fluid/vector"
)

// Stage identifies the part of a step after which a boundary policy runs.
type Stage int

const (
	StageDiffuse Stage = iota
	StageProject
	StageAdvect
)

func (s Stage) String() string {
	switch s {
	case StageDiffuse:
		return "diffuse"
	case StageProject:
		return "project"
	case StageAdvect:
		return "advect"
	}
	return "unknown"
}

// BoundaryFunc enforces boundary conditions on the live fields.
type BoundaryFunc func(stage Stage, velocity *field.Field[vector.Vec2], density *field.Field[vector.Vec3])

// Options tunes a Solver.
type Options struct {
	DiffusionIterations int
	PressureIterations  int

	// Vorticity enables computing the curl of the velocity after every step.
	Vorticity bool

	// AccumulateInjections makes repeated InsertForce/InsertDensity calls on the
	// same cell add up instead of keeping only the last one.
	AccumulateInjections bool

	// Workers splits the cell-independent loops across goroutines when > 1.
	// A negative value uses one goroutine per CPU.
	// Relaxation always runs sequentially.
	Workers int

	// Boundary is called after diffusion, projection and advection. Nil keeps
	// the outer ring at its initial value.
	Boundary BoundaryFunc
}

// DefaultOptions returns the reference configuration: 10 diffusion and 20
// pressure relaxation passes, no vorticity, single threaded.
func DefaultOptions() Options {
	return Options{
		DiffusionIterations: 10,
		PressureIterations:  20,
		Workers:             1,
	}
}

// ReflectEdges is a boundary policy for closed box walls: the velocity
// component normal to a wall is mirrored with opposite sign, everything else
// is copied from the neighbouring interior cell.
func ReflectEdges(stage Stage, velocity *field.Field[vector.Vec2], density *field.Field[vector.Vec3]) {
	reflect(velocity, func(v vector.Vec2, axis int) vector.Vec2 {
		v[axis] = -v[axis]
		return v
	})
	if stage != StageProject {
		reflect(density, func(v vector.Vec3, _ int) vector.Vec3 { return v })
	}
}

func reflect[T vector.Quantity[T]](f *field.Field[T], mirror func(v T, axis int) T) {
	w, h := f.Width(), f.Height()
	for j := 1; j < h-1; j++ {
		f.Set(0, j, mirror(f.At(1, j), 0))
		f.Set(w-1, j, mirror(f.At(w-2, j), 0))
	}
	for i := 1; i < w-1; i++ {
		f.Set(i, 0, mirror(f.At(i, 1), 1))
		f.Set(i, h-1, mirror(f.At(i, h-2), 1))
	}

	f.Set(0, 0, f.At(1, 0).Add(f.At(0, 1)).Scale(0.5))
	f.Set(0, h-1, f.At(1, h-1).Add(f.At(0, h-2)).Scale(0.5))
	f.Set(w-1, 0, f.At(w-2, 0).Add(f.At(w-1, 1)).Scale(0.5))
	f.Set(w-1, h-1, f.At(w-2, h-1).Add(f.At(w-1, h-2)).Scale(0.5))
}
