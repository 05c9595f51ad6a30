// Package fluid implements a two dimensional stable-fluids solver.
package fluid

import (
	"errors"
	"fmt"
	"math"

	"github.com/esimov/stable-fluid/field"
	"github.com/esimov/stable-fluid/vector"
)

var (
	// ErrGridTooSmall is returned when the grid has no interior cell.
	ErrGridTooSmall = errors.New("fluid: grid must be at least 3x3")
	// ErrInvalidParameter is returned for negative or non-finite solver parameters.
	ErrInvalidParameter = errors.New("fluid: invalid solver parameter")
)

// Solver advances a stable-fluids simulation on a fixed W×H grid.
// The outermost ring of cells is never written by a step unless a
// boundary policy is installed.
type Solver struct {
	width, height int
	dt            float64
	viscosity     float64
	opts          Options

	velocity *field.Field[vector.Vec2]
	density  *field.Field[vector.Vec3]
	pressure *field.Field[vector.Scalar]

	vorticity *field.Field[vector.Scalar]

	velocityBack *field.Field[vector.Vec2]
	densityBack  *field.Field[vector.Vec3]
	compression  *field.Field[vector.Scalar]

	time  float64
	steps int
}

// New creates a solver with DefaultOptions.
func New(width, height int, dt, viscosity float64) (*Solver, error) {
	return NewWithOptions(width, height, dt, viscosity, DefaultOptions())
}

// NewWithOptions creates a solver with every field zero initialised.
func NewWithOptions(width, height int, dt, viscosity float64, opts Options) (*Solver, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, width, height)
	}
	if !finite(dt) || dt < 0 {
		return nil, fmt.Errorf("%w: delta time %v", ErrInvalidParameter, dt)
	}
	if !finite(viscosity) || viscosity < 0 {
		return nil, fmt.Errorf("%w: viscosity %v", ErrInvalidParameter, viscosity)
	}
	if opts.DiffusionIterations < 0 || opts.PressureIterations < 0 {
		return nil, fmt.Errorf("%w: negative iteration count", ErrInvalidParameter)
	}

	fs := &Solver{
		width:     width,
		height:    height,
		dt:        dt,
		viscosity: viscosity,
		opts:      opts,
	}
	fs.velocity = field.New(width, height, vector.Vec2{})
	fs.density = field.New(width, height, vector.Vec3{})
	fs.pressure = field.New[vector.Scalar](width, height, 0)
	fs.vorticity = field.New[vector.Scalar](width, height, 0)

	fs.velocityBack = field.New(width, height, vector.Vec2{})
	fs.densityBack = field.New(width, height, vector.Vec3{})
	fs.compression = field.New[vector.Scalar](width, height, 0)

	return fs, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (fs *Solver) Width() int { return fs.width }
func (fs *Solver) Height() int { return fs.height }
func (fs *Solver) DeltaTime() float64 { return fs.dt }
func (fs *Solver) Viscosity() float64 { return fs.viscosity }
func (fs *Solver) Options() Options { return fs.opts }
func (fs *Solver) Time() float64 { return fs.time }
func (fs *Solver) Steps() int { return fs.steps }

// Velocity returns the live velocity field. Update swaps the underlying
// buffers, so the result must be fetched again after every step.
func (fs *Solver) Velocity() *field.Field[vector.Vec2] { return fs.velocity }

// Density returns the live dye field.
func (fs *Solver) Density() *field.Field[vector.Vec3] { return fs.density }

// Pressure returns the pressure solved by the last projection.
func (fs *Solver) Pressure() *field.Field[vector.Scalar] { return fs.pressure }

// Vorticity returns the curl computed by the last step. It stays zero unless
// Options.Vorticity is set.
func (fs *Solver) Vorticity() *field.Field[vector.Scalar] { return fs.vorticity }

// InsertForce stages a force at (x, y) for the next Update. Coordinates
// outside the interior are ignored.
func (fs *Solver) InsertForce(x, y int, fx, fy float64) {
	if !fs.velocityBack.InInterior(x, y) {
		return
	}
	f := vector.V2(fx, fy)
	if fs.opts.AccumulateInjections {
		f = f.Add(fs.velocityBack.At(x, y))
	}
	fs.velocityBack.Set(x, y, f)
}

// InsertDensity stages dye of colour (r, g, b) at (x, y) for the next Update.
// Coordinates outside the interior are ignored.
func (fs *Solver) InsertDensity(x, y int, r, g, b float64) {
	if !fs.densityBack.InInterior(x, y) {
		return
	}
	d := vector.V3(r, g, b)
	if fs.opts.AccumulateInjections {
		d = d.Add(fs.densityBack.At(x, y))
	}
	fs.densityBack.Set(x, y, d)
}

// Update advances the simulation by one time step.
func (fs *Solver) Update() {
	fs.addExternal()

	fs.swapFields()
	diffuse(fs.density, fs.densityBack, fs.viscosity, fs.dt, fs.opts.DiffusionIterations)
	diffuse(fs.velocity, fs.velocityBack, fs.viscosity, fs.dt, fs.opts.DiffusionIterations)
	fs.setBoundary(StageDiffuse)
	fs.project()

	fs.swapFields()
	advect(fs, fs.velocityBack, fs.densityBack, fs.density)
	advect(fs, fs.velocityBack, fs.velocityBack, fs.velocity)
	fs.setBoundary(StageAdvect)
	fs.project()

	if fs.opts.Vorticity {
		fs.solveVorticity()
	}

	// Injections only live for a single step.
	fs.velocityBack.Fill(vector.Vec2{})
	fs.densityBack.Fill(vector.Vec3{})
	fs.compression.Fill(0)

	fs.time += fs.dt
	fs.steps++
}

// ResetVelocity zeroes the velocity and pressure fields.
func (fs *Solver) ResetVelocity() {
	fs.velocity.Fill(vector.Vec2{})
	fs.velocityBack.Fill(vector.Vec2{})
	fs.pressure.Fill(0)
	fs.vorticity.Fill(0)
}

// ResetDensity removes all dye.
func (fs *Solver) ResetDensity() {
	fs.density.Fill(vector.Vec3{})
	fs.densityBack.Fill(vector.Vec3{})
}

func (fs *Solver) addExternal() {
	fs.forEachColumn(func(i int) {
		vel, velBack := fs.velocity.Row(i), fs.velocityBack.Row(i)
		den, denBack := fs.density.Row(i), fs.densityBack.Row(i)
		for j := 1; j < fs.height-1; j++ {
			vel[j] = vel[j].Add(velBack[j])
			den[j] = den[j].Add(denBack[j])
		}
	})
}

func (fs *Solver) swapFields() {
	fs.velocity, fs.velocityBack = fs.velocityBack, fs.velocity
	fs.density, fs.densityBack = fs.densityBack, fs.density
}

func (fs *Solver) setBoundary(stage Stage) {
	if fs.opts.Boundary != nil {
		fs.opts.Boundary(stage, fs.velocity, fs.density)
	}
}
