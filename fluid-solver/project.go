package fluid

import "github.com/esimov/stable-fluid/vector"

// project removes the divergent part of the velocity field.
func (fs *Solver) project() {
	fs.solvePressure()
	fs.subtractPressureGradient()
	fs.setBoundary(StageProject)
}

// solvePressure estimates the divergence of the velocity into the
// compression field and relaxes the pressure Poisson equation against it.
func (fs *Solver) solvePressure() {
	fs.forEachColumn(func(i int) {
		left, col, right := fs.velocity.Row(i-1), fs.velocity.Row(i), fs.velocity.Row(i+1)
		div := fs.compression.Row(i)
		p := fs.pressure.Row(i)
		for j := 1; j < fs.height-1; j++ {
			dx := right[j][0] - left[j][0]
			dy := col[j+1][1] - col[j-1][1]
			div[j] = vector.Scalar((dx + dy) * 0.5)
			p[j] = 0
		}
	})

	relax(fs.pressure, fs.compression, 1, -1, 4, fs.opts.PressureIterations)
}

func (fs *Solver) subtractPressureGradient() {
	fs.forEachColumn(func(i int) {
		left, p, right := fs.pressure.Row(i-1), fs.pressure.Row(i), fs.pressure.Row(i+1)
		vel := fs.velocity.Row(i)
		for j := 1; j < fs.height-1; j++ {
			grad := vector.V2(
				float64(right[j]-left[j]),
				float64(p[j+1]-p[j-1]),
			).Scale(0.5)
			vel[j] = vel[j].Sub(grad)
		}
	})
}

// solveVorticity stores the discrete curl of the velocity field.
func (fs *Solver) solveVorticity() {
	fs.forEachColumn(func(i int) {
		left, col, right := fs.velocity.Row(i-1), fs.velocity.Row(i), fs.velocity.Row(i+1)
		curl := fs.vorticity.Row(i)
		for j := 1; j < fs.height-1; j++ {
			dvy := col[j+1][1] - col[j-1][1]
			dvx := right[j][0] - left[j][0]
			curl[j] = vector.Scalar(dvy - dvx)
		}
	})
}
