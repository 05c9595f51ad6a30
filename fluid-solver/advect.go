package fluid

import (
	"github.com/esimov/stable-fluid/field"
	"github.com/esimov/stable-fluid/vector"
)

// advect traces every interior cell back along vel for one time step and
// stores the value of src found there into dst.
func advect[T vector.Quantity[T]](fs *Solver, vel *field.Field[vector.Vec2], src, dst *field.Field[T]) {
	lo := vector.V2(1, 1)
	hi := vector.V2(float64(fs.width-2), float64(fs.height-2))
	dt := fs.dt

	fs.forEachColumn(func(i int) {
		v := vel.Row(i)
		out := dst.Row(i)
		for j := 1; j < fs.height-1; j++ {
			pos := vector.V2(float64(i), float64(j))
			prev := pos.Sub(v[j].Scale(dt)).Clamp(lo, hi)
			out[j] = field.Bilerp(src, prev)
		}
	})
}
