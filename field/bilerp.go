package field

import (
	"math"

	"github.com/esimov/stable-fluid/vector"
)

// Bilerp samples f at the fractional position p by blending the four cells
// enclosing it. The caller keeps floor(p) and floor(p)+1 inside the grid.
func Bilerp[T vector.Quantity[T]](f *Field[T], p vector.Vec2) T {
	x1 := math.Floor(p[0])
	y1 := math.Floor(p[1])
	x2 := x1 + 1
	y2 := y1 + 1

	gx := x2 - p[0]
	gy := y2 - p[1]

	i1, i2 := int(x1), int(x2)
	j1, j2 := int(y1), int(y2)

	// On an exact integer coordinate the far cells carry zero weight and
	// may sit one past the last column or row.
	q11 := f.At(i1, j1)
	q12, q21, q22 := q11, q11, q11
	if gy != 1 {
		q12 = f.At(i1, j2)
	}
	if gx != 1 {
		q21 = f.At(i2, j1)
		if gy != 1 {
			q22 = f.At(i2, j2)
		}
	}

	fx1 := q11.Scale(gx).Add(q21.Scale(1 - gx))
	fx2 := q12.Scale(gx).Add(q22.Scale(1 - gx))
	return fx1.Scale(gy).Add(fx2.Scale(1 - gy))
}
