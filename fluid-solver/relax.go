package fluid

import (
	"github.com/esimov/stable-fluid/field"
	"github.com/esimov/stable-fluid/vector"
)

// relax runs n in-place passes of
//
//	x[i][j] = (alpha*(x[i-1][j]+x[i+1][j]+x[i][j-1]+x[i][j+1]) + beta*b[i][j]) / gamma
//
// over the interior cells. It backs both the implicit diffusion and the
// pressure Poisson solve. There is no convergence check.
func relax[T vector.Quantity[T]](x, b *field.Field[T], alpha, beta, gamma float64, n int) {
	w, h := x.Width(), x.Height()
	for k := 0; k < n; k++ {
		for i := 1; i < w-1; i++ {
			left, col, right := x.Row(i-1), x.Row(i), x.Row(i+1)
			src := b.Row(i)
			for j := 1; j < h-1; j++ {
				sum := left[j].Add(right[j]).Add(col[j-1]).Add(col[j+1])
				col[j] = sum.Scale(alpha).Add(src[j].Scale(beta)).DivScalar(gamma)
			}
		}
	}
}

// diffuse solves x = x0 + a*Laplacian(x) with a = viscosity*dt.
func diffuse[T vector.Quantity[T]](x, x0 *field.Field[T], viscosity, dt float64, iterations int) {
	a := viscosity * dt
	relax(x, x0, a, 1, 1+4*a, iterations)
}
