// Package field implements dense fixed-size 2-D grids of fluid quantities.
package field

import "fmt"

// Field is a W×H grid of values of type T. Cells are stored column by column,
// so the cell (x, y) lives at x*H+y and Row(x) is a contiguous slice.
type Field[T any] struct {
	width, height int
	data          []T
}

// New allocates a w×h field with every cell set to def.
func New[T any](w, h int, def T) *Field[T] {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("invalid field size: %dx%d", w, h))
	}
	f := &Field[T]{
		width:  w,
		height: h,
		data:   make([]T, w*h),
	}
	f.Fill(def)
	return f
}

func (f *Field[T]) Width() int { return f.width }
func (f *Field[T]) Height() int { return f.height }

// Fill overwrites every cell with v.
func (f *Field[T]) Fill(v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Row returns the H cells sharing the x coordinate. Writes through the
// returned slice modify the field, so f.Row(x)[y] addresses a single cell.
func (f *Field[T]) Row(x int) []T {
	if x < 0 || x >= f.width {
		panic(fmt.Sprintf("invalid x-index: %d", x))
	}
	return f.data[x*f.height : (x+1)*f.height : (x+1)*f.height]
}

// At returns the value stored at (x, y).
func (f *Field[T]) At(x, y int) T {
	return f.data[f.index(x, y)]
}

// Set stores v at (x, y).
func (f *Field[T]) Set(x, y int, v T) {
	f.data[f.index(x, y)] = v
}

// Values exposes the backing storage in x-major order.
func (f *Field[T]) Values() []T { return f.data }

// InInterior reports whether (x, y) lies strictly inside the outer ring.
func (f *Field[T]) InInterior(x, y int) bool {
	return x >= 1 && x <= f.width-2 && y >= 1 && y <= f.height-2
}

func (f *Field[T]) index(x, y int) int {
	if x < 0 || x >= f.width {
		panic(fmt.Sprintf("invalid x-index: %d", x))
	}
	if y < 0 || y >= f.height {
		panic(fmt.Sprintf("invalid y-index: %d", y))
	}
	return x*f.height + y
}
