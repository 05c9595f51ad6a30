// Package palette maps solver fields to colours for the hosts.
package palette

import (
	"image/color"
	"math"

	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/vector"
)

// Mode selects the field a host displays.
type Mode int

const (
	ModeDensity Mode = iota
	ModeVelocity
	ModePressure
	ModeVorticity
	numModes
)

var modeNames = [...]string{"density", "velocity", "pressure", "vorticity"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return "unknown"
	}
	return modeNames[m]
}

// Next cycles to the following mode.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return ModeDensity, false
}

// Range of pressure and vorticity mapped onto the full colour scale.
const (
	PressureMin = -0.5
	PressureMax = 0.5
)

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(1, v)) * 255)
}

// Density maps dye straight to RGB.
func Density(d vector.Vec3) color.RGBA {
	return color.RGBA{R: channel(d[0]), G: channel(d[1]), B: channel(d[2]), A: 0xff}
}

// Pressure fades red for positive pressure and blue for negative pressure.
func Pressure(p, minVal, maxVal float64) color.RGBA {
	return color.RGBA{
		R: channel(1 - math.Max(p, 0)/maxVal),
		B: channel(1 - math.Min(p, 0)/minVal),
		A: 0xff,
	}
}

// Velocity colours a cell by the direction of its flow.
func Velocity(v vector.Vec2) color.RGBA {
	n := v.Normal()
	return color.RGBA{
		R: channel((n[0] + 1) / 2),
		G: channel((n[1] + 1) / 2),
		A: 0xff,
	}
}

// Sci maps val within [minVal, maxVal] onto a blue-cyan-green-yellow-red ramp.
func Sci(val, minVal, maxVal float64) color.RGBA {
	val = math.Min(math.Max(val, minVal), maxVal-0.0001)
	d := maxVal - minVal
	if d <= 0 {
		val = 0.5
	} else {
		val = (val - minVal) / d
	}
	const m = 0.25
	num := math.Floor(val / m)
	s := (val - num*m) / m
	var r, g, b float64

	switch num {
	case 0:
		r, g, b = 0, s, 1
	case 1:
		r, g, b = 0, 1, 1-s
	case 2:
		r, g, b = s, 1, 0
	case 3:
		r, g, b = 1, 1-s, 0
	}

	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff}
}

// At returns the colour of cell (x, y) in the given mode.
func At(fs *fluid.Solver, mode Mode, x, y int) color.RGBA {
	switch mode {
	case ModeVelocity:
		return Velocity(fs.Velocity().At(x, y))
	case ModePressure:
		return Pressure(float64(fs.Pressure().At(x, y)), PressureMin, PressureMax)
	case ModeVorticity:
		return Sci(float64(fs.Vorticity().At(x, y)), PressureMin, PressureMax)
	}
	return Density(fs.Density().At(x, y))
}

// Pixels renders the whole grid into an RGBA buffer laid out row by row
// (y-major), reusing pix when it is large enough.
func Pixels(fs *fluid.Solver, mode Mode, pix []byte) []byte {
	w, h := fs.Width(), fs.Height()
	if cap(pix) < 4*w*h {
		pix = make([]byte, 4*w*h)
	}
	pix = pix[:4*w*h]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := At(fs, mode, x, y)
			i := 4 * (y*w + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return pix
}
