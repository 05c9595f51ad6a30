package palette

import (
	"image/color"
	"testing"

	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/vector"
)

func TestDensityClamps(t *testing.T) {
	got := Density(vector.V3(2, 0.5, -1))
	want := color.RGBA{R: 255, G: 127, B: 0, A: 255}
	if got != want {
		t.Errorf("Density = %v, want %v", got, want)
	}
}

func TestPressureColours(t *testing.T) {
	if c := Pressure(0, -0.5, 0.5); c.R != 255 || c.B != 255 {
		t.Errorf("zero pressure = %v, want R=B=255", c)
	}
	if c := Pressure(0.5, -0.5, 0.5); c.R != 0 || c.B != 255 {
		t.Errorf("max pressure = %v", c)
	}
	if c := Pressure(-0.5, -0.5, 0.5); c.R != 255 || c.B != 0 {
		t.Errorf("min pressure = %v", c)
	}
}

func TestVelocityColour(t *testing.T) {
	if c := Velocity(vector.V2(3, 0)); c.R != 255 || c.G != 127 {
		t.Errorf("rightward velocity = %v", c)
	}
	if c := Velocity(vector.Vec2{}); c.R != 127 || c.G != 127 {
		t.Errorf("still velocity = %v", c)
	}
}

func TestSciRamp(t *testing.T) {
	tests := []struct {
		val  float64
		want color.RGBA
	}{
		{0, color.RGBA{B: 255, A: 255}},
		{-5, color.RGBA{B: 255, A: 255}},
		{0.25, color.RGBA{G: 255, B: 255, A: 255}},
		{0.5, color.RGBA{G: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := Sci(tt.val, 0, 1); got != tt.want {
			t.Errorf("Sci(%v) = %v, want %v", tt.val, got, tt.want)
		}
	}
	if got := Sci(1, 0, 1); got.R != 255 || got.B != 0 {
		t.Errorf("Sci(max) = %v, want red", got)
	}
	if got := Sci(3, 1, 1); got.G != 255 {
		t.Errorf("Sci on empty range = %v, want the middle of the ramp", got)
	}
}

func TestModes(t *testing.T) {
	if ModeVorticity.Next() != ModeDensity {
		t.Error("Next should wrap around")
	}
	m, ok := ParseMode("pressure")
	if !ok || m != ModePressure || m.String() != "pressure" {
		t.Errorf("ParseMode(pressure) = %v, %v", m, ok)
	}
	if _, ok := ParseMode("heat"); ok {
		t.Error("unknown mode parsed")
	}
	if Mode(9).String() != "unknown" {
		t.Error("out of range mode name")
	}
}

func TestPixels(t *testing.T) {
	fs, err := fluid.New(4, 3, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	fs.Density().Set(2, 1, vector.V3(1, 0, 0))

	pix := Pixels(fs, ModeDensity, nil)
	if len(pix) != 4*4*3 {
		t.Fatalf("len = %d, want 48", len(pix))
	}
	i := 4 * (1*4 + 2)
	if pix[i] != 255 || pix[i+1] != 0 || pix[i+3] != 255 {
		t.Errorf("pixel (2,1) = %v", pix[i:i+4])
	}
	again := Pixels(fs, ModePressure, pix)
	if &again[0] != &pix[0] {
		t.Error("buffer not reused")
	}
}
