package fluid

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarises the live fields after a step.
type Stats struct {
	Step          int     `csv:"step"`
	Time          float64 `csv:"time"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed"`
	TotalDye      float64 `csv:"total_dye"`
	MaxDivergence float64 `csv:"max_divergence"`
	MaxVorticity  float64 `csv:"max_vorticity"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Float64("time", s.Time),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("total_dye", s.TotalDye),
		slog.Float64("max_divergence", s.MaxDivergence),
		slog.Float64("max_vorticity", s.MaxVorticity),
	)
}

// Stats measures the interior of the live fields. The divergence is the
// same central-difference estimate the pressure solve corrects.
func (fs *Solver) Stats() Stats {
	n := (fs.width - 2) * (fs.height - 2)
	speed2 := make([]float64, 0, n)
	dye := make([]float64, 0, n)
	div := make([]float64, 0, n)
	curl := make([]float64, 0, n)

	for i := 1; i < fs.width-1; i++ {
		left, col, right := fs.velocity.Row(i-1), fs.velocity.Row(i), fs.velocity.Row(i+1)
		den := fs.density.Row(i)
		vort := fs.vorticity.Row(i)
		for j := 1; j < fs.height-1; j++ {
			speed2 = append(speed2, col[j].Magnitude2())
			dye = append(dye, den[j].Sum())
			dx := right[j][0] - left[j][0]
			dy := col[j+1][1] - col[j-1][1]
			div = append(div, math.Abs((dx+dy)*0.5))
			curl = append(curl, math.Abs(float64(vort[j])))
		}
	}

	return Stats{
		Step:          fs.steps,
		Time:          fs.time,
		KineticEnergy: 0.5 * floats.Sum(speed2),
		MaxSpeed:      math.Sqrt(floats.Max(speed2)),
		TotalDye:      floats.Sum(dye),
		MaxDivergence: floats.Max(div),
		MaxVorticity:  floats.Max(curl),
	}
}
