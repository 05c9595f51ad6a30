package fluid

import (
	"github.com/esimov/stable-fluid/field"
	"github.com/esimov/stable-fluid/vector"
)

// Particle is a massless tracer carried by the velocity field.
type Particle struct {
	x, y   float64
	vx, vy float64
	age    float64
	dead   bool
}

// NewParticle spawns a new particle at coordinates defined by {x, y}.
func NewParticle(x, y float64) *Particle {
	return &Particle{x: x, y: y}
}

// Position returns the particle location in grid coordinates.
func (p *Particle) Position() vector.Vec2 { return vector.V2(p.x, p.y) }

// Velocity returns the flow velocity sampled at the last advection.
func (p *Particle) Velocity() vector.Vec2 { return vector.V2(p.vx, p.vy) }

// Age is the simulated time the particle has been alive.
func (p *Particle) Age() float64 { return p.age }

// Dead reports whether the particle left the grid or expired.
func (p *Particle) Dead() bool { return p.dead }

// Kill marks the particle as dead.
func (p *Particle) Kill() { p.dead = true }

// AdvectParticles moves every live particle one time step along the current
// velocity field. Particles older than maxAge (when maxAge > 0), outside the
// interior or at a non-finite position are marked dead. It returns the number
// still alive.
func (fs *Solver) AdvectParticles(particles []*Particle, maxAge float64) int {
	lo := vector.V2(1, 1)
	hi := vector.V2(float64(fs.width-2), float64(fs.height-2))

	alive := 0
	for _, p := range particles {
		if p.dead {
			continue
		}
		v := field.Bilerp(fs.velocity, p.Position().Clamp(lo, hi))
		p.vx, p.vy = v[0], v[1]
		p.x += v[0] * fs.dt
		p.y += v[1] * fs.dt
		p.age += fs.dt

		if maxAge > 0 && p.age > maxAge {
			p.dead = true
		}
		if !finite(p.x) || !finite(p.y) || p.x < lo[0] || p.x > hi[0] || p.y < lo[1] || p.y > hi[1] {
			p.dead = true
		}
		if !p.dead {
			alive++
		}
	}
	return alive
}
