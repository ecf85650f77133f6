// Package particle implements the short-lived particle bursts emitted on zoom.
package particle

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/gg"
)

// Particle is one live particle in screen space.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Life    float64 // 1 at birth, removed once it reaches 0
	MaxLife float64 // seconds
	Radius  float64
	Color   gg.RGBA
}

// Alpha is the draw alpha for the particle's remaining life.
func (p *Particle) Alpha() float64 {
	return math.Max(0, p.Life) * 0.7
}

// ColorFunc picks the color of a new particle.
type ColorFunc func() gg.RGBA

// Source is the random source used by a Pool. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Pool owns the live particles of one engine.
type Pool struct {
	items []Particle
	rng   Source

	radiusBase, radiusSpread float64
}

// NewPool creates a pool whose particles get radius base + rand*spread.
// A nil rng uses the global math/rand/v2 source.
func NewPool(rng Source, radiusBase, radiusSpread float64) *Pool {
	if rng == nil {
		rng = globalSource{}
	}
	return &Pool{rng: rng, radiusBase: radiusBase, radiusSpread: radiusSpread}
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Rand exposes the pool's random source so callers can draw from the
// same stream (for example to pick particle colors).
func (p *Pool) Rand() Source { return p.rng }

// Emit spawns n particles at (x, y) moving outward in random directions,
// then trims the pool to its newest floor(200*density) entries.
func (p *Pool) Emit(n int, x, y float64, density float64, color ColorFunc) {
	for i := 0; i < n; i++ {
		angle := p.rng.Float64() * 2 * math.Pi
		speed := 20 + p.rng.Float64()*40
		var c gg.RGBA
		if color != nil {
			c = color()
		}
		p.items = append(p.items, Particle{
			X:       x,
			Y:       y,
			VX:      math.Cos(angle) * speed,
			VY:      math.Sin(angle) * speed,
			Life:    1,
			MaxLife: 1 + p.rng.Float64()*0.5,
			Radius:  p.radiusBase + p.rng.Float64()*p.radiusSpread,
			Color:   c,
		})
	}
	p.trim(Capacity(density))
}

// Capacity returns the pool bound for a particle density.
func Capacity(density float64) int {
	if density <= 0 {
		return 0
	}
	return int(math.Floor(200 * density))
}

func (p *Pool) trim(limit int) {
	if len(p.items) <= limit {
		return
	}
	drop := len(p.items) - limit
	n := copy(p.items, p.items[drop:])
	clear(p.items[n:])
	p.items = p.items[:n]
}

// Update advances every particle by dt seconds and drops the expired ones.
func (p *Pool) Update(dt float64) {
	live := p.items[:0]
	for _, it := range p.items {
		it.X += it.VX * dt
		it.Y += it.VY * dt
		it.Life -= dt / it.MaxLife
		if it.Life > 0 {
			live = append(live, it)
		}
	}
	clear(p.items[len(live):])
	p.items = live
}

// Particles returns the live particles. The slice is only valid until the
// next call to Emit or Update.
func (p *Pool) Particles() []Particle { return p.items }

// Len returns the number of live particles.
func (p *Pool) Len() int { return len(p.items) }

// Reset drops every particle.
func (p *Pool) Reset() {
	clear(p.items)
	p.items = p.items[:0]
}
