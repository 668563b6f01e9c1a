package renderer

import (
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snakevo/geom"
)

// Particle is one fading dot of an eat burst.
type Particle struct {
	Pos     geom.Vec2
	Vel     geom.Vec2
	Size    float64
	Life    int
	MaxLife int
}

// ParticleRenderer spawns and draws short bursts where food was eaten.
type ParticleRenderer struct {
	particles []Particle
	rng       *rand.Rand
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(seed int64) *ParticleRenderer {
	return &ParticleRenderer{rng: rand.New(rand.NewSource(seed))}
}

// Burst spawns n particles at p.
func (r *ParticleRenderer) Burst(p geom.Vec2, size float64, n int) {
	for i := 0; i < n; i++ {
		speed := 0.2 + r.rng.Float64()*0.6
		life := 20 + r.rng.Intn(20)
		r.particles = append(r.particles, Particle{
			Pos:     p,
			Vel:     geom.Vec2{}.Step(r.rng.Float64()*geom.TwoPi, speed),
			Size:    size * (0.3 + r.rng.Float64()*0.4),
			Life:    life,
			MaxLife: life,
		})
	}
}

// Update advances every particle one frame and drops the expired ones.
func (r *ParticleRenderer) Update() {
	live := r.particles[:0]
	for _, p := range r.particles {
		p.Life--
		if p.Life <= 0 {
			continue
		}
		p.Pos = p.Pos.Add(p.Vel)
		live = append(live, p)
	}
	r.particles = live
}

// Len returns the number of live particles.
func (r *ParticleRenderer) Len() int { return len(r.particles) }

// Reset drops every particle.
func (r *ParticleRenderer) Reset() { r.particles = r.particles[:0] }

// Draw renders all particles through the board's camera.
func (r *ParticleRenderer) Draw(b *Board) {
	for i := range r.particles {
		p := &r.particles[i]

		lifeRatio := float32(p.Life) / float32(p.MaxLife)
		color := rl.Color{R: 255, G: 230, B: 80, A: uint8(lifeRatio * 200)}

		size := float32(b.cam.Scale(p.Size)) * lifeRatio
		if size < 0.5 {
			size = 0.5
		}
		sx, sy := b.cam.WorldToScreen(p.Pos)
		rl.DrawCircleV(rl.Vector2{X: float32(sx), Y: float32(sy)}, size, color)
	}
}
