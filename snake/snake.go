// Package snake simulates a single snake: its body chain, heading, senses and
// the brain that steers it.
package snake

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/snakevo/components"
	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/geom"
	"github.com/pthm-cable/snakevo/neural"
)

// Config holds the physical constants of a snake.
type Config struct {
	Speed     float64 `yaml:"speed"`
	PieceSize float64 `yaml:"piece_size"`
	Heading   float64 `yaml:"heading"`
}

// DefaultConfig is the stock board setup.
func DefaultConfig() Config {
	return Config{Speed: 0.5, PieceSize: 5, Heading: 1.5}
}

// Decisions produced by the brain. Anything outside 0..3 keeps the heading.
const (
	TurnNegFirst  = iota // -a1
	TurnNegSecond        // -a2
	TurnPosFirst         // +a1
	TurnPosSecond        // +a2
	KeepGoing
)

// Snake is alive until it bites its own tail or is built from a genome with a
// turn angle wider than π.
type Snake struct {
	direction float64
	speed     float64
	size      float64
	body      []BodyPiece
	turns     [2]float64
	eyes      []float64
	brain     *neural.Brain
	alive     bool
}

// New builds a snake at spawn from g. Empty weight groups get a random brain
// drawn from rng. The error is only for genomes that cannot be read at all;
// an oversized turn angle yields a snake that is already dead.
func New(cfg Config, spawn geom.Vec2, g genome.Genome, rng *rand.Rand) (*Snake, error) {
	angles := g[genome.GroupEyeAngles]
	if len(angles) != 2 {
		return nil, fmt.Errorf("%w: %s has %d values, want 2", genome.ErrSchemaMismatch, genome.GroupEyeAngles, len(angles))
	}
	brain, err := neural.NewBrain(g[genome.GroupW1], g[genome.GroupW2], rng)
	if err != nil {
		return nil, err
	}

	a1, a2 := angles[0], angles[1]
	return &Snake{
		direction: geom.NormalizeHeading(cfg.Heading),
		speed:     cfg.Speed,
		size:      cfg.PieceSize,
		body:      []BodyPiece{newBodyPiece(spawn, cfg.PieceSize, cfg.Speed)},
		turns:     [2]float64{a1, a2},
		eyes:      neural.EyeOffsets(a1, a2),
		brain:     brain,
		alive:     a1 <= math.Pi && a2 <= math.Pi,
	}, nil
}

func (s *Snake) Alive() bool { return s.alive }
func (s *Snake) Direction() float64 { return s.direction }
func (s *Snake) Len() int { return len(s.body) }
func (s *Snake) Head() BodyPiece { return s.body[0] }
func (s *Snake) TurnAngles() [2]float64 { return s.turns }
func (s *Snake) Eyes() []float64 { return append([]float64(nil), s.eyes...) }
func (s *Snake) Brain() *neural.Brain { return s.brain }

// Body returns a copy of the pieces, head first.
func (s *Snake) Body() []BodyPiece {
	return append([]BodyPiece(nil), s.body...)
}

// Renderables exposes every body piece for drawing.
func (s *Snake) Renderables() []components.Renderable {
	out := make([]components.Renderable, len(s.body))
	for i, p := range s.body {
		out[i] = p
	}
	return out
}

// Update runs one tick: look, decide, turn, move, then check for a bite.
// Dead snakes do nothing.
func (s *Snake) Update(others []neural.Target) {
	if !s.alive {
		return
	}
	obs := s.Look(others)
	s.Act(s.brain.Decide(obs.Flatten()))
	s.Move()
	if s.TouchingTail() {
		s.alive = false
	}
}

// Look runs the eyes over others followed by the snake's own body, skipping
// the head and the piece right behind it.
func (s *Snake) Look(others []neural.Target) neural.Observation {
	targets := make([]neural.Target, 0, len(others)+len(s.body))
	targets = append(targets, others...)
	for _, p := range s.tail() {
		targets = append(targets, neural.Target{Pos: p.pos, Size: p.size, Encoding: p.Encoding()})
	}
	return neural.Look(s.body[0].pos, s.direction, s.eyes, targets)
}

// Act applies a brain decision.
func (s *Snake) Act(decision int) {
	switch decision {
	case TurnNegFirst:
		s.Turn(-s.turns[0])
	case TurnNegSecond:
		s.Turn(-s.turns[1])
	case TurnPosFirst:
		s.Turn(s.turns[0])
	case TurnPosSecond:
		s.Turn(s.turns[1])
	}
}

// Turn rotates the heading by angle, keeping it in [0, 2π).
func (s *Snake) Turn(angle float64) {
	s.direction = geom.NormalizeHeading(s.direction + angle)
}

// Move advances the head by one speed step and pulls every other piece to
// the oldest position its predecessor still remembers.
func (s *Snake) Move() {
	s.body[0].moveTo(s.body[0].pos.Step(s.direction, s.speed))
	for i := 1; i < len(s.body); i++ {
		s.body[i].moveTo(s.body[i-1].Oldest())
	}
}

// Grow appends a piece at the tail's oldest remembered position.
func (s *Snake) Grow() {
	last := s.body[len(s.body)-1]
	s.body = append(s.body, newBodyPiece(last.Oldest(), s.size, s.speed))
}

// TouchingTail reports whether the head touches any piece past the neck.
func (s *Snake) TouchingTail() bool {
	head := s.body[0]
	for _, p := range s.tail() {
		if geom.Touching(head, p) {
			return true
		}
	}
	return false
}

func (s *Snake) tail() []BodyPiece {
	if len(s.body) <= 2 {
		return nil
	}
	return s.body[2:]
}
