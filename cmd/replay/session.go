package main

import (
	"fmt"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/ui"
	"github.com/pthm-cable/snakevo/world"
)

const maxSpeed = 32

// session is the replay state, independent of the window.
type session struct {
	cfg     *config.Config
	fitness world.FitnessFunc
	genomes []genome.Genome
	seed    int64

	rank   int
	world  *world.World
	speed  int
	paused bool
}

func newSession(cfg *config.Config, genomes []genome.Genome, seed int64) (*session, error) {
	if len(genomes) == 0 {
		return nil, fmt.Errorf("no genomes to replay")
	}
	fitness, err := cfg.FitnessFunc()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, fitness: fitness, genomes: genomes, seed: seed, speed: 1}
	return s, nil
}

// load starts a fresh episode for the genome at rank, wrapping around.
func (s *session) load(rank int) error {
	n := len(s.genomes)
	rank = ((rank % n) + n) % n
	w, err := world.New(s.cfg.World, s.cfg.Snake, s.genomes[rank], s.seed)
	if err != nil {
		return fmt.Errorf("genome %d: %w", rank, err)
	}
	s.rank = rank
	s.world = w
	return nil
}

// apply handles one UI action.
func (s *session) apply(a ui.Action) error {
	switch a {
	case ui.ActionTogglePause:
		s.paused = !s.paused
	case ui.ActionRestart:
		return s.load(s.rank)
	case ui.ActionNext:
		return s.load(s.rank + 1)
	case ui.ActionPrev:
		return s.load(s.rank - 1)
	case ui.ActionFaster:
		s.speed = min(s.speed*2, maxSpeed)
	case ui.ActionSlower:
		s.speed = max(s.speed/2, 1)
	}
	return nil
}

// advance runs up to speed ticks and returns how many pieces the snake grew.
func (s *session) advance() int {
	if s.paused {
		return 0
	}
	before := s.world.Snake().Len()
	for i := 0; i < s.speed && s.world.Step(); i++ {
	}
	return s.world.Snake().Len() - before
}

func (s *session) score() float64 {
	return s.fitness(s.world.Result())
}
