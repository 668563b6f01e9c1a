// Package evolve runs the genetic algorithm: it evaluates a population of
// genomes in parallel episodes, then selects, crosses and mutates them into
// the next generation.
package evolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/snakevo/genome"
)

// State is the engine's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateEvaluating
	StateSelecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateSelecting:
		return "selecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config controls population size, breeding and stop conditions.
type Config struct {
	PopulationSize int `yaml:"population_size"`
	Elite          int `yaml:"elite"`
	Random         int `yaml:"random"`

	// Zero means no limit. With both zero the run ends only on cancellation.
	Generations int           `yaml:"generations"`
	MaxDuration time.Duration `yaml:"max_duration"`

	Seed        int64      `yaml:"seed"`
	EpisodeSeed SeedPolicy `yaml:"episode_seed"`
	// Workers bounds concurrent episodes; zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	Pool      PoolConfig      `yaml:"pool"`
	Weighting WeightingConfig `yaml:"weighting"`
}

// DefaultConfig is the stock evolution run: 1000 genomes, power-weighted
// selection, a finite generation count.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 1000,
		Elite:          0,
		Random:         20,
		Generations:    100,
		Seed:           98,
		EpisodeSeed:    SeedFixed,
		Pool:           PoolConfig{Top: 15, Mid: 2, Random: 2, MidPolicy: MidMiddle},
		Weighting:      WeightingConfig{Kind: WeightPower, Power: 1.4},
	}
}

// Validate reports settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.PopulationSize < 2 {
		errs = append(errs, fmt.Errorf("population_size must be >= 2, got %d", c.PopulationSize))
	}
	if c.Elite < 0 || c.Random < 0 {
		errs = append(errs, errors.New("elite and random must be >= 0"))
	}
	if c.Elite+c.Random > c.PopulationSize {
		errs = append(errs, fmt.Errorf("elite (%d) + random (%d) exceeds population_size (%d)", c.Elite, c.Random, c.PopulationSize))
	}
	if c.Generations < 0 || c.MaxDuration < 0 {
		errs = append(errs, errors.New("generations and max_duration must be >= 0"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	switch c.EpisodeSeed {
	case SeedFixed, SeedPerGenome:
	default:
		errs = append(errs, fmt.Errorf("unknown episode_seed %q", c.EpisodeSeed))
	}
	if c.Pool.Top < 0 || c.Pool.Mid < 0 || c.Pool.Random < 0 {
		errs = append(errs, errors.New("pool bands must be >= 0"))
	}
	offspring := c.PopulationSize - c.Elite - c.Random
	if offspring > 0 && c.Pool.Top+c.Pool.Mid+c.Pool.Random < 2 {
		errs = append(errs, errors.New("selection pool must hold at least 2 members"))
	}
	switch c.Pool.MidPolicy {
	case MidMiddle, MidBottom:
	default:
		errs = append(errs, fmt.Errorf("unknown mid_policy %q", c.Pool.MidPolicy))
	}
	switch c.Weighting.Kind {
	case WeightPower:
		if c.Weighting.Power <= 0 {
			errs = append(errs, fmt.Errorf("weighting power must be positive, got %v", c.Weighting.Power))
		}
	case WeightRank:
	default:
		errs = append(errs, fmt.Errorf("unknown weighting %q", c.Weighting.Kind))
	}
	return errors.Join(errs...)
}

// Sink receives every evaluated generation, for example to persist it. It
// runs concurrently with breeding and must not modify pop.
type Sink interface {
	RecordGeneration(ctx context.Context, stats GenerationStats, pop Population) error
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the Prometheus instruments. The default is an
// unregistered set.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSink adds a generation sink.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

// Engine owns the population across generations.
type Engine struct {
	cfg     Config
	schema  genome.Schema
	eval    Evaluator
	log     *slog.Logger
	metrics *Metrics
	sinks   []Sink

	mu         sync.RWMutex
	state      State
	current    Population
	generation int
	history    []GenerationStats
}

// New validates the configuration and schema and builds an idle engine.
func New(cfg Config, schema genome.Schema, eval Evaluator, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genome schema: %w", err)
	}
	if eval == nil {
		return nil, errors.New("evolve: nil evaluator")
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	e := &Engine{
		cfg:    cfg,
		schema: schema,
		eval:   eval,
		log:    slog.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Current returns a copy of the last fully evaluated population, best first,
// or nil before the first generation completes. Safe to call at any time,
// including from another goroutine while Run is in progress.
func (e *Engine) Current() Population {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.Clone()
}

// Generation returns how many generations have been fully evaluated.
func (e *Engine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// History returns the stats of every completed generation.
func (e *Engine) History() []GenerationStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]GenerationStats(nil), e.history...)
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run evolves until a stop condition is met and returns the last fully
// evaluated population.
//
// initial seeds the first generation; it is topped up with random genomes
// or truncated to PopulationSize. A genome that does not match the schema is
// a fatal error.
//
// When ctx is cancelled the generation in progress is discarded and Run
// returns the last completed population together with ctx.Err(). Other
// errors are *GenerationError.
func (e *Engine) Run(ctx context.Context, initial []genome.Genome) (Population, error) {
	defer e.setState(StateStopped)

	start := time.Now()
	pop, err := e.seedPopulation(initial)
	if err != nil {
		return nil, &GenerationError{Generation: 0, Err: err}
	}

	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			e.log.Info("evolution interrupted", "generation", gen)
			return e.Current(), err
		}
		if e.cfg.Generations > 0 && gen >= e.cfg.Generations {
			break
		}
		if e.cfg.MaxDuration > 0 && time.Since(start) >= e.cfg.MaxDuration {
			e.log.Info("time budget exhausted", "generation", gen, "elapsed", time.Since(start))
			break
		}

		next, err := e.step(ctx, gen, pop)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				e.log.Info("evolution interrupted", "generation", gen)
				return e.Current(), err
			}
			e.log.Error("generation failed", "generation", gen, "error", err)
			return e.Current(), &GenerationError{Generation: gen, Err: err}
		}
		pop = next
	}
	return e.Current(), nil
}

// step evaluates one generation, publishes it, and breeds the next.
func (e *Engine) step(ctx context.Context, gen int, pop Population) (Population, error) {
	started := time.Now()
	e.setState(StateEvaluating)
	e.log.Info("generation started", "generation", gen, "population", len(pop))

	failed := e.evaluate(ctx, gen, pop)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed == len(pop) {
		return nil, ErrAllFailed
	}

	pop.Sort()
	e.mu.Lock()
	e.current = pop.Clone()
	e.generation = gen + 1
	e.mu.Unlock()

	e.setState(StateSelecting)
	stats := ComputeStats(gen, pop, time.Since(started))

	// Persistence overlaps breeding but finishes before the generation is
	// reported.
	snapshot := pop.Clone()
	sinkErr := make(chan error, 1)
	go func() { sinkErr <- e.record(ctx, stats, snapshot) }()

	var next Population
	var breedErr error
	if e.cfg.Generations == 0 || gen+1 < e.cfg.Generations {
		next, breedErr = e.breed(gen, pop)
	}
	if err := <-sinkErr; err != nil {
		return nil, fmt.Errorf("recording generation: %w", err)
	}
	if breedErr != nil {
		return nil, breedErr
	}

	stats.Duration = time.Since(started)
	stats.Seconds = stats.Duration.Seconds()
	e.mu.Lock()
	e.history = append(e.history, stats)
	e.mu.Unlock()
	e.metrics.observeGeneration(stats)
	e.log.Info("generation finished", "stats", stats)
	return next, nil
}

func (e *Engine) record(ctx context.Context, stats GenerationStats, pop Population) error {
	for _, s := range e.sinks {
		if err := s.RecordGeneration(ctx, stats, pop); err != nil {
			return err
		}
	}
	return nil
}

// seedPopulation builds generation 0 from initial plus random genomes.
func (e *Engine) seedPopulation(initial []genome.Genome) (Population, error) {
	rng := rand.New(rand.NewSource(e.cfg.selectionSeed(-1)))
	pop := make(Population, 0, e.cfg.PopulationSize)
	for i, g := range initial {
		if len(pop) == e.cfg.PopulationSize {
			break
		}
		if err := e.schema.Check(g); err != nil {
			return nil, fmt.Errorf("initial genome %d: %w", i, err)
		}
		pop = append(pop, e.newIndividual(rng, OriginInitial, g.Clone()))
	}
	for len(pop) < e.cfg.PopulationSize {
		pop = append(pop, e.newIndividual(rng, OriginRandom, e.schema.Random(rng)))
	}
	return pop, nil
}

// breed assembles the next generation: elite copies, offspring, then fresh
// random genomes.
func (e *Engine) breed(gen int, pop Population) (Population, error) {
	rng := rand.New(rand.NewSource(e.cfg.selectionSeed(gen)))
	next := make(Population, 0, e.cfg.PopulationSize)

	for _, ind := range pop.Top(e.cfg.Elite) {
		next = append(next, e.newIndividual(rng, OriginElite, ind.Genome.Clone()))
	}

	offspring := e.cfg.PopulationSize - e.cfg.Elite - e.cfg.Random
	if offspring > 0 {
		selPool := buildPool(len(pop), e.cfg.Pool, rng)
		weights := poolWeights(pop, selPool, e.cfg.Weighting)
		for k := 0; k < offspring; k++ {
			a, b, err := samplePair(selPool, weights, rng)
			if err != nil {
				return nil, err
			}
			child, err := e.schema.Breed(pop[a].Genome, pop[b].Genome, rng)
			if err != nil {
				return nil, err
			}
			if err := e.schema.Check(child); err != nil {
				return nil, err
			}
			next = append(next, e.newIndividual(rng, OriginOffspring, child))
		}
		e.metrics.Offspring.Add(float64(offspring))
	}

	for len(next) < e.cfg.PopulationSize {
		next = append(next, e.newIndividual(rng, OriginRandom, e.schema.Random(rng)))
	}
	return next, nil
}

// newIndividual draws its ID from rng so runs with the same seed produce the
// same IDs.
func (e *Engine) newIndividual(rng *rand.Rand, origin Origin, g genome.Genome) Individual {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.New()
	}
	return Individual{ID: id, Origin: origin, Genome: g}
}
