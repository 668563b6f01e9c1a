package evolve

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/snake"
	"github.com/pthm-cable/snakevo/world"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.Random = 2
	cfg.Generations = 1
	cfg.Workers = 4
	cfg.Pool = PoolConfig{Top: 4, Mid: 2, Random: 2, MidPolicy: MidMiddle}
	return cfg
}

// angleSum scores a genome by its eye angles; cheap and deterministic.
func angleSum(g genome.Genome, _ int64) (float64, error) {
	a := g[genome.GroupEyeAngles]
	return a[0] + a[1], nil
}

func TestRunReproducible(t *testing.T) {
	for _, policy := range []SeedPolicy{SeedFixed, SeedPerGenome} {
		t.Run(string(policy), func(t *testing.T) {
			cfg := smallConfig()
			cfg.EpisodeSeed = policy
			eval := EpisodeEvaluator(world.DefaultConfig(), snake.DefaultConfig(), world.LengthTime)

			run := func() Population {
				e, err := New(cfg, genome.DefaultSchema(), eval, WithLogger(quiet))
				if err != nil {
					t.Fatal(err)
				}
				pop, err := e.Run(context.Background(), nil)
				if err != nil {
					t.Fatal(err)
				}
				return pop
			}

			a, b := run(), run()
			if len(a) != cfg.PopulationSize || len(b) != cfg.PopulationSize {
				t.Fatalf("population sizes %d and %d, want %d", len(a), len(b), cfg.PopulationSize)
			}
			for i := range a {
				if a[i].ID != b[i].ID || a[i].Fitness != b[i].Fitness || !a[i].Genome.Equal(b[i].Genome) {
					t.Fatalf("rank %d differs: %v/%v vs %v/%v", i, a[i].ID, a[i].Fitness, b[i].ID, b[i].Fitness)
				}
			}
			for i := 1; i < len(a); i++ {
				if a[i].Fitness > a[i-1].Fitness {
					t.Fatalf("population not sorted at %d", i)
				}
			}
		})
	}
}

func TestRunMultipleGenerations(t *testing.T) {
	cfg := smallConfig()
	cfg.Generations = 5
	cfg.Elite = 1

	e, err := New(cfg, genome.DefaultSchema(), angleSum, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	pop, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.State() != StateStopped {
		t.Errorf("State = %v, want stopped", e.State())
	}
	if e.Generation() != 5 {
		t.Errorf("Generation = %d, want 5", e.Generation())
	}
	hist := e.History()
	if len(hist) != 5 {
		t.Fatalf("history has %d entries, want 5", len(hist))
	}
	// The elite copy carries the best genome forward and angleSum is
	// deterministic, so the best score never drops.
	for i := 1; i < len(hist); i++ {
		if hist[i].Best < hist[i-1].Best {
			t.Errorf("best fell from %v to %v at generation %d", hist[i-1].Best, hist[i].Best, i)
		}
	}
	if pop.Best().Fitness != hist[4].Best {
		t.Errorf("returned best %v, history says %v", pop.Best().Fitness, hist[4].Best)
	}
}

func TestFailureIsolation(t *testing.T) {
	cfg := smallConfig()
	metrics := NewMetrics(nil)

	calls := 0
	var mu sync.Mutex
	eval := func(g genome.Genome, seed int64) (float64, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		a := g[genome.GroupEyeAngles]
		switch {
		case a[0] < 1:
			panic("boom")
		case a[0] < 2:
			return 0, errors.New("episode failed")
		}
		return a[0], nil
	}

	schema := genome.DefaultSchema()
	rng := rand.New(rand.NewSource(1))
	initial := make([]genome.Genome, cfg.PopulationSize)
	for i := range initial {
		initial[i] = schema.Random(rng)
		initial[i][genome.GroupEyeAngles][0] = float64(i) * 0.5
	}

	e, err := New(cfg, schema, eval, WithLogger(quiet), WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}
	pop, err := e.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != cfg.PopulationSize {
		t.Errorf("evaluator called %d times, want %d", calls, cfg.PopulationSize)
	}

	failed := 0
	for _, ind := range pop {
		if ind.Failed {
			failed++
			if ind.Fitness != FailedFitness {
				t.Errorf("failed individual scored %v", ind.Fitness)
			}
		}
	}
	// Angles 0, 0.5 panic; 1, 1.5 error.
	if failed != 4 {
		t.Errorf("%d failures, want 4", failed)
	}
	if got := testutil.ToFloat64(metrics.Failures); got != 4 {
		t.Errorf("failure counter = %v, want 4", got)
	}
	if got := testutil.ToFloat64(metrics.Evaluations); got != float64(cfg.PopulationSize) {
		t.Errorf("evaluation counter = %v, want %d", got, cfg.PopulationSize)
	}
	if pop.Best().Failed || pop[len(pop)-1].Fitness != FailedFitness {
		t.Error("failed genomes should sort last")
	}
}

func TestAllFailedIsFatal(t *testing.T) {
	eval := func(genome.Genome, int64) (float64, error) { return 0, errors.New("misconfigured") }
	e, err := New(smallConfig(), genome.DefaultSchema(), eval, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Run(context.Background(), nil)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
	if genErr.Generation != 0 || !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want generation 0 wrapping ErrAllFailed", err)
	}
}

func TestInitialSchemaMismatchIsFatal(t *testing.T) {
	e, err := New(smallConfig(), genome.DefaultSchema(), angleSum, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	bad := genome.Genome{genome.GroupEyeAngles: {1, 2}}
	_, err = e.Run(context.Background(), []genome.Genome{bad})
	if !errors.Is(err, genome.ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

type cancelSink struct {
	cancel context.CancelFunc
	seen   []int
}

func (s *cancelSink) RecordGeneration(_ context.Context, stats GenerationStats, pop Population) error {
	s.seen = append(s.seen, stats.Generation)
	if stats.Generation == 1 {
		s.cancel()
	}
	return nil
}

func TestInterruptReturnsLastCompleted(t *testing.T) {
	cfg := smallConfig()
	cfg.Generations = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancelSink{cancel: cancel}

	e, err := New(cfg, genome.DefaultSchema(), angleSum, WithLogger(quiet), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}
	pop, err := e.Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(pop) != cfg.PopulationSize {
		t.Fatalf("got %d individuals, want the completed generation", len(pop))
	}
	if e.Generation() != 2 {
		t.Errorf("Generation = %d, want 2", e.Generation())
	}
	if len(sink.seen) != 2 {
		t.Errorf("sink saw generations %v, want [0 1]", sink.seen)
	}
}

type failingSink struct{}

func (failingSink) RecordGeneration(context.Context, GenerationStats, Population) error {
	return errors.New("disk full")
}

func TestSinkErrorIsFatal(t *testing.T) {
	e, err := New(smallConfig(), genome.DefaultSchema(), angleSum, WithLogger(quiet), WithSink(failingSink{}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Run(context.Background(), nil)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
}

func TestBreedAssembly(t *testing.T) {
	cfg := smallConfig()
	cfg.Elite = 3
	cfg.Random = 2
	e, err := New(cfg, genome.DefaultSchema(), angleSum, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	pop, err := e.seedPopulation(nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range pop {
		pop[i].Fitness = float64(len(pop) - i)
	}

	next, err := e.breed(0, pop)
	if err != nil {
		t.Fatal(err)
	}
	if len(next) != cfg.PopulationSize {
		t.Fatalf("next generation has %d individuals, want %d", len(next), cfg.PopulationSize)
	}
	counts := map[Origin]int{}
	for _, ind := range next {
		counts[ind.Origin]++
		if err := genome.DefaultSchema().Check(ind.Genome); err != nil {
			t.Errorf("child does not match schema: %v", err)
		}
	}
	if counts[OriginElite] != 3 || counts[OriginRandom] != 2 || counts[OriginOffspring] != 5 {
		t.Errorf("origins = %v, want 3 elite, 5 offspring, 2 random", counts)
	}
	for i := 0; i < 3; i++ {
		if !next[i].Genome.Equal(pop[i].Genome) {
			t.Errorf("elite %d is not an unmutated copy", i)
		}
	}
	if got := testutil.ToFloat64(e.metrics.Offspring); got != 5 {
		t.Errorf("offspring counter = %v, want 5", got)
	}
}

func TestCurrentBeforeRun(t *testing.T) {
	e, err := New(smallConfig(), genome.DefaultSchema(), angleSum)
	if err != nil {
		t.Fatal(err)
	}
	if e.Current() != nil || e.State() != StateIdle {
		t.Error("fresh engine should be idle with no population")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny population", func(c *Config) { c.PopulationSize = 1 }},
		{"elite plus random too big", func(c *Config) { c.Elite, c.Random = 600, 500 }},
		{"unknown seed policy", func(c *Config) { c.EpisodeSeed = "sometimes" }},
		{"unknown mid policy", func(c *Config) { c.Pool.MidPolicy = "top" }},
		{"non-positive power", func(c *Config) { c.Weighting.Power = 0 }},
		{"pool too small", func(c *Config) { c.Pool = PoolConfig{Top: 1, MidPolicy: MidMiddle} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	pop := Population{
		{Fitness: 5}, {Fitness: 4}, {Fitness: 3}, {Fitness: 2},
		{Fitness: FailedFitness, Failed: true},
	}
	s := ComputeStats(3, pop, 0)
	if s.Best != 5 || s.Worst != 2 || s.Failed != 1 || s.Population != 5 {
		t.Errorf("stats = %+v", s)
	}
	if math.Abs(s.Mean-3.5) > 1e-12 {
		t.Errorf("mean = %v, want 3.5", s.Mean)
	}
	if s.Median != 3 && s.Median != 4 {
		t.Errorf("median = %v, want a middle value", s.Median)
	}

	empty := ComputeStats(0, Population{{Fitness: FailedFitness, Failed: true}}, 0)
	if empty.Failed != 1 || empty.Best != 0 {
		t.Errorf("all-failed stats = %+v", empty)
	}
}
