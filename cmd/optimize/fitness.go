package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/evolve"
)

// invalidPenalty scores parameter vectors the engine rejects.
const invalidPenalty = 1e6

// FitnessEvaluator runs short evolutions and scores the parameters that
// drove them.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	seeds       []int64
	generations int
	population  int

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestPop     evolve.Population
	bestGen     int
	lastBest    float64 // mean best genome fitness from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. population <= 0 keeps the
// base config's population size.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, generations, population int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  baseCfg,
		seeds:       seeds,
		generations: generations,
		population:  population,
		bestFitness: math.Inf(1),
	}
}

// BestPopulation returns the final population of the best evaluation.
func (fe *FitnessEvaluator) BestPopulation() (evolve.Population, int) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestPop, fe.bestGen
}

// LastBest returns the mean best genome fitness from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastBest() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBest
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	best float64
	pop  evolve.Population
	err  error
}

// Evaluate computes fitness for a parameter vector (lower = better):
// the negated best genome fitness after a short run, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("parameters rejected", "error", err)
		return invalidPenalty
	}
	cfg.Evolution.Generations = fe.generations
	cfg.Evolution.MaxDuration = 0
	if fe.population > 0 {
		cfg.Evolution.PopulationSize = fe.population
		cfg.Evolution.Random = min(cfg.Evolution.Random, fe.population/5)
		cfg.Evolution.Elite = min(cfg.Evolution.Elite, fe.population/5)
	}
	// Seeds run side by side and share the cores.
	cfg.Evolution.Workers = max(1, runtime.GOMAXPROCS(0)/len(fe.seeds))
	if err := cfg.Validate(); err != nil {
		slog.Warn("parameters rejected", "error", err)
		return invalidPenalty
	}

	results := make([]seedResult, len(fe.seeds))
	p := pool.New().WithMaxGoroutines(len(fe.seeds))
	for i, seed := range fe.seeds {
		p.Go(func() {
			results[i] = fe.runEvolution(cfg, seed)
		})
	}
	p.Wait()

	var total float64
	bestSeed := -1
	for i, r := range results {
		if r.err != nil {
			slog.Warn("evolution failed", "seed", fe.seeds[i], "error", r.err)
			return invalidPenalty
		}
		total += r.best
		if bestSeed < 0 || r.best > results[bestSeed].best {
			bestSeed = i
		}
	}

	meanBest := total / float64(len(results))
	fitness := -meanBest

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestPop = results[bestSeed].pop
		fe.bestGen = fe.generations - 1
	}
	fe.lastBest = meanBest
	fe.mu.Unlock()

	return fitness
}

// runEvolution executes one quiet evolution with the given base seed.
func (fe *FitnessEvaluator) runEvolution(base *config.Config, seed int64) seedResult {
	cfg := *base
	cfg.Evolution.Seed = seed

	eval, err := cfg.Evaluator()
	if err != nil {
		return seedResult{err: err}
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := evolve.New(cfg.Evolution, cfg.Schema(), eval, evolve.WithLogger(quiet))
	if err != nil {
		return seedResult{err: err}
	}
	pop, err := engine.Run(context.Background(), nil)
	if err != nil {
		return seedResult{err: err}
	}
	return seedResult{best: pop.Best().Fitness, pop: pop}
}

// copyConfig creates a copy of the base config that ApplyToConfig can
// modify freely.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
