package evolve

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/snake"
	"github.com/pthm-cable/snakevo/world"
)

// Evaluator scores one genome in one episode seeded with seed. It must not
// share mutable state with other calls; the engine runs many at once.
type Evaluator func(g genome.Genome, seed int64) (float64, error)

// EpisodeEvaluator runs a fresh world per call and scores its result.
func EpisodeEvaluator(wc world.Config, sc snake.Config, fitness world.FitnessFunc) Evaluator {
	return func(g genome.Genome, seed int64) (float64, error) {
		w, err := world.New(wc, sc, g, seed)
		if err != nil {
			return 0, err
		}
		return fitness(w.Run()), nil
	}
}

// evaluate scores every individual of pop in place across the worker pool.
// A failing or panicking episode is scored FailedFitness and logged. Tasks
// not yet started when ctx is cancelled are skipped; the caller discards the
// generation in that case.
func (e *Engine) evaluate(ctx context.Context, generation int, pop Population) (failed int) {
	errs := make([]error, len(pop))

	p := pool.New().WithMaxGoroutines(e.cfg.Workers)
	for i := range pop {
		pop[i].Seed = e.cfg.episodeSeed(generation, i)
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			fitness, err := e.evaluateOne(pop[i].Genome, pop[i].Seed)
			if err == nil && math.IsNaN(fitness) {
				err = errors.New("fitness is NaN")
			}
			if err != nil {
				errs[i] = err
				fitness = FailedFitness
			}
			pop[i].Fitness = fitness
			pop[i].Failed = err != nil
		})
	}
	p.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		e.metrics.Failures.Inc()
		e.log.Warn("genome evaluation failed",
			"generation", generation,
			"index", i,
			"id", pop[i].ID,
			"seed", pop[i].Seed,
			"error", err,
		)
	}
	e.metrics.Evaluations.Add(float64(len(pop)))
	return failed
}

// evaluateOne turns a panic inside the evaluator into an error so one bad
// genome cannot take the generation down.
func (e *Engine) evaluateOne(g genome.Genome, seed int64) (fitness float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during evaluation: %v", r)
		}
	}()
	return e.eval(g, seed)
}
