package evolve

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/pthm-cable/snakevo/genome"
)

// FailedFitness is recorded for a genome whose evaluation failed. It sorts
// below every real score.
var FailedFitness = math.Inf(-1)

// Origin records how an individual entered its generation.
type Origin string

const (
	OriginInitial   Origin = "initial"
	OriginElite     Origin = "elite"
	OriginOffspring Origin = "offspring"
	OriginRandom    Origin = "random"
)

// Individual is one genome and, once evaluated, its fitness.
type Individual struct {
	ID      uuid.UUID
	Origin  Origin
	Genome  genome.Genome
	Fitness float64
	Seed    int64
	Failed  bool
}

// Population is one generation, sorted best first after evaluation.
type Population []Individual

// Sort orders the population by descending fitness. Ties keep their
// evaluation order.
func (p Population) Sort() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Fitness > p[j].Fitness
	})
}

// Clone deep-copies the population so callers cannot reach engine state.
func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	for i, ind := range p {
		out[i] = ind
		out[i].Genome = ind.Genome.Clone()
	}
	return out
}

// Top returns up to n leading individuals.
func (p Population) Top(n int) Population {
	if n > len(p) {
		n = len(p)
	}
	return p[:n]
}

// Best returns the leading individual. The population must not be empty.
func (p Population) Best() Individual { return p[0] }

// Fitnesses returns the scores in population order.
func (p Population) Fitnesses() []float64 {
	out := make([]float64, len(p))
	for i, ind := range p {
		out[i] = ind.Fitness
	}
	return out
}
