package evolve

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MidPolicy picks where the second pool band is taken from.
type MidPolicy string

const (
	MidMiddle MidPolicy = "middle"
	MidBottom MidPolicy = "bottom"
)

// WeightingKind names a parent weighting function.
type WeightingKind string

const (
	// WeightPower weights each pool member by fitness^Power.
	WeightPower WeightingKind = "power"
	// WeightRank weights by position in the sorted population, best highest.
	WeightRank WeightingKind = "rank"
)

// PoolConfig sizes the three selection pool bands.
type PoolConfig struct {
	Top       int       `yaml:"top"`
	Mid       int       `yaml:"mid"`
	Random    int       `yaml:"random"`
	MidPolicy MidPolicy `yaml:"mid_policy"`
}

// WeightingConfig selects the parent weighting.
type WeightingConfig struct {
	Kind  WeightingKind `yaml:"kind"`
	Power float64       `yaml:"power"`
}

// buildPool returns indices into the sorted population: the top band, the
// middle (or bottom) band, then uniformly random picks. An index may appear
// more than once.
func buildPool(n int, cfg PoolConfig, rng *rand.Rand) []int {
	top := min(cfg.Top, n)
	mid := min(cfg.Mid, n)

	pool := make([]int, 0, top+mid+cfg.Random)
	for i := 0; i < top; i++ {
		pool = append(pool, i)
	}

	start := (n - mid) / 2
	if cfg.MidPolicy == MidBottom {
		start = n - mid
	}
	for i := 0; i < mid; i++ {
		pool = append(pool, start+i)
	}

	if n > 0 {
		for i := 0; i < cfg.Random; i++ {
			pool = append(pool, rng.Intn(n))
		}
	}
	return pool
}

// poolWeights assigns a non-negative weight to each pool member. Failed or
// non-finite scores get zero. If nothing ends up with weight, every member
// is weighted equally.
func poolWeights(pop Population, pool []int, cfg WeightingConfig) []float64 {
	w := make([]float64, len(pool))

	switch cfg.Kind {
	case WeightRank:
		for i, idx := range pool {
			if finite(pop[idx].Fitness) {
				w[i] = float64(len(pop) - idx)
			}
		}
	default:
		// Shift so the lowest finite score maps to zero when any is negative;
		// a fractional power of a negative number is NaN.
		shift := 0.0
		for _, idx := range pool {
			if f := pop[idx].Fitness; finite(f) && f+shift < 0 {
				shift = -f
			}
		}
		for i, idx := range pool {
			f := pop[idx].Fitness
			if !finite(f) {
				continue
			}
			v := math.Pow(f+shift, cfg.Power)
			if finite(v) {
				w[i] = v
			}
		}
	}

	if floats.Sum(w) <= 0 {
		for i := range w {
			w[i] = 1
		}
	}
	return w
}

// sampleIndex draws a position from w proportionally to its weight. The sum
// of w must be positive.
func sampleIndex(w []float64, rng *rand.Rand) int {
	cum := make([]float64, len(w))
	floats.CumSum(cum, w)
	r := rng.Float64() * cum[len(cum)-1]
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
	if i == len(cum) {
		// r rounded up to the total; take the last slot with weight.
		i--
		for i > 0 && w[i] <= 0 {
			i--
		}
	}
	return i
}

// samplePair draws two parents from the pool. The second draw excludes every
// pool slot holding the first parent, so an individual never pairs with
// itself.
func samplePair(pool []int, w []float64, rng *rand.Rand) (int, int, error) {
	if len(pool) == 0 {
		return 0, 0, fmt.Errorf("%w: empty pool", ErrNoPartner)
	}
	first := pool[sampleIndex(w, rng)]

	rest := make([]float64, len(w))
	distinct := false
	for i, idx := range pool {
		if idx == first {
			continue
		}
		distinct = true
		rest[i] = w[i]
	}
	if !distinct {
		return 0, 0, ErrNoPartner
	}
	if floats.Sum(rest) <= 0 {
		// Only zero-weight partners remain; pick one of them uniformly.
		for i, idx := range pool {
			if idx != first {
				rest[i] = 1
			}
		}
	}
	return first, pool[sampleIndex(rest, rng)], nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
