package genome

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Crossover builds one child from two parents, applying each group's
// crossover operator independently. Parents must match the schema.
func (s Schema) Crossover(a, b Genome, rng *rand.Rand) (Genome, error) {
	child := make(Genome, len(s))
	for _, spec := range s {
		pa, pb := a[spec.Name], b[spec.Name]
		if len(pa) != spec.Size || len(pb) != spec.Size {
			return nil, fmt.Errorf("%w: crossover of group %q with sizes %d and %d, want %d",
				ErrSchemaMismatch, spec.Name, len(pa), len(pb), spec.Size)
		}
		switch spec.Crossover {
		case CrossoverKPoint:
			child[spec.Name] = kPoint(pa, pb, spec.Points, rng)
		default:
			child[spec.Name] = uniform(pa, pb, rng)
		}
	}
	return child, nil
}

func uniform(a, b []float64, rng *rand.Rand) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		if rng.Float64() < 0.5 {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// kPoint picks k distinct cut positions in [1, n) and alternates parents
// between them. Fewer cuts are used when the group is too short.
func kPoint(a, b []float64, k int, rng *rand.Rand) []float64 {
	n := len(a)
	if k > n-1 {
		k = n - 1
	}
	cuts := make([]int, 0, k)
	if k > 0 {
		for _, p := range rng.Perm(n - 1)[:k] {
			cuts = append(cuts, p+1)
		}
		sort.Ints(cuts)
	}

	out := make([]float64, n)
	src, other := a, b
	start := 0
	for _, c := range append(cuts, n) {
		copy(out[start:c], src[start:c])
		src, other = other, src
		start = c
	}
	return out
}

// Mutate returns a mutated copy of g. Each value is perturbed with its
// group's rate; bounded groups are clamped afterwards. Groups not in the
// schema are copied unchanged.
func (s Schema) Mutate(g Genome, rng *rand.Rand) Genome {
	out := g.Clone()
	for _, spec := range s {
		vals, ok := out[spec.Name]
		if !ok || spec.Rate == 0 {
			continue
		}
		for i := range vals {
			if rng.Float64() >= spec.Rate {
				continue
			}
			switch spec.Mutation {
			case MutationScale:
				vals[i] *= (rng.Float64()*2 - 1) * spec.Sigma
			default:
				vals[i] += rng.NormFloat64() * spec.Sigma
			}
			if spec.Bounded {
				vals[i] = clamp(vals[i], spec.Min, spec.Max)
			}
		}
	}
	return out
}

// Breed is crossover followed by mutation.
func (s Schema) Breed(a, b Genome, rng *rand.Rand) (Genome, error) {
	child, err := s.Crossover(a, b, rng)
	if err != nil {
		return nil, err
	}
	return s.Mutate(child, rng), nil
}

// clamp pins v to [lo, hi).
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v >= hi {
		return math.Nextafter(hi, lo)
	}
	return v
}
