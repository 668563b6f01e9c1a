// Package genome defines the evolvable parameter set of a snake and the
// per-group variation operators applied to it.
package genome

import (
	"errors"
	"fmt"
	"math"
)

// Group names used by the snake.
const (
	GroupEyeAngles = "eye_angles"
	GroupW1        = "w1"
	GroupW2        = "w2"
)

// CrossoverKind selects how two parents' values for one group are combined.
type CrossoverKind string

const (
	// CrossoverUniform takes each value from either parent with equal odds.
	CrossoverUniform CrossoverKind = "uniform"
	// CrossoverKPoint cuts the group at Points random positions and
	// alternates parent segments, starting with the first parent.
	CrossoverKPoint CrossoverKind = "k_point"
)

// MutationKind selects how a selected value is perturbed.
type MutationKind string

const (
	// MutationGaussian adds N(0, Sigma).
	MutationGaussian MutationKind = "gaussian"
	// MutationScale multiplies by U(-Sigma, Sigma).
	MutationScale MutationKind = "scale"
)

// ErrSchemaMismatch is returned when a genome's groups do not match the
// schema, or two parents disagree on a group's size.
var ErrSchemaMismatch = errors.New("genome: schema mismatch")

// GroupSpec describes one gene group.
type GroupSpec struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`

	// Half-open bounds [Min, Max), applied after mutation when Bounded is set.
	Bounded bool    `yaml:"bounded"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`

	// Random genomes draw each value from U[InitMin, InitMax).
	InitMin float64 `yaml:"init_min"`
	InitMax float64 `yaml:"init_max"`

	Crossover CrossoverKind `yaml:"crossover"`
	Points    int           `yaml:"points"`

	Mutation MutationKind `yaml:"mutation"`
	Sigma    float64      `yaml:"sigma"`
	// Rate is the probability that each value in the group is mutated.
	Rate float64 `yaml:"rate"`
}

// Schema is the ordered list of gene groups. Operators always walk groups in
// schema order so random draws are reproducible.
type Schema []GroupSpec

// DefaultSchema returns the snake genome: two eye angles and the two weight
// matrices of the 15-15-5 brain.
func DefaultSchema() Schema {
	return Schema{
		{
			Name: GroupEyeAngles, Size: 2,
			Bounded: true, Min: 0, Max: 2 * math.Pi,
			InitMin: 0, InitMax: 2 * math.Pi,
			Crossover: CrossoverUniform,
			Mutation:  MutationGaussian, Sigma: 1, Rate: 0.01,
		},
		{
			Name: GroupW1, Size: 15 * 15,
			InitMin: -100, InitMax: 100,
			Crossover: CrossoverKPoint, Points: 3,
			Mutation: MutationGaussian, Sigma: 50, Rate: 0.2,
		},
		{
			Name: GroupW2, Size: 5 * 15,
			InitMin: -100, InitMax: 100,
			Crossover: CrossoverKPoint, Points: 3,
			Mutation: MutationGaussian, Sigma: 50, Rate: 0.2,
		},
	}
}

// Len returns the total number of values in a genome of this schema.
func (s Schema) Len() int {
	n := 0
	for _, g := range s {
		n += g.Size
	}
	return n
}

// Group returns the spec with the given name.
func (s Schema) Group(name string) (GroupSpec, bool) {
	for _, g := range s {
		if g.Name == name {
			return g, true
		}
	}
	return GroupSpec{}, false
}

// Validate checks the schema for values the operators cannot work with.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("genome: empty schema")
	}
	seen := make(map[string]bool, len(s))
	for _, g := range s {
		if g.Name == "" {
			return errors.New("genome: group with empty name")
		}
		if seen[g.Name] {
			return fmt.Errorf("genome: duplicate group %q", g.Name)
		}
		seen[g.Name] = true

		if g.Size <= 0 {
			return fmt.Errorf("genome: group %q: size must be positive, got %d", g.Name, g.Size)
		}
		if g.Bounded && g.Min >= g.Max {
			return fmt.Errorf("genome: group %q: min %v >= max %v", g.Name, g.Min, g.Max)
		}
		if g.InitMin > g.InitMax {
			return fmt.Errorf("genome: group %q: init_min %v > init_max %v", g.Name, g.InitMin, g.InitMax)
		}
		switch g.Crossover {
		case CrossoverUniform:
		case CrossoverKPoint:
			if g.Points < 1 {
				return fmt.Errorf("genome: group %q: k_point needs points >= 1", g.Name)
			}
		default:
			return fmt.Errorf("genome: group %q: unknown crossover %q", g.Name, g.Crossover)
		}
		switch g.Mutation {
		case MutationGaussian, MutationScale:
		default:
			return fmt.Errorf("genome: group %q: unknown mutation %q", g.Name, g.Mutation)
		}
		if g.Rate < 0 || g.Rate > 1 {
			return fmt.Errorf("genome: group %q: rate %v outside [0, 1]", g.Name, g.Rate)
		}
		if g.Sigma < 0 {
			return fmt.Errorf("genome: group %q: negative sigma", g.Name)
		}
	}
	return nil
}

// Check reports ErrSchemaMismatch unless g has exactly the schema's groups at
// exactly the declared sizes.
func (s Schema) Check(g Genome) error {
	if len(g) != len(s) {
		return fmt.Errorf("%w: genome has %d groups, schema has %d", ErrSchemaMismatch, len(g), len(s))
	}
	for _, spec := range s {
		vals, ok := g[spec.Name]
		if !ok {
			return fmt.Errorf("%w: missing group %q", ErrSchemaMismatch, spec.Name)
		}
		if len(vals) != spec.Size {
			return fmt.Errorf("%w: group %q has %d values, want %d", ErrSchemaMismatch, spec.Name, len(vals), spec.Size)
		}
	}
	return nil
}
