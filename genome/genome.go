package genome

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Genome maps group name to its values. The JSON form is the plain mapping,
// e.g. {"eye_angles":[a1,a2],"w1":[...],"w2":[...]}.
type Genome map[string][]float64

// Clone returns a deep copy.
func (g Genome) Clone() Genome {
	out := make(Genome, len(g))
	for k, v := range g {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// Equal reports whether both genomes hold identical groups and values.
func (g Genome) Equal(o Genome) bool {
	if len(g) != len(o) {
		return false
	}
	for k, v := range g {
		w, ok := o[k]
		if !ok || len(v) != len(w) {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	return true
}

// Random draws a fresh genome, each value uniform in its group's init range.
func (s Schema) Random(rng *rand.Rand) Genome {
	g := make(Genome, len(s))
	for _, spec := range s {
		vals := make([]float64, spec.Size)
		span := spec.InitMax - spec.InitMin
		for i := range vals {
			vals[i] = spec.InitMin + rng.Float64()*span
		}
		g[spec.Name] = vals
	}
	return g
}

// Parse decodes a genome from JSON and checks it against the schema.
func (s Schema) Parse(data []byte) (Genome, error) {
	var g Genome
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding genome: %w", err)
	}
	if err := s.Check(g); err != nil {
		return nil, err
	}
	return g, nil
}
