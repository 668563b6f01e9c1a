package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/pthm-cable/snakevo/evolve"
	"github.com/pthm-cable/snakevo/genome"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is the on-disk form of the best genomes of a run.
type Snapshot struct {
	Version    int     `json:"version"`
	Generation int     `json:"generation"`
	Results    []Entry `json:"results"`
}

// Entry is one ranked genome. Fitness is nil for a failed evaluation, since
// JSON has no infinity.
type Entry struct {
	ID      string        `json:"id,omitempty"`
	Origin  string        `json:"origin,omitempty"`
	Fitness *float64      `json:"fitness"`
	Genome  genome.Genome `json:"genome"`
}

// UnmarshalJSON accepts both the object form and the older
// [fitness, genome] pair.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("result pair has %d elements, want 2", len(pair))
		}
		var fitness *float64
		if err := json.Unmarshal(pair[0], &fitness); err != nil {
			return fmt.Errorf("result fitness: %w", err)
		}
		var g genome.Genome
		if err := json.Unmarshal(pair[1], &g); err != nil {
			return fmt.Errorf("result genome: %w", err)
		}
		*e = Entry{Fitness: fitness, Genome: g}
		return nil
	}

	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// NewSnapshot takes up to top individuals from a sorted population; top <= 0
// keeps all of them.
func NewSnapshot(generation int, pop evolve.Population, top int) Snapshot {
	if top <= 0 || top > len(pop) {
		top = len(pop)
	}
	s := Snapshot{Version: SnapshotVersion, Generation: generation, Results: make([]Entry, 0, top)}
	for _, ind := range pop[:top] {
		e := Entry{Origin: string(ind.Origin), Genome: ind.Genome}
		if ind.ID != uuid.Nil {
			e.ID = ind.ID.String()
		}
		if f := ind.Fitness; !math.IsInf(f, 0) && !math.IsNaN(f) {
			e.Fitness = &f
		}
		s.Results = append(s.Results, e)
	}
	return s
}

// WriteSnapshot writes s as JSON, replacing any existing file.
func WriteSnapshot(path string, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling genomes: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadGenomes reads a snapshot and returns its genomes in rank order. Every
// genome must match schema.
func LoadGenomes(path string, schema genome.Schema) ([]genome.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genomes: %w", err)
	}
	// Only the first JSON value counts; older files may carry trailing lines.
	var s Snapshot
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	out := make([]genome.Genome, 0, len(s.Results))
	for i, e := range s.Results {
		if err := schema.Check(e.Genome); err != nil {
			return nil, fmt.Errorf("%s result %d: %w", path, i, err)
		}
		out = append(out, e.Genome)
	}
	return out, nil
}
