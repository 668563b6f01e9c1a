// Package results persists evolution runs: a per-generation fitness CSV, an
// optional per-genome score CSV, JSON genome snapshots, the run configuration and a metrics dump.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/evolve"
)

// Output handles structured run output under one directory.
type Output struct {
	dir         string
	genomesFile string

	mu                   sync.Mutex
	fitnessFile          *os.File
	fitnessHeaderWritten bool
	scoresFile           *os.File
	scoresHeaderWritten  bool
}

// ScoreRecord is one genome's row in the score log.
type ScoreRecord struct {
	Generation int     `csv:"generation"`
	Rank       int     `csv:"rank"`
	ID         string  `csv:"id"`
	Origin     string  `csv:"origin"`
	Fitness    float64 `csv:"fitness"`
	Failed     bool    `csv:"failed"`
}

// NewOutput creates the output directory and opens the fitness log.
// Returns nil if dir is empty (output disabled); every method is a no-op on
// a nil Output. An empty fitnessFile disables the fitness log only.
func NewOutput(dir, fitnessFile, genomesFile string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	o := &Output{dir: dir, genomesFile: genomesFile}

	if fitnessFile != "" {
		f, err := os.Create(filepath.Join(dir, fitnessFile))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", fitnessFile, err)
		}
		o.fitnessFile = f
	}
	return o, nil
}

// WriteConfig saves the run configuration as YAML.
func (o *Output) WriteConfig(cfg *config.Config) error {
	if o == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(o.dir, "config.yaml"))
}

// WriteFitness appends one generation's stats to the fitness log.
func (o *Output) WriteFitness(stats evolve.GenerationStats) error {
	if o == nil || o.fitnessFile == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := appendCSV(o.fitnessFile, &o.fitnessHeaderWritten, []evolve.GenerationStats{stats}); err != nil {
		return fmt.Errorf("writing fitness: %w", err)
	}
	return nil
}

// OpenScores starts the per-genome score log. An empty name leaves it off.
func (o *Output) OpenScores(name string) error {
	if o == nil || name == "" {
		return nil
	}
	f, err := os.Create(filepath.Join(o.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	o.mu.Lock()
	o.scoresFile = f
	o.mu.Unlock()
	return nil
}

// WriteScores appends every individual of an evaluated, sorted population
// to the score log.
func (o *Output) WriteScores(generation int, pop evolve.Population) error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scoresFile == nil {
		return nil
	}

	records := make([]ScoreRecord, len(pop))
	for i, ind := range pop {
		records[i] = ScoreRecord{
			Generation: generation,
			Rank:       i,
			ID:         ind.ID.String(),
			Origin:     string(ind.Origin),
			Fitness:    ind.Fitness,
			Failed:     ind.Failed,
		}
	}
	if err := appendCSV(o.scoresFile, &o.scoresHeaderWritten, records); err != nil {
		return fmt.Errorf("writing scores: %w", err)
	}
	return nil
}

// appendCSV writes rows to f, with a header only on the first call.
func appendCSV(f *os.File, headerWritten *bool, rows any) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

// WriteGenomes replaces the genome snapshot with the top individuals of pop.
func (o *Output) WriteGenomes(generation int, pop evolve.Population, top int) error {
	if o == nil || o.genomesFile == "" {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return WriteSnapshot(filepath.Join(o.dir, o.genomesFile), NewSnapshot(generation, pop, top))
}

// WriteMetrics dumps every metric in g in the Prometheus text format.
func (o *Output) WriteMetrics(name string, g prometheus.Gatherer) error {
	if o == nil || name == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(filepath.Join(o.dir, name), g); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// Close flushes and closes the CSV logs.
func (o *Output) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	var err error
	if o.fitnessFile != nil {
		err = o.fitnessFile.Close()
	}
	if o.scoresFile != nil {
		if cerr := o.scoresFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
