// Package config provides configuration loading and access for evolution
// runs and replays.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/snakevo/evolve"
	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/neural"
	"github.com/pthm-cable/snakevo/snake"
	"github.com/pthm-cable/snakevo/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration.
type Config struct {
	Screen    ScreenConfig  `yaml:"screen"`
	World     world.Config  `yaml:"world"`
	Snake     snake.Config  `yaml:"snake"`
	Fitness   string        `yaml:"fitness"`
	Genome    GenomeConfig  `yaml:"genome"`
	Evolution evolve.Config `yaml:"evolution"`
	Output    OutputConfig  `yaml:"output"`
}

// ScreenConfig holds replay window parameters.
type ScreenConfig struct {
	Scale float64 `yaml:"scale"` // window pixels per arena unit
	FPS   int32   `yaml:"fps"`
}

// GenomeConfig declares the gene groups. A user file that sets groups
// replaces the whole list.
type GenomeConfig struct {
	Groups genome.Schema `yaml:"groups"`
}

// OutputConfig controls what a run writes under Dir.
type OutputConfig struct {
	Dir                      string `yaml:"dir"`
	RecordFitness            bool   `yaml:"record_fitness"`
	FitnessFile              string `yaml:"fitness_file"`
	ScoresFile               string `yaml:"scores_file"` // per-genome fitness rows, empty = off
	RecordGenomesOnInterrupt bool   `yaml:"record_genomes_on_interrupt"`
	GenomesFile              string `yaml:"genomes_file"`
	TopGenomes               int    `yaml:"top_genomes"`
	SnapshotEvery            int    `yaml:"snapshot_every"` // generations between genome snapshots, 0 = end only
	MetricsFile              string `yaml:"metrics_file"`
	InitialPopulation        string `yaml:"initial_population"` // genomes file to seed generation 0
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section, including that the gene groups fit the
// snake's brain.
func (c *Config) Validate() error {
	var errs []error
	if err := c.World.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("world: %w", err))
	}
	if c.Snake.Speed <= 0 || c.Snake.PieceSize <= 0 {
		errs = append(errs, fmt.Errorf("snake: speed and piece_size must be positive"))
	}
	if _, err := world.Fitness(c.Fitness); err != nil {
		errs = append(errs, err)
	}
	if err := c.Evolution.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("evolution: %w", err))
	}
	if err := c.Genome.Groups.Validate(); err != nil {
		errs = append(errs, err)
	} else {
		want := map[string]int{
			genome.GroupEyeAngles: 2,
			genome.GroupW1:        neural.W1Len,
			genome.GroupW2:        neural.W2Len,
		}
		for name, size := range want {
			spec, ok := c.Genome.Groups.Group(name)
			if !ok {
				errs = append(errs, fmt.Errorf("genome: missing group %q", name))
			} else if spec.Size != size {
				errs = append(errs, fmt.Errorf("genome: group %q has size %d, the brain needs %d", name, spec.Size, size))
			}
		}
		if len(c.Genome.Groups) != len(want) {
			errs = append(errs, fmt.Errorf("genome: expected exactly %d groups, got %d", len(want), len(c.Genome.Groups)))
		}
	}
	if c.Output.TopGenomes < 0 || c.Output.SnapshotEvery < 0 {
		errs = append(errs, errors.New("output: top_genomes and snapshot_every must be >= 0"))
	}
	return errors.Join(errs...)
}

// Schema returns the configured gene groups.
func (c *Config) Schema() genome.Schema { return c.Genome.Groups }

// FitnessFunc resolves the configured fitness policy.
func (c *Config) FitnessFunc() (world.FitnessFunc, error) { return world.Fitness(c.Fitness) }

// Evaluator builds the episode evaluator for the configured world, snake
// and fitness policy.
func (c *Config) Evaluator() (evolve.Evaluator, error) {
	f, err := c.FitnessFunc()
	if err != nil {
		return nil, err
	}
	return evolve.EpisodeEvaluator(c.World, c.Snake, f), nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
