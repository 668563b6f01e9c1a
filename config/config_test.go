package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/snakevo/evolve"
	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/snake"
	"github.com/pthm-cable/snakevo/world"
)

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.World != world.DefaultConfig() {
		t.Errorf("world = %+v, want %+v", cfg.World, world.DefaultConfig())
	}
	if cfg.Snake != snake.DefaultConfig() {
		t.Errorf("snake = %+v, want %+v", cfg.Snake, snake.DefaultConfig())
	}
	if cfg.Evolution != evolve.DefaultConfig() {
		t.Errorf("evolution = %+v, want %+v", cfg.Evolution, evolve.DefaultConfig())
	}

	want := genome.DefaultSchema()
	if len(cfg.Schema()) != len(want) {
		t.Fatalf("schema has %d groups, want %d", len(cfg.Schema()), len(want))
	}
	for i := range want {
		if cfg.Schema()[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, cfg.Schema()[i], want[i])
		}
	}
	if _, err := cfg.Evaluator(); err != nil {
		t.Errorf("Evaluator: %v", err)
	}
}

func TestOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	overlay := `
world:
  num_food: 25
evolution:
  population_size: 50
  max_duration: 90s
  episode_seed: per_genome
fitness: length_time
`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.NumFood != 25 || cfg.World.Width != 200 {
		t.Errorf("world = %+v, want num_food overridden and width kept", cfg.World)
	}
	if cfg.Evolution.PopulationSize != 50 || cfg.Evolution.Random != 20 {
		t.Errorf("evolution = %+v", cfg.Evolution)
	}
	if cfg.Evolution.MaxDuration != 90*time.Second {
		t.Errorf("max_duration = %v, want 90s", cfg.Evolution.MaxDuration)
	}
	if cfg.Evolution.EpisodeSeed != evolve.SeedPerGenome {
		t.Errorf("episode_seed = %q", cfg.Evolution.EpisodeSeed)
	}
	if cfg.Fitness != "length_time" {
		t.Errorf("fitness = %q", cfg.Fitness)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"unknown fitness", "fitness: speed\n", "unknown fitness policy"},
		{"bad population", "evolution:\n  population_size: 1\n", "population_size"},
		{"wrong brain shape", "genome:\n  groups:\n    - {name: eye_angles, size: 2, crossover: uniform, mutation: gaussian}\n    - {name: w1, size: 10, crossover: uniform, mutation: gaussian}\n    - {name: w2, size: 75, crossover: uniform, mutation: gaussian}\n", "brain needs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Evolution.MaxDuration = 5 * time.Minute
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Evolution != cfg.Evolution || back.World != cfg.World || back.Output != cfg.Output {
		t.Error("config changed across WriteYAML and Load")
	}
}

func TestInit(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatal(err)
	}
	if Cfg().World.Width != 200 {
		t.Errorf("Cfg().World.Width = %v", Cfg().World.Width)
	}
}
