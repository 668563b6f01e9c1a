package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/evolve"
	"github.com/pthm-cable/snakevo/genome"
	"github.com/pthm-cable/snakevo/results"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for fitness log, genomes and config snapshot (empty = use config)")
	seed := flag.Int64("seed", 0, "Base RNG seed (0 = use config)")
	generations := flag.Int("generations", -1, "Generations to run (-1 = use config, 0 = until interrupted)")
	workers := flag.Int("workers", -1, "Parallel evaluations (-1 = use config, 0 = GOMAXPROCS)")
	initial := flag.String("initial", "", "Seed the population from a genomes.json snapshot")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *seed != 0 {
		cfg.Evolution.Seed = *seed
	}
	if *generations >= 0 {
		cfg.Evolution.Generations = *generations
	}
	if *workers >= 0 {
		cfg.Evolution.Workers = *workers
	}
	if *initial != "" {
		cfg.Output.InitialPopulation = *initial
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("evolution failed", "error", err)
		os.Exit(1)
	}
}

// run drives one evolution and writes its outputs. An interrupted run
// returns context.Canceled after saving what it has.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	fitnessFile := ""
	if cfg.Output.RecordFitness {
		fitnessFile = cfg.Output.FitnessFile
	}
	out, err := results.NewOutput(cfg.Output.Dir, fitnessFile, cfg.Output.GenomesFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if cfg.Output.RecordFitness {
		if err := out.OpenScores(cfg.Output.ScoresFile); err != nil {
			return err
		}
	}
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	eval, err := cfg.Evaluator()
	if err != nil {
		return err
	}

	var seedGenomes []genome.Genome
	if path := cfg.Output.InitialPopulation; path != "" {
		seedGenomes, err = results.LoadGenomes(path, cfg.Schema())
		if err != nil {
			return err
		}
		log.Info("loaded initial population", "path", path, "genomes", len(seedGenomes))
	}

	reg := prometheus.NewRegistry()
	metrics := evolve.NewMetrics(reg)
	recorder := results.NewRecorder(out, cfg.Output.RecordFitness, cfg.Output.SnapshotEvery, cfg.Output.TopGenomes, log)

	engine, err := evolve.New(cfg.Evolution, cfg.Schema(), eval,
		evolve.WithLogger(log),
		evolve.WithMetrics(metrics),
		evolve.WithSink(recorder),
	)
	if err != nil {
		return err
	}

	log.Info("starting evolution",
		"population", cfg.Evolution.PopulationSize,
		"generations", cfg.Evolution.Generations,
		"seed", cfg.Evolution.Seed,
		"episode_seed", cfg.Evolution.EpisodeSeed,
		"fitness", cfg.Fitness,
		"output_dir", out.Dir(),
	)

	pop, runErr := engine.Run(ctx, seedGenomes)
	interrupted := errors.Is(runErr, context.Canceled)

	if len(pop) > 0 && (!interrupted || cfg.Output.RecordGenomesOnInterrupt) {
		if err := out.WriteGenomes(engine.Generation()-1, pop, cfg.Output.TopGenomes); err != nil {
			log.Error("failed to write genomes", "error", err)
		} else if out != nil {
			log.Info("genomes saved", "generation", engine.Generation()-1, "dir", out.Dir())
		}
	}
	if err := out.WriteMetrics(cfg.Output.MetricsFile, reg); err != nil {
		log.Error("failed to write metrics", "error", err)
	}

	if len(pop) > 0 {
		best := pop.Best()
		log.Info("evolution finished",
			"generations", engine.Generation(),
			"best_fitness", best.Fitness,
			"best_id", best.ID,
			"interrupted", interrupted,
		)
	}
	return runErr
}
