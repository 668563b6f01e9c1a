// Package main provides CMA-ES optimization of the genetic algorithm's
// mutation and selection settings.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/results"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 10, "Generations per evaluation")
	popSize := flag.Int("pop", 200, "Genetic algorithm population per evaluation (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *seeds < 1 || *generations < 1 {
		log.Fatal("--seeds and --generations must be >= 1")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	// Generate seeds for evaluation
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds, *generations, *popSize)

	// Set up CMA-ES, starting from the base config's values
	dim := params.Dim()
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	cmaPop := *population
	if cmaPop == 0 {
		cmaPop = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   cmaPop,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	headerWritten := false

	// Track evaluations and timing
	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		evalStart := time.Now()
		fitness := originalFunc(x)
		evalCount++

		// Clamped values are the ones actually used
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		rows := []EvalRecord{params.Record(evalCount, fitness, clamped, time.Since(evalStart).Seconds())}
		if !headerWritten {
			err = gocsv.Marshal(rows, logFile)
			headerWritten = true
		} else {
			err = gocsv.MarshalWithoutHeaders(rows, logFile)
		}
		if err != nil {
			log.Printf("failed to log evaluation: %v", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: mean best=%.2f (best=%.2f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, evaluator.LastBest(), -bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, cmaPop, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d, GA population: %d\n", *seeds, *generations, *popSize)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best mean fitness: %.2f\n", -bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	// Save best config
	bestCfg, _ := config.Load(*configPath)
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		log.Printf("failed to apply best parameters: %v", err)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	// Save the genomes evolved by the best run
	if pop, gen := evaluator.BestPopulation(); len(pop) > 0 {
		genomesPath := filepath.Join(*outputDir, "best_genomes.json")
		if err := results.WriteSnapshot(genomesPath, results.NewSnapshot(gen, pop, baseCfg.Output.TopGenomes)); err != nil {
			log.Printf("failed to write genomes: %v", err)
		} else {
			fmt.Printf("Genomes saved to: %s\n", genomesPath)
		}
	}
}
