package evolve

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one evaluated generation. Failed genomes are
// counted but left out of the score statistics.
type GenerationStats struct {
	Generation int           `csv:"generation"`
	Population int           `csv:"population"`
	Best       float64       `csv:"best"`
	Mean       float64       `csv:"mean"`
	Std        float64       `csv:"std"`
	Median     float64       `csv:"median"`
	Worst      float64       `csv:"worst"`
	Failed     int           `csv:"failed"`
	Duration   time.Duration `csv:"-"`
	Seconds    float64       `csv:"seconds"`
}

// ComputeStats summarises a sorted population.
func ComputeStats(generation int, pop Population, took time.Duration) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		Population: len(pop),
		Duration:   took,
		Seconds:    took.Seconds(),
	}

	scores := make([]float64, 0, len(pop))
	for _, ind := range pop {
		if ind.Failed || math.IsInf(ind.Fitness, 0) || math.IsNaN(ind.Fitness) {
			s.Failed++
			continue
		}
		scores = append(scores, ind.Fitness)
	}
	if len(scores) == 0 {
		return s
	}

	sort.Float64s(scores)
	s.Worst = scores[0]
	s.Best = scores[len(scores)-1]
	s.Mean, s.Std = stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		s.Std = 0
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, scores, nil)
	return s
}

// LogValue implements slog.LogValuer.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Float64("best", s.Best),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("median", s.Median),
		slog.Float64("worst", s.Worst),
		slog.Int("failed", s.Failed),
		slog.Duration("duration", s.Duration),
	)
}
