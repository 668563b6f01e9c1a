package results

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/snakevo/evolve"
)

// Recorder is an evolve.Sink that writes each generation to an Output.
type Recorder struct {
	out           *Output
	fitness       bool
	snapshotEvery int
	top           int
	log           *slog.Logger
}

// NewRecorder builds a recorder. With snapshotEvery > 0 the genome snapshot
// is refreshed every that many generations.
func NewRecorder(out *Output, recordFitness bool, snapshotEvery, top int, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{out: out, fitness: recordFitness, snapshotEvery: snapshotEvery, top: top, log: log}
}

// RecordGeneration implements evolve.Sink.
func (r *Recorder) RecordGeneration(ctx context.Context, stats evolve.GenerationStats, pop evolve.Population) error {
	if r.fitness {
		if err := r.out.WriteFitness(stats); err != nil {
			return err
		}
		if err := r.out.WriteScores(stats.Generation, pop); err != nil {
			return err
		}
	}
	if r.snapshotEvery > 0 && (stats.Generation+1)%r.snapshotEvery == 0 {
		if err := r.out.WriteGenomes(stats.Generation, pop, r.top); err != nil {
			return err
		}
		r.log.Debug("genome snapshot written", "generation", stats.Generation, "dir", r.out.Dir())
	}
	return nil
}

var _ evolve.Sink = (*Recorder)(nil)
