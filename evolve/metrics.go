package evolve

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the engine's Prometheus instruments.
type Metrics struct {
	Generations       prometheus.Counter
	Evaluations       prometheus.Counter
	Failures          prometheus.Counter
	Offspring         prometheus.Counter
	BestFitness       prometheus.Gauge
	MeanFitness       prometheus.Gauge
	GenerationSeconds prometheus.Histogram
}

// NewMetrics builds the instruments and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snakevo", Name: "generations_total",
			Help: "Generations fully evaluated.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snakevo", Name: "evaluations_total",
			Help: "Episodes run.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snakevo", Name: "evaluation_failures_total",
			Help: "Episodes that failed and were scored as worst fitness.",
		}),
		Offspring: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snakevo", Name: "offspring_total",
			Help: "Children bred by crossover and mutation.",
		}),
		BestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snakevo", Name: "best_fitness",
			Help: "Best fitness of the last generation.",
		}),
		MeanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snakevo", Name: "mean_fitness",
			Help: "Mean fitness of the last generation, failures excluded.",
		}),
		GenerationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snakevo", Name: "generation_seconds",
			Help:    "Wall time per generation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Generations, m.Evaluations, m.Failures, m.Offspring,
			m.BestFitness, m.MeanFitness, m.GenerationSeconds,
		)
	}
	return m
}

func (m *Metrics) observeGeneration(s GenerationStats) {
	m.Generations.Inc()
	m.BestFitness.Set(s.Best)
	m.MeanFitness.Set(s.Mean)
	m.GenerationSeconds.Observe(s.Seconds)
}
