package main

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/genome"
)

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, want := range pv.DefaultVector() {
		if got[i] != want {
			t.Errorf("%s: config %f, default %f", pv.Specs[i].Name, got[i], want)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	original := append(genome.Schema(nil), cfg.Genome.Groups...)
	pv := NewParamVector()

	values := []float64{10, 0.05, 0.5, 0.02, 2, 7.6}
	if err := pv.ApplyToConfig(cfg, values); err != nil {
		t.Fatal(err)
	}
	if got := pv.ExtractFromConfig(cfg); got[0] != 10 || got[3] != 0.02 || got[5] != 8 {
		t.Errorf("extracted %v", got)
	}
	w2, _ := cfg.Schema().Group(genome.GroupW2)
	if w2.Sigma != 10 || w2.Rate != 0.05 {
		t.Errorf("w2 mutation = sigma %f rate %f", w2.Sigma, w2.Rate)
	}
	if original[1].Sigma != 50 {
		t.Error("ApplyToConfig modified the source schema")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}

	// Out-of-range values are clamped.
	if err := pv.ApplyToConfig(cfg, []float64{-5, 9, 0, 0, 100, 0}); err != nil {
		t.Fatal(err)
	}
	if got := pv.ExtractFromConfig(cfg); got[0] != 1 || got[1] != 0.5 || got[5] != 2 {
		t.Errorf("clamped values %v", got)
	}
}

func TestEvaluate(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, cfg, []int64{1, 2}, 2, 12)

	f := fe.Evaluate(pv.DefaultVector())
	if f == invalidPenalty || math.IsNaN(f) {
		t.Fatalf("fitness = %f", f)
	}
	if fe.LastBest() != -f {
		t.Errorf("LastBest %f, want %f", fe.LastBest(), -f)
	}
	pop, gen := fe.BestPopulation()
	if len(pop) != 12 || gen != 1 {
		t.Errorf("best population has %d individuals at generation %d", len(pop), gen)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{59, "0m59s"},
		{3725, "1h02m05s"},
	}
	for _, tt := range tests {
		if got := formatDuration(time.Duration(tt.secs) * time.Second); got != tt.want {
			t.Errorf("formatDuration(%ds) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
