package main

import (
	"fmt"

	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/genome"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Weight mutation (w1 and w2 share settings)
			{Name: "w_sigma", Path: "genome.groups[w1,w2].sigma", Min: 1, Max: 100, Default: 50},
			{Name: "w_rate", Path: "genome.groups[w1,w2].rate", Min: 0.01, Max: 0.5, Default: 0.2},
			// Eye mutation
			{Name: "eye_sigma", Path: "genome.groups[eye_angles].sigma", Min: 0.05, Max: 2, Default: 1},
			{Name: "eye_rate", Path: "genome.groups[eye_angles].rate", Min: 0.001, Max: 0.3, Default: 0.01},
			// Selection
			{Name: "weight_power", Path: "evolution.weighting.power", Min: 0.5, Max: 4, Default: 1.4},
			{Name: "pool_top", Path: "evolution.pool.top", Min: 2, Max: 50, Default: 15},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config. The genome schema is
// copied so cfg never shares groups with another config.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	wSigma, wRate, eyeSigma, eyeRate, power, poolTop := clamped[0], clamped[1], clamped[2], clamped[3], clamped[4], clamped[5]

	groups := append(genome.Schema(nil), cfg.Genome.Groups...)
	for _, name := range []string{genome.GroupW1, genome.GroupW2, genome.GroupEyeAngles} {
		if _, ok := groups.Group(name); !ok {
			return fmt.Errorf("config has no %s group", name)
		}
	}
	for i := range groups {
		switch groups[i].Name {
		case genome.GroupW1, genome.GroupW2:
			groups[i].Sigma = wSigma
			groups[i].Rate = wRate
		case genome.GroupEyeAngles:
			groups[i].Sigma = eyeSigma
			groups[i].Rate = eyeRate
		}
	}
	cfg.Genome.Groups = groups

	cfg.Evolution.Weighting.Power = power
	cfg.Evolution.Pool.Top = int(poolTop + 0.5)
	return nil
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := pv.DefaultVector()
	if g, ok := cfg.Schema().Group(genome.GroupW1); ok {
		v[0], v[1] = g.Sigma, g.Rate
	}
	if g, ok := cfg.Schema().Group(genome.GroupEyeAngles); ok {
		v[2], v[3] = g.Sigma, g.Rate
	}
	v[4] = cfg.Evolution.Weighting.Power
	v[5] = float64(cfg.Evolution.Pool.Top)
	return v
}

// EvalRecord is one row of the optimization log.
type EvalRecord struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	WSigma      float64 `csv:"w_sigma"`
	WRate       float64 `csv:"w_rate"`
	EyeSigma    float64 `csv:"eye_sigma"`
	EyeRate     float64 `csv:"eye_rate"`
	WeightPower float64 `csv:"weight_power"`
	PoolTop     float64 `csv:"pool_top"`
	Seconds     float64 `csv:"seconds"`
}

// Record lays clamped parameter values out as a log row.
func (pv *ParamVector) Record(eval int, fitness float64, clamped []float64, seconds float64) EvalRecord {
	return EvalRecord{
		Eval:        eval,
		Fitness:     fitness,
		WSigma:      clamped[0],
		WRate:       clamped[1],
		EyeSigma:    clamped[2],
		EyeRate:     clamped[3],
		WeightPower: clamped[4],
		PoolTop:     clamped[5],
		Seconds:     seconds,
	}
}
