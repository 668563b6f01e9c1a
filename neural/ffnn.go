// Package neural provides the snake's senses and its fixed-topology
// feed-forward brain.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network dimensions. NumInputs must equal NumEyes*SightWidth.
const (
	NumInputs  = NumEyes * SightWidth // 15
	NumHidden  = 15
	NumOutputs = 5 // four turns and "keep going"
)

// Flattened weight counts, as stored in a genome.
const (
	W1Len = NumHidden * NumInputs
	W2Len = NumOutputs * NumHidden
)

// ErrWeightShape is returned when supplied weights cannot be reshaped into
// the network's matrices.
var ErrWeightShape = errors.New("neural: weight shape mismatch")

// Brain is a two-layer sigmoid network: out = σ(W2 · σ(W1 · in)).
// Weights never change after construction.
type Brain struct {
	w1 *mat.Dense // NumHidden x NumInputs
	w2 *mat.Dense // NumOutputs x NumHidden
}

// NewBrain reshapes row-major w1 (15x15) and w2 (5x15) into a Brain. If
// either slice is empty, both matrices are filled with uniform random
// weights in [-1, 1) drawn from rng.
func NewBrain(w1, w2 []float64, rng *rand.Rand) (*Brain, error) {
	if len(w1) == 0 || len(w2) == 0 {
		return RandomBrain(rng), nil
	}
	if len(w1) != W1Len {
		return nil, fmt.Errorf("%w: w1 has %d values, want %d", ErrWeightShape, len(w1), W1Len)
	}
	if len(w2) != W2Len {
		return nil, fmt.Errorf("%w: w2 has %d values, want %d", ErrWeightShape, len(w2), W2Len)
	}

	// mat.NewDense keeps the backing slice; copy so the genome stays ours.
	return &Brain{
		w1: mat.NewDense(NumHidden, NumInputs, append([]float64(nil), w1...)),
		w2: mat.NewDense(NumOutputs, NumHidden, append([]float64(nil), w2...)),
	}, nil
}

// RandomBrain builds a brain with uniform random weights in [-1, 1).
func RandomBrain(rng *rand.Rand) *Brain {
	w1 := make([]float64, W1Len)
	for i := range w1 {
		w1[i] = rng.Float64()*2 - 1
	}
	w2 := make([]float64, W2Len)
	for i := range w2 {
		w2[i] = rng.Float64()*2 - 1
	}
	return &Brain{
		w1: mat.NewDense(NumHidden, NumInputs, w1),
		w2: mat.NewDense(NumOutputs, NumHidden, w2),
	}
}

// Forward runs the network on a flattened observation of length NumInputs.
func (b *Brain) Forward(input []float64) []float64 {
	in := mat.NewVecDense(NumInputs, input)

	var hidden mat.VecDense
	hidden.MulVec(b.w1, in)
	applySigmoid(&hidden)

	var out mat.VecDense
	out.MulVec(b.w2, &hidden)
	applySigmoid(&out)

	return out.RawVector().Data
}

// Decide returns the index of the strongest output. Ties go to the lowest
// index.
func (b *Brain) Decide(input []float64) int {
	return floats.MaxIdx(b.Forward(input))
}

// Weights returns row-major copies of both weight matrices.
func (b *Brain) Weights() (w1, w2 []float64) {
	return append([]float64(nil), b.w1.RawMatrix().Data...),
		append([]float64(nil), b.w2.RawMatrix().Data...)
}

func applySigmoid(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, sigmoid(v.AtVec(i)))
	}
}

// sigmoid is the logistic function. It saturates cleanly to 0 or 1 for large
// magnitudes since 1/(1+Inf) is 0.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
