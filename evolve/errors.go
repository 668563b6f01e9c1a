package evolve

import (
	"errors"
	"fmt"
)

// ErrNoPartner is returned when a selection pool has only one distinct
// individual, so no pair can be formed.
var ErrNoPartner = errors.New("evolve: selection pool has no distinct partner")

// ErrAllFailed is wrapped in a GenerationError when no genome in a
// generation could be evaluated.
var ErrAllFailed = errors.New("evolve: every genome failed evaluation")

// GenerationError is a fatal, run-ending failure tied to one generation.
type GenerationError struct {
	Generation int
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %d: %v", e.Generation, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
