// Package nn provides named parameters, losses and checkpointing on top of
// the gradient tape.
//
// This package provides:
//   - Parameter: a named trainable tensor
//   - Module interface: anything that owns parameters
//   - Loss functions: MSE, L1
//   - Initializers: Xavier, Normal
//   - Checkpoint: parameters plus optimizer state in one .tgrd file
package nn

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// Param is a named trainable value of any shape.
type Param interface {
	autodiff.Trainable
	tensor.ShapeContract
	Name() string
}

// Module is the base interface for components that own trainable
// parameters.
//
// Parameters must return the same parameters in the same order on every
// call; optimizers and checkpoints identify them by position and name.
type Module interface {
	Parameters() []Param
}

// Trainables converts parameters to the form optimizers take.
func Trainables(params []Param) []autodiff.Trainable {
	out := make([]autodiff.Trainable, len(params))
	for i, p := range params {
		out[i] = p
	}
	return out
}
