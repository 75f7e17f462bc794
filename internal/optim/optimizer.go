// Package optim implements optimization algorithms on top of the gradient
// tape.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// An optimizer consumes each parameter's gradient handle after the backward
// pass. Plain SGD scales the whole tape by the learning rate and then calls
// autodiff.Update; stateful optimizers go through autodiff.UpdateWith.
//
// Example usage:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//
//	for step := range steps {
//	    tape.Reset()
//	    loss := ops.Mean(ops.Square(ops.Sub(ops.Mul(w, x, tape), y, tape), tape), tape)
//	    autodiff.Backward(loss, tape)
//	    opt.Step(tape, w)
//	}
package optim

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/serialization"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - GetLR: Get current learning rate (for monitoring/scheduling)
//   - SetLR: Change the learning rate between steps
type Optimizer interface {
	// Step applies the gradients accumulated on tape to params in place and
	// consumes their gradient handles.
	//
	// Every param must have been recorded on tape in its current generation.
	// Parameters are identified by position, so pass them in the same order
	// on every call.
	//
	// Step only touches the gradients of params, so separate parameter
	// groups may each call Step on the same tape. Passing the same param
	// twice panics with autodiff.ErrNoGradient.
	Step(tape *autodiff.GradientTape, params ...autodiff.Trainable)

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate.
	SetLR(lr float32)
}

// Stateful is implemented by optimizers whose per-parameter state can be
// checkpointed.
type Stateful interface {
	StateDict() map[string][]float32
	LoadStateDict(dict map[string][]float32) error
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// New creates an optimizer by name ("sgd" or "adam") with default
// hyperparameters apart from the learning rate.
func New(name string, config Config) (Optimizer, error) {
	switch name {
	case "sgd":
		return NewSGD(SGDConfig{LR: config.LR}), nil
	case "adam":
		return NewAdam(AdamConfig{LR: config.LR}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want sgd or adam)", name)
	}
}

// stateBuffer returns buffers[i], growing the slice and allocating a zeroed
// buffer of length n on first use. Panics if a restored buffer has a
// different length than the parameter it belongs to.
func stateBuffer(buffers [][]float32, i, n int) ([][]float32, []float32) {
	for len(buffers) <= i {
		buffers = append(buffers, nil)
	}
	switch {
	case buffers[i] == nil:
		buffers[i] = make([]float32, n)
	case len(buffers[i]) != n:
		panic(fmt.Errorf("%w: optimizer state for parameter %d has %d elements, parameter has %d",
			autodiff.ErrShapeMismatch, i, len(buffers[i]), n))
	}
	return buffers, buffers[i]
}

// exportState copies buffers into dict under "prefix.index" keys.
func exportState(dict map[string][]float32, prefix string, buffers [][]float32) {
	for i, buf := range buffers {
		if buf == nil {
			continue // No state yet (parameter not stepped)
		}
		dict[fmt.Sprintf("%s.%d", prefix, i)] = slices.Clone(buf)
	}
}

// importState restores the buffers exportState wrote under prefix. Indices
// are bounded by serialization.MaxTensorCount, the most entries a checkpoint
// can hold.
func importState(dict map[string][]float32, prefix string) ([][]float32, error) {
	var buffers [][]float32
	for key, buf := range dict {
		rest, ok := strings.CutPrefix(key, prefix+".")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 || i >= serialization.MaxTensorCount {
			return nil, fmt.Errorf("invalid optimizer state key %q", key)
		}
		for len(buffers) <= i {
			buffers = append(buffers, nil)
		}
		buffers[i] = slices.Clone(buf)
	}
	return buffers, nil
}
