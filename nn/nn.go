// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/internal/nn"
	"github.com/born-ml/tapegrad/optim"
	"github.com/born-ml/tapegrad/tensor"
)

// Param is a named trainable value.
type Param = nn.Param

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter[S tensor.Dims] = nn.Parameter[S]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[S tensor.Dims](name string, t *tensor.Tensor[S]) *Parameter[S] {
	return nn.NewParameter(name, t)
}

// Trainables converts parameters into the form optimizers accept.
func Trainables(params []Param) []autodiff.Trainable {
	return nn.Trainables(params)
}

// Loss functions

// MSELoss computes the mean squared error between predictions and targets.
//
// Example:
//
//	loss := nn.MSELoss(pred, target, tape)
//	autodiff.Backward(loss, tape)
func MSELoss[S tensor.Dims](predictions, targets *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return nn.MSELoss(predictions, targets, tape)
}

// L1Loss computes the mean absolute error between predictions and targets.
func L1Loss[S tensor.Dims](predictions, targets *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return nn.L1Loss(predictions, targets, tape)
}

// Initialization

// Xavier returns a tensor drawn from the Xavier/Glorot uniform distribution.
func Xavier[S tensor.Dims](rng *rand.Rand, fanIn, fanOut int) *tensor.Tensor[S] {
	return nn.Xavier[S](rng, fanIn, fanOut)
}

// Normal returns a tensor drawn from N(0, std²).
func Normal[S tensor.Dims](rng *rand.Rand, std float64) *tensor.Tensor[S] {
	return nn.Normal[S](rng, std)
}

// Checkpoints

// Checkpoint represents a training state snapshot.
type Checkpoint = nn.Checkpoint

// LoadCheckpoint restores model parameters and optimizer state from path.
func LoadCheckpoint(path string, model Module, opt optim.Optimizer) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model, opt)
}
