// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// fixed-shape tensors using a gradient tape.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tapegrad/autodiff"
//	    "github.com/born-ml/tapegrad/tensor"
//	)
//
//	func main() {
//	    tape := autodiff.NewGradientTape()
//	    x, _ := tensor.FromSlice[Vec2]([]float32{3, 4})
//
//	    y := autodiff.Sum(autodiff.Square(x, tape), tape)
//	    autodiff.Backward(y, tape)
//
//	    fmt.Println(autodiff.Gradient(x, tape)) // [6 8]
//	}
//
// Contract violations (updating an untracked value, foreign or stale slots,
// replaying twice) panic with an error wrapping one of the Err* sentinels.
package autodiff

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
)

// GradientTape records backward steps and owns every gradient buffer.
type GradientTape = autodiff.GradientTape

// Option configures a GradientTape.
type Option = autodiff.Option

// BackwardStep is one recorded derivative closure with the slots it reads
// and writes.
type BackwardStep = autodiff.BackwardStep

// StepContext gives a running derivative access to upstream gradients and
// its contribution buffers.
type StepContext = autodiff.StepContext

// Tracked is a value the tape can attach a gradient slot to.
type Tracked = autodiff.Tracked

// Trainable is a tracked value whose data can be updated in place.
type Trainable = autodiff.Trainable

// Contract violation sentinels.
var (
	ErrNoGradient      = autodiff.ErrNoGradient
	ErrNotRecorded     = autodiff.ErrNotRecorded
	ErrForeignSlot     = autodiff.ErrForeignSlot
	ErrStaleSlot       = autodiff.ErrStaleSlot
	ErrSeedShape       = autodiff.ErrSeedShape
	ErrAlreadyExecuted = autodiff.ErrAlreadyExecuted
	ErrShapeMismatch   = autodiff.ErrShapeMismatch
)

// NewGradientTape creates a new gradient tape.
func NewGradientTape(opts ...Option) *GradientTape {
	return autodiff.NewGradientTape(opts...)
}

// WithLogger, WithCapacity configure a new tape.
var (
	WithLogger   = autodiff.WithLogger
	WithCapacity = autodiff.WithCapacity
)

// Backward seeds v with ones and runs the backward pass.
func Backward(v Tracked, tape *GradientTape) {
	autodiff.Backward(v, tape)
}

// Gradient returns a copy of v's accumulated gradient.
func Gradient(v Tracked, tape *GradientTape) []float32 {
	return autodiff.Gradient(v, tape)
}

// ScaleGradient multiplies v's accumulated gradient by factor in place.
func ScaleGradient(v Tracked, tape *GradientTape, factor float32) {
	autodiff.ScaleGradient(v, tape, factor)
}

// Update subtracts v's gradient from its data and clears v's handle.
func Update(v Trainable, tape *GradientTape) {
	autodiff.Update(v, tape)
}

// UpdateWith consumes v's handle and hands its data and gradient to apply.
func UpdateWith(v Trainable, tape *GradientTape, apply func(data, grad []float32)) {
	autodiff.UpdateWith(v, tape, apply)
}
