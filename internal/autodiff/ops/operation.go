// Package ops implements differentiable elementwise operations on top of the
// gradient tape.
//
// Every operation follows the same contract:
//  1. Record its inputs on the tape (no-op if already tracked)
//  2. Compute the forward result into a new tensor
//  3. Record the result
//  4. Push a backward step that multiplies the result's gradient by the
//     analytic local derivative and contributes it to the inputs' slots
//
// Supported operations:
//   - ReLU, Sin, Cos, Ln, Exp, Sigmoid, Tanh, Square, Abs (unary)
//   - Add, Sub, Mul (same-shape binary), MulScalar
//   - Sum, Mean (reduce to a scalar)
package ops

import (
	"slices"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/parallel"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// parallelConfig controls how kernels are split across goroutines.
var parallelConfig = parallel.DefaultConfig()

// SetParallelism replaces the kernel parallelism config and returns the
// previous one. Not safe to call while operations are running.
func SetParallelism(cfg parallel.Config) parallel.Config {
	prev := parallelConfig
	parallelConfig = cfg
	return prev
}

// unaryOp describes an elementwise function and its derivative.
type unaryOp struct {
	name    string
	forward func(x float32) float32
	// derivative returns dy/dx given the input x and the output y.
	derivative func(x, y float32) float32
}

// applyUnary runs op over x, recording the backward step on tape.
func applyUnary[S tensor.Dims](op unaryOp, x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	xSlot := autodiff.Record(x, tape)

	out := tensor.New[S]()
	in, res := x.Data(), out.MutData()
	parallel.Chunks(len(in), func(start, end int) {
		for i := start; i < end; i++ {
			res[i] = op.forward(in[i])
		}
	}, parallelConfig)

	ySlot := autodiff.Record(out, tape)

	// Snapshot values so later in-place updates cannot change the derivative.
	xs, ys := slices.Clone(in), slices.Clone(res)
	tape.PushBackwardStep(autodiff.BackwardStep{
		Name:   op.name,
		Reads:  []tensor.Slot{ySlot},
		Writes: []tensor.Slot{xSlot},
		Derivative: func(ctx *autodiff.StepContext) {
			dy, dx := ctx.Upstream(0), ctx.Contribution(0)
			parallel.Chunks(len(dx), func(start, end int) {
				for i := start; i < end; i++ {
					dx[i] = dy[i] * op.derivative(xs[i], ys[i])
				}
			}, parallelConfig)
		},
	})

	return out
}
