package ops

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// Sum reduces x to a scalar holding the sum of its elements.
//
// Backward: every element of x receives the scalar's gradient.
func Sum[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return reduce("sum", x, 1, tape)
}

// Mean reduces x to a scalar holding the mean of its elements.
//
// Backward: every element of x receives the scalar's gradient divided by the
// element count.
func Mean[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return reduce("mean", x, 1/float32(x.NumElements()), tape)
}

// reduce sums x scaled by factor into a scalar.
// Accumulation is sequential so the result is bit-reproducible.
func reduce[S tensor.Dims](name string, x *tensor.Tensor[S], factor float32, tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	xSlot := autodiff.Record(x, tape)

	var total float32
	for _, v := range x.Data() {
		total += v
	}
	out := tensor.Full[tensor.Scalar](total * factor)

	ySlot := autodiff.Record(out, tape)
	tape.PushBackwardStep(autodiff.BackwardStep{
		Name:   name,
		Reads:  []tensor.Slot{ySlot},
		Writes: []tensor.Slot{xSlot},
		Derivative: func(ctx *autodiff.StepContext) {
			g := ctx.Upstream(0)[0] * factor
			dx := ctx.Contribution(0)
			for i := range dx {
				dx[i] = g
			}
		},
	})

	return out
}
