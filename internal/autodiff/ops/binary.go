package ops

import (
	"slices"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/parallel"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// binaryOp describes a same-shape elementwise function of two inputs.
type binaryOp struct {
	name    string
	forward func(a, b float32) float32
	// partials returns ∂y/∂a and ∂y/∂b at (a, b).
	partials func(a, b float32) (float32, float32)
}

// applyBinary runs op over a and b, recording the backward step on tape.
//
// a and b may be the same tensor: both contributions then land in one slot
// and are summed by the tape.
func applyBinary[S tensor.Dims](op binaryOp, a, b *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	aSlot := autodiff.Record(a, tape)
	bSlot := autodiff.Record(b, tape)

	out := tensor.New[S]()
	ad, bd, res := a.Data(), b.Data(), out.MutData()
	parallel.Chunks(len(res), func(start, end int) {
		for i := start; i < end; i++ {
			res[i] = op.forward(ad[i], bd[i])
		}
	}, parallelConfig)

	ySlot := autodiff.Record(out, tape)

	as, bs := slices.Clone(ad), slices.Clone(bd)
	tape.PushBackwardStep(autodiff.BackwardStep{
		Name:   op.name,
		Reads:  []tensor.Slot{ySlot},
		Writes: []tensor.Slot{aSlot, bSlot},
		Derivative: func(ctx *autodiff.StepContext) {
			dy := ctx.Upstream(0)
			da, db := ctx.Contribution(0), ctx.Contribution(1)
			parallel.Chunks(len(dy), func(start, end int) {
				for i := start; i < end; i++ {
					pa, pb := op.partials(as[i], bs[i])
					da[i] = dy[i] * pa
					db[i] = dy[i] * pb
				}
			}, parallelConfig)
		},
	})

	return out
}

var addOp = binaryOp{
	name:     "add",
	forward:  func(a, b float32) float32 { return a + b },
	partials: func(_, _ float32) (float32, float32) { return 1, 1 },
}

var subOp = binaryOp{
	name:     "sub",
	forward:  func(a, b float32) float32 { return a - b },
	partials: func(_, _ float32) (float32, float32) { return 1, -1 },
}

// d(a*b)/da = b, d(a*b)/db = a
var mulOp = binaryOp{
	name:     "mul",
	forward:  func(a, b float32) float32 { return a * b },
	partials: func(a, b float32) (float32, float32) { return b, a },
}

// Add computes a + b element-wise.
func Add[S tensor.Dims](a, b *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyBinary(addOp, a, b, tape)
}

// Sub computes a - b element-wise.
func Sub[S tensor.Dims](a, b *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyBinary(subOp, a, b, tape)
}

// Mul computes a * b element-wise.
func Mul[S tensor.Dims](a, b *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyBinary(mulOp, a, b, tape)
}

// MulScalar multiplies every element of x by c.
func MulScalar[S tensor.Dims](x *tensor.Tensor[S], c float32, tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(unaryOp{
		name:       "mul_scalar",
		forward:    func(x float32) float32 { return x * c },
		derivative: func(_, _ float32) float32 { return c },
	}, x, tape)
}
