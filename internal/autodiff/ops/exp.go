package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var expOp = unaryOp{
	name:    "exp",
	forward: func(x float32) float32 { return float32(math.Exp(float64(x))) },
	// d(exp(x))/dx = exp(x), which is the output itself
	derivative: func(_, y float32) float32 { return y },
}

// Exp computes element-wise exponential.
func Exp[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(expOp, x, tape)
}
