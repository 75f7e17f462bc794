package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var lnOp = unaryOp{
	name:    "ln",
	forward: func(x float32) float32 { return float32(math.Log(float64(x))) },
	// ∂L/∂input = ∂L/∂output * (1 / input)
	derivative: func(x, _ float32) float32 { return 1 / x },
}

// Ln computes element-wise natural logarithm.
//
// Input values must be positive; zero yields -Inf and negatives yield NaN,
// which propagate through the backward pass unchanged.
func Ln[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(lnOp, x, tape)
}
