package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var absOp = unaryOp{
	name:    "abs",
	forward: func(x float32) float32 { return float32(math.Abs(float64(x))) },
	// Subgradient 0 at the kink.
	derivative: func(x, _ float32) float32 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	},
}

// Abs computes element-wise absolute value.
func Abs[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(absOp, x, tape)
}
