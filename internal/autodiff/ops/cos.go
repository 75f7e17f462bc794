package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var cosOp = unaryOp{
	name:    "cos",
	forward: func(x float32) float32 { return float32(math.Cos(float64(x))) },
	// d(cos(x))/dx = -sin(x)
	derivative: func(x, _ float32) float32 { return -float32(math.Sin(float64(x))) },
}

// Cos computes element-wise cosine.
func Cos[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(cosOp, x, tape)
}
