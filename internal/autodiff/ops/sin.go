package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var sinOp = unaryOp{
	name:    "sin",
	forward: func(x float32) float32 { return float32(math.Sin(float64(x))) },
	// d(sin(x))/dx = cos(x)
	derivative: func(x, _ float32) float32 { return float32(math.Cos(float64(x))) },
}

// Sin computes element-wise sine.
func Sin[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(sinOp, x, tape)
}
