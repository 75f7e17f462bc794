package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var tanhOp = unaryOp{
	name:    "tanh",
	forward: func(x float32) float32 { return float32(math.Tanh(float64(x))) },
	// d(tanh(x))/dx = 1 - tanh²(x)
	derivative: func(_, y float32) float32 { return 1 - y*y },
}

// Tanh applies hyperbolic tangent.
func Tanh[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(tanhOp, x, tape)
}
