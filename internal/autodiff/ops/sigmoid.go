package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var sigmoidOp = unaryOp{
	name:    "sigmoid",
	forward: func(x float32) float32 { return float32(1.0 / (1.0 + math.Exp(float64(-x)))) },
	// dσ/dx = σ(x) * (1 - σ(x)), computed from the stored output
	derivative: func(_, y float32) float32 { return y * (1 - y) },
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)).
func Sigmoid[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(sigmoidOp, x, tape)
}
