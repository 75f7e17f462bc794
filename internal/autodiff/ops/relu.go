package ops

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var reluOp = unaryOp{
	name: "relu",
	forward: func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	},
	// d(ReLU(x))/dx = 1 if x > 0, else 0
	derivative: func(x, _ float32) float32 {
		if x > 0 {
			return 1
		}
		return 0
	},
}

// ReLU applies the rectified linear unit max(0, x).
func ReLU[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(reluOp, x, tape)
}
