package ops

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

var squareOp = unaryOp{
	name:       "square",
	forward:    func(x float32) float32 { return x * x },
	derivative: func(x, _ float32) float32 { return 2 * x },
}

// Square computes x² element-wise.
func Square[S tensor.Dims](x *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[S] {
	return applyUnary(squareOp, x, tape)
}
