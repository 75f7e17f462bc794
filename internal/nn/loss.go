package nn

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Shapes are checked at compile time: predictions and targets share S.
func MSELoss[S tensor.Dims](predictions, targets *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return ops.Mean(ops.Square(ops.Sub(predictions, targets, tape), tape), tape)
}

// L1Loss computes Mean Absolute Error loss.
//
// Loss = mean(|predictions - targets|)
func L1Loss[S tensor.Dims](predictions, targets *tensor.Tensor[S], tape *autodiff.GradientTape) *tensor.Tensor[tensor.Scalar] {
	return ops.Mean(ops.Abs(ops.Sub(predictions, targets, tape), tape), tape)
}
