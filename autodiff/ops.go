// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/parallel"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// ParallelConfig controls how elementwise kernels are split across
// goroutines.
type ParallelConfig = parallel.Config

// SetParallelism replaces the kernel parallelism config and returns the
// previous one.
func SetParallelism(cfg ParallelConfig) ParallelConfig {
	return ops.SetParallelism(cfg)
}

// ReLU applies max(0, x) element-wise.
func ReLU[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.ReLU(x, tape)
}

// Sin computes element-wise sine.
func Sin[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Sin(x, tape)
}

// Cos computes element-wise cosine.
func Cos[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Cos(x, tape)
}

// Ln computes element-wise natural logarithm.
func Ln[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Ln(x, tape)
}

// Exp computes element-wise e^x.
func Exp[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Exp(x, tape)
}

// Sigmoid computes element-wise 1 / (1 + e^-x).
func Sigmoid[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Sigmoid(x, tape)
}

// Tanh computes element-wise hyperbolic tangent.
func Tanh[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Tanh(x, tape)
}

// Square computes element-wise x².
func Square[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Square(x, tape)
}

// Abs computes element-wise absolute value.
func Abs[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Abs(x, tape)
}

// Add computes a + b.
func Add[S tensor.Dims](a, b *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Add(a, b, tape)
}

// Sub computes a - b.
func Sub[S tensor.Dims](a, b *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Sub(a, b, tape)
}

// Mul computes the element-wise product a * b.
func Mul[S tensor.Dims](a, b *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[S] {
	return ops.Mul(a, b, tape)
}

// MulScalar multiplies every element of x by c.
func MulScalar[S tensor.Dims](x *tensor.Tensor[S], c float32, tape *GradientTape) *tensor.Tensor[S] {
	return ops.MulScalar(x, c, tape)
}

// Sum reduces x to the sum of its elements.
func Sum[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[tensor.Scalar] {
	return ops.Sum(x, tape)
}

// Mean reduces x to the mean of its elements.
func Mean[S tensor.Dims](x *tensor.Tensor[S], tape *GradientTape) *tensor.Tensor[tensor.Scalar] {
	return ops.Mean(x, tape)
}

// CheckResult compares analytic and finite-difference gradients.
type CheckResult = ops.CheckResult

// CheckGradient compares the tape gradient of sum(fn(x)) at input with
// central differences of step eps.
func CheckGradient[S tensor.Dims](name string, fn func(*tensor.Tensor[S], *GradientTape) *tensor.Tensor[S], input []float32, eps float32) (CheckResult, error) {
	return ops.CheckGradient(name, ops.UnaryFunc[S](fn), input, eps)
}
