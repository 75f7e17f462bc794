package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// UnaryFunc is a differentiable function of one tensor.
type UnaryFunc[S tensor.Dims] func(*tensor.Tensor[S], *autodiff.GradientTape) *tensor.Tensor[S]

// NamedUnary pairs a unary operation with its name.
type NamedUnary[S tensor.Dims] struct {
	Name string
	Fn   UnaryFunc[S]
}

// Activations returns every elementwise activation instantiated for shape S.
func Activations[S tensor.Dims]() []NamedUnary[S] {
	return []NamedUnary[S]{
		{"relu", ReLU[S]},
		{"sin", Sin[S]},
		{"cos", Cos[S]},
		{"ln", Ln[S]},
		{"exp", Exp[S]},
		{"sigmoid", Sigmoid[S]},
		{"tanh", Tanh[S]},
		{"square", Square[S]},
		{"abs", Abs[S]},
	}
}

// CheckResult compares the tape gradient of sum(fn(x)) with central
// finite differences.
type CheckResult struct {
	Op        string
	Analytic  []float32
	Numerical []float32
	MaxError  float64 // Largest relative error over all elements
}

// OK reports whether every element agrees within tol.
func (r CheckResult) OK(tol float64) bool {
	return r.MaxError <= tol
}

// CheckGradient evaluates fn at input and compares the backward-pass gradient
// of sum(fn(x)) with (f(x+h) - f(x-h)) / 2h for every element.
//
// Inputs must stay away from non-differentiable points (e.g. 0 for relu/abs)
// by more than eps.
func CheckGradient[S tensor.Dims](name string, fn UnaryFunc[S], input []float32, eps float32) (CheckResult, error) {
	x, err := tensor.FromSlice[S](input)
	if err != nil {
		return CheckResult{}, fmt.Errorf("gradient check %s: %w", name, err)
	}

	tape := autodiff.NewGradientTape()
	autodiff.Backward(Sum(fn(x, tape), tape), tape)
	analytic := autodiff.Gradient(x, tape)

	numerical := make([]float32, len(input))
	probe := x.Clone()
	data := probe.MutData()
	for i := range data {
		original := data[i]

		data[i] = original + eps
		fPlus := evalSum(fn, probe)

		data[i] = original - eps
		fMinus := evalSum(fn, probe)

		data[i] = original
		numerical[i] = float32((fPlus - fMinus) / (2 * float64(eps)))
	}

	result := CheckResult{Op: name, Analytic: analytic, Numerical: numerical}
	for i := range analytic {
		a, n := float64(analytic[i]), float64(numerical[i])
		relErr := math.Abs(a-n) / math.Max(1, math.Abs(a)+math.Abs(n))
		result.MaxError = math.Max(result.MaxError, relErr)
	}
	return result, nil
}

// evalSum runs fn on a detached copy of x and sums the output in float64.
func evalSum[S tensor.Dims](fn UnaryFunc[S], x *tensor.Tensor[S]) float64 {
	var total float64
	for _, v := range fn(x.Clone(), autodiff.NewGradientTape()).Data() {
		total += float64(v)
	}
	return total
}
