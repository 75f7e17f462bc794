package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/optim"
	"github.com/born-ml/tapegrad/tensor"
)

type four struct{}

func (four) Shape() tensor.Shape { return tensor.Shape{4} }

type vec2 struct{}

func (vec2) Shape() tensor.Shape { return tensor.Shape{2} }

func TestPublicAPI_Shapes(t *testing.T) {
	x := tensor.Zeros[tensor.Batch[four, vec2]]()
	assert.Equal(t, tensor.Shape{4, 2}, x.Shape())
	assert.Equal(t, 8, x.NumElements())

	s := tensor.Full[tensor.Scalar](2.5)
	assert.Equal(t, float32(2.5), s.Item())

	_, err := tensor.FromSlice[vec2]([]float32{1, 2, 3})
	assert.Error(t, err)
}

func TestPublicAPI_SquareScenario(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x, err := tensor.FromSlice[vec2]([]float32{3, 4})
	require.NoError(t, err)

	autodiff.Backward(autodiff.Sum(autodiff.Square(x, tape), tape), tape)
	assert.Equal(t, []float32{6, 8}, autodiff.Gradient(x, tape))

	optim.NewSGD(optim.SGDConfig{LR: 0.1}).Step(tape, x)
	assert.InDeltaSlice(t, []float32{2.4, 3.2}, x.Data(), 1e-6)
}

func TestPublicAPI_CheckGradient(t *testing.T) {
	res, err := autodiff.CheckGradient[vec2]("tanh", autodiff.Tanh[vec2], []float32{0.2, -0.7}, 1e-2)
	require.NoError(t, err)
	assert.True(t, res.OK(1e-2))
}
