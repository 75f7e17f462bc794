package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/nn"
	"github.com/born-ml/tapegrad/optim"
	"github.com/born-ml/tapegrad/tensor"
)

type vec2 struct{}

func (vec2) Shape() tensor.Shape { return tensor.Shape{2} }

type scaler struct {
	w *nn.Parameter[vec2]
}

func (m *scaler) Parameters() []nn.Param { return []nn.Param{m.w} }

func TestPublicAPI_TrainAndCheckpoint(t *testing.T) {
	m := &scaler{w: nn.NewParameter("w", tensor.Zeros[vec2]())}
	x, err := tensor.FromSlice[vec2]([]float32{1, 2})
	require.NoError(t, err)
	y, err := tensor.FromSlice[vec2]([]float32{3, -2})
	require.NoError(t, err)

	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	tape := autodiff.NewGradientTape()
	for range 200 {
		tape.Reset()
		loss := nn.MSELoss(autodiff.Mul(m.w.Tensor, x, tape), y, tape)
		autodiff.Backward(loss, tape)
		opt.Step(tape, nn.Trainables(m.Parameters())...)
	}
	assert.InDeltaSlice(t, []float32{3, -1}, m.w.Data(), 1e-3)

	path := filepath.Join(t.TempDir(), "scaler.tgrd")
	ckpt := &nn.Checkpoint{Model: m, Optimizer: opt, OptimizerName: "sgd", Step: 200}
	require.NoError(t, ckpt.Save(path))

	restored := &scaler{w: nn.NewParameter("w", tensor.Zeros[vec2]())}
	loaded, err := nn.LoadCheckpoint(path, restored, optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.5}))
	require.NoError(t, err)
	assert.Equal(t, int64(200), loaded.Step)
	assert.Equal(t, m.w.Data(), restored.w.Data())
}
