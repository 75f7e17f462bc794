package nn

import (
	"github.com/born-ml/tapegrad/internal/tensor"
)

// Parameter represents a trainable parameter in a model.
//
// It embeds its tensor, so a Parameter can be handed to optimizers and
// checkpoints directly; operations take the embedded Tensor.
//
// Example:
//
//	w := nn.NewParameter("weight", tensor.Zeros[Vec8]())
//	y := ops.Mul(w.Tensor, x, tape)
//	...
//	opt.Step(tape, w)
type Parameter[S tensor.Dims] struct {
	*tensor.Tensor[S]
	name string // Parameter name (e.g., "weight", "bias")
}

// NewParameter creates a new trainable parameter wrapping t.
func NewParameter[S tensor.Dims](name string, t *tensor.Tensor[S]) *Parameter[S] {
	return &Parameter[S]{Tensor: t, name: name}
}

// Name returns the parameter name.
func (p *Parameter[S]) Name() string {
	return p.name
}
