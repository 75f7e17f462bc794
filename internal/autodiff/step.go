package autodiff

import "github.com/born-ml/tapegrad/internal/tensor"

// Derivative computes the gradient contributions of one backward step.
//
// It reads downstream gradients with ctx.Upstream and writes contributions
// into ctx.Contribution buffers. The tape adds every contribution to its
// target slot after the function returns.
type Derivative func(ctx *StepContext)

// BackwardStep is one recorded unit of backward work.
//
// Example for y = x²:
//
//	tape.PushBackwardStep(autodiff.BackwardStep{
//	    Name:   "square",
//	    Reads:  []tensor.Slot{ySlot},
//	    Writes: []tensor.Slot{xSlot},
//	    Derivative: func(ctx *autodiff.StepContext) {
//	        dy, dx := ctx.Upstream(0), ctx.Contribution(0)
//	        for i := range dx {
//	            dx[i] = 2 * x[i] * dy[i]
//	        }
//	    },
//	})
type BackwardStep struct {
	Name       string        // Operation name, for logging
	Reads      []tensor.Slot // Slots supplying incoming gradient
	Writes     []tensor.Slot // Slots receiving outgoing gradient
	Derivative Derivative    // Local derivative, applied during replay
}

// StepContext gives a Derivative access to the tape buffers it declared.
type StepContext struct {
	tape    *GradientTape
	step    *BackwardStep
	scratch [][]float32
}

// Upstream returns the accumulated gradient of the i-th read slot.
// The slice aliases tape storage and must not be modified.
func (c *StepContext) Upstream(i int) []float32 {
	return c.tape.buffer(c.step.Reads[i])
}

// Contribution returns a zeroed buffer for the i-th write slot.
// Whatever the derivative leaves in it is added to that slot.
func (c *StepContext) Contribution(i int) []float32 {
	return c.scratch[i]
}
