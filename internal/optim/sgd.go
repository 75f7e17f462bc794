package optim

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Without momentum the learning rate is applied by scaling the tape, so the
// parameter update itself is a plain autodiff.Update.
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//
//	for step := range steps {
//	    tape.Reset()
//	    loss := forward(params, tape)
//	    autodiff.Backward(loss, tape)
//	    opt.Step(tape, params...)
//	}
type SGD struct {
	lr         float32
	momentum   float32
	velocities [][]float32 // Indexed by parameter position
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{lr: config.LR, momentum: config.Momentum}
}

// Step performs a single optimization step.
//
// Without momentum each parameter's gradient is scaled by the learning rate in
// place before Update, so gradients resolved afterwards reflect the scaled
// values. Slots of values not passed in are left alone, which lets several
// parameter groups step on one tape.
func (s *SGD) Step(tape *autodiff.GradientTape, params ...autodiff.Trainable) {
	if s.momentum == 0 {
		for _, p := range params {
			autodiff.ScaleGradient(p, tape, s.lr)
			autodiff.Update(p, tape)
		}
		return
	}

	for i, p := range params {
		autodiff.UpdateWith(p, tape, func(data, grad []float32) {
			var velocity []float32
			s.velocities, velocity = stateBuffer(s.velocities, i, len(data))
			for j := range data {
				velocity[j] = s.momentum*velocity[j] + grad[j]
				data[j] -= s.lr * velocity[j]
			}
		})
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// With momentum this exports velocity buffers as "velocity.{param_index}".
// Without momentum, returns an empty map.
func (s *SGD) StateDict() map[string][]float32 {
	dict := make(map[string][]float32)
	if s.momentum != 0 {
		exportState(dict, "velocity", s.velocities)
	}
	return dict
}

// LoadStateDict restores velocity buffers written by StateDict.
// A buffer whose length does not match its parameter panics on the next Step.
func (s *SGD) LoadStateDict(dict map[string][]float32) error {
	if s.momentum == 0 {
		return nil
	}
	velocities, err := importState(dict, "velocity")
	if err != nil {
		return err
	}
	s.velocities = velocities
	return nil
}
