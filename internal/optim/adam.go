package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Adam reads raw gradients, so the tape must not be scaled before Step.
type Adam struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	t     int         // Timestep for bias correction
	m     [][]float32 // First moment estimates, by parameter position
	v     [][]float32 // Second moment estimates, by parameter position
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, filling unset hyperparameters with
// their defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Step performs a single optimization step using Adam algorithm.
func (a *Adam) Step(tape *autodiff.GradientTape, params ...autodiff.Trainable) {
	a.t++
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for i, p := range params {
		autodiff.UpdateWith(p, tape, func(data, grad []float32) {
			var m, v []float32
			a.m, m = stateBuffer(a.m, i, len(data))
			a.v, v = stateBuffer(a.v, i, len(data))

			for j, g := range grad {
				m[j] = a.beta1*m[j] + (1.0-a.beta1)*g
				v[j] = a.beta2*v[j] + (1.0-a.beta2)*g*g

				mHat := m[j] / biasCorrection1
				vHat := v[j] / biasCorrection2
				data[j] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
			}
		})
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// State keys:
//   - "m.{param_index}": first moment
//   - "v.{param_index}": second moment
//   - "t": timestep as {low 16 bits, remaining high bits}, exact up to 2^40
func (a *Adam) StateDict() map[string][]float32 {
	dict := map[string][]float32{"t": {float32(a.t & 0xFFFF), float32(a.t >> 16)}}
	exportState(dict, "m", a.m)
	exportState(dict, "v", a.v)
	return dict
}

// LoadStateDict restores state written by StateDict. A missing "t" restarts
// bias correction from step zero.
func (a *Adam) LoadStateDict(dict map[string][]float32) error {
	step, err := importStep(dict["t"])
	if err != nil {
		return err
	}
	m, err := importState(dict, "m")
	if err != nil {
		return err
	}
	v, err := importState(dict, "v")
	if err != nil {
		return err
	}
	a.m, a.v, a.t = m, v, step
	return nil
}

// importStep decodes the "t" entry. A single element is accepted as a plain
// step count.
func importStep(t []float32) (int, error) {
	for _, x := range t {
		if x < 0 || x != float32(math.Trunc(float64(x))) {
			return 0, fmt.Errorf("invalid adam timestep %v", t)
		}
	}
	switch len(t) {
	case 0:
		return 0, nil
	case 1:
		return int(t[0]), nil
	case 2:
		if t[0] > 0xFFFF {
			return 0, fmt.Errorf("invalid adam timestep %v", t)
		}
		return int(t[1])<<16 | int(t[0]), nil
	default:
		return 0, fmt.Errorf("invalid adam timestep %v", t)
	}
}
