// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms driven by the gradient tape.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Training Loop Pattern
//
//	tape := autodiff.NewGradientTape()
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//
//	for step := range numSteps {
//	    // 1. Start a fresh tape generation
//	    tape.Reset()
//
//	    // 2. Forward pass
//	    loss := autodiff.Mean(autodiff.Square(autodiff.Sub(autodiff.Mul(w, x, tape), y, tape), tape), tape)
//
//	    // 3. Backward pass
//	    autodiff.Backward(loss, tape)
//
//	    // 4. Update parameters
//	    opt.Step(tape, w)
//	}
//
// Plain SGD applies its learning rate by scaling the tape before
// autodiff.Update, so gradients read after Step are the scaled values.
package optim
