// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable parameters, loss functions, initializers and
// checkpoints on top of the gradient tape.
//
// # Overview
//
// This package contains:
//   - Parameter: a named tensor that optimizers update in place
//   - Module: anything that exposes its parameters
//   - Loss functions: MSELoss, L1Loss
//   - Initialization: Xavier, Normal
//   - Checkpoint: parameters plus optimizer state on disk
//
// # Basic Usage
//
//	type model struct {
//	    w *nn.Parameter[Vec8]
//	}
//
//	func (m *model) Parameters() []nn.Param { return []nn.Param{m.w} }
//
//	m := &model{w: nn.NewParameter("w", nn.Xavier[Vec8](rng, 8, 1))}
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//
//	for step := 0; step < 100; step++ {
//	    tape.Reset()
//	    loss := nn.MSELoss(autodiff.Mul(m.w.Tensor, x, tape), y, tape)
//	    autodiff.Backward(loss, tape)
//	    opt.Step(tape, nn.Trainables(m.Parameters())...)
//	}
//
// # Checkpoints
//
//	ckpt := &nn.Checkpoint{Model: m, Optimizer: opt, OptimizerName: "sgd", Step: 100}
//	err := ckpt.Save("model.tgrd")
//
//	restored, err := nn.LoadCheckpoint("model.tgrd", m, opt)
package nn
