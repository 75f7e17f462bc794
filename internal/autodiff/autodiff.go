// Package autodiff implements reverse-mode automatic differentiation over
// fixed-shape tensors using a gradient tape.
//
// Architecture:
//   - GradientTape: arena of gradient buffers plus an ordered backward log
//   - tensor.Slot: opaque index a value holds into the arena
//   - Record: attaches a slot to a value on first use
//   - BackwardStep: derivative closure pushed by each differentiable op
//   - ExecuteBackward: replays steps last-to-first, summing contributions
//   - Update: consumes a value's slot and applies it to the value's data
//
// The trace is assumed to be straight-line: push order is a valid reverse
// topological order of the computation, so no graph sort is needed.
//
// Usage:
//
//	tape := autodiff.NewGradientTape()
//	x, _ := tensor.FromSlice[Vec2]([]float32{3, 4})
//	y := ops.Square(x, tape)
//	autodiff.Backward(y, tape)
//	fmt.Println(autodiff.Gradient(x, tape)) // [6 8]
//
// Contract violations (untracked update, foreign or stale slots, double
// replay) panic with an error wrapping one of the Err* sentinels.
package autodiff
