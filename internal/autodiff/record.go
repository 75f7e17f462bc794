package autodiff

import "github.com/born-ml/tapegrad/internal/tensor"

// Tracked is a value the tape can attach a gradient slot to.
type Tracked interface {
	tensor.GradientCarrier
	Shape() tensor.Shape
}

// Trainable is a tracked value whose data can be updated in place.
type Trainable interface {
	Tracked
	MutData() []float32
}

// Record ensures v has a gradient slot on tape and returns it.
//
// The first call registers a zeroed buffer sized to v's shape; later calls
// return the same slot without allocating. A slot left over from an earlier
// generation of this tape is dropped and replaced, so inputs can be reused
// across Reset. Panics if v holds a slot from another tape, including one
// that has been discarded: reuse inputs by resetting a tape rather than
// replacing it, or clear the old handle with v.Grad().Take() first.
func Record(v Tracked, tape *GradientTape) tensor.Slot {
	h := v.Grad()
	slot := h.Attach(v.Shape(), tape.RegisterGradient)
	if tape.superseded(slot) {
		h.Take()
		slot = h.Attach(v.Shape(), tape.RegisterGradient)
	}
	tape.check(slot)
	return slot
}

// Update subtracts v's accumulated gradient from its data in place and clears
// v's gradient handle.
//
// No learning rate is applied here; scale the gradient first (see
// ScaleGradient and GradientTape.Scale). Panics with ErrNoGradient if v has no handle, which
// also makes a second Update without an intervening Record fail.
func Update(v Trainable, tape *GradientTape) {
	UpdateWith(v, tape, func(data, grad []float32) {
		for i := range data {
			data[i] -= grad[i]
		}
	})
}

// UpdateWith consumes v's gradient handle and passes v's data together with
// its gradient buffer to apply. Optimizers with per-parameter state (momentum,
// moment estimates) use it in place of Update.
//
// grad is owned by the tape and must not be retained after apply returns.
func UpdateWith(v Trainable, tape *GradientTape, apply func(data, grad []float32)) {
	slot, ok := v.Grad().Take()
	if !ok {
		violation(ErrNoGradient, "update of untracked value with shape %v", v.Shape())
	}
	grad := tape.buffer(slot)
	data := v.MutData()
	if len(data) != len(grad) {
		violation(ErrShapeMismatch, "value has %d elements, %v has %d", len(data), slot, len(grad))
	}
	apply(data, grad)
}

// ScaleGradient multiplies v's accumulated gradient by factor without
// consuming its handle. Unlike GradientTape.Scale it leaves every other slot
// untouched, so scaling one parameter group never rescales another.
// Panics with ErrNoGradient if v has no handle.
func ScaleGradient(v Tracked, tape *GradientTape, factor float32) {
	slot := v.Grad().Attach(v.Shape(), func(shape tensor.Shape) tensor.Slot {
		violation(ErrNoGradient, "scale of untracked value with shape %v", shape)
		return tensor.Slot{}
	})
	buf := tape.buffer(slot)
	for i := range buf {
		buf[i] *= factor
	}
}

// Backward seeds v's slot with ones and runs the backward pass.
//
// Example:
//
//	tape := autodiff.NewGradientTape()
//	loss := ops.Mean(ops.Square(x, tape), tape)
//	autodiff.Backward(loss, tape)
//
// Panics with ErrNotRecorded if v never took part in a recorded operation.
func Backward(v Tracked, tape *GradientTape) {
	slot := slotOf(v, tape)
	seed := make([]float32, slot.NumElements())
	for i := range seed {
		seed[i] = 1.0
	}
	tape.ExecuteBackward(slot, seed)
}

// Gradient returns a copy of v's accumulated gradient without consuming its
// handle. Panics with ErrNotRecorded if v has no slot.
func Gradient(v Tracked, tape *GradientTape) []float32 {
	return tape.Resolve(slotOf(v, tape))
}

// slotOf returns v's current slot, refusing to register a new one.
func slotOf(v Tracked, tape *GradientTape) tensor.Slot {
	slot := v.Grad().Attach(v.Shape(), func(shape tensor.Shape) tensor.Slot {
		violation(ErrNotRecorded, "value with shape %v", shape)
		return tensor.Slot{}
	})
	tape.check(slot)
	return slot
}
