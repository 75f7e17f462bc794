package autodiff

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/born-ml/tapegrad/internal/tensor"
)

// tapeIDs hands out a distinct identity to every tape in the process.
var tapeIDs atomic.Uint64

// GradientTape records backward steps during the forward pass and replays
// them in reverse to accumulate gradients.
//
// The tape is an arena: it owns one float32 buffer per registered slot and
// values only ever hold a tensor.Slot index into it.
//
// Usage:
//
//	tape := autodiff.NewGradientTape()
//	y := ops.Square(x, tape)
//	autodiff.Backward(y, tape)
//	grad := autodiff.Gradient(x, tape)
//
// A tape is not safe for concurrent use. Reset it (or create a new one)
// after each forward/backward cycle.
type GradientTape struct {
	id         uint64
	generation uint64
	grads      [][]float32    // Gradient buffers, indexed by slot
	steps      []BackwardStep // Recorded steps (in push order)
	executed   bool           // Whether the backward pass has run
	scratch    [][]float32    // Reusable contribution buffers
	logger     *slog.Logger
}

// Option configures a GradientTape.
type Option func(*GradientTape)

// WithLogger sets the logger used for debug output during replay and reset.
func WithLogger(logger *slog.Logger) Option {
	return func(t *GradientTape) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCapacity pre-allocates room for the given number of slots and steps.
func WithCapacity(slots, steps int) Option {
	return func(t *GradientTape) {
		t.grads = make([][]float32, 0, slots)
		t.steps = make([]BackwardStep, 0, steps)
	}
}

// NewGradientTape creates a new, empty gradient tape.
func NewGradientTape(opts ...Option) *GradientTape {
	t := &GradientTape{
		id:     tapeIDs.Add(1),
		grads:  make([][]float32, 0, 64), // Pre-allocate for common case
		steps:  make([]BackwardStep, 0, 64),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterGradient allocates a zero-initialized buffer of the given shape and
// returns a fresh slot for it. Slot indices increase monotonically.
func (t *GradientTape) RegisterGradient(shape tensor.Shape) tensor.Slot {
	index := len(t.grads)
	t.grads = append(t.grads, make([]float32, shape.NumElements()))
	return tensor.NewSlot(index, shape, t.id, t.generation)
}

// Resolve returns a copy of the slot's accumulated gradient.
//
// Before the backward pass has contributed to the slot the result is all
// zeros. Panics if the slot was not issued by this tape generation.
func (t *GradientTape) Resolve(slot tensor.Slot) []float32 {
	buf := t.buffer(slot)
	out := make([]float32, len(buf))
	copy(out, buf)
	return out
}

// PushBackwardStep appends a step to the backward log.
// Panics if a slot in the step is foreign or the tape was already replayed.
func (t *GradientTape) PushBackwardStep(step BackwardStep) {
	if t.executed {
		violation(ErrAlreadyExecuted, "cannot record %q after backward", step.Name)
	}
	for _, s := range step.Reads {
		t.check(s)
	}
	for _, s := range step.Writes {
		t.check(s)
	}
	t.steps = append(t.steps, step)
}

// ExecuteBackward seeds the buffer of seed with seedValue and replays every
// recorded step in strict reverse push order.
//
// Algorithm:
//  1. Copy the seed (typically ones) into the seed slot
//  2. Walk steps from last pushed to first
//  3. Run each step's derivative into zeroed contribution buffers
//  4. Add each contribution to its target slot
//
// A slot written by several steps receives the sum of their contributions.
// The pass runs at most once per tape generation.
func (t *GradientTape) ExecuteBackward(seed tensor.Slot, seedValue []float32) {
	if t.executed {
		violation(ErrAlreadyExecuted, "reset the tape before replaying again")
	}
	seedBuf := t.buffer(seed)
	if len(seedValue) != len(seedBuf) {
		violation(ErrSeedShape, "seed has %d elements, slot %v needs %d", len(seedValue), seed, len(seedBuf))
	}
	copy(seedBuf, seedValue)
	t.executed = true

	t.logger.Debug("backward replay", "tape", t.id, "generation", t.generation,
		"steps", len(t.steps), "slots", len(t.grads))

	ctx := &StepContext{tape: t}
	for i := len(t.steps) - 1; i >= 0; i-- {
		step := &t.steps[i]
		ctx.step = step
		ctx.scratch = t.contributionBuffers(step.Writes)
		step.Derivative(ctx)
		for j, target := range step.Writes {
			dst := t.grads[target.Index()]
			for k, v := range ctx.scratch[j] {
				dst[k] += v
			}
		}
	}
}

// Scale multiplies every gradient buffer by factor.
//
// This is the seam where a learning rate is applied: Update subtracts the
// buffer as-is, so callers scale between ExecuteBackward and Update.
func (t *GradientTape) Scale(factor float32) {
	for _, buf := range t.grads {
		for i := range buf {
			buf[i] *= factor
		}
	}
}

// Reset discards all slots and steps and starts a new generation.
// Slots issued before the reset are rejected afterwards.
func (t *GradientTape) Reset() {
	t.logger.Debug("tape reset", "tape", t.id, "generation", t.generation,
		"steps", len(t.steps), "slots", len(t.grads))

	clear(t.grads)
	t.grads = t.grads[:0]
	clear(t.steps)
	t.steps = t.steps[:0]
	t.executed = false
	t.generation++
}

// NumSlots returns the number of registered slots.
func (t *GradientTape) NumSlots() int {
	return len(t.grads)
}

// NumSteps returns the number of recorded backward steps.
func (t *GradientTape) NumSteps() int {
	return len(t.steps)
}

// Executed reports whether the backward pass has run in this generation.
func (t *GradientTape) Executed() bool {
	return t.executed
}

// buffer returns the tape-owned buffer for slot after validating it.
func (t *GradientTape) buffer(slot tensor.Slot) []float32 {
	t.check(slot)
	return t.grads[slot.Index()]
}

// superseded reports whether slot was issued by this tape before the last
// Reset.
func (t *GradientTape) superseded(slot tensor.Slot) bool {
	return slot.Owner() == t.id && slot.Generation() < t.generation
}

// check panics unless slot was issued by this tape in its current generation.
func (t *GradientTape) check(slot tensor.Slot) {
	if slot.Owner() != t.id {
		violation(ErrForeignSlot, "%v (tape %d)", slot, t.id)
	}
	if slot.Generation() != t.generation {
		violation(ErrStaleSlot, "%v (current generation %d)", slot, t.generation)
	}
	if slot.Index() < 0 || slot.Index() >= len(t.grads) {
		violation(ErrForeignSlot, "%v out of range (%d slots)", slot, len(t.grads))
	}
	if len(t.grads[slot.Index()]) != slot.NumElements() {
		violation(ErrShapeMismatch, "%v does not match its buffer", slot)
	}
}

// contributionBuffers returns one zeroed buffer per write slot, reusing
// storage from earlier steps.
func (t *GradientTape) contributionBuffers(writes []tensor.Slot) [][]float32 {
	for len(t.scratch) < len(writes) {
		t.scratch = append(t.scratch, nil)
	}
	out := t.scratch[:len(writes)]
	for i, w := range writes {
		n := w.NumElements()
		if cap(out[i]) < n {
			out[i] = make([]float32, n)
		} else {
			out[i] = out[i][:n]
			clear(out[i])
		}
	}
	return out
}
