package autodiff_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/tensor"
)

type vec2 struct{}

func (vec2) Shape() tensor.Shape { return tensor.Shape{2} }

type vec3 struct{}

func (vec3) Shape() tensor.Shape { return tensor.Shape{3} }

type mat2x3 struct{}

func (mat2x3) Shape() tensor.Shape { return tensor.Shape{2, 3} }

type cube2 struct{}

func (cube2) Shape() tensor.Shape { return tensor.Shape{2, 2, 2} }

// requireViolation asserts that fn panics with an error wrapping target.
func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic wrapping %v", target)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.ErrorIs(t, err, target)
	}()
	fn()
}

// scaleStep pushes a step contributing factor * upstream(from) into to.
func scaleStep(tape *autodiff.GradientTape, name string, from, to tensor.Slot, factor float32) {
	tape.PushBackwardStep(autodiff.BackwardStep{
		Name:   name,
		Reads:  []tensor.Slot{from},
		Writes: []tensor.Slot{to},
		Derivative: func(ctx *autodiff.StepContext) {
			up, dst := ctx.Upstream(0), ctx.Contribution(0)
			for i := range dst {
				dst[i] = factor * up[i]
			}
		},
	})
}

// constStep pushes a step contributing a fixed vector into to.
func constStep(tape *autodiff.GradientTape, from, to tensor.Slot, g []float32) {
	tape.PushBackwardStep(autodiff.BackwardStep{
		Name:   "const",
		Reads:  []tensor.Slot{from},
		Writes: []tensor.Slot{to},
		Derivative: func(ctx *autodiff.StepContext) {
			copy(ctx.Contribution(0), g)
		},
	})
}

func TestTape_RegisterGradient_MonotonicIndices(t *testing.T) {
	tape := autodiff.NewGradientTape()

	for i := 0; i < 5; i++ {
		slot := tape.RegisterGradient(tensor.Shape{2})
		assert.Equal(t, i, slot.Index())
	}
	assert.Equal(t, 5, tape.NumSlots())
}

func TestRecord_SlotUniqueness(t *testing.T) {
	tape := autodiff.NewGradientTape()
	values := []*tensor.Tensor[vec3]{
		tensor.Zeros[vec3](),
		tensor.Ones[vec3](),
		tensor.Full[vec3](2),
		tensor.Zeros[vec3](),
	}

	seen := make(map[int]bool)
	for _, v := range values {
		slot := autodiff.Record(v, tape)
		assert.False(t, seen[slot.Index()], "slot %v issued twice", slot)
		seen[slot.Index()] = true
	}
	require.Equal(t, len(values), tape.NumSlots())

	// Recording again allocates nothing and returns the same slots.
	for _, v := range values {
		before := tape.NumSlots()
		again := autodiff.Record(v, tape)
		assert.True(t, seen[again.Index()])
		assert.Equal(t, before, tape.NumSlots())
	}
	assert.Equal(t, len(values), tape.NumSlots())
}

func TestTape_AccumulatesMultipleWriters(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x := tensor.Zeros[vec3]()
	y := tensor.Zeros[vec3]()
	xSlot := autodiff.Record(x, tape)
	ySlot := autodiff.Record(y, tape)

	g1 := []float32{1, -2, 0.5}
	g2 := []float32{10, 20, -0.25}
	constStep(tape, ySlot, xSlot, g1)
	constStep(tape, ySlot, xSlot, g2)

	tape.ExecuteBackward(ySlot, []float32{1, 1, 1})

	got := tape.Resolve(xSlot)
	for i := range got {
		assert.Equal(t, g1[i]+g2[i], got[i])
	}
}

func TestTape_ReverseOrderReplay(t *testing.T) {
	// Chain a -> b -> c with local derivatives db/da = 2 and dc/db = 3.
	tape := autodiff.NewGradientTape()
	a := tape.RegisterGradient(tensor.Shape{2})
	u := tape.RegisterGradient(tensor.Shape{2})
	b := tape.RegisterGradient(tensor.Shape{2})
	v := tape.RegisterGradient(tensor.Shape{2})
	c := tape.RegisterGradient(tensor.Shape{2})
	w := tape.RegisterGradient(tensor.Shape{2})

	// Steps read their output's slot and write their input's slot, pushed
	// in forward order with unrelated steps interleaved.
	scaleStep(tape, "b=f(a)", b, a, 2)
	scaleStep(tape, "unrelated1", v, u, 5)
	scaleStep(tape, "c=g(b)", c, b, 3)
	scaleStep(tape, "unrelated2", w, v, 7)

	seed := []float32{1.5, -2}
	tape.ExecuteBackward(c, seed)

	assert.Equal(t, []float32{3 * 1.5, 3 * -2}, tape.Resolve(b))
	assert.Equal(t, []float32{2 * 3 * 1.5, 2 * 3 * -2}, tape.Resolve(a))
	assert.Equal(t, []float32{0, 0}, tape.Resolve(u))
}

func TestTape_ForwardOrderWouldBreakChain(t *testing.T) {
	// Pushing the downstream step first means it replays last: its
	// contribution to b arrives after b has already been propagated to a.
	tape := autodiff.NewGradientTape()
	a := tape.RegisterGradient(tensor.Shape{1})
	b := tape.RegisterGradient(tensor.Shape{1})
	c := tape.RegisterGradient(tensor.Shape{1})

	scaleStep(tape, "c=g(b)", c, b, 3)
	scaleStep(tape, "b=f(a)", b, a, 2)

	tape.ExecuteBackward(c, []float32{1})
	assert.Equal(t, []float32{3}, tape.Resolve(b))
	assert.Equal(t, []float32{0}, tape.Resolve(a), "misordered push loses the path")
}

func TestUpdate_SingleConsumption(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x, err := tensor.FromSlice[vec2]([]float32{1, 2})
	require.NoError(t, err)

	y := ops.Square(x, tape)
	autodiff.Backward(y, tape)

	autodiff.Update(x, tape)
	requireViolation(t, autodiff.ErrNoGradient, func() {
		autodiff.Update(x, tape)
	})
}

func TestUpdate_UntrackedValue(t *testing.T) {
	tape := autodiff.NewGradientTape()
	requireViolation(t, autodiff.ErrNoGradient, func() {
		autodiff.Update(tensor.Zeros[vec2](), tape)
	})
}

func TestUpdateWith_PassesDataAndGradient(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x, err := tensor.FromSlice[vec2]([]float32{3, 4})
	require.NoError(t, err)

	autodiff.Backward(ops.Square(x, tape), tape)

	var seen []float32
	autodiff.UpdateWith(x, tape, func(data, grad []float32) {
		seen = append(seen, grad...)
		for i := range data {
			data[i] = grad[i] / 2
		}
	})
	assert.Equal(t, []float32{6, 8}, seen)
	assert.Equal(t, []float32{3, 4}, x.Data())

	requireViolation(t, autodiff.ErrNoGradient, func() {
		autodiff.UpdateWith(x, tape, func(_, _ []float32) {})
	})
}

func TestRecord_AfterUpdateGetsFreshSlot(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x := tensor.Ones[vec2]()

	first := autodiff.Record(x, tape)
	autodiff.Update(x, tape)
	second := autodiff.Record(x, tape)

	assert.NotEqual(t, first.Index(), second.Index())
	assert.Equal(t, 2, tape.NumSlots())
}

func TestResolve_ShapeFidelity(t *testing.T) {
	tape := autodiff.NewGradientTape()

	check := func(slot tensor.Slot, shape tensor.Shape) {
		t.Helper()
		assert.Equal(t, shape, slot.Shape())
		buf := tape.Resolve(slot)
		assert.Len(t, buf, shape.NumElements())
		for _, v := range buf {
			assert.Zero(t, v)
		}
	}

	check(autodiff.Record(tensor.Zeros[tensor.Scalar](), tape), tensor.Shape{})
	check(autodiff.Record(tensor.Zeros[vec2](), tape), tensor.Shape{2})
	check(autodiff.Record(tensor.Zeros[mat2x3](), tape), tensor.Shape{2, 3})
	check(autodiff.Record(tensor.Zeros[cube2](), tape), tensor.Shape{2, 2, 2})
}

func TestResolve_ReturnsCopy(t *testing.T) {
	tape := autodiff.NewGradientTape()
	slot := tape.RegisterGradient(tensor.Shape{2})

	buf := tape.Resolve(slot)
	buf[0] = 42
	assert.Equal(t, []float32{0, 0}, tape.Resolve(slot))
}

func TestSquareScenario(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x, err := tensor.FromSlice[vec2]([]float32{3, 4})
	require.NoError(t, err)

	y := ops.Square(x, tape)
	ySlot := autodiff.Record(y, tape)
	tape.ExecuteBackward(ySlot, []float32{1, 1})

	assert.Equal(t, []float32{6, 8}, autodiff.Gradient(x, tape))

	// Learning rate 0.1 applied at the scaling seam.
	tape.Scale(0.1)
	grad := autodiff.Gradient(x, tape)
	assert.InDelta(t, 0.6, grad[0], 1e-6)
	assert.InDelta(t, 0.8, grad[1], 1e-6)

	autodiff.Update(x, tape)
	assert.InDelta(t, 2.4, x.Data()[0], 1e-6)
	assert.InDelta(t, 3.2, x.Data()[1], 1e-6)
}

func TestExecuteBackward_SeedShapeMismatch(t *testing.T) {
	tape := autodiff.NewGradientTape()
	slot := tape.RegisterGradient(tensor.Shape{3})

	requireViolation(t, autodiff.ErrSeedShape, func() {
		tape.ExecuteBackward(slot, []float32{1, 1})
	})
	assert.False(t, tape.Executed())
}

func TestExecuteBackward_OnlyOnce(t *testing.T) {
	tape := autodiff.NewGradientTape()
	slot := tape.RegisterGradient(tensor.Shape{1})

	tape.ExecuteBackward(slot, []float32{1})
	assert.True(t, tape.Executed())

	requireViolation(t, autodiff.ErrAlreadyExecuted, func() {
		tape.ExecuteBackward(slot, []float32{1})
	})
	requireViolation(t, autodiff.ErrAlreadyExecuted, func() {
		scaleStep(tape, "late", slot, slot, 1)
	})
}

func TestTape_ForeignSlot(t *testing.T) {
	t1 := autodiff.NewGradientTape()
	t2 := autodiff.NewGradientTape()
	slot := t1.RegisterGradient(tensor.Shape{2})

	requireViolation(t, autodiff.ErrForeignSlot, func() { t2.Resolve(slot) })
	requireViolation(t, autodiff.ErrForeignSlot, func() { t2.Resolve(tensor.Slot{}) })

	// A value tracked on t1 cannot silently join t2.
	x := tensor.Zeros[vec2]()
	autodiff.Record(x, t1)
	requireViolation(t, autodiff.ErrForeignSlot, func() { autodiff.Record(x, t2) })

	// Moving to a new tape means dropping the old handle first.
	x.Grad().Take()
	slot = autodiff.Record(x, t2)
	assert.Equal(t, 0, slot.Index())
	assert.Equal(t, 1, t2.NumSlots())
}

func TestTape_ResetMakesSlotsStale(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x := tensor.Ones[vec2]()
	w := tensor.Ones[vec2]()
	old := autodiff.Record(x, tape)
	ops.Mul(x, w, tape)

	tape.Reset()
	assert.Equal(t, 0, tape.NumSlots())
	assert.Equal(t, 0, tape.NumSteps())
	assert.False(t, tape.Executed())

	requireViolation(t, autodiff.ErrStaleSlot, func() { tape.Resolve(old) })
	requireViolation(t, autodiff.ErrStaleSlot, func() { autodiff.Gradient(x, tape) })
	requireViolation(t, autodiff.ErrStaleSlot, func() { autodiff.Update(w, tape) })

	// Recording again replaces the stale handle with a current slot.
	fresh := autodiff.Record(x, tape)
	assert.Equal(t, 0, fresh.Index())
	assert.Equal(t, old.Generation()+1, fresh.Generation())
	assert.Equal(t, fresh, autodiff.Record(x, tape))
	assert.Equal(t, 1, tape.NumSlots())
}

func TestTape_InputsReusableAcrossReset(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x, err := tensor.FromSlice[vec2]([]float32{1, 2})
	require.NoError(t, err)
	w := tensor.Zeros[vec2]()

	for range 3 {
		tape.Reset()
		autodiff.Backward(ops.Sum(ops.Mul(w, x, tape), tape), tape)
		assert.Equal(t, []float32{1, 2}, autodiff.Gradient(w, tape))
		autodiff.Update(w, tape)
	}
	assert.Equal(t, []float32{-3, -6}, w.Data())
}

func TestBackward_NotRecorded(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x := tensor.Zeros[vec2]()

	requireViolation(t, autodiff.ErrNotRecorded, func() { autodiff.Backward(x, tape) })
	requireViolation(t, autodiff.ErrNotRecorded, func() { autodiff.Gradient(x, tape) })
	assert.Equal(t, 0, tape.NumSlots(), "a failed lookup must not register a slot")
}

func TestTape_Scale(t *testing.T) {
	tape := autodiff.NewGradientTape()
	slot := tape.RegisterGradient(tensor.Shape{2})
	tape.ExecuteBackward(slot, []float32{2, -4})

	tape.Scale(0.5)
	assert.Equal(t, []float32{1, -2}, tape.Resolve(slot))
}

func TestScaleGradient_OnlyTouchesOneValue(t *testing.T) {
	tape := autodiff.NewGradientTape()
	a := tensor.Ones[vec2]()
	b := tensor.Ones[vec3]()
	autodiff.Backward(ops.Add(ops.Sum(ops.MulScalar(a, 2, tape), tape), ops.Sum(ops.MulScalar(b, 4, tape), tape), tape), tape)

	autodiff.ScaleGradient(a, tape, 0.5)
	assert.Equal(t, []float32{1, 1}, autodiff.Gradient(a, tape))
	assert.Equal(t, []float32{4, 4, 4}, autodiff.Gradient(b, tape))

	requireViolation(t, autodiff.ErrNoGradient, func() {
		autodiff.ScaleGradient(tensor.Zeros[vec2](), tape, 2)
	})
}

func TestTape_ReplayIsDeterministic(t *testing.T) {
	run := func() []float32 {
		tape := autodiff.NewGradientTape()
		x, err := tensor.FromSlice[mat2x3]([]float32{0.1, -0.7, 1.3, 2.9, -3.3, 0.01})
		require.NoError(t, err)
		h := ops.Tanh(ops.Mul(x, ops.Sin(x, tape), tape), tape)
		loss := ops.Mean(ops.Add(h, ops.Square(x, tape), tape), tape)
		autodiff.Backward(loss, tape)
		return autodiff.Gradient(x, tape)
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestTape_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tape := autodiff.NewGradientTape(autodiff.WithLogger(logger), autodiff.WithCapacity(4, 4))

	x := tensor.Ones[vec2]()
	autodiff.Backward(ops.Exp(x, tape), tape)
	tape.Reset()

	out := buf.String()
	assert.Contains(t, out, "backward replay")
	assert.Contains(t, out, "steps=1")
	assert.Contains(t, out, "tape reset")
}
