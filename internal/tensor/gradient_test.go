package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/tapegrad/internal/tensor"
)

func TestGradientHandle_AttachIfAbsent(t *testing.T) {
	var h tensor.GradientHandle
	calls := 0
	register := func(s tensor.Shape) tensor.Slot {
		calls++
		return tensor.NewSlot(calls-1, s, 3, 0)
	}

	first := h.Attach(tensor.Shape{2}, register)
	second := h.Attach(tensor.Shape{2}, register)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, first.Index())
	assert.Equal(t, tensor.Shape{2}, first.Shape())
	assert.Equal(t, uint64(3), first.Owner())
}

func TestGradientHandle_TakeClears(t *testing.T) {
	var h tensor.GradientHandle

	_, ok := h.Take()
	assert.False(t, ok, "empty handle")

	slot := h.Attach(tensor.Shape{3}, func(s tensor.Shape) tensor.Slot {
		return tensor.NewSlot(4, s, 1, 0)
	})

	got, ok := h.Take()
	assert.True(t, ok)
	assert.Equal(t, slot, got)

	_, ok = h.Take()
	assert.False(t, ok, "take consumes the slot")
}

func TestGradientHandle_ReattachAfterTake(t *testing.T) {
	var h tensor.GradientHandle
	next := 0
	register := func(s tensor.Shape) tensor.Slot {
		next++
		return tensor.NewSlot(next, s, 1, 0)
	}

	a := h.Attach(tensor.Shape{1}, register)
	h.Take()
	b := h.Attach(tensor.Shape{1}, register)

	assert.NotEqual(t, a.Index(), b.Index())
}

func TestSlot_ShapeIsCopied(t *testing.T) {
	shape := tensor.Shape{2, 2}
	slot := tensor.NewSlot(0, shape, 1, 2)
	shape[0] = 9

	got := slot.Shape()
	assert.Equal(t, tensor.Shape{2, 2}, got)
	got[1] = 7
	assert.Equal(t, tensor.Shape{2, 2}, slot.Shape())
	assert.Equal(t, 4, slot.NumElements())
	assert.Contains(t, slot.String(), "#0")
}
