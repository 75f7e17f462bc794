package tensor

import "fmt"

// Slot references one gradient buffer owned by a gradient tape.
//
// A slot is an index into tape storage plus the shape the buffer was
// registered with. It is never a pointer into that storage: reads and writes
// always go through the issuing tape, which checks the owner tag before
// touching memory.
//
// The zero Slot is invalid and is rejected by every tape.
type Slot struct {
	index      int
	shape      Shape
	owner      uint64
	generation uint64
}

// NewSlot builds a slot for the buffer at index, registered with shape by the
// tape identified by owner during the given generation (a tape starts a new
// generation on every reset). Only gradient tapes should call it.
func NewSlot(index int, shape Shape, owner, generation uint64) Slot {
	return Slot{
		index:      index,
		shape:      shape.Clone(),
		owner:      owner,
		generation: generation,
	}
}

// Index returns the dense storage index of the slot.
func (s Slot) Index() int {
	return s.index
}

// Shape returns the shape the slot was registered with.
func (s Slot) Shape() Shape {
	return s.shape.Clone()
}

// NumElements returns the number of elements in the slot's buffer.
func (s Slot) NumElements() int {
	return s.shape.NumElements()
}

// Owner returns the identity of the tape that issued the slot.
func (s Slot) Owner() uint64 {
	return s.owner
}

// Generation returns the tape generation the slot belongs to.
func (s Slot) Generation() uint64 {
	return s.generation
}

// String returns a human-readable representation of the slot.
func (s Slot) String() string {
	return fmt.Sprintf("Slot(#%d %v tape=%d/%d)", s.index, s.shape, s.owner, s.generation)
}

// GradientHandle is a value's optional attachment to its gradient slot.
//
// It is either empty or holds exactly one slot. The only two operations are
// Attach (attach-if-absent) and Take (take-if-present); Take reads and clears
// in one step, so a slot can be consumed at most once.
//
// A handle belongs to exactly one value. Do not copy a non-empty handle.
type GradientHandle struct {
	slot Slot
	set  bool
}

// Attach returns the held slot. If the handle is empty, register is called
// with shape and its result is stored first.
func (h *GradientHandle) Attach(shape Shape, register func(Shape) Slot) Slot {
	if !h.set {
		h.slot = register(shape)
		h.set = true
	}
	return h.slot
}

// Take clears the handle and returns the slot it held.
// The boolean is false when the handle was already empty.
func (h *GradientHandle) Take() (Slot, bool) {
	if !h.set {
		return Slot{}, false
	}
	slot := h.slot
	h.slot = Slot{}
	h.set = false
	return slot, true
}

// GradientCarrier is implemented by values that carry a gradient handle.
type GradientCarrier interface {
	Grad() *GradientHandle
}
