package tensor

import "fmt"

// ShapeContract is the capability set a tensor exposes to the gradient tape:
// a fixed shape and access to its float32 backing buffer.
type ShapeContract interface {
	// Shape returns the compile-time shape of the tensor type.
	Shape() Shape
	// Rank returns the number of dimensions.
	Rank() int
	// NumElements returns the element count of the tensor type.
	NumElements() int
	// Data returns the backing buffer for reading.
	Data() []float32
	// MutData returns the backing buffer for in-place mutation.
	MutData() []float32
}

// Tensor is a float32 tensor whose shape is fixed by the marker type S.
//
// The buffer length always equals S's element count. Every constructor in this
// package guarantees it, and the zero value allocates a zeroed buffer of that
// length on first access, so accessors never re-check.
//
// Example:
//
//	type Vec2 struct{}
//
//	func (Vec2) Shape() tensor.Shape { return tensor.Shape{2} }
//
//	x, _ := tensor.FromSlice[Vec2]([]float32{3, 4})
//	x.Shape()       // [2]
//	x.NumElements() // 2
//
// Tensors are used through pointers. Copying a Tensor value would duplicate
// its gradient handle; use Clone instead.
type Tensor[S Dims] struct {
	data []float32
	grad GradientHandle
}

// New creates a zero-filled tensor of type S.
// Panics if S describes an invalid shape.
func New[S Dims]() *Tensor[S] {
	shape := ShapeOf[S]()
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: invalid shape %v: %v", shape, err))
	}
	return &Tensor[S]{
		data: make([]float32, shape.NumElements()),
	}
}

// Shape returns the tensor's shape.
func (t *Tensor[S]) Shape() Shape {
	return ShapeOf[S]()
}

// Rank returns the number of dimensions.
func (t *Tensor[S]) Rank() int {
	return len(ShapeOf[S]())
}

// NumElements returns the total number of elements.
func (t *Tensor[S]) NumElements() int {
	return NumElementsOf[S]()
}

// Data returns the backing buffer.
//
// The slice aliases the tensor's memory; callers must not modify it.
// Use MutData for in-place updates.
func (t *Tensor[S]) Data() []float32 {
	return t.buffer()
}

// MutData returns the backing buffer for in-place mutation.
func (t *Tensor[S]) MutData() []float32 {
	return t.buffer()
}

// buffer returns the backing buffer, allocating it for a zero-value tensor.
func (t *Tensor[S]) buffer() []float32 {
	if t.data == nil {
		t.data = make([]float32, NumElementsOf[S]())
	}
	return t.data
}

// Grad returns the tensor's gradient handle.
func (t *Tensor[S]) Grad() *GradientHandle {
	return &t.grad
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[S]) At(indices ...int) float32 {
	return t.buffer()[t.Shape().Offset(indices...)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[S]) Set(value float32, indices ...int) {
	t.buffer()[t.Shape().Offset(indices...)] = value
}

// Item returns the single element of a one-element tensor.
func (t *Tensor[S]) Item() float32 {
	if NumElementsOf[S]() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.Shape()))
	}
	return t.buffer()[0]
}

// Clone creates a deep copy of the tensor data.
// The copy has an empty gradient handle.
func (t *Tensor[S]) Clone() *Tensor[S] {
	data := make([]float32, NumElementsOf[S]())
	copy(data, t.data)
	return &Tensor[S]{data: data}
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[S]) String() string {
	return fmt.Sprintf("Tensor[float32]%v", t.Shape())
}
