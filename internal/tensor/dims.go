package tensor

// Dims describes the fixed shape of a tensor type.
//
// Implementations are zero-sized marker types. The shape is a property of the
// type, never of an individual value, so every Tensor[S] shares S's shape and
// element count:
//
//	type Vec2 struct{}
//
//	func (Vec2) Shape() tensor.Shape { return tensor.Shape{2} }
//
//	x := tensor.Zeros[Vec2]()
//
// Shape must return the same dimensions on every call.
type Dims interface {
	Shape() Shape
}

// ShapeOf returns the shape described by the marker type S.
func ShapeOf[S Dims]() Shape {
	var s S
	return s.Shape()
}

// NumElementsOf returns the element count of the marker type S.
func NumElementsOf[S Dims]() int {
	return ShapeOf[S]().NumElements()
}

// Scalar is the rank-0 shape holding exactly one element.
type Scalar struct{}

// Shape returns the empty shape.
func (Scalar) Shape() Shape { return Shape{} }

// Batch prepends the batch dimensions N to the element shape S.
//
// For N with shape [32] and S with shape [3 4], Batch[N, S] has shape
// [32 3 4].
type Batch[N, S Dims] struct{}

// Shape returns N's dimensions followed by S's.
func (Batch[N, S]) Shape() Shape {
	var n N
	var s S
	return append(n.Shape().Clone(), s.Shape()...)
}
