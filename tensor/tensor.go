// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for fixed-shape float32 tensors.
//
// The shape of a tensor is part of its type: declare a zero-sized marker
// implementing Dims and use it as the type parameter.
//
//	type Vec2 struct{}
//
//	func (Vec2) Shape() tensor.Shape { return tensor.Shape{2} }
//
//	x, err := tensor.FromSlice[Vec2]([]float32{3, 4})
//	y := tensor.Zeros[tensor.Batch[Four, Vec2]]() // shape [4 2]
package tensor

import (
	"math/rand"

	"github.com/born-ml/tapegrad/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Dims is implemented by shape marker types.
type Dims = tensor.Dims

// Scalar is the rank-0 shape marker.
type Scalar = tensor.Scalar

// Batch prepends the shape of N to the shape of S.
type Batch[N, S Dims] = tensor.Batch[N, S]

// Tensor is a float32 tensor whose shape is fixed by S.
type Tensor[S Dims] = tensor.Tensor[S]

// ShapeContract is the shape and data access every tensor provides.
type ShapeContract = tensor.ShapeContract

// ShapeOf returns the shape described by S.
func ShapeOf[S Dims]() Shape {
	return tensor.ShapeOf[S]()
}

// New creates a zero-filled tensor. Panics if S describes an invalid shape.
func New[S Dims]() *Tensor[S] {
	return tensor.New[S]()
}

// Zeros creates a tensor filled with zeros.
func Zeros[S Dims]() *Tensor[S] {
	return tensor.Zeros[S]()
}

// Ones creates a tensor filled with ones.
func Ones[S Dims]() *Tensor[S] {
	return tensor.Ones[S]()
}

// Full creates a tensor filled with value.
func Full[S Dims](value float32) *Tensor[S] {
	return tensor.Full[S](value)
}

// FromSlice creates a tensor holding a copy of data.
// Returns an error if len(data) does not match the shape of S.
func FromSlice[S Dims](data []float32) (*Tensor[S], error) {
	return tensor.FromSlice[S](data)
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
func Rand[S Dims](rng *rand.Rand) *Tensor[S] {
	return tensor.Rand[S](rng)
}

// Randn creates a tensor with values drawn from the standard normal
// distribution.
func Randn[S Dims](rng *rand.Rand) *Tensor[S] {
	return tensor.Randn[S](rng)
}
