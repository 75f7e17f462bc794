package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros[Mat3x4]()
func Zeros[S Dims]() *Tensor[S] {
	// Data is already zero-initialized by make()
	return New[S]()
}

// Ones creates a tensor filled with ones.
func Ones[S Dims]() *Tensor[S] {
	return Full[S](1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[Mat3x3](3.14)
func Full[S Dims](value float32) *Tensor[S] {
	t := New[S]()
	Fill(t, value)
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[S Dims](data []float32) (*Tensor[S], error) {
	shape := ShapeOf[S]()
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	t := New[S]()
	copy(t.data, data)
	return t, nil
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Rand[S Dims](rng *rand.Rand) *Tensor[S] {
	t := New[S]()
	Randomize(t, rng.Float32)
	return t
}

// Randn creates a tensor with values from a standard normal distribution
// (mean=0, std=1).
func Randn[S Dims](rng *rand.Rand) *Tensor[S] {
	t := New[S]()
	Randomize(t, func() float32 {
		return float32(rng.NormFloat64())
	})
	return t
}

// Randomize overwrites every element of t with a fresh draw from sample.
// Elements are filled in buffer order, so a seeded sampler is reproducible.
func Randomize(t ShapeContract, sample func() float32) {
	data := t.MutData()
	for i := range data {
		data[i] = sample()
	}
}

// Fill sets every element of t to value.
func Fill(t ShapeContract, value float32) {
	data := t.MutData()
	for i := range data {
		data[i] = value
	}
}
