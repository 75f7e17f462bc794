// Package tensor provides fixed-shape float32 tensors and the gradient
// bookkeeping types they carry.
//
// A tensor's shape belongs to its type: Tensor[S] is parameterized by a Dims
// marker whose Shape method describes every value of that type. Slot and
// GradientHandle link a tensor to gradient storage owned by an
// autodiff.GradientTape without ever pointing into that storage.
package tensor
