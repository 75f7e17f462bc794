package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/tapegrad/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier[S tensor.Dims](rng *rand.Rand, fanIn, fanOut int) *tensor.Tensor[S] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.New[S]()
	tensor.Randomize(t, func() float32 {
		return float32((rng.Float64()*2.0 - 1.0) * bound)
	})
	return t
}

// Normal initializes a tensor from N(0, std²).
func Normal[S tensor.Dims](rng *rand.Rand, std float64) *tensor.Tensor[S] {
	t := tensor.New[S]()
	tensor.Randomize(t, func() float32 {
		return float32(rng.NormFloat64() * std)
	})
	return t
}
