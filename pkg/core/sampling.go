package core

import "math/rand"

// Sampler provides uniform random numbers to the probabilistic parts of a trace.
// Can be swapped out for deterministic testing
type Sampler interface {
	Get1D() float64
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic generator
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// ConstantSampler always returns the same value. Useful for forcing or
// suppressing probabilistic collisions in tests.
type ConstantSampler float64

// Get1D returns the constant
func (c ConstantSampler) Get1D() float64 { return float64(c) }
