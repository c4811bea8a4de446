package telemetry

import "math/rand"

// Noise produces bounded pseudo-random perturbation around baseline values.
// It wraps an explicitly seeded source so that a fixed seed yields identical
// sample sequences across runs.
type Noise struct {
	rng *rand.Rand
}

// NewNoise returns a noise source seeded with the given seed.
func NewNoise(seed int64) *Noise {
	return &Noise{rng: rand.New(rand.NewSource(seed))}
}

// Jitter returns a value uniformly distributed in [-amplitude, amplitude].
func (n *Noise) Jitter(amplitude float64) float64 {
	return n.rng.Float64()*2*amplitude - amplitude
}

// Between returns a value uniformly distributed in [lo, hi).
func (n *Noise) Between(lo, hi float64) float64 {
	return lo + n.rng.Float64()*(hi-lo)
}

// Intn returns a non-negative pseudo-random int in [0, n).
func (n *Noise) Intn(max int) int {
	return n.rng.Intn(max)
}
