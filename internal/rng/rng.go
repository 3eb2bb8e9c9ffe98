// Package rng provides the deterministic pseudo-random generator shared by the
// level builder and the procedural generator.
//
// The generator is Mulberry32: a 32-bit state advanced by a Weyl increment and
// mixed with two multiply-xorshift rounds. Identical seeds and identical call
// sequences produce identical output on every platform.
package rng

import "math"

// Random is a stateful Mulberry32 generator. The zero value is a valid
// generator seeded with 0.
type Random struct {
	state uint32
}

// New creates a generator with the given seed.
func New(seed uint32) *Random {
	return &Random{state: seed}
}

// Reseed resets the generator state.
func (r *Random) Reseed(seed uint32) {
	r.state = seed
}

// Next returns the next value in [0, 1).
func (r *Random) Next() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// Range returns a value in [min, max).
func (r *Random) Range(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Int returns an integer in [min, max], both ends inclusive.
func (r *Random) Int(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// Bool returns true with the given probability.
func (r *Random) Bool(probability float64) bool {
	return r.Next() < probability
}

// Choice picks a uniformly random element. Panics on an empty slice.
func Choice[T any](r *Random, items []T) T {
	if len(items) == 0 {
		panic("rng: Choice called with empty slice")
	}
	return items[int(math.Floor(r.Next()*float64(len(items))))]
}

// Shuffle permutes items in place (Fisher-Yates, high index first).
func Shuffle[T any](r *Random, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(math.Floor(r.Next() * float64(i+1)))
		items[i], items[j] = items[j], items[i]
	}
}

// WeightedChoice picks an item with probability proportional to its weight.
// A single draw is scaled by the total weight and weights are subtracted in
// order until the draw is exhausted. Panics on an empty slice or mismatched
// lengths.
func WeightedChoice[T any](r *Random, items []T, weights []float64) T {
	if len(items) == 0 {
		panic("rng: WeightedChoice called with empty slice")
	}
	if len(items) != len(weights) {
		panic("rng: WeightedChoice items and weights differ in length")
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}

	roll := r.Next() * total
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}
