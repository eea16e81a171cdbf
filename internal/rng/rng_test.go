package rng

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(r *rand.Rand, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int63()
	}
	return out
}

func TestStreamsAreReproducible(t *testing.T) {
	a := New(42)
	b := New(42)

	assert.Equal(t, draw(a.ForUser("dev-1"), 10), draw(b.ForUser("dev-1"), 10))
	assert.Equal(t, draw(a.ForDay(7), 10), draw(b.ForDay(7), 10))
	assert.Equal(t, draw(a.Stream("uuids"), 10), draw(b.Stream("uuids"), 10))
}

func TestStreamsAreIndependent(t *testing.T) {
	f := New(42)

	assert.NotEqual(t, draw(f.ForUser("dev-1"), 5), draw(f.ForUser("dev-2"), 5))
	assert.NotEqual(t, draw(f.ForDay(0), 5), draw(f.ForDay(1), 5))
	assert.NotEqual(t, draw(f.Stream("uuids"), 5), draw(f.Stream("devices"), 5))

	// A user's stream and its session streams must not collide.
	assert.NotEqual(t, draw(f.ForUser("dev-1"), 5), draw(f.ForSession("dev-1", 0), 5))
}

func TestSessionOrdinalsDoNotReplay(t *testing.T) {
	f := New(42)

	first := draw(f.ForSession("dev-1", 0), 5)
	second := draw(f.ForSession("dev-1", 1), 5)
	assert.NotEqual(t, first, second)

	// Return draws are a separate family from session draws.
	assert.NotEqual(t, first, draw(f.ForReturn("dev-1", 0), 5))
}

func TestSeedChangesEverything(t *testing.T) {
	a := New(1)
	b := New(2)
	assert.NotEqual(t, draw(a.ForUser("dev-1"), 5), draw(b.ForUser("dev-1"), 5))
}

func TestHashKeyIsStable(t *testing.T) {
	f := New(42)
	assert.Equal(t, f.HashKey("persona", "dev-1"), f.HashKey("persona", "dev-1"))
	assert.NotEqual(t, f.HashKey("persona", "dev-1"), f.HashKey("persona", "dev-2"))
	assert.NotEqual(t, f.HashKey("persona", "dev-1"), f.HashKey("uid", "dev-1"))
}

func TestWeightedIndex(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	t.Run("EmptyAndZeroWeights", func(t *testing.T) {
		assert.Equal(t, -1, WeightedIndex(r, nil))
		assert.Equal(t, -1, WeightedIndex(r, []float64{0, 0, 0}))
	})

	t.Run("SingleWeight", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			assert.Equal(t, 0, WeightedIndex(r, []float64{1.0}))
		}
	})

	t.Run("SkipsZeroWeights", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			idx := WeightedIndex(r, []float64{0, 0.5, 0, 0.5})
			assert.Contains(t, []int{1, 3}, idx)
		}
	})

	t.Run("RoughlyProportional", func(t *testing.T) {
		counts := make([]int, 2)
		for i := 0; i < 10000; i++ {
			counts[WeightedIndex(r, []float64{0.9, 0.1})]++
		}
		assert.Greater(t, counts[0], 8000)
		assert.Less(t, counts[1], 2000)
	})
}

func TestIntBetween(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Equal(t, 5, IntBetween(r, 5, 5))
	assert.Equal(t, 5, IntBetween(r, 5, 3))

	for i := 0; i < 1000; i++ {
		v := IntBetween(r, 3, 7)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 7)
	}
}

func TestFloatBetween(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Equal(t, 0.9, FloatBetween(r, 0.9, 0.9))

	for i := 0; i < 1000; i++ {
		v := FloatBetween(r, 0.9, 1.1)
		assert.GreaterOrEqual(t, v, 0.9)
		assert.Less(t, v, 1.1)
	}
}
