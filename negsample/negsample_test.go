// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package negsample_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/word2vec/negsample"
)

func TestEmptyForTrivialVocab(t *testing.T) {
	d := negsample.Build([]uint64{10})
	assert.True(t, d.Empty())
	assert.Equal(t, 0, d.Sample(0.5, 0.5))
}

func TestSampleStaysInRange(t *testing.T) {
	freqs := []uint64{100, 50, 40, 30, 20, 10, 5, 4, 3, 2, 1}
	d := negsample.Build(freqs)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		idx := d.Sample(r.Float64(), r.Float64())
		assert.GreaterOrEqual(t, idx, 1)
		assert.Less(t, idx, len(freqs))
	}
}

func TestHigherFrequencyDrawnMoreOften(t *testing.T) {
	freqs := []uint64{1000, 900, 1}
	d := negsample.Build(freqs)
	r := rand.New(rand.NewSource(2))
	counts := map[int]int{}
	for i := 0; i < 5000; i++ {
		counts[d.Sample(r.Float64(), r.Float64())]++
	}
	assert.Greater(t, counts[1], counts[2])
}

func TestBoundarySamplesClamp(t *testing.T) {
	freqs := []uint64{10, 5, 1}
	d := negsample.Build(freqs)
	assert.GreaterOrEqual(t, d.Sample(0, 0), 1)
	assert.LessOrEqual(t, d.Sample(1, 1), len(freqs)-1)
}

func TestDegenerateTwoEqualWordsFallsBackToUniform(t *testing.T) {
	// Two non-EOS words with identical frequency emit only a single
	// knot; the distribution is not Empty (there is a word to draw)
	// but must still produce valid in-range indices.
	freqs := []uint64{5, 4, 4}
	d := negsample.Build(freqs)
	assert.False(t, d.Empty())
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		idx := d.Sample(r, r)
		assert.GreaterOrEqual(t, idx, 1)
		assert.LessOrEqual(t, idx, len(freqs)-1)
	}
}
