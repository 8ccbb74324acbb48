// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package downsample_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/word2vec/downsample"
)

func TestZeroThresholdNeverSkips(t *testing.T) {
	s := downsample.New(0, 1000)
	assert.False(t, s.Skip(999, 0.0))
	assert.False(t, s.Skip(999, 1.0))
}

func TestBelowUnfrequentThresholdNeverSkips(t *testing.T) {
	s := downsample.New(1e-3, 1_000_000)
	assert.False(t, s.Skip(1, 0.0))
}

func TestAboveThresholdCanSkip(t *testing.T) {
	s := downsample.New(1e-3, 1_000_000)
	// A word occupying half the corpus is well above unfrequentThreshold;
	// with u pinned at 1 (the top of the uniform range) it must skip
	// unless p_keep happens to be >= 1, which it is not at this frequency.
	assert.True(t, s.Skip(500_000, 1.0))
}

func TestSkipIsDeterministicGivenU(t *testing.T) {
	s := downsample.New(1e-3, 1_000_000)
	a := s.Skip(500_000, 0.3)
	b := s.Skip(500_000, 0.3)
	assert.Equal(t, a, b)
}
