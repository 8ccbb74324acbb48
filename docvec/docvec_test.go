// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package docvec_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/word2vec/docvec"
	"github.com/grailbio/word2vec/modelstore"
)

const delims = " \n,.-!?:;/\"#$%&'()*+<=>@[]\\^_`{|}~\t\v\f\r"

func sampleModel() *modelstore.WordModel {
	return modelstore.NewWordModel(map[string][]float32{
		"a": {1, 0, 0, 0},
		"b": {0, 1, 0, 0},
		"c": {0, 0, 1, 0},
	}, 4)
}

func rms(v []float32) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	return math.Sqrt(sumSq / float64(len(v)))
}

func TestComposeIsUnitRMS(t *testing.T) {
	v, err := docvec.Compose(sampleModel(), "a b", delims)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rms(v), 1e-4)
}

func TestComposeFailsWithNoResolvedTokens(t *testing.T) {
	_, err := docvec.Compose(sampleModel(), "zzz yyy", delims)
	assert.Error(t, err)
}

func TestVectorAddSub(t *testing.T) {
	a := docvec.Vector{1, 0, 0, 0}
	b := docvec.Vector{0, 1, 0, 0}
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rms(sum), 1e-4)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rms(diff), 1e-4)
}

func TestStoreSetUniqueRejectsDuplicate(t *testing.T) {
	s := docvec.NewStore(4)
	v := docvec.Vector{1, 0, 0, 0}
	assert.True(t, s.Set(1, v, true))
	assert.False(t, s.Set(1, v, true))
	assert.True(t, s.Set(1, v, false))
}

func TestStoreNearestExcludesSelf(t *testing.T) {
	s := docvec.NewStore(4)
	// Stored vectors are unit-RMS, as Compose produces them.
	s.Set(1, docvec.Vector{2, 0, 0, 0}, false)
	s.Set(2, docvec.Vector{1.6, 1.2, 0, 0}, false)
	s.Set(3, docvec.Vector{0, 0, 2, 0}, false)

	out := s.Nearest(docvec.Vector{2, 0, 0, 0}, 5, 0)
	for _, n := range out {
		assert.NotEqual(t, uint64(1), n.ID)
	}
	if len(out) > 0 {
		assert.Equal(t, uint64(2), out[0].ID)
	}
}

func TestStoreNearestOnEmptyStoreIsEmpty(t *testing.T) {
	s := docvec.NewStore(4)
	out := s.Nearest(docvec.Vector{1, 0, 0, 0}, 5, 0)
	assert.Empty(t, out)
}

func TestBuildStoreFromTabSeparatedCorpus(t *testing.T) {
	corpus := "1\ta b\n2\tb c\nnotanid\tskip me\n"
	store, err := docvec.BuildStore(sampleModel(), strings.NewReader(corpus), delims)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(1)
	assert.True(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok)
}
