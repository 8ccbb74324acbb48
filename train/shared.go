// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package train

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/grailbio/word2vec/corpusmap"
	"github.com/grailbio/word2vec/downsample"
	"github.com/grailbio/word2vec/errors"
	"github.com/grailbio/word2vec/huffman"
	"github.com/grailbio/word2vec/negsample"
	"github.com/grailbio/word2vec/vocab"
)

// shared is the cross-goroutine state every TrainWorker reads, and the
// embedding matrices every TrainWorker mutates without synchronization
// (Hogwild). Everything except inputLayer, outputLayer, processedWords,
// and alphaBits is immutable once constructed.
type shared struct {
	settings *Settings
	vocab    *vocab.Vocabulary
	huffman  *huffman.Tree // nil unless settings.UseHierarchicalSoftmax
	negDist  *negsample.Dist // nil if settings.UseHierarchicalSoftmax
	down     *downsample.Sampler
	sigmoid  *sigmoidTable
	corpus   *corpusmap.Map

	inputLayer  []float32 // size()*VectorSize, Hogwild-shared
	outputLayer []float32 // size()*VectorSize, Hogwild-shared

	processedWords uint64 // atomic
	alphaBits       uint32 // atomic, float32 bits published via alpha()/setAlpha()
	totalWords      uint64 // iterations * vocab.TrainWords(), used for alpha schedule

	progress func(alpha float32, percent float32)
}

func newShared(s *Settings, v *vocab.Vocabulary, corpus *corpusmap.Map, progress func(alpha, percent float32)) (*shared, error) {
	sh := &shared{
		settings: s,
		vocab:    v,
		down:     downsample.New(s.SampleThreshold, v.TrainWords()),
		sigmoid:  newSigmoidTable(s.SigmoidTableSize, s.SigmoidDomain),
		corpus:   corpus,
		progress: progress,
	}
	if s.UseHierarchicalSoftmax {
		sh.huffman = huffman.Build(v.Frequencies())
	} else if s.NegativeSamples > 0 {
		sh.negDist = negsample.Build(v.Frequencies())
		if sh.negDist.Empty() {
			return nil, errors.E(errors.UninitializedDependency, "train: negative sampling requested but vocabulary has no negative-sampling distribution")
		}
	}

	n := v.Size() * s.VectorSize
	sh.inputLayer = make([]float32, n)
	sh.outputLayer = make([]float32, n)
	r := rand.New(rand.NewSource(1))
	for i := range sh.inputLayer {
		sh.inputLayer[i] = (r.Float32() - 0.5) * 0.01
	}

	sh.totalWords = uint64(s.Iterations) * v.TrainWords()
	sh.setAlpha(s.InitialAlpha)
	return sh, nil
}

func (sh *shared) alpha() float32 {
	return math.Float32frombits(atomic.LoadUint32(&sh.alphaBits))
}

func (sh *shared) setAlpha(a float32) {
	atomic.StoreUint32(&sh.alphaBits, math.Float32bits(a))
}

// addProcessed atomically folds a worker's local processed-word count
// into the shared counter, recomputes and publishes alpha, and
// reports progress if a callback was supplied. This is the only
// synchronized state in the trainer besides the counter itself; the
// embedding matrices are updated with no synchronization at all.
func (sh *shared) addProcessed(delta uint64) {
	total := atomic.AddUint64(&sh.processedWords, delta)
	ratio := float32(total) / float32(sh.totalWords)
	alpha := sh.settings.InitialAlpha * (1 - ratio)
	if min := sh.settings.InitialAlpha * 0.0001; alpha < min {
		alpha = min
	}
	sh.setAlpha(alpha)
	if sh.progress != nil {
		sh.progress(alpha, ratio*100)
	}
}
