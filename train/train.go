// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package train

import (
	"github.com/grailbio/word2vec/corpusmap"
	"github.com/grailbio/word2vec/traverse"
	"github.com/grailbio/word2vec/vocab"
)

// ProgressFunc is invoked from worker goroutines as training
// advances; alpha is the current learning rate and percent is overall
// completion in [0, 100]. Implementations must be safe to call
// concurrently from multiple goroutines.
type ProgressFunc func(alpha float32, percent float32)

// Run trains word vectors for v over corpus using settings, launching
// exactly settings.Threads worker goroutines over disjoint byte ranges
// of corpus.Data(). Embedding updates are unsynchronized by design
// (Hogwild); progress, if non-nil, is called throughout.
//
// Run returns the trained vectors keyed by word. The output-layer
// matrix is discarded once workers join.
func Run(settings *Settings, v *vocab.Vocabulary, corpus *corpusmap.Map, progress ProgressFunc) (map[string][]float32, error) {
	sh, err := newShared(settings, v, corpus, progress)
	if err != nil {
		return nil, err
	}

	size := int64(corpus.Size())
	threads := settings.Threads
	if threads < 1 {
		threads = 1
	}

	err = traverse.Each(threads).Do(func(t int) error {
		start := int64(t) * size / int64(threads)
		stop := int64(t+1) * size / int64(threads)
		if t == threads-1 {
			stop = size
		}
		w := newWorker(sh, int64(t)+1)
		return w.run(start, stop)
	})
	if err != nil {
		return nil, err
	}

	return sh.finalize(), nil
}

// finalize copies each vocabulary word's input-layer row into a plain
// map, discarding the output layer. Called after every worker has
// joined, so no further synchronization is needed here.
func (sh *shared) finalize() map[string][]float32 {
	vectorSize := sh.settings.VectorSize
	words := sh.vocab.Words()
	out := make(map[string][]float32, len(words))
	for i, word := range words {
		shift := i * vectorSize
		row := make([]float32, vectorSize)
		copy(row, sh.inputLayer[shift:shift+vectorSize])
		out[word] = row
	}
	return out
}
