// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package train

import (
	"math/rand"

	"github.com/grailbio/word2vec/vocab"
	"github.com/grailbio/word2vec/wordreader"
)

const maxSentenceWords = 1000

// reportEvery words of local progress, a worker folds its count into
// the shared processedWords counter. Matches the reference
// implementation's ~0.01% granularity.
func reportEvery(totalWords uint64) uint64 {
	n := totalWords / 10000
	if n == 0 {
		n = 1
	}
	return n
}

// worker holds everything owned by a single thread id: its own random
// engine and scratch buffers. It never synchronizes with its peers
// except through shared's atomics.
type worker struct {
	sh       *shared
	rng      *rand.Rand
	sentence []vocab.Entry
	hidden   []float32
	errVec   []float32
}

func newWorker(sh *shared, seed int64) *worker {
	return &worker{
		sh:       sh,
		rng:      rand.New(rand.NewSource(seed)),
		sentence: make([]vocab.Entry, 0, maxSentenceWords),
		hidden:   make([]float32, sh.settings.VectorSize),
		errVec:   make([]float32, sh.settings.VectorSize),
	}
}

// run executes this worker's byte-range share of every epoch.
func (w *worker) run(start, stop int64) error {
	s := w.sh.settings
	reportStep := reportEvery(w.sh.totalWords)

	for epoch := 0; epoch < s.Iterations; epoch++ {
		r, err := wordreader.NewRange(w.sh.corpus.Data(), s.WordDelimiters, s.EndOfSentenceChars, start, stop, 0)
		if err != nil {
			return err
		}

		var localProcessed uint64
		w.sentence = w.sentence[:0]
		for {
			tok, ok := r.Next()
			if !ok {
				if len(w.sentence) > 0 {
					w.trainSentence()
					w.sentence = w.sentence[:0]
				}
				break
			}
			if tok == "" {
				if len(w.sentence) > 0 {
					w.trainSentence()
					w.sentence = w.sentence[:0]
				}
				continue
			}

			entry, ok := w.sh.vocab.Lookup(tok)
			if !ok {
				continue
			}
			localProcessed++
			if localProcessed >= reportStep {
				w.sh.addProcessed(localProcessed)
				localProcessed = 0
			}
			if w.sh.down.Skip(entry.Frequency, w.rng.Float64()) {
				continue
			}
			w.sentence = append(w.sentence, entry)
			if len(w.sentence) >= maxSentenceWords {
				w.trainSentence()
				w.sentence = w.sentence[:0]
			}
		}
		if localProcessed > 0 {
			w.sh.addProcessed(localProcessed)
		}
	}
	return nil
}

func (w *worker) trainSentence() {
	for i := range w.sentence {
		if w.sh.settings.UseSkipGram {
			w.skipGram(i)
		} else {
			w.cbow(i)
		}
	}
}

// contextRange returns the shrunk context window positions around i,
// following the reference implementation's uniform window-shrink b.
func (w *worker) contextRange(i int) (lo, hi int) {
	window := w.sh.settings.Window
	if window <= 0 {
		return i, i - 1 // empty range
	}
	b := w.rng.Intn(window)
	lo = i - window + b
	if lo < 0 {
		lo = 0
	}
	hi = i + window - b
	if hi >= len(w.sentence) {
		hi = len(w.sentence) - 1
	}
	return lo, hi
}

func (w *worker) cbow(i int) {
	lo, hi := w.contextRange(i)
	vectorSize := w.sh.settings.VectorSize

	for j := range w.hidden {
		w.hidden[j] = 0
	}
	var count int
	for k := lo; k <= hi; k++ {
		if k == i {
			continue
		}
		shift := w.sentence[k].Index * uint64(vectorSize)
		row := w.sh.inputLayer[shift : shift+uint64(vectorSize)]
		for j := 0; j < vectorSize; j++ {
			w.hidden[j] += row[j]
		}
		count++
	}
	if count == 0 {
		return
	}
	inv := 1.0 / float32(count)
	for j := 0; j < vectorSize; j++ {
		w.hidden[j] *= inv
	}

	for j := range w.errVec {
		w.errVec[j] = 0
	}
	target := w.sentence[i].Index
	w.update(w.hidden, target)

	for k := lo; k <= hi; k++ {
		if k == i {
			continue
		}
		shift := w.sentence[k].Index * uint64(vectorSize)
		row := w.sh.inputLayer[shift : shift+uint64(vectorSize)]
		for j := 0; j < vectorSize; j++ {
			row[j] += w.errVec[j]
		}
	}
}

func (w *worker) skipGram(i int) {
	lo, hi := w.contextRange(i)
	vectorSize := w.sh.settings.VectorSize
	target := w.sentence[i].Index

	for k := lo; k <= hi; k++ {
		if k == i {
			continue
		}
		shift := w.sentence[k].Index * uint64(vectorSize)
		row := w.sh.inputLayer[shift : shift+uint64(vectorSize)]

		for j := range w.errVec {
			w.errVec[j] = 0
		}
		w.update(row, target)

		for j := 0; j < vectorSize; j++ {
			row[j] += w.errVec[j]
		}
	}
}

// update runs the HS or NS inner step with hiddenVec as the input
// activation, accumulating the gradient into w.errVec. When neither
// Hierarchical Softmax nor Negative Sampling is configured, no
// output-layer update is possible and update is a no-op: the
// embedding matrix must equal its initial values in that
// configuration.
func (w *worker) update(hiddenVec []float32, target uint64) {
	s := w.sh.settings
	if s.UseHierarchicalSoftmax {
		w.hierarchicalSoftmax(hiddenVec, target)
		return
	}
	if s.NegativeSamples > 0 {
		w.negativeSampling(hiddenVec, target)
	}
}

func (w *worker) hierarchicalSoftmax(hiddenVec []float32, target uint64) {
	vectorSize := w.sh.settings.VectorSize
	code, ok := w.sh.huffman.Data(int(target))
	if !ok {
		return
	}
	alpha := w.sh.alpha()
	for d := 0; d < len(code.Bits); d++ {
		l2 := code.Points[d] * uint64(vectorSize)
		row := w.sh.outputLayer[l2 : l2+uint64(vectorSize)]

		var f float32
		for j := 0; j < vectorSize; j++ {
			f += hiddenVec[j] * row[j]
		}
		sig, ok := w.sh.sigmoid.at(f)
		if !ok {
			continue
		}
		bit := float32(0)
		if code.Bits[d] {
			bit = 1
		}
		g := (1 - bit - sig) * alpha
		for j := 0; j < vectorSize; j++ {
			w.errVec[j] += g * row[j]
			row[j] += g * hiddenVec[j]
		}
	}
}

func (w *worker) negativeSampling(hiddenVec []float32, target uint64) {
	vectorSize := w.sh.settings.VectorSize
	alpha := w.sh.alpha()

	for k := 0; k <= w.sh.settings.NegativeSamples; k++ {
		t := target
		label := float32(1)
		if k > 0 {
			t = uint64(w.sh.negDist.Sample(w.rng.Float64(), w.rng.Float64()))
			if t == target {
				continue
			}
			label = 0
		}

		l2 := t * uint64(vectorSize)
		row := w.sh.outputLayer[l2 : l2+uint64(vectorSize)]

		var f float32
		for j := 0; j < vectorSize; j++ {
			f += hiddenVec[j] * row[j]
		}
		sig, ok := w.sh.sigmoid.at(f)
		if !ok {
			if f < 0 {
				sig = 0
			} else {
				sig = 1
			}
		}
		g := (label - sig) * alpha
		for j := 0; j < vectorSize; j++ {
			w.errVec[j] += g * row[j]
			row[j] += g * hiddenVec[j]
		}
	}
}
