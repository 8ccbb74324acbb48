// Copyright 2016 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package vocab builds a frequency-ordered vocabulary from a tokenized
// training corpus: a word's presence, frequency, and final index are
// all decided here, before a single embedding weight is ever touched.
package vocab

import (
	"crypto/sha256"
	"sort"

	"github.com/grailbio/word2vec/log"
	"github.com/grailbio/word2vec/wordreader"
)

// EndOfSentence is the reserved word occupying vocabulary index 0.
const EndOfSentence = "</s>"

// Entry is one vocabulary record: a word's dense index and its
// occurrence count in the training corpus (after stop-word and
// minimum-frequency filtering).
type Entry struct {
	Index     uint64
	Frequency uint64
}

// Vocabulary is a frequency-ordered word -> Entry map built from a
// training corpus. Index 0 is always EndOfSentence, whose stored
// frequency is one greater than the most frequent ordinary word so
// that it sorts first.
type Vocabulary struct {
	entries     map[string]Entry
	words       []string // index -> word
	freqs       []uint64 // index -> frequency
	trainWords  uint64   // sum of frequencies of words that survived filtering
	totalWords  uint64   // total non-EOS, non-stop-word tokens seen in the corpus
}

// ProgressCallback reports corpus-scan progress as a percentage in
// [0, 100]. It may be invoked from the goroutine calling Build, at
// no more than 10000 equally-spaced points.
type ProgressCallback func(percent float32)

// StatsCallback reports final vocabulary statistics once, after
// sorting: vocabulary size, trainWords, and totalWords.
type StatsCallback func(size, trainWords, totalWords uint64)

// Build scans corpus with a wordreader using wordDelimiters and
// endOfSentenceChars, counting word frequencies, excludes any word
// present in stopWords, drops words with frequency below minWordFreq,
// and returns the resulting frequency-ordered Vocabulary.
//
// stopWords and progress/stats callbacks may be nil.
func Build(
	corpus []byte,
	stopWords []byte,
	wordDelimiters, endOfSentenceChars string,
	minWordFreq uint64,
	progress ProgressCallback,
	stats StatsCallback,
) *Vocabulary {
	stopSet := map[string]struct{}{}
	if stopWords != nil {
		sum := sha256.Sum256(stopWords)
		log.Info.Printf("vocab: stop-words digest sha256:%x", sum)
		sr := wordreader.New(stopWords, wordDelimiters, endOfSentenceChars)
		for {
			w, ok := sr.Next()
			if !ok {
				break
			}
			if w != "" {
				stopSet[w] = struct{}{}
			}
		}
	}

	type counted struct {
		word string
		freq uint64
	}
	counts := map[string]uint64{}
	var totalWords uint64

	r := wordreader.New(corpus, wordDelimiters, endOfSentenceChars)
	progressStep := int64(len(corpus))/10000 + 1
	var lastProgressOffset int64
	for {
		w, ok := r.Next()
		if !ok {
			break
		}
		if w == "" {
			w = EndOfSentence
		} else if _, stop := stopSet[w]; stop {
			continue
		}
		counts[w]++
		totalWords++

		if progress != nil && r.Offset()-lastProgressOffset >= progressStep {
			progress(float32(r.Offset()) / float32(len(corpus)) * 100.0)
			lastProgressOffset = r.Offset()
		}
	}

	for w := range stopSet {
		delete(counts, w)
	}
	if eosFreq, ok := counts[EndOfSentence]; ok {
		totalWords -= eosFreq
		delete(counts, EndOfSentence)
	}

	var surviving []counted
	var trainWords uint64
	for w, f := range counts {
		if f >= minWordFreq {
			surviving = append(surviving, counted{w, f})
			trainWords += f
		}
	}
	sort.Slice(surviving, func(i, j int) bool {
		if surviving[i].freq != surviving[j].freq {
			return surviving[i].freq > surviving[j].freq
		}
		// The original's tie-break was whatever order the map happened to
		// iterate in; pin it to the word itself so vocabulary construction
		// is reproducible across runs (the trainer's Hogwild update does
		// not otherwise guarantee reproducibility, but index assignment
		// should not add its own source of nondeterminism).
		return surviving[i].word < surviving[j].word
	})

	v := &Vocabulary{
		entries:    make(map[string]Entry, len(surviving)+1),
		words:      make([]string, len(surviving)+1),
		freqs:      make([]uint64, len(surviving)+1),
		trainWords: trainWords,
		totalWords: totalWords,
	}

	eosFreq := uint64(1)
	if len(surviving) > 0 {
		eosFreq = surviving[0].freq + 1
	}
	v.words[0] = EndOfSentence
	v.freqs[0] = eosFreq
	v.entries[EndOfSentence] = Entry{Index: 0, Frequency: eosFreq}
	for i, c := range surviving {
		idx := uint64(i + 1)
		v.words[idx] = c.word
		v.freqs[idx] = c.freq
		v.entries[c.word] = Entry{Index: idx, Frequency: c.freq}
	}

	if stats != nil {
		stats(uint64(len(v.words)), trainWords, totalWords)
	}
	return v
}

// Lookup returns the Entry for word, if present.
func (v *Vocabulary) Lookup(word string) (Entry, bool) {
	e, ok := v.entries[word]
	return e, ok
}

// Size returns the number of words in the vocabulary, including the
// reserved end-of-sentence marker.
func (v *Vocabulary) Size() int { return len(v.words) }

// Frequencies returns the frequency array indexed by word index.
func (v *Vocabulary) Frequencies() []uint64 { return v.freqs }

// Words returns the words in index order.
func (v *Vocabulary) Words() []string { return v.words }

// TrainWords returns the sum of frequencies of words retained after
// filtering (excludes the end-of-sentence marker's synthetic
// frequency).
func (v *Vocabulary) TrainWords() uint64 { return v.trainWords }

// TotalWords returns the total count of non-EOS tokens seen while
// scanning the corpus, excluding stop words, before minimum-frequency
// filtering.
func (v *Vocabulary) TotalWords() uint64 { return v.totalWords }
