// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package docvec

import (
	"bufio"
	"container/heap"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/grailbio/word2vec/errors"
	"github.com/grailbio/word2vec/modelstore"
	"github.com/grailbio/word2vec/wordreader"
)

// Compose tokenizes doc with a WordReader using wordDelimiters (and no
// end-of-sentence markers), sums the word vectors of every token
// resolved against model, and RMS-normalizes the result. Compose
// returns errors.NoWords if no token resolved against model.
func Compose(model *modelstore.WordModel, doc string, wordDelimiters string) (Vector, error) {
	data := []byte(doc)
	r := wordreader.New(data, wordDelimiters, "")

	dim := model.Dim()
	acc := make([]float32, dim)
	var resolved int
	for {
		tok, ok := r.Next()
		if !ok {
			break
		}
		if tok == "" {
			continue
		}
		vec, ok := model.Lookup(tok)
		if !ok {
			continue
		}
		for i := 0; i < dim && i < len(vec); i++ {
			acc[i] += vec[i]
		}
		resolved++
	}
	if resolved == 0 {
		return nil, errors.E(errors.NoWords, "docvec: no token in document resolved against the word model")
	}

	var sumSq float64
	for _, x := range acc {
		sumSq += float64(x) * float64(x)
	}
	rms := math.Sqrt(sumSq / float64(dim))
	if rms > 0 {
		for i := range acc {
			acc[i] = float32(float64(acc[i]) / rms)
		}
	}
	return Vector(acc), nil
}

// Store is a concurrency-safe map from document id to its composed
// vector, supporting bounded nearest-neighbor search.
type Store struct {
	mu   sync.RWMutex
	docs map[uint64]Vector
	dim  int
}

// NewStore constructs an empty Store for vectors of the given
// dimensionality.
func NewStore(dim int) *Store {
	return &Store{docs: make(map[uint64]Vector), dim: dim}
}

// Set stores vector under id. If checkUnique is true and id is
// already present, Set returns false and leaves the store unchanged.
func (s *Store) Set(id uint64, vector Vector, checkUnique bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if checkUnique {
		if _, ok := s.docs[id]; ok {
			return false
		}
	}
	s.docs[id] = vector
	return true
}

// Erase removes id from the store, if present.
func (s *Store) Erase(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// Get returns the vector stored under id, if present.
func (s *Store) Get(id uint64) (Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.docs[id]
	return v, ok
}

// Len returns the number of documents currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Neighbor is one Nearest result: a document id paired with its
// RMS-dot similarity to the query vector.
type Neighbor struct {
	ID       uint64
	Distance float32
}

type neighborHeap []Neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].Distance < h[j].Distance }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func rmsDot(a, b Vector) float32 {
	var dot float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	if dot < 0 {
		dot = 0
	}
	return float32(math.Sqrt(float64(dot) / float64(len(a))))
}

// Nearest returns the amount documents most similar to vector,
// excluding matches above similarity 0.9999 (treated as the query
// itself) or below minDistance, in descending-similarity order. An
// empty store yields an empty result, never an error.
func (s *Store) Nearest(vector Vector, amount int, minDistance float32) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := &neighborHeap{}
	for id, v := range s.docs {
		d := rmsDot(vector, v)
		if d > 0.9999 || d < minDistance {
			continue
		}
		if h.Len() < amount {
			heap.Push(h, Neighbor{ID: id, Distance: d})
		} else if h.Len() > 0 && d > (*h)[0].Distance {
			heap.Pop(h)
			heap.Push(h, Neighbor{ID: id, Distance: d})
		}
	}

	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Neighbor)
	}
	return out
}

// BuildStore reads a corpus of "<doc-id> TAB <tokens>" lines from r,
// composing each line's tokens against model and storing the result
// under its doc id. Lines whose id field does not parse, or whose
// tokens resolve to no in-vocabulary word, are skipped rather than
// aborting the whole build.
func BuildStore(model *modelstore.WordModel, r io.Reader, wordDelimiters string) (*Store, error) {
	store := NewStore(model.Dim())
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue
		}
		id, err := parseUint64(line[:tab])
		if err != nil {
			continue
		}
		vec, err := Compose(model, line[tab+1:], wordDelimiters)
		if err != nil {
			continue
		}
		store.Set(id, vec, false)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(errors.IoError, "docvec: scan corpus", err)
	}
	return store, nil
}

func parseUint64(s string) (uint64, error) {
	var v uint64
	if s == "" {
		return 0, errors.E(errors.Invalid, "docvec: empty doc id")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.E(errors.Invalid, "docvec: non-numeric doc id "+s)
		}
		v = v*10 + uint64(c-'0')
	}
	return v, nil
}
