// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package modelstore

import (
	"container/heap"
	"math"
)

// Neighbor is one result of a Nearest query: a word paired with its
// RMS-dot similarity to the query vector.
type Neighbor struct {
	Word     string
	Distance float32
}

// rmsDot computes sqrt(max(0, dot(a,b))/dim), the similarity measure
// used throughout this model: when both vectors are unit-RMS-normalized,
// which every vector loaded via LoadWordModel is, dot(a,b)/dim is their
// cosine similarity and rmsDot is its square root, clamped at 0.
func rmsDot(a, b []float32) float32 {
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

// Distance returns the RMS-dot similarity between two words already
// present in the model.
func (m *WordModel) Distance(a, b string) (float32, bool) {
	va, ok := m.vectors[a]
	if !ok {
		return 0, false
	}
	vb, ok := m.vectors[b]
	if !ok {
		return 0, false
	}
	return rmsDot(va, vb), true
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

// nearest performs a bounded min-heap top-amount search over
// candidates against query, excluding any candidate whose similarity
// exceeds 0.9999 (treated as the query itself) or falls below
// minDistance. Results are returned in descending-similarity order.
func nearest(query []float32, candidates func(yield func(word string, vec []float32) bool), amount int, minDistance float32) []Neighbor {
	h := &neighborHeap{}
	candidates(func(word string, vec []float32) bool {
		d := rmsDot(query, vec)
		if d > 0.9999 || d < minDistance {
			return true
		}
		if h.Len() < amount {
			heap.Push(h, Neighbor{Word: word, Distance: d})
		} else if h.Len() > 0 && d > (*h)[0].Distance {
			heap.Pop(h)
			heap.Push(h, Neighbor{Word: word, Distance: d})
		}
		return true
	})

	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Neighbor)
	}
	return out
}

// Nearest returns the amount most-similar words to word in the model,
// excluding matches above similarity 0.9999 (i.e. word itself) and
// below minDistance, in descending-similarity order. Nearest returns
// an empty slice if word is absent from the model.
func (m *WordModel) Nearest(word string, amount int, minDistance float32) []Neighbor {
	q, ok := m.vectors[word]
	if !ok {
		return nil
	}
	return nearest(q, func(yield func(string, []float32) bool) {
		for w, v := range m.vectors {
			if !yield(w, v) {
				return
			}
		}
	}, amount, minDistance)
}

// NearestToVector returns the amount words in the model most similar
// to query, excluding any word in exclude, matches above similarity
// 0.9999, and matches below minDistance, in descending-similarity
// order. It is used to answer analogy queries, where query is a
// composed vector rather than a word already in the model.
func (m *WordModel) NearestToVector(query []float32, amount int, minDistance float32, exclude map[string]bool) []Neighbor {
	return nearest(query, func(yield func(string, []float32) bool) {
		for w, v := range m.vectors {
			if exclude[w] {
				continue
			}
			if !yield(w, v) {
				return
			}
		}
	}, amount, minDistance)
}
