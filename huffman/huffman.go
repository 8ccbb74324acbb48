// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package huffman builds a Huffman code tree over vocabulary
// frequencies for Hierarchical Softmax training: the most frequent
// word gets the shortest bit path, the least frequent the longest.
package huffman

import "container/heap"

// Code is one vocabulary index's Huffman path: Bits is the sequence of
// branch directions from the root (false = left, true = right), and
// Points is the sequence of internal-node ids visited along the way.
// len(Points) == len(Bits); every point lies in [0, size-1) where size
// is the number of leaves the tree was built from.
type Code struct {
	Bits   []bool
	Points []uint64
}

// Tree is an immutable Huffman code tree over a frequency array. Tree
// is indexed by the same vocabulary index the frequencies came from.
type Tree struct {
	codes []Code
}

// node is either a leaf (index >= 0) or a branch (left/right set).
// Kept as a single struct rather than an interface so the priority
// queue never boxes interface values.
type node struct {
	freq        uint64
	index       int // leaf's vocabulary index, or -1 for a branch
	id          uint64
	left, right *node
}

func (n *node) isLeaf() bool { return n.left == nil }

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Build constructs a Tree over freqs, where freqs[i] is the frequency
// of vocabulary index i. len(freqs) must be >= 1.
func Build(freqs []uint64) *Tree {
	h := make(nodeHeap, len(freqs))
	for i, f := range freqs {
		h[i] = &node{freq: f, index: i}
	}
	heap.Init(&h)

	var branchID uint64
	for h.Len() > 1 {
		left := heap.Pop(&h).(*node)
		right := heap.Pop(&h).(*node)
		branch := &node{
			freq:  left.freq + right.freq,
			index: -1,
			id:    branchID,
			left:  left,
			right: right,
		}
		branchID++
		heap.Push(&h, branch)
	}

	t := &Tree{codes: make([]Code, len(freqs))}
	if h.Len() == 0 {
		return t
	}
	root := h[0]
	t.walk(root, nil, nil)
	return t
}

func (t *Tree) walk(n *node, bits []bool, points []uint64) {
	if n.isLeaf() {
		codeBits := make([]bool, len(bits))
		copy(codeBits, bits)
		codePoints := make([]uint64, len(points))
		copy(codePoints, points)
		t.codes[n.index] = Code{Bits: codeBits, Points: codePoints}
		return
	}
	t.walk(n.left, append(bits, false), append(points, n.id))
	t.walk(n.right, append(bits, true), append(points, n.id))
}

// Data returns the Code for vocabulary index i, and whether i was in
// range.
func (t *Tree) Data(i int) (Code, bool) {
	if i < 0 || i >= len(t.codes) {
		return Code{}, false
	}
	return t.codes[i], true
}

// Size returns the number of leaves the tree was built from.
func (t *Tree) Size() int { return len(t.codes) }
