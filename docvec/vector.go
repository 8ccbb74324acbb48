// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package docvec composes document vectors from word models and
// provides a bounded nearest-neighbor store over them, plus the
// vector arithmetic used by analogy-style queries ("king - man +
// woman").
package docvec

import (
	"math"

	"github.com/grailbio/word2vec/errors"
)

// Vector is an RMS-normalized composed vector: every Vector this
// package hands back satisfies sqrt(sum(x^2)/dim) == 1 within
// floating-point tolerance.
type Vector []float32

// rmsNormalize divides v in place by sqrt(sum(x^2)/dim), matching the
// arithmetic convention the reference implementation's vector_t uses
// for operator+=/operator-=. Returns errors.NoWords if v sums to the
// zero vector, since no direction can be normalized from it.
func rmsNormalize(v []float32) error {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq <= 0 {
		return errors.E(errors.NoWords, "docvec: vector has no magnitude to normalize")
	}
	rms := math.Sqrt(sumSq / float64(len(v)))
	for i := range v {
		v[i] = float32(float64(v[i]) / rms)
	}
	return nil
}

// Add returns a freshly RMS-normalized a+b. a and b must have equal
// length.
func (a Vector) Add(b Vector) (Vector, error) {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	if err := rmsNormalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sub returns a freshly RMS-normalized a-b. a and b must have equal
// length.
func (a Vector) Sub(b Vector) (Vector, error) {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	if err := rmsNormalize(out); err != nil {
		return nil, err
	}
	return out, nil
}
