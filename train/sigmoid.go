// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package train

import "math"

// sigmoidTable precomputes sigma(x) at evenly spaced points across
// [-domain, +domain], so the SGD inner loops can look values up by
// index instead of calling math.Exp on every update.
type sigmoidTable struct {
	values []float32
	domain float32
	size   int
}

func newSigmoidTable(size int, domain float32) *sigmoidTable {
	t := &sigmoidTable{values: make([]float32, size), domain: domain, size: size}
	for i := 0; i < size; i++ {
		x := (float64(i)/float64(size)*2 - 1) * float64(domain)
		t.values[i] = float32(1.0 / (1.0 + math.Exp(-x)))
	}
	return t
}

// at evaluates an approximate sigma(f). ok is false when f falls
// outside [-domain, +domain]; the caller decides what to substitute
// (HS skips the update entirely, NS clamps to 0 or 1).
func (t *sigmoidTable) at(f float32) (v float32, ok bool) {
	if f < -t.domain || f > t.domain {
		return 0, false
	}
	idx := int((f + t.domain) * (float32(t.size) / (2 * t.domain)))
	if idx < 0 {
		idx = 0
	}
	if idx >= t.size {
		idx = t.size - 1
	}
	return t.values[idx], true
}
