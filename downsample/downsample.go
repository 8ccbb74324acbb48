// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package downsample implements the frequent-word subsampling used
// while assembling training sentences: very common words (e.g. "the")
// are randomly dropped so rarer words get relatively more weight
// during gradient updates.
package downsample

import "math"

// Sampler decides, for a given word frequency, whether that
// occurrence should be skipped during sentence assembly. A Sampler
// built with threshold <= 0 never skips anything.
type Sampler struct {
	threshold           float32
	trainWords          uint64
	unfrequentThreshold float64
}

// New constructs a Sampler for a vocabulary whose retained words sum
// to trainWords occurrences, using sampleThreshold as the subsampling
// threshold (spec's SampleThreshold setting; 0 disables subsampling).
func New(sampleThreshold float32, trainWords uint64) *Sampler {
	s := &Sampler{threshold: sampleThreshold, trainWords: trainWords}
	if sampleThreshold > 0 {
		s.unfrequentThreshold = (float64(sampleThreshold) / (1.5 - 0.5*math.Sqrt(5))) * float64(trainWords)
	}
	return s
}

// Skip reports whether an occurrence of a word with frequency f
// should be dropped, drawing its random decision from u, a uniform
// value in [0, 1).
func (s *Sampler) Skip(f uint64, u float64) bool {
	if s.threshold <= 0 || float64(f) <= s.unfrequentThreshold {
		return false
	}
	z := float64(f) / float64(s.trainWords)
	pKeep := (math.Sqrt(z/float64(s.threshold)) + 1) * float64(s.threshold) / z
	return pKeep < u
}
