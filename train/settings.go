// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package train implements the concurrent CBOW/Skip-Gram trainer: a
// single shared embedding matrix mutated lock-free (Hogwild-style) by
// one worker goroutine per thread, driven by a memory-mapped corpus,
// a frequency-ordered vocabulary, and either a Huffman tree
// (Hierarchical Softmax) or a piecewise-linear noise distribution
// (Negative Sampling).
package train

// Settings holds every tunable the trainer needs. It is built once by
// NewSettings and never mutated afterward, so a *Settings may be
// shared freely across worker goroutines without synchronization.
type Settings struct {
	MinWordFreq            uint64
	VectorSize              int
	Window                  int
	SigmoidTableSize        int
	SigmoidDomain           float32
	SampleThreshold         float32
	UseHierarchicalSoftmax  bool
	NegativeSamples         int
	Threads                 int
	Iterations              int
	InitialAlpha            float32
	UseSkipGram             bool
	WordDelimiters          string
	EndOfSentenceChars      string
}

// Option mutates a Settings during construction.
type Option func(*Settings)

// NewSettings builds a Settings with the reference implementation's
// defaults, then applies opts in order.
func NewSettings(opts ...Option) *Settings {
	s := &Settings{
		MinWordFreq:            5,
		VectorSize:             100,
		Window:                 5,
		SigmoidTableSize:       1000,
		SigmoidDomain:          6.0,
		SampleThreshold:        1e-3,
		UseHierarchicalSoftmax: false,
		NegativeSamples:        5,
		Threads:                12,
		Iterations:             5,
		InitialAlpha:           0.05,
		UseSkipGram:            false,
		WordDelimiters:         " \n,.-!?:;/\"#$%&'()*+<=>@[]\\^_`{|}~\t\v\f\r",
		EndOfSentenceChars:     ".\n?!",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithVectorSize(n int) Option           { return func(s *Settings) { s.VectorSize = n } }
func WithWindow(n int) Option                { return func(s *Settings) { s.Window = n } }
func WithSampleThreshold(t float32) Option   { return func(s *Settings) { s.SampleThreshold = t } }
func WithHierarchicalSoftmax(b bool) Option  { return func(s *Settings) { s.UseHierarchicalSoftmax = b } }
func WithNegativeSamples(n int) Option       { return func(s *Settings) { s.NegativeSamples = n } }
func WithThreads(n int) Option                { return func(s *Settings) { s.Threads = n } }
func WithIterations(n int) Option            { return func(s *Settings) { s.Iterations = n } }
func WithMinWordFreq(f uint64) Option        { return func(s *Settings) { s.MinWordFreq = f } }
func WithInitialAlpha(a float32) Option      { return func(s *Settings) { s.InitialAlpha = a } }
func WithSkipGram(b bool) Option             { return func(s *Settings) { s.UseSkipGram = b } }
func WithWordDelimiters(d string) Option     { return func(s *Settings) { s.WordDelimiters = d } }
func WithEndOfSentenceChars(e string) Option { return func(s *Settings) { s.EndOfSentenceChars = e } }
