// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package wordreader implements a stateful, allocation-light tokenizer
// over an immutable byte span (typically a corpusmap.Map's Data()).
// It yields a lazy sequence of words and sentence-delimiter markers
// within a bounded sub-range of the span, never allocating per call
// except for the copy of the returned word itself.
package wordreader

import (
	"strings"

	"github.com/grailbio/word2vec/errors"
)

// DefaultMaxWordLen is the default cap, in bytes, on a single token.
const DefaultMaxWordLen = 100

// Reader tokenizes a byte span in place. It holds only a borrowed
// reference to data; it never copies or allocates the span itself.
type Reader struct {
	data []byte

	wordDelimiters     string
	endOfSentenceChars string
	maxWordLen         int

	start int64 // inclusive
	stop  int64 // exclusive

	offset  int64
	buf     []byte
	bufLen  int
	prevEOS bool
}

// New constructs a Reader over the full span of data.
func New(data []byte, wordDelimiters, endOfSentenceChars string) *Reader {
	r, err := NewRange(data, wordDelimiters, endOfSentenceChars, 0, int64(len(data)), DefaultMaxWordLen)
	if err != nil {
		// len(data) bounds are always valid for the full span.
		panic(err)
	}
	return r
}

// NewRange constructs a Reader over the half-open byte range
// [start, stop) of data. endOfSentenceChars must be a subset of
// wordDelimiters; every character in it also acts as a delimiter. A
// maxWordLen of 0 selects DefaultMaxWordLen.
func NewRange(data []byte, wordDelimiters, endOfSentenceChars string, start, stop int64, maxWordLen int) (*Reader, error) {
	if start < 0 || stop < start || stop > int64(len(data)) {
		return nil, errors.E(errors.Invalid, "wordreader: range out of bounds")
	}
	if maxWordLen <= 0 {
		maxWordLen = DefaultMaxWordLen
	}
	return &Reader{
		data:               data,
		wordDelimiters:     wordDelimiters,
		endOfSentenceChars: endOfSentenceChars,
		maxWordLen:         maxWordLen,
		start:              start,
		stop:               stop,
		offset:             start,
		buf:                make([]byte, maxWordLen),
	}, nil
}

// Offset returns the current read position.
func (r *Reader) Offset() int64 { return r.offset }

// Reset returns the reader to its starting offset.
func (r *Reader) Reset() {
	r.offset = r.start
	r.bufLen = 0
	r.prevEOS = false
}

// Next returns the next token. ok is false at EOF or once the bounded
// range is exhausted. A returned word of "" with ok true signals an
// end-of-sentence marker; consecutive EOS characters collapse to a
// single such marker.
func (r *Reader) Next() (word string, ok bool) {
	for r.offset < r.stop {
		ch := r.data[r.offset]
		r.offset++

		isDelim := strings.IndexByte(r.wordDelimiters, ch) >= 0
		if !isDelim {
			if r.bufLen < r.maxWordLen {
				r.buf[r.bufLen] = ch
				r.bufLen++
			}
			continue
		}

		isEOS := strings.IndexByte(r.endOfSentenceChars, ch) >= 0
		if isEOS {
			if r.bufLen > 0 {
				r.offset--
				r.prevEOS = false
				break
			}
			if !r.prevEOS {
				r.prevEOS = true
				return "", true
			}
			continue // collapse repeated EOS
		}

		// plain word delimiter.
		if r.bufLen > 0 {
			r.prevEOS = false
			break
		}
		continue // collapse repeated delimiters
	}

	if r.bufLen > 0 {
		word = string(r.buf[:r.bufLen])
		r.bufLen = 0
		return word, true
	}
	return "", false
}
