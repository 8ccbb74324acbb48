// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package modelstore saves and loads trained word and document models
// in the reference implementation's byte-exact file formats: an ASCII
// header plus newline-delimited records for word models, and a
// little-endian binary layout with size_t-wide headers for document
// models.
package modelstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/grailbio/word2vec/errors"
	gunsafe "github.com/grailbio/word2vec/unsafe"
)

// WordModel is an in-memory loaded word-vector model, indexed by
// word. Every vector in a loaded WordModel is RMS-normalized on load
// (divided by sqrt(sum(x^2)/dim)); SaveWordModel does not normalize
// what it writes, preserving each call site's own convention.
type WordModel struct {
	vectors map[string][]float32
	dim     int
}

// NewWordModel wraps an already-composed word->vector map (e.g. the
// output of train.Run) for saving, or for in-process queries without
// a round trip through disk. vectors is not normalized by NewWordModel.
func NewWordModel(vectors map[string][]float32, dim int) *WordModel {
	return &WordModel{vectors: vectors, dim: dim}
}

// Vectors returns the underlying word->vector map.
func (m *WordModel) Vectors() map[string][]float32 { return m.vectors }

// Dim returns the vector dimensionality.
func (m *WordModel) Dim() int { return m.dim }

// Lookup returns the vector for word, if present.
func (m *WordModel) Lookup(word string) ([]float32, bool) {
	v, ok := m.vectors[word]
	return v, ok
}

// SaveWordModel writes path as "<count> <dim>\n" followed by count
// records of "word SP <dim little-endian float32> LF". Word order is
// unspecified. Vectors are written as given, with no normalization.
func SaveWordModel(path string, vectors map[string][]float32, dim int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(errors.IoError, "create "+path, err)
	}
	defer errors.CleanUp(f.Close, &err)

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d %d\n", len(vectors), dim); err != nil {
		return errors.E(errors.IoError, "write header "+path, err)
	}

	var buf [4]byte
	for word, vec := range vectors {
		if _, err := w.WriteString(word); err != nil {
			return errors.E(errors.IoError, "write word "+path, err)
		}
		if err := w.WriteByte(' '); err != nil {
			return errors.E(errors.IoError, "write "+path, err)
		}
		for _, x := range vec {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
			if _, err := w.Write(buf[:]); err != nil {
				return errors.E(errors.IoError, "write vector "+path, err)
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.E(errors.IoError, "write "+path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.E(errors.IoError, "flush "+path, err)
	}
	return nil
}

// LoadWordModel parses path's header and records, RMS-normalizing
// each loaded vector (divide by sqrt(sum(x^2)/dim)), and returns the
// resulting WordModel.
func LoadWordModel(path string) (*WordModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(errors.IoError, "read "+path, err)
	}

	headerEnd := -1
	for i, b := range data {
		if b == '\n' {
			headerEnd = i
			break
		}
	}
	if headerEnd < 0 {
		return nil, errors.E(errors.MalformedModel, path+": missing header")
	}
	var count, dim int
	if _, err := fmt.Sscanf(gunsafe.BytesToString(data[:headerEnd]), "%d %d", &count, &dim); err != nil {
		return nil, errors.E(errors.MalformedModel, path+": unparsable header", err)
	}

	vectors := make(map[string][]float32, count)
	pos := headerEnd + 1
	for i := 0; i < count; i++ {
		wordEnd := -1
		for j := pos; j < len(data); j++ {
			if data[j] == ' ' {
				wordEnd = j
				break
			}
		}
		if wordEnd < 0 {
			return nil, errors.E(errors.MalformedModel, path+": truncated record (missing word separator)")
		}
		word := string(data[pos:wordEnd])
		pos = wordEnd + 1

		need := dim * 4
		if pos+need+1 > len(data) {
			return nil, errors.E(errors.MalformedModel, path+": truncated record (short vector)")
		}
		vec := make([]float32, dim)
		var sumSq float64
		for j := 0; j < dim; j++ {
			bits := binary.LittleEndian.Uint32(data[pos : pos+4])
			x := math.Float32frombits(bits)
			vec[j] = x
			sumSq += float64(x) * float64(x)
			pos += 4
		}
		if data[pos] != '\n' {
			return nil, errors.E(errors.MalformedModel, path+": truncated record (missing newline)")
		}
		pos++

		rms := math.Sqrt(sumSq / float64(dim))
		if rms > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / rms)
			}
		}
		vectors[word] = vec
	}

	return &WordModel{vectors: vectors, dim: dim}, nil
}
