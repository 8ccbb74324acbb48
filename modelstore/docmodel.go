// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package modelstore

import (
	"encoding/binary"
	"math"
	"os"
	"unsafe"

	"github.com/grailbio/word2vec/errors"
)

// sizeT is the width, in bytes, of the C size_t fields the reference
// document-model format uses for its count and dim headers. The file
// is not portable across machines with a different native word size.
const sizeT = int(unsafe.Sizeof(uint(0)))

// SaveDocModel writes path as little-endian binary: sizeT bytes of
// count, sizeT bytes of dim, then count records of (u64 id, dim x
// float32), in the order vectors is ranged over (unspecified). The byte
// order is little-endian on every host; it matches the host's native
// layout only on little-endian machines.
func SaveDocModel(path string, vectors map[uint64][]float32, dim int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(errors.IoError, "create "+path, err)
	}
	defer errors.CleanUp(f.Close, &err)

	order := binary.LittleEndian
	hdr := make([]byte, 2*sizeT)
	putSizeT(hdr[0:sizeT], uint(len(vectors)))
	putSizeT(hdr[sizeT:2*sizeT], uint(dim))
	if _, err := f.Write(hdr); err != nil {
		return errors.E(errors.IoError, "write header "+path, err)
	}

	rec := make([]byte, 8+4*dim)
	for id, vec := range vectors {
		order.PutUint64(rec[0:8], id)
		for i, x := range vec {
			order.PutUint32(rec[8+4*i:8+4*i+4], math.Float32bits(x))
		}
		if _, err := f.Write(rec); err != nil {
			return errors.E(errors.IoError, "write record "+path, err)
		}
	}
	return nil
}

// LoadDocModel reads path's little-endian binary layout, rejecting a
// file whose size does not exactly equal
// 2*sizeT + count*(8 + dim*4).
func LoadDocModel(path string) (vectors map[uint64][]float32, dim int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.E(errors.IoError, "read "+path, err)
	}
	if len(data) < 2*sizeT {
		return nil, 0, errors.E(errors.MalformedModel, path+": truncated header")
	}

	count := int(getSizeT(data[0:sizeT]))
	dim = int(getSizeT(data[sizeT : 2*sizeT]))

	recSize := 8 + 4*dim
	want := 2*sizeT + count*recSize
	if len(data) != want {
		return nil, 0, errors.E(errors.MalformedModel, path+": size mismatch")
	}

	vectors = make(map[uint64][]float32, count)
	pos := 2 * sizeT
	order := binary.LittleEndian
	for i := 0; i < count; i++ {
		id := order.Uint64(data[pos : pos+8])
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			bits := order.Uint32(data[pos+8+4*j : pos+8+4*j+4])
			vec[j] = math.Float32frombits(bits)
		}
		vectors[id] = vec
		pos += recSize
	}
	return vectors, dim, nil
}

func putSizeT(b []byte, v uint) {
	switch sizeT {
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
}

func getSizeT(b []byte) uint64 {
	switch sizeT {
	case 8:
		return binary.LittleEndian.Uint64(b)
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	}
	return 0
}
