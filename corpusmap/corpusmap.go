// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package corpusmap provides zero-copy read and read/write access to a
// file's contents as a contiguous byte span, via mmap(2). It supplies
// the training corpus that the word reader tokenizes, treating a
// (possibly multi-gigabyte) file as an in-memory byte array without
// paying for a read(2) copy.
package corpusmap

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/grailbio/word2vec/errors"
)

// Map is a memory-mapped view of a file. The zero value is not usable;
// construct one with Open. A Map must be closed with Close once the
// caller (and everyone it lent data() to) is done with it: on Linux,
// unmapping invalidates every slice derived from Data.
type Map struct {
	path     string
	data     []byte
	writable bool
	f        *os.File
}

// Open maps path into memory.
//
// If writable is false, path is opened read-only and mapped
// PROT_READ/MAP_SHARED; the file must be non-empty or Open returns an
// EmptyFile error.
//
// If writable is true, path is opened (creating it if necessary),
// truncated to sizeIfCreating bytes, and mapped
// PROT_READ|PROT_WRITE/MAP_SHARED, so writes through Data are visible
// to later readers of the file once Close has synced them back.
func Open(path string, writable bool, sizeIfCreating int64) (*Map, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0600)
	if err != nil {
		return nil, errors.E(errors.IoError, "open "+path, err)
	}

	size := sizeIfCreating
	if writable {
		if err := f.Truncate(sizeIfCreating); err != nil {
			f.Close()
			return nil, errors.E(errors.IoError, "truncate "+path, err)
		}
	} else {
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errors.E(errors.IoError, "stat "+path, err)
		}
		if fi.Size() <= 0 {
			f.Close()
			return nil, errors.E(errors.EmptyFile, "file "+path+" is empty, nothing to read")
		}
		size = fi.Size()
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.E(errors.IoError, "mmap "+path, err)
	}

	return &Map{path: path, data: data, writable: writable, f: f}, nil
}

// Data returns the mapped byte span. Callers must not retain slices
// derived from it beyond a call to Close.
func (m *Map) Data() []byte { return m.data }

// Size returns the length of the mapped span.
func (m *Map) Size() int64 { return int64(len(m.data)) }

// Close unmaps the span and closes the underlying file descriptor. It
// is safe to call once; subsequent calls are no-ops.
func (m *Map) Close() (err error) {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	err = unix.Munmap(data)
	errors.CleanUp(m.f.Close, &err)
	if err != nil {
		return errors.E(errors.IoError, "close "+m.path, err)
	}
	return nil
}
