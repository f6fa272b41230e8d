// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapfile maps a whole file read-only into memory and exposes it
// as an io.ReadSeeker.
package mmapfile

import (
	"bytes"
	"sync/atomic"
)

// File is a read-only view of a mapped file.  Reads past Close panic or
// fault, so Close only once every reader is done.
type File struct {
	*bytes.Reader
	data     []byte
	isClosed atomic.Bool
	unmap    func([]byte) error
}

func newFile(data []byte, unmap func([]byte) error) *File {
	return &File{
		Reader: bytes.NewReader(data),
		data:   data,
		unmap:  unmap,
	}
}

// Data returns the mapped bytes.  The slice must never be written to.
func (f *File) Data() []byte {
	return f.data
}

// Len is the size of the mapped file.
func (f *File) Len() int {
	return len(f.data)
}

func (f *File) Close() error {
	if f.isClosed.Swap(true) {
		return nil
	}
	data := f.data
	f.data = nil
	f.Reader = bytes.NewReader(nil)
	if f.unmap == nil || len(data) == 0 {
		return nil
	}
	return f.unmap(data)
}
