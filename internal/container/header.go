// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package container encodes the fixed header of a DBC file.
//
// A DBC file looks like:
//
//	┌───────────────────┐
//	│ header (20 bytes) │
//	├───────────────────┤
//	│ recordCount x     │
//	│ recordWidth bytes │
//	│                   │
//	├───────────────────┤
//	│ string block      │
//	│                   │
//	└───────────────────┘
//
// and the header is, little-endian throughout:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| W  | D  | B  | C  | record count      |
//	+----+----+----+----+----+----+----+----+
//	| field count       | record width      |
//	+----+----+----+----+----+----+----+----+
//	| string block len  |
//	+----+----+----+----+
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const HeaderSize = 20

// Magic is the signature at the start of every DBC file.
var Magic = [4]byte{'W', 'D', 'B', 'C'}

var (
	ErrBadSignature = errors.New("bad signature")
	ErrShortHeader  = errors.New("header too short")
	ErrBadHeader    = errors.New("header value out of range")
)

type Header struct {
	RecordCount    uint32
	FieldCount     uint32
	RecordWidth    uint32
	StringBlockLen uint32
}

// MarshalTo writes h into the first HeaderSize bytes of b.
func (h *Header) MarshalTo(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: %d < %d", ErrShortHeader, len(b), HeaderSize)
	}
	for _, v := range []uint32{h.RecordCount, h.FieldCount, h.RecordWidth, h.StringBlockLen} {
		if v > math.MaxInt32 {
			return fmt.Errorf("%w: %d doesn't fit an int32", ErrBadHeader, v)
		}
	}

	b = b[:HeaderSize]
	copy(b[:4], Magic[:])
	binary.LittleEndian.PutUint32(b[4:8], h.RecordCount)
	binary.LittleEndian.PutUint32(b[8:12], h.FieldCount)
	binary.LittleEndian.PutUint32(b[12:16], h.RecordWidth)
	binary.LittleEndian.PutUint32(b[16:20], h.StringBlockLen)
	return nil
}

func (h *Header) WriteTo(w io.Writer) (n int64, err error) {
	var buf [HeaderSize]byte
	if err := h.MarshalTo(buf[:]); err != nil {
		return 0, err
	}
	written, err := w.Write(buf[:])
	if err != nil {
		return int64(written), fmt.Errorf("write: %w", err)
	}
	return int64(written), nil
}

// UnmarshalBytes decodes and validates a header.  Counts are int32 on
// disk; negative values are rejected.
func (h *Header) UnmarshalBytes(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: %d < %d", ErrShortHeader, len(b), HeaderSize)
	}
	b = b[:HeaderSize]

	if [4]byte(b[:4]) != Magic {
		return fmt.Errorf("%w: %q -- not a DBC file or corrupted", ErrBadSignature, b[:4])
	}

	var fields [4]uint32
	for i := range fields {
		v := binary.LittleEndian.Uint32(b[4+4*i:])
		if v > math.MaxInt32 {
			return fmt.Errorf("%w: %d is negative", ErrBadHeader, int32(v))
		}
		fields[i] = v
	}
	h.RecordCount = fields[0]
	h.FieldCount = fields[1]
	h.RecordWidth = fields[2]
	h.StringBlockLen = fields[3]

	return nil
}

// RecordsSize is the byte length of the record region.
func (h *Header) RecordsSize() int64 {
	return int64(h.RecordCount) * int64(h.RecordWidth)
}

// StringBlockOffset is where the string block starts in the file.
func (h *Header) StringBlockOffset() int64 {
	return HeaderSize + h.RecordsSize()
}

// FileSize is the exact size of a file described by h.
func (h *Header) FileSize() int64 {
	return h.StringBlockOffset() + int64(h.StringBlockLen)
}
