// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package strblock implements the string block at the end of a DBC file:
// null-terminated strings addressed by their byte offset from the start of
// the block, where offset 0 is always the empty string.
package strblock

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncoding is the code page strings are stored in.
var DefaultEncoding encoding.Encoding = charmap.CodePage850

var (
	ErrInvalidOffset = errors.New("invalid string offset")
	ErrMissingNull   = errors.New("string block doesn't start with a null byte")
	ErrEmbeddedNull  = errors.New("string contains a null byte")
	ErrTooLarge      = errors.New("string block too large")
)

// Block is a string block read from a file.
type Block struct {
	buf []byte
	dec *encoding.Decoder
}

// New wraps buf, which is retained.  A nil enc means DefaultEncoding.
func New(buf []byte, enc encoding.Encoding) (*Block, error) {
	if len(buf) > 0 && buf[0] != 0 {
		return nil, ErrMissingNull
	}
	if enc == nil {
		enc = DefaultEncoding
	}
	return &Block{buf: buf, dec: enc.NewDecoder()}, nil
}

func (b *Block) Len() int {
	return len(b.buf)
}

// Resolve returns the string starting at off.  Any off other than 0 must
// point at the first byte of a string (just after a null byte) whose
// terminating null is within the block.
func (b *Block) Resolve(off uint32) (string, error) {
	if off == 0 {
		return "", nil
	}
	if uint64(off) >= uint64(len(b.buf)) {
		return "", fmt.Errorf("%w: %d beyond block of %d bytes", ErrInvalidOffset, off, len(b.buf))
	}
	if b.buf[off-1] != 0 {
		return "", fmt.Errorf("%w: %d isn't the start of a string", ErrInvalidOffset, off)
	}
	n := bytes.IndexByte(b.buf[off:], 0)
	if n < 0 {
		return "", fmt.Errorf("%w: %d has no terminating null", ErrInvalidOffset, off)
	}
	s, err := b.dec.Bytes(b.buf[off : int(off)+n])
	if err != nil {
		return "", fmt.Errorf("%w: %d: decode: %v", ErrInvalidOffset, off, err)
	}
	return string(s), nil
}

// Builder accumulates a string block for writing.  Every Append adds a new
// string; identical strings aren't shared.
type Builder struct {
	buf []byte
	enc *encoding.Encoder
}

// NewBuilder returns a Builder holding just the leading null byte.  A nil
// enc means DefaultEncoding.
func NewBuilder(enc encoding.Encoding) *Builder {
	if enc == nil {
		enc = DefaultEncoding
	}
	return &Builder{
		buf: []byte{0},
		enc: enc.NewEncoder(),
	}
}

// Append stores s and returns the offset it can be resolved at.
func (b *Builder) Append(s string) (uint32, error) {
	encoded, err := b.enc.Bytes([]byte(s))
	if err != nil {
		return 0, fmt.Errorf("encode %q: %w", s, err)
	}
	if bytes.IndexByte(encoded, 0) >= 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrEmbeddedNull)
	}
	if uint64(len(b.buf))+uint64(len(encoded))+1 > math.MaxInt32 {
		return 0, ErrTooLarge
	}

	off := uint32(len(b.buf))
	b.buf = append(b.buf, encoded...)
	b.buf = append(b.buf, 0)
	return off, nil
}

// Len is the current size of the block, which is also the offset the
// next Append will return.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Truncate drops everything appended after the block was n bytes long.
func (b *Builder) Truncate(n int) {
	if n < 1 || n > len(b.buf) {
		panic("strblock: Truncate out of range")
	}
	b.buf = b.buf[:n]
}

// Bytes returns the block contents, valid until the next Append.
func (b *Builder) Bytes() []byte {
	return b.buf
}
