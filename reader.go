// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bpowers/wdbc/internal/container"
	"github.com/bpowers/wdbc/internal/mmapfile"
	"github.com/bpowers/wdbc/internal/strblock"
	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

// Header is the fixed header at the start of a DBC file.
type Header = container.Header

// phase is how far a Reader has got through a file.  Phases only move
// forward, one step at a time.
type phase uint8

const (
	phaseUnopened phase = iota
	phaseHeaderRead
	phaseStringBlockRead
	phaseRecordsRead
)

func (p phase) String() string {
	switch p {
	case phaseUnopened:
		return "unopened"
	case phaseHeaderRead:
		return "header"
	case phaseStringBlockRead:
		return "string block"
	case phaseRecordsRead:
		return "records"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

type source interface {
	io.ReadSeeker
	io.Closer
}

// Reader decodes a DBC file into a Store.  Nothing is read until the
// first call that needs the file; the handle is released as soon as every
// record is decoded or anything fails.
type Reader struct {
	path   string
	opts   options
	logger *slog.Logger
	layout *schema.Layout

	phase  phase
	err    error
	src    source
	size   int64
	header container.Header
	block  *strblock.Block
	store  *Store
}

// NewReader prepares to read path with schema s.  Schema problems are
// reported here, before the file is touched.
func NewReader(path string, s schema.Schema, opts ...Option) (*Reader, error) {
	layout, err := schema.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("schema.Compile: %w", err)
	}
	r := newReader(path, opts)
	r.layout = layout
	return r, nil
}

// NewRawReader reads path without a schema: records are decoded as an
// int32 "Id" followed by an int32 array "data" holding the rest of the
// header's columns.
func NewRawReader(path string, opts ...Option) *Reader {
	return newReader(path, opts)
}

func newReader(path string, opts []Option) *Reader {
	o := newOptions(opts)
	return &Reader{
		path:   path,
		opts:   o,
		logger: o.logger.With("path", path),
	}
}

// ensurePhase runs every phase up to and including target.  A failed
// phase is not retried: its error is returned from then on.
func (r *Reader) ensurePhase(target phase) error {
	for r.phase < target {
		if r.err != nil {
			return r.err
		}

		var err error
		switch r.phase {
		case phaseUnopened:
			err = r.readHeader()
		case phaseHeaderRead:
			err = r.readStringBlock()
		case phaseStringBlockRead:
			err = r.readRecords()
		}
		if err != nil {
			r.err = err
			r.block = nil
			r.releaseSource()
			return err
		}
		r.phase++
	}
	return nil
}

func (r *Reader) open() (source, error) {
	if r.opts.mmap {
		return mmapfile.Open(r.path)
	}
	return os.Open(r.path)
}

func (r *Reader) releaseSource() {
	if r.src == nil {
		return
	}
	if err := r.src.Close(); err != nil {
		r.logger.Warn("close failed", "err", err)
	}
	r.src = nil
}

func (r *Reader) readHeader() error {
	src, err := r.open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return fmt.Errorf("open: %w", err)
	}
	r.src = src

	if r.size, err = src.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	var buf [container.HeaderSize]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return formatError(r.path, fmt.Errorf("%w: header: %v", ErrTruncated, err))
	}
	var h container.Header
	if err := h.UnmarshalBytes(buf[:]); err != nil {
		return formatError(r.path, err)
	}

	if r.layout == nil {
		layout, err := schema.Fallback(int(h.FieldCount))
		if err != nil {
			return formatError(r.path, err)
		}
		r.layout = layout
	}
	if int(h.RecordWidth) != r.layout.Width() {
		return formatError(r.path, fmt.Errorf("%w: header says %d bytes, %s", ErrWidthMismatch, h.RecordWidth, r.layout))
	}
	if int(h.FieldCount) != r.layout.Columns() {
		r.logger.Debug("field count differs from schema", "header", h.FieldCount, "schema", r.layout.Columns())
	}

	r.header = h
	r.logger.Debug("read header",
		"records", h.RecordCount,
		"fields", h.FieldCount,
		"recordWidth", h.RecordWidth,
		"stringBlockLen", h.StringBlockLen,
		"layout", fmt.Sprintf("%016x", r.layout.Fingerprint()))
	return nil
}

func (r *Reader) readStringBlock() error {
	h := &r.header
	if end := h.FileSize(); end > r.size {
		return formatError(r.path, fmt.Errorf("%w: header describes %d bytes, file has %d", ErrTruncated, end, r.size))
	}

	if _, err := r.src.Seek(h.StringBlockOffset(), io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	buf := make([]byte, h.StringBlockLen)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return formatError(r.path, fmt.Errorf("%w: string block: %v", ErrTruncated, err))
	}
	block, err := strblock.New(buf, r.opts.encoding)
	if err != nil {
		return formatError(r.path, err)
	}
	if _, err := r.src.Seek(container.HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	r.block = block
	r.logger.Debug("read string block", "len", block.Len())
	return nil
}

func (r *Reader) readRecords() error {
	defer r.releaseSource()

	store := NewStore(r.layout, r.opts.locale)
	br := bufio.NewReaderSize(io.LimitReader(r.src, r.header.RecordsSize()), 64*1024)
	raw := make([]byte, r.header.RecordWidth)
	for i := 0; i < int(r.header.RecordCount); i++ {
		if _, err := io.ReadFull(br, raw); err != nil {
			return formatError(r.path, fmt.Errorf("%w: record %d: %v", ErrTruncated, i, err))
		}
		values, err := decodeRecord(r.layout, r.block, raw)
		if err != nil {
			return formatError(r.path, fmt.Errorf("record %d: %w", i, err))
		}
		rec := &Record{store: store, values: values}
		if replaced := store.put(rec); replaced {
			r.logger.Debug("duplicate key, keeping the later record", "key", rec.Key(), "record", i)
		}
		r.logger.Debug("decoded record", "record", i, "key", rec.Key())
	}

	r.store = store
	// the string block is only needed to decode
	r.block = nil
	return nil
}

// Header reads (if needed) and returns the file header.
func (r *Reader) Header() (Header, error) {
	if err := r.ensurePhase(phaseHeaderRead); err != nil {
		return Header{}, err
	}
	return r.header, nil
}

// Layout returns the compiled schema records are decoded with.  For a
// raw reader this needs the header.
func (r *Reader) Layout() (*schema.Layout, error) {
	if r.layout == nil {
		if err := r.ensurePhase(phaseHeaderRead); err != nil {
			return nil, err
		}
	}
	return r.layout, nil
}

// Load reads the whole file.  It does nothing if the file is already
// loaded.
func (r *Reader) Load() error {
	return r.ensurePhase(phaseRecordsRead)
}

// Store returns the decoded records, loading them if needed.
func (r *Reader) Store() (*Store, error) {
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r.store, nil
}

// Get returns the record with the given primary key.
func (r *Reader) Get(key int64) (*Record, error) {
	s, err := r.Store()
	if err != nil {
		return nil, err
	}
	return s.Get(key)
}

// Records returns every record in file order (later duplicates of a key
// take the place of the first).
func (r *Reader) Records() ([]*Record, error) {
	s, err := r.Store()
	if err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// Len is the number of distinct keys in the file.
func (r *Reader) Len() (int, error) {
	s, err := r.Store()
	if err != nil {
		return 0, err
	}
	return s.Len(), nil
}

// SetLocale changes the locale localized fields resolve in, including for
// records that are already loaded.
func (r *Reader) SetLocale(t locale.Tag) {
	r.opts.locale = t
	if r.store != nil {
		r.store.SetLocale(t)
	}
}

// Close releases the file if a load is in progress.  Loaded records stay
// usable.
func (r *Reader) Close() error {
	if r.phase < phaseRecordsRead && r.err == nil {
		r.err = ErrClosed
	}
	r.releaseSource()
	return nil
}
