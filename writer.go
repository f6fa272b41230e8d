// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/bpowers/wdbc/internal/container"
	"github.com/bpowers/wdbc/internal/strblock"
	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

const defaultBufferSize = 256 * 1024

// Writer accumulates records and serializes them as a DBC file.  Records
// are written in the order they were appended, whatever their keys.
type Writer struct {
	layout  *schema.Layout
	opts    options
	logger  *slog.Logger
	block   *strblock.Builder
	records []byte
	count   int
	scratch []byte
}

func NewWriter(s schema.Schema, opts ...Option) (*Writer, error) {
	layout, err := schema.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("schema.Compile: %w", err)
	}
	o := newOptions(opts)
	return &Writer{
		layout:  layout,
		opts:    o,
		logger:  o.logger,
		block:   strblock.NewBuilder(o.encoding),
		scratch: make([]byte, layout.Width()),
	}, nil
}

func (w *Writer) Layout() *schema.Layout { return w.layout }

// Len is the number of records appended so far.
func (w *Writer) Len() int { return w.count }

// Append adds a record given as one value per named field in schema
// order (padding is skipped).  Integers may be any Go integer type that
// fits the field; arrays are slices of the element type.  A string for a
// localized field is stored in the writer's locale slot; a Localized
// value keeps every slot.  On error nothing is added.
func (w *Writer) Append(values ...any) error {
	mark := w.block.Len()
	if err := w.pack(values); err != nil {
		w.block.Truncate(mark)
		return err
	}
	w.records = append(w.records, w.scratch...)
	w.count++
	return nil
}

func (w *Writer) pack(values []any) error {
	if len(values) != w.layout.NumValues() {
		return fmt.Errorf("%w: got %d values, %s has %d fields", ErrValue, len(values), w.layout, w.layout.NumValues())
	}
	if w.count >= math.MaxInt32 {
		return fmt.Errorf("%w: too many records", ErrValue)
	}

	clear(w.scratch)
	for i, v := range values {
		s := w.layout.Value(i)
		b := w.scratch[s.Offset : s.Offset+s.Width]

		if str, ok := v.(string); ok && s.Kind == schema.KindLocalized {
			off, err := w.block.Append(str)
			if err != nil {
				return fmt.Errorf("%q: %w", s.Name, err)
			}
			offsets, mask := locale.Build(off, w.opts.locale)
			for j, o := range offsets {
				binary.LittleEndian.PutUint32(b[j*4:], o)
			}
			binary.LittleEndian.PutUint32(b[locale.Slots*4:], mask)
			continue
		}

		nv, err := normalize(s, v, w.opts.locale)
		if err != nil {
			return err
		}
		if err := encodeSlot(s, nv, w.block, b); err != nil {
			return fmt.Errorf("%q: %w", s.Name, err)
		}
	}
	return nil
}

// AddRecords appends every record, typically from a Store loaded with the
// same schema.  Either all records are added or none are.
func (w *Writer) AddRecords(recs ...*Record) error {
	mark, count, size := w.block.Len(), w.count, len(w.records)
	for i, rec := range recs {
		var err error
		if rec == nil {
			err = fmt.Errorf("%w: record %d of %d is nil", ErrValue, i, len(recs))
		} else if err = w.addRecord(rec); err != nil {
			err = fmt.Errorf("record %d: %w", rec.Key(), err)
		}
		if err != nil {
			w.block.Truncate(mark)
			w.count = count
			w.records = w.records[:size]
			return err
		}
	}
	return nil
}

func (w *Writer) addRecord(rec *Record) error {
	if got, want := rec.store.layout.Fingerprint(), w.layout.Fingerprint(); got != want {
		return fmt.Errorf("%w: record layout %016x doesn't match writer layout %016x", ErrSchema, got, want)
	}
	return w.Append(rec.Values()...)
}

func (w *Writer) header() container.Header {
	return container.Header{
		RecordCount:    uint32(w.count),
		FieldCount:     uint32(w.layout.Columns()),
		RecordWidth:    uint32(w.layout.Width()),
		StringBlockLen: uint32(w.block.Len()),
	}
}

// WriteTo serializes the header, every record and the string block in one
// sequential pass.  Calling it again, after more appends or not, writes
// the whole file again.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	bw := bufio.NewWriterSize(dst, defaultBufferSize)

	h := w.header()
	n, err := h.WriteTo(bw)
	if err != nil {
		return n, fmt.Errorf("header: %w", err)
	}
	written, err := bw.Write(w.records)
	n += int64(written)
	if err != nil {
		return n, fmt.Errorf("records: %w", err)
	}
	written, err = bw.Write(w.block.Bytes())
	n += int64(written)
	if err != nil {
		return n, fmt.Errorf("string block: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("bufio.Flush: %w", err)
	}

	w.logger.Debug("wrote dbc",
		"records", h.RecordCount,
		"fields", h.FieldCount,
		"recordWidth", h.RecordWidth,
		"stringBlockLen", h.StringBlockLen,
		"bytes", n)
	return n, nil
}

// WriteFile writes the file to a temporary file next to path and renames
// it into place, so path is either the old file or the complete new one.
func (w *Writer) WriteFile(path string) (err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "wdbc-writer.*.dbc")
	if err != nil {
		return fmt.Errorf("CreateTemp failed (may need permissions for dir %q): %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = w.WriteTo(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("f.Sync: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("f.Close: %w", err)
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("os.Chmod(0644): %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	w.logger.Debug("renamed into place", "path", path)
	return nil
}
