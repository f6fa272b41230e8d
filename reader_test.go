// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/wdbc/internal/container"
	"github.com/bpowers/wdbc/schema"
)

func plainSchema() schema.Schema {
	return schema.New(schema.Int32("Id"), schema.String("Name"))
}

func TestReader_Phases(t *testing.T) {
	w, err := NewWriter(plainSchema())
	require.NoError(t, err)
	require.NoError(t, w.Append(1, "one"))
	require.NoError(t, w.Append(2, "two"))
	path := writeTestFile(t, w)

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	// nothing happens until asked
	assert.Equal(t, phaseUnopened, r.phase)
	assert.Nil(t, r.src)

	h, err := r.Header()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.RecordCount)
	assert.Equal(t, uint32(8), h.RecordWidth)
	assert.Equal(t, phaseHeaderRead, r.phase)
	assert.NotNil(t, r.src)

	require.NoError(t, r.ensurePhase(phaseStringBlockRead))
	assert.Equal(t, phaseStringBlockRead, r.phase)
	assert.NotNil(t, r.block)

	require.NoError(t, r.Load())
	assert.Equal(t, phaseRecordsRead, r.phase)
	// the file is released once records are decoded
	assert.Nil(t, r.src)

	store := r.store
	// later loads are no-ops, even if the file goes away
	require.NoError(t, os.Remove(path))
	require.NoError(t, r.Load())
	assert.Same(t, store, r.store)
	_, err = r.Header()
	require.NoError(t, err)

	rec, err := r.Get(2)
	require.NoError(t, err)
	name, err := rec.String("Name")
	require.NoError(t, err)
	assert.Equal(t, "two", name)
}

func TestReader_NotFound(t *testing.T) {
	r, err := NewReader(filepath.Join(t.TempDir(), "missing.dbc"), plainSchema())
	require.NoError(t, err)

	_, err = r.Header()
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrFormat))

	// failures are sticky
	err2 := r.Load()
	assert.Equal(t, err, err2)
}

func TestReader_BadSchema(t *testing.T) {
	_, err := NewReader("/doesnt/matter", schema.New())
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestReader_BadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dbc")
	contents := append([]byte("WDB2"), le32(0, 2, 8, 1)...)
	contents = append(contents, 0)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Header()
	assert.True(t, errors.Is(err, ErrFormat))
	assert.True(t, errors.Is(err, ErrBadSignature))
	assert.Nil(t, r.src)
}

func TestReader_WidthMismatch(t *testing.T) {
	// 12-byte records where the schema wants 8
	path := buildFile(t,
		container.Header{RecordCount: 1, FieldCount: 3, RecordWidth: 12, StringBlockLen: 1},
		le32(1, 0, 0),
		[]byte{0})

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Records()
	assert.True(t, errors.Is(err, ErrFormat))
	assert.True(t, errors.Is(err, ErrWidthMismatch))
	// rejected before anything past the header was read
	assert.Equal(t, phaseUnopened, r.phase)
	assert.Nil(t, r.block)
	assert.Nil(t, r.store)
	assert.Nil(t, r.src)
}

func TestReader_StringOffsets(t *testing.T) {
	for name, tc := range map[string]struct {
		offset uint32
		block  string
	}{
		"no terminator":   {offset: 5, block: "\x00abc\x00def"},
		"mid string":      {offset: 2, block: "\x00abc\x00"},
		"past the end":    {offset: 64, block: "\x00abc\x00"},
		"at the end":      {offset: 5, block: "\x00abc\x00"},
		"block missing 0": {offset: 0, block: "abc\x00"},
	} {
		t.Run(name, func(t *testing.T) {
			path := buildFile(t,
				container.Header{RecordCount: 2, FieldCount: 2, RecordWidth: 8, StringBlockLen: uint32(len(tc.block))},
				append(le32(1, 0), le32(2, tc.offset)...),
				[]byte(tc.block))

			r, err := NewReader(path, plainSchema())
			require.NoError(t, err)
			err = r.Load()
			assert.True(t, errors.Is(err, ErrFormat), "%v", err)
			// a failed load leaves no partial store behind
			assert.Nil(t, r.store)
			assert.Nil(t, r.src)
			_, err = r.Get(1)
			assert.True(t, errors.Is(err, ErrFormat))
		})
	}

	// the sizes agree, so only the missing terminator can fail the load
	block := []byte("\x00abc\x00def")
	path := buildFile(t,
		container.Header{RecordCount: 1, FieldCount: 2, RecordWidth: 8, StringBlockLen: uint32(len(block))},
		le32(1, 5),
		block)
	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	err = r.Load()
	assert.True(t, errors.Is(err, ErrStringOffset), "%v", err)
	assert.False(t, errors.Is(err, ErrTruncated), "%v", err)
}

func TestReader_Truncated(t *testing.T) {
	// header promises two records, file holds one
	path := buildFile(t,
		container.Header{RecordCount: 2, FieldCount: 2, RecordWidth: 8, StringBlockLen: 1},
		le32(1, 0),
		nil)

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Header()
	require.NoError(t, err)
	err = r.Load()
	assert.True(t, errors.Is(err, ErrFormat))
	assert.True(t, errors.Is(err, ErrTruncated))

	path = filepath.Join(t.TempDir(), "short.dbc")
	require.NoError(t, os.WriteFile(path, []byte("WDBC\x01\x00"), 0o644))
	r, err = NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Header()
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestReader_DuplicateKeys(t *testing.T) {
	w, err := NewWriter(plainSchema())
	require.NoError(t, err)
	require.NoError(t, w.Append(5, "first"))
	require.NoError(t, w.Append(6, "other"))
	require.NoError(t, w.Append(5, "second"))
	path := writeTestFile(t, w)

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	n, err := r.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := r.Get(5)
	require.NoError(t, err)
	name, err := rec.String("Name")
	require.NoError(t, err)
	assert.Equal(t, "second", name)

	store, err := r.Store()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, store.Keys())
}

func TestReader_MissingKey(t *testing.T) {
	w, err := NewWriter(plainSchema())
	require.NoError(t, err)
	require.NoError(t, w.Append(1, "one"))
	path := writeTestFile(t, w)

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Get(2)
	assert.True(t, errors.Is(err, ErrKey))
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestReader_Close(t *testing.T) {
	w, err := NewWriter(plainSchema())
	require.NoError(t, err)
	require.NoError(t, w.Append(1, "one"))
	path := writeTestFile(t, w)

	r, err := NewReader(path, plainSchema())
	require.NoError(t, err)
	_, err = r.Header()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Nil(t, r.src)
	assert.True(t, errors.Is(r.Load(), ErrClosed))

	// closing a loaded reader keeps its records
	r, err = NewReader(path, plainSchema())
	require.NoError(t, err)
	require.NoError(t, r.Load())
	require.NoError(t, r.Close())
	_, err = r.Get(1)
	require.NoError(t, err)
}
