// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package container

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	origH := Header{
		RecordCount:    3,
		FieldCount:     21,
		RecordWidth:    84,
		StringBlockLen: 129,
	}

	// this should be an error
	err := origH.MarshalTo(nil)
	assert.True(t, errors.Is(err, ErrShortHeader))

	var newH Header
	headerBytes := make([]byte, HeaderSize)
	// this should be an error -- missing magic number
	err = newH.UnmarshalBytes(headerBytes)
	assert.True(t, errors.Is(err, ErrBadSignature))

	err = origH.MarshalTo(headerBytes)
	require.NoError(t, err)
	assert.Equal(t, []byte("WDBC"), headerBytes[:4])
	assert.Equal(t, []byte{3, 0, 0, 0}, headerBytes[4:8])

	// this should be an error
	err = newH.UnmarshalBytes(nil)
	assert.True(t, errors.Is(err, ErrShortHeader))

	err = newH.UnmarshalBytes(headerBytes)
	require.NoError(t, err)
	assert.Equal(t, origH, newH)

	assert.Equal(t, int64(3*84), newH.RecordsSize())
	assert.Equal(t, int64(20+3*84), newH.StringBlockOffset())
	assert.Equal(t, int64(20+3*84+129), newH.FileSize())
}

func TestHeader_WriteTo(t *testing.T) {
	h := Header{RecordCount: 1, FieldCount: 2, RecordWidth: 8, StringBlockLen: 1}
	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize), n)
	assert.Equal(t, []byte{
		'W', 'D', 'B', 'C',
		1, 0, 0, 0,
		2, 0, 0, 0,
		8, 0, 0, 0,
		1, 0, 0, 0,
	}, buf.Bytes())
}

func TestHeader_Errors(t *testing.T) {
	good := []byte{
		'W', 'D', 'B', 'C',
		1, 0, 0, 0,
		2, 0, 0, 0,
		8, 0, 0, 0,
		1, 0, 0, 0,
	}

	var h Header
	require.NoError(t, h.UnmarshalBytes(good))

	bad := append([]byte(nil), good...)
	copy(bad, "WDB2")
	assert.True(t, errors.Is(h.UnmarshalBytes(bad), ErrBadSignature))

	bad = append([]byte(nil), good...)
	copy(bad[12:16], []byte{0xff, 0xff, 0xff, 0xff})
	assert.True(t, errors.Is(h.UnmarshalBytes(bad), ErrBadHeader))

	big := Header{RecordCount: 1 << 31}
	assert.True(t, errors.Is(big.MarshalTo(make([]byte, HeaderSize)), ErrBadHeader))
}
