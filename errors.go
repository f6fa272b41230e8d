// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"errors"
	"fmt"

	"github.com/bpowers/wdbc/internal/container"
	"github.com/bpowers/wdbc/internal/strblock"
	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

var (
	// ErrNotFound is returned when the file to read doesn't exist.
	ErrNotFound = errors.New("dbc file not found")
	// ErrFormat is the root of every error caused by file contents.
	ErrFormat = errors.New("malformed dbc file")
	// ErrSchema is returned for unusable schemas and for values that don't
	// fit their field.
	ErrSchema = schema.ErrSchema
	// ErrKey is returned when no record has the requested primary key.
	ErrKey = errors.New("no record with key")
	// ErrClosed is returned by a Reader used after Close.
	ErrClosed = errors.New("reader closed")
)

// Specific causes; each of these is returned wrapped together with ErrFormat
// or ErrSchema.
var (
	ErrBadSignature  = container.ErrBadSignature
	ErrBadHeader     = container.ErrBadHeader
	ErrWidthMismatch = errors.New("record width mismatch")
	ErrTruncated     = errors.New("file truncated")
	ErrStringOffset  = strblock.ErrInvalidOffset
	ErrLocale        = locale.ErrUnsupported

	ErrNoField = fmt.Errorf("%w: no such field", schema.ErrSchema)
	ErrValue   = fmt.Errorf("%w: value doesn't fit field", schema.ErrSchema)
)

func formatError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
}
