// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/bpowers/wdbc/internal/strblock"
	"github.com/bpowers/wdbc/locale"
)

// Option configures a Reader or Writer.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	locale   locale.Tag
	encoding encoding.Encoding
	mmap     bool
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		locale:   locale.EnUS,
		encoding: strblock.DefaultEncoding,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets a logger for debug output about headers, string blocks
// and individual records.  If not provided, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLocale selects the locale localized string fields are read in, or
// written to.  The default is locale.EnUS.
func WithLocale(t locale.Tag) Option {
	return func(o *options) {
		o.locale = t
	}
}

// ParseLocale is locale.Parse with failures reported as ErrSchema, like
// any other configuration mistake.
func ParseLocale(s string) (locale.Tag, error) {
	t, err := locale.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return t, nil
}

// WithEncoding overrides the code page of the string block (cp850 by
// default).
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *options) {
		if enc != nil {
			o.encoding = enc
		}
	}
}

// WithMmap makes a Reader map the file into memory instead of reading it
// through a file handle.  Writers ignore it.
func WithMmap() Option {
	return func(o *options) {
		o.mmap = true
	}
}
