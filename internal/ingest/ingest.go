// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ingest turns delimiter-separated text lines into value tuples
// for wdbc.Writer.Append.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bpowers/wdbc/schema"
)

// ArraySeparator splits the elements of an array column.
const ArraySeparator = ","

var ErrLine = errors.New("bad input line")

// Parser maps input columns onto the named fields of a layout.
type Parser struct {
	layout  *schema.Layout
	delim   string
	columns []int
}

// NewParser returns a Parser that splits lines on delim and takes field i
// from input column columns[i].  A nil columns means field i is column i.
func NewParser(layout *schema.Layout, delim string, columns []int) (*Parser, error) {
	if delim == "" {
		return nil, errors.New("empty delimiter")
	}
	n := layout.NumValues()
	if columns == nil {
		columns = make([]int, n)
		for i := range columns {
			columns[i] = i
		}
	}
	if len(columns) != n {
		return nil, fmt.Errorf("%d columns mapped, %s has %d fields", len(columns), layout, n)
	}
	for _, c := range columns {
		if c < 0 {
			return nil, fmt.Errorf("negative column %d", c)
		}
	}
	return &Parser{layout: layout, delim: delim, columns: columns}, nil
}

// ParseColumns parses a column mapping like "2,0,1,3".  An empty string
// means the identity mapping.
func ParseColumns(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// ParseLine converts one line into a schema-ordered tuple.  Text fields
// are taken verbatim; numeric fields may be surrounded by spaces.
func (p *Parser) ParseLine(line string) ([]any, error) {
	line = strings.TrimRight(line, "\r\n")
	cols := strings.Split(line, p.delim)

	values := make([]any, p.layout.NumValues())
	for i := range values {
		s := p.layout.Value(i)
		c := p.columns[i]
		if c >= len(cols) {
			return nil, fmt.Errorf("%w: field %q wants column %d, line has %d", ErrLine, s.Name, c, len(cols))
		}
		v, err := parseValue(s, cols[c])
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrLine, s.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseValue(s *schema.Slot, text string) (any, error) {
	if !s.Array {
		return parseScalar(s.Kind, s.ElemWidth, text)
	}
	parts := strings.Split(text, ArraySeparator)
	if len(parts) != s.Count {
		return nil, fmt.Errorf("want %d elements, got %d", s.Count, len(parts))
	}
	out := make([]any, len(parts))
	for i, part := range parts {
		v, err := parseScalar(s.Kind, s.ElemWidth, part)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseScalar(kind schema.Kind, width int, text string) (any, error) {
	switch kind {
	case schema.KindInt:
		return strconv.ParseInt(strings.TrimSpace(text), 10, width*8)
	case schema.KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		return float32(f), err
	case schema.KindString, schema.KindLocalized:
		return text, nil
	}
	return nil, fmt.Errorf("can't parse %s", kind)
}

// Each calls fn with every non-blank line of r that doesn't start with
// '#'.  Line numbers start at 1.
func (p *Parser) Each(r io.Reader, fn func(lineNo int, values []any) error) error {
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		values, err := p.ParseLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := fn(lineNo, values); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("bufio.Scanner: %w", err)
	}
	return nil
}
