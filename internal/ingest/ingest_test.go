// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/wdbc/schema"
)

func titlesLayout(t *testing.T) *schema.Layout {
	l, err := schema.Compile(schema.New(
		schema.Int32("Id"),
		schema.Pad(4),
		schema.LocString("TitleMale"),
		schema.LocString("TitleFemale"),
		schema.Int32("Index"),
	))
	require.NoError(t, err)
	return l
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns("2, 0,1,3")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1, 3}, cols)

	cols, err = ParseColumns("")
	require.NoError(t, err)
	assert.Nil(t, cols)

	_, err = ParseColumns("1,x")
	assert.Error(t, err)
}

func TestParser_TitleLine(t *testing.T) {
	p, err := NewParser(titlesLayout(t), ";", []int{2, 0, 1, 3})
	require.NoError(t, err)

	values, err := p.ParseLine("%s Bezarius;%s Bezaria;178; 42 \r\n")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(178), "%s Bezarius", "%s Bezaria", int64(42)}, values)

	_, err = p.ParseLine("only;two")
	assert.True(t, errors.Is(err, ErrLine))

	_, err = p.ParseLine("a;b;not a number;1")
	assert.True(t, errors.Is(err, ErrLine))

	// doesn't fit an int32
	_, err = p.ParseLine("a;b;4294967296;1")
	assert.True(t, errors.Is(err, ErrLine))
}

func TestParser_Arrays(t *testing.T) {
	l, err := schema.Compile(schema.New(
		schema.Int32("Id"),
		schema.Array("Flags", schema.Int8(""), 3),
		schema.Float32("Scale"),
		schema.Array("Icons", schema.String(""), 2),
	))
	require.NoError(t, err)

	p, err := NewParser(l, "|", nil)
	require.NoError(t, err)

	values, err := p.ParseLine("5|1,-2,3|1.5|a,b")
	require.NoError(t, err)
	assert.Equal(t, []any{
		int64(5),
		[]any{int64(1), int64(-2), int64(3)},
		float32(1.5),
		[]any{"a", "b"},
	}, values)

	_, err = p.ParseLine("5|1,2|1.5|a,b")
	assert.True(t, errors.Is(err, ErrLine))
	_, err = p.ParseLine("5|1,2,300|1.5|a,b")
	assert.True(t, errors.Is(err, ErrLine))
}

func TestNewParser_Errors(t *testing.T) {
	l := titlesLayout(t)

	_, err := NewParser(l, "", nil)
	assert.Error(t, err)
	_, err = NewParser(l, ";", []int{0, 1})
	assert.Error(t, err)
	_, err = NewParser(l, ";", []int{0, 1, 2, -1})
	assert.Error(t, err)
}

func TestParser_Each(t *testing.T) {
	p, err := NewParser(titlesLayout(t), ";", []int{2, 0, 1, 3})
	require.NoError(t, err)

	input := strings.Join([]string{
		"# male;female;id;index",
		"Alpha;Alpha;1;1",
		"",
		"Beta;Beta;2;2",
	}, "\n")

	var lines []int
	var ids []any
	err = p.Each(strings.NewReader(input), func(lineNo int, values []any) error {
		lines = append(lines, lineNo)
		ids = append(ids, values[0])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, lines)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	stop := errors.New("stop")
	err = p.Each(strings.NewReader(input), func(int, []any) error { return stop })
	assert.True(t, errors.Is(err, stop))
	assert.Contains(t, err.Error(), "line 2")

	err = p.Each(strings.NewReader("x;y;z;w"), func(int, []any) error { return nil })
	assert.True(t, errors.Is(err, ErrLine))
}
