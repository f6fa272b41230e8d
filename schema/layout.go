// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgryski/go-farm"

	"github.com/bpowers/wdbc/locale"
)

// ErrSchema is returned for schemas that can't be compiled and for values
// that don't fit the field they are destined for.
var ErrSchema = errors.New("invalid schema")

// Kind is the primitive type stored in a Slot.
type Kind uint8

const (
	KindPadding Kind = iota
	KindInt
	KindFloat
	KindString
	KindLocalized
)

func (k Kind) String() string {
	switch k {
	case KindPadding:
		return "pad"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindLocalized:
		return "locstring"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// LocalizedWidth is the on-disk size of a LocalizedString: one offset per
// locale slot plus the mask word.
const LocalizedWidth = (locale.Slots + 1) * 4

// Slot is the compiled form of one Field.
type Slot struct {
	Field Field
	Name  string
	Kind  Kind
	// Offset of the first byte of this field within a record.
	Offset int
	// ElemWidth is the width of one element; Width == ElemWidth*Count.
	ElemWidth int
	Count     int
	Width     int
	// Columns is how many header columns the field accounts for.
	Columns int
	// Array is set for FixedArray fields, even when Count == 1.
	Array bool
	// Value is the index of the decoded value in a record, or -1 for padding.
	Value int
}

// Layout is a compiled Schema.  It is immutable and safe to share.
type Layout struct {
	schema  Schema
	slots   []Slot
	values  []int // value index -> slot index
	byName  map[string]int
	width   int
	columns int
	key     int
}

// Compile computes the record width and per-field byte offsets of s.
// It fails with ErrSchema if s has no fields, a field has an unsupported
// width, two fields share a name, or the primary field isn't a FixedInt.
func Compile(s Schema) (*Layout, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrSchema)
	}

	l := &Layout{
		schema: s,
		slots:  make([]Slot, 0, len(s.Fields)),
		byName: make(map[string]int, len(s.Fields)),
		key:    -1,
	}

	off := 0
	for i, f := range s.Fields {
		slot, err := compileField(f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		slot.Offset = off
		slot.Value = -1
		if slot.Kind != KindPadding {
			if slot.Name == "" {
				return nil, fmt.Errorf("%w: field %d has no name", ErrSchema, i)
			}
			if _, dup := l.byName[slot.Name]; dup {
				return nil, fmt.Errorf("%w: duplicate field %q", ErrSchema, slot.Name)
			}
			slot.Value = len(l.values)
			l.byName[slot.Name] = slot.Value
			l.values = append(l.values, len(l.slots))
		}
		off += slot.Width
		l.columns += slot.Columns
		l.slots = append(l.slots, slot)
	}
	l.width = off

	key := s.key()
	v, ok := l.byName[key]
	if !ok {
		return nil, fmt.Errorf("%w: primary field %q not in schema", ErrSchema, key)
	}
	if ks := l.slots[l.values[v]]; ks.Kind != KindInt || ks.Array {
		return nil, fmt.Errorf("%w: primary field %q must be an integer", ErrSchema, key)
	}
	l.key = v

	return l, nil
}

func validIntWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}

func compileField(f Field) (Slot, error) {
	switch f := f.(type) {
	case FixedInt:
		if !validIntWidth(f.Width) {
			return Slot{}, fmt.Errorf("%w: %q: unsupported integer width %d", ErrSchema, f.FieldName, f.Width)
		}
		return scalar(f, KindInt, f.Width), nil
	case Float:
		return scalar(f, KindFloat, 4), nil
	case Padding:
		if !validIntWidth(f.Width) {
			return Slot{}, fmt.Errorf("%w: unsupported padding width %d", ErrSchema, f.Width)
		}
		return scalar(f, KindPadding, f.Width), nil
	case PlainString:
		return scalar(f, KindString, 4), nil
	case LocalizedString:
		return Slot{
			Field:     f,
			Name:      f.FieldName,
			Kind:      KindLocalized,
			ElemWidth: LocalizedWidth,
			Count:     1,
			Width:     LocalizedWidth,
			Columns:   locale.Slots + 1,
		}, nil
	case FixedArray:
		if f.Count <= 0 {
			return Slot{}, fmt.Errorf("%w: %q: array count must be positive, got %d", ErrSchema, f.FieldName, f.Count)
		}
		var elem Slot
		switch e := f.Elem.(type) {
		case FixedInt, Float, PlainString:
			var err error
			if elem, err = compileField(e); err != nil {
				return Slot{}, fmt.Errorf("%q element: %w", f.FieldName, err)
			}
		default:
			return Slot{}, fmt.Errorf("%w: %q: unsupported array element %T", ErrSchema, f.FieldName, f.Elem)
		}
		return Slot{
			Field:     f,
			Name:      f.FieldName,
			Kind:      elem.Kind,
			ElemWidth: elem.Width,
			Count:     f.Count,
			Width:     elem.Width * f.Count,
			Columns:   f.Count,
			Array:     true,
		}, nil
	case nil:
		return Slot{}, fmt.Errorf("%w: nil field", ErrSchema)
	default:
		return Slot{}, fmt.Errorf("%w: unsupported field type %T", ErrSchema, f)
	}
}

func scalar(f Field, kind Kind, width int) Slot {
	return Slot{
		Field:     f,
		Name:      f.Name(),
		Kind:      kind,
		ElemWidth: width,
		Count:     1,
		Width:     width,
		Columns:   1,
	}
}

// Schema returns the schema l was compiled from.
func (l *Layout) Schema() Schema { return l.schema }

// Width is the size in bytes of one record.
func (l *Layout) Width() int { return l.width }

// Columns is the field count written to the file header.
func (l *Layout) Columns() int { return l.columns }

// Slots returns every compiled field, padding included, in schema order.
// The returned slice must not be modified.
func (l *Layout) Slots() []Slot { return l.slots }

// NumValues is the number of decoded values in a record (padding excluded).
func (l *Layout) NumValues() int { return len(l.values) }

// Value returns the slot holding the i'th decoded value.
func (l *Layout) Value(i int) *Slot { return &l.slots[l.values[i]] }

// Lookup returns the value index of the named field.
func (l *Layout) Lookup(name string) (int, bool) {
	i, ok := l.byName[name]
	return i, ok
}

// Key is the value index of the primary field.
func (l *Layout) Key() int { return l.key }

// KeyName is the name of the primary field.
func (l *Layout) KeyName() string { return l.Value(l.key).Name }

// Fingerprint identifies the byte layout (and field names) of l, so two
// schemas that agree on every offset, kind and name share a fingerprint.
func (l *Layout) Fingerprint() uint64 {
	var sb strings.Builder
	sb.WriteString(l.KeyName())
	for _, s := range l.slots {
		fmt.Fprintf(&sb, ";%s:%d:%d:%d:%s", s.Kind, s.Offset, s.ElemWidth, s.Count, s.Name)
	}
	return farm.Fingerprint64([]byte(sb.String()))
}

func (l *Layout) String() string {
	name := l.schema.Name
	if name == "" {
		name = "schema"
	}
	return fmt.Sprintf("%s(%d fields, %d bytes, %d columns)", name, len(l.slots), l.width, l.columns)
}

// Fallback is the layout used to read a file without a schema: an int32
// primary key followed by the remaining columns as an int32 array.
func Fallback(columns int) (*Layout, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("%w: can't infer a schema from %d columns", ErrSchema, columns)
	}
	fields := []Field{Int32(DefaultKey)}
	if columns > 1 {
		fields = append(fields, Array("data", Int32(""), columns-1))
	}
	return Compile(Schema{Name: "fallback", Key: DefaultKey, Fields: fields})
}
