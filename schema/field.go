// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package schema

// DefaultKey is the name of the primary field when a Schema doesn't name one.
const DefaultKey = "Id"

// Field is one entry of a Schema.  The set of implementations is closed:
// FixedInt, Float, Padding, PlainString, LocalizedString and FixedArray.
type Field interface {
	// Name returns the name the decoded value is stored under; Padding
	// has no name.
	Name() string
	isField()
}

// FixedInt is a little-endian signed integer of Width bytes.
type FixedInt struct {
	FieldName string
	Width     int
}

// Float is a 4-byte IEEE-754 value.
type Float struct {
	FieldName string
}

// Padding is Width bytes present on disk but dropped on decode.
type Padding struct {
	Width int
}

// PlainString is a 4-byte offset into the string block.
type PlainString struct {
	FieldName string
}

// LocalizedString is one string block offset per locale slot followed by
// a 4-byte mask word.
type LocalizedString struct {
	FieldName string
}

// FixedArray repeats a FixedInt, Float or PlainString element Count times.
// The element's own name is ignored.
type FixedArray struct {
	FieldName string
	Elem      Field
	Count     int
}

func (f FixedInt) Name() string        { return f.FieldName }
func (f Float) Name() string           { return f.FieldName }
func (Padding) Name() string           { return "" }
func (f PlainString) Name() string     { return f.FieldName }
func (f LocalizedString) Name() string { return f.FieldName }
func (f FixedArray) Name() string      { return f.FieldName }

func (FixedInt) isField()        {}
func (Float) isField()           {}
func (Padding) isField()         {}
func (PlainString) isField()     {}
func (LocalizedString) isField() {}
func (FixedArray) isField()      {}

func Int8(name string) FixedInt  { return FixedInt{FieldName: name, Width: 1} }
func Int16(name string) FixedInt { return FixedInt{FieldName: name, Width: 2} }
func Int32(name string) FixedInt { return FixedInt{FieldName: name, Width: 4} }
func Int64(name string) FixedInt { return FixedInt{FieldName: name, Width: 8} }

func Float32(name string) Float { return Float{FieldName: name} }

func Pad(width int) Padding { return Padding{Width: width} }

func String(name string) PlainString { return PlainString{FieldName: name} }

func LocString(name string) LocalizedString { return LocalizedString{FieldName: name} }

func Array(name string, elem Field, count int) FixedArray {
	return FixedArray{FieldName: name, Elem: elem, Count: count}
}

// Schema is the ordered field list of one record kind.
type Schema struct {
	// Name is informational (e.g. "CharTitles").
	Name string
	// Key names the primary field; empty means DefaultKey.
	Key    string
	Fields []Field
}

// New returns a Schema keyed on DefaultKey.
func New(fields ...Field) Schema {
	return Schema{Key: DefaultKey, Fields: fields}
}

func (s Schema) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}
