// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bpowers/wdbc/internal/strblock"
	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

// Localized is the decoded form of a localized string field: one string
// per locale slot, plus the mask word stored after them.
type Localized struct {
	Strings [locale.Slots]string
	Mask    uint32
}

// Get returns the string for t, or the default slot's for unknown tags.
func (l Localized) Get(t locale.Tag) string {
	return l.Strings[locale.SlotFor(t)]
}

// Decoded values are always one of:
//
//	int64, float32, string, Localized, []int64, []float32, []string
func decodeRecord(layout *schema.Layout, block *strblock.Block, raw []byte) ([]any, error) {
	if len(raw) != layout.Width() {
		return nil, fmt.Errorf("record is %d bytes, want %d", len(raw), layout.Width())
	}

	values := make([]any, layout.NumValues())
	for _, s := range layout.Slots() {
		if s.Kind == schema.KindPadding {
			continue
		}
		b := raw[s.Offset : s.Offset+s.Width]
		v, err := decodeSlot(&s, block, b)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", s.Name, err)
		}
		values[s.Value] = v
	}
	return values, nil
}

func decodeSlot(s *schema.Slot, block *strblock.Block, b []byte) (any, error) {
	switch s.Kind {
	case schema.KindInt:
		if !s.Array {
			return getInt(b, s.ElemWidth), nil
		}
		out := make([]int64, s.Count)
		for i := range out {
			out[i] = getInt(b[i*s.ElemWidth:], s.ElemWidth)
		}
		return out, nil
	case schema.KindFloat:
		if !s.Array {
			return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
		}
		out := make([]float32, s.Count)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return out, nil
	case schema.KindString:
		if !s.Array {
			return block.Resolve(binary.LittleEndian.Uint32(b))
		}
		out := make([]string, s.Count)
		for i := range out {
			str, err := block.Resolve(binary.LittleEndian.Uint32(b[i*4:]))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = str
		}
		return out, nil
	case schema.KindLocalized:
		var l Localized
		for i := range l.Strings {
			str, err := block.Resolve(binary.LittleEndian.Uint32(b[i*4:]))
			if err != nil {
				return nil, fmt.Errorf("locale slot %d: %w", i, err)
			}
			l.Strings[i] = str
		}
		l.Mask = binary.LittleEndian.Uint32(b[locale.Slots*4:])
		return l, nil
	default:
		return nil, fmt.Errorf("unexpected kind %s", s.Kind)
	}
}

func getInt(b []byte, width int) int64 {
	switch width {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

func putInt(b []byte, width int, v int64) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// normalize converts a caller supplied value into the decoded form for s.
// A plain string given for a localized field lands in tag's slot.
func normalize(s *schema.Slot, v any, tag locale.Tag) (any, error) {
	bad := func() error {
		return fmt.Errorf("%w: %q is %s, got %T", ErrValue, s.Name, describe(s), v)
	}

	if s.Array {
		elems, ok := boxSlice(v)
		if !ok {
			return nil, bad()
		}
		if len(elems) != s.Count {
			return nil, fmt.Errorf("%w: %q wants %d elements, got %d", ErrValue, s.Name, s.Count, len(elems))
		}
		switch s.Kind {
		case schema.KindInt:
			out := make([]int64, len(elems))
			for i, e := range elems {
				n, err := fitInt(s, e)
				if err != nil {
					return nil, err
				}
				out[i] = n
			}
			return out, nil
		case schema.KindFloat:
			out := make([]float32, len(elems))
			for i, e := range elems {
				f, ok := toFloat32(e)
				if !ok {
					return nil, bad()
				}
				out[i] = f
			}
			return out, nil
		case schema.KindString:
			out := make([]string, len(elems))
			for i, e := range elems {
				str, ok := e.(string)
				if !ok {
					return nil, bad()
				}
				out[i] = str
			}
			return out, nil
		}
		return nil, bad()
	}

	switch s.Kind {
	case schema.KindInt:
		return fitInt(s, v)
	case schema.KindFloat:
		f, ok := toFloat32(v)
		if !ok {
			return nil, bad()
		}
		return f, nil
	case schema.KindString:
		str, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		return str, nil
	case schema.KindLocalized:
		switch v := v.(type) {
		case string:
			var l Localized
			l.Strings[locale.SlotFor(tag)] = v
			l.Mask = locale.Mask
			return l, nil
		case Localized:
			return v, nil
		}
		return nil, bad()
	}
	return nil, bad()
}

func describe(s *schema.Slot) string {
	if s.Array {
		return fmt.Sprintf("an array of %d %s", s.Count, s.Kind)
	}
	return "a " + s.Kind.String()
}

func fitInt(s *schema.Slot, v any) (int64, error) {
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, got %T", ErrValue, s.Name, describe(s), v)
	}
	if s.ElemWidth < 8 {
		bits := uint(s.ElemWidth * 8)
		lo, hi := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return 0, fmt.Errorf("%w: %q: %d overflows a %d-byte integer", ErrValue, s.Name, n, s.ElemWidth)
		}
	}
	return n, nil
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func toFloat32(v any) (float32, bool) {
	switch v := v.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	}
	return 0, false
}

func boxSlice(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case []int64:
		return box(v), true
	case []int32:
		return box(v), true
	case []int16:
		return box(v), true
	case []int8:
		return box(v), true
	case []int:
		return box(v), true
	case []float32:
		return box(v), true
	case []float64:
		return box(v), true
	case []string:
		return box(v), true
	}
	return nil, false
}

func box[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// encodeSlot packs a normalized value into b, appending each of its strings
// to block, empty ones included.  Unset locale slots of a Localized value
// stay at offset 0.
func encodeSlot(s *schema.Slot, v any, block *strblock.Builder, b []byte) error {

	switch v := v.(type) {
	case int64:
		putInt(b, s.ElemWidth, v)
	case []int64:
		for i, n := range v {
			putInt(b[i*s.ElemWidth:], s.ElemWidth, n)
		}
	case float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	case []float32:
		for i, f := range v {
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
		}
	case string:
		off, err := block.Append(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(b, off)
	case []string:
		for i, str := range v {
			off, err := block.Append(str)
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint32(b[i*4:], off)
		}
	case Localized:
		for i, str := range v.Strings {
			if str == "" {
				continue
			}
			off, err := block.Append(str)
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint32(b[i*4:], off)
		}
		binary.LittleEndian.PutUint32(b[locale.Slots*4:], locale.Mask)
	default:
		return fmt.Errorf("%w: %q: unexpected %T", ErrValue, s.Name, v)
	}
	return nil
}
