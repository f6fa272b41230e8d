// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"fmt"
	"slices"

	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

// Record is one decoded row.  Records are immutable; use With and
// Store.Put to change a stored record.
type Record struct {
	store  *Store
	values []any
}

// Key returns the value of the primary field.
func (r *Record) Key() int64 {
	return r.values[r.store.layout.Key()].(int64)
}

func (r *Record) lookup(name string) (*schema.Slot, any, error) {
	i, ok := r.store.layout.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoField, name)
	}
	return r.store.layout.Value(i), r.values[i], nil
}

// Get returns the named value.  Localized fields are resolved to a string
// in the store's current locale; arrays are returned as copies.
func (r *Record) Get(name string) (any, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return r.resolve(v), nil
}

func (r *Record) resolve(v any) any {
	switch v := v.(type) {
	case Localized:
		return v.Get(r.store.locale)
	case []int64:
		return slices.Clone(v)
	case []float32:
		return slices.Clone(v)
	case []string:
		return slices.Clone(v)
	}
	return v
}

func wrongType(name string, v any, want string) error {
	return fmt.Errorf("%w: %q holds %T, not %s", ErrValue, name, v, want)
}

func (r *Record) Int(name string) (int64, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, wrongType(name, v, "an integer")
	}
	return n, nil
}

func (r *Record) Float(name string) (float32, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float32)
	if !ok {
		return 0, wrongType(name, v, "a float")
	}
	return f, nil
}

// String returns a plain string field, or a localized one in the store's
// current locale.
func (r *Record) String(name string) (string, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case Localized:
		return v.Get(r.store.locale), nil
	}
	return "", wrongType(name, v, "a string")
}

// Localized returns every locale's string of a localized field.
func (r *Record) Localized(name string) (Localized, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return Localized{}, err
	}
	l, ok := v.(Localized)
	if !ok {
		return Localized{}, wrongType(name, v, "a localized string")
	}
	return l, nil
}

func (r *Record) Ints(name string) ([]int64, error) {
	_, v, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]int64)
	if !ok {
		return nil, wrongType(name, v, "an integer array")
	}
	return slices.Clone(s), nil
}

// Values returns the record as a schema-ordered tuple (padding excluded)
// that Writer.Append accepts.  Localized fields keep every locale.
func (r *Record) Values() []any {
	out := make([]any, len(r.values))
	for i, v := range r.values {
		if _, ok := v.(Localized); ok {
			out[i] = v
			continue
		}
		out[i] = r.resolve(v)
	}
	return out
}

// Map returns the record keyed by field name, resolved like Get.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for i, v := range r.values {
		out[r.store.layout.Value(i).Name] = r.resolve(v)
	}
	return out
}

// With returns a copy of r with the named field replaced.  A string given
// for a localized field replaces only the current locale's slot.
func (r *Record) With(name string, v any) (*Record, error) {
	slot, old, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if str, ok := v.(string); ok && slot.Kind == schema.KindLocalized {
		l := old.(Localized)
		l.Strings[locale.SlotFor(r.store.locale)] = str
		v = l
	}
	nv, err := normalize(slot, v, r.store.locale)
	if err != nil {
		return nil, err
	}
	values := slices.Clone(r.values)
	values[slot.Value] = nv
	return &Record{store: r.store, values: values}, nil
}

// Store maps primary keys to records.  Iteration follows the order keys
// were first inserted in.
type Store struct {
	layout  *schema.Layout
	locale  locale.Tag
	records map[int64]*Record
	order   []int64
}

// NewStore returns an empty store for layout, resolving localized fields
// in t.
func NewStore(layout *schema.Layout, t locale.Tag) *Store {
	return &Store{
		layout:  layout,
		locale:  t,
		records: make(map[int64]*Record),
	}
}

func (s *Store) Layout() *schema.Layout { return s.layout }

func (s *Store) Locale() locale.Tag { return s.locale }

// SetLocale changes the locale localized fields of every record in s are
// resolved in.
func (s *Store) SetLocale(t locale.Tag) { s.locale = t }

func (s *Store) Len() int { return len(s.records) }

func (s *Store) Get(key int64) (*Record, error) {
	r, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKey, key)
	}
	return r, nil
}

// Records returns every record in insertion order.
func (s *Store) Records() []*Record {
	out := make([]*Record, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.records[k])
	}
	return out
}

// Keys returns every primary key in insertion order.
func (s *Store) Keys() []int64 {
	return slices.Clone(s.order)
}

// NewRecord builds a record for s from a schema-ordered tuple, like the
// ones Writer.Append takes.  It isn't stored until passed to Put.
func (s *Store) NewRecord(values ...any) (*Record, error) {
	if len(values) != s.layout.NumValues() {
		return nil, fmt.Errorf("%w: got %d values, %s has %d fields", ErrValue, len(values), s.layout, s.layout.NumValues())
	}
	out := make([]any, len(values))
	for i, v := range values {
		nv, err := normalize(s.layout.Value(i), v, s.locale)
		if err != nil {
			return nil, err
		}
		out[i] = nv
	}
	return &Record{store: s, values: out}, nil
}

// Put stores r under its key, replacing any record already there.  It
// reports whether a record was replaced.
func (s *Store) Put(r *Record) (bool, error) {
	if r.store != s {
		return false, fmt.Errorf("%w: record belongs to another store", ErrSchema)
	}
	return s.put(r), nil
}

func (s *Store) put(r *Record) (replaced bool) {
	key := r.Key()
	if _, replaced = s.records[key]; !replaced {
		s.order = append(s.order, key)
	}
	s.records[key] = r
	return replaced
}
