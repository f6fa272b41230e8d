// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package wdbc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

func TestStore_PutReplace(t *testing.T) {
	store := NewStore(mustCompile(t, rankSchema()), locale.FrFR)

	rec, err := store.NewRecord(7, "Alpha", 3)
	require.NoError(t, err)
	replaced, err := store.Put(rec)
	require.NoError(t, err)
	assert.False(t, replaced)

	updated, err := rec.With("Rank", 4)
	require.NoError(t, err)
	// the stored record isn't affected until it is replaced
	rank, err := rec.Int("Rank")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	replaced, err = store.Put(updated)
	require.NoError(t, err)
	assert.True(t, replaced)
	got, err := store.Get(7)
	require.NoError(t, err)
	assert.Same(t, updated, got)
	assert.Equal(t, 1, store.Len())

	other := NewStore(mustCompile(t, rankSchema()), locale.FrFR)
	_, err = other.Put(rec)
	assert.True(t, errors.Is(err, ErrSchema))

	_, err = store.Get(8)
	assert.True(t, errors.Is(err, ErrKey))
}

func TestRecord_LocalizedWith(t *testing.T) {
	store := NewStore(mustCompile(t, rankSchema()), locale.FrFR)
	rec, err := store.NewRecord(1, "Bonjour", 1)
	require.NoError(t, err)

	store.SetLocale(locale.DeDE)
	rec, err = rec.With("Name", "Hallo")
	require.NoError(t, err)

	l, err := rec.Localized("Name")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", l.Get(locale.FrFR))
	assert.Equal(t, "Hallo", l.Get(locale.DeDE))
	assert.Equal(t, "", l.Get(locale.EnUS))

	name, err := rec.Get("Name")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", name)

	// Values keeps every locale so records can be written elsewhere
	values := rec.Values()
	require.Len(t, values, 3)
	assert.Equal(t, l, values[1])
}

func TestRecord_Accessors(t *testing.T) {
	s := schema.New(
		schema.Int32("Id"),
		schema.Float32("Scale"),
		schema.String("Icon"),
		schema.Array("Flags", schema.Int16(""), 2),
	)
	store := NewStore(mustCompile(t, s), locale.EnUS)
	rec, err := store.NewRecord(int32(1), 0.5, "icon", []int{1, 2})
	require.NoError(t, err)

	f, err := rec.Float("Scale")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), f)

	icon, err := rec.String("Icon")
	require.NoError(t, err)
	assert.Equal(t, "icon", icon)

	flags, err := rec.Ints("Flags")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, flags)
	// callers get copies
	flags[0] = 99
	flags, err = rec.Ints("Flags")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, flags)

	_, err = rec.Int("Icon")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = rec.String("Scale")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = rec.Localized("Icon")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = rec.Get("Missing")
	assert.True(t, errors.Is(err, ErrNoField))
	_, err = rec.With("Flags", []int{1, 2, 3})
	assert.True(t, errors.Is(err, ErrValue))
	_, err = rec.With("Flags", []int{1, 1 << 20})
	assert.True(t, errors.Is(err, ErrValue))

	_, err = store.NewRecord(1, 0.5, "icon")
	assert.True(t, errors.Is(err, ErrValue))
}
