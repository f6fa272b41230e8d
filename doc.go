// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package wdbc reads and writes WDBC files, the fixed-width tables game
// clients ship their static data in.
//
// A file is a 20-byte header, recordCount records of recordWidth bytes
// each, and a block of null-terminated strings that string fields refer
// to by offset.  The layout of a record isn't stored in the file; callers
// describe it with a schema.Schema:
//
//	titles := schema.New(
//		schema.Int32("Id"),
//		schema.Pad(4),
//		schema.LocString("TitleMale"),
//		schema.LocString("TitleFemale"),
//		schema.Int32("Index"),
//	)
//
//	r, err := wdbc.NewReader("CharTitles.dbc", titles, wdbc.WithLocale(locale.FrFR))
//	...
//	rec, err := r.Get(178)
//	name, err := rec.String("TitleMale")
//
// Reading happens lazily in three steps (header, string block, records),
// each done once on first use.  Neither Reader nor Writer is safe for
// concurrent use.
package wdbc
