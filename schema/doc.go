// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package schema describes the binary layout of a DBC record and compiles
// that description into byte offsets.
//
// A Schema is an ordered list of fields.  Every field occupies a fixed
// number of bytes, so a compiled Layout knows where each field starts and
// how wide a record is:
//
//	Int32("Id")  Pad(4)  LocString("Name")              Int32("Rank")
//	┌─────────┬─────────┬───────────────────────┬──────┬─────────┐
//	│ id      │ ....    │ 16 x locale offset    │ mask │ rank    │
//	└─────────┴─────────┴───────────────────────┴──────┴─────────┘
//	0         4         8                       72     76        80
//
// String and localized string fields hold offsets into the trailing
// string block of the file rather than the text itself.
package schema
