// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package locale maps game client locale tags to the slot they occupy in
// a localized string field.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Tag is a client locale identifier such as "enUS" or "frFR".
type Tag string

const (
	EnUS Tag = "enUS"
	KoKR Tag = "koKR"
	FrFR Tag = "frFR"
	DeDE Tag = "deDE"
	ZhCN Tag = "zhCN"
	ZhTW Tag = "zhTW"
	EsES Tag = "esES"
	EsMX Tag = "esMX"
	RuRU Tag = "ruRU"
	JaJP Tag = "jaJP"
	PtPT Tag = "ptPT"
	PtBR Tag = "ptBR"
	ItIT Tag = "itIT"
)

const (
	// Slots is the number of per-locale offsets in a localized string field.
	Slots = 16
	// DefaultSlot is used for tags missing from the table.
	DefaultSlot = 0
	// Mask is the value every writer stores in the trailing mask word.
	Mask uint32 = 0x00FF01FE
)

var ErrUnsupported = errors.New("unsupported locale")

// read-only after init
var table = map[Tag]int{
	EnUS: 0,
	KoKR: 1,
	FrFR: 2,
	DeDE: 3,
	ZhCN: 4,
	ZhTW: 5,
	EsES: 6,
	EsMX: 7,
	RuRU: 8,
	JaJP: 9,
	PtPT: 10,
	PtBR: 10,
	ItIT: 11,
}

// Tags lists the supported tags in slot order.
func Tags() []Tag {
	return []Tag{EnUS, KoKR, FrFR, DeDE, ZhCN, ZhTW, EsES, EsMX, RuRU, JaJP, PtPT, PtBR, ItIT}
}

// Supported reports whether t has its own slot.
func Supported(t Tag) bool {
	_, ok := table[t]
	return ok
}

// SlotFor returns the slot of t, or DefaultSlot for an unknown tag.
func SlotFor(t Tag) int {
	if i, ok := table[t]; ok {
		return i
	}
	return DefaultSlot
}

// Resolve picks the offset for t out of a localized field.  The mask is
// accepted for symmetry with Build and isn't interpreted.
func Resolve(offsets [Slots]uint32, mask uint32, t Tag) uint32 {
	_ = mask
	return offsets[SlotFor(t)]
}

// Build returns a localized field holding offset in t's slot only, and
// the mask word to store alongside it.
func Build(offset uint32, t Tag) ([Slots]uint32, uint32) {
	var offsets [Slots]uint32
	offsets[SlotFor(t)] = offset
	return offsets, Mask
}

// Parse turns user input into a supported Tag.  Besides the exact client
// form ("frFR") it accepts any case and BCP 47 spellings like "fr-FR",
// "fr_FR" or just "fr".
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && !strings.ContainsAny(s, "-_") {
		t := Tag(strings.ToLower(s[:2]) + strings.ToUpper(s[2:]))
		if Supported(t) {
			return t, nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}

	lt, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupported, s, err)
	}
	base, _ := lt.Base()
	region, _ := lt.Region()
	t := Tag(base.String() + region.String())
	if !Supported(t) {
		return "", fmt.Errorf("%w: %q (as %s)", ErrUnsupported, s, t)
	}
	return t, nil
}
