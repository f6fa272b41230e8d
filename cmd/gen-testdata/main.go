// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command gen-testdata prints random title lines in the
// "male;female;id;index" shape that `dbctool import --columns 2,0,1,3`
// reads.
package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"
)

const suffixLen = 6

var syllables = []string{"ba", "zar", "ius", "el", "dra", "mor", "ith", "é", "ñu", "kal", "os", "vë"}

func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func name(rng *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < 2+rng.Intn(suffixLen-2); i++ {
		sb.WriteString(syllables[rng.Intn(len(syllables))])
	}
	r := []rune(sb.String())
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func main() {
	n := flag.Int("n", 1000, "number of lines")
	firstID := flag.Int("first-id", 1000, "id of the first title")
	flag.Parse()

	rng := newRand()
	w := os.Stdout
	for i := 0; i < *n; i++ {
		base := name(rng)
		male := "%s " + base + "us"
		female := "%s " + base + "a"
		if _, err := fmt.Fprintf(w, "%s;%s;%d;%d\n", male, female, *firstID+i, rng.Intn(256)); err != nil {
			fmt.Fprintf(os.Stderr, "gen-testdata: %v\n", err)
			os.Exit(1)
		}
	}
}
