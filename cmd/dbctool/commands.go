// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dgryski/go-farm"

	"github.com/bpowers/wdbc"
	"github.com/bpowers/wdbc/internal/ingest"
	"github.com/bpowers/wdbc/locale"
	"github.com/bpowers/wdbc/schema"
)

func (g *globals) options(tag locale.Tag) []wdbc.Option {
	opts := []wdbc.Option{wdbc.WithLogger(g.logger), wdbc.WithLocale(tag)}
	if g.mmap {
		opts = append(opts, wdbc.WithMmap())
	}
	return opts
}

// openReader uses the schema file if one was given, and reads raw
// otherwise.
func (g *globals) openReader(path, schemaPath string, tag locale.Tag) (*wdbc.Reader, error) {
	if schemaPath == "" {
		return wdbc.NewRawReader(path, g.options(tag)...), nil
	}
	s, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	return wdbc.NewReader(path, s, g.options(tag)...)
}

type InfoCmd struct {
	File   string `arg:"" help:"DBC file" type:"existingfile"`
	Schema string `help:"YAML schema to check the file against" type:"existingfile"`
}

func (c *InfoCmd) Run(g *globals) error {
	r, err := g.openReader(c.File, c.Schema, locale.EnUS)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	h, err := r.Header()
	if err != nil {
		return err
	}
	contents, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(g.stdout)
	fmt.Fprintf(w, "file:          %s\n", c.File)
	fmt.Fprintf(w, "records:       %d\n", h.RecordCount)
	fmt.Fprintf(w, "fields:        %d\n", h.FieldCount)
	fmt.Fprintf(w, "record width:  %d\n", h.RecordWidth)
	fmt.Fprintf(w, "string block:  %d\n", h.StringBlockLen)
	fmt.Fprintf(w, "fingerprint:   %016x\n", farm.Fingerprint64(contents))
	if c.Schema != "" {
		layout, err := r.Layout()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "schema:        %s\n", layout)
		fmt.Fprintf(w, "layout:        %016x\n", layout.Fingerprint())
	}
	return w.Flush()
}

type DumpCmd struct {
	File   string  `arg:"" help:"DBC file" type:"existingfile"`
	Schema string  `help:"YAML schema (records are dumped as raw int32 columns without one)" type:"existingfile"`
	Locale string  `help:"Locale to show localized strings in" default:"${locale}"`
	Key    []int64 `help:"Only dump records with these keys"`
}

func (c *DumpCmd) Run(g *globals) error {
	tag, err := wdbc.ParseLocale(c.Locale)
	if err != nil {
		return fmt.Errorf("--locale: %w", err)
	}
	r, err := g.openReader(c.File, c.Schema, tag)
	if err != nil {
		return err
	}

	var recs []*wdbc.Record
	if len(c.Key) > 0 {
		for _, k := range c.Key {
			rec, err := r.Get(k)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
	} else if recs, err = r.Records(); err != nil {
		return err
	}
	layout, err := r.Layout()
	if err != nil {
		return err
	}

	w := bufio.NewWriter(g.stdout)
	for _, rec := range recs {
		fields := make([]string, 0, layout.NumValues())
		for i := 0; i < layout.NumValues(); i++ {
			name := layout.Value(i).Name
			v, err := rec.Get(name)
			if err != nil {
				return err
			}
			if s, ok := v.(string); ok {
				fields = append(fields, fmt.Sprintf("%s=%q", name, s))
			} else {
				fields = append(fields, fmt.Sprintf("%s=%v", name, v))
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	return w.Flush()
}

type ImportCmd struct {
	Input     string `arg:"" help:"DBC file to copy records from" type:"existingfile"`
	Output    string `arg:"" help:"DBC file to write"`
	Lines     string `arg:"" help:"Text file with one record per line" type:"existingfile"`
	Schema    string `required:"" help:"YAML schema of the DBC files" type:"existingfile"`
	Locale    string `help:"Locale localized text is read and written in" default:"${locale}"`
	Delimiter string `help:"Column delimiter of the text file" default:"${delimiter}"`
	Columns   string `help:"Text column for each schema field, e.g. 2,0,1,3 (default: in order)"`
}

func (c *ImportCmd) Run(g *globals) error {
	tag, err := wdbc.ParseLocale(c.Locale)
	if err != nil {
		return fmt.Errorf("--locale: %w", err)
	}
	s, err := schema.LoadFile(c.Schema)
	if err != nil {
		return err
	}
	columns, err := ingest.ParseColumns(c.Columns)
	if err != nil {
		return fmt.Errorf("--columns: %w", err)
	}

	r, err := wdbc.NewReader(c.Input, s, g.options(tag)...)
	if err != nil {
		return err
	}
	recs, err := r.Records()
	if err != nil {
		return err
	}

	w, err := wdbc.NewWriter(s, g.options(tag)...)
	if err != nil {
		return err
	}
	if err := w.AddRecords(recs...); err != nil {
		return err
	}

	p, err := ingest.NewParser(w.Layout(), c.Delimiter, columns)
	if err != nil {
		return err
	}
	f, err := os.Open(c.Lines)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	keyIdx := w.Layout().Key()
	err = p.Each(f, func(lineNo int, values []any) error {
		if err := w.Append(values...); err != nil {
			return err
		}
		g.logger.Debug("record added", "line", lineNo, "key", values[keyIdx])
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", c.Lines, err)
	}

	if err := w.WriteFile(c.Output); err != nil {
		return err
	}
	g.logger.Info("dbc written", "path", c.Output, "records", w.Len(), "added", w.Len()-len(recs))
	return nil
}
