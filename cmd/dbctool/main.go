// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command dbctool inspects DBC files and appends records to them from
// delimiter-separated text.
//
// Defaults come from the environment (DBCTOOL_LOCALE, DBCTOOL_LOG_LEVEL,
// DBCTOOL_DELIMITER, DBCTOOL_MMAP) and can be overridden with flags.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type config struct {
	Locale    string `env:"DBCTOOL_LOCALE" envDefault:"enUS"`
	LogLevel  string `env:"DBCTOOL_LOG_LEVEL" envDefault:"info"`
	Delimiter string `env:"DBCTOOL_DELIMITER" envDefault:";"`
	Mmap      bool   `env:"DBCTOOL_MMAP"`
}

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"${log_level}"`
	Verbose  bool   `short:"v" help:"Same as --log-level=debug"`
	Mmap     bool   `help:"Map input files into memory instead of reading them" default:"${mmap}"`

	Info   InfoCmd   `cmd:"" help:"Print the header of a DBC file"`
	Dump   DumpCmd   `cmd:"" help:"Print the records of a DBC file"`
	Import ImportCmd `cmd:"" help:"Copy a DBC file, appending records read from a text file"`
}

// globals is passed to every command's Run.
type globals struct {
	logger *slog.Logger
	stdout io.Writer
	mmap   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "dbctool: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dbctool"),
		kong.Description("Inspect and extend WDBC files."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.Vars{
			"locale":    cfg.Locale,
			"log_level": cfg.LogLevel,
			"delimiter": cfg.Delimiter,
			"mmap":      strconv.FormatBool(cfg.Mmap),
		},
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := &slog.LevelVar{}
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if cli.Verbose {
		level.Set(slog.LevelDebug)
	}

	g := &globals{
		logger: newLogger(stderr, level),
		stdout: stdout,
		mmap:   cli.Mmap,
	}
	return ctx.Run(g)
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}
