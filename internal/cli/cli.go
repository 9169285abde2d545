// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli parses the geosolve command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/curioloop/geosolve/sketch"
	"github.com/curioloop/geosolve/solver"
)

// ExitError carries the process exit code of a failed run. Err, when set,
// is the failure it reports.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// Drag moves a named point before solving and marks its parameters dragged.
type Drag struct {
	Point string
	To    sketch.Vector
}

// Config is the parsed command line.
type Config struct {
	Path      string
	Flags     solver.Flags
	RankOnly  bool
	Drags     []Drag
	Vars      map[string]float64
	LogLevel  string
	LogFormat string
}

// Parse processes the command-line arguments. It reports true when the
// program should exit cleanly, as after -h.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("geosolve", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
geosolve - solves the groups of a sketch file in order.

Usage:
  geosolve [options] FILE.hcl

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := &Config{Vars: make(map[string]float64)}
	flagSet.BoolVar(&cfg.Flags.FindBad, "find-bad", false, "Name the constraints to remove from a redundant group.")
	flagSet.BoolVar(&cfg.Flags.FindFree, "find-free", false, "Mark the points left free by the constraints.")
	flagSet.BoolVar(&cfg.Flags.ForceDofCheck, "force-dof", false, "Skip substitution so the rank test sees every equation.")
	flagSet.BoolVar(&cfg.RankOnly, "rank-only", false, "Only test the rank; geometry is left as written.")
	flagSet.Func("drag", "Drag a point: name=x,y[,z]. May be repeated.", func(s string) error {
		d, err := parseDrag(s)
		if err == nil {
			cfg.Drags = append(cfg.Drags, d)
		}
		return err
	})
	flagSet.Func("var", "Override a variable: name=value. May be repeated.", func(s string) error {
		name, v, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return errors.New("expected name=value")
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		cfg.Vars[name] = f
		return nil
	})
	logLevel := flagSet.String("log-level", "warn", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormat := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected a single sketch file"}
	}
	cfg.Path = flagSet.Arg(0)

	cfg.LogFormat = strings.ToLower(*logFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogLevel = strings.ToLower(*logLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return cfg, false, nil
}

func parseDrag(s string) (Drag, error) {
	name, coords, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Drag{}, errors.New("expected name=x,y[,z]")
	}
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Drag{}, fmt.Errorf("drag %q needs 2 or 3 coordinates", name)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Drag{}, fmt.Errorf("drag %q: %w", name, err)
		}
		v[i] = f
	}
	return Drag{Point: name, To: sketch.Vector{X: v[0], Y: v[1], Z: v[2]}}, nil
}

// NewLogger returns a logger writing to w at the given level and format.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: l}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
