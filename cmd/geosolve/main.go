// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command geosolve loads a sketch file, solves its groups in order and
// prints the outcome of each together with the solved point positions.
//
// It exits with 0 when every group solved cleanly, 1 when any group is
// redundant or did not converge, and 2 on usage errors or a sketch file that
// cannot be loaded.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/curioloop/geosolve/internal/cli"
	"github.com/curioloop/geosolve/sketch"
	"github.com/curioloop/geosolve/sketchfile"
	"github.com/curioloop/geosolve/solver"
)

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW, errW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil || shouldExit {
		return err
	}
	log := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, errW)

	// A sketch that breaks an invariant of the solver panics; report it
	// instead of crashing.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("solve aborted: %v", r)
		}
	}()

	f, err := sketchfile.Load(cfg.Path, cfg.Vars)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error(), Err: err}
	}
	sk := f.Sketch
	log.Info("sketch loaded", "path", cfg.Path, "groups", len(sk.Groups()),
		"entities", len(sk.Entities()), "constraints", len(sk.Constraints()))

	var dragged []sketch.HParam
	for _, d := range cfg.Drags {
		h, ok := f.Entity(d.Point)
		if !ok || !sketch.IsPoint(sk.GetEntity(h)) {
			return &cli.ExitError{Code: 2, Message: fmt.Sprintf("drag: no point named %q", d.Point)}
		}
		sk.PointForceTo(h, d.To)
		dragged = append(dragged, sk.PointParams(h)...)
	}

	sys, err := solver.Config{Logger: log}.New(sk)
	if err != nil {
		return err
	}

	failed := 0
	for _, g := range sk.Groups() {
		sys.Clear()
		sys.LoadGroup(g.H)
		sys.SetDragged(dragged...)

		var res *solver.Result
		if cfg.RankOnly {
			res = sys.SolveRank(g, cfg.Flags)
		} else {
			res = sys.Solve(g, cfg.Flags)
		}
		log.Info("group solved", "group", g.Name, "status", res.Status,
			"dof", res.Dof, "newtonIter", res.NewtonIter)
		if res.Status != solver.Okay {
			failed++
		}
		report(outW, sk, g, res)
	}

	if failed > 0 {
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("%d of %d groups did not solve cleanly", failed, len(sk.Groups()))}
	}
	return nil
}

func report(w io.Writer, sk *sketch.Sketch, g *sketch.Group, res *solver.Result) {
	fmt.Fprintf(w, "group %q: %v", g.Name, res.Status)
	if res.Dof >= 0 {
		fmt.Fprintf(w, ", dof %d", res.Dof)
	}
	fmt.Fprintln(w)

	if len(res.Bad) > 0 {
		names := make([]string, len(res.Bad))
		for i, h := range res.Bad {
			names[i] = sk.GetConstraint(h).Name
			if names[i] == "" {
				names[i] = fmt.Sprintf("#%d", h)
			}
		}
		fmt.Fprintf(w, "  bad: %s\n", strings.Join(names, ", "))
	}

	for _, e := range sk.EntitiesIn(g.H) {
		b := e.Base()
		if b.Name == "" || !sketch.IsPoint(e) {
			continue
		}
		p := sk.PointGetNum(b.H)
		fmt.Fprintf(w, "  %s = (%.6g, %.6g, %.6g)", b.Name, p.X, p.Y, p.Z)
		for _, h := range sk.PointParams(b.H) {
			if sk.GetParam(h).Free {
				fmt.Fprint(w, " free")
				break
			}
		}
		fmt.Fprintln(w)
	}
}
