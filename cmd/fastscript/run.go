package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fastscript-lang/fastscript/builtins"
	"github.com/fastscript-lang/fastscript/interpreter"
)

// RunCmd implements `fastscript run <file>` (SPEC_FULL.md §10): parse the
// named source file and evaluate it top to bottom with interpreter.Run,
// installing every builtins.Register'd native first. Grounded on the
// teacher's RunCmd (go/ct/driver/run.go) for the flag-object-driven Action
// shape, generalized from "drive a conformance test suite" to "run one
// script file."
var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run a fastscript source file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		traceFlag,
		quietFlag,
		verboseFlag,
	},
}

func doRun(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.Exit("fastscript run: missing <file> argument", 1)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("fastscript run: %v", err), 1)
	}

	rt := interpreter.AcquireContext()
	defer interpreter.Release(rt)

	if err := builtins.Install(rt); err != nil {
		return cli.Exit(fmt.Sprintf("fastscript run: %v", err), 1)
	}

	trace := traceFlag.Fetch(ctx)
	quiet := quietFlag.Fetch(ctx)
	verbose := verboseFlag.Fetch(ctx)

	diags := runWithTrace(rt, string(source), trace)

	if quiet || len(diags) == 0 {
		if len(diags) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	shown := diags
	if !verbose && len(shown) > 1 {
		shown = shown[:1]
	}
	for _, d := range shown {
		fmt.Fprintf(os.Stderr, "fastscript: %s (at byte %d)\n", d.String(), d.Pos)
	}
	return cli.Exit("", 1)
}

// runWithTrace wires rt.Trace to a per-statement stderr line when trace is
// set (spec.md §3's "a trace hook, when non-nil, is called once per
// top-level statement boundary" — see interpreter.Context.Trace) before
// delegating to Run.
func runWithTrace(rt *interpreter.Context, source string, trace bool) interpreter.Diagnostics {
	if trace {
		rt.Trace = func(pos int, result interpreter.Value) {
			fmt.Fprintf(os.Stderr, "trace: byte %d -> %s\n", pos, result.Tag.String())
		}
	}
	return rt.Run(source)
}
