package main

import "github.com/urfave/cli/v2"

// Flag objects follow the teacher's typed-flag idiom (ground: go/ct/driver/
// cli/flags.go's FilterFlag/JobsFlag pattern): each flag is a named value
// bundled with the cli.Flag that declares it, so a command's Action reads it
// back by calling Fetch instead of repeating the flag's name as a string
// literal at every call site.

type traceFlagType struct {
	cli.BoolFlag
}

var traceFlag = &traceFlagType{
	cli.BoolFlag{
		Name:  "trace",
		Usage: "print a line for every top-level statement and block result",
	},
}

func (f *traceFlagType) Fetch(ctx *cli.Context) bool { return ctx.Bool(f.Name) }

type quietFlagType struct {
	cli.BoolFlag
}

var quietFlag = &quietFlagType{
	cli.BoolFlag{
		Name:  "quiet",
		Usage: "suppress diagnostic output; only set the process exit code",
	},
}

func (f *quietFlagType) Fetch(ctx *cli.Context) bool { return ctx.Bool(f.Name) }

type verboseFlagType struct {
	cli.BoolFlag
}

var verboseFlag = &verboseFlagType{
	cli.BoolFlag{
		Name:  "verbose",
		Usage: "print every reported diagnostic, not just the first",
	},
}

func (f *verboseFlagType) Fetch(ctx *cli.Context) bool { return ctx.Bool(f.Name) }
