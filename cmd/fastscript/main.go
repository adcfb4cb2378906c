// Command fastscript is the host binary embedding the interpreter package
// (SPEC_FULL.md §10). Grounded on the teacher's driver binary (go/ct/driver/
// main.go): a bare cli.App delegating everything to its subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fastscript",
		Usage: "run fastscript source files",
		Commands: []*cli.Command{
			&RunCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
