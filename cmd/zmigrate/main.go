package main

import (
	"fmt"
	"github.com/denismitr/zmigrate/internal/cli"
	"github.com/logrusorgru/aurora/v3"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"io"
	"os"
)

func main() {
	app := cli.New(osfs.New(), os.Stdout, os.Stderr)

	if err := app.Run(os.Args[1:]); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %v\n", aurora.Red("zmigrate:"), err)
}
