package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/rotbench/internal/combine"
	"github.com/mattjoyce/rotbench/internal/log"
	"github.com/mattjoyce/rotbench/internal/schema"
	"github.com/mattjoyce/rotbench/internal/tui"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `rotbench-combine - merge solver result CSVs into the latest format

Usage:
  rotbench-combine [flags] <output-csv> <input-csv>...

Rows of every known format version (%v) are rewritten to version %d.
Fields a row's version does not have are filled with %s. The output file
is replaced only after every input has been read successfully.

Flags:
`, schema.Known(), schema.Latest, schema.Unavailable)
	fs.PrintDefaults()
}

func run(args []string) int {
	fs := flag.NewFlagSet("rotbench-combine", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	quiet := fs.Bool("q", false, "Do not print the summary")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Printf("rotbench-combine version %s\n", version)
		return 0
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Missing output path\n\n")
		printUsage(fs)
		return 2
	}

	log.Setup(*logLevel)
	logger := log.WithComponent("combine")

	output, inputs := fs.Arg(0), fs.Args()[1:]
	res, err := combine.Combine(output, inputs, logger)
	if err != nil {
		logger.Error("combine failed", "output", output, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !*quiet {
		fmt.Fprintln(os.Stderr, tui.RenderCombine(output, res, tui.NewDefaultTheme()))
	}
	return 0
}
