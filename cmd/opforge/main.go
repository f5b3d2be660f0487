package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/funvibe/opforge/pkg/cli"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: opforge build -schema DECLS.yaml [-ambiguity RULES.yaml] [-out DIR] [-diag] [-debug]`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "build":
		fs := flag.NewFlagSet("build", flag.ExitOnError)
		var opts cli.Options
		fs.StringVar(&opts.SchemaPath, "schema", "", "declarations YAML file")
		fs.StringVar(&opts.AmbiguityPath, "ambiguity", "", "ambiguity rule YAML file (overrides the bundled table)")
		fs.StringVar(&opts.OutDir, "out", "", "destination directory for the manifest")
		fs.BoolVar(&opts.Diag, "diag", false, "report declarations rejected by the eligibility filter")
		fs.BoolVar(&opts.Debug, "debug", false, "verbose logging")
		_ = fs.Parse(os.Args[2:])

		if err := cli.Run(opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "opforge: %v\n", err)
			os.Exit(1)
		}

	default:
		usage()
	}
}
