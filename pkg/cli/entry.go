// Package cli implements the offline entry point: (re)build the
// dispatch table from a schema source and write the results to a
// destination, with a diagnostic mode for rejected declarations.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/opforge/internal/dispatch"
	"github.com/funvibe/opforge/internal/manifest"
	"github.com/funvibe/opforge/internal/schema"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes for diagnostic output
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

// Options configures one build run.
type Options struct {
	// SchemaPath is the declarations YAML file (required).
	SchemaPath string

	// AmbiguityPath optionally overrides the bundled ambiguity rule
	// table with a YAML file.
	AmbiguityPath string

	// OutDir is where the manifest and interned-name list are written.
	// Empty means build-and-report only.
	OutDir string

	// Diag prints declarations rejected by the eligibility filter,
	// suppressed variants and omitted declarations.
	Diag bool

	// Debug raises log verbosity.
	Debug bool
}

// Run executes a build. Human-readable output goes to out; logs go
// through zap to stderr.
func Run(opts Options, out io.Writer) error {
	if opts.SchemaPath == "" {
		return fmt.Errorf("no schema source given")
	}

	log := newLogger(opts.Debug)
	defer func() { _ = log.Sync() }()

	decls, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return err
	}
	decls = append(decls, schema.ReceiverBuiltins()...)
	log.Infow("schema loaded", "source", opts.SchemaPath, "declarations", len(decls))

	rules := dispatch.DefaultAmbiguityRules()
	if opts.AmbiguityPath != "" {
		if rules, err = dispatch.LoadAmbiguityRules(opts.AmbiguityPath); err != nil {
			return err
		}
		log.Infow("ambiguity rules overridden", "source", opts.AmbiguityPath, "rules", len(rules))
	}

	builder := dispatch.NewBuilder(rules)
	builder.SetLogger(log)
	builder.Add(decls...)

	table, report, err := builder.Build()
	if err != nil {
		return err
	}

	if opts.Diag {
		printReport(out, report)
	}

	fmt.Fprintf(out, "%d operators, %d interned names (build %s)\n",
		table.Len(), len(table.InternedNames()), report.BuildID)

	if opts.OutDir != "" {
		m := manifest.FromTable(table, report.BuildID)
		if err := m.Write(opts.OutDir); err != nil {
			return err
		}
		log.Infow("artifact written", "dir", opts.OutDir, "fingerprint", m.Fingerprint)
	}
	return nil
}

// printReport lists everything the build dropped, and why.
func printReport(out io.Writer, report *dispatch.Report) {
	paint := func(code, s string) string {
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return code + s + colorReset
		}
		return s
	}

	for _, r := range report.Rejected {
		fmt.Fprintf(out, "%s %s: %s\n", paint(colorRed, "rejected"), r.Decl, r.Reason)
	}
	for _, key := range report.Suppressed {
		fmt.Fprintf(out, "%s %s: scalar overload covered by tensor sibling\n", paint(colorYellow, "suppressed"), key)
	}
	for _, name := range report.Omitted {
		fmt.Fprintf(out, "%s %s: all variants suppressed by ambiguity rules\n", paint(colorCyan, "omitted"), name)
	}
}

func newLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log.Sugar()
}
