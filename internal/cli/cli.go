// Package cli implements the jsonscript command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arnodel/jsonscript/encoding/csv"
	"github.com/arnodel/jsonscript/engine"
	"github.com/arnodel/jsonscript/internal/config"
	"github.com/arnodel/jsonscript/internal/format"
	"github.com/arnodel/jsonscript/internal/ioutil"
	"github.com/arnodel/jsonscript/luascript"
	"github.com/arnodel/jsonscript/stream"
)

const (
	fileFlag        = "file"
	exprFlag        = "expr"
	inFlag          = "in"
	csvHeaderFlag   = "csv-header"
	splitArraysFlag = "split-arrays"
	outputFlag      = "output"
	indentFlag      = "indent"
	colorFlag       = "color"
	verboseFlag     = "verbose"
	configFlag      = "config"
)

// CLI holds the jsonscript command and its dependencies.
type CLI struct {
	// Environment holds the process environment.
	Environment map[string]string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer

	cmd        *cobra.Command
	ctx        context.Context
	isTerminal func() bool

	scriptFile  string
	scriptExpr  string
	configFile  string
	outputFile  string
	in          string
	csvHeader   string
	splitArrays bool
	indent      int
	color       string
	verbose     bool
}

// ErrCLI is an error returned to the user, with an exit status and optional
// hints for resolving it.
type ErrCLI struct {
	Status int
	hints  []string
	error
}

func (e ErrCLI) Unwrap() error { return e.error }

func errHint(err error, hints ...string) ErrCLI { return ErrCLI{Status: 1, hints: hints, error: err} }

// New creates the command, reading from stdin, writing records to stdout and
// diagnostics to stderr, and reading environment variables from environment.
func New(stdin io.Reader, stdout, stderr io.Writer, environment []string) *CLI {
	env := make(map[string]string)
	for _, entry := range environment {
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		}
	}
	c := &CLI{
		Environment: env,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		ctx:         context.Background(),
	}
	c.isTerminal = func() bool { return isTerminal(c.Stdout) }
	c.cmd = &cobra.Command{
		Use:   "jsonscript (-f SCRIPT | -e CODE) [flags] [FILE...]",
		Short: "Transform a stream of JSON documents with a Lua script",
		Long: `Transform a stream of JSON documents with a Lua script.

The script pulls records with get_next(), which returns nil at the end of the
input, and writes records with emit(v).  Records are read from the FILEs in
order, or from stdin when there is none; "-" also stands for stdin.  Inputs
may be gzip or zstd compressed.

Example:

  jsonscript -e 'for doc in records() do doc.seen = true; emit(doc) end' in.json
`,
		Example: `  jsonscript -f sum.lua data.json.gz
  jsonscript --in csvh -e 'for r in records() do emit(r.name) end' users.csv
  jsonscript --split-arrays -o out.json.zst -f script.lua big-array.json`,
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE:              c.run,
	}
	c.configureFlags(c.cmd.Flags())
	c.cmd.SetIn(stdin)
	c.cmd.SetOut(stdout)
	c.cmd.SetErr(stderr)
	return c
}

func (c *CLI) configureFlags(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.StringVarP(&c.scriptFile, fileFlag, "f", "", "run the Lua script in `SCRIPT`")
	flags.StringVarP(&c.scriptExpr, exprFlag, "e", "", "run the Lua script given as `CODE`")
	flags.StringVar(&c.in, inFlag, "json", "input format: json, csv or csvh (CSV with a header row)")
	flags.StringVar(&c.csvHeader, csvHeaderFlag, "", "comma-separated field names for CSV input")
	flags.BoolVar(&c.splitArrays, splitArraysFlag, false, "read each item of a top-level array as a record")
	flags.StringVarP(&c.outputFile, outputFlag, "o", ioutil.Stdio, "write records to `FILE`, compressed if it ends in .gz or .zst")
	flags.IntVar(&c.indent, indentFlag, 0, "indent output by `N` spaces (0 for one record per line)")
	flags.StringVarP(&c.color, colorFlag, "c", "auto", "colorize output: auto, always or never")
	flags.BoolVarP(&c.verbose, verboseFlag, "v", false, "log debug information to stderr")
	flags.StringVar(&c.configFile, configFlag, "", "read defaults from the YAML `FILE` (default $"+config.EnvVar+")")
}

// Run executes the command with the given arguments.  Errors are printed to
// Stderr before being returned.
func (c *CLI) Run(ctx context.Context, args ...string) error {
	c.ctx = ctx
	c.cmd.SetArgs(args)
	err := c.cmd.ExecuteContext(ctx)
	if err != nil {
		var cliErr ErrCLI
		if errors.As(err, &cliErr) {
			c.printErr(cliErr, cliErr.hints...)
		} else {
			c.printErr(err)
		}
	}
	return err
}

func (c *CLI) run(cmd *cobra.Command, args []string) error {
	if err := c.applyConfig(cmd.Flags()); err != nil {
		return err
	}
	colorize, err := c.configureOutput()
	if err != nil {
		return err
	}
	logger := c.newLogger()

	script, err := c.loadScript(logger)
	if err != nil {
		return err
	}

	inputs, err := ioutil.OpenInputs(c.Stdin, args)
	if err != nil {
		return errHint(err, "inputs are files, or - for stdin")
	}
	defer inputs.Close()
	source, err := c.newSource(inputs)
	if err != nil {
		return err
	}

	output, err := ioutil.CreateOutput(c.Stdout, c.outputFile)
	if err != nil {
		return err
	}
	sinkOpts := []stream.SinkOption{stream.WithIndent(c.indent)}
	if colorize && (c.outputFile == "" || c.outputFile == ioutil.Stdio) {
		sinkOpts = append(sinkOpts, stream.WithColorizer(&format.DefaultColorizer))
	}
	sink := stream.NewSink(output, sinkOpts...)

	e := engine.New(source, sink, engine.WithLogger(logger))
	runErr := e.Run(script)
	closeErr := output.Close()
	if runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		if errors.Is(runErr, syscall.EPIPE) {
			// Whatever reads our output has gone away (e.g. head), which is
			// not worth complaining about.
			return nil
		}
		return c.runError(runErr, logger)
	}
	return nil
}

// applyConfig fills in the flags not given on the command line from the
// config file.
func (c *CLI) applyConfig(flags *pflag.FlagSet) error {
	cfg, err := config.Load(c.configFile, c.Environment)
	if err != nil {
		return errHint(err, "the config file is YAML with keys in, csv_header, split_arrays, indent, color and verbose")
	}
	if !flags.Changed(inFlag) {
		c.in = cfg.In
	}
	if !flags.Changed(csvHeaderFlag) {
		c.csvHeader = cfg.CSVHeader
	}
	if !flags.Changed(splitArraysFlag) {
		c.splitArrays = cfg.SplitArrays
	}
	if !flags.Changed(indentFlag) {
		c.indent = cfg.Indent
	}
	if !flags.Changed(colorFlag) {
		c.color = cfg.Color
	}
	if !flags.Changed(verboseFlag) {
		c.verbose = cfg.Verbose
	}
	merged := config.Config{In: c.in, Indent: c.indent, Color: c.color}
	return merged.Validate()
}

func (c *CLI) configureOutput() (bool, error) {
	terminal := c.isTerminal()
	if f, ok := c.Stdout.(*os.File); ok {
		c.Stdout = colorable.NewColorable(f)
	}
	if f, ok := c.Stderr.(*os.File); ok {
		c.Stderr = colorable.NewColorable(f)
	}
	colorize := false
	switch c.color {
	case "auto":
		_, nocolor := c.Environment["NO_COLOR"] // https://no-color.org
		colorize = !nocolor && terminal
	case "always":
		colorize = true
	case "never":
	default:
		return false, fmt.Errorf("invalid color option: %s", c.color)
	}
	color.NoColor = !colorize
	return colorize, nil
}

func (c *CLI) newLogger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.Stderr, &slog.HandlerOptions{Level: level}))
}

func (c *CLI) loadScript(logger *slog.Logger) (*luascript.Script, error) {
	var source, name string
	switch {
	case c.scriptFile != "" && c.scriptExpr != "":
		return nil, errHint(fmt.Errorf("--%s and --%s cannot be used together", fileFlag, exprFlag))
	case c.scriptFile != "":
		b, err := os.ReadFile(c.scriptFile)
		if err != nil {
			return nil, err
		}
		source, name = string(b), c.scriptFile
	case c.scriptExpr != "":
		source, name = c.scriptExpr, "<expr>"
	default:
		return nil, errHint(errors.New("no script given"), "use -f SCRIPT to run a script file, or -e CODE to run a script given inline")
	}
	return luascript.New(source, name,
		luascript.WithContext(c.ctx),
		luascript.WithStderr(c.Stderr),
		luascript.WithLogger(logger),
	)
}

func (c *CLI) newSource(r io.Reader) (*stream.Source, error) {
	if c.in != "json" && c.splitArrays {
		return nil, errHint(fmt.Errorf("--%s only applies to JSON input", splitArraysFlag))
	}
	switch c.in {
	case "json":
		if c.csvHeader != "" {
			return nil, errHint(fmt.Errorf("--%s only applies to CSV input", csvHeaderFlag), "use --in csv")
		}
		return stream.NewSource(r, stream.SplitArrays(c.splitArrays)), nil
	case "csv":
		dec := csv.NewDecoder(r)
		if c.csvHeader != "" {
			dec.SetFieldNames(strings.Split(c.csvHeader, ","))
			dec.RecordsProduceObjects = true
		}
		return stream.NewSourceFrom(dec), nil
	case "csvh":
		if c.csvHeader != "" {
			return nil, errHint(fmt.Errorf("--%s cannot be used with --in csvh", csvHeaderFlag), "the header row of the file gives the field names")
		}
		dec := csv.NewDecoder(r)
		dec.HasHeader = true
		dec.RecordsProduceObjects = true
		return stream.NewSourceFrom(dec), nil
	default:
		return nil, fmt.Errorf("invalid input format: %q", c.in)
	}
}

func (c *CLI) runError(err error, logger *slog.Logger) error {
	var (
		scriptErr *luascript.Error
		malformed *stream.MalformedRecordError
	)
	if errors.As(err, &scriptErr) {
		logger.Debug("script failed", slog.String("kind", scriptErr.Kind), slog.String("trace", scriptErr.Trace))
	}
	if errors.As(err, &malformed) {
		logger.Debug("malformed record",
			slog.Int("record", malformed.Record),
			slog.Int("line", malformed.Line),
			slog.Int("col", malformed.Col),
			slog.Int64("offset", malformed.Offset))
	}
	switch {
	case errors.Is(err, stream.ErrMalformedRecord):
		if c.in == "json" {
			return errHint(err, "use --in csv or --in csvh for CSV input")
		}
	case scriptErr != nil && scriptErr.Kind == "KeyNotFound":
		return errHint(err, "use json.has(doc, key) to check for optional keys")
	case scriptErr != nil && scriptErr.Kind != "Error":
		return errHint(err, "use pcall to handle errors in the script")
	}
	return errHint(err)
}

func (c *CLI) printErr(err error, hints ...string) {
	fmt.Fprintln(c.Stderr, color.RedString("Error:"), err)
	for _, hint := range hints {
		fmt.Fprintln(c.Stderr, color.CyanString("Hint:"), hint)
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
