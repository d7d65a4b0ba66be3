// Package cli implements the credo command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/output"
	"github.com/AndreyAkinshin/credo/internal/result/h5result"
)

// Version is set at build time via ldflags.
var Version = "dev"

// errChecksFailed is returned by commands whose suite ran but did not pass.
// The report already describes the failure, so nothing else is printed.
var errChecksFailed = errors.New("benchmark checks failed")

// app carries the state of one CLI invocation.
type app struct {
	open   h5result.Opener
	stdout io.Writer
	stderr io.Writer
	out    *output.Writer
	log    *logrus.Logger
	// color is the terminal's colour capability; --no-color turns it off.
	color bool

	quiet    bool
	noColor  bool
	logLevel string
	output   string
	dryRun   bool

	// started is set once argument parsing succeeded and a command began.
	started bool
}

// Run executes the CLI with the given arguments and returns the exit code.
// open reads HDF5 result files.
func Run(args []string, open h5result.Opener) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	a := &app{
		open:   open,
		stdout: os.Stdout,
		stderr: os.Stderr,
		out:    output.New(),
		color:  !color.NoColor,
	}
	return a.run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return errors.ExitSuccess
	case err == errChecksFailed:
		return errors.ExitRuntimeError
	case !a.started:
		// Unknown command, bad flag, or wrong argument count.
		a.out.ErrorPrefix("%v", err)
		a.out.Hint("Run 'credo --help' for usage.")
		return errors.ExitConfigError
	default:
		a.out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "credo",
		Short: "Code comparison for geothermal reservoir simulators",
		Long: `credo runs geothermal reservoir simulators on benchmark models and checks
their output against reference models and analytic solutions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.started = true
			return a.setup()
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "minimal output (errors only)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	pf.StringVar(&a.logLevel, "log-level", "warn", "diagnostic log level (debug, info, warn, error)")

	root.AddCommand(a.runCommand(), a.checkCommand(), a.validateCommand(), a.versionCommand())
	return root
}

// setup applies the global flags to the writer and builds the logger.
func (a *app) setup() error {
	a.out = output.NewWithWriters(a.stdout, a.stderr, a.color && !a.noColor)
	a.out.SetQuiet(a.quiet)

	level, err := logrus.ParseLevel(a.logLevel)
	if err != nil {
		return errors.Configf("invalid --log-level %q: valid values are debug, info, warn, error", a.logLevel)
	}
	a.log = logrus.New()
	a.log.SetOutput(a.stderr)
	a.log.SetLevel(level)
	a.log.SetFormatter(&logrus.TextFormatter{DisableColors: !a.color || a.noColor, DisableTimestamp: true})
	return nil
}
