package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/credo/internal/benchmark"
	"github.com/AndreyAkinshin/credo/internal/config"
	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
)

// suiteArg requires exactly one suite file argument.
func suiteArg(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return errors.Configf("%s requires a suite file\n  usage: %s", cmd.Name(), cmd.UseLine())
	default:
		return errors.Configf("%s accepts one suite file, got %d arguments", cmd.Name(), len(args))
	}
}

func (a *app) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <suite>",
		Short: "Run every model of a suite and check the results",
		Args:  suiteArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuite(cmd, args[0], false)
		},
	}
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "output directory (overrides output_dir)")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "print the simulator commands without running them")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <suite>",
		Short: "Check existing model output without running any simulator",
		Args:  suiteArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuite(cmd, args[0], true)
		},
	}
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "output directory (overrides output_dir)")
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <suite>",
		Short: "Validate a suite file",
		Args:  suiteArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := a.loadSuite(args[0])
			if err != nil {
				return err
			}
			a.out.ValidationSuccess("suite %q is valid (%d models, %d checks)", s.Name, len(cfg.Models), len(cfg.Checks))
			if s.Description != "" {
				a.out.Info("%s", s.Description)
			}
			printOutline(a.out, cfg)
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the credo version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.out.Println("credo %s", Version)
		},
	}
}

// loadSuite reads, validates and builds the suite at path. Relative paths in
// the suite resolve against its directory.
func (a *app) loadSuite(path string) (*config.Suite, *benchmark.Suite, error) {
	cfg, warnings, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to resolve suite path")
	}
	outputDir := a.output
	if outputDir != "" {
		if outputDir, err = filepath.Abs(outputDir); err != nil {
			return nil, nil, errors.Wrap(err, "failed to resolve output directory")
		}
	}
	s, err := config.Build(cfg, config.BuildOptions{
		BaseDir:   filepath.Dir(abs),
		OutputDir: outputDir,
		Open:      a.open,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, s, nil
}

// runSuite runs or post-processes the suite at path and prints the report.
func (a *app) runSuite(cmd *cobra.Command, path string, postProcess bool) error {
	cfg, s, err := a.loadSuite(path)
	if err != nil {
		return err
	}

	dryRun := a.dryRun && !postProcess
	announce := a.stdout
	if a.quiet && !dryRun {
		announce = io.Discard
	}
	runner := jobrunner.New(jobrunner.Options{
		DryRun: dryRun,
		Stdout: announce,
		Logger: a.log,
	})
	if runner.DryRun() {
		a.out.DryRunStart()
	}

	report, err := s.Run(cmd.Context(), runner, benchmark.RunOptions{
		PostProcess:  postProcess,
		Workers:      cfg.Parallel,
		WriteRecords: !runner.DryRun(),
		Logger:       a.log,
		Progress:     a.out,
	})
	if report != nil {
		printReport(a.out, report)
	}
	if err != nil {
		return err
	}
	if !report.Passed() {
		return errChecksFailed
	}
	return nil
}
