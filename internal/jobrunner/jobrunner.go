// Package jobrunner launches simulator runs as local processes.
package jobrunner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

const (
	// RunTypeSimple identifies jobs started by SimpleRunner.
	RunTypeSimple = "Simple"

	// EnvMPIRunCommand overrides the MPI launcher for multi-process runs.
	EnvMPIRunCommand     = "MPI_RUN_COMMAND"
	defaultMPIRunCommand = "mpiexec"

	runCommandFile = "runCommand.sh"
)

// Params are the job parameters of a run.
type Params struct {
	// NProc above 1 launches the run through the MPI launcher.
	NProc int
	// MaxRunTime kills the run when exceeded. Zero means no limit.
	MaxRunTime time.Duration
}

// Run is a model run the runner can launch.
type Run interface {
	Name() string
	// BasePath is the working directory of the simulator process.
	BasePath() string
	// OutputPath receives the logs and the archived run command. Relative
	// paths are resolved against BasePath.
	OutputPath() string
	Params() Params
	// Prepare writes any input files and returns the simulator command line,
	// without the MPI prefix.
	Prepare() (string, error)
	// Cleanup tidies the base path after a successful run.
	Cleanup() error
	// Result opens the output of a finished run.
	Result() (result.ModelResult, error)
}

// JobMetaInfo describes one launched job.
type JobMetaInfo struct {
	ID         string
	RunType    string
	RunCommand string
	SubmitTime time.Time
	Walltime   time.Duration
	ExitCode   int
	Hostname   string
	Platform   string
	StdoutPath string
	StderrPath string
}

// RunError reports a run that exited unsuccessfully or ran too long.
type RunError struct {
	Model      string
	ExitCode   int
	TimedOut   bool
	MaxRunTime time.Duration
	StdoutPath string
	StderrPath string
}

func (e *RunError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("model %q exceeded max run time of %s (logs: %s, %s)", e.Model, e.MaxRunTime, e.StdoutPath, e.StderrPath)
	}
	return fmt.Sprintf("model %q failed with exit code %d (logs: %s, %s)", e.Model, e.ExitCode, e.StdoutPath, e.StderrPath)
}

// Options configures a SimpleRunner.
type Options struct {
	// DryRun prints each command instead of running it.
	DryRun bool
	// Prefix is prepended to every command line, before any MPI launcher.
	Prefix string
	// Env holds additional environment variables for the simulator.
	Env map[string]string
	// Stdout receives the model and command announcement. Nil means os.Stdout.
	Stdout io.Writer
	Logger logrus.FieldLogger
}

// SimpleRunner runs each job as a child process of the current one.
type SimpleRunner struct {
	opts Options
	out  io.Writer
	log  logrus.FieldLogger
}

// New creates a SimpleRunner.
func New(opts Options) *SimpleRunner {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &SimpleRunner{opts: opts, out: out, log: log}
}

// DryRun reports whether the runner only prints commands.
func (r *SimpleRunner) DryRun() bool { return r.opts.DryRun }

// Job is a submitted run.
type Job struct {
	run    Run
	meta   JobMetaInfo
	cmd    *exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	logs   []*os.File
	dryRun bool
}

// Meta returns the job's metadata. Walltime and ExitCode are set by Block.
func (j *Job) Meta() JobMetaInfo { return j.meta }

// DryRun reports whether the job was only printed.
func (j *Job) DryRun() bool { return j.dryRun }

// Submit prepares run and starts its process. The process is killed when ctx
// is cancelled or the run's MaxRunTime passes.
func (r *SimpleRunner) Submit(ctx context.Context, run Run) (*Job, error) {
	cmdLine, err := run.Prepare()
	if err != nil {
		return nil, fmt.Errorf("prepare %q: %w", run.Name(), err)
	}
	cmdLine = r.commandLine(cmdLine, run.Params())

	fmt.Fprintf(r.out, "Model: %q\nCommand: %q\n", run.Name(), cmdLine)
	if r.opts.DryRun {
		return &Job{run: run, dryRun: true, meta: JobMetaInfo{RunType: RunTypeSimple, RunCommand: cmdLine}}, nil
	}

	if name := extractCommandName(cmdLine); name != "" && !isCommandAvailable(name, run.BasePath()) {
		return nil, errors.Environmentf("[%s] command %q not found in PATH", run.Name(), name)
	}

	outDir := outputDir(run)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := archiveRunCommand(outDir, run.BasePath(), cmdLine); err != nil {
		return nil, err
	}

	meta := JobMetaInfo{
		ID:         uuid.NewString(),
		RunType:    RunTypeSimple,
		RunCommand: cmdLine,
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		StdoutPath: filepath.Join(outDir, run.Name()+".stdout"),
		StderrPath: filepath.Join(outDir, run.Name()+".stderr"),
	}
	meta.Hostname, _ = os.Hostname()

	stdout, err := os.Create(meta.StdoutPath)
	if err != nil {
		return nil, fmt.Errorf("create stdout log: %w", err)
	}
	stderr, err := os.Create(meta.StderrPath)
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("create stderr log: %w", err)
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if limit := run.Params().MaxRunTime; limit > 0 {
		runCtx, cancel = context.WithTimeout(ctx, limit)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	cmd := buildShellCommand(runCtx, cmdLine)
	cmd.Dir = run.BasePath()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	for k, v := range r.opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	meta.SubmitTime = time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		stdout.Close()
		stderr.Close()
		return nil, errors.Environmentf("[%s] launch %q: %v", run.Name(), cmdLine, err)
	}

	r.log.WithFields(logrus.Fields{
		"model":   run.Name(),
		"job_id":  meta.ID,
		"command": cmdLine,
	}).Info("job started")

	return &Job{
		run:    run,
		meta:   meta,
		cmd:    cmd,
		ctx:    runCtx,
		cancel: cancel,
		logs:   []*os.File{stdout, stderr},
	}, nil
}

// Block waits for job to finish, tidies up after it, and opens its result.
func (r *SimpleRunner) Block(job *Job) (result.ModelResult, JobMetaInfo, error) {
	if job.dryRun {
		return nil, job.meta, errors.Newf("[%s] dry run has no result", job.run.Name())
	}
	defer job.cancel()

	waitErr := job.cmd.Wait()
	job.meta.Walltime = time.Since(job.meta.SubmitTime)
	if job.cmd.ProcessState != nil {
		job.meta.ExitCode = job.cmd.ProcessState.ExitCode()
	}
	for _, f := range job.logs {
		f.Close()
	}

	log := r.log.WithFields(logrus.Fields{
		"model":    job.run.Name(),
		"job_id":   job.meta.ID,
		"command":  job.meta.RunCommand,
		"walltime": job.meta.Walltime.Seconds(),
	})

	if errors.Is(job.ctx.Err(), context.DeadlineExceeded) {
		log.Warn("job timed out")
		return nil, job.meta, &RunError{
			Model:      job.run.Name(),
			ExitCode:   job.meta.ExitCode,
			TimedOut:   true,
			MaxRunTime: job.run.Params().MaxRunTime,
			StdoutPath: job.meta.StdoutPath,
			StderrPath: job.meta.StderrPath,
		}
	}
	if waitErr != nil {
		log.WithField("exit_code", job.meta.ExitCode).Warn("job failed")
		return nil, job.meta, &RunError{
			Model:      job.run.Name(),
			ExitCode:   job.meta.ExitCode,
			StdoutPath: job.meta.StdoutPath,
			StderrPath: job.meta.StderrPath,
		}
	}
	log.Info("job finished")

	if err := job.run.Cleanup(); err != nil {
		return nil, job.meta, fmt.Errorf("cleanup %q: %w", job.run.Name(), err)
	}
	res, err := job.run.Result()
	if err != nil {
		return nil, job.meta, fmt.Errorf("open result of %q: %w", job.run.Name(), err)
	}
	return res, job.meta, nil
}

// RunAndBlock submits run and waits for it.
func (r *SimpleRunner) RunAndBlock(ctx context.Context, run Run) (result.ModelResult, JobMetaInfo, error) {
	job, err := r.Submit(ctx, run)
	if err != nil {
		return nil, JobMetaInfo{}, err
	}
	return r.Block(job)
}

func (r *SimpleRunner) commandLine(cmdLine string, p Params) string {
	if p.NProc > 1 {
		mpi := os.Getenv(EnvMPIRunCommand)
		if mpi == "" {
			mpi = defaultMPIRunCommand
		}
		cmdLine = fmt.Sprintf("%s -np %d %s", mpi, p.NProc, cmdLine)
	}
	if r.opts.Prefix != "" {
		cmdLine = r.opts.Prefix + " " + cmdLine
	}
	return cmdLine
}

func outputDir(run Run) string {
	out := run.OutputPath()
	if out == "" {
		return run.BasePath()
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(run.BasePath(), out)
}

// archiveRunCommand saves the command to an executable script in the output
// directory so the run can be repeated by hand.
func archiveRunCommand(outDir, basePath, cmdLine string) error {
	script := fmt.Sprintf("#!/bin/sh\ncd %s\n%s\n", shellQuote(basePath), cmdLine)
	path := filepath.Join(outDir, runCommandFile)
	if err := os.WriteFile(path, []byte(script), 0o770); err != nil {
		return fmt.Errorf("archive run command: %w", err)
	}
	return nil
}

// shellQuote wraps s in single quotes for sh, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// extractCommandName returns the executable name (first word) of a command
// line, or "" for lines starting with a quote.
func extractCommandName(cmdLine string) string {
	trimmed := strings.TrimSpace(cmdLine)
	if trimmed == "" || trimmed[0] == '"' || trimmed[0] == '\'' {
		return ""
	}
	return strings.Fields(trimmed)[0]
}

// isCommandAvailable checks if a command is available in PATH. Names
// containing a separator are resolved against dir.
func isCommandAvailable(name, dir string) bool {
	if _, ok := shellBuiltins[name]; ok || strings.ContainsRune(name, '=') {
		return true
	}
	if strings.ContainsRune(name, filepath.Separator) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		info, err := os.Stat(name)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// shellBuiltins are always available through sh -c.
var shellBuiltins = map[string]struct{}{
	"cd":     {},
	"echo":   {},
	"eval":   {},
	"exec":   {},
	"exit":   {},
	"export": {},
	"set":    {},
	"test":   {},
	"time":   {},
	"ulimit": {},
	"umask":  {},
	".":      {},
}

func buildShellCommand(ctx context.Context, cmdLine string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", cmdLine)
}
