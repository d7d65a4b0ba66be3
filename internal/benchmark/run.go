package benchmark

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AndreyAkinshin/credo/internal/check"
	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/record"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// EnvParallel sets the number of concurrent checks.
const EnvParallel = "CREDO_PARALLEL"

const (
	// minParallelWorkers keeps the semaphore from deadlocking when
	// runtime.NumCPU() reports 0.
	minParallelWorkers = 1
	maxParallelWorkers = 256
)

// Launcher starts model runs and waits for them.
type Launcher interface {
	Submit(ctx context.Context, run jobrunner.Run) (*jobrunner.Job, error)
	Block(job *jobrunner.Job) (result.ModelResult, jobrunner.JobMetaInfo, error)
}

// RunOptions configures Run.
type RunOptions struct {
	// PostProcess reuses existing output for every model.
	PostProcess bool
	// Workers bounds concurrent checks. Zero reads CREDO_PARALLEL, then
	// falls back to runtime.NumCPU().
	Workers int
	// WriteRecords writes model and benchmark records.
	WriteRecords bool
	Logger       logrus.FieldLogger
	// Progress, when set, is told when each model starts and finishes.
	Progress Progress
}

// Progress receives model lifecycle events from Run. *output.Writer
// implements it.
type Progress interface {
	ModelStart(model, action string)
	ModelSuccess(model, detail string)
	ModelFailed(model string, err error)
}

// nopProgress discards every event.
type nopProgress struct{}

func (nopProgress) ModelStart(string, string)   {}
func (nopProgress) ModelSuccess(string, string) {}
func (nopProgress) ModelFailed(string, error)   {}

// ModelReport is the outcome of one model run.
type ModelReport struct {
	Name    string
	Existed bool
	Job     *jobrunner.JobMetaInfo
	Err     error
	// RecordPath is set when a model record was written.
	RecordPath string
}

// Detail describes how the model's output was obtained.
func (m ModelReport) Detail() string {
	switch {
	case m.Existed:
		return "existing output"
	case m.Job != nil:
		return "ran in " + m.Job.Walltime.Round(time.Millisecond).String()
	default:
		return "not run"
	}
}

// CheckReport is the outcome of one check.
type CheckReport struct {
	Name   string
	Model  string
	Check  *check.ToleranceCheck
	Passed bool
	Err    error
	Record record.Check
}

// Report is the outcome of a suite run.
type Report struct {
	Name   string
	DryRun bool
	Models []ModelReport
	Checks []CheckReport
	// RecordPath is set when the benchmark record was written.
	RecordPath string
}

// Passed reports whether every model ran and every check passed.
func (r *Report) Passed() bool {
	if r.DryRun {
		return true
	}
	for _, m := range r.Models {
		if m.Err != nil {
			return false
		}
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []CheckReport {
	var failed []CheckReport
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run launches every model of the suite in dependency order, or opens its
// existing output, then runs every check. A failed model or check is recorded
// in the report and the suite continues; only configuration errors and
// cancellation abort the run. Every opened result is closed before Run
// returns.
func (s *Suite) Run(ctx context.Context, launcher Launcher, opts RunOptions) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	order, err := s.Order()
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	log = log.WithField("suite", s.Name)
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	report := &Report{Name: s.Name}
	results := make(map[string]result.ModelResult, len(order))
	defer func() {
		for name, res := range results {
			if err := res.Close(); err != nil {
				log.WithError(err).WithField("model", name).Warn("close result")
			}
		}
	}()

	failed := make(map[string]error)
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m := s.models[name]
		mr := ModelReport{Name: name, Existed: m.Existing || opts.PostProcess}

		if dep := failedDependency(m, failed); dep != "" {
			mr.Err = errors.Newf("[%s] dependency %q failed", name, dep)
			failed[name] = mr.Err
			progress.ModelFailed(name, mr.Err)
			report.Models = append(report.Models, mr)
			continue
		}

		action := "run"
		if mr.Existed {
			action = "existing output"
		}
		progress.ModelStart(name, action)
		res, job, dryRun, err := s.open(ctx, launcher, m, mr.Existed)
		if dryRun {
			report.DryRun = true
			report.Models = append(report.Models, mr)
			continue
		}
		mr.Job = job
		if err != nil {
			if errors.GetExitCode(err) == errors.ExitConfigError {
				return report, err
			}
			log.WithError(err).WithField("model", name).Warn("model failed")
			mr.Err = err
			failed[name] = err
			progress.ModelFailed(name, err)
			report.Models = append(report.Models, mr)
			continue
		}
		results[name] = res

		if opts.WriteRecords {
			rec := record.Model{ModelName: name, OutputPath: res.OutputPath()}
			if job != nil {
				rec.Job = record.NewJob(*job)
			}
			if mr.RecordPath, err = record.WriteModel("", rec); err != nil {
				return report, err
			}
		}
		progress.ModelSuccess(name, mr.Detail())
		report.Models = append(report.Models, mr)
	}

	if report.DryRun {
		return report, nil
	}

	report.Checks = s.runChecks(ctx, results, failed, workerCount(opts.Workers, log), log)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if opts.WriteRecords && s.OutputDir != "" {
		models := make([]record.Model, 0, len(report.Models))
		for _, m := range report.Models {
			if res, ok := results[m.Name]; ok {
				rec := record.Model{ModelName: m.Name, OutputPath: res.OutputPath()}
				if m.Job != nil {
					rec.Job = record.NewJob(*m.Job)
				}
				models = append(models, rec)
			}
		}
		checks := make([]record.Check, len(report.Checks))
		for i, c := range report.Checks {
			checks[i] = c.Record
		}
		b := record.NewBenchmark(s.Name, s.Description, models, checks)
		path := filepath.Join(s.OutputDir, b.Filename())
		if err := record.Write(path, b); err != nil {
			return report, err
		}
		report.RecordPath = path
	}
	return report, nil
}

// open returns the result of m, running it first unless existing is set.
func (s *Suite) open(ctx context.Context, launcher Launcher, m Model, existing bool) (result.ModelResult, *jobrunner.JobMetaInfo, bool, error) {
	if existing {
		res, err := m.Run.Result()
		return res, nil, false, err
	}
	job, err := launcher.Submit(ctx, m.Run)
	if err != nil {
		return nil, nil, false, err
	}
	if job.DryRun() {
		return nil, nil, true, nil
	}
	res, meta, err := launcher.Block(job)
	return res, &meta, false, err
}

func failedDependency(m Model, failed map[string]error) string {
	for _, dep := range m.DependsOn {
		if _, ok := failed[dep]; ok {
			return dep
		}
	}
	return ""
}

// runChecks runs every check through a bounded worker pool and returns the
// reports in suite order.
func (s *Suite) runChecks(ctx context.Context, results map[string]result.ModelResult, failed map[string]error, workers int, log logrus.FieldLogger) []CheckReport {
	reports := make([]CheckReport, len(s.checks))
	var wg sync.WaitGroup
	// Channel capacity bounds the number of checks in flight.
	sem := make(chan struct{}, workers)

	for i, c := range s.checks {
		reports[i] = CheckReport{Name: c.Name, Model: c.Model}
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				reports[i].Err = ctx.Err()
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()
			reports[i] = s.runCheck(c, results, failed, log)
		}(i, c)
	}
	wg.Wait()

	for i := range reports {
		if reports[i].Check == nil {
			reports[i].Record = record.Check{
				Name:   reports[i].Name,
				Model:  reports[i].Model,
				Status: record.StatusError,
				Result: record.CheckResult{StatusMsg: "check could not be completed", Error: errorText(reports[i].Err)},
			}
		}
	}
	return reports
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Suite) runCheck(c Check, results map[string]result.ModelResult, failed map[string]error, log logrus.FieldLogger) CheckReport {
	rep := CheckReport{Name: c.Name, Model: c.Model}

	for _, name := range []string{c.Model, c.Reference} {
		if name == "" {
			continue
		}
		if err, ok := failed[name]; ok {
			rep.Err = fmt.Errorf("model %q has no result: %w", name, err)
			return rep
		}
	}

	cfg := c.Config
	cfg.Logger = log.WithField("model", c.Model)
	if c.Reference != "" {
		cfg.Expected = check.Reference(results[c.Reference])
	}

	var (
		tc  *check.ToleranceCheck
		err error
	)
	if c.Kind == check.KindHistory {
		tc, err = check.NewHistoryCheck(cfg)
	} else {
		tc, err = check.NewFieldCheck(cfg)
	}
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Check = tc

	rep.Passed, rep.Err = tc.Check(results[c.Model])
	if rep.Err != nil {
		rep.Passed = false
	}
	rep.Record = record.NewCheck(tc, c.Model, rep.Err)
	return rep
}

// workerCount returns n when positive, else the CREDO_PARALLEL value, else
// runtime.NumCPU(). Invalid CREDO_PARALLEL values log a warning and use the
// default.
func workerCount(n int, log logrus.FieldLogger) int {
	if n > 0 {
		return min(n, maxParallelWorkers)
	}
	def := max(minParallelWorkers, runtime.NumCPU())
	env := os.Getenv(EnvParallel)
	if env == "" {
		return def
	}
	v, err := strconv.Atoi(env)
	if err != nil {
		log.Warnf("invalid %s value %q (not a number), using default", EnvParallel, env)
		return def
	}
	if v < minParallelWorkers || v > maxParallelWorkers {
		log.Warnf("%s=%d out of range [%d-%d], using default", EnvParallel, v, minParallelWorkers, maxParallelWorkers)
		return def
	}
	return v
}
