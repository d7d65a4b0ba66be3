package config

import (
	"fmt"
	"path/filepath"

	"github.com/AndreyAkinshin/credo/internal/benchmark"
	"github.com/AndreyAkinshin/credo/internal/check"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/result"
	"github.com/AndreyAkinshin/credo/internal/result/h5result"
	"github.com/AndreyAkinshin/credo/internal/simulator"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// BaseDir resolves relative paths of the suite, normally the directory
	// of the suite file.
	BaseDir string
	// OutputDir overrides the suite output_dir.
	OutputDir string
	// Open reads HDF5 output of Waiwera and supermodel runs.
	Open h5result.Opener
}

// Build turns a loaded suite into a runnable benchmark suite.
func Build(cfg *Suite, opts BuildOptions) (*benchmark.Suite, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	outputDir := opts.OutputDir
	if outputDir == "" && cfg.OutputDir != "" {
		outputDir = resolve(baseDir, cfg.OutputDir)
	}

	fieldMaps := make(map[string]result.FieldNameMap, len(cfg.FieldMaps))
	for name, fm := range cfg.FieldMaps {
		m, err := buildFieldMap(name, fm)
		if err != nil {
			return nil, err
		}
		fieldMaps[name] = m
	}

	s := benchmark.NewSuite(cfg.Name, cfg.Description, outputDir)
	for _, mc := range cfg.Models {
		run, err := buildRun(mc, baseDir, outputDir, fieldMaps, opts.Open)
		if err != nil {
			return nil, err
		}
		if err := s.AddModel(benchmark.Model{
			Name:      mc.Name,
			Run:       run,
			DependsOn: mc.DependsOn,
			Existing:  mc.Existing,
		}); err != nil {
			return nil, err
		}
	}
	for _, cc := range cfg.Checks {
		c, err := buildCheck(cc)
		if err != nil {
			return nil, err
		}
		if err := s.AddCheck(c); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func buildFieldMap(name string, fm FieldMapConfig) (result.FieldNameMap, error) {
	out := make(result.FieldNameMap, len(fm))
	for canonical, f := range fm {
		if f.Derived == "" {
			out[canonical] = result.Native(f.Native)
			continue
		}
		src, err := result.BuiltinDerived(f.Derived, f.Source)
		if err != nil {
			return nil, fmt.Errorf("field map %q: %w", name, err)
		}
		out[canonical] = src
	}
	return out, nil
}

func buildOrdering(o *OrderingConfig) (result.OrderingMap, error) {
	switch {
	case o == nil:
		return nil, nil
	case o.Range != nil:
		return result.Range(o.Range[0], o.Range[1])
	default:
		return result.NewOrderingMap(o.Cells)
	}
}

func buildRun(mc ModelConfig, baseDir, outputDir string, fieldMaps map[string]result.FieldNameMap, open h5result.Opener) (jobrunner.Run, error) {
	kind, err := simulator.ParseKind(mc.Simulator)
	if err != nil {
		return nil, err
	}
	ordering, err := buildOrdering(mc.Ordering)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", mc.Name, err)
	}

	common := simulator.Common{
		Name:      mc.Name,
		BasePath:  resolve(baseDir, mc.BasePath),
		Simulator: mc.Command,
		Params: jobrunner.Params{
			NProc:      mc.NProc,
			MaxRunTime: mc.MaxRunTime.Duration,
		},
		Result: result.Options{
			Fields:   fieldMaps[mc.FieldMap],
			Ordering: ordering,
		},
	}
	if mc.BasePath == "" {
		common.BasePath = baseDir
	}
	switch {
	case mc.OutputPath != "":
		common.OutputPath = mc.OutputPath
	case outputDir != "":
		abs, err := filepath.Abs(filepath.Join(outputDir, mc.Name))
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", mc.Name, err)
		}
		common.OutputPath = abs
	}

	switch kind {
	case simulator.KindAUT2:
		return simulator.NewAUT2(simulator.AUT2Config{
			Common:        common,
			DatFile:       mc.Input,
			SaveFile:      mc.Save,
			InconFile:     mc.Incon,
			PositionsFile: mc.Positions,
		})
	case simulator.KindWaiwera:
		return simulator.NewWaiwera(simulator.HDF5Config{Common: common, Input: mc.Input, Open: open})
	default:
		return simulator.NewSupermodel(simulator.HDF5Config{Common: common, Input: mc.Input, Open: open})
	}
}

func buildCheck(cc CheckConfig) (benchmark.Check, error) {
	kind := check.KindField
	if cc.Kind == CheckKindHistory {
		kind = check.KindHistory
	}

	cfg := check.Config{
		Name:   cc.Name,
		Fields: cc.Fields,
		Tolerance: check.ToleranceSpec{
			Default:  check.DefaultTolerance,
			PerField: cc.FieldTolerances,
		},
		AbsErrTol:     cc.AbsErrTol,
		OutputIndex:   DefaultOutputIndex,
		Cell:          cc.Cell,
		Times:         cc.Times,
		CurveDistance: cc.CurveDistance,
		LogX:          cc.LogX,
		LogY:          cc.LogY,
		EnforceLogic:  true,
	}
	if cc.Tolerance != nil {
		cfg.Tolerance.Default = *cc.Tolerance
	}
	if cc.OutputIndex != nil {
		cfg.OutputIndex = *cc.OutputIndex
	}
	if cc.EnforceLogic != nil {
		cfg.EnforceLogic = *cc.EnforceLogic
	}

	if a := cc.Expected.Analytic; a != nil {
		switch a.Kind {
		case AnalyticConstant:
			cfg.Expected = check.Analytic(check.Constant(a.Value))
		case AnalyticLinear:
			cfg.Expected = check.Analytic(check.Linear(a.C0, a.CX, a.CY, a.CZ, a.CT))
		default:
			return benchmark.Check{}, &ValidationError{Field: "checks." + cc.Name + ".expected.analytic.kind", Message: fmt.Sprintf("unknown kind %q", a.Kind)}
		}
	}

	return benchmark.Check{
		Name:      cc.Name,
		Model:     cc.Model,
		Kind:      kind,
		Reference: cc.Expected.Model,
		Config:    cfg,
	}, nil
}
