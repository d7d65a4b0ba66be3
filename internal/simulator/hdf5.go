package simulator

import (
	"fmt"
	"path/filepath"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/result"
	"github.com/AndreyAkinshin/credo/internal/result/h5result"
)

// HDF5Config describes a Waiwera or supermodel run driven by a JSON input
// file.
type HDF5Config struct {
	Common
	// Input is the JSON input file.
	Input string
	// Open opens the HDF5 output.
	Open h5result.Opener
}

// HDF5Run runs a simulator that takes a JSON input and writes HDF5 output.
type HDF5Run struct {
	kind Kind
	cfg  HDF5Config
}

var _ jobrunner.Run = (*HDF5Run)(nil)

// NewWaiwera creates a Waiwera run.
func NewWaiwera(cfg HDF5Config) (*HDF5Run, error) {
	return newHDF5Run(KindWaiwera, cfg)
}

// NewSupermodel creates a supermodel run.
func NewSupermodel(cfg HDF5Config) (*HDF5Run, error) {
	return newHDF5Run(KindSupermodel, cfg)
}

func newHDF5Run(kind Kind, cfg HDF5Config) (*HDF5Run, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		return nil, errors.Configf("[%s] input file is required", cfg.Name)
	}
	if cfg.Open == nil {
		return nil, errors.Configf("[%s] no HDF5 reader configured", cfg.Name)
	}
	return &HDF5Run{kind: kind, cfg: cfg}, nil
}

func (r *HDF5Run) Name() string             { return r.cfg.Name }
func (r *HDF5Run) BasePath() string         { return r.cfg.BasePath }
func (r *HDF5Run) OutputPath() string       { return r.cfg.OutputPath }
func (r *HDF5Run) Params() jobrunner.Params { return r.cfg.Params }
func (r *HDF5Run) Kind() Kind               { return r.kind }

// Prepare returns the command line. The input file is used as is.
func (r *HDF5Run) Prepare() (string, error) {
	return fmt.Sprintf("%s %s", r.cfg.simulator(r.kind), r.cfg.Input), nil
}

// Cleanup does nothing; the simulator writes straight to its output file.
func (r *HDF5Run) Cleanup() error { return nil }

// OutputFile returns the HDF5 file named by the input's output.filename, or
// the input name with an .h5 extension.
func (r *HDF5Run) OutputFile() (string, error) {
	inputPath := r.cfg.path(r.cfg.Input)
	in, err := h5result.ReadInput(inputPath)
	if err != nil {
		return "", fmt.Errorf("[%s] %w", r.cfg.Name, err)
	}
	return h5result.OutputFilename(inputPath, in), nil
}

// Result opens the HDF5 output.
func (r *HDF5Run) Result() (result.ModelResult, error) {
	h5Path, err := r.OutputFile()
	if err != nil {
		return nil, err
	}

	var backend result.Backend
	switch r.kind {
	case KindWaiwera:
		backend, err = h5result.OpenWaiwera(r.cfg.Open, h5Path, r.cfg.path(r.cfg.Input))
	default:
		backend, err = h5result.OpenSupermodel(r.cfg.Open, h5Path)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] open %s: %w", r.cfg.Name, filepath.Base(h5Path), err)
	}
	return r.cfg.accessor(backend)
}
