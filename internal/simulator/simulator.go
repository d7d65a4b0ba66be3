// Package simulator defines the runs of the supported reservoir simulators.
//
// Each run knows how to prepare its input files, build its command line,
// tidy up after itself, and open its output as a result.ModelResult.
package simulator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// Kind names a simulator.
type Kind string

const (
	KindAUT2       Kind = "aut2"
	KindWaiwera    Kind = "waiwera"
	KindSupermodel Kind = "supermodel"
)

// Environment variables overriding the simulator executables.
const (
	EnvAUT2Command       = "AUT2_COMMAND"
	EnvWaiweraCommand    = "WAIWERA_COMMAND"
	EnvSupermodelCommand = "SUPERMODEL_COMMAND"
)

var (
	commandEnv = map[Kind]string{
		KindAUT2:       EnvAUT2Command,
		KindWaiwera:    EnvWaiweraCommand,
		KindSupermodel: EnvSupermodelCommand,
	}
	defaultCommand = map[Kind]string{
		KindAUT2:       "autough2_4",
		KindWaiwera:    "waiwera",
		KindSupermodel: "supermodel",
	}
)

// Kinds returns the supported simulator kinds.
func Kinds() []Kind {
	return []Kind{KindAUT2, KindWaiwera, KindSupermodel}
}

// ParseKind validates a simulator name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if _, ok := defaultCommand[k]; !ok {
		return "", errors.Configf("unknown simulator %q (expected aut2, waiwera or supermodel)", s)
	}
	return k, nil
}

// Command returns the executable for kind: the value of its environment
// variable when set, else the default name.
func Command(kind Kind) string {
	if v := os.Getenv(commandEnv[kind]); v != "" {
		return v
	}
	return defaultCommand[kind]
}

// Common holds the settings shared by every simulator run.
type Common struct {
	Name string
	// BasePath is the directory the simulator runs in. Input paths are
	// relative to it.
	BasePath string
	// OutputPath receives logs and copied output files. Relative paths are
	// resolved against BasePath.
	OutputPath string
	// Simulator overrides the executable. Empty means Command(kind).
	Simulator string
	Params    jobrunner.Params
	// Result configures the canonical view of the output.
	Result result.Options
}

func (c Common) validate() error {
	if c.Name == "" {
		return errors.Config("model name is required")
	}
	if c.BasePath == "" {
		return errors.Configf("[%s] base path is required", c.Name)
	}
	return nil
}

func (c Common) simulator(kind Kind) string {
	if c.Simulator != "" {
		return c.Simulator
	}
	return Command(kind)
}

// outputDir returns OutputPath resolved against BasePath.
func (c Common) outputDir() string {
	if c.OutputPath == "" {
		return c.BasePath
	}
	if filepath.IsAbs(c.OutputPath) {
		return c.OutputPath
	}
	return filepath.Join(c.BasePath, c.OutputPath)
}

// path resolves a model file against BasePath.
func (c Common) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.BasePath, name)
}

func (c Common) accessor(backend result.Backend) (result.ModelResult, error) {
	opts := c.Result
	opts.OutputPath = c.outputDir()
	acc, err := result.NewAccessor(c.Name, backend, opts)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("[%s] %w", c.Name, err)
	}
	return acc, nil
}
