// Package benchmark runs a suite of model runs and the tolerance checks
// attached to them.
//
// Models run one at a time in dependency order. Once every model has a
// result, checks run concurrently through a bounded worker pool: each check
// instance is independent and results are read-only.
package benchmark

import (
	"slices"

	"github.com/AndreyAkinshin/credo/internal/check"
	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/topsort"
)

// Model is a model run of the suite.
type Model struct {
	Name string
	Run  jobrunner.Run
	// DependsOn names models that must run first.
	DependsOn []string
	// Existing reuses output already on disk instead of running.
	Existing bool
}

// Check is a tolerance check of one model's result.
type Check struct {
	Name  string
	Model string
	Kind  check.Kind
	// Reference names the model whose result is the expected solution.
	// Empty means Config.Expected holds an analytic solution.
	Reference string
	Config    check.Config
}

// Suite is a set of models and checks.
type Suite struct {
	Name        string
	Description string
	// OutputDir receives the benchmark record.
	OutputDir string

	models map[string]Model
	names  []string
	checks []Check
}

// NewSuite creates an empty suite.
func NewSuite(name, description, outputDir string) *Suite {
	return &Suite{
		Name:        name,
		Description: description,
		OutputDir:   outputDir,
		models:      make(map[string]Model),
	}
}

// AddModel adds a model. Names must be unique.
func (s *Suite) AddModel(m Model) error {
	if m.Name == "" {
		return errors.Config("model name is required")
	}
	if m.Run == nil {
		return errors.Configf("model %q has no run", m.Name)
	}
	if _, ok := s.models[m.Name]; ok {
		return errors.Configf("duplicate model %q", m.Name)
	}
	m.DependsOn = slices.Clone(m.DependsOn)
	s.models[m.Name] = m
	s.names = append(s.names, m.Name)
	return nil
}

// AddCheck adds a check. Model references are validated by Validate.
func (s *Suite) AddCheck(c Check) error {
	if c.Name == "" {
		return errors.Config("check name is required")
	}
	for _, existing := range s.checks {
		if existing.Name == c.Name {
			return errors.Configf("duplicate check %q", c.Name)
		}
	}
	if c.Config.Name == "" {
		c.Config.Name = c.Name
	}
	s.checks = append(s.checks, c)
	return nil
}

// Models returns the model names in insertion order.
func (s *Suite) Models() []string { return slices.Clone(s.names) }

// Model returns the named model.
func (s *Suite) Model(name string) (Model, bool) {
	m, ok := s.models[name]
	return m, ok
}

// Checks returns the checks in insertion order.
func (s *Suite) Checks() []Check { return slices.Clone(s.checks) }

func (s *Suite) graph() topsort.Graph {
	g := make(topsort.Graph, len(s.models))
	for name, m := range s.models {
		g[name] = m.DependsOn
	}
	return g
}

// Validate checks model dependencies and the models named by checks.
func (s *Suite) Validate() error {
	if err := topsort.Validate(s.graph()); err != nil {
		return err
	}
	for _, c := range s.checks {
		if _, ok := s.models[c.Model]; !ok {
			return errors.Configf("check %q: unknown model %q", c.Name, c.Model)
		}
		if c.Reference != "" {
			if _, ok := s.models[c.Reference]; !ok {
				return errors.Configf("check %q: unknown reference model %q", c.Name, c.Reference)
			}
		} else if c.Config.Expected == nil {
			return errors.Configf("check %q: either a reference model or an analytic solution is required", c.Name)
		}
	}
	return nil
}

// Order returns model names in dependency order. Independent models keep
// insertion order.
func (s *Suite) Order() ([]string, error) {
	return topsort.Sort(s.graph(), s.names)
}
