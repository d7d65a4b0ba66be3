package config

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/simulator"
)

// Suite, model and check names: a letter or digit, then letters, digits,
// underscores, dots and hyphens.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match errors.ErrConfiguration.
func (e *ValidationError) Unwrap() error {
	return errors.ErrConfiguration
}

// Validate checks a suite for semantic errors the schema cannot express and
// returns warnings for non-fatal issues. Defaults must already be applied.
func Validate(cfg *Suite) (warnings []string, err error) {
	if err := ValidateName("name", cfg.Name); err != nil {
		return nil, err
	}
	if err := validateFieldMaps(cfg); err != nil {
		return nil, err
	}
	models, err := validateModels(cfg)
	if err != nil {
		return nil, err
	}
	return validateChecks(cfg, models)
}

func validateFieldMaps(cfg *Suite) error {
	for _, name := range slices.Sorted(maps.Keys(cfg.FieldMaps)) {
		fm := cfg.FieldMaps[name]
		for _, canonical := range slices.Sorted(maps.Keys(fm)) {
			f := fm[canonical]
			field := fmt.Sprintf("field_maps.%s.%s", name, canonical)
			if f.Derived == "" && f.Native == "" {
				return &ValidationError{Field: field, Message: "must name a native field or a derivation"}
			}
			if f.Derived != "" && f.Source == canonical {
				return &ValidationError{Field: field, Message: "cannot be derived from itself"}
			}
			if chain := derivedCycle(fm, canonical); chain != nil {
				return &ValidationError{Field: field, Message: "derived fields form a cycle: " + strings.Join(chain, " -> ")}
			}
		}
	}
	return nil
}

// derivedCycle follows the source chain of a derived field within its map and
// returns the chain when it revisits a field, nil otherwise.
func derivedCycle(fm FieldMapConfig, start string) []string {
	chain := []string{start}
	seen := map[string]bool{start: true}
	for name := start; ; {
		f, ok := fm[name]
		if !ok || f.Derived == "" {
			return nil
		}
		name = f.Source
		chain = append(chain, name)
		if seen[name] {
			return chain
		}
		seen[name] = true
	}
}

func validateModels(cfg *Suite) (map[string]ModelConfig, error) {
	models := make(map[string]ModelConfig, len(cfg.Models))
	for i, m := range cfg.Models {
		prefix := fmt.Sprintf("models[%d]", i)
		if err := ValidateName(prefix+".name", m.Name); err != nil {
			return nil, err
		}
		if _, dup := models[m.Name]; dup {
			return nil, &ValidationError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate model %q", m.Name)}
		}
		models[m.Name] = m

		kind, err := simulator.ParseKind(m.Simulator)
		if err != nil {
			return nil, &ValidationError{Field: prefix + ".simulator", Message: err.Error()}
		}
		if m.Input == "" {
			return nil, &ValidationError{Field: prefix + ".input", Message: "is required"}
		}
		if kind != simulator.KindAUT2 {
			for _, f := range [...]struct{ name, value string }{{"save", m.Save}, {"incon", m.Incon}, {"positions", m.Positions}} {
				if f.value != "" {
					return nil, &ValidationError{Field: prefix + "." + f.name, Message: "only applies to aut2 models"}
				}
			}
		}
		if m.FieldMap != "" {
			if _, ok := cfg.FieldMaps[m.FieldMap]; !ok {
				return nil, &ValidationError{Field: prefix + ".field_map", Message: fmt.Sprintf("unknown field map %q", m.FieldMap)}
			}
		}
		if m.Ordering != nil && m.Ordering.Range != nil {
			if r := m.Ordering.Range; len(r) != 2 || r[0] >= r[1] {
				return nil, &ValidationError{Field: prefix + ".ordering.range", Message: "must be [start, stop] with start < stop"}
			}
		}
	}

	for i, m := range cfg.Models {
		for _, dep := range m.DependsOn {
			field := fmt.Sprintf("models[%d].depends_on", i)
			if dep == m.Name {
				return nil, &ValidationError{Field: field, Message: "model cannot depend on itself"}
			}
			if _, ok := models[dep]; !ok {
				return nil, &ValidationError{Field: field, Message: fmt.Sprintf("unknown model %q", dep)}
			}
		}
	}
	return models, nil
}

func validateChecks(cfg *Suite, models map[string]ModelConfig) ([]string, error) {
	var warnings []string
	names := make(map[string]bool, len(cfg.Checks))
	for i, c := range cfg.Checks {
		prefix := fmt.Sprintf("checks[%d]", i)
		if err := ValidateName(prefix+".name", c.Name); err != nil {
			return nil, err
		}
		if names[c.Name] {
			return nil, &ValidationError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate check %q", c.Name)}
		}
		names[c.Name] = true

		if _, ok := models[c.Model]; !ok {
			return nil, &ValidationError{Field: prefix + ".model", Message: fmt.Sprintf("unknown model %q", c.Model)}
		}
		if c.Kind != CheckKindField && c.Kind != CheckKindHistory {
			return nil, &ValidationError{Field: prefix + ".kind", Message: `must be "field" or "history"`}
		}
		if len(c.Fields) == 0 {
			return nil, &ValidationError{Field: prefix + ".fields", Message: "is required"}
		}

		switch {
		case c.Expected.Model != "" && c.Expected.Analytic != nil:
			return nil, &ValidationError{Field: prefix + ".expected", Message: "must name a model or an analytic solution, not both"}
		case c.Expected.Model != "":
			if _, ok := models[c.Expected.Model]; !ok {
				return nil, &ValidationError{Field: prefix + ".expected.model", Message: fmt.Sprintf("unknown model %q", c.Expected.Model)}
			}
		case c.Expected.Analytic != nil:
			if k := c.Expected.Analytic.Kind; k != AnalyticConstant && k != AnalyticLinear {
				return nil, &ValidationError{Field: prefix + ".expected.analytic.kind", Message: `must be "constant" or "linear"`}
			}
		default:
			return nil, &ValidationError{Field: prefix + ".expected", Message: "is required"}
		}

		if c.Kind == CheckKindHistory && c.EnforceLogic != nil && *c.EnforceLogic && c.Times != nil {
			if c.Expected.Analytic != nil {
				return nil, &ValidationError{Field: prefix + ".times", Message: "cannot be given with an analytic solution"}
			}
			if c.CurveDistance {
				return nil, &ValidationError{Field: prefix + ".times", Message: "cannot be given with curve distance"}
			}
		}

		if c.Kind == CheckKindField && (c.CurveDistance || c.Times != nil) {
			warnings = append(warnings, fmt.Sprintf("%s: times and curve_distance only apply to history checks (ignored)", prefix))
		}
		for _, field := range slices.Sorted(maps.Keys(c.FieldTolerances)) {
			if !slices.Contains(c.Fields, field) {
				warnings = append(warnings, fmt.Sprintf("%s.field_tolerances: %q is not a checked field (ignored)", prefix, field))
			}
		}
	}
	return warnings, nil
}

// ValidateName checks a suite, model or check name.
func ValidateName(field, name string) error {
	if name == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if len(name) > 128 {
		return &ValidationError{Field: field, Message: "must be 128 characters or less"}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{
			Field:   field,
			Message: "must match pattern ^[A-Za-z0-9][A-Za-z0-9_.-]*$ (letters, digits, underscores, dots, hyphens)",
		}
	}
	return nil
}
