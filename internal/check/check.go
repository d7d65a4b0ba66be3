// Package check implements tolerance checks of simulator fields against an
// expected solution.
//
// A field check compares every cell at one output time. A history check
// compares one cell over time, resampling the result onto a common grid or
// measuring curve distance. Each check moves from StateConfigured to
// StateChecked on a successful Check and keeps the per-field outcome of its
// latest call for reporting.
package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/metric"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// DefaultTolerance is the tolerance applied to fields without an override.
const DefaultTolerance = 0.01

// Kind is the comparison performed by a check.
type Kind int

const (
	KindField Kind = iota
	KindHistory
)

func (k Kind) String() string {
	if k == KindHistory {
		return "history"
	}
	return "field"
}

// State is the lifecycle state of a check.
type State int

const (
	StateConfigured State = iota
	StateChecked
)

func (s State) String() string {
	if s == StateChecked {
		return "checked"
	}
	return "configured"
}

// ToleranceSpec is a default tolerance with optional per-field overrides.
type ToleranceSpec struct {
	Default  float64
	PerField map[string]float64
}

// Resolve returns the override for field if present, else the default.
func (t ToleranceSpec) Resolve(field string) float64 {
	if tol, ok := t.PerField[field]; ok {
		return tol
	}
	return t.Default
}

// Config describes a check.
type Config struct {
	// Name identifies the check in logs and records.
	Name string
	// Fields are the canonical field names to compare, in order. When nil,
	// SetFields must be called before Check.
	Fields    []string
	Tolerance ToleranceSpec
	Expected  ExpectedSource
	// AbsErrTol is the magnitude at or below which expected values are
	// compared absolutely. Zero means metric.DefaultAbsErrTol.
	AbsErrTol float64

	// OutputIndex selects the output time of a field check. Negative values
	// count back from the last output.
	OutputIndex int

	// Cell is the canonical cell of a history check.
	Cell int
	// Times is an explicit common grid for history checks. Nil means the
	// expected series' own times, or the result's times for analytic
	// solutions.
	Times []float64
	// CurveDistance measures distance to the expected curve instead of
	// resampling.
	CurveDistance bool
	LogX, LogY    bool

	// EnforceLogic rejects Times combined with an analytic solution or with
	// curve distance.
	EnforceLogic bool

	// Logger receives one entry per compared field. Nil discards.
	Logger logrus.FieldLogger
}

// FieldComparison is the outcome of comparing one field.
type FieldComparison struct {
	Field     string
	Tolerance float64
	// Grid holds the comparison times of a history check.
	Grid     []float64
	Expected []float64
	Actual   []float64
	Errors   []float64
	Passed   bool
}

// ToleranceCheck compares fields of a result against an expected solution.
// It is not safe for concurrent use.
type ToleranceCheck struct {
	kind      Kind
	cfg       Config
	fields    []string
	absErrTol float64
	log       logrus.FieldLogger

	state       State
	passed      bool
	comparisons []FieldComparison
}

// NewFieldCheck creates a check of field values over all cells at one output.
func NewFieldCheck(cfg Config) (*ToleranceCheck, error) {
	return newCheck(KindField, cfg)
}

// NewHistoryCheck creates a check of one cell's field history.
func NewHistoryCheck(cfg Config) (*ToleranceCheck, error) {
	return newCheck(KindHistory, cfg)
}

func newCheck(kind Kind, cfg Config) (*ToleranceCheck, error) {
	if cfg.Expected == nil || !cfg.Expected.valid() {
		return nil, errors.Configf("check %q: an expected solution is required", cfg.Name)
	}
	if kind == KindHistory && cfg.EnforceLogic && cfg.Times != nil {
		if _, analytic := cfg.Expected.(analyticSource); analytic {
			return nil, errors.Configf("check %q: times cannot be given with an analytic solution", cfg.Name)
		}
		if cfg.CurveDistance {
			return nil, errors.Configf("check %q: times cannot be given with curve distance", cfg.Name)
		}
	}

	if cfg.Tolerance.PerField != nil {
		per := make(map[string]float64, len(cfg.Tolerance.PerField))
		for k, v := range cfg.Tolerance.PerField {
			per[k] = v
		}
		cfg.Tolerance.PerField = per
	}
	if cfg.Times != nil {
		cfg.Times = append([]float64(nil), cfg.Times...)
	}

	absErrTol := cfg.AbsErrTol
	if absErrTol == 0 {
		absErrTol = metric.DefaultAbsErrTol
	}

	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	c := &ToleranceCheck{
		kind:      kind,
		cfg:       cfg,
		absErrTol: absErrTol,
		log:       log.WithFields(logrus.Fields{"check": cfg.Name, "kind": kind.String()}),
	}
	if cfg.Fields != nil {
		c.SetFields(cfg.Fields)
	}
	return c, nil
}

// SetFields sets the fields to compare.
func (c *ToleranceCheck) SetFields(fields []string) {
	c.fields = append([]string{}, fields...)
}

// Fields returns the fields to compare, or nil if not yet set.
func (c *ToleranceCheck) Fields() []string {
	if c.fields == nil {
		return nil
	}
	return append([]string{}, c.fields...)
}

func (c *ToleranceCheck) Name() string { return c.cfg.Name }
func (c *ToleranceCheck) Kind() Kind   { return c.kind }
func (c *ToleranceCheck) State() State { return c.state }

// OutputIndex returns the output index of a field check.
func (c *ToleranceCheck) OutputIndex() int { return c.cfg.OutputIndex }

// Cell returns the cell of a history check.
func (c *ToleranceCheck) Cell() int { return c.cfg.Cell }

// CurveDistance reports whether a history check measures curve distance.
func (c *ToleranceCheck) CurveDistance() bool { return c.cfg.CurveDistance }

// AbsErrTol returns the absolute error threshold in effect.
func (c *ToleranceCheck) AbsErrTol() float64 { return c.absErrTol }

// CompareSource is "reference" or "analytic".
func (c *ToleranceCheck) CompareSource() string { return c.cfg.Expected.compareSource() }

// ResolveTolerance returns the tolerance applied to field.
func (c *ToleranceCheck) ResolveTolerance(field string) float64 {
	return c.cfg.Tolerance.Resolve(field)
}

// Check compares every field of actual and reports whether all of them are
// within tolerance. Results of the previous call are replaced. On error the
// check keeps its previous state and results.
func (c *ToleranceCheck) Check(actual result.ModelResult) (bool, error) {
	if c.fields == nil {
		return false, errors.Configf("check %q: fields to test must be set before checking", c.cfg.Name)
	}
	if actual == nil {
		return false, errors.Configf("check %q: no result to check", c.cfg.Name)
	}

	comparisons := make([]FieldComparison, 0, len(c.fields))
	passed := true
	for _, field := range c.fields {
		var (
			cmp FieldComparison
			err error
		)
		if c.kind == KindHistory {
			cmp, err = c.compareHistory(field, actual)
		} else {
			cmp, err = c.compareField(field, actual)
		}
		if err != nil {
			return false, fmt.Errorf("check %q: %w", c.cfg.Name, errors.WithField(err, field))
		}

		c.log.WithFields(logrus.Fields{
			"field":     field,
			"tolerance": cmp.Tolerance,
			"max_error": maxError(cmp.Errors),
			"passed":    cmp.Passed,
		}).Debug("field compared")

		passed = passed && cmp.Passed
		comparisons = append(comparisons, cmp)
	}

	c.comparisons = comparisons
	c.passed = passed
	c.state = StateChecked
	return passed, nil
}

// Passed reports the outcome of the latest Check.
func (c *ToleranceCheck) Passed() bool { return c.state == StateChecked && c.passed }

// Comparisons returns the per-field outcome of the latest Check in field
// order.
func (c *ToleranceCheck) Comparisons() []FieldComparison {
	return append([]FieldComparison(nil), c.comparisons...)
}

// FieldResults maps each field of the latest Check to its pass flag.
func (c *ToleranceCheck) FieldResults() map[string]bool {
	out := make(map[string]bool, len(c.comparisons))
	for _, cmp := range c.comparisons {
		out[cmp.Field] = cmp.Passed
	}
	return out
}

// FieldErrors maps each field of the latest Check to its element errors.
func (c *ToleranceCheck) FieldErrors() map[string][]float64 {
	out := make(map[string][]float64, len(c.comparisons))
	for _, cmp := range c.comparisons {
		out[cmp.Field] = append([]float64(nil), cmp.Errors...)
	}
	return out
}

// Status describes the latest Check, one line per field.
func (c *ToleranceCheck) Status() string {
	if c.state != StateChecked {
		return "not checked"
	}
	var b strings.Builder
	source := c.CompareSource()
	for _, cmp := range c.comparisons {
		if cmp.Passed {
			fmt.Fprintf(&b, "Field comp '%s' error within tol %g of %s solution.\n", cmp.Field, cmp.Tolerance, source)
		} else {
			fmt.Fprintf(&b, "Field comp '%s' error(s) of %v not within tol %g of %s solution\n", cmp.Field, cmp.Errors, cmp.Tolerance, source)
		}
	}
	return b.String()
}

func withinTolerance(errs []float64, tol float64) bool {
	for _, e := range errs {
		if !(e <= tol) {
			return false
		}
	}
	return true
}
