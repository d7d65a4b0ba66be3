package check

import (
	"github.com/AndreyAkinshin/credo/internal/result"
)

// AnalyticFunc is an expected solution evaluated at a cell position and time.
type AnalyticFunc func(pos result.Point, t float64) float64

// ExpectedSource is the solution a check compares against: a Reference
// result or an Analytic function.
type ExpectedSource interface {
	compareSource() string
	valid() bool
}

type referenceSource struct {
	r result.ModelResult
}

func (s referenceSource) compareSource() string { return "reference" }
func (s referenceSource) valid() bool           { return s.r != nil }

type analyticSource struct {
	fn AnalyticFunc
}

func (s analyticSource) compareSource() string { return "analytic" }
func (s analyticSource) valid() bool           { return s.fn != nil }

// Reference compares against a reference result, read with the same field
// names and indices as the checked result.
func Reference(r result.ModelResult) ExpectedSource {
	return referenceSource{r: r}
}

// Analytic compares against fn.
func Analytic(fn AnalyticFunc) ExpectedSource {
	return analyticSource{fn: fn}
}

// ReferenceResult returns the result behind a Reference source.
func ReferenceResult(s ExpectedSource) (result.ModelResult, bool) {
	ref, ok := s.(referenceSource)
	return ref.r, ok
}

// Constant is an analytic solution with the same value everywhere.
func Constant(v float64) AnalyticFunc {
	return func(result.Point, float64) float64 { return v }
}

// Linear is the analytic solution c0 + cx*x + cy*y + cz*z + ct*t.
func Linear(c0, cx, cy, cz, ct float64) AnalyticFunc {
	return func(p result.Point, t float64) float64 {
		return c0 + cx*p.X + cy*p.Y + cz*p.Z + ct*t
	}
}
