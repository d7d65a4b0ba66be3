package check

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses the element errors of one field.
type Summary struct {
	Count int
	Max   float64
	Mean  float64
	RMS   float64
	// Exceeding counts errors above the tolerance.
	Exceeding int
}

// Summary returns error statistics for the comparison.
func (f FieldComparison) Summary() Summary {
	s := Summary{Count: len(f.Errors)}
	if s.Count == 0 {
		return s
	}
	s.Max = floats.Max(f.Errors)
	s.Mean = stat.Mean(f.Errors, nil)
	s.RMS = math.Sqrt(floats.Dot(f.Errors, f.Errors) / float64(s.Count))
	for _, e := range f.Errors {
		if !(e <= f.Tolerance) {
			s.Exceeding++
		}
	}
	return s
}

func maxError(errs []float64) float64 {
	if len(errs) == 0 {
		return 0
	}
	return floats.Max(errs)
}
