// Package metric computes elementwise comparison errors between expected and
// actual field values.
//
// Element errors are relative where the expected magnitude exceeds an
// absolute-error threshold and absolute otherwise. The curve-distance metric
// measures how far each sample lies from a digitised expected curve after both
// datasets are scaled to the unit square.
package metric

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Absolute-error thresholds. Values of expected with magnitude at or below the
// threshold are compared absolutely.
const (
	// DefaultAbsErrTol suits fields of order one or larger (pressure in Pa,
	// temperature in degrees C).
	DefaultAbsErrTol = 1.0
	// LegacyAbsErrTol is the threshold used by the simple single-run checks.
	LegacyAbsErrTol = 1e-9
)

// ElementErrors returns the per-element error between expected and actual.
//
// For each element d = expected[i] - actual[i]. When |expected[i]| > absErrTol
// the error is |d / expected[i]|, otherwise |d|. A non-finite relative error
// falls back to |d|.
func ElementErrors(expected, actual []float64, absErrTol float64) ([]float64, error) {
	if len(expected) != len(actual) {
		return nil, errors.DimensionMismatch("", len(expected), len(actual))
	}

	errs := make([]float64, len(expected))
	for i, e := range expected {
		d := e - actual[i]
		abs := math.Abs(d)
		if math.Abs(e) > absErrTol {
			rel := math.Abs(d / e)
			if !math.IsNaN(rel) && !math.IsInf(rel, 0) {
				errs[i] = rel
				continue
			}
		}
		errs[i] = abs
	}
	return errs, nil
}

// NonDimensionalise scales a and b into [0, 1] using their combined minimum
// and maximum. When the combined range is below absErrTol the axis is treated
// as zero-width: values are shifted by the minimum and left unscaled.
// The inputs are not modified.
func NonDimensionalise(a, b []float64, absErrTol float64) ([]float64, []float64) {
	if len(a)+len(b) == 0 {
		return []float64{}, []float64{}
	}

	all := make([]float64, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	lo, hi := floats.Min(all), floats.Max(all)

	scale := hi - lo
	if scale < absErrTol {
		scale = 1
	}

	sa := make([]float64, len(a))
	copy(sa, a)
	floats.AddConst(-lo, sa)
	floats.Scale(1/scale, sa)

	sb := make([]float64, len(b))
	copy(sb, b)
	floats.AddConst(-lo, sb)
	floats.Scale(1/scale, sb)

	return sa, sb
}

// CurveOptions configures CurveDistanceErrors.
type CurveOptions struct {
	AbsErrTol float64
	LogX      bool // log10 the x axis when every x value is positive
	LogY      bool // log10 the y axis when every y value is positive
}

// CurveDistanceErrors returns, for each point (ptX[i], ptY[i]), the distance
// to the nearest point on the polyline through (lineX, lineY) taken in the
// given order. Both datasets are non-dimensionalised per axis first.
func CurveDistanceErrors(ptX, ptY, lineX, lineY []float64, opts CurveOptions) ([]float64, error) {
	if len(ptX) != len(ptY) {
		return nil, errors.DimensionMismatch("points", len(ptX), len(ptY))
	}
	if len(lineX) != len(lineY) {
		return nil, errors.DimensionMismatch("line", len(lineX), len(lineY))
	}
	if len(lineX) == 0 {
		return nil, errors.Config("curve distance needs at least one line point")
	}

	px, lx := axis(ptX, lineX, opts.LogX, opts.AbsErrTol)
	py, ly := axis(ptY, lineY, opts.LogY, opts.AbsErrTol)

	line := make([]r2.Vec, len(lx))
	for i := range lx {
		line[i] = r2.Vec{X: lx[i], Y: ly[i]}
	}

	dists := make([]float64, len(px))
	for i := range px {
		dists[i] = polylineDistance(r2.Vec{X: px[i], Y: py[i]}, line)
	}
	return dists, nil
}

func axis(pts, line []float64, logScale bool, absErrTol float64) ([]float64, []float64) {
	if logScale && allPositive(pts) && allPositive(line) {
		pts, line = log10(pts), log10(line)
	}
	return NonDimensionalise(pts, line, absErrTol)
}

func allPositive(v []float64) bool {
	for _, x := range v {
		if !(x > 0) {
			return false
		}
	}
	return true
}

func log10(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Log10(x)
	}
	return out
}

func polylineDistance(p r2.Vec, line []r2.Vec) float64 {
	if len(line) == 1 {
		return r2.Norm(r2.Sub(p, line[0]))
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := segmentDistance(p, line[i-1], line[i]); d < best {
			best = d
		}
	}
	return best
}

// segmentDistance is the distance from p to the closed segment [a, b].
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	den := r2.Dot(ab, ab)
	if den == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / den
	t = math.Max(0, math.Min(1, t))
	nearest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, nearest))
}
