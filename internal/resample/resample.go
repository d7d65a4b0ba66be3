// Package resample aligns time series onto a common grid by piecewise linear
// interpolation. Values outside the sampled range clamp to the nearest
// endpoint.
package resample

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Series is a sampled time series. Times must be strictly ascending.
type Series struct {
	Times  []float64
	Values []float64
}

// Aligned holds two series sampled on the same grid.
type Aligned struct {
	Grid     []float64
	Result   []float64
	Expected []float64
}

// Interp evaluates the piecewise linear interpolant through (xp, fp) at each x.
// Points outside [xp[0], xp[len-1]] take the value of the nearest endpoint.
func Interp(x, xp, fp []float64) ([]float64, error) {
	if len(xp) != len(fp) {
		return nil, errors.DimensionMismatch("interpolation data", len(xp), len(fp))
	}
	out := make([]float64, len(x))
	switch len(xp) {
	case 0:
		return nil, errors.New("interpolation needs at least one sample")
	case 1:
		for i := range out {
			out[i] = fp[0]
		}
		return out, nil
	}

	// Fit panics on unordered abscissae.
	for i := 1; i < len(xp); i++ {
		if !(xp[i] > xp[i-1]) {
			return nil, errors.Newf("sample times must be strictly ascending: %g follows %g", xp[i], xp[i-1])
		}
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xp, fp); err != nil {
		return nil, fmt.Errorf("fit interpolant: %w", err)
	}
	for i, v := range x {
		out[i] = pl.Predict(v)
	}
	return out, nil
}

// Align resamples result, and expected where needed, onto a common grid.
//
// A nil grid means the expected series' own times: only the result is
// interpolated. A supplied grid interpolates both series.
func Align(result, expected Series, grid []float64) (Aligned, error) {
	if len(expected.Times) != len(expected.Values) {
		return Aligned{}, errors.DimensionMismatch("expected series", len(expected.Times), len(expected.Values))
	}

	exp := expected.Values
	if grid == nil {
		grid = expected.Times
	} else {
		var err error
		if exp, err = Interp(grid, expected.Times, expected.Values); err != nil {
			return Aligned{}, fmt.Errorf("expected series: %w", err)
		}
	}

	res, err := Interp(grid, result.Times, result.Values)
	if err != nil {
		return Aligned{}, fmt.Errorf("result series: %w", err)
	}

	return Aligned{
		Grid:     append([]float64(nil), grid...),
		Result:   res,
		Expected: append([]float64(nil), exp...),
	}, nil
}

// Evaluate samples fn at each grid time.
func Evaluate(grid []float64, fn func(t float64) float64) []float64 {
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = fn(t)
	}
	return out
}
