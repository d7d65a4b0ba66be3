package check

import (
	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/metric"
	"github.com/AndreyAkinshin/credo/internal/resample"
	"github.com/AndreyAkinshin/credo/internal/result"
)

func (c *ToleranceCheck) compareField(field string, actual result.ModelResult) (FieldComparison, error) {
	tol := c.ResolveTolerance(field)
	values, err := actual.FieldAt(field, c.cfg.OutputIndex)
	if err != nil {
		return FieldComparison{}, err
	}

	var expected []float64
	switch src := c.cfg.Expected.(type) {
	case referenceSource:
		if expected, err = src.r.FieldAt(field, c.cfg.OutputIndex); err != nil {
			return FieldComparison{}, err
		}
	case analyticSource:
		positions, err := actual.Positions()
		if err != nil {
			return FieldComparison{}, err
		}
		if len(positions) != len(values) {
			return FieldComparison{}, errors.DimensionMismatch("positions", len(values), len(positions))
		}
		t, err := outputTime(actual, c.cfg.OutputIndex)
		if err != nil {
			return FieldComparison{}, err
		}
		expected = make([]float64, len(positions))
		for i, p := range positions {
			expected[i] = src.fn(p, t)
		}
	}

	errs, err := metric.ElementErrors(expected, values, c.absErrTol)
	if err != nil {
		return FieldComparison{}, err
	}
	return FieldComparison{
		Field:     field,
		Tolerance: tol,
		Expected:  expected,
		Actual:    values,
		Errors:    errs,
		Passed:    withinTolerance(errs, tol),
	}, nil
}

func (c *ToleranceCheck) compareHistory(field string, actual result.ModelResult) (FieldComparison, error) {
	tol := c.ResolveTolerance(field)
	rt, rv, err := actual.FieldHistory(field, c.cfg.Cell)
	if err != nil {
		return FieldComparison{}, err
	}
	res := resample.Series{Times: rt, Values: rv}

	var exp resample.Series
	grid := c.cfg.Times
	switch src := c.cfg.Expected.(type) {
	case referenceSource:
		et, ev, err := src.r.FieldHistory(field, c.cfg.Cell)
		if err != nil {
			return FieldComparison{}, err
		}
		exp = resample.Series{Times: et, Values: ev}
	case analyticSource:
		positions, err := actual.Positions()
		if err != nil {
			return FieldComparison{}, err
		}
		if c.cfg.Cell < 0 || c.cfg.Cell >= len(positions) {
			return FieldComparison{}, errors.Newf("cell %d out of range for %d positions", c.cfg.Cell, len(positions))
		}
		pos := positions[c.cfg.Cell]
		if grid == nil {
			grid = rt
		}
		exp = resample.Series{
			Times:  grid,
			Values: resample.Evaluate(grid, func(t float64) float64 { return src.fn(pos, t) }),
		}
		// The expected series now lies on the grid.
		grid = nil
	}

	cmp := FieldComparison{Field: field, Tolerance: tol}
	if c.cfg.CurveDistance {
		cmp.Errors, err = metric.CurveDistanceErrors(rt, rv, exp.Times, exp.Values, metric.CurveOptions{
			AbsErrTol: c.absErrTol,
			LogX:      c.cfg.LogX,
			LogY:      c.cfg.LogY,
		})
		if err != nil {
			return FieldComparison{}, err
		}
		cmp.Grid, cmp.Actual, cmp.Expected = rt, rv, exp.Values
	} else {
		aligned, err := resample.Align(res, exp, grid)
		if err != nil {
			return FieldComparison{}, err
		}
		if cmp.Errors, err = metric.ElementErrors(aligned.Expected, aligned.Result, c.absErrTol); err != nil {
			return FieldComparison{}, err
		}
		cmp.Grid, cmp.Actual, cmp.Expected = aligned.Grid, aligned.Result, aligned.Expected
	}
	cmp.Passed = withinTolerance(cmp.Errors, tol)
	return cmp, nil
}

// outputTime returns the time of output index i, zero when the result has no
// times.
func outputTime(r result.ModelResult, i int) (float64, error) {
	times, err := r.Times()
	if err != nil {
		return 0, err
	}
	if len(times) == 0 {
		return 0, nil
	}
	if i < 0 {
		i += len(times)
	}
	if i < 0 || i >= len(times) {
		return 0, errors.Newf("output index %d out of range for %d outputs", i, len(times))
	}
	return times[i], nil
}
