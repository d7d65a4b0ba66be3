package metric

import (
	"errors"
	"math"
	"testing"

	credoerrors "github.com/AndreyAkinshin/credo/internal/errors"
)

func approxEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestElementErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		expected  []float64
		actual    []float64
		absErrTol float64
		want      []float64
	}{
		{
			name:      "relative above threshold",
			expected:  []float64{100, 200},
			actual:    []float64{101, 190},
			absErrTol: DefaultAbsErrTol,
			want:      []float64{0.01, 0.05},
		},
		{
			name:      "absolute at or below threshold",
			expected:  []float64{0.5, 1.0, 0},
			actual:    []float64{0.6, 1.5, 0.25},
			absErrTol: DefaultAbsErrTol,
			want:      []float64{0.1, 0.5, 0.25},
		},
		{
			name:      "legacy threshold makes small values relative",
			expected:  []float64{0.5, 0},
			actual:    []float64{0.6, 0.25},
			absErrTol: LegacyAbsErrTol,
			want:      []float64{0.2, 0.25},
		},
		{
			name:      "negative expected uses magnitude",
			expected:  []float64{-50},
			actual:    []float64{-55},
			absErrTol: DefaultAbsErrTol,
			want:      []float64{0.1},
		},
		{
			name:      "negative threshold falls back on zero expected",
			expected:  []float64{0},
			actual:    []float64{3},
			absErrTol: -1,
			want:      []float64{3},
		},
		{
			name:      "empty",
			expected:  []float64{},
			actual:    []float64{},
			absErrTol: DefaultAbsErrTol,
			want:      []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ElementErrors(tt.expected, tt.actual, tt.absErrTol)
			if err != nil {
				t.Fatalf("ElementErrors() error = %v", err)
			}
			if !approxEqual(got, tt.want, 1e-12) {
				t.Errorf("ElementErrors() = %v, want %v", got, tt.want)
			}
			for i, v := range got {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("ElementErrors()[%d] = %v, want finite", i, v)
				}
			}
		})
	}
}

func TestElementErrors_LengthMismatch(t *testing.T) {
	t.Parallel()
	_, err := ElementErrors([]float64{1, 2}, []float64{1}, DefaultAbsErrTol)
	if !errors.Is(err, credoerrors.ErrDimensionMismatch) {
		t.Errorf("ElementErrors() error = %v, want dimension mismatch", err)
	}
}

func TestElementErrors_TolerancePassFail(t *testing.T) {
	t.Parallel()
	expected := []float64{100, 100, 100}

	within, _ := ElementErrors(expected, []float64{100.5, 99.5, 100}, DefaultAbsErrTol)
	for i, e := range within {
		if e > 0.01 {
			t.Errorf("error[%d] = %v, want <= 0.01", i, e)
		}
	}

	outside, _ := ElementErrors(expected, []float64{100, 102, 100}, DefaultAbsErrTol)
	if outside[1] <= 0.01 {
		t.Errorf("error[1] = %v, want > 0.01", outside[1])
	}
}

func TestNonDimensionalise(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		a, b   []float64
		wantA  []float64
		wantB  []float64
		absTol float64
	}{
		{
			name:   "combined range",
			a:      []float64{1, 5, 3},
			b:      []float64{2, 11},
			wantA:  []float64{0, 0.4, 0.2},
			wantB:  []float64{0.1, 1},
			absTol: DefaultAbsErrTol,
		},
		{
			name:   "range below threshold at zero is unchanged",
			a:      []float64{0, 0.001, 0.002},
			b:      []float64{0.0011, 0.0012},
			wantA:  []float64{0, 0.001, 0.002},
			wantB:  []float64{0.0011, 0.0012},
			absTol: DefaultAbsErrTol,
		},
		{
			name:   "range below threshold is shifted",
			a:      []float64{999, 999.001, 999.002},
			b:      []float64{999.0011, 999.0012},
			wantA:  []float64{0, 0.001, 0.002},
			wantB:  []float64{0.0011, 0.0012},
			absTol: DefaultAbsErrTol,
		},
		{
			name:   "small threshold scales small range",
			a:      []float64{0, 0.001, 0.002},
			b:      []float64{0.001},
			wantA:  []float64{0, 0.5, 1},
			wantB:  []float64{0.5},
			absTol: LegacyAbsErrTol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotA, gotB := NonDimensionalise(tt.a, tt.b, tt.absTol)
			if !approxEqual(gotA, tt.wantA, 1e-9) {
				t.Errorf("NonDimensionalise() a = %v, want %v", gotA, tt.wantA)
			}
			if !approxEqual(gotB, tt.wantB, 1e-9) {
				t.Errorf("NonDimensionalise() b = %v, want %v", gotB, tt.wantB)
			}
		})
	}
}

func TestNonDimensionalise_DoesNotModifyInputs(t *testing.T) {
	t.Parallel()
	a := []float64{1, 5, 3}
	b := []float64{2, 11}
	NonDimensionalise(a, b, DefaultAbsErrTol)
	if a[1] != 5 || b[1] != 11 {
		t.Errorf("inputs modified: a = %v, b = %v", a, b)
	}
}

func TestCurveDistanceErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		ptX, ptY     []float64
		lineX, lineY []float64
		opts         CurveOptions
		want         []float64
	}{
		{
			name:  "nearest segment",
			ptX:   []float64{2},
			ptY:   []float64{1.5},
			lineX: []float64{0, 1, 1},
			lineY: []float64{0, 0, 2},
			opts:  CurveOptions{AbsErrTol: DefaultAbsErrTol},
			want:  []float64{0.5},
		},
		{
			name:  "points on the line",
			ptX:   []float64{0, 5, 10},
			ptY:   []float64{0, 5, 10},
			lineX: []float64{0, 10},
			lineY: []float64{0, 10},
			opts:  CurveOptions{AbsErrTol: DefaultAbsErrTol},
			want:  []float64{0, 0, 0},
		},
		{
			name:  "single point line",
			ptX:   []float64{0},
			ptY:   []float64{0},
			lineX: []float64{3},
			lineY: []float64{4},
			opts:  CurveOptions{AbsErrTol: DefaultAbsErrTol},
			want:  []float64{math.Sqrt2},
		},
		{
			name:  "log axis flattens decades",
			ptX:   []float64{10},
			ptY:   []float64{0},
			lineX: []float64{1, 100},
			lineY: []float64{0, 0},
			opts:  CurveOptions{AbsErrTol: DefaultAbsErrTol, LogX: true},
			want:  []float64{0},
		},
		{
			name:  "log ignored with non-positive values",
			ptX:   []float64{0},
			ptY:   []float64{0},
			lineX: []float64{0, 10},
			lineY: []float64{0, 0},
			opts:  CurveOptions{AbsErrTol: DefaultAbsErrTol, LogX: true},
			want:  []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CurveDistanceErrors(tt.ptX, tt.ptY, tt.lineX, tt.lineY, tt.opts)
			if err != nil {
				t.Fatalf("CurveDistanceErrors() error = %v", err)
			}
			if !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("CurveDistanceErrors() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurveDistanceErrors_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		ptX, ptY     []float64
		lineX, lineY []float64
		sentinel     error
	}{
		{"point length mismatch", []float64{1, 2}, []float64{1}, []float64{0}, []float64{0}, credoerrors.ErrDimensionMismatch},
		{"line length mismatch", []float64{1}, []float64{1}, []float64{0, 1}, []float64{0}, credoerrors.ErrDimensionMismatch},
		{"empty line", []float64{1}, []float64{1}, nil, nil, credoerrors.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := CurveDistanceErrors(tt.ptX, tt.ptY, tt.lineX, tt.lineY, CurveOptions{AbsErrTol: DefaultAbsErrTol})
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("CurveDistanceErrors() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}
