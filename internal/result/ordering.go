package result

import (
	"github.com/AndreyAkinshin/credo/internal/errors"
)

// OrderingMap maps canonical cell index c to native cell index m[c]. A nil
// map is the identity. Construct with NewOrderingMap or Range so that the
// table is validated; the result must not be modified afterwards.
type OrderingMap []int

// NewOrderingMap validates and copies native. Entries must be non-negative
// and distinct.
func NewOrderingMap(native []int) (OrderingMap, error) {
	if native == nil {
		return nil, nil
	}
	seen := make(map[int]int, len(native))
	for c, n := range native {
		if n < 0 {
			return nil, errors.Configf("ordering map entry %d is negative (%d)", c, n)
		}
		if prev, ok := seen[n]; ok {
			return nil, errors.Configf("ordering map entries %d and %d both map to native cell %d", prev, c, n)
		}
		seen[n] = c
	}
	return append(OrderingMap(nil), native...), nil
}

// Range maps canonical cells 0..stop-start-1 to native cells start..stop-1.
// AUTOUGH2 models with one leading dummy cell use Range(1, n+1).
func Range(start, stop int) (OrderingMap, error) {
	if start < 0 || stop < start {
		return nil, errors.Configf("invalid ordering range [%d, %d)", start, stop)
	}
	m := make(OrderingMap, stop-start)
	for i := range m {
		m[i] = start + i
	}
	return m, nil
}

// IsIdentity reports whether the map leaves indices unchanged.
func (m OrderingMap) IsIdentity() bool {
	return m == nil
}

// Native returns the native index of canonical cell c.
func (m OrderingMap) Native(c int) (int, error) {
	if m == nil {
		if c < 0 {
			return 0, errors.Newf("cell index %d out of range", c)
		}
		return c, nil
	}
	if c < 0 || c >= len(m) {
		return 0, errors.Newf("cell index %d out of range [0, %d)", c, len(m))
	}
	return m[c], nil
}

// Gather returns native values in canonical order.
func (m OrderingMap) Gather(native []float64) ([]float64, error) {
	if m == nil {
		return native, nil
	}
	out := make([]float64, len(m))
	for c, n := range m {
		if n >= len(native) {
			return nil, errors.Newf("ordering map refers to native cell %d of %d", n, len(native))
		}
		out[c] = native[n]
	}
	return out, nil
}

func (m OrderingMap) gatherPoints(native []Point) ([]Point, error) {
	if m == nil {
		return native, nil
	}
	out := make([]Point, len(m))
	for c, n := range m {
		if n >= len(native) {
			return nil, errors.Newf("ordering map refers to native cell %d of %d", n, len(native))
		}
		out[c] = native[n]
	}
	return out, nil
}
