package result

import (
	"maps"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// SnapshotFunc computes a derived field over all canonical cells.
type SnapshotFunc func(r ModelResult, outputIndex int) ([]float64, error)

// HistoryFunc computes a derived field history at a canonical cell.
type HistoryFunc func(r ModelResult, cell int) (times, values []float64, err error)

// FieldSource says where a canonical field comes from: a native field name
// read from the backend, or a derived computation. The zero value is invalid.
type FieldSource struct {
	native   string
	snapshot SnapshotFunc
	history  HistoryFunc
	// sources names the canonical fields a derivation reads, when known.
	sources []string
}

// Native refers to a field stored under name in the backend.
func Native(name string) FieldSource {
	return FieldSource{native: name}
}

// Derived computes a field from other fields of the same result. Either
// function may be nil when the field is only available one way.
//
// Derived functions receive the Accessor itself. Values they obtain from it are
// already in canonical order and are returned without further remapping.
func Derived(snapshot SnapshotFunc, history HistoryFunc) FieldSource {
	return FieldSource{snapshot: snapshot, history: history}
}

// IsDerived reports whether the source is a computation.
func (s FieldSource) IsDerived() bool {
	return s.snapshot != nil || s.history != nil
}

// NativeName returns the backend field name of a native source.
func (s FieldSource) NativeName() string {
	return s.native
}

func (s FieldSource) String() string {
	if s.IsDerived() {
		return "derived"
	}
	return s.native
}

// FieldNameMap maps canonical field names to their sources. Names absent from
// the map are read from the backend unchanged.
type FieldNameMap map[string]FieldSource

// NativeNames builds a FieldNameMap of plain renames.
func NativeNames(m map[string]string) FieldNameMap {
	out := make(FieldNameMap, len(m))
	for canonical, native := range m {
		out[canonical] = Native(native)
	}
	return out
}

func (m FieldNameMap) clone() (FieldNameMap, error) {
	out := make(FieldNameMap, len(m))
	for k, v := range m {
		if !v.IsDerived() && v.native == "" {
			return nil, errors.Configf("field %q maps to an empty source", k)
		}
		out[k] = v
	}
	for _, k := range slices.Sorted(maps.Keys(out)) {
		if chain := out.cycle(k, []string{k}); chain != nil {
			return nil, errors.Configf("derived fields form a cycle: %s", strings.Join(chain, " -> "))
		}
	}
	return out, nil
}

// cycle walks the declared sources of derived fields depth first and returns
// the path that leads back to a field already on it.
func (m FieldNameMap) cycle(name string, path []string) []string {
	src, ok := m[name]
	if !ok {
		return nil
	}
	for _, dep := range src.sources {
		next := append(slices.Clone(path), dep)
		if slices.Contains(path, dep) {
			return next
		}
		if chain := m.cycle(dep, next); chain != nil {
			return chain
		}
	}
	return nil
}

// Scaled derives a field as factor times the canonical field source. It is
// used for unit conversions such as pressure in bar.
func Scaled(source string, factor float64) FieldSource {
	fs := Derived(
		func(r ModelResult, outputIndex int) ([]float64, error) {
			v, err := r.FieldAt(source, outputIndex)
			if err != nil {
				return nil, err
			}
			out := append([]float64(nil), v...)
			floats.Scale(factor, out)
			return out, nil
		},
		func(r ModelResult, cell int) ([]float64, []float64, error) {
			t, v, err := r.FieldHistory(source, cell)
			if err != nil {
				return nil, nil, err
			}
			out := append([]float64(nil), v...)
			floats.Scale(factor, out)
			return t, out, nil
		},
	)
	fs.sources = []string{source}
	return fs
}

// Builtin derivations available to suite configuration by name.
var builtinDerivations = map[string]func(source string) FieldSource{
	"pa_to_bar": func(source string) FieldSource { return Scaled(source, 1e-5) },
	"bar_to_pa": func(source string) FieldSource { return Scaled(source, 1e5) },
}

// BuiltinDerived returns the named builtin derivation applied to source.
func BuiltinDerived(kind, source string) (FieldSource, error) {
	fn, ok := builtinDerivations[kind]
	if !ok {
		return FieldSource{}, errors.Configf("unknown derived field kind %q", kind)
	}
	if source == "" {
		return FieldSource{}, errors.Configf("derived field %q needs a source field", kind)
	}
	return fn(source), nil
}
