package result

import (
	"fmt"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Options configures an Accessor.
type Options struct {
	OutputPath string
	Fields     FieldNameMap
	Ordering   OrderingMap
}

// Accessor is the canonical ModelResult over a Backend.
type Accessor struct {
	name       string
	outputPath string
	backend    Backend
	fields     FieldNameMap
	ordering   OrderingMap
}

var _ ModelResult = (*Accessor)(nil)

// NewAccessor wraps backend. The field and ordering maps are copied.
func NewAccessor(name string, backend Backend, opts Options) (*Accessor, error) {
	if backend == nil {
		return nil, errors.Configf("result %q has no backend", name)
	}
	fields, err := opts.Fields.clone()
	if err != nil {
		return nil, err
	}
	ordering, err := NewOrderingMap(opts.Ordering)
	if err != nil {
		return nil, err
	}
	return &Accessor{
		name:       name,
		outputPath: opts.OutputPath,
		backend:    backend,
		fields:     fields,
		ordering:   ordering,
	}, nil
}

func (a *Accessor) Name() string       { return a.name }
func (a *Accessor) OutputPath() string { return a.outputPath }

// Backend returns the wrapped backend for backend specific queries.
func (a *Accessor) Backend() Backend { return a.backend }

// Ordering returns the canonical to native cell map.
func (a *Accessor) Ordering() OrderingMap { return a.ordering }

func (a *Accessor) resolve(field string) FieldSource {
	if src, ok := a.fields[field]; ok {
		return src
	}
	return Native(field)
}

// FieldAt implements ModelResult.
func (a *Accessor) FieldAt(field string, outputIndex int) ([]float64, error) {
	src := a.resolve(field)
	if src.IsDerived() {
		if src.snapshot == nil {
			return nil, errors.Configf("derived field %q has no snapshot form", field)
		}
		return src.snapshot(a, outputIndex)
	}

	idx, err := a.outputIndex(outputIndex)
	if err != nil {
		return nil, err
	}
	native, err := a.backend.FieldAt(src.native, idx)
	if err != nil {
		return nil, a.fieldError(err, field)
	}
	return a.ordering.Gather(native)
}

// FieldHistory implements ModelResult.
func (a *Accessor) FieldHistory(field string, cell int) ([]float64, []float64, error) {
	src := a.resolve(field)
	if src.IsDerived() {
		if src.history == nil {
			return nil, nil, errors.Configf("derived field %q has no history form", field)
		}
		return src.history(a, cell)
	}

	native, err := a.ordering.Native(cell)
	if err != nil {
		return nil, nil, err
	}
	times, err := a.Times()
	if err != nil {
		return nil, nil, err
	}
	values, err := a.backend.FieldHistory(src.native, native)
	if err != nil {
		return nil, nil, a.fieldError(err, field)
	}
	if len(values) != len(times) {
		return nil, nil, errors.DimensionMismatch(field, len(times), len(values))
	}
	return times, values, nil
}

// Positions implements ModelResult.
func (a *Accessor) Positions() ([]Point, error) {
	native, err := a.backend.Positions()
	if err != nil {
		return nil, err
	}
	return a.ordering.gatherPoints(native)
}

// Times implements ModelResult.
func (a *Accessor) Times() ([]float64, error) {
	times, err := a.backend.Times()
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return nil, errors.Newf("result %q: output times not strictly ascending at index %d", a.name, i)
		}
	}
	return times, nil
}

// Close implements ModelResult.
func (a *Accessor) Close() error {
	return a.backend.Close()
}

func (a *Accessor) outputIndex(i int) (int, error) {
	times, err := a.backend.Times()
	if err != nil {
		return 0, err
	}
	n := len(times)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, errors.Newf("result %q: output index %d out of range for %d outputs", a.name, i, n)
	}
	return idx, nil
}

// fieldError names this result and the canonical field on a backend
// field-not-found error, keeping the native name when it differs.
func (a *Accessor) fieldError(err error, field string) error {
	var ce *errors.CredoError
	if !errors.As(err, &ce) || ce.Kind != errors.KindFieldNotFound {
		return err
	}
	cp := *ce
	if cp.Model == "" {
		cp.Model = a.name
	}
	cp.Field = field
	if native := a.resolve(field).native; native != field {
		cp.Message = fmt.Sprintf("field not found (native name %q)", native)
	}
	return &cp
}
