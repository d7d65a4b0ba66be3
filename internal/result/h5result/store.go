// Package h5result implements result backends for simulators that write HDF5
// output: Waiwera and supermodel.
//
// Backends read through the Store interface. internal/h5file provides the
// HDF5 implementation.
package h5result

import (
	"sync"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Store is read access to a hierarchical dataset file.
type Store interface {
	// Dims returns the extent of the dataset at path.
	Dims(path string) ([]int, error)
	// ReadFloat64 reads the whole dataset at path in row-major order,
	// converting integer datasets to float64.
	ReadFloat64(path string) ([]float64, error)
	// Has reports whether a dataset exists at path.
	Has(path string) bool
	Close() error
}

// Opener opens a Store.
type Opener func(path string) (Store, error)

// readIndex reads an index dataset of shape [n] or [n][1].
func readIndex(s Store, path string) ([]int, error) {
	if !s.Has(path) {
		return nil, errors.NotFound("dataset", path)
	}
	dims, err := s.Dims(path)
	if err != nil {
		return nil, err
	}
	if len(dims) > 2 || len(dims) == 2 && dims[1] != 1 {
		return nil, errors.Newf("dataset %s: want a single column, got shape %v", path, dims)
	}
	raw, err := s.ReadFloat64(path)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(raw))
	for i, v := range raw {
		idx[i] = int(v)
		if idx[i] < 0 || float64(idx[i]) != v {
			return nil, errors.Newf("dataset %s: invalid index %g at %d", path, v, i)
		}
	}
	return idx, nil
}

// readColumn reads a dataset of shape [n] or [n][1] as a vector.
func readColumn(s Store, path string) ([]float64, error) {
	if !s.Has(path) {
		return nil, errors.NotFound("dataset", path)
	}
	dims, err := s.Dims(path)
	if err != nil {
		return nil, err
	}
	if len(dims) > 2 || len(dims) == 2 && dims[1] != 1 {
		return nil, errors.Newf("dataset %s: want a single column, got shape %v", path, dims)
	}
	return s.ReadFloat64(path)
}

// table is a row-major 2-D dataset.
type table struct {
	rows, cols int
	data       []float64
}

func (t table) at(r, c int) float64 {
	return t.data[r*t.cols+c]
}

func readTable(s Store, path string) (table, error) {
	dims, err := s.Dims(path)
	if err != nil {
		return table{}, err
	}
	if len(dims) != 2 {
		return table{}, errors.Newf("dataset %s: want two dimensions, got shape %v", path, dims)
	}
	data, err := s.ReadFloat64(path)
	if err != nil {
		return table{}, err
	}
	if len(data) != dims[0]*dims[1] {
		return table{}, errors.DimensionMismatch(path, dims[0]*dims[1], len(data))
	}
	return table{rows: dims[0], cols: dims[1], data: data}, nil
}

// cellFields reads and caches cell_fields/<name> tables of shape
// [outputs][cells]. It is safe for concurrent use.
type cellFields struct {
	store  Store
	prefix string

	mu    sync.Mutex
	cache map[string]table
}

func newCellFields(s Store, prefix string) *cellFields {
	return &cellFields{store: s, prefix: prefix, cache: make(map[string]table)}
}

func (f *cellFields) get(field string) (table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.cache[field]; ok {
		return t, nil
	}
	path := f.prefix + "/" + field
	if !f.store.Has(path) {
		return table{}, errors.FieldNotFound("", field)
	}
	t, err := readTable(f.store, path)
	if err != nil {
		return table{}, err
	}
	f.cache[field] = t
	return t, nil
}

// snapshot gathers row outputIndex of field through storage index idx.
func (f *cellFields) snapshot(field string, outputIndex int, idx []int) ([]float64, error) {
	t, err := f.get(field)
	if err != nil {
		return nil, err
	}
	if outputIndex < 0 || outputIndex >= t.rows {
		return nil, errors.Newf("output index %d out of range for %s", outputIndex, field)
	}
	out := make([]float64, len(idx))
	for c, s := range idx {
		if s >= t.cols {
			return nil, errors.Newf("%s has %d cells, index refers to %d", field, t.cols, s)
		}
		out[c] = t.at(outputIndex, s)
	}
	return out, nil
}

// history returns column storageCell of field.
func (f *cellFields) history(field string, storageCell int) ([]float64, error) {
	t, err := f.get(field)
	if err != nil {
		return nil, err
	}
	if storageCell < 0 || storageCell >= t.cols {
		return nil, errors.Newf("cell %d out of range for %s", storageCell, field)
	}
	out := make([]float64, t.rows)
	for r := range out {
		out[r] = t.at(r, storageCell)
	}
	return out, nil
}
