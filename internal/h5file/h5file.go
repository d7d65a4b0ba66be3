// Package h5file adapts gonum.org/v1/hdf5 to the h5result.Store interface.
//
// It requires cgo and the HDF5 C library.
package h5file

import (
	"fmt"
	"strings"
	"sync"

	"gonum.org/v1/hdf5"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result/h5result"
)

// File is a read-only HDF5 file.
type File struct {
	mu   sync.Mutex
	path string
	f    *hdf5.File
}

var _ h5result.Store = (*File)(nil)

// Open opens path read-only.
func Open(path string) (*File, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("open hdf5 file %s", path))
	}
	return &File{path: path, f: f}, nil
}

// Opener opens files as h5result.Store values.
func Opener(path string) (h5result.Store, error) {
	return Open(path)
}

// Has implements h5result.Store. Every intermediate group must exist.
func (f *File) Has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return false
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := range parts {
		if !f.f.LinkExists(strings.Join(parts[:i+1], "/")) {
			return false
		}
	}
	return true
}

// Dims implements h5result.Store.
func (f *File) Dims(path string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dset, err := f.open(path)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	return dims(dset)
}

// ReadFloat64 implements h5result.Store. HDF5 converts integer datasets to
// the float64 memory type on read.
func (f *File) ReadFloat64(path string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dset, err := f.open(path)
	if err != nil {
		return nil, err
	}
	defer dset.Close()

	d, err := dims(dset)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, v := range d {
		n *= v
	}
	data := make([]float64, n)
	if n == 0 {
		return data, nil
	}
	if err := dset.Read(&data); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("read %s:%s", f.path, path))
	}
	return data, nil
}

// Close implements h5result.Store.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *File) open(path string) (*hdf5.Dataset, error) {
	if f.f == nil {
		return nil, errors.Newf("hdf5 file %s is closed", f.path)
	}
	dset, err := f.f.OpenDataset(path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("open dataset %s:%s", f.path, path))
	}
	return dset, nil
}

func dims(dset *hdf5.Dataset) ([]int, error) {
	space := dset.Space()
	defer space.Close()
	d, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, errors.Wrap(err, "read dataset extent")
	}
	out := make([]int, len(d))
	for i, v := range d {
		out[i] = int(v)
	}
	return out, nil
}
