package mocks

import (
	"strings"
	"sync/atomic"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

type dataset struct {
	dims []int
	data []float64
}

// Store is an in-memory dataset file implementing h5result.Store.
type Store struct {
	datasets   map[string]dataset
	closeCount int32
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{datasets: make(map[string]dataset)}
}

// WithDataset adds a row-major dataset. Leading slashes in path are ignored.
func (s *Store) WithDataset(path string, dims []int, data []float64) *Store {
	s.datasets[strings.TrimPrefix(path, "/")] = dataset{dims: dims, data: data}
	return s
}

// WithColumn adds a [n][1] dataset.
func (s *Store) WithColumn(path string, values ...float64) *Store {
	return s.WithDataset(path, []int{len(values), 1}, values)
}

// WithTable adds a 2-D dataset from rows.
func (s *Store) WithTable(path string, rows [][]float64) *Store {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	return s.WithDataset(path, []int{len(rows), cols}, data)
}

func (s *Store) get(path string) (dataset, error) {
	d, ok := s.datasets[strings.TrimPrefix(path, "/")]
	if !ok {
		return dataset{}, errors.NotFound("dataset", path)
	}
	return d, nil
}

// Dims implements h5result.Store.
func (s *Store) Dims(path string) ([]int, error) {
	d, err := s.get(path)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), d.dims...), nil
}

// ReadFloat64 implements h5result.Store.
func (s *Store) ReadFloat64(path string) ([]float64, error) {
	d, err := s.get(path)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), d.data...), nil
}

// Has implements h5result.Store.
func (s *Store) Has(path string) bool {
	_, ok := s.datasets[strings.TrimPrefix(path, "/")]
	return ok
}

// Close implements h5result.Store.
func (s *Store) Close() error {
	atomic.AddInt32(&s.closeCount, 1)
	return nil
}

// CloseCount returns the number of times Close was called.
func (s *Store) CloseCount() int32 {
	return atomic.LoadInt32(&s.closeCount)
}
