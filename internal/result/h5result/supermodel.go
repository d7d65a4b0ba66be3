package h5result

import (
	"fmt"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// Supermodel reads supermodel HDF5 output. Field tables are indexed through
// cell_interior_index and the geometry table through cell_index.
type Supermodel struct {
	store   Store
	cellIdx []int
	geomIdx []int
	times   []float64
	cells   *cellFields
}

var _ result.Backend = (*Supermodel)(nil)

// NewSupermodel reads the index and time datasets of store and takes
// ownership of it.
func NewSupermodel(store Store) (*Supermodel, error) {
	cellIdx, err := readIndex(store, "cell_interior_index")
	if err != nil {
		return nil, err
	}
	geomIdx, err := readIndex(store, "cell_index")
	if err != nil {
		return nil, err
	}
	if len(geomIdx) != len(cellIdx) {
		return nil, errors.DimensionMismatch("cell_index", len(cellIdx), len(geomIdx))
	}
	times, err := readColumn(store, "time")
	if err != nil {
		return nil, err
	}
	return &Supermodel{
		store:   store,
		cellIdx: cellIdx,
		geomIdx: geomIdx,
		times:   times,
		cells:   newCellFields(store, "cell_fields"),
	}, nil
}

// OpenSupermodel opens the output at h5Path with open.
func OpenSupermodel(open Opener, h5Path string) (*Supermodel, error) {
	store, err := open(h5Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h5Path, err)
	}
	s, err := NewSupermodel(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", h5Path, err)
	}
	return s, nil
}

// FieldAt implements result.Backend.
func (s *Supermodel) FieldAt(field string, outputIndex int) ([]float64, error) {
	return s.cells.snapshot(field, outputIndex, s.cellIdx)
}

// FieldHistory implements result.Backend. Cells are mapped through
// cell_interior_index, matching FieldAt.
func (s *Supermodel) FieldHistory(field string, nativeCell int) ([]float64, error) {
	if nativeCell < 0 || nativeCell >= len(s.cellIdx) {
		return nil, errors.Newf("cell index %d out of range [0, %d)", nativeCell, len(s.cellIdx))
	}
	return s.cells.history(field, s.cellIdx[nativeCell])
}

// Positions implements result.Backend.
func (s *Supermodel) Positions() ([]result.Point, error) {
	return centroids(s.store, "fields/cell_geometry", s.geomIdx)
}

// Times implements result.Backend.
func (s *Supermodel) Times() ([]float64, error) {
	return append([]float64(nil), s.times...), nil
}

// Close implements result.Backend.
func (s *Supermodel) Close() error {
	return s.store.Close()
}
