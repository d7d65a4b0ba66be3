package result

import (
	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Memory is an in-memory Backend holding fields as [output][cell] tables.
// It serves reference solutions tabulated in code and tests.
type Memory struct {
	times     []float64
	positions []Point
	fields    map[string][][]float64
}

var _ Backend = (*Memory)(nil)

// NewMemory creates a backend with the given output times and cell
// positions. Both slices are copied.
func NewMemory(times []float64, positions []Point) *Memory {
	return &Memory{
		times:     append([]float64(nil), times...),
		positions: append([]Point(nil), positions...),
		fields:    make(map[string][][]float64),
	}
}

// SetField stores values[output][cell] under name.
func (m *Memory) SetField(name string, values [][]float64) error {
	if len(values) != len(m.times) {
		return errors.DimensionMismatch(name, len(m.times), len(values))
	}
	table := make([][]float64, len(values))
	for i, row := range values {
		if len(row) != len(m.positions) {
			return errors.DimensionMismatch(name, len(m.positions), len(row))
		}
		table[i] = append([]float64(nil), row...)
	}
	m.fields[name] = table
	return nil
}

// SetConstant stores a field with the same value everywhere.
func (m *Memory) SetConstant(name string, v float64) {
	table := make([][]float64, len(m.times))
	for i := range table {
		row := make([]float64, len(m.positions))
		for j := range row {
			row[j] = v
		}
		table[i] = row
	}
	m.fields[name] = table
}

func (m *Memory) field(name string) ([][]float64, error) {
	table, ok := m.fields[name]
	if !ok {
		return nil, errors.FieldNotFound("", name)
	}
	return table, nil
}

// FieldAt implements Backend.
func (m *Memory) FieldAt(field string, outputIndex int) ([]float64, error) {
	table, err := m.field(field)
	if err != nil {
		return nil, err
	}
	if outputIndex < 0 || outputIndex >= len(table) {
		return nil, errors.Newf("output index %d out of range", outputIndex)
	}
	return append([]float64(nil), table[outputIndex]...), nil
}

// FieldHistory implements Backend.
func (m *Memory) FieldHistory(field string, nativeCell int) ([]float64, error) {
	table, err := m.field(field)
	if err != nil {
		return nil, err
	}
	if nativeCell < 0 || nativeCell >= len(m.positions) {
		return nil, errors.Newf("cell index %d out of range [0, %d)", nativeCell, len(m.positions))
	}
	out := make([]float64, len(table))
	for i, row := range table {
		out[i] = row[nativeCell]
	}
	return out, nil
}

// Positions implements Backend.
func (m *Memory) Positions() ([]Point, error) {
	return append([]Point(nil), m.positions...), nil
}

// Times implements Backend.
func (m *Memory) Times() ([]float64, error) {
	return append([]float64(nil), m.times...), nil
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
