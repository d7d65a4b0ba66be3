// Package mocks provides shared test doubles for credo packages.
package mocks

import (
	"sync"
	"sync/atomic"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// Result implements result.ModelResult for testing.
// Use NewResult() to create instances with a fluent builder API.
// Field tables are indexed [output][cell].
type Result struct {
	name       string
	outputPath string
	times      []float64
	positions  []result.Point
	fields     map[string][][]float64

	// FieldErr, when set, is returned by FieldAt and FieldHistory for every
	// field.
	FieldErr error

	// Call tracking (thread-safe)
	closeCount int32
	mu         sync.Mutex
	requested  []string
}

var _ result.ModelResult = (*Result)(nil)

// NewResult creates a mock result with the given name and a single output at
// time zero.
func NewResult(name string) *Result {
	return &Result{
		name:   name,
		times:  []float64{0},
		fields: make(map[string][][]float64),
	}
}

// WithOutputPath sets the output path.
func (m *Result) WithOutputPath(path string) *Result {
	m.outputPath = path
	return m
}

// WithTimes sets the output times.
func (m *Result) WithTimes(times ...float64) *Result {
	m.times = times
	return m
}

// WithPositions sets the cell positions.
func (m *Result) WithPositions(positions ...result.Point) *Result {
	m.positions = positions
	return m
}

// WithField sets a field table [output][cell].
func (m *Result) WithField(name string, values [][]float64) *Result {
	m.fields[name] = values
	return m
}

// WithSnapshot sets a field with the same cell values at every output.
func (m *Result) WithSnapshot(name string, values ...float64) *Result {
	table := make([][]float64, len(m.times))
	for i := range table {
		table[i] = values
	}
	m.fields[name] = table
	return m
}

// WithHistory sets a single-cell field with one value per output.
func (m *Result) WithHistory(name string, values ...float64) *Result {
	table := make([][]float64, len(values))
	for i, v := range values {
		table[i] = []float64{v}
	}
	m.fields[name] = table
	return m
}

// WithFieldErr sets the error returned for every field request.
func (m *Result) WithFieldErr(err error) *Result {
	m.FieldErr = err
	return m
}

// result.ModelResult interface implementation

func (m *Result) Name() string       { return m.name }
func (m *Result) OutputPath() string { return m.outputPath }

func (m *Result) FieldAt(field string, outputIndex int) ([]float64, error) {
	m.track(field)
	table, err := m.table(field)
	if err != nil {
		return nil, err
	}
	if outputIndex < 0 {
		outputIndex += len(table)
	}
	if outputIndex < 0 || outputIndex >= len(table) {
		return nil, errors.Newf("output index %d out of range", outputIndex)
	}
	return append([]float64(nil), table[outputIndex]...), nil
}

func (m *Result) FieldHistory(field string, cell int) ([]float64, []float64, error) {
	m.track(field)
	table, err := m.table(field)
	if err != nil {
		return nil, nil, err
	}
	values := make([]float64, len(table))
	for i, row := range table {
		if cell < 0 || cell >= len(row) {
			return nil, nil, errors.Newf("cell %d out of range", cell)
		}
		values[i] = row[cell]
	}
	return append([]float64(nil), m.times...), values, nil
}

func (m *Result) Positions() ([]result.Point, error) {
	return append([]result.Point(nil), m.positions...), nil
}

func (m *Result) Times() ([]float64, error) {
	return append([]float64(nil), m.times...), nil
}

func (m *Result) Close() error {
	atomic.AddInt32(&m.closeCount, 1)
	return nil
}

func (m *Result) table(field string) ([][]float64, error) {
	if m.FieldErr != nil {
		return nil, m.FieldErr
	}
	table, ok := m.fields[field]
	if !ok {
		return nil, errors.FieldNotFound(m.name, field)
	}
	return table, nil
}

func (m *Result) track(field string) {
	m.mu.Lock()
	m.requested = append(m.requested, field)
	m.mu.Unlock()
}

// Test inspection methods

// CloseCount returns the number of times Close was called.
func (m *Result) CloseCount() int32 {
	return atomic.LoadInt32(&m.closeCount)
}

// Requested returns the field names requested, in call order.
func (m *Result) Requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requested))
	copy(out, m.requested)
	return out
}
