// Package result exposes simulator output through a common, canonical view.
//
// A Backend reads raw data in a simulator's native cell order. An Accessor
// wraps a Backend with a FieldNameMap (canonical field names to native names
// or derived computations) and an OrderingMap (canonical cell index to native
// cell index) and implements ModelResult, the only interface the comparison
// code consumes.
package result

// Point is a cell centre position. Two-dimensional models leave Z at zero.
type Point struct {
	X, Y, Z float64
}

// ModelResult is the canonical view of one simulator run's output.
type ModelResult interface {
	// Name identifies the run that produced the result.
	Name() string
	// OutputPath is the directory holding the output files.
	OutputPath() string
	// FieldAt returns field values over all canonical cells at one output
	// time. A negative index counts back from the last output.
	FieldAt(field string, outputIndex int) ([]float64, error)
	// FieldHistory returns the output times and the field values at one
	// canonical cell.
	FieldHistory(field string, cell int) (times, values []float64, err error)
	// Positions returns cell positions in canonical order.
	Positions() ([]Point, error)
	// Times returns the output times, strictly ascending.
	Times() ([]float64, error)
	// Close releases the backing store.
	Close() error
}

// Backend reads raw simulator output in native cell order.
//
// Output indices passed to a Backend are already resolved to the range
// [0, len(Times())).
type Backend interface {
	FieldAt(field string, outputIndex int) ([]float64, error)
	FieldHistory(field string, nativeCell int) ([]float64, error)
	Positions() ([]Point, error)
	Times() ([]float64, error)
	Close() error
}
