package h5result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// Waiwera defaults for cells not listed in any rock type.
const (
	DefaultPorosity     = 0.1
	DefaultPermeability = 1e-13
)

// Input is the subset of a Waiwera or supermodel JSON input file that
// credo reads.
type Input struct {
	Output struct {
		Filename string `json:"filename"`
	} `json:"output"`
	Rock struct {
		Types []RockType `json:"types"`
	} `json:"rock"`
}

// RockType assigns rock properties to cells in natural order.
type RockType struct {
	Name         string    `json:"name"`
	Cells        []int     `json:"cells"`
	Porosity     *float64  `json:"porosity"`
	Permeability []float64 `json:"permeability"`
}

// ReadInput parses a JSON input file.
func ReadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return &in, nil
}

// OutputFilename returns the HDF5 output file of an input file: the
// output.filename entry when set, else the input name with extension .h5.
// Relative names resolve against the input file's directory.
func OutputFilename(inputPath string, in *Input) string {
	name := ""
	if in != nil {
		name = in.Output.Filename
	}
	if name == "" {
		return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".h5"
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(filepath.Dir(inputPath), name)
	}
	return name
}

// Rock derived fields computed from the input file rather than read from the
// output.
const (
	FieldPorosity      = "rock_porosity"
	FieldPermeability1 = "rock_permeability1"
	FieldPermeability2 = "rock_permeability2"
	FieldPermeability3 = "rock_permeability3"
	FieldVolume        = "geom_volume"
)

// Waiwera reads Waiwera HDF5 output. Cells are reported in natural order:
// cell_index maps natural cell c to its storage column.
type Waiwera struct {
	store     Store
	input     *Input
	cellIdx   []int
	sourceIdx []int
	times     []float64
	cells     *cellFields
	sources   *cellFields
}

var _ result.Backend = (*Waiwera)(nil)

// NewWaiwera reads the index and time datasets of store. input may be nil
// when rock fields are not needed. The Waiwera takes ownership of store.
func NewWaiwera(store Store, input *Input) (*Waiwera, error) {
	cellIdx, err := readIndex(store, "cell_index")
	if err != nil {
		return nil, err
	}
	var sourceIdx []int
	if store.Has("source_index") {
		if sourceIdx, err = readIndex(store, "source_index"); err != nil {
			return nil, err
		}
	}
	times, err := readColumn(store, "time")
	if err != nil {
		return nil, err
	}
	return &Waiwera{
		store:     store,
		input:     input,
		cellIdx:   cellIdx,
		sourceIdx: sourceIdx,
		times:     times,
		cells:     newCellFields(store, "cell_fields"),
		sources:   newCellFields(store, "source_fields"),
	}, nil
}

// OpenWaiwera opens the output at h5Path with open. A non-empty inputPath is
// parsed for rock properties.
func OpenWaiwera(open Opener, h5Path, inputPath string) (*Waiwera, error) {
	var in *Input
	if inputPath != "" {
		var err error
		if in, err = ReadInput(inputPath); err != nil {
			return nil, err
		}
	}
	store, err := open(h5Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h5Path, err)
	}
	w, err := NewWaiwera(store, in)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", h5Path, err)
	}
	return w, nil
}

// NumCells returns the number of cells.
func (w *Waiwera) NumCells() int { return len(w.cellIdx) }

// FieldAt implements result.Backend.
func (w *Waiwera) FieldAt(field string, outputIndex int) ([]float64, error) {
	if isRockField(field) {
		return w.rockField(field)
	}
	return w.cells.snapshot(field, outputIndex, w.cellIdx)
}

// FieldHistory implements result.Backend.
func (w *Waiwera) FieldHistory(field string, nativeCell int) ([]float64, error) {
	if nativeCell < 0 || nativeCell >= len(w.cellIdx) {
		return nil, errors.Newf("cell index %d out of range [0, %d)", nativeCell, len(w.cellIdx))
	}
	if isRockField(field) {
		v, err := w.rockField(field)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(w.times))
		for i := range out {
			out[i] = v[nativeCell]
		}
		return out, nil
	}
	return w.cells.history(field, w.cellIdx[nativeCell])
}

// SourceHistory returns the output times and values of a source field at
// source index source (natural order).
func (w *Waiwera) SourceHistory(field string, source int) ([]float64, []float64, error) {
	if w.sourceIdx == nil {
		return nil, nil, errors.NotFound("sources", "model output has no source_index")
	}
	if source < 0 || source >= len(w.sourceIdx) {
		return nil, nil, errors.Newf("source index %d out of range [0, %d)", source, len(w.sourceIdx))
	}
	values, err := w.sources.history(field, w.sourceIdx[source])
	if err != nil {
		return nil, nil, err
	}
	return append([]float64(nil), w.times...), values, nil
}

// Positions implements result.Backend.
func (w *Waiwera) Positions() ([]result.Point, error) {
	return centroids(w.store, "cell_fields/cell_geometry_centroid", w.cellIdx)
}

// Times implements result.Backend.
func (w *Waiwera) Times() ([]float64, error) {
	return append([]float64(nil), w.times...), nil
}

// Close implements result.Backend.
func (w *Waiwera) Close() error {
	return w.store.Close()
}

func isRockField(field string) bool {
	switch field {
	case FieldPorosity, FieldPermeability1, FieldPermeability2, FieldPermeability3, FieldVolume:
		return true
	}
	return false
}

func (w *Waiwera) rockField(field string) ([]float64, error) {
	if field == FieldVolume {
		return w.cells.snapshot("cell_geometry_volume", 0, w.cellIdx)
	}
	if w.input == nil {
		return nil, errors.Configf("field %s needs the model input file", field)
	}

	def, component := DefaultPermeability, -1
	switch field {
	case FieldPorosity:
		def = DefaultPorosity
	case FieldPermeability1:
		component = 0
	case FieldPermeability2:
		component = 1
	case FieldPermeability3:
		component = 2
	}

	v := make([]float64, len(w.cellIdx))
	for i := range v {
		v[i] = def
	}
	for _, rock := range w.input.Rock.Types {
		var value float64
		switch {
		case component < 0 && rock.Porosity != nil:
			value = *rock.Porosity
		case component >= 0 && component < len(rock.Permeability):
			value = rock.Permeability[component]
		default:
			continue
		}
		for _, c := range rock.Cells {
			if c < 0 || c >= len(v) {
				return nil, errors.Newf("rock type %q refers to cell %d of %d", rock.Name, c, len(v))
			}
			v[c] = value
		}
	}
	return v, nil
}

// centroids reads the first three columns of a [cells][>=2] geometry table
// gathered through idx.
func centroids(s Store, path string, idx []int) ([]result.Point, error) {
	if !s.Has(path) {
		return nil, errors.NotFound("dataset", path)
	}
	t, err := readTable(s, path)
	if err != nil {
		return nil, err
	}
	if t.cols < 2 {
		return nil, errors.Newf("dataset %s: want at least two coordinates, got %d", path, t.cols)
	}
	out := make([]result.Point, len(idx))
	for c, r := range idx {
		if r >= t.rows {
			return nil, errors.Newf("dataset %s has %d rows, index refers to %d", path, t.rows, r)
		}
		p := result.Point{X: t.at(r, 0), Y: t.at(r, 1)}
		if t.cols > 2 {
			p.Z = t.at(r, 2)
		}
		out[c] = p
	}
	return out, nil
}
