// Package listing reads AUTOUGH2/TOUGH2 text listing files.
//
// A listing holds one element table per output time. Each output section is
// introduced by a line such as
//
//	OUTPUT DATA AFTER ( 10, 2)-2-TIME STEPS     THE TIME IS 0.10000E+05 SECONDS
//
// followed by an element table whose header starts with "ELEM." and whose
// column names are separated by two or more spaces:
//
//	ELEM.  INDEX  Pressure      Temperature   Vapour saturation
//	 AA  1     1  0.10000E+06   0.20000E+02   0.00000E+00
//
// Tables may be split over several pages, each repeating the header.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

// Static regexes for listing parsing.
var (
	timeRegex      = regexp.MustCompile(`THE TIME IS\s+(\S+)\s+(SECONDS|DAYS)`)
	headerRegex    = regexp.MustCompile(`^\s*ELEM\.`)
	columnSepRegex = regexp.MustCompile(`\s{2,}`)
)

const (
	indexColumn   = "INDEX"
	secondsPerDay = 86400.0
)

type section struct {
	time     float64
	header   []string
	elements []string
	seen     map[string]bool
	columns  map[string][]float64
}

func newSection(t float64) *section {
	return &section{time: t, seen: make(map[string]bool), columns: make(map[string][]float64)}
}

// Listing is a parsed listing file. It implements result.Backend with
// elements in listing order.
type Listing struct {
	columns   []string
	elements  []string
	sections  []section
	positions []result.Point
}

var _ result.Backend = (*Listing)(nil)

// Open parses the listing at path. When positionsPath is non-empty, element
// positions are read from it (see ReadPositions).
func Open(path, positionsPath string) (*Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listing: %w", err)
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if positionsPath != "" {
		pf, err := os.Open(positionsPath)
		if err != nil {
			return nil, fmt.Errorf("open positions: %w", err)
		}
		defer pf.Close()
		if err := l.ReadPositions(pf); err != nil {
			return nil, fmt.Errorf("%s: %w", positionsPath, err)
		}
	}
	return l, nil
}

// Parse reads a listing. A section with a repeated output time replaces the
// earlier section.
func Parse(r io.Reader) (*Listing, error) {
	p := parser{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.finish()
}

type parser struct {
	l       Listing
	current *section
	columns []string // columns of the table being read, nil outside a table
	rows    int
}

func (p *parser) line(line string) error {
	if m := timeRegex.FindStringSubmatch(line); m != nil {
		t, err := parseFloat(m[1])
		if err != nil {
			return errors.Newf("invalid output time %q", m[1])
		}
		if m[2] == "DAYS" {
			t *= secondsPerDay
		}
		// Continuation pages repeat the time line; a reprinted output is
		// detected by its repeated elements below.
		if p.current != nil && p.current.time == t {
			return nil
		}
		if err := p.endSection(); err != nil {
			return err
		}
		p.current = newSection(t)
		return nil
	}

	if p.current == nil {
		return nil
	}

	if headerRegex.MatchString(line) {
		cols := columnSepRegex.Split(strings.TrimSpace(line), -1)[1:]
		if len(cols) == 0 {
			return errors.New("element table header has no columns")
		}
		if p.current.header == nil {
			p.current.header = cols
		} else if !slices.Equal(cols, p.current.header) {
			return errors.Newf("element table columns changed within a section: %v", cols)
		}
		p.columns = cols
		p.rows = 0
		return nil
	}

	if p.columns == nil {
		return nil
	}

	name, values, ok := splitRow(line, len(p.columns))
	if !ok {
		// Units and blank lines may sit between the header and the first row.
		if p.rows > 0 {
			p.columns = nil
		}
		return nil
	}
	if p.current.seen[name] {
		header := p.current.header
		p.current = newSection(p.current.time)
		p.current.header = header
	}
	p.current.seen[name] = true
	p.rows++
	p.current.elements = append(p.current.elements, name)
	for i, col := range p.columns {
		p.current.columns[col] = append(p.current.columns[col], values[i])
	}
	return nil
}

func (p *parser) endSection() error {
	s := p.current
	p.current = nil
	p.columns = nil
	if s == nil {
		return nil
	}
	if len(s.elements) == 0 {
		return errors.Newf("output at time %g has no element table", s.time)
	}
	delete(s.columns, indexColumn)

	if len(p.l.sections) == 0 {
		p.l.elements = s.elements
		for _, c := range s.header {
			if c != indexColumn {
				p.l.columns = append(p.l.columns, c)
			}
		}
	} else if len(s.elements) != len(p.l.elements) {
		return errors.Newf("output at time %g has %d elements, expected %d", s.time, len(s.elements), len(p.l.elements))
	}

	// Keep the last section for a repeated time.
	for i := range p.l.sections {
		if p.l.sections[i].time == s.time {
			p.l.sections[i] = *s
			return nil
		}
	}
	if n := len(p.l.sections); n > 0 && s.time < p.l.sections[n-1].time {
		return errors.Newf("output time %g precedes %g", s.time, p.l.sections[n-1].time)
	}
	p.l.sections = append(p.l.sections, *s)
	return nil
}

func (p *parser) finish() (*Listing, error) {
	if err := p.endSection(); err != nil {
		return nil, err
	}
	if len(p.l.sections) == 0 {
		return nil, errors.New("no output sections found")
	}
	return &p.l, nil
}

// splitRow splits an element row into the element name and n trailing
// numeric values. Element names may contain spaces.
func splitRow(line string, n int) (string, []float64, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < n+1 {
		return "", nil, false
	}
	split := len(tokens) - n
	values := make([]float64, n)
	for i, tok := range tokens[split:] {
		v, err := parseFloat(tok)
		if err != nil {
			return "", nil, false
		}
		values[i] = v
	}
	return strings.Join(tokens[:split], " "), values, true
}

// parseFloat accepts Fortran D exponents.
func parseFloat(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, s)
	return strconv.ParseFloat(s, 64)
}

// ReadPositions reads element positions, one "x y [z]" line per element in
// listing order. Blank lines and lines starting with '#' are skipped.
// Commas are accepted as separators.
func (l *Listing) ReadPositions(r io.Reader) error {
	var positions []result.Point
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) < 2 || len(fields) > 3 {
			return errors.Newf("position line %q: want 2 or 3 coordinates", line)
		}
		var xyz [3]float64
		for i, f := range fields {
			v, err := parseFloat(f)
			if err != nil {
				return errors.Newf("position line %q: invalid coordinate %q", line, f)
			}
			xyz[i] = v
		}
		positions = append(positions, result.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(positions) != len(l.elements) {
		return errors.DimensionMismatch("positions", len(l.elements), len(positions))
	}
	l.positions = positions
	return nil
}

// Columns returns the field names in header order.
func (l *Listing) Columns() []string {
	return append([]string(nil), l.columns...)
}

// Elements returns element names in listing order.
func (l *Listing) Elements() []string {
	return append([]string(nil), l.elements...)
}

// FieldAt implements result.Backend.
func (l *Listing) FieldAt(field string, outputIndex int) ([]float64, error) {
	if outputIndex < 0 || outputIndex >= len(l.sections) {
		return nil, errors.Newf("output index %d out of range", outputIndex)
	}
	values, ok := l.sections[outputIndex].columns[field]
	if !ok {
		return nil, errors.FieldNotFound("", field)
	}
	return append([]float64(nil), values...), nil
}

// FieldHistory implements result.Backend.
func (l *Listing) FieldHistory(field string, nativeCell int) ([]float64, error) {
	if nativeCell < 0 || nativeCell >= len(l.elements) {
		return nil, errors.Newf("element index %d out of range [0, %d)", nativeCell, len(l.elements))
	}
	out := make([]float64, len(l.sections))
	for i, s := range l.sections {
		values, ok := s.columns[field]
		if !ok {
			return nil, errors.FieldNotFound("", field)
		}
		out[i] = values[nativeCell]
	}
	return out, nil
}

// Positions implements result.Backend.
func (l *Listing) Positions() ([]result.Point, error) {
	if l.positions == nil {
		return nil, errors.NotFound("element positions", "listing has no positions file")
	}
	return append([]result.Point(nil), l.positions...), nil
}

// Times implements result.Backend.
func (l *Listing) Times() ([]float64, error) {
	out := make([]float64, len(l.sections))
	for i, s := range l.sections {
		out[i] = s.time
	}
	return out, nil
}

// Close implements result.Backend.
func (l *Listing) Close() error { return nil }
