// Package record reads and writes the XML records of model runs, checks and
// benchmarks.
package record

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/AndreyAkinshin/credo/internal/check"
	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
)

// Check status values.
const (
	StatusPass  = "Pass"
	StatusFail  = "Fail"
	StatusError = "Error"
)

const modelRecordPrefix = "ModelResult-"

// Job is the XML form of jobrunner.JobMetaInfo.
type Job struct {
	RunType    string  `xml:"runType"`
	RunCommand string  `xml:"runCommand"`
	JobID      string  `xml:"jobId,omitempty"`
	SubmitTime string  `xml:"submitTime,omitempty"`
	Walltime   float64 `xml:"walltime"`
	ExitCode   int     `xml:"exitCode"`
	Hostname   string  `xml:"hostname,omitempty"`
	Platform   string  `xml:"platform,omitempty"`
}

// NewJob converts job metadata. Walltime is stored in seconds.
func NewJob(m jobrunner.JobMetaInfo) *Job {
	j := &Job{
		RunType:    m.RunType,
		RunCommand: m.RunCommand,
		JobID:      m.ID,
		Walltime:   m.Walltime.Seconds(),
		ExitCode:   m.ExitCode,
		Hostname:   m.Hostname,
		Platform:   m.Platform,
	}
	if !m.SubmitTime.IsZero() {
		j.SubmitTime = m.SubmitTime.Format(time.RFC3339)
	}
	return j
}

// MetaInfo converts the record back to job metadata.
func (j *Job) MetaInfo() (jobrunner.JobMetaInfo, error) {
	m := jobrunner.JobMetaInfo{
		ID:         j.JobID,
		RunType:    j.RunType,
		RunCommand: j.RunCommand,
		Walltime:   time.Duration(j.Walltime * float64(time.Second)),
		ExitCode:   j.ExitCode,
		Hostname:   j.Hostname,
		Platform:   j.Platform,
	}
	if j.SubmitTime != "" {
		t, err := time.Parse(time.RFC3339, j.SubmitTime)
		if err != nil {
			return m, fmt.Errorf("submit time: %w", err)
		}
		m.SubmitTime = t
	}
	return m, nil
}

// Model records where a model run's output lives.
type Model struct {
	XMLName    xml.Name `xml:"ModelResult"`
	ModelName  string   `xml:"modelName"`
	OutputPath string   `xml:"outputPath"`
	Job        *Job     `xml:"jobMetaInfo,omitempty"`
}

// Filename is the default record name of the model.
func (m Model) Filename() string {
	return modelRecordPrefix + m.ModelName + ".xml"
}

// WriteModel writes m to dir under its default name and returns the path.
// Empty dir means the model's output path.
func WriteModel(dir string, m Model) (string, error) {
	if dir == "" {
		dir = m.OutputPath
	}
	path := filepath.Join(dir, m.Filename())
	return path, Write(path, m)
}

// ReadModel reads a model record.
func ReadModel(path string) (Model, error) {
	var m Model
	if err := Read(path, &m); err != nil {
		return Model{}, err
	}
	return m, nil
}

// ReadFromDir reads the single model record in dir.
func ReadFromDir(dir string) (Model, error) {
	matches, err := filepath.Glob(filepath.Join(dir, modelRecordPrefix+"*.xml"))
	if err != nil {
		return Model{}, err
	}
	if len(matches) != 1 {
		return Model{}, errors.Newf("expected directory %s to contain 1 model record, found %d", dir, len(matches))
	}
	return ReadModel(matches[0])
}

// Value is an element holding a single value attribute.
type Value struct {
	Value string `xml:"value,attr"`
}

// FieldSpec is a field under test and its tolerance.
type FieldSpec struct {
	Name string `xml:"name,attr"`
	Tol  string `xml:"tol,attr"`
}

// CheckSpec describes what a check compares.
type CheckSpec struct {
	CompareSource Value       `xml:"compareSource"`
	OutputIndex   *Value      `xml:"testOutputIndex,omitempty"`
	CellIndex     *Value      `xml:"testCellIndex,omitempty"`
	CurveDistance bool        `xml:"curveDistance,attr,omitempty"`
	Fields        []FieldSpec `xml:"fields>field"`
}

// ErrorEntry is one element error of a field.
type ErrorEntry struct {
	Index     int    `xml:"index,attr"`
	Error     string `xml:"error,attr"`
	WithinTol bool   `xml:"withinTol,attr"`
}

// FieldResult holds the errors of one compared field. Field checks write
// allErrorsWithinTol with errors/error[index]; history checks write
// allTimesWithinTol with timesError/timeError[num].
type FieldResult struct {
	Name               string
	AllErrorsWithinTol bool
	MaxError           string
	MeanError          string
	Errors             []ErrorEntry
	// History selects the per-time layout.
	History bool
}

type errorList struct {
	Entries []ErrorEntry `xml:"error"`
}

type timeErrorEntry struct {
	Num       int    `xml:"num,attr"`
	Error     string `xml:"error,attr"`
	WithinTol bool   `xml:"withinTol,attr"`
}

type timeErrorList struct {
	Entries []timeErrorEntry `xml:"timeError"`
}

// fieldResultXML is the wire form of FieldResult.
type fieldResultXML struct {
	Name               string         `xml:"name,attr"`
	AllErrorsWithinTol *bool          `xml:"allErrorsWithinTol,attr,omitempty"`
	AllTimesWithinTol  *bool          `xml:"allTimesWithinTol,attr,omitempty"`
	MaxError           string         `xml:"maxError,attr"`
	MeanError          string         `xml:"meanError,attr"`
	Errors             *errorList     `xml:"errors,omitempty"`
	TimesError         *timeErrorList `xml:"timesError,omitempty"`
}

// MarshalXML writes the layout selected by History.
func (f FieldResult) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	within := f.AllErrorsWithinTol
	x := fieldResultXML{Name: f.Name, MaxError: f.MaxError, MeanError: f.MeanError}
	if !f.History {
		x.AllErrorsWithinTol = &within
		x.Errors = &errorList{Entries: f.Errors}
		return e.EncodeElement(x, start)
	}
	x.AllTimesWithinTol = &within
	x.TimesError = &timeErrorList{Entries: make([]timeErrorEntry, len(f.Errors))}
	for i, entry := range f.Errors {
		x.TimesError.Entries[i] = timeErrorEntry{Num: entry.Index, Error: entry.Error, WithinTol: entry.WithinTol}
	}
	return e.EncodeElement(x, start)
}

// UnmarshalXML reads either layout.
func (f *FieldResult) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var x fieldResultXML
	if err := d.DecodeElement(&x, &start); err != nil {
		return err
	}
	*f = FieldResult{Name: x.Name, MaxError: x.MaxError, MeanError: x.MeanError}
	switch {
	case x.TimesError != nil || x.AllTimesWithinTol != nil:
		f.History = true
		if x.AllTimesWithinTol != nil {
			f.AllErrorsWithinTol = *x.AllTimesWithinTol
		}
		if x.TimesError != nil {
			f.Errors = make([]ErrorEntry, len(x.TimesError.Entries))
			for i, entry := range x.TimesError.Entries {
				f.Errors[i] = ErrorEntry{Index: entry.Num, Error: entry.Error, WithinTol: entry.WithinTol}
			}
		}
	default:
		if x.AllErrorsWithinTol != nil {
			f.AllErrorsWithinTol = *x.AllErrorsWithinTol
		}
		if x.Errors != nil {
			f.Errors = x.Errors.Entries
		}
	}
	return nil
}

// CheckResult is the outcome of a check.
type CheckResult struct {
	StatusMsg string        `xml:"statusMsg"`
	Error     string        `xml:"error,omitempty"`
	Fields    []FieldResult `xml:"fieldResultDetails>field"`
}

// Check records a check and its latest outcome.
type Check struct {
	XMLName xml.Name    `xml:"testComponent"`
	Name    string      `xml:"name,attr"`
	Type    string      `xml:"type,attr"`
	Model   string      `xml:"model,attr"`
	Status  string      `xml:"status,attr"`
	Spec    CheckSpec   `xml:"specification"`
	Result  CheckResult `xml:"result"`
}

// Passed reports whether the recorded check passed.
func (c Check) Passed() bool { return c.Status == StatusPass }

// NewCheck records tc against the named model. A non-nil checkErr marks the
// check as errored.
func NewCheck(tc *check.ToleranceCheck, model string, checkErr error) Check {
	c := Check{
		Name:  tc.Name(),
		Type:  tc.Kind().String() + "WithinTol",
		Model: model,
		Spec: CheckSpec{
			CompareSource: Value{Value: tc.CompareSource()},
			CurveDistance: tc.CurveDistance(),
		},
	}
	if tc.Kind() == check.KindHistory {
		c.Spec.CellIndex = &Value{Value: strconv.Itoa(tc.Cell())}
	} else {
		c.Spec.OutputIndex = &Value{Value: strconv.Itoa(tc.OutputIndex())}
	}
	for _, f := range tc.Fields() {
		c.Spec.Fields = append(c.Spec.Fields, FieldSpec{Name: f, Tol: formatFloat(tc.ResolveTolerance(f))})
	}

	switch {
	case checkErr != nil:
		c.Status = StatusError
		c.Result.Error = checkErr.Error()
		c.Result.StatusMsg = "check could not be completed"
		return c
	case tc.Passed():
		c.Status = StatusPass
	default:
		c.Status = StatusFail
	}
	c.Result.StatusMsg = tc.Status()

	for _, cmp := range tc.Comparisons() {
		summary := cmp.Summary()
		fr := FieldResult{
			Name:               cmp.Field,
			AllErrorsWithinTol: cmp.Passed,
			MaxError:           fmt.Sprintf("%6e", summary.Max),
			MeanError:          fmt.Sprintf("%6e", summary.Mean),
			Errors:             make([]ErrorEntry, len(cmp.Errors)),
			History:            tc.Kind() == check.KindHistory,
		}
		for i, e := range cmp.Errors {
			fr.Errors[i] = ErrorEntry{Index: i, Error: fmt.Sprintf("%6e", e), WithinTol: e <= cmp.Tolerance}
		}
		c.Result.Fields = append(c.Result.Fields, fr)
	}
	return c
}

// Benchmark aggregates the check records of a suite run.
type Benchmark struct {
	XMLName     xml.Name `xml:"SciBenchmark"`
	Name        string   `xml:"name,attr"`
	Description string   `xml:"description,omitempty"`
	Status      string   `xml:"status"`
	Models      []Model  `xml:"modelResults>ModelResult"`
	Checks      []Check  `xml:"testComponents>testComponent"`
}

// Filename is the default record name of the benchmark.
func (b Benchmark) Filename() string {
	return "SciBenchmark-" + b.Name + ".xml"
}

// NewBenchmark aggregates checks. The benchmark passes when every check
// passes.
func NewBenchmark(name, description string, models []Model, checks []Check) Benchmark {
	status := StatusPass
	for _, c := range checks {
		if !c.Passed() {
			status = StatusFail
			break
		}
	}
	return Benchmark{Name: name, Description: description, Status: status, Models: models, Checks: checks}
}

// Write writes v as an indented XML document, creating parent directories.
func Write(path string, v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Read decodes the XML record at path into v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse record %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
