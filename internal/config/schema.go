// Package config loads benchmark suite files.
//
// A suite file is YAML, TOML or JSON, chosen by extension. Every format is
// converted to JSON, validated against the embedded suite schema, decoded,
// given defaults and then checked for semantic errors.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Suite represents a complete suite file.
type Suite struct {
	Schema      string `json:"$schema,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// OutputDir receives the benchmark record and, unless a model sets its
	// own output path, one directory per model.
	OutputDir string `json:"output_dir,omitempty"`
	// Timeout is the default maximum run time of a model.
	Timeout  Duration `json:"timeout,omitempty"`
	Parallel int      `json:"parallel,omitempty"`

	FieldMaps map[string]FieldMapConfig `json:"field_maps,omitempty"`
	Models    []ModelConfig             `json:"models"`
	Checks    []CheckConfig             `json:"checks,omitempty"`
}

// FieldMapConfig maps canonical field names to simulator fields.
type FieldMapConfig map[string]FieldConfig

// FieldConfig is either a native field name or a builtin derivation of
// another canonical field.
type FieldConfig struct {
	Native  string `json:"-"`
	Derived string `json:"derived,omitempty"`
	Source  string `json:"source,omitempty"`
}

// UnmarshalJSON accepts a plain string or a {derived, source} object.
func (f *FieldConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*f = FieldConfig{}
		return json.Unmarshal(data, &f.Native)
	}
	type plain FieldConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FieldConfig(p)
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (f FieldConfig) MarshalJSON() ([]byte, error) {
	if f.Derived == "" {
		return json.Marshal(f.Native)
	}
	type plain FieldConfig
	return json.Marshal(plain(f))
}

// ModelConfig defines one simulator run.
type ModelConfig struct {
	Name      string `json:"name"`
	Simulator string `json:"simulator"`
	// BasePath is the run directory, relative to the suite file.
	BasePath   string `json:"base_path,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	// Input is the AUTOUGH2 dat file or the Waiwera/supermodel JSON input.
	Input     string `json:"input,omitempty"`
	Save      string `json:"save,omitempty"`
	Incon     string `json:"incon,omitempty"`
	Positions string `json:"positions,omitempty"`

	FieldMap string          `json:"field_map,omitempty"`
	Ordering *OrderingConfig `json:"ordering,omitempty"`

	// Command overrides the simulator executable.
	Command    string   `json:"command,omitempty"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Existing   bool     `json:"existing,omitempty"`
	NProc      int      `json:"nproc,omitempty"`
	MaxRunTime Duration `json:"max_run_time,omitempty"`
}

// OrderingConfig is an explicit list of native cells in canonical order, or a
// half-open range of native cells.
type OrderingConfig struct {
	Cells []int `json:"-"`
	Range []int `json:"range,omitempty"`
}

// UnmarshalJSON accepts a list of cells or a {range: [start, stop]} object.
func (o *OrderingConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		*o = OrderingConfig{}
		return json.Unmarshal(data, &o.Cells)
	}
	type plain OrderingConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OrderingConfig(p)
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (o OrderingConfig) MarshalJSON() ([]byte, error) {
	if o.Range == nil {
		return json.Marshal(o.Cells)
	}
	type plain OrderingConfig
	return json.Marshal(plain(o))
}

// CheckConfig defines one tolerance check.
type CheckConfig struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	// Kind is "field" (default) or "history".
	Kind   string   `json:"kind,omitempty"`
	Fields []string `json:"fields"`

	Tolerance       *float64           `json:"tolerance,omitempty"`
	FieldTolerances map[string]float64 `json:"field_tolerances,omitempty"`
	AbsErrTol       float64            `json:"abs_err_tol,omitempty"`
	Expected        ExpectedConfig     `json:"expected"`

	// OutputIndex selects the output of a field check; negative values
	// count from the end. Defaults to -1.
	OutputIndex *int      `json:"output_index,omitempty"`
	Cell        int       `json:"cell,omitempty"`
	Times       []float64 `json:"times,omitempty"`

	CurveDistance bool  `json:"curve_distance,omitempty"`
	LogX          bool  `json:"log_x,omitempty"`
	LogY          bool  `json:"log_y,omitempty"`
	EnforceLogic  *bool `json:"enforce_logic,omitempty"`
}

// ExpectedConfig names a reference model or an analytic solution.
type ExpectedConfig struct {
	Model    string          `json:"model,omitempty"`
	Analytic *AnalyticConfig `json:"analytic,omitempty"`
}

// AnalyticConfig is a builtin analytic solution: a constant value, or
// c0 + cx*x + cy*y + cz*z + ct*t.
type AnalyticConfig struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
	C0    float64 `json:"c0,omitempty"`
	CX    float64 `json:"cx,omitempty"`
	CY    float64 `json:"cy,omitempty"`
	CZ    float64 `json:"cz,omitempty"`
	CT    float64 `json:"ct,omitempty"`
}

// Analytic solution kinds.
const (
	AnalyticConstant = "constant"
	AnalyticLinear   = "linear"
)

// Check kinds.
const (
	CheckKindField   = "field"
	CheckKindHistory = "history"
)

// Duration is a time.Duration given as a Go duration string ("90m") or a
// number of seconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %s", data)
	}
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
