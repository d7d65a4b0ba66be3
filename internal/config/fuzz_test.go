package config

import (
	"reflect"
	"testing"
)

// FuzzParse tests Parse with arbitrary input in every format.
// Run: go test -fuzz=FuzzParse -fuzztime=30s ./internal/config
func FuzzParse(f *testing.F) {
	seeds := []struct {
		data   string
		format Format
	}{
		{suiteJSON, FormatJSON},
		{suiteYAML, FormatYAML},
		{suiteTOML, FormatTOML},
		// Edge cases: empty documents
		{``, FormatJSON},
		{``, FormatYAML},
		{``, FormatTOML},
		// Edge cases: invalid root types
		{`[]`, FormatJSON},
		{`- a`, FormatYAML},
		{`"string"`, FormatJSON},
		// Edge cases: non-string YAML keys
		{"1: a\n2: b\n", FormatYAML},
		// Edge cases: wrong value types
		{`{"name": "x", "models": [{"name": "m", "simulator": "aut2", "input": 1}]}`, FormatJSON},
		{`{"name": "x", "timeout": true, "models": [{"name": "m", "simulator": "aut2", "input": "m"}]}`, FormatJSON},
		// Edge cases: Unicode in values
		{`{"name": "x", "description": "项目描述 プロジェクト проект", "models": [{"name": "m", "simulator": "aut2", "input": "m"}]}`, FormatJSON},
	}
	for _, seed := range seeds {
		f.Add([]byte(seed.data), string(seed.format))
	}

	f.Fuzz(func(t *testing.T, data []byte, format string) {
		// Parse should never panic
		cfg, warnings, err1 := Parse(data, Format(format))

		// Determinism check
		cfg2, warnings2, err2 := Parse(data, Format(format))

		if (err1 == nil) != (err2 == nil) {
			t.Errorf("non-deterministic error: first=%v, second=%v", err1, err2)
		}
		if err1 == nil && err2 == nil {
			if !reflect.DeepEqual(cfg, cfg2) {
				t.Errorf("non-deterministic suite: first=%+v, second=%+v", cfg, cfg2)
			}
			if !reflect.DeepEqual(warnings, warnings2) {
				t.Errorf("non-deterministic warnings: first=%v, second=%v", warnings, warnings2)
			}
		}

		// A parsed suite always has defaults applied
		if err1 == nil {
			for _, c := range cfg.Checks {
				if c.Tolerance == nil || c.OutputIndex == nil || c.EnforceLogic == nil || c.Kind == "" {
					t.Errorf("check %q missing defaults: %+v", c.Name, c)
				}
			}
		}
	})
}
