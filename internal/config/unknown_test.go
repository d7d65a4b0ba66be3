package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_UnknownFieldWarnings(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"$schema": "../schema/suite.schema.json",
		"name": "suite",
		"owner": "geothermal group",
		"models": [
			{"name": "ref", "simulator": "aut2", "input": "ref.dat", "mesh": "ref.msh"},
			{"simulator": "aut2", "name": "other", "input": "o.dat", "gravity": 9.8}
		],
		"checks": [
			{"name": "c", "model": "ref", "fields": ["T"], "expected": {"model": "other"}, "plot": true}
		]
	}`)

	cfg, warnings, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "suite", cfg.Name)
	assert.Equal(t, []string{
		`unknown field "owner" at root level (ignored)`,
		`unknown field "mesh" in model "ref" (ignored)`,
		`unknown field "gravity" in model "other" (ignored)`,
		`unknown field "plot" in check "c" (ignored)`,
	}, warnings)
}

func TestParse_UnknownFieldsYAML(t *testing.T) {
	t.Parallel()
	data := []byte("name: suite\nextra: 1\nmodels:\n  - name: m\n    simulator: aut2\n    input: m.dat\n")
	_, warnings, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{`unknown field "extra" at root level (ignored)`}, warnings)
}

func TestDetectUnknownFields_Clean(t *testing.T) {
	t.Parallel()
	assert.Empty(t, detectUnknownFields([]byte(`{"name": "x", "models": []}`)))
	assert.Empty(t, detectUnknownFields([]byte(`{"name": "x"}`)))
}
