package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

func validSuite() *Suite {
	cfg := &Suite{
		Name:      "suite",
		FieldMaps: map[string]FieldMapConfig{"bar": {"P_bar": {Derived: "pa_to_bar", Source: "P"}}},
		Models: []ModelConfig{
			{Name: "ref", Simulator: "aut2", Input: "ref.dat", FieldMap: "bar"},
			{Name: "test", Simulator: "waiwera", Input: "test.json", DependsOn: []string{"ref"}},
		},
		Checks: []CheckConfig{
			{Name: "c", Model: "test", Fields: []string{"T"}, Expected: ExpectedConfig{Model: "ref"}},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()
	warnings, err := Validate(validSuite())
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Suite)
		field  string
	}{
		{"missing name", func(s *Suite) { s.Name = "" }, "name"},
		{"bad name", func(s *Suite) { s.Name = "my suite" }, "name"},
		{"long name", func(s *Suite) { s.Name = strings.Repeat("a", 129) }, "name"},
		{"empty native field", func(s *Suite) { s.FieldMaps["bar"]["X"] = FieldConfig{} }, "field_maps.bar.X"},
		{"self derived", func(s *Suite) { s.FieldMaps["bar"]["P"] = FieldConfig{Derived: "pa_to_bar", Source: "P"} }, "field_maps.bar.P"},
		{"derived cycle", func(s *Suite) {
			s.FieldMaps["bar"]["P"] = FieldConfig{Derived: "bar_to_pa", Source: "P_bar"}
		}, "field_maps.bar.P"},
		{"duplicate model", func(s *Suite) { s.Models[1].Name = "ref" }, "models[1].name"},
		{"unknown simulator", func(s *Suite) { s.Models[0].Simulator = "tough3" }, "models[0].simulator"},
		{"missing input", func(s *Suite) { s.Models[1].Input = "" }, "models[1].input"},
		{"save on waiwera", func(s *Suite) { s.Models[1].Save = "x.save" }, "models[1].save"},
		{"unknown field map", func(s *Suite) { s.Models[1].FieldMap = "ghost" }, "models[1].field_map"},
		{"empty range", func(s *Suite) { s.Models[0].Ordering = &OrderingConfig{Range: []int{3, 3}} }, "models[0].ordering.range"},
		{"self dependency", func(s *Suite) { s.Models[0].DependsOn = []string{"ref"} }, "models[0].depends_on"},
		{"unknown dependency", func(s *Suite) { s.Models[1].DependsOn = []string{"ghost"} }, "models[1].depends_on"},
		{"duplicate check", func(s *Suite) { s.Checks = append(s.Checks, s.Checks[0]) }, "checks[1].name"},
		{"unknown check model", func(s *Suite) { s.Checks[0].Model = "ghost" }, "checks[0].model"},
		{"bad kind", func(s *Suite) { s.Checks[0].Kind = "snapshot" }, "checks[0].kind"},
		{"no fields", func(s *Suite) { s.Checks[0].Fields = nil }, "checks[0].fields"},
		{"no expected", func(s *Suite) { s.Checks[0].Expected = ExpectedConfig{} }, "checks[0].expected"},
		{"both expected", func(s *Suite) {
			s.Checks[0].Expected.Analytic = &AnalyticConfig{Kind: AnalyticConstant}
		}, "checks[0].expected"},
		{"unknown reference", func(s *Suite) { s.Checks[0].Expected.Model = "ghost" }, "checks[0].expected.model"},
		{"bad analytic", func(s *Suite) {
			s.Checks[0].Expected = ExpectedConfig{Analytic: &AnalyticConfig{Kind: "theis"}}
		}, "checks[0].expected.analytic.kind"},
		{"times with analytic", func(s *Suite) {
			s.Checks[0].Kind = CheckKindHistory
			s.Checks[0].Times = []float64{0, 1}
			s.Checks[0].Expected = ExpectedConfig{Analytic: &AnalyticConfig{Kind: AnalyticConstant}}
		}, "checks[0].times"},
		{"times with curve distance", func(s *Suite) {
			s.Checks[0].Kind = CheckKindHistory
			s.Checks[0].Times = []float64{0, 1}
			s.Checks[0].CurveDistance = true
		}, "checks[0].times"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validSuite()
			tt.mutate(cfg)
			_, err := Validate(cfg)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, errors.ErrConfiguration)
			assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
		})
	}
}

func TestValidate_DerivedCycleMessage(t *testing.T) {
	t.Parallel()
	cfg := validSuite()
	cfg.FieldMaps["loop"] = FieldMapConfig{
		"a": {Derived: "pa_to_bar", Source: "b"},
		"b": {Derived: "bar_to_pa", Source: "c"},
		"c": {Derived: "pa_to_bar", Source: "a"},
	}

	_, err := Validate(cfg)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "field_maps.loop.a", ve.Field)
	assert.Contains(t, err.Error(), "derived fields form a cycle: a -> b -> c -> a")
}

func TestValidate_DerivedChain(t *testing.T) {
	t.Parallel()
	cfg := validSuite()
	cfg.FieldMaps["bar"]["P_pa"] = FieldConfig{Derived: "bar_to_pa", Source: "P_bar"}

	_, err := Validate(cfg)
	assert.NoError(t, err)
}

func TestParse_DerivedCycleRejected(t *testing.T) {
	t.Parallel()
	data := []byte(`name: loop
field_maps:
  m:
    a: {derived: pa_to_bar, source: b}
    b: {derived: bar_to_pa, source: a}
models:
  - name: ref
    simulator: aut2
    input: ref.dat
    field_map: m
`)
	_, _, err := Parse(data, FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derived fields form a cycle")
	assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
}

func TestValidate_EnforceLogicOff(t *testing.T) {
	t.Parallel()
	cfg := validSuite()
	off := false
	c := &cfg.Checks[0]
	c.Kind = CheckKindHistory
	c.Times = []float64{0, 1}
	c.CurveDistance = true
	c.EnforceLogic = &off

	_, err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()
	cfg := validSuite()
	cfg.Checks[0].CurveDistance = true
	cfg.Checks[0].FieldTolerances = map[string]float64{"T": 0.1, "P": 0.1}

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "only apply to history checks")
	assert.Contains(t, warnings[1], `"P" is not a checked field`)
}

func TestValidateName(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"a", "Theis", "avdonin-1d", "model_2", "v1.2", "9cells"} {
		assert.NoError(t, ValidateName("name", name), name)
	}
	for _, name := range []string{"", "-a", ".hidden", "two words", "a/b"} {
		assert.Error(t, ValidateName("name", name), name)
	}
}
