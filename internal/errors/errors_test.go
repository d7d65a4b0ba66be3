package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCredoError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CredoError
		expected string
	}{
		{
			name:     "message only",
			err:      &CredoError{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with model",
			err:      &CredoError{Model: "waiwera", Message: "run failed"},
			expected: "[waiwera] run failed",
		},
		{
			name:     "with model and field",
			err:      &CredoError{Model: "aut2", Field: "Pressure", Message: "field not found"},
			expected: "[aut2] Pressure: field not found",
		},
		{
			name:     "field without model",
			err:      &CredoError{Field: "Temperature", Message: "expected 3 values, got 2"},
			expected: "Temperature: expected 3 values, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCredoError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &CredoError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}

	errNoCause := &CredoError{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestCredoError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"not found", KindNotFound, ExitRuntimeError},
		{"field not found", KindFieldNotFound, ExitRuntimeError},
		{"dimension mismatch", KindDimensionMismatch, ExitRuntimeError},
		{"environment", KindEnvironment, ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &CredoError{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"config matches", Config("bad"), ErrConfiguration, true},
		{"field matches", FieldNotFound("m", "Pressure"), ErrFieldNotFound, true},
		{"dimension matches", DimensionMismatch("T", 3, 2), ErrDimensionMismatch, true},
		{"wrapped field matches", fmt.Errorf("check: %w", FieldNotFound("m", "T")), ErrFieldNotFound, true},
		{"config is not field", Config("bad"), ErrFieldNotFound, false},
		{"runtime matches nothing", New("boom"), ErrConfiguration, false},
		{"plain error", errors.New("plain"), ErrDimensionMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldNotFound(t *testing.T) {
	err := FieldNotFound("waiwera", "fluid_pressure")

	if err.Kind != KindFieldNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindFieldNotFound)
	}
	expected := "[waiwera] fluid_pressure: field not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConfigf(t *testing.T) {
	err := Configf("field %q: %s", "fields", "is required")

	if err.Kind != KindConfig {
		t.Errorf("Kind = %v, want %v", err.Kind, KindConfig)
	}
	expected := `field "fields": is required`
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("original error")
	err := Wrap(cause, "wrapped message")

	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return original cause")
	}
}

func TestWrapConfig(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := WrapConfig(cause, "failed to decode suite")

	if got, want := err.Error(), "failed to decode suite: yaml: line 3: mapping values are not allowed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("WrapConfig() should match ErrConfiguration")
	}
	if !errors.Is(err, cause) {
		t.Error("WrapConfig() should keep the cause in the chain")
	}
	if GetExitCode(err) != ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", GetExitCode(err), ExitConfigError)
	}
}

func TestWithField(t *testing.T) {
	base := DimensionMismatch("", 3, 2)
	got := WithField(base, "Temperature")

	var ce *CredoError
	if !errors.As(got, &ce) {
		t.Fatalf("WithField() returned %T, want *CredoError", got)
	}
	if ce.Field != "Temperature" {
		t.Errorf("Field = %q, want %q", ce.Field, "Temperature")
	}
	if base.Field != "" {
		t.Error("WithField() must not modify the original error")
	}

	// Existing field context wins
	named := FieldNotFound("m", "Pressure")
	if got := WithField(named, "Other"); got != error(named) {
		t.Errorf("WithField() = %v, want original error", got)
	}

	plain := errors.New("plain")
	if got := WithField(plain, "Pressure"); got != plain {
		t.Errorf("WithField() on plain error = %v, want unchanged", got)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("model", "nonexistent")

	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
	expected := "model not found: nonexistent"
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"runtime", New("runtime"), ExitRuntimeError},
		{"config", Config("config"), ExitConfigError},
		{"wrapped config", fmt.Errorf("load: %w", Config("config")), ExitConfigError},
		{"environment", Environment("no simulator"), ExitEnvironmentError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
