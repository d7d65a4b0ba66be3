package credo_test

import (
	"testing"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/pkg/credo"
)

func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", credo.ExitSuccess, 0},
		{"ExitFailure", credo.ExitFailure, 1},
		{"ExitConfigError", credo.ExitConfigError, 2},
		{"ExitEnvError", credo.ExitEnvError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("credo.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// TestExitCodesFromErrors checks that the CLI error mapping produces the
// public codes.
func TestExitCodesFromErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, credo.ExitSuccess},
		{"runtime", errors.New("simulator crashed"), credo.ExitFailure},
		{"config", errors.Config("invalid suite"), credo.ExitConfigError},
		{"environment", errors.Environment("autough2 not found"), credo.ExitEnvError},
		{"field not found", errors.FieldNotFound("ref", "Pressure"), credo.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
