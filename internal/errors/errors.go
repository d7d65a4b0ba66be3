// Package errors provides the error taxonomy and exit codes for credo.
//
// Comparison code distinguishes three failure classes: configuration errors
// (bad or missing construction arguments), missing fields in a result store,
// and dimension mismatches between expected and actual series. Supporting
// components (job launch, record files) use the runtime, not-found and
// environment kinds.
package errors

import (
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/credo/pkg/credo"
)

// Exit codes returned by the credo CLI.
const (
	ExitSuccess          = credo.ExitSuccess     // Success, every benchmark passed
	ExitRuntimeError     = credo.ExitFailure     // Runtime error or failed benchmark
	ExitConfigError      = credo.ExitConfigError // Configuration error (invalid suite, bad arguments)
	ExitEnvironmentError = credo.ExitEnvError    // Environment error (simulator not installed, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindFieldNotFound
	KindDimensionMismatch
	KindEnvironment
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindNotFound:
		return "not found"
	case KindFieldNotFound:
		return "field not found"
	case KindDimensionMismatch:
		return "dimension mismatch"
	case KindEnvironment:
		return "environment error"
	default:
		return "runtime error"
	}
}

// Sentinels for errors.Is matching against a CredoError of the same kind.
var (
	ErrConfiguration     = &CredoError{Kind: KindConfig, Message: "configuration error"}
	ErrFieldNotFound     = &CredoError{Kind: KindFieldNotFound, Message: "field not found"}
	ErrDimensionMismatch = &CredoError{Kind: KindDimensionMismatch, Message: "dimension mismatch"}
)

// CredoError is the base error type for credo.
type CredoError struct {
	Kind    ErrorKind
	Message string
	Model   string // Model (result) name if applicable
	Field   string // Field name if applicable
	Cause   error  // Underlying error
}

func (e *CredoError) Error() string {
	if e.Model != "" && e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Model, e.Field, e.Message)
	}
	if e.Model != "" {
		return fmt.Sprintf("[%s] %s", e.Model, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *CredoError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CredoError sentinel of the same kind.
func (e *CredoError) Is(target error) bool {
	t, ok := target.(*CredoError)
	if !ok {
		return false
	}
	return t == ErrConfiguration && e.Kind == KindConfig ||
		t == ErrFieldNotFound && e.Kind == KindFieldNotFound ||
		t == ErrDimensionMismatch && e.Kind == KindDimensionMismatch
}

// ExitCode returns the appropriate exit code for this error.
func (e *CredoError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *CredoError {
	return &CredoError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *CredoError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *CredoError {
	return &CredoError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *CredoError {
	return Config(fmt.Sprintf(format, args...))
}

// FieldNotFound creates an error for a field absent from a result store.
func FieldNotFound(model, field string) *CredoError {
	return &CredoError{
		Kind:    KindFieldNotFound,
		Model:   model,
		Field:   field,
		Message: "field not found",
	}
}

// DimensionMismatch creates an error for series whose lengths disagree.
func DimensionMismatch(field string, expected, actual int) *CredoError {
	return &CredoError{
		Kind:    KindDimensionMismatch,
		Field:   field,
		Message: fmt.Sprintf("expected %d values, got %d", expected, actual),
	}
}

// Environment creates a new environment error.
func Environment(message string) *CredoError {
	return &CredoError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *CredoError {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *CredoError {
	return &CredoError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapConfig marks err as a configuration error. The message includes the
// cause's text.
func WrapConfig(err error, message string) *CredoError {
	return &CredoError{
		Kind:    KindConfig,
		Message: fmt.Sprintf("%s: %v", message, err),
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *CredoError {
	return &CredoError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// WithField returns a copy of e naming field. Existing field context is kept.
func WithField(err error, field string) error {
	var ce *CredoError
	if !errors.As(err, &ce) || ce.Field != "" {
		return err
	}
	cp := *ce
	cp.Field = field
	return &cp
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *CredoError
	if errors.As(err, &ce) {
		return ce.ExitCode()
	}
	return ExitRuntimeError
}
