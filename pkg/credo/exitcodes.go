// Package credo provides public constants for external tools integrating
// with credo.
package credo

// Exit codes returned by the credo CLI.
// These constants allow CI scripts and wrappers to check exit codes
// symbolically rather than using magic numbers.
const (
	// ExitSuccess indicates every model ran and every check passed.
	ExitSuccess = 0

	// ExitFailure indicates a failed check, a failed model run, or another
	// runtime failure.
	ExitFailure = 1

	// ExitConfigError indicates an invalid suite file or bad arguments.
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (simulator or MPI launcher
	// not installed, missing HDF5 library, etc.).
	ExitEnvError = 3
)
