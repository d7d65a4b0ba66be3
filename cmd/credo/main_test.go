package main

import (
	"os/exec"
	"strings"
	"testing"
)

// The binary links libhdf5 through cgo, so these tests build it with the go
// tool and are skipped in short mode.

func TestMain_Help(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the credo binary")
	}
	t.Parallel()

	out, err := exec.Command("go", "run", ".", "--help").CombinedOutput()
	if err != nil {
		t.Fatalf("--help failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(string(out), "credo") {
		t.Errorf("--help output does not name credo:\n%s", out)
	}
}

func TestMain_UnknownCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the credo binary")
	}
	t.Parallel()

	err := exec.Command("go", "run", ".", "simulate").Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error, got %v", err)
	}
	// go run reports the program's non-zero status as its own exit code 1.
	if exitErr.ExitCode() == 0 {
		t.Error("unknown command exited with 0")
	}
}
