package mocks

import (
	"errors"
	"sync"
	"testing"

	credoerrors "github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/result"
)

func TestNewResult_Defaults(t *testing.T) {
	t.Parallel()
	m := NewResult("test")

	if m.Name() != "test" {
		t.Errorf("Name() = %q, want %q", m.Name(), "test")
	}
	times, _ := m.Times()
	if len(times) != 1 || times[0] != 0 {
		t.Errorf("Times() = %v, want [0]", times)
	}
}

func TestResult_WithSnapshot(t *testing.T) {
	t.Parallel()
	m := NewResult("test").WithTimes(0, 10).WithSnapshot("T", 1, 2, 3)

	got, err := m.FieldAt("T", -1)
	if err != nil {
		t.Fatalf("FieldAt() error = %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("FieldAt() = %v, want [1 2 3]", got)
	}
}

func TestResult_WithHistory(t *testing.T) {
	t.Parallel()
	m := NewResult("test").WithTimes(0, 1, 2).WithHistory("P", 5, 6, 7)

	times, values, err := m.FieldHistory("P", 0)
	if err != nil {
		t.Fatalf("FieldHistory() error = %v", err)
	}
	if len(times) != 3 || values[1] != 6 {
		t.Errorf("FieldHistory() = %v, %v", times, values)
	}
	if _, _, err := m.FieldHistory("P", 1); err == nil {
		t.Error("FieldHistory() out of range cell should fail")
	}
}

func TestResult_MissingField(t *testing.T) {
	t.Parallel()
	m := NewResult("test")

	_, err := m.FieldAt("missing", 0)
	if !errors.Is(err, credoerrors.ErrFieldNotFound) {
		t.Errorf("FieldAt() error = %v, want field not found", err)
	}
}

func TestResult_WithFieldErr(t *testing.T) {
	t.Parallel()
	want := errors.New("boom")
	m := NewResult("test").WithSnapshot("T", 1).WithFieldErr(want)

	if _, err := m.FieldAt("T", 0); !errors.Is(err, want) {
		t.Errorf("FieldAt() error = %v, want %v", err, want)
	}
}

func TestResult_Positions(t *testing.T) {
	t.Parallel()
	m := NewResult("test").WithPositions(result.Point{X: 1}, result.Point{X: 2})

	got, _ := m.Positions()
	if len(got) != 2 || got[1].X != 2 {
		t.Errorf("Positions() = %v", got)
	}
}

func TestResult_ConcurrentTracking(t *testing.T) {
	t.Parallel()
	m := NewResult("test").WithSnapshot("T", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.FieldAt("T", 0)
			_ = m.Close()
		}()
	}
	wg.Wait()

	if got := len(m.Requested()); got != 50 {
		t.Errorf("len(Requested()) = %d, want 50", got)
	}
	if got := m.CloseCount(); got != 50 {
		t.Errorf("CloseCount() = %d, want 50", got)
	}
}

func TestStore(t *testing.T) {
	t.Parallel()
	s := NewStore().
		WithColumn("time", 0, 1).
		WithTable("/cell_fields/T", [][]float64{{1, 2}, {3, 4}})

	if !s.Has("cell_fields/T") || !s.Has("/time") {
		t.Error("Has() = false for stored datasets")
	}
	if s.Has("missing") {
		t.Error("Has() = true for missing dataset")
	}

	dims, err := s.Dims("cell_fields/T")
	if err != nil || len(dims) != 2 || dims[0] != 2 || dims[1] != 2 {
		t.Errorf("Dims() = %v, %v", dims, err)
	}
	data, _ := s.ReadFloat64("cell_fields/T")
	if len(data) != 4 || data[2] != 3 {
		t.Errorf("ReadFloat64() = %v, want row-major [1 2 3 4]", data)
	}

	if _, err := s.ReadFloat64("missing"); err == nil {
		t.Error("ReadFloat64() on missing dataset should fail")
	}

	_ = s.Close()
	if s.CloseCount() != 1 {
		t.Errorf("CloseCount() = %d, want 1", s.CloseCount())
	}
}
