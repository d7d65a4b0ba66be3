package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndreyAkinshin/credo/internal/check"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/testing/mocks"
)

func TestModel_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	submit := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := Model{
		ModelName:  "model",
		OutputPath: dir,
		Job: NewJob(jobrunner.JobMetaInfo{
			ID:         "b6f3c0de-0000-4000-8000-000000000001",
			RunType:    jobrunner.RunTypeSimple,
			RunCommand: "autough2_4 < model_autough2_4.in",
			SubmitTime: submit,
			Walltime:   1500 * time.Millisecond,
		}),
	}

	path, err := WriteModel("", m)
	if err != nil {
		t.Fatalf("WriteModel() error = %v", err)
	}
	if filepath.Base(path) != "ModelResult-model.xml" {
		t.Errorf("WriteModel() path = %q", path)
	}

	got, err := ReadFromDir(dir)
	if err != nil {
		t.Fatalf("ReadFromDir() error = %v", err)
	}
	if got.ModelName != "model" || got.OutputPath != dir {
		t.Errorf("ReadFromDir() = %+v", got)
	}
	if got.Job == nil {
		t.Fatal("job metadata missing")
	}
	meta, err := got.Job.MetaInfo()
	if err != nil {
		t.Fatalf("MetaInfo() error = %v", err)
	}
	if meta.Walltime != 1500*time.Millisecond || !meta.SubmitTime.Equal(submit) {
		t.Errorf("MetaInfo() = %+v", meta)
	}
	if meta.RunCommand != "autough2_4 < model_autough2_4.in" {
		t.Errorf("RunCommand = %q", meta.RunCommand)
	}
}

func TestModel_XMLLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rec.xml")
	if err := Write(path, Model{ModelName: "m", OutputPath: "out", Job: &Job{RunType: "Simple", RunCommand: "sim"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<?xml", "<ModelResult>", "<modelName>m</modelName>", "<jobMetaInfo>", "<runCommand>sim</runCommand>"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("record missing %q:\n%s", want, data)
		}
	}
}

func TestReadFromDir_Count(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		models []string
	}{
		{"empty", nil},
		{"two records", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			for _, name := range tt.models {
				if _, err := WriteModel(dir, Model{ModelName: name, OutputPath: dir}); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := ReadFromDir(dir); err == nil {
				t.Error("ReadFromDir() error = nil")
			}
		})
	}
}

func fieldCheck(t *testing.T) *check.ToleranceCheck {
	t.Helper()
	tc, err := check.NewFieldCheck(check.Config{
		Name:        "final",
		Fields:      []string{"P"},
		Tolerance:   check.ToleranceSpec{Default: 0.01},
		Expected:    check.Reference(mocks.NewResult("ref").WithSnapshot("P", 100, 100)),
		OutputIndex: -1,
	})
	if err != nil {
		t.Fatalf("NewFieldCheck() error = %v", err)
	}
	return tc
}

func TestNewCheck(t *testing.T) {
	t.Parallel()
	tc := fieldCheck(t)
	if _, err := tc.Check(mocks.NewResult("res").WithSnapshot("P", 100, 150)); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	c := NewCheck(tc, "res", nil)
	if c.Status != StatusFail || c.Passed() {
		t.Errorf("Status = %q, want %q", c.Status, StatusFail)
	}
	if c.Type != "fieldWithinTol" || c.Spec.OutputIndex == nil || c.Spec.OutputIndex.Value != "-1" {
		t.Errorf("spec = %+v", c.Spec)
	}
	if c.Spec.CellIndex != nil {
		t.Error("field check recorded a cell index")
	}
	if len(c.Spec.Fields) != 1 || c.Spec.Fields[0].Tol != "0.01" {
		t.Errorf("fields = %+v", c.Spec.Fields)
	}

	fr := c.Result.Fields[0]
	if fr.AllErrorsWithinTol {
		t.Error("AllErrorsWithinTol = true")
	}
	want := []ErrorEntry{
		{Index: 0, Error: "0.000000e+00", WithinTol: true},
		{Index: 1, Error: "5.000000e-01", WithinTol: false},
	}
	if fmt.Sprint(fr.Errors) != fmt.Sprint(want) {
		t.Errorf("Errors = %v, want %v", fr.Errors, want)
	}
}

func TestNewCheck_Error(t *testing.T) {
	t.Parallel()
	tc := fieldCheck(t)
	_, err := tc.Check(mocks.NewResult("res"))
	if err == nil {
		t.Fatal("Check() on a result without fields succeeded")
	}
	c := NewCheck(tc, "res", err)
	if c.Status != StatusError || c.Result.Error == "" {
		t.Errorf("record = %+v", c)
	}
	if len(c.Result.Fields) != 0 {
		t.Error("errored check recorded field results")
	}
}

func TestBenchmark_RoundTrip(t *testing.T) {
	t.Parallel()
	tc := fieldCheck(t)
	if _, err := tc.Check(mocks.NewResult("res").WithSnapshot("P", 100, 100)); err != nil {
		t.Fatal(err)
	}
	pass := NewCheck(tc, "res", nil)

	b := NewBenchmark("suite", "two checks", []Model{{ModelName: "res", OutputPath: "out"}}, []Check{pass})
	if b.Status != StatusPass {
		t.Errorf("Status = %q, want Pass", b.Status)
	}
	failing := NewBenchmark("suite", "", nil, []Check{pass, {Name: "broken", Status: StatusError}})
	if failing.Status != StatusFail {
		t.Errorf("Status = %q, want Fail", failing.Status)
	}

	path := filepath.Join(t.TempDir(), b.Filename())
	if err := Write(path, b); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var got Benchmark
	if err := Read(path, &got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Name != "suite" || len(got.Checks) != 1 || got.Checks[0].Name != "final" || len(got.Models) != 1 {
		t.Errorf("Read() = %+v", got)
	}
	if got.Checks[0].Result.Fields[0].Errors[1].Error != "0.000000e+00" {
		t.Errorf("errors = %+v", got.Checks[0].Result.Fields[0].Errors)
	}
}

func TestNewCheck_HistoryLayout(t *testing.T) {
	t.Parallel()
	tc, err := check.NewHistoryCheck(check.Config{
		Name:      "well",
		Fields:    []string{"T"},
		Tolerance: check.ToleranceSpec{Default: 0.01},
		Expected:  check.Reference(mocks.NewResult("ref").WithTimes(0, 10, 20).WithHistory("T", 20, 21, 22)),
	})
	if err != nil {
		t.Fatalf("NewHistoryCheck() error = %v", err)
	}
	if _, err := tc.Check(mocks.NewResult("res").WithTimes(0, 10, 20).WithHistory("T", 20, 21, 23)); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	b := NewBenchmark("suite", "", nil, []Check{NewCheck(tc, "res", nil)})
	path := filepath.Join(t.TempDir(), b.Filename())
	if err := Write(path, b); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`allTimesWithinTol="false"`, "<timesError>", `<timeError num="0"`, `<timeError num="2"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("record missing %q:\n%s", want, data)
		}
	}
	for _, unwanted := range []string{"allErrorsWithinTol", "<errors>", "<error index="} {
		if strings.Contains(string(data), unwanted) {
			t.Errorf("history record contains %q:\n%s", unwanted, data)
		}
	}

	var got Benchmark
	if err := Read(path, &got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	fr := got.Checks[0].Result.Fields[0]
	if !fr.History || fr.AllErrorsWithinTol || len(fr.Errors) != 3 {
		t.Fatalf("field result = %+v", fr)
	}
	if fr.Errors[2].Index != 2 || fr.Errors[2].WithinTol {
		t.Errorf("Errors[2] = %+v, want num 2 outside tolerance", fr.Errors[2])
	}
}

func TestNewCheck_FieldLayout(t *testing.T) {
	t.Parallel()
	tc := fieldCheck(t)
	if _, err := tc.Check(mocks.NewResult("res").WithSnapshot("P", 100, 100)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ck.xml")
	if err := Write(path, NewCheck(tc, "res", nil)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`allErrorsWithinTol="true"`, "<errors>", `<error index="1"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("record missing %q:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), "timesError") {
		t.Errorf("field record contains timesError:\n%s", data)
	}
}
