package cli

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/credo/internal/benchmark"
	"github.com/AndreyAkinshin/credo/internal/config"
	"github.com/AndreyAkinshin/credo/internal/output"
)

var titleCase = cases.Title(language.English)

// printReport prints the summary of a suite run.
func printReport(w *output.Writer, r *benchmark.Report) {
	if r.DryRun {
		w.DryRunEnd()
		return
	}
	failed := r.Failed()

	if w.Quiet() {
		for _, c := range failed {
			w.Errorln("check %s failed: %s", c.Name, checkFailure(c))
		}
		return
	}

	w.SummaryHeader(titleCase.String(r.Name) + " Summary")

	w.SummarySectionLabel("Models:")
	for _, m := range r.Models {
		errMsg := ""
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		w.SummaryAction(m.Name, m.Err == nil, m.Detail(), errMsg)
	}

	if len(r.Checks) > 0 {
		w.Println("")
		w.SummarySectionLabel("Checks:")
		for _, c := range r.Checks {
			detail := "on " + c.Model
			if c.Check != nil {
				detail = titleCase.String(c.Check.Kind().String()) + " check " + detail
			}
			errMsg := ""
			if c.Err != nil {
				errMsg = c.Err.Error()
			}
			w.SummaryAction(c.Name, c.Passed, detail, errMsg)
			printFieldErrors(w, c)
		}
	}

	w.Println("")
	w.SummaryPassed("Passed", fmt.Sprintf("%d", len(r.Checks)-len(failed)))
	if len(failed) > 0 {
		w.SummaryFailed("Failed", fmt.Sprintf("%d", len(failed)))
	}
	w.SummaryItem("Total", fmt.Sprintf("%d", len(r.Checks)))
	if r.RecordPath != "" {
		w.SummaryItem("Record", r.RecordPath)
	}

	if r.Passed() {
		w.FinalSuccess("All %d checks passed.", len(r.Checks))
		return
	}
	if len(failed) == 0 {
		w.FinalFailure("Suite %s failed: not every model ran.", r.Name)
		return
	}
	w.FinalFailure("%d of %d checks failed.", len(failed), len(r.Checks))
}

// printFieldErrors prints a table of error statistics per compared field.
func printFieldErrors(w *output.Writer, c benchmark.CheckReport) {
	if c.Check == nil {
		return
	}
	var rows [][]string
	for _, cmp := range c.Check.Comparisons() {
		s := cmp.Summary()
		rows = append(rows, []string{
			cmp.Field,
			fmt.Sprintf("%.3e", s.Max),
			fmt.Sprintf("%.3e", s.Mean),
			fmt.Sprintf("%g", cmp.Tolerance),
			fmt.Sprintf("%d/%d", s.Exceeding, s.Count),
		})
	}
	if len(rows) == 0 {
		return
	}
	w.Table("        ", []string{"Field", "Max", "Mean", "Tol", "Exceeding"}, rows)
}

// printOutline lists the models and checks of a validated suite.
func printOutline(w *output.Writer, cfg *config.Suite) {
	models := make([]string, len(cfg.Models))
	for i, m := range cfg.Models {
		models[i] = fmt.Sprintf("%s (%s)", m.Name, m.Simulator)
		if m.Existing {
			models[i] += ", existing output"
		}
	}
	w.Section("Models")
	w.List(models)

	if len(cfg.Checks) == 0 {
		return
	}
	checks := make([]string, len(cfg.Checks))
	for i, c := range cfg.Checks {
		kind := c.Kind
		if kind == "" {
			kind = "field"
		}
		checks[i] = fmt.Sprintf("%s: %s check on %s (%s)", c.Name, kind, c.Model, strings.Join(c.Fields, ", "))
	}
	w.Section("Checks")
	w.List(checks)
}

// checkFailure describes why a check did not pass.
func checkFailure(c benchmark.CheckReport) string {
	if c.Err != nil {
		return c.Err.Error()
	}
	if c.Check == nil {
		return "not checked"
	}
	var fields []string
	for _, cmp := range c.Check.Comparisons() {
		if !cmp.Passed {
			fields = append(fields, cmp.Field)
		}
	}
	return "fields not within tolerance: " + strings.Join(fields, ", ")
}
