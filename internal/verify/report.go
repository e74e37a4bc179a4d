package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Report is the structured migration verification report for one table.
type Report struct {
	GeneratedAt     time.Time  `json:"generated_at"`
	Table           string     `json:"table"`
	OldTable        string     `json:"old_table"`
	NewTable        string     `json:"new_table"`
	Counters        Counters   `json:"counters"`
	Suites          []SuiteRun `json:"suites"`
	Recommendations []string   `json:"recommendations"`
}

// BuildReport assembles the report from everything run so far.
func (v *Validator) BuildReport() *Report {
	return &Report{
		GeneratedAt:     v.now(),
		Table:           v.tp.QualifiedName(),
		OldTable:        v.OldTable,
		NewTable:        v.NewTable,
		Counters:        v.counters,
		Suites:          v.suites,
		Recommendations: v.recommendations(),
	}
}

// GenerateReport renders the human-readable summary document.
func (v *Validator) GenerateReport() string {
	return FormatText(v.BuildReport())
}

// recommendations derives next-step guidance from the accumulated results.
func (v *Validator) recommendations() []string {
	var recs []string

	if v.counters.Failed > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d check(s) failed; do not proceed with the table swap until they are resolved", v.counters.Failed))
	}
	for _, suite := range v.suites {
		for _, r := range suite.Results {
			if r.CheckName == "row_counts_match" && r.Status == StatusFail {
				recs = append(recs,
					"row counts differ between old and new tables; investigate missing data before any swap")
			}
			if r.CheckName == "foreign_key_dependents" && r.Status == StatusWarn {
				recs = append(recs,
					"re-enable and validate dependent foreign keys after the swap")
			}
		}
	}
	if v.counters.Failed == 0 && v.counters.Warned > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d check(s) warned; review the findings, then proceed when satisfied", v.counters.Warned))
	}
	if v.counters.Failed == 0 && v.counters.Warned == 0 && v.counters.Total > 0 {
		recs = append(recs, "all checks passed; proceed with the migration plan")
	}
	return recs
}

// WriteJSON writes the structured report.
func (r *Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FormatText renders the report as human-readable text.
func FormatText(r *Report) string {
	var b strings.Builder

	b.WriteString("=== partplan Migration Verification Report ===\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Table:     %s (old: %s, new: %s)\n\n", r.Table, r.OldTable, r.NewTable))

	b.WriteString("Summary:\n")
	b.WriteString(fmt.Sprintf("  Total:  %d\n", r.Counters.Total))
	b.WriteString(fmt.Sprintf("  Passed: %d\n", r.Counters.Passed))
	b.WriteString(fmt.Sprintf("  Warned: %d\n", r.Counters.Warned))
	b.WriteString(fmt.Sprintf("  Failed: %d\n\n", r.Counters.Failed))

	for _, suite := range r.Suites {
		b.WriteString(fmt.Sprintf("%s checks:\n", titleCase(suite.Suite)))
		for _, res := range suite.Results {
			b.WriteString(fmt.Sprintf("  [%-4s] %-28s %s\n", res.Status, res.CheckName, res.Message))
		}
		b.WriteString("\n")
	}

	var findings []CheckResult
	for _, suite := range r.Suites {
		for _, res := range suite.Results {
			if res.Status != StatusPass {
				findings = append(findings, res)
			}
		}
	}
	if len(findings) > 0 {
		b.WriteString("Findings:\n")
		for _, f := range findings {
			b.WriteString(fmt.Sprintf("  [%s] %s: %s\n", f.Status, f.CheckName, f.Message))
			for _, k := range sortedKeys(f.Details) {
				b.WriteString(fmt.Sprintf("      %s: %v\n", k, f.Details[k]))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Recommendations:\n")
	for i, rec := range r.Recommendations {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, rec))
	}

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
