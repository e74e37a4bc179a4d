// Package verify runs the live check suites around an executed migration:
// pre-migration readiness, post-migration structure, and old/new data
// comparison. Results accumulate on the validator so one report covers the
// whole lifecycle of a table's migration.
package verify

import (
	"time"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// CheckResult records one check's outcome.
type CheckResult struct {
	CheckName string         `json:"check_name"`
	Status    Status         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Counters aggregate check outcomes across all suites run so far.
type Counters struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// SuiteRun is the recorded result of one suite invocation.
type SuiteRun struct {
	Suite   string        `json:"suite"`
	Table   string        `json:"table"`
	Results []CheckResult `json:"results"`
}

// Validator runs check suites for one old/new table pair over one owned
// session. It carries per-call accumulator state: construct one validator
// per concurrent caller.
type Validator struct {
	sess catalog.Session
	env  plan.EnvironmentProfile
	tp   *plan.TableMigrationPlan

	// OldTable and NewTable are the physical names of the pre-migration
	// table and its repartitioned replacement.
	OldTable string
	NewTable string

	suites   []SuiteRun
	counters Counters

	now func() time.Time // test hook
}

// NewValidator creates a validator for one table's migration. oldTable and
// newTable default to the plan's table name and "<name>_NEW".
func NewValidator(sess catalog.Session, env plan.EnvironmentProfile, tp *plan.TableMigrationPlan, oldTable, newTable string) *Validator {
	if oldTable == "" {
		oldTable = tp.TableName
	}
	if newTable == "" {
		newTable = tp.TableName + "_NEW"
	}
	return &Validator{
		sess:     sess,
		env:      env,
		tp:       tp,
		OldTable: oldTable,
		NewTable: newTable,
		now:      time.Now,
	}
}

// Suites returns every suite run so far, in order.
func (v *Validator) Suites() []SuiteRun {
	return v.suites
}

// Counters returns the aggregate counters across all suites run so far.
func (v *Validator) Counters() Counters {
	return v.counters
}

// beginSuite opens a new suite run and returns its index.
func (v *Validator) beginSuite(name string) int {
	v.suites = append(v.suites, SuiteRun{Suite: name, Table: v.tp.QualifiedName()})
	return len(v.suites) - 1
}

// record appends a result to the given suite and updates the counters.
func (v *Validator) record(suite int, name string, status Status, message string, details map[string]any) CheckResult {
	r := CheckResult{
		CheckName: name,
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: v.now(),
	}
	v.suites[suite].Results = append(v.suites[suite].Results, r)
	v.counters.Total++
	switch status {
	case StatusPass:
		v.counters.Passed++
	case StatusWarn:
		v.counters.Warned++
	case StatusFail:
		v.counters.Failed++
	}
	return r
}

// intervalFamily returns the date-arithmetic function family expected for an
// interval granularity: day-second intervals for HOUR and DAY, year-month
// intervals for WEEK and MONTH.
func intervalFamily(it plan.IntervalType) string {
	switch it {
	case plan.IntervalHour, plan.IntervalDay:
		return "NUMTODSINTERVAL"
	default:
		return "NUMTOYMINTERVAL"
	}
}
