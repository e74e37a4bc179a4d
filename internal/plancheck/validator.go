// Package plancheck validates a migration plan document before any script is
// rendered. Four tiers (structural, logical, live database, best practice)
// run on every call: errors and warnings accumulate so the operator sees the
// complete picture, never just the first failure.
package plancheck

import (
	"context"
	"fmt"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// Result is the outcome of one validation call.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string

	// DiscoveryGenerated reports the provenance check; callers decide
	// whether a hand-authored document blocks.
	DiscoveryGenerated bool
}

// Validator validates plan documents. The accumulator state is reset at the
// start of each Validate call; a single instance must not be used by two
// callers concurrently; construct one per caller instead.
type Validator struct {
	errors   []string
	warnings []string
}

// NewValidator returns a fresh validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs all tiers against the document. The live-database tier runs
// only when checkDB is set and a session is supplied; otherwise a warning
// records the skip. No tier short-circuits another.
func (v *Validator) Validate(ctx context.Context, doc *plan.Document, checkDB bool, sess catalog.Session) Result {
	v.errors = v.errors[:0]
	v.warnings = v.warnings[:0]

	v.checkStructure(doc)
	v.checkLogical(doc)

	if checkDB && sess != nil {
		v.checkLive(ctx, doc, sess)
	} else {
		v.warnf("live-database checks skipped (no database session)")
	}

	v.checkBestPractice(doc)
	v.checkMetadata(doc)

	discoveryGenerated := doc.DiscoveryGenerated()
	if !discoveryGenerated {
		v.warnf("metadata.discovery_validation_hash: missing or mismatched; document is not discovery-generated")
	}

	return Result{
		Valid:              len(v.errors) == 0,
		Errors:             append([]string(nil), v.errors...),
		Warnings:           append([]string(nil), v.warnings...),
		DiscoveryGenerated: discoveryGenerated,
	}
}

// checkMetadata applies the soft document-level invariants. Count mismatches
// stay warnings: documents are expected to be hand-pruned after discovery.
func (v *Validator) checkMetadata(doc *plan.Document) {
	if doc.Metadata.TotalTablesFound != len(doc.Tables) {
		v.warnf("metadata.total_tables_found is %d but document has %d tables",
			doc.Metadata.TotalTablesFound, len(doc.Tables))
	}
	if enabled := doc.EnabledCount(); doc.Metadata.TablesSelectedForMigration != enabled {
		v.warnf("metadata.tables_selected_for_migration is %d but %d tables are enabled",
			doc.Metadata.TablesSelectedForMigration, enabled)
	}
}

func (v *Validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// tablePath builds the field path prefix for the i-th table.
func tablePath(i int) string {
	return fmt.Sprintf("tables[%d]", i)
}
