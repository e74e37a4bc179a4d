// Package discovery enumerates the tables of a schema, profiles each one
// from the data dictionary, and assembles a migration plan document with the
// recommendation engine's target configuration per table.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
	"github.com/partplan/partplan/internal/recommend"
)

// Options configure one discovery run.
type Options struct {
	Schema      string
	ServiceName string
	Environment plan.EnvironmentProfile

	// Include/Exclude are name globs (path.Match syntax). Empty Include
	// matches everything.
	Include []string
	Exclude []string

	// QueryTimeout bounds each catalog query; expiry is treated as that
	// table's failure only. Zero means 5 minutes.
	QueryTimeout time.Duration

	Logger *slog.Logger
}

// TableResult is the per-table outcome of a run: either an analyzed plan or
// a skip with its reason. Failure isolation is explicit in this type rather
// than hidden in error handling.
type TableResult struct {
	TableName string
	Plan      *plan.TableMigrationPlan
	Skipped   bool
	Reason    string
}

// Summary is the human-readable outcome of a run.
type Summary struct {
	TablesFound   int
	TablesEnabled int
	TablesSkipped int
	Warnings      []string
}

// String renders the one-line summary reported to the operator.
func (s *Summary) String() string {
	return fmt.Sprintf("%d tables found, %d enabled for migration, %d skipped",
		s.TablesFound, s.TablesEnabled, s.TablesSkipped)
}

// Discoverer runs schema discovery over one owned session.
type Discoverer struct {
	sess catalog.Session
	opts Options
}

// New creates a Discoverer. The session must be connected and is owned by
// this discoverer for the duration of Run.
func New(sess catalog.Session, opts Options) *Discoverer {
	if opts.QueryTimeout == 0 {
		opts.QueryTimeout = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Schema = strings.ToUpper(opts.Schema)
	return &Discoverer{sess: sess, opts: opts}
}

// Run discovers every matching table and returns the completed plan document
// plus a summary. A failure analyzing one table records that table with
// best-effort partial data and a warning; it never aborts the run. Only a
// failure to enumerate tables at all is fatal.
func (d *Discoverer) Run(ctx context.Context) (*plan.Document, *Summary, error) {
	names, err := d.listTables(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing tables in %s: %w", d.opts.Schema, err)
	}

	// Results land in pre-indexed slots so output order stays deterministic.
	results := make([]TableResult, len(names))
	for i, name := range names {
		results[i] = d.analyzeTable(ctx, name)
	}

	now := time.Now().UTC()
	doc := &plan.Document{
		Metadata: plan.Metadata{
			GeneratedDate:         now.Format(time.RFC3339),
			SourceSchema:          d.opts.Schema,
			SourceDatabaseService: d.opts.ServiceName,
			DiscoveryCriteria:     d.criteria(),
		},
		Environment: d.opts.Environment,
	}

	summary := &Summary{TablesFound: len(names)}
	for _, res := range results {
		if res.Skipped {
			summary.TablesSkipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("%s: %s", res.TableName, res.Reason))
			d.opts.Logger.Warn("table analysis incomplete", "table", res.TableName, "reason", res.Reason)
		}
		if res.Plan != nil {
			doc.Tables = append(doc.Tables, *res.Plan)
			if res.Plan.Enabled {
				summary.TablesEnabled++
			}
		}
	}

	doc.Metadata.TotalTablesFound = len(doc.Tables)
	doc.Metadata.TablesSelectedForMigration = doc.EnabledCount()
	doc.StampProvenance()

	return doc, summary, nil
}

// analyzeTable builds one table's plan. On a query failure the profile keeps
// whatever was gathered so far and the result is marked skipped with the
// failing step as the reason.
func (d *Discoverer) analyzeTable(ctx context.Context, name string) TableResult {
	profile := &plan.TableProfile{Owner: d.opts.Schema, Name: name}
	res := TableResult{TableName: name}

	steps := []struct {
		name string
		fn   func(context.Context, *plan.TableProfile) error
	}{
		{"table statistics", d.loadStats},
		{"partition state", d.loadPartitionState},
		{"columns", d.loadColumns},
		{"lob segments", d.loadLOBs},
		{"indexes", d.loadIndexes},
		{"grants", d.loadGrants},
	}

	var warnings []string
	for _, step := range steps {
		stepCtx, cancel := context.WithTimeout(ctx, d.opts.QueryTimeout)
		err := step.fn(stepCtx, profile)
		cancel()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reading %s: %v", step.name, err))
			if !res.Skipped {
				res.Skipped = true
				res.Reason = fmt.Sprintf("reading %s: %v", step.name, err)
			}
		}
	}

	classifyColumns(profile)

	tp := plan.TableMigrationPlan{
		Owner:             d.opts.Schema,
		TableName:         name,
		CurrentState:      *profile,
		Target:            recommend.BuildTarget(profile, d.opts.Environment, time.Now().UTC()),
		Settings:          recommend.BuildSettings(profile),
		MigrationAction:   recommend.ActionFor(profile),
		DiscoveryWarnings: warnings,
	}
	// A table with incomplete analysis is never auto-enabled.
	tp.Enabled = !res.Skipped && recommend.ShouldEnable(profile)

	res.Plan = &tp
	return res
}

func (d *Discoverer) criteria() string {
	parts := []string{fmt.Sprintf("schema=%s", d.opts.Schema)}
	if len(d.opts.Include) > 0 {
		parts = append(parts, fmt.Sprintf("include=%s", strings.Join(d.opts.Include, ",")))
	}
	if len(d.opts.Exclude) > 0 {
		parts = append(parts, fmt.Sprintf("exclude=%s", strings.Join(d.opts.Exclude, ",")))
	}
	return strings.Join(parts, " ")
}

// matchesPatterns applies the include/exclude globs to a table name.
func (d *Discoverer) matchesPatterns(name string) bool {
	if len(d.opts.Include) > 0 {
		included := false
		for _, pat := range d.opts.Include {
			if ok, _ := path.Match(strings.ToUpper(pat), name); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pat := range d.opts.Exclude {
		if ok, _ := path.Match(strings.ToUpper(pat), name); ok {
			return false
		}
	}
	return true
}
