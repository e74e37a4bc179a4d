// Package render is the boundary to the DDL script generator. The core
// supplies a complete, typed per-table context; a Renderer turns it into
// script text that DBAs execute. The core never inspects rendered output.
package render

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/partplan/partplan/internal/plan"
)

//go:embed templates/*.sql.tmpl
var templateFS embed.FS

// Context is the flattened per-table rendering context: the table's plan
// merged with the resolved environment.
type Context struct {
	Owner     string
	TableName string
	OldTable  string
	NewTable  string

	PartitionColumn       string
	IntervalType          string
	IntervalValue         int
	IntervalFunction      string // NUMTODSINTERVAL or NUMTOYMINTERVAL expression
	InitialPartitionValue string

	SubpartitionType   string
	SubpartitionColumn string
	SubpartitionCount  int

	Tablespace     string
	LOBTablespaces map[string]string
	ParallelDegree int

	MigrationAction string
	MigrateData     bool
	BackupOldTable  bool
	Environment     string
}

// NewContext flattens a table plan and environment into a rendering context.
func NewContext(t *plan.TableMigrationPlan, env *plan.EnvironmentProfile) Context {
	ts := t.Target.Tablespace
	if ts == "" {
		ts = env.DefaultTablespace
	}
	return Context{
		Owner:                 t.Owner,
		TableName:             t.TableName,
		OldTable:              t.TableName + "_OLD",
		NewTable:              t.TableName + "_NEW",
		PartitionColumn:       t.Target.PartitionColumn,
		IntervalType:          string(t.Target.IntervalType),
		IntervalValue:         t.Target.IntervalValue,
		IntervalFunction:      intervalExpression(t.Target.IntervalType, t.Target.IntervalValue),
		InitialPartitionValue: t.Target.InitialPartitionValue,
		SubpartitionType:      string(t.Target.SubpartitionType),
		SubpartitionColumn:    t.Target.SubpartitionColumn,
		SubpartitionCount:     t.Target.SubpartitionCount,
		Tablespace:            ts,
		LOBTablespaces:        t.Target.LOBTablespaces,
		ParallelDegree:        t.Target.ParallelDegree,
		MigrationAction:       string(t.MigrationAction),
		MigrateData:           t.Settings.MigrateData,
		BackupOldTable:        t.Settings.BackupOldTable,
		Environment:           env.Name,
	}
}

// intervalExpression builds the interval clause for the target granularity.
// HOUR and DAY use day-second intervals; WEEK and MONTH use year-month
// intervals, WEEK at month precision.
func intervalExpression(it plan.IntervalType, value int) string {
	switch it {
	case plan.IntervalHour:
		return fmt.Sprintf("NUMTODSINTERVAL(%d, 'HOUR')", value)
	case plan.IntervalDay:
		return fmt.Sprintf("NUMTODSINTERVAL(%d, 'DAY')", value)
	case plan.IntervalWeek:
		return fmt.Sprintf("NUMTOYMINTERVAL(%d, 'MONTH')", value)
	default:
		return fmt.Sprintf("NUMTOYMINTERVAL(%d, 'MONTH')", value)
	}
}

// Renderer renders a named script from a table context.
type Renderer interface {
	Render(name string, ctx Context) (string, error)
	Names() []string
}

// TemplateRenderer renders the embedded script template set.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.sql.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing script templates: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes the named template against the context.
func (r *TemplateRenderer) Render(name string, ctx Context) (string, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name+".sql.tmpl", ctx); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

// Names lists the available script names in stable order.
func (r *TemplateRenderer) Names() []string {
	var names []string
	for _, t := range r.tmpl.Templates() {
		names = append(names, strings.TrimSuffix(t.Name(), ".sql.tmpl"))
	}
	sort.Strings(names)
	return names
}

var _ Renderer = (*TemplateRenderer)(nil)
