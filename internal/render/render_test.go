package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/partplan/partplan/internal/plan"
)

func testTablePlan() *plan.TableMigrationPlan {
	return &plan.TableMigrationPlan{
		Enabled:   true,
		Owner:     "SALES",
		TableName: "ORDERS",
		Target: plan.TargetConfiguration{
			PartitionType:         "INTERVAL",
			PartitionColumn:       "CREATED_AT",
			IntervalType:          plan.IntervalDay,
			IntervalValue:         1,
			InitialPartitionValue: "TO_DATE('2026-04-01', 'YYYY-MM-DD')",
			SubpartitionType:      plan.SubpartitionHash,
			SubpartitionColumn:    "CUSTOMER_ID",
			SubpartitionCount:     8,
			Tablespace:            "SALES_DATA",
			ParallelDegree:        4,
		},
		Settings: plan.MigrationSettings{
			MigrateData:    true,
			BackupOldTable: true,
		},
		MigrationAction: plan.ActionAddIntervalHash,
	}
}

func testEnv() *plan.EnvironmentProfile {
	env := plan.GlobalProfile()
	env.Name = "prod"
	return &env
}

func TestNewContext(t *testing.T) {
	ctx := NewContext(testTablePlan(), testEnv())

	if ctx.OldTable != "ORDERS_OLD" || ctx.NewTable != "ORDERS_NEW" {
		t.Errorf("table names = %s, %s, want ORDERS_OLD, ORDERS_NEW", ctx.OldTable, ctx.NewTable)
	}
	if ctx.IntervalFunction != "NUMTODSINTERVAL(1, 'DAY')" {
		t.Errorf("IntervalFunction = %q", ctx.IntervalFunction)
	}
	if ctx.Tablespace != "SALES_DATA" {
		t.Errorf("Tablespace = %q, want the plan's SALES_DATA", ctx.Tablespace)
	}
	if ctx.Environment != "prod" {
		t.Errorf("Environment = %q, want prod", ctx.Environment)
	}
}

func TestNewContext_TablespaceFallsBackToEnvironment(t *testing.T) {
	tp := testTablePlan()
	tp.Target.Tablespace = ""
	env := testEnv()

	ctx := NewContext(tp, env)
	if ctx.Tablespace != env.DefaultTablespace {
		t.Errorf("Tablespace = %q, want environment default %q", ctx.Tablespace, env.DefaultTablespace)
	}
}

func TestIntervalExpression(t *testing.T) {
	tests := []struct {
		it    plan.IntervalType
		value int
		want  string
	}{
		{plan.IntervalHour, 1, "NUMTODSINTERVAL(1, 'HOUR')"},
		{plan.IntervalDay, 1, "NUMTODSINTERVAL(1, 'DAY')"},
		{plan.IntervalDay, 7, "NUMTODSINTERVAL(7, 'DAY')"},
		{plan.IntervalWeek, 1, "NUMTOYMINTERVAL(1, 'MONTH')"},
		{plan.IntervalMonth, 1, "NUMTOYMINTERVAL(1, 'MONTH')"},
		{plan.IntervalMonth, 3, "NUMTOYMINTERVAL(3, 'MONTH')"},
	}
	for _, tt := range tests {
		if got := intervalExpression(tt.it, tt.value); got != tt.want {
			t.Errorf("intervalExpression(%s, %d) = %q, want %q", tt.it, tt.value, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	want := []string{"copy_data", "create_table", "swap_tables", "verify_queries"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRenderCreateTable(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	out, err := r.Render("create_table", NewContext(testTablePlan(), testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE SALES.ORDERS_NEW",
		"PARTITION BY RANGE (CREATED_AT)",
		"INTERVAL (NUMTODSINTERVAL(1, 'DAY'))",
		"SUBPARTITION BY HASH (CUSTOMER_ID)",
		"SUBPARTITIONS 8",
		"PARTITION P_INITIAL VALUES LESS THAN (TO_DATE('2026-04-01', 'YYYY-MM-DD'))",
		"TABLESPACE SALES_DATA",
		"PARALLEL 4",
		"WHERE 1 = 0;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("create_table output missing %q\n%s", want, out)
		}
	}
}

func TestRenderCreateTable_NoSubpartitions(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	tp := testTablePlan()
	tp.Target.SubpartitionType = plan.SubpartitionNone
	tp.Target.SubpartitionColumn = ""
	tp.Target.SubpartitionCount = 1

	out, err := r.Render("create_table", NewContext(tp, testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "SUBPARTITION BY HASH") {
		t.Errorf("unexpected subpartition clause:\n%s", out)
	}
}

func TestRenderCreateTable_LOBTablespaces(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	tp := testTablePlan()
	tp.Target.LOBTablespaces = map[string]string{"PAYLOAD": "SALES_LOB"}

	out, err := r.Render("create_table", NewContext(tp, testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "LOB (PAYLOAD) STORE AS SECUREFILE (TABLESPACE SALES_LOB)") {
		t.Errorf("LOB clause missing:\n%s", out)
	}
}

func TestRenderCopyData(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	out, err := r.Render("copy_data", NewContext(testTablePlan(), testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "INSERT /*+ APPEND PARALLEL(4) */ INTO SALES.ORDERS_NEW") {
		t.Errorf("copy_data output missing insert:\n%s", out)
	}

	tp := testTablePlan()
	tp.Settings.MigrateData = false
	out, err = r.Render("copy_data", NewContext(tp, testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "INSERT") {
		t.Errorf("copy disabled but insert rendered:\n%s", out)
	}
	if !strings.Contains(out, "copy skipped") {
		t.Errorf("copy_data output missing skip note:\n%s", out)
	}
}

func TestRenderSwapTables(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	out, err := r.Render("swap_tables", NewContext(testTablePlan(), testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "RENAME TO ORDERS_OLD") {
		t.Errorf("backup rename missing:\n%s", out)
	}
	if strings.Contains(out, "DROP TABLE") {
		t.Errorf("backup enabled but drop rendered:\n%s", out)
	}

	tp := testTablePlan()
	tp.Settings.BackupOldTable = false
	out, err = r.Render("swap_tables", NewContext(tp, testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "DROP TABLE SALES.ORDERS PURGE;") {
		t.Errorf("drop missing when backup disabled:\n%s", out)
	}

	if _, err := r.Render("no_such_script", NewContext(tp, testEnv())); err == nil {
		t.Error("expected error for unknown script name")
	}
}

func TestRenderVerifyQueries(t *testing.T) {
	r, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	out, err := r.Render("verify_queries", NewContext(testTablePlan(), testEnv()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"SELECT COUNT(*) AS old_rows FROM SALES.ORDERS;",
		"SELECT COUNT(*) AS new_rows FROM SALES.ORDERS_NEW;",
		"MIN(CREATED_AT)",
		"FROM ALL_TAB_PARTITIONS",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verify_queries output missing %q\n%s", want, out)
		}
	}
}
