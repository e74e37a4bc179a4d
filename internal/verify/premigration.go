package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// RunPreMigration executes the nine pre-migration readiness checks. Every
// check runs regardless of earlier failures so the report is complete.
func (v *Validator) RunPreMigration(ctx context.Context) []CheckResult {
	suite := v.beginSuite("pre-migration")
	t := v.tp

	exists := v.tableExists(ctx, t.Owner, v.OldTable)
	if exists {
		v.record(suite, "source_table_exists", StatusPass,
			fmt.Sprintf("table %s.%s exists", t.Owner, v.OldTable), nil)
	} else {
		v.record(suite, "source_table_exists", StatusFail,
			fmt.Sprintf("table %s.%s not found", t.Owner, v.OldTable), nil)
	}

	v.checkColumnExists(ctx, suite, "partition_column_exists", t.Target.PartitionColumn)
	if t.Target.SubpartitionType == plan.SubpartitionHash {
		v.checkColumnExists(ctx, suite, "subpartition_column_exists", t.Target.SubpartitionColumn)
	} else {
		v.record(suite, "subpartition_column_exists", StatusPass,
			"no subpartition column configured", nil)
	}

	v.checkPartitionColumnType(ctx, suite)
	v.checkTablespaceFreeSpace(ctx, suite)
	v.checkActiveLocks(ctx, suite)
	v.checkIntervalSyntax(suite)
	v.checkForeignKeyDependents(ctx, suite)
	v.checkCurrentPartitionState(ctx, suite)

	return v.suites[suite].Results
}

func (v *Validator) tableExists(ctx context.Context, owner, table string) bool {
	cnt, err := v.sess.QueryValue(ctx, `
		SELECT COUNT(*) FROM ALL_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`, owner, table)
	return err == nil && catalog.AsInt64(cnt) > 0
}

func (v *Validator) columnType(ctx context.Context, table, column string) (string, bool) {
	rows, err := v.sess.QueryRows(ctx, `
		SELECT DATA_TYPE FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1 AND TABLE_NAME = :2 AND COLUMN_NAME = :3`,
		v.tp.Owner, table, column)
	if err != nil || len(rows) == 0 {
		return "", false
	}
	return strings.ToUpper(catalog.AsString(rows[0]["DATA_TYPE"])), true
}

func (v *Validator) checkColumnExists(ctx context.Context, suite int, checkName, column string) {
	if column == "" {
		v.record(suite, checkName, StatusFail, "no column configured", nil)
		return
	}
	if _, ok := v.columnType(ctx, v.OldTable, column); ok {
		v.record(suite, checkName, StatusPass,
			fmt.Sprintf("column %s exists on %s", column, v.OldTable), nil)
	} else {
		v.record(suite, checkName, StatusFail,
			fmt.Sprintf("column %s not found on %s", column, v.OldTable), nil)
	}
}

func (v *Validator) checkPartitionColumnType(ctx context.Context, suite int) {
	const name = "partition_column_type"
	col := v.tp.Target.PartitionColumn
	dt, ok := v.columnType(ctx, v.OldTable, col)
	switch {
	case !ok:
		v.record(suite, name, StatusFail,
			fmt.Sprintf("cannot determine type of column %s", col), nil)
	case dt == "DATE" || strings.HasPrefix(dt, "TIMESTAMP"):
		v.record(suite, name, StatusPass,
			fmt.Sprintf("column %s has type %s", col, dt), nil)
	default:
		v.record(suite, name, StatusFail,
			fmt.Sprintf("column %s has type %s; interval partitioning requires a date or timestamp", col, dt),
			map[string]any{"data_type": dt})
	}
}

// checkTablespaceFreeSpace requires at least twice the table's estimated
// size free in the target tablespace. Free-space views are privilege
// dependent, so an unanswerable query downgrades to a warning.
func (v *Validator) checkTablespaceFreeSpace(ctx context.Context, suite int) {
	const name = "tablespace_free_space"
	ts := v.tp.Target.Tablespace
	if ts == "" {
		ts = v.env.DefaultTablespace
	}

	free, err := v.sess.QueryValue(ctx, `
		SELECT NVL(SUM(BYTES), 0) FROM DBA_FREE_SPACE
		WHERE TABLESPACE_NAME = :1`, ts)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot determine free space in tablespace %s: %v", ts, err), nil)
		return
	}

	freeGB := catalog.AsFloat64(free) / (1024 * 1024 * 1024)
	needGB := v.tp.CurrentState.SizeGB * 2
	details := map[string]any{"tablespace": ts, "free_gb": freeGB, "required_gb": needGB}
	if freeGB >= needGB {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("tablespace %s has %.1f GB free (%.1f GB required)", ts, freeGB, needGB), details)
	} else {
		v.record(suite, name, StatusFail,
			fmt.Sprintf("tablespace %s has %.1f GB free but %.1f GB is required", ts, freeGB, needGB), details)
	}
}

func (v *Validator) checkActiveLocks(ctx context.Context, suite int) {
	const name = "no_active_locks"
	rows, err := v.sess.QueryRows(ctx, `
		SELECT s.SID, s.SERIAL#, s.USERNAME
		FROM V$LOCKED_OBJECT l
		JOIN DBA_OBJECTS o ON l.OBJECT_ID = o.OBJECT_ID
		JOIN V$SESSION s ON l.SESSION_ID = s.SID
		WHERE o.OWNER = :1 AND o.OBJECT_NAME = :2`, v.tp.Owner, v.OldTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot check locks on %s: %v", v.OldTable, err), nil)
		return
	}
	if len(rows) > 0 {
		holders := make([]string, 0, len(rows))
		for _, r := range rows {
			holders = append(holders, fmt.Sprintf("%s (sid %s)",
				catalog.AsString(r["USERNAME"]), catalog.AsString(r["SID"])))
		}
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("%d active lock(s) on %s", len(rows), v.OldTable),
			map[string]any{"holders": holders})
		return
	}
	v.record(suite, name, StatusPass, fmt.Sprintf("no active locks on %s", v.OldTable), nil)
}

func (v *Validator) checkIntervalSyntax(suite int) {
	const name = "interval_definition_valid"
	t := v.tp.Target
	var problems []string
	if !t.IntervalType.Valid() {
		problems = append(problems, fmt.Sprintf("invalid interval_type %q", t.IntervalType))
	}
	if t.IntervalValue < 1 {
		problems = append(problems, fmt.Sprintf("interval_value %d < 1", t.IntervalValue))
	}
	if t.InitialPartitionValue == "" || !plan.ValidDateLiteral(t.InitialPartitionValue) {
		problems = append(problems, fmt.Sprintf("initial_partition_value %q does not match the date-literal grammar", t.InitialPartitionValue))
	}
	if len(problems) > 0 {
		v.record(suite, name, StatusFail, strings.Join(problems, "; "), nil)
		return
	}
	v.record(suite, name, StatusPass,
		fmt.Sprintf("%s(%d) starting at %s", t.IntervalType, t.IntervalValue, t.InitialPartitionValue), nil)
}

// checkForeignKeyDependents enumerates child tables referencing the source.
// Dependent constraints get disabled for the swap, so finding any is a
// warning rather than a failure.
func (v *Validator) checkForeignKeyDependents(ctx context.Context, suite int) {
	const name = "foreign_key_dependents"
	rows, err := v.sess.QueryRows(ctx, `
		SELECT c.OWNER, c.TABLE_NAME, c.CONSTRAINT_NAME
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONSTRAINTS r
		  ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME AND c.R_OWNER = r.OWNER
		WHERE c.CONSTRAINT_TYPE = 'R'
		  AND r.OWNER = :1 AND r.TABLE_NAME = :2`, v.tp.Owner, v.OldTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot enumerate foreign key dependents: %v", err), nil)
		return
	}
	if len(rows) == 0 {
		v.record(suite, name, StatusPass, "no foreign keys reference this table", nil)
		return
	}
	deps := make([]string, 0, len(rows))
	for _, r := range rows {
		deps = append(deps, fmt.Sprintf("%s.%s (%s)",
			catalog.AsString(r["OWNER"]), catalog.AsString(r["TABLE_NAME"]),
			catalog.AsString(r["CONSTRAINT_NAME"])))
	}
	v.record(suite, name, StatusWarn,
		fmt.Sprintf("%d foreign key(s) reference %s and will be disabled during the swap", len(rows), v.OldTable),
		map[string]any{"dependents": deps})
}

// checkCurrentPartitionState reports the table's current partitioning and
// re-checks the environment bounds against the configured target.
func (v *Validator) checkCurrentPartitionState(ctx context.Context, suite int) {
	const name = "current_partition_state"
	rows, err := v.sess.QueryRows(ctx, `
		SELECT PARTITIONING_TYPE, SUBPARTITIONING_TYPE, INTERVAL, PARTITION_COUNT
		FROM ALL_PART_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`, v.tp.Owner, v.OldTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot read partition state: %v", err), nil)
		return
	}

	details := map[string]any{}
	msg := "table is not partitioned"
	if len(rows) > 0 {
		r := rows[0]
		details["partitioning_type"] = catalog.AsString(r["PARTITIONING_TYPE"])
		details["subpartitioning_type"] = catalog.AsString(r["SUBPARTITIONING_TYPE"])
		details["interval"] = catalog.AsString(r["INTERVAL"])
		details["partition_count"] = catalog.AsInt64(r["PARTITION_COUNT"])
		msg = fmt.Sprintf("table is %s partitioned with %d partition(s)",
			catalog.AsString(r["PARTITIONING_TYPE"]), catalog.AsInt64(r["PARTITION_COUNT"]))
	}

	status := StatusPass
	var bounds []string
	if n := v.tp.Target.SubpartitionCount; v.env.MaxSubpartitionCount > 0 && n > v.env.MaxSubpartitionCount {
		bounds = append(bounds, fmt.Sprintf("subpartition_count %d exceeds environment maximum %d",
			n, v.env.MaxSubpartitionCount))
	}
	if d := v.tp.Target.ParallelDegree; v.env.MaxParallelDegree > 0 && d > v.env.MaxParallelDegree {
		bounds = append(bounds, fmt.Sprintf("parallel_degree %d exceeds environment maximum %d",
			d, v.env.MaxParallelDegree))
	}
	if len(bounds) > 0 {
		status = StatusWarn
		msg = msg + "; " + strings.Join(bounds, "; ")
		details["environment_bounds"] = bounds
	}

	v.record(suite, name, status, msg, details)
}
