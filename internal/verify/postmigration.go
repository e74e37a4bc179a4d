package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// RunPostMigration executes the seven structural checks against the newly
// built table.
func (v *Validator) RunPostMigration(ctx context.Context) []CheckResult {
	suite := v.beginSuite("post-migration")

	if v.tableExists(ctx, v.tp.Owner, v.NewTable) {
		v.record(suite, "new_table_exists", StatusPass,
			fmt.Sprintf("table %s.%s exists", v.tp.Owner, v.NewTable), nil)
	} else {
		v.record(suite, "new_table_exists", StatusFail,
			fmt.Sprintf("table %s.%s not found", v.tp.Owner, v.NewTable), nil)
	}

	state := v.partitionState(ctx, suite)
	v.checkPartitionType(suite, state)
	v.checkIntervalFamily(suite, state)
	v.checkSubpartitions(suite, state)
	v.checkRowCounts(ctx, suite)
	v.checkIndexesPresent(ctx, suite)
	v.checkConstraintsEnabled(ctx, suite)

	return v.suites[suite].Results
}

// partitionState reads the new table's dictionary partitioning row, or nil.
func (v *Validator) partitionState(ctx context.Context, suite int) map[string]any {
	rows, err := v.sess.QueryRows(ctx, `
		SELECT PARTITIONING_TYPE, SUBPARTITIONING_TYPE, INTERVAL,
		       PARTITION_COUNT, DEF_SUBPARTITION_COUNT
		FROM ALL_PART_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`, v.tp.Owner, v.NewTable)
	if err != nil || len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// checkPartitionType verifies the dictionary reports the configured scheme.
// Interval-partitioned tables surface as RANGE with a non-empty INTERVAL.
func (v *Validator) checkPartitionType(suite int, state map[string]any) {
	const name = "partition_type_matches"
	if state == nil {
		v.record(suite, name, StatusFail,
			fmt.Sprintf("%s is not partitioned", v.NewTable), nil)
		return
	}
	ptype := catalog.AsString(state["PARTITIONING_TYPE"])
	interval := catalog.AsString(state["INTERVAL"])
	if ptype == "RANGE" && interval != "" {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("partition type is %s with interval %s", ptype, interval),
			map[string]any{"partitioning_type": ptype, "interval": interval})
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("expected interval partitioning, dictionary reports %s (interval %q)", ptype, interval),
		map[string]any{"partitioning_type": ptype, "interval": interval})
}

func (v *Validator) checkIntervalFamily(suite int, state map[string]any) {
	const name = "interval_definition_matches"
	if state == nil {
		v.record(suite, name, StatusFail, "no partition state to compare", nil)
		return
	}
	interval := catalog.AsString(state["INTERVAL"])
	family := intervalFamily(v.tp.Target.IntervalType)
	if strings.Contains(strings.ToUpper(interval), family) {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("interval %s uses the expected %s family for %s granularity",
				interval, family, v.tp.Target.IntervalType), nil)
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("interval %s does not use %s expected for %s granularity",
			interval, family, v.tp.Target.IntervalType),
		map[string]any{"interval": interval, "expected_family": family})
}

func (v *Validator) checkSubpartitions(suite int, state map[string]any) {
	const name = "subpartitions_match"
	want := v.tp.Target
	if want.SubpartitionType == plan.SubpartitionNone {
		v.record(suite, name, StatusPass, "no subpartitioning configured", nil)
		return
	}
	if state == nil {
		v.record(suite, name, StatusFail, "no partition state to compare", nil)
		return
	}
	sptype := catalog.AsString(state["SUBPARTITIONING_TYPE"])
	spcount := int(catalog.AsInt64(state["DEF_SUBPARTITION_COUNT"]))
	details := map[string]any{
		"subpartitioning_type": sptype,
		"subpartition_count":   spcount,
		"configured_type":      string(want.SubpartitionType),
		"configured_count":     want.SubpartitionCount,
	}
	if sptype == string(want.SubpartitionType) && spcount == want.SubpartitionCount {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("%s subpartitioning with %d subpartitions per partition", sptype, spcount), details)
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("expected %s x%d, dictionary reports %s x%d",
			want.SubpartitionType, want.SubpartitionCount, sptype, spcount), details)
}

func (v *Validator) rowCount(ctx context.Context, table string) (int64, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s",
		catalog.QuoteIdent(v.tp.Owner), catalog.QuoteIdent(table))
	val, err := v.sess.QueryValue(ctx, q)
	if err != nil {
		return 0, err
	}
	return catalog.AsInt64(val), nil
}

// checkRowCounts compares old and new counts exactly; any delta fails with
// its magnitude and percentage in the details payload.
func (v *Validator) checkRowCounts(ctx context.Context, suite int) {
	const name = "row_counts_match"
	oldCount, err := v.rowCount(ctx, v.OldTable)
	if err != nil {
		v.record(suite, name, StatusFail,
			fmt.Sprintf("counting rows in %s: %v", v.OldTable, err), nil)
		return
	}
	newCount, err := v.rowCount(ctx, v.NewTable)
	if err != nil {
		v.record(suite, name, StatusFail,
			fmt.Sprintf("counting rows in %s: %v", v.NewTable, err), nil)
		return
	}

	details := map[string]any{"old_count": oldCount, "new_count": newCount}
	if oldCount == newCount {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("both tables have %d rows", oldCount), details)
		return
	}

	delta := oldCount - newCount
	pct := 0.0
	if oldCount > 0 {
		pct = float64(delta) / float64(oldCount) * 100
	}
	details["delta"] = delta
	details["delta_percent"] = pct
	v.record(suite, name, StatusFail,
		fmt.Sprintf("row count mismatch: old=%d new=%d (delta %d, %.2f%%)",
			oldCount, newCount, delta, pct), details)
}

func (v *Validator) checkIndexesPresent(ctx context.Context, suite int) {
	const name = "indexes_present"
	cnt, err := v.sess.QueryValue(ctx, `
		SELECT COUNT(*) FROM ALL_INDEXES
		WHERE TABLE_OWNER = :1 AND TABLE_NAME = :2`, v.tp.Owner, v.NewTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot count indexes on %s: %v", v.NewTable, err), nil)
		return
	}
	n := catalog.AsInt64(cnt)
	if n >= 1 {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("%s has %d index(es)", v.NewTable, n),
			map[string]any{"index_count": n})
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("%s has no indexes", v.NewTable), nil)
}

func (v *Validator) checkConstraintsEnabled(ctx context.Context, suite int) {
	const name = "constraints_enabled"
	rows, err := v.sess.QueryRows(ctx, `
		SELECT CONSTRAINT_NAME, STATUS
		FROM ALL_CONSTRAINTS
		WHERE OWNER = :1 AND TABLE_NAME = :2 AND STATUS != 'ENABLED'`,
		v.tp.Owner, v.NewTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot read constraint status on %s: %v", v.NewTable, err), nil)
		return
	}
	if len(rows) == 0 {
		v.record(suite, name, StatusPass, "all constraints report ENABLED", nil)
		return
	}
	disabled := make([]string, 0, len(rows))
	for _, r := range rows {
		disabled = append(disabled, catalog.AsString(r["CONSTRAINT_NAME"]))
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("%d constraint(s) not enabled on %s", len(rows), v.NewTable),
		map[string]any{"constraints": disabled})
}
