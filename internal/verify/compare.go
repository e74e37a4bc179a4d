package verify

import (
	"context"
	"fmt"

	"github.com/partplan/partplan/internal/catalog"
)

// sampleKeyLimit caps how many primary key values the sample check reads
// from the old table.
const sampleKeyLimit = 1000

// RunDataComparison executes the four old/new data comparison checks.
func (v *Validator) RunDataComparison(ctx context.Context) []CheckResult {
	suite := v.beginSuite("data-comparison")

	v.checkTotalRowCounts(ctx, suite)
	v.checkPrimaryKeySample(ctx, suite)
	v.checkPartitionColumnRange(ctx, suite)
	v.checkPartitionDistribution(ctx, suite)

	return v.suites[suite].Results
}

func (v *Validator) checkTotalRowCounts(ctx context.Context, suite int) {
	const name = "total_row_counts"
	oldCount, errOld := v.rowCount(ctx, v.OldTable)
	newCount, errNew := v.rowCount(ctx, v.NewTable)
	if errOld != nil || errNew != nil {
		v.record(suite, name, StatusFail,
			fmt.Sprintf("counting rows: old=%v new=%v", errOld, errNew), nil)
		return
	}
	details := map[string]any{"old_count": oldCount, "new_count": newCount}
	if oldCount == newCount {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("both tables have %d rows", oldCount), details)
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("row count mismatch: old=%d new=%d", oldCount, newCount), details)
}

// checkPrimaryKeySample samples up to 1000 primary key values from the old
// table and looks each one up in the new table. Thresholds: 100% found is a
// pass, at least 99% a warning, anything lower a failure.
func (v *Validator) checkPrimaryKeySample(ctx context.Context, suite int) {
	const name = "primary_key_sample"

	pkCols, err := v.primaryKeyColumns(ctx, v.OldTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot determine primary key: %v", err), nil)
		return
	}
	if len(pkCols) == 0 {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("%s has no primary key; sample check skipped", v.OldTable), nil)
		return
	}
	// Single-column keys cover the common case; composite keys sample on
	// the leading column.
	pk := pkCols[0]

	q := fmt.Sprintf("SELECT %s FROM %s.%s WHERE %s IS NOT NULL AND ROWNUM <= %d",
		catalog.QuoteIdent(pk), catalog.QuoteIdent(v.tp.Owner),
		catalog.QuoteIdent(v.OldTable), catalog.QuoteIdent(pk), sampleKeyLimit)
	rows, err := v.sess.QueryRows(ctx, q)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("sampling keys from %s: %v", v.OldTable, err), nil)
		return
	}
	if len(rows) == 0 {
		v.record(suite, name, StatusPass, "old table is empty; nothing to sample", nil)
		return
	}

	lookup := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s WHERE %s = :1",
		catalog.QuoteIdent(v.tp.Owner), catalog.QuoteIdent(v.NewTable), catalog.QuoteIdent(pk))

	sampled := 0
	matched := 0
	var missing []any
	for _, row := range rows {
		var key any
		for _, val := range row {
			key = val
		}
		sampled++
		cnt, err := v.sess.QueryValue(ctx, lookup, key)
		if err == nil && catalog.AsInt64(cnt) > 0 {
			matched++
		} else if len(missing) < 10 {
			missing = append(missing, key)
		}
	}

	pct := float64(matched) / float64(sampled) * 100
	details := map[string]any{
		"key_column":    pk,
		"sampled":       sampled,
		"matched":       matched,
		"match_percent": pct,
	}
	if len(missing) > 0 {
		details["missing_keys"] = missing
	}

	msg := fmt.Sprintf("%d of %d sampled keys found in %s (%.1f%%)", matched, sampled, v.NewTable, pct)
	switch {
	case matched == sampled:
		v.record(suite, name, StatusPass, msg, details)
	case pct >= 99:
		v.record(suite, name, StatusWarn, msg, details)
	default:
		v.record(suite, name, StatusFail, msg, details)
	}
}

func (v *Validator) primaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := v.sess.QueryRows(ctx, `
		SELECT cc.COLUMN_NAME
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONS_COLUMNS cc
		  ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME AND c.OWNER = cc.OWNER
		WHERE c.OWNER = :1 AND c.TABLE_NAME = :2 AND c.CONSTRAINT_TYPE = 'P'
		ORDER BY cc.POSITION`, v.tp.Owner, table)
	if err != nil {
		return nil, err
	}
	var cols []string
	for _, r := range rows {
		cols = append(cols, catalog.AsString(r["COLUMN_NAME"]))
	}
	return cols, nil
}

// checkPartitionColumnRange compares min/max of the partition column across
// the two tables.
func (v *Validator) checkPartitionColumnRange(ctx context.Context, suite int) {
	const name = "partition_column_range"
	col := v.tp.Target.PartitionColumn
	if col == "" {
		v.record(suite, name, StatusWarn, "no partition column configured", nil)
		return
	}

	minMax := func(table string) (string, string, error) {
		q := fmt.Sprintf("SELECT MIN(%s) AS MIN_VAL, MAX(%s) AS MAX_VAL FROM %s.%s",
			catalog.QuoteIdent(col), catalog.QuoteIdent(col),
			catalog.QuoteIdent(v.tp.Owner), catalog.QuoteIdent(table))
		rows, err := v.sess.QueryRows(ctx, q)
		if err != nil || len(rows) == 0 {
			return "", "", err
		}
		return catalog.AsString(rows[0]["MIN_VAL"]), catalog.AsString(rows[0]["MAX_VAL"]), nil
	}

	oldMin, oldMax, errOld := minMax(v.OldTable)
	newMin, newMax, errNew := minMax(v.NewTable)
	if errOld != nil || errNew != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("reading %s range: old=%v new=%v", col, errOld, errNew), nil)
		return
	}

	details := map[string]any{
		"column":  col,
		"old_min": oldMin, "old_max": oldMax,
		"new_min": newMin, "new_max": newMax,
	}
	if oldMin == newMin && oldMax == newMax {
		v.record(suite, name, StatusPass,
			fmt.Sprintf("%s range matches: [%s, %s]", col, oldMin, oldMax), details)
		return
	}
	v.record(suite, name, StatusFail,
		fmt.Sprintf("%s range mismatch: old [%s, %s] vs new [%s, %s]",
			col, oldMin, oldMax, newMin, newMax), details)
}

// checkPartitionDistribution reads row counts across the newest partitions
// of the new table as a sanity check that data actually spread into the
// interval partitions.
func (v *Validator) checkPartitionDistribution(ctx context.Context, suite int) {
	const name = "partition_distribution"
	rows, err := v.sess.QueryRows(ctx, `
		SELECT PARTITION_NAME, NVL(NUM_ROWS, 0) AS NUM_ROWS
		FROM (
			SELECT PARTITION_NAME, NUM_ROWS
			FROM ALL_TAB_PARTITIONS
			WHERE TABLE_OWNER = :1 AND TABLE_NAME = :2
			ORDER BY PARTITION_POSITION DESC
		) WHERE ROWNUM <= 10`, v.tp.Owner, v.NewTable)
	if err != nil {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("cannot read partition row counts: %v", err), nil)
		return
	}
	if len(rows) == 0 {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("%s has no partitions to inspect", v.NewTable), nil)
		return
	}

	dist := make(map[string]any, len(rows))
	var total int64
	for _, r := range rows {
		n := catalog.AsInt64(r["NUM_ROWS"])
		dist[catalog.AsString(r["PARTITION_NAME"])] = n
		total += n
	}
	details := map[string]any{"partitions": dist}

	if total == 0 && v.tp.CurrentState.RowCount > 0 {
		v.record(suite, name, StatusWarn,
			fmt.Sprintf("newest %d partition(s) of %s report zero rows; statistics may be stale", len(rows), v.NewTable),
			details)
		return
	}
	v.record(suite, name, StatusPass,
		fmt.Sprintf("%d rows across the newest %d partition(s)", total, len(rows)), details)
}
