package plancheck

import "github.com/partplan/partplan/internal/plan"

// checkBestPractice is tier 4: heuristics that never fail a document, only
// warn the operator about configurations that tend to hurt in production.
func (v *Validator) checkBestPractice(doc *plan.Document) {
	for i := range doc.Tables {
		v.checkTableBestPractice(&doc.Tables[i], &doc.Environment, tablePath(i))
	}
}

func (v *Validator) checkTableBestPractice(t *plan.TableMigrationPlan, env *plan.EnvironmentProfile, path string) {
	size := t.CurrentState.SizeGB

	if size > 50 && t.Target.ParallelDegree < 4 {
		v.warnf("%s: %.1f GB table with parallel_degree %d; consider a higher degree",
			path, size, t.Target.ParallelDegree)
	}
	if size < 1 && t.Target.ParallelDegree > 4 {
		v.warnf("%s: small table (%.2f GB) with parallel_degree %d; the overhead will outweigh the gain",
			path, size, t.Target.ParallelDegree)
	}

	// Subpartition-count sizing is judged against the environment's size
	// tiers; deviation by a factor of two or more is worth flagging.
	if rec := env.RecommendedSubpartitions(size); rec > 0 && t.Target.SubpartitionCount >= 1 {
		switch n := t.Target.SubpartitionCount; {
		case n*2 <= rec:
			v.warnf("%s.target.subpartition_count: %d is well below the %s size-tier recommendation of %d for a %.1f GB table",
				path, n, env.Name, rec, size)
		case n >= rec*2:
			v.warnf("%s.target.subpartition_count: %d is far above the %s size-tier recommendation of %d; most subpartitions will stay near-empty",
				path, n, env.Name, rec)
		}
	}

	if t.CurrentState.LOBCount > 0 {
		v.warnf("%s: table has %d LOB column(s); verify lob_tablespaces before running the migration",
			path, t.CurrentState.LOBCount)
	}

	if size > 10 && !t.Settings.ValidateData {
		v.warnf("%s.settings.validate_data: disabled on a %.1f GB table; mismatches would go unnoticed",
			path, size)
	}
	if !t.Settings.BackupOldTable {
		v.warnf("%s.settings.backup_old_table: disabled; there is no rollback path after the swap", path)
	}

	if t.Target.IntervalType == plan.IntervalMonth {
		if rowsPerDay := float64(t.CurrentState.RowCount) / 365; rowsPerDay > 100_000 {
			v.warnf("%s.target.interval_type: MONTH with ~%.0f rows/day; DAY or HOUR would keep partitions manageable",
				path, rowsPerDay)
		}
	}
}
