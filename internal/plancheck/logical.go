package plancheck

import (
	"github.com/partplan/partplan/internal/plan"
	"github.com/partplan/partplan/internal/recommend"
)

// checkLogical is tier 2: per-table consistency between the target
// configuration and the discovered current state.
func (v *Validator) checkLogical(doc *plan.Document) {
	for i := range doc.Tables {
		v.checkTableLogical(&doc.Tables[i], &doc.Environment, tablePath(i))
	}
}

func (v *Validator) checkTableLogical(t *plan.TableMigrationPlan, env *plan.EnvironmentProfile, path string) {
	cs := &t.CurrentState

	// Membership is judged whenever the profile carries any column data.
	// Only a profile with no column information at all (a table whose
	// analysis failed entirely) skips these checks.
	hasColumnData := len(cs.Columns) > 0 || len(cs.TimestampColumns) > 0 ||
		len(cs.NumericColumns) > 0 || len(cs.StringColumns) > 0

	if t.Target.PartitionColumn != "" && hasColumnData &&
		!cs.HasTimestampColumn(t.Target.PartitionColumn) {
		v.errorf("%s.target.partition_column: %q is not a timestamp-like column of %s",
			path, t.Target.PartitionColumn, t.QualifiedName())
	}

	if t.Target.SubpartitionType == plan.SubpartitionHash {
		if t.Target.SubpartitionColumn == "" {
			v.errorf("%s.target.subpartition_column: required when subpartition_type is HASH", path)
		} else if hasColumnData && !cs.HasHashCandidateColumn(t.Target.SubpartitionColumn) {
			v.errorf("%s.target.subpartition_column: %q is not a numeric or bounded string column of %s",
				path, t.Target.SubpartitionColumn, t.QualifiedName())
		}
	}

	if t.Target.IntervalValue < 1 {
		v.errorf("%s.target.interval_value: must be >= 1, got %d", path, t.Target.IntervalValue)
	}

	switch n := t.Target.SubpartitionCount; {
	case n < 1 || n > 1024:
		v.errorf("%s.target.subpartition_count: must be between 1 and 1024, got %d", path, n)
	case !isPowerOfTwo(n):
		v.warnf("%s.target.subpartition_count: %d is not a power of two; hash distribution will be uneven", path, n)
	}

	if expected := recommend.ActionFor(cs); t.MigrationAction != expected && t.MigrationAction.Valid() {
		v.warnf("%s.migration_action: %s does not match current partition state (expected %s)",
			path, t.MigrationAction, expected)
	}

	if t.Target.InitialPartitionValue == "" {
		v.errorf("%s.target.initial_partition_value: required field is empty", path)
	} else if !plan.ValidDateLiteral(t.Target.InitialPartitionValue) {
		v.errorf("%s.target.initial_partition_value: %q does not match the date-literal grammar",
			path, t.Target.InitialPartitionValue)
	}

	// Environment-bound compliance is advisory.
	if env.MinSubpartitionCount > 0 && t.Target.SubpartitionCount < env.MinSubpartitionCount {
		v.warnf("%s.target.subpartition_count: %d is below the %s environment minimum %d",
			path, t.Target.SubpartitionCount, env.Name, env.MinSubpartitionCount)
	}
	if env.MaxSubpartitionCount > 0 && t.Target.SubpartitionCount > env.MaxSubpartitionCount {
		v.warnf("%s.target.subpartition_count: %d exceeds the %s environment maximum %d",
			path, t.Target.SubpartitionCount, env.Name, env.MaxSubpartitionCount)
	}
	if env.MinParallelDegree > 0 && t.Target.ParallelDegree < env.MinParallelDegree {
		v.warnf("%s.target.parallel_degree: %d is below the %s environment minimum %d",
			path, t.Target.ParallelDegree, env.Name, env.MinParallelDegree)
	}
	if env.MaxParallelDegree > 0 && t.Target.ParallelDegree > env.MaxParallelDegree {
		v.warnf("%s.target.parallel_degree: %d exceeds the %s environment maximum %d",
			path, t.Target.ParallelDegree, env.Name, env.MaxParallelDegree)
	}
	if t.Target.Tablespace != "" && !env.TablespaceAllowed(t.Target.Tablespace) {
		v.warnf("%s.target.tablespace: %q is not in the %s environment allow-list",
			path, t.Target.Tablespace, env.Name)
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
