package plancheck

import (
	"context"
	"strings"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// checkLive is tier 3: the document against the live dictionary. A missing
// table is an error and aborts the remaining live checks for that table only.
func (v *Validator) checkLive(ctx context.Context, doc *plan.Document, sess catalog.Session) {
	for i := range doc.Tables {
		v.checkTableLive(ctx, sess, &doc.Tables[i], tablePath(i))
	}
}

func (v *Validator) checkTableLive(ctx context.Context, sess catalog.Session, t *plan.TableMigrationPlan, path string) {
	cnt, err := sess.QueryValue(ctx, `
		SELECT COUNT(*) FROM ALL_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`, t.Owner, t.TableName)
	if err != nil {
		v.warnf("%s: live check failed: %v", path, err)
		return
	}
	if catalog.AsInt64(cnt) == 0 {
		v.errorf("%s: table %s does not exist in the database", path, t.QualifiedName())
		return
	}

	if t.Target.PartitionColumn != "" {
		dt, ok := v.liveColumnType(ctx, sess, t, t.Target.PartitionColumn)
		switch {
		case !ok:
			v.errorf("%s.target.partition_column: column %q not found on %s",
				path, t.Target.PartitionColumn, t.QualifiedName())
		case dt != "DATE" && !strings.HasPrefix(dt, "TIMESTAMP"):
			v.warnf("%s.target.partition_column: column %q has type %s; interval partitioning expects a date or timestamp",
				path, t.Target.PartitionColumn, dt)
		}
	}

	if t.Target.SubpartitionType == plan.SubpartitionHash && t.Target.SubpartitionColumn != "" {
		if _, ok := v.liveColumnType(ctx, sess, t, t.Target.SubpartitionColumn); !ok {
			v.errorf("%s.target.subpartition_column: column %q not found on %s",
				path, t.Target.SubpartitionColumn, t.QualifiedName())
		}
	}
}

func (v *Validator) liveColumnType(ctx context.Context, sess catalog.Session, t *plan.TableMigrationPlan, column string) (string, bool) {
	rows, err := sess.QueryRows(ctx, `
		SELECT DATA_TYPE FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1 AND TABLE_NAME = :2 AND COLUMN_NAME = :3`,
		t.Owner, t.TableName, column)
	if err != nil || len(rows) == 0 {
		return "", false
	}
	return strings.ToUpper(catalog.AsString(rows[0]["DATA_TYPE"])), true
}
