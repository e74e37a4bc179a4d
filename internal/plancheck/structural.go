package plancheck

import "github.com/partplan/partplan/internal/plan"

// checkStructure is tier 1: conformance to the document contract. Missing
// required fields and invalid enumerated values are errors carrying the path
// of the offending field.
func (v *Validator) checkStructure(doc *plan.Document) {
	if doc.Metadata.GeneratedDate == "" {
		v.errorf("metadata.generated_date: required field is empty")
	}
	if doc.Metadata.SourceSchema == "" {
		v.errorf("metadata.source_schema: required field is empty")
	}
	if doc.Environment.Name == "" {
		v.errorf("environment.name: required field is empty")
	}

	seen := make(map[string]int, len(doc.Tables))
	for i := range doc.Tables {
		t := &doc.Tables[i]
		path := tablePath(i)

		if t.Owner == "" {
			v.errorf("%s.owner: required field is empty", path)
		}
		if t.TableName == "" {
			v.errorf("%s.table_name: required field is empty", path)
		} else if prev, dup := seen[t.TableName]; dup {
			v.errorf("%s.table_name: duplicate of tables[%d] (%s)", path, prev, t.TableName)
		} else {
			seen[t.TableName] = i
		}

		if t.Target.PartitionType != "INTERVAL" {
			v.errorf("%s.target.partition_type: must be INTERVAL, got %q", path, t.Target.PartitionType)
		}
		if t.Target.PartitionColumn == "" {
			v.errorf("%s.target.partition_column: required field is empty", path)
		}
		if !t.Target.IntervalType.Valid() {
			v.errorf("%s.target.interval_type: invalid value %q", path, t.Target.IntervalType)
		}
		if !t.Target.SubpartitionType.Valid() {
			v.errorf("%s.target.subpartition_type: invalid value %q", path, t.Target.SubpartitionType)
		}
		if !t.Settings.Priority.Valid() {
			v.errorf("%s.settings.priority: invalid value %q", path, t.Settings.Priority)
		}
		if !t.MigrationAction.Valid() {
			v.errorf("%s.migration_action: invalid value %q", path, t.MigrationAction)
		}
	}
}
