package plancheck

import (
	"context"
	"strings"
	"testing"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

func validDocument() *plan.Document {
	doc := &plan.Document{
		Metadata: plan.Metadata{
			GeneratedDate:              "2026-03-15",
			SourceSchema:               "SALES",
			SourceDatabaseService:      "ORCLPDB1",
			TotalTablesFound:           1,
			TablesSelectedForMigration: 1,
		},
		Environment: plan.GlobalProfile(),
		Tables: []plan.TableMigrationPlan{
			{
				Enabled:   true,
				Owner:     "SALES",
				TableName: "ORDERS",
				CurrentState: plan.TableProfile{
					Owner: "SALES", Name: "ORDERS", SizeGB: 120, RowCount: 50_000_000,
					TimestampColumns: []string{"CREATED_AT"},
					NumericColumns:   []string{"CUSTOMER_ID"},
				},
				Target: plan.TargetConfiguration{
					PartitionType:         "INTERVAL",
					PartitionColumn:       "CREATED_AT",
					IntervalType:          plan.IntervalDay,
					IntervalValue:         1,
					InitialPartitionValue: "TO_DATE('2026-04-01', 'YYYY-MM-DD')",
					SubpartitionType:      plan.SubpartitionHash,
					SubpartitionColumn:    "CUSTOMER_ID",
					SubpartitionCount:     16,
					ParallelDegree:        8,
				},
				Settings: plan.MigrationSettings{
					EstimatedHours: 15.0,
					Priority:       plan.PriorityHigh,
					ValidateData:   true,
					BackupOldTable: true,
				},
				MigrationAction: plan.ActionAddIntervalHash,
			},
		},
	}
	doc.StampProvenance()
	return doc
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidate_CleanDocument(t *testing.T) {
	result := NewValidator().Validate(context.Background(), validDocument(), false, nil)
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if !result.DiscoveryGenerated {
		t.Error("expected provenance to verify")
	}
	if !hasMessage(result.Warnings, "live-database checks skipped") {
		t.Errorf("expected skip warning, got %v", result.Warnings)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	doc := validDocument()
	v := NewValidator()
	first := v.Validate(context.Background(), doc, false, nil)
	second := v.Validate(context.Background(), doc, false, nil)

	if len(first.Errors) != len(second.Errors) || len(first.Warnings) != len(second.Warnings) {
		t.Errorf("repeated validation accumulated state: %d/%d errors, %d/%d warnings",
			len(first.Errors), len(second.Errors), len(first.Warnings), len(second.Warnings))
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	doc := validDocument()
	doc.Metadata.SourceSchema = ""
	doc.Tables[0].Owner = ""
	doc.Tables[0].Target.PartitionColumn = ""

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if !hasMessage(result.Errors, "metadata.source_schema") {
		t.Errorf("missing source_schema error: %v", result.Errors)
	}
	if !hasMessage(result.Errors, "tables[0].owner") {
		t.Errorf("missing owner error: %v", result.Errors)
	}
	if !hasMessage(result.Errors, "tables[0].target.partition_column") {
		t.Errorf("missing partition_column error: %v", result.Errors)
	}
}

func TestValidate_NonIntervalPartitionType(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.PartitionType = "RANGE"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "must be INTERVAL") {
		t.Errorf("expected partition_type error, got %v", result.Errors)
	}
}

func TestValidate_DuplicateTables(t *testing.T) {
	doc := validDocument()
	doc.Tables = append(doc.Tables, doc.Tables[0])

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "duplicate of tables[0]") {
		t.Errorf("expected duplicate error, got %v", result.Errors)
	}
}

func TestValidate_InvalidEnums(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.IntervalType = "FORTNIGHT"
	doc.Tables[0].Settings.Priority = "URGENT"
	doc.Tables[0].MigrationAction = "DO_SOMETHING"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "interval_type") ||
		!hasMessage(result.Errors, "priority") ||
		!hasMessage(result.Errors, "migration_action") {
		t.Errorf("expected enum errors, got %v", result.Errors)
	}
}

func TestValidate_SubpartitionCountBounds(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.SubpartitionCount = 2000

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "between 1 and 1024") {
		t.Errorf("expected bounds error, got %v", result.Errors)
	}
}

func TestValidate_NonPowerOfTwoWarns(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.SubpartitionCount = 6

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if result.Valid != true {
		t.Fatalf("count 6 should not be an error: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "not a power of two") {
		t.Errorf("expected power-of-two warning, got %v", result.Warnings)
	}
}

func TestValidate_PartitionColumnNotTimestamp(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.PartitionColumn = "CUSTOMER_ID"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "not a timestamp-like column") {
		t.Errorf("expected partition column error, got %v", result.Errors)
	}
}

func TestValidate_MembershipOnHandEditedProfile(t *testing.T) {
	// A profile with a full column list but no timestamp-like columns can
	// never legally carry an INTERVAL partition column.
	doc := validDocument()
	cs := &doc.Tables[0].CurrentState
	cs.TimestampColumns = nil
	cs.NumericColumns = nil
	cs.Columns = []plan.ColumnInfo{
		{Name: "AMOUNT", DataType: "NUMBER"},
		{Name: "NOTE", DataType: "VARCHAR2", DataLength: 200},
	}
	doc.Tables[0].Target.PartitionColumn = "AMOUNT"
	doc.Tables[0].Target.SubpartitionColumn = "AMOUNT"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if !hasMessage(result.Errors, "not a timestamp-like column") {
		t.Errorf("expected partition column error, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "not a numeric or bounded string column") {
		t.Errorf("expected subpartition column error, got %v", result.Errors)
	}
}

func TestValidate_MembershipSkippedWithoutColumnData(t *testing.T) {
	// A table whose analysis failed entirely has no column data to judge
	// membership against; the checks are skipped rather than guessed.
	doc := validDocument()
	doc.Tables[0].CurrentState.TimestampColumns = nil
	doc.Tables[0].CurrentState.NumericColumns = nil

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !result.Valid {
		t.Fatalf("expected valid when the profile has no column data: %v", result.Errors)
	}
}

func TestValidate_ActionMismatchWarns(t *testing.T) {
	doc := validDocument()
	// Current state is unpartitioned, so CONVERT does not match.
	doc.Tables[0].MigrationAction = plan.ActionConvertToIntervalHash

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !result.Valid {
		t.Fatalf("mismatch should be a warning: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "does not match current partition state") {
		t.Errorf("expected action mismatch warning, got %v", result.Warnings)
	}
}

func TestValidate_BadDateLiteral(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.InitialPartitionValue = "SYSDATE"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Errors, "date-literal grammar") {
		t.Errorf("expected literal error, got %v", result.Errors)
	}
}

func TestValidate_EmptyInitialPartitionValue(t *testing.T) {
	doc := validDocument()
	doc.Tables[0].Target.InitialPartitionValue = ""

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if !hasMessage(result.Errors, "initial_partition_value: required") {
		t.Errorf("expected empty boundary error, got %v", result.Errors)
	}
}

func TestValidate_SizeTierRecommendation(t *testing.T) {
	// 120 GB with the global tiers recommends 16; an override raising the
	// tier must drive the warning.
	doc := validDocument()
	doc.Environment.SizeTiers = []plan.SizeTier{{MaxSizeGB: 0, SubpartitionCount: 64}}

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !result.Valid {
		t.Fatalf("tier deviation should warn, not error: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "size-tier recommendation of 64") {
		t.Errorf("expected tier warning, got %v", result.Warnings)
	}

	doc = validDocument()
	doc.Tables[0].Target.SubpartitionCount = 256

	result = NewValidator().Validate(context.Background(), doc, false, nil)
	if !hasMessage(result.Warnings, "far above the global size-tier recommendation of 16") {
		t.Errorf("expected oversize warning, got %v", result.Warnings)
	}

	// Matching the recommendation stays silent.
	result = NewValidator().Validate(context.Background(), validDocument(), false, nil)
	if hasMessage(result.Warnings, "size-tier recommendation") {
		t.Errorf("unexpected tier warning on a matching count: %v", result.Warnings)
	}
}

func TestValidate_EnvironmentBoundsWarn(t *testing.T) {
	doc := validDocument()
	doc.Environment.MaxSubpartitionCount = 8
	doc.Environment.AllowedTablespaces = []string{"SALES_DATA"}
	doc.Tables[0].Target.Tablespace = "USERS"

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !result.Valid {
		t.Fatalf("environment bounds should warn, not error: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "exceeds the global environment maximum 8") {
		t.Errorf("expected subpartition bound warning, got %v", result.Warnings)
	}
	if !hasMessage(result.Warnings, "allow-list") {
		t.Errorf("expected tablespace warning, got %v", result.Warnings)
	}
}

func TestValidate_CountMismatchesWarn(t *testing.T) {
	doc := validDocument()
	doc.Metadata.TotalTablesFound = 10
	doc.Metadata.TablesSelectedForMigration = 5

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if !result.Valid {
		t.Fatalf("count mismatches should warn, not error: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "total_tables_found") ||
		!hasMessage(result.Warnings, "tables_selected_for_migration") {
		t.Errorf("expected count warnings, got %v", result.Warnings)
	}
}

func TestValidate_TamperedProvenanceWarns(t *testing.T) {
	doc := validDocument()
	doc.Metadata.SourceSchema = "HR" // hash no longer matches
	doc.Metadata.TotalTablesFound = 1

	result := NewValidator().Validate(context.Background(), doc, false, nil)
	if result.DiscoveryGenerated {
		t.Error("expected provenance mismatch")
	}
	if !hasMessage(result.Warnings, "not discovery-generated") {
		t.Errorf("expected provenance warning, got %v", result.Warnings)
	}
}

func TestValidate_LiveTableMissing(t *testing.T) {
	doc := validDocument()
	sess := &catalog.MockSession{}
	sess.AddStub("FROM ALL_TABLES", []map[string]any{{"COUNT(*)": int64(0)}})

	result := NewValidator().Validate(context.Background(), doc, true, sess)
	if !hasMessage(result.Errors, "does not exist in the database") {
		t.Errorf("expected missing table error, got %v", result.Errors)
	}
}

func TestValidate_LiveColumnChecks(t *testing.T) {
	doc := validDocument()
	sess := &catalog.MockSession{}
	sess.AddStub("FROM ALL_TABLES", []map[string]any{{"COUNT(*)": int64(1)}})
	sess.Stubs = append(sess.Stubs, catalog.Stub{
		Contains: "FROM ALL_TAB_COLUMNS",
		Args:     []any{"SALES", "ORDERS", "CREATED_AT"},
		Rows:     []map[string]any{{"DATA_TYPE": "VARCHAR2"}},
	})
	sess.Stubs = append(sess.Stubs, catalog.Stub{
		Contains: "FROM ALL_TAB_COLUMNS",
		Args:     []any{"SALES", "ORDERS", "CUSTOMER_ID"},
		Rows:     nil, // column missing
	})

	result := NewValidator().Validate(context.Background(), doc, true, sess)
	if !hasMessage(result.Warnings, "expects a date or timestamp") {
		t.Errorf("expected type warning, got %v", result.Warnings)
	}
	if !hasMessage(result.Errors, `subpartition_column: column "CUSTOMER_ID" not found`) {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}
