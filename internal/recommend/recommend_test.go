package recommend

import (
	"testing"
	"time"

	"github.com/partplan/partplan/internal/plan"
)

func TestHashSubpartitionCount(t *testing.T) {
	tests := []struct {
		sizeGB float64
		want   int
	}{
		{0.5, 2},
		{1, 2},
		{1.1, 4},
		{10, 4},
		{10.5, 8},
		{50, 8},
		{51, 12},
		{100, 12},
		{120, 16},
		{500, 16},
	}
	for _, tt := range tests {
		if got := HashSubpartitionCount(tt.sizeGB); got != tt.want {
			t.Errorf("HashSubpartitionCount(%v) = %d, want %d", tt.sizeGB, got, tt.want)
		}
	}
}

func TestIntervalType(t *testing.T) {
	tests := []struct {
		name     string
		rowCount int64
		sizeGB   float64
		want     plan.IntervalType
	}{
		{"very high volume", 500_000_000, 200, plan.IntervalHour},
		{"high volume", 50_000_000, 120, plan.IntervalDay},
		{"exactly daily threshold", 36_500_000, 10, plan.IntervalMonth},
		{"moderate volume", 1_000_000, 5, plan.IntervalMonth},
		{"no stats large", 0, 150, plan.IntervalDay},
		{"no stats small", 0, 20, plan.IntervalMonth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalType(tt.rowCount, tt.sizeGB); got != tt.want {
				t.Errorf("IntervalType(%d, %v) = %s, want %s", tt.rowCount, tt.sizeGB, got, tt.want)
			}
		})
	}
}

func TestParallelDegree(t *testing.T) {
	tests := []struct {
		sizeGB float64
		want   int
	}{
		{0.5, 2},
		{10, 2},
		{11, 4},
		{50, 4},
		{60, 6},
		{100, 6},
		{101, 8},
	}
	for _, tt := range tests {
		if got := ParallelDegree(tt.sizeGB); got != tt.want {
			t.Errorf("ParallelDegree(%v) = %d, want %d", tt.sizeGB, got, tt.want)
		}
	}
}

func TestEstimatedHours(t *testing.T) {
	tests := []struct {
		sizeGB     float64
		indexCount int
		want       float64
	}{
		{120, 0, 15.0},
		{120, 2, 16.5},
		{0.01, 0, 0.1},   // floor applies
		{0.01, 1, 0.9},   // floor plus one index
		{8, 0, 1.0},
		{100, 4, 15.5},
	}
	for _, tt := range tests {
		if got := EstimatedHours(tt.sizeGB, tt.indexCount); got != tt.want {
			t.Errorf("EstimatedHours(%v, %d) = %v, want %v", tt.sizeGB, tt.indexCount, got, tt.want)
		}
	}
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		sizeGB   float64
		lobCount int
		want     plan.Priority
	}{
		{120, 0, plan.PriorityHigh},
		{51, 0, plan.PriorityHigh},
		{50, 0, plan.PriorityMedium},
		{20, 0, plan.PriorityMedium},
		{5, 2, plan.PriorityMedium},
		{5, 0, plan.PriorityLow},
	}
	for _, tt := range tests {
		if got := PriorityFor(tt.sizeGB, tt.lobCount); got != tt.want {
			t.Errorf("PriorityFor(%v, %d) = %s, want %s", tt.sizeGB, tt.lobCount, got, tt.want)
		}
	}
}

func TestAction(t *testing.T) {
	tests := []struct {
		name             string
		isPartitioned    bool
		isInterval       bool
		hasSubpartitions bool
		want             plan.MigrationAction
	}{
		{"unpartitioned", false, false, false, plan.ActionAddIntervalHash},
		{"interval only", true, true, false, plan.ActionAddHashSubpartitions},
		{"interval with subparts", true, true, true, plan.ActionConvertIntervalToHash},
		{"range partitioned", true, false, false, plan.ActionConvertToIntervalHash},
		{"range with subparts", true, false, true, plan.ActionConvertToIntervalHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Action(tt.isPartitioned, tt.isInterval, tt.hasSubpartitions)
			if got != tt.want {
				t.Errorf("Action(%v, %v, %v) = %s, want %s",
					tt.isPartitioned, tt.isInterval, tt.hasSubpartitions, got, tt.want)
			}
		})
	}
}

func largeProfile() *plan.TableProfile {
	return &plan.TableProfile{
		Owner:            "SALES",
		Name:             "ORDERS",
		SizeGB:           120,
		RowCount:         50_000_000,
		IndexCount:       3,
		TimestampColumns: []string{"CREATED_AT", "UPDATED_AT"},
		NumericColumns:   []string{"CUSTOMER_ID", "ORDER_ID"},
		StringColumns:    []string{"REGION_CODE"},
	}
}

func TestShouldEnable(t *testing.T) {
	p := largeProfile()
	if !ShouldEnable(p) {
		t.Error("expected large unpartitioned table to be enabled")
	}

	noTS := largeProfile()
	noTS.TimestampColumns = nil
	if ShouldEnable(noTS) {
		t.Error("expected table without timestamp columns to be disabled")
	}

	noHash := largeProfile()
	noHash.NumericColumns = nil
	noHash.StringColumns = nil
	if ShouldEnable(noHash) {
		t.Error("expected table without hash candidates to be disabled")
	}

	already := largeProfile()
	already.Partitioning = &plan.PartitionState{
		PartitionType:     "RANGE",
		Interval:          "NUMTOYMINTERVAL(1, 'MONTH')",
		SubpartitionType:  "HASH",
		SubpartitionCount: 8,
	}
	if ShouldEnable(already) {
		t.Error("expected already interval+hash table to be disabled")
	}
}

func TestBuildTarget_LargeTable(t *testing.T) {
	p := largeProfile()
	env := plan.GlobalProfile()
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

	target := BuildTarget(p, env, now)

	if target.PartitionType != "INTERVAL" {
		t.Errorf("expected INTERVAL, got %s", target.PartitionType)
	}
	if target.PartitionColumn != "CREATED_AT" {
		t.Errorf("expected CREATED_AT partition column, got %s", target.PartitionColumn)
	}
	if target.IntervalType != plan.IntervalDay {
		t.Errorf("expected DAY interval, got %s", target.IntervalType)
	}
	if target.SubpartitionColumn != "CUSTOMER_ID" {
		t.Errorf("expected CUSTOMER_ID subpartition column, got %s", target.SubpartitionColumn)
	}
	if target.SubpartitionCount != 16 {
		t.Errorf("expected 16 subpartitions, got %d", target.SubpartitionCount)
	}
	if target.ParallelDegree != 8 {
		t.Errorf("expected parallel degree 8, got %d", target.ParallelDegree)
	}
	if target.InitialPartitionValue != "TO_DATE('2026-04-01', 'YYYY-MM-DD')" {
		t.Errorf("unexpected boundary: %s", target.InitialPartitionValue)
	}
}

func TestBuildTarget_StringFallback(t *testing.T) {
	p := largeProfile()
	p.NumericColumns = nil

	target := BuildTarget(p, plan.GlobalProfile(), time.Now())
	if target.SubpartitionColumn != "REGION_CODE" {
		t.Errorf("expected REGION_CODE fallback, got %s", target.SubpartitionColumn)
	}
}

func TestBuildTarget_NoHashCandidate(t *testing.T) {
	p := largeProfile()
	p.NumericColumns = nil
	p.StringColumns = nil

	target := BuildTarget(p, plan.GlobalProfile(), time.Now())
	if target.SubpartitionType != plan.SubpartitionNone {
		t.Errorf("expected no subpartitioning, got %s", target.SubpartitionType)
	}
	if target.SubpartitionCount != 1 {
		t.Errorf("expected count 1, got %d", target.SubpartitionCount)
	}
}

func TestBuildTarget_ClampsToEnvironment(t *testing.T) {
	p := largeProfile()
	env := plan.GlobalProfile()
	env.MaxSubpartitionCount = 8
	env.MaxParallelDegree = 4

	target := BuildTarget(p, env, time.Now())
	if target.SubpartitionCount != 8 {
		t.Errorf("expected clamp to 8, got %d", target.SubpartitionCount)
	}
	if target.ParallelDegree != 4 {
		t.Errorf("expected clamp to 4, got %d", target.ParallelDegree)
	}
}

func TestBuildTarget_LOBTablespaces(t *testing.T) {
	p := largeProfile()
	p.LOBs = []plan.LOBInfo{
		{ColumnName: "PAYLOAD", Tablespace: "LOB_DATA"},
		{ColumnName: "NOTES"},
	}
	env := plan.GlobalProfile()

	target := BuildTarget(p, env, time.Now())
	if target.LOBTablespaces["PAYLOAD"] != "LOB_DATA" {
		t.Errorf("expected LOB_DATA, got %s", target.LOBTablespaces["PAYLOAD"])
	}
	if target.LOBTablespaces["NOTES"] != env.DefaultLOBTablespace {
		t.Errorf("expected default LOB tablespace, got %s", target.LOBTablespaces["NOTES"])
	}
}

func TestBuildSettings(t *testing.T) {
	p := largeProfile()
	s := BuildSettings(p)

	if s.EstimatedHours != 17.3 {
		t.Errorf("expected 17.3 hours, got %v", s.EstimatedHours)
	}
	if s.Priority != plan.PriorityHigh {
		t.Errorf("expected HIGH priority, got %s", s.Priority)
	}
	if !s.EnableDeltaLoad {
		t.Error("expected delta load for 50M rows")
	}
	if !s.ValidateData || !s.BackupOldTable || !s.ConstraintValidation {
		t.Error("expected safety settings on by default")
	}
	if s.DropOldAfterDays != 30 {
		t.Errorf("expected 30 day retention, got %d", s.DropOldAfterDays)
	}

	small := &plan.TableProfile{SizeGB: 2, RowCount: 500_000}
	if BuildSettings(small).EnableDeltaLoad {
		t.Error("expected no delta load for small table")
	}
}

func TestActionFor(t *testing.T) {
	p := largeProfile()
	if got := ActionFor(p); got != plan.ActionAddIntervalHash {
		t.Errorf("unpartitioned: got %s", got)
	}

	p.Partitioning = &plan.PartitionState{PartitionType: "RANGE", Interval: "NUMTODSINTERVAL(1, 'DAY')"}
	if got := ActionFor(p); got != plan.ActionAddHashSubpartitions {
		t.Errorf("interval only: got %s", got)
	}

	p.Partitioning.SubpartitionType = "HASH"
	p.Partitioning.SubpartitionCount = 4
	if got := ActionFor(p); got != plan.ActionConvertIntervalToHash {
		t.Errorf("interval+hash: got %s", got)
	}

	p.Partitioning = &plan.PartitionState{PartitionType: "LIST"}
	if got := ActionFor(p); got != plan.ActionConvertToIntervalHash {
		t.Errorf("list partitioned: got %s", got)
	}
}
