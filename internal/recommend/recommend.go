// Package recommend contains the pure recommendation functions that map a
// discovered table profile onto a target partitioning configuration. Nothing
// in this package performs I/O; every function is deterministic in its
// arguments, which makes this the unit-test surface for recommendation
// correctness.
package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/partplan/partplan/internal/plan"
)

// HashSubpartitionCount returns the recommended hash subpartition count for a
// table of the given size.
func HashSubpartitionCount(sizeGB float64) int {
	switch {
	case sizeGB > 100:
		return 16
	case sizeGB > 50:
		return 12
	case sizeGB > 10:
		return 8
	case sizeGB > 1:
		return 4
	default:
		return 2
	}
}

// IntervalType picks the partition interval granularity from annual row
// volume, falling back to size when row statistics are absent.
func IntervalType(rowCount int64, sizeGB float64) plan.IntervalType {
	if rowCount > 0 {
		rowsPerDay := float64(rowCount) / 365
		switch {
		case rowsPerDay > 1_000_000:
			return plan.IntervalHour
		case rowsPerDay > 100_000:
			return plan.IntervalDay
		default:
			return plan.IntervalMonth
		}
	}
	if sizeGB > 100 {
		return plan.IntervalDay
	}
	return plan.IntervalMonth
}

// ParallelDegree returns the recommended DDL parallel degree for a table of
// the given size.
func ParallelDegree(sizeGB float64) int {
	switch {
	case sizeGB > 100:
		return 8
	case sizeGB > 50:
		return 6
	case sizeGB > 10:
		return 4
	default:
		return 2
	}
}

// EstimatedHours estimates the migration duration, rounded to one decimal.
// Data movement is modeled at 8 GB/h with a 6-minute floor, plus 45 minutes
// per index rebuild.
func EstimatedHours(sizeGB float64, indexCount int) float64 {
	hours := math.Max(sizeGB/8, 0.1) + float64(indexCount)*0.75
	return math.Round(hours*10) / 10
}

// PriorityFor ranks migration urgency from size and LOB presence.
func PriorityFor(sizeGB float64, lobCount int) plan.Priority {
	switch {
	case sizeGB > 50:
		return plan.PriorityHigh
	case lobCount > 0 || sizeGB > 10:
		return plan.PriorityMedium
	default:
		return plan.PriorityLow
	}
}

// Action determines the structural migration action from the table's current
// partitioning state.
func Action(isPartitioned, isInterval, hasSubpartitions bool) plan.MigrationAction {
	switch {
	case !isPartitioned:
		return plan.ActionAddIntervalHash
	case isInterval && !hasSubpartitions:
		return plan.ActionAddHashSubpartitions
	case isInterval && hasSubpartitions:
		return plan.ActionConvertIntervalToHash
	default:
		return plan.ActionConvertToIntervalHash
	}
}

// ShouldEnable reports whether a table qualifies for automatic enablement:
// it needs a timestamp-like partition key candidate, a numeric or bounded
// string hash key candidate, and must not already carry the target scheme.
func ShouldEnable(p *plan.TableProfile) bool {
	if len(p.TimestampColumns) == 0 {
		return false
	}
	if len(p.NumericColumns) == 0 && len(p.StringColumns) == 0 {
		return false
	}
	if p.Partitioning.IsInterval() && p.Partitioning.HasSubpartitions() {
		return false
	}
	return true
}

// BuildTarget assembles the full recommended target configuration for a
// profile under the given environment, clamping counts and degrees to the
// environment bounds.
func BuildTarget(p *plan.TableProfile, env plan.EnvironmentProfile, now time.Time) plan.TargetConfiguration {
	target := plan.TargetConfiguration{
		PartitionType:    "INTERVAL",
		IntervalType:     IntervalType(p.RowCount, p.SizeGB),
		IntervalValue:    1,
		SubpartitionType: plan.SubpartitionHash,
		SubpartitionCount: clamp(HashSubpartitionCount(p.SizeGB),
			env.MinSubpartitionCount, env.MaxSubpartitionCount),
		Tablespace:     env.DefaultTablespace,
		ParallelDegree: clamp(ParallelDegree(p.SizeGB), env.MinParallelDegree, env.MaxParallelDegree),
	}
	if p.Storage.Tablespace != "" {
		target.Tablespace = p.Storage.Tablespace
	}

	if len(p.TimestampColumns) > 0 {
		target.PartitionColumn = p.TimestampColumns[0]
	}
	switch {
	case len(p.NumericColumns) > 0:
		target.SubpartitionColumn = p.NumericColumns[0]
	case len(p.StringColumns) > 0:
		target.SubpartitionColumn = p.StringColumns[0]
	default:
		target.SubpartitionType = plan.SubpartitionNone
		target.SubpartitionCount = 1
	}

	// Initial boundary: first day of the month after discovery, so freshly
	// arriving rows land in system-generated interval partitions.
	boundary := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	target.InitialPartitionValue = fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD')", boundary.Format("2006-01-02"))

	if len(p.LOBs) > 0 {
		target.LOBTablespaces = make(map[string]string, len(p.LOBs))
		for _, lob := range p.LOBs {
			ts := lob.Tablespace
			if ts == "" {
				ts = env.DefaultLOBTablespace
			}
			target.LOBTablespaces[lob.ColumnName] = ts
		}
	}

	return target
}

// BuildSettings derives the per-table execution settings from the profile.
func BuildSettings(p *plan.TableProfile) plan.MigrationSettings {
	return plan.MigrationSettings{
		EstimatedHours:        EstimatedHours(p.SizeGB, p.IndexCount),
		Priority:              PriorityFor(p.SizeGB, p.LOBCount),
		ValidateData:          true,
		BackupOldTable:        true,
		DropOldAfterDays:      30,
		MigrateData:           true,
		EnableDeltaLoad:       p.RowCount > 10_000_000,
		DeltaIntervalMinutes:  60,
		ConstraintValidation:  true,
		AutoEnableConstraints: true,
	}
}

// ActionFor is Action applied to a profile's discovered partition state.
func ActionFor(p *plan.TableProfile) plan.MigrationAction {
	ps := p.Partitioning
	return Action(ps != nil, ps.IsInterval(), ps.HasSubpartitions())
}

func clamp(val, min, max int) int {
	if min > 0 && val < min {
		return min
	}
	if max > 0 && val > max {
		return max
	}
	return val
}
