// Package plan defines the migration plan document: the per-table profiles
// discovered from the catalog, the recommended target partitioning
// configuration, and the metadata that ties a document back to the discovery
// run that produced it.
package plan

import "fmt"

// IntervalType is the granularity of an interval partition.
type IntervalType string

const (
	IntervalHour  IntervalType = "HOUR"
	IntervalDay   IntervalType = "DAY"
	IntervalWeek  IntervalType = "WEEK"
	IntervalMonth IntervalType = "MONTH"
)

// Valid reports whether the interval type is one of the known granularities.
func (it IntervalType) Valid() bool {
	switch it {
	case IntervalHour, IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// Priority ranks how urgently a table should be migrated.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Valid reports whether the priority is a known level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// MigrationAction identifies the structural change a table needs.
type MigrationAction string

const (
	ActionAddIntervalHash       MigrationAction = "ADD_INTERVAL_HASH_PARTITIONING"
	ActionAddHashSubpartitions  MigrationAction = "ADD_HASH_SUBPARTITIONS"
	ActionConvertIntervalToHash MigrationAction = "CONVERT_INTERVAL_TO_INTERVAL_HASH"
	ActionConvertToIntervalHash MigrationAction = "CONVERT_TO_INTERVAL_HASH"
)

// Valid reports whether the action is a known migration action.
func (a MigrationAction) Valid() bool {
	switch a {
	case ActionAddIntervalHash, ActionAddHashSubpartitions,
		ActionConvertIntervalToHash, ActionConvertToIntervalHash:
		return true
	}
	return false
}

// SubpartitionType is the subpartitioning scheme of the target table.
type SubpartitionType string

const (
	SubpartitionHash SubpartitionType = "HASH"
	SubpartitionNone SubpartitionType = "NONE"
)

// Valid reports whether the subpartition type is known.
func (st SubpartitionType) Valid() bool {
	return st == SubpartitionHash || st == SubpartitionNone
}

// ColumnInfo describes one column as read from the catalog. Immutable after
// discovery.
type ColumnInfo struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	DataLength int    `json:"data_length,omitempty"`
	Precision  *int   `json:"precision,omitempty"`
	Scale      *int   `json:"scale,omitempty"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"default,omitempty"`
	Identity   bool   `json:"identity,omitempty"`
}

// IndexInfo describes one index on a table.
type IndexInfo struct {
	Name       string   `json:"name"`
	Unique     bool     `json:"unique"`
	Type       string   `json:"type,omitempty"`
	Tablespace string   `json:"tablespace,omitempty"`
	Columns    []string `json:"columns"`
}

// LOBInfo describes one LOB segment on a table.
type LOBInfo struct {
	ColumnName  string `json:"column_name"`
	SegmentName string `json:"segment_name,omitempty"`
	Tablespace  string `json:"tablespace,omitempty"`
	SecureFile  bool   `json:"securefile,omitempty"`
}

// GrantInfo describes one object privilege granted on a table.
type GrantInfo struct {
	Grantee   string `json:"grantee"`
	Privilege string `json:"privilege"`
	Grantable bool   `json:"grantable,omitempty"`
}

// StorageInfo holds the physical storage parameters of a table.
type StorageInfo struct {
	Tablespace  string `json:"tablespace,omitempty"`
	PctFree     int    `json:"pct_free,omitempty"`
	IniTrans    int    `json:"ini_trans,omitempty"`
	Logging     bool   `json:"logging,omitempty"`
	Compression string `json:"compression,omitempty"`
}

// PartitionState describes the current partitioning of a table, when present.
type PartitionState struct {
	PartitionType     string `json:"partition_type"`
	SubpartitionType  string `json:"subpartition_type,omitempty"`
	Interval          string `json:"interval,omitempty"`
	PartitionKey      string `json:"partition_key,omitempty"`
	PartitionCount    int    `json:"partition_count"`
	SubpartitionCount int    `json:"subpartition_count,omitempty"`
}

// IsInterval reports whether the current scheme is interval partitioning.
func (ps *PartitionState) IsInterval() bool {
	return ps != nil && ps.Interval != ""
}

// HasSubpartitions reports whether the current scheme has subpartitions.
func (ps *PartitionState) HasSubpartitions() bool {
	return ps != nil && ps.SubpartitionType != "" && ps.SubpartitionType != "NONE"
}

// TableProfile is the discovered current state of one table. Built once per
// discovery run and never mutated afterwards.
type TableProfile struct {
	Owner     string  `json:"owner"`
	Name      string  `json:"name"`
	SizeGB    float64 `json:"size_gb"`
	RowCount  int64   `json:"row_count"`
	AvgRowLen int     `json:"avg_row_len,omitempty"`

	LOBCount   int `json:"lob_count"`
	IndexCount int `json:"index_count"`

	Columns          []ColumnInfo `json:"columns"`
	TimestampColumns []string     `json:"timestamp_columns,omitempty"`
	NumericColumns   []string     `json:"numeric_columns,omitempty"`
	StringColumns    []string     `json:"string_columns,omitempty"`

	Indexes []IndexInfo `json:"indexes,omitempty"`
	LOBs    []LOBInfo   `json:"lobs,omitempty"`
	Grants  []GrantInfo `json:"grants,omitempty"`
	Storage StorageInfo `json:"storage,omitempty"`

	Partitioning *PartitionState `json:"partitioning,omitempty"`
}

// HasTimestampColumn reports whether the named column is in the
// timestamp-like set.
func (p *TableProfile) HasTimestampColumn(name string) bool {
	return containsString(p.TimestampColumns, name)
}

// HasHashCandidateColumn reports whether the named column is in the numeric
// or bounded-string sets (the legal HASH subpartition keys).
func (p *TableProfile) HasHashCandidateColumn(name string) bool {
	return containsString(p.NumericColumns, name) || containsString(p.StringColumns, name)
}

// Column returns the column with the given name, or nil.
func (p *TableProfile) Column(name string) *ColumnInfo {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i]
		}
	}
	return nil
}

// TargetConfiguration is the recommended (and operator-editable) target
// partitioning scheme for one table.
type TargetConfiguration struct {
	PartitionType         string            `json:"partition_type"` // always INTERVAL
	PartitionColumn       string            `json:"partition_column"`
	IntervalType          IntervalType      `json:"interval_type"`
	IntervalValue         int               `json:"interval_value"`
	InitialPartitionValue string            `json:"initial_partition_value"`
	SubpartitionType      SubpartitionType  `json:"subpartition_type"`
	SubpartitionColumn    string            `json:"subpartition_column,omitempty"`
	SubpartitionCount     int               `json:"subpartition_count"`
	Tablespace            string            `json:"tablespace,omitempty"`
	LOBTablespaces        map[string]string `json:"lob_tablespaces,omitempty"`
	ParallelDegree        int               `json:"parallel_degree"`
}

// MigrationSettings hold per-table execution knobs.
type MigrationSettings struct {
	EstimatedHours        float64  `json:"estimated_hours"`
	Priority              Priority `json:"priority"`
	ValidateData          bool     `json:"validate_data"`
	BackupOldTable        bool     `json:"backup_old_table"`
	DropOldAfterDays      int      `json:"drop_old_after_days"`
	MigrateData           bool     `json:"migrate_data"`
	EnableDeltaLoad       bool     `json:"enable_delta_load"`
	DeltaIntervalMinutes  int      `json:"delta_interval_minutes,omitempty"`
	ConstraintValidation  bool     `json:"constraint_validation"`
	AutoEnableConstraints bool     `json:"auto_enable_constraints"`
}

// TableMigrationPlan is one table's complete migration plan.
type TableMigrationPlan struct {
	Enabled         bool                `json:"enabled"`
	Owner           string              `json:"owner"`
	TableName       string              `json:"table_name"`
	CurrentState    TableProfile        `json:"current_state"`
	Target          TargetConfiguration `json:"target"`
	Settings        MigrationSettings   `json:"settings"`
	MigrationAction MigrationAction     `json:"migration_action"`

	// Warnings recorded during discovery for this table (partial analysis).
	DiscoveryWarnings []string `json:"discovery_warnings,omitempty"`
}

// QualifiedName returns OWNER.TABLE_NAME.
func (t *TableMigrationPlan) QualifiedName() string {
	return fmt.Sprintf("%s.%s", t.Owner, t.TableName)
}

// Metadata describes the discovery run that produced a document.
type Metadata struct {
	GeneratedDate              string `json:"generated_date"`
	SourceSchema               string `json:"source_schema"`
	SourceDatabaseService      string `json:"source_database_service,omitempty"`
	DiscoveryCriteria          string `json:"discovery_criteria,omitempty"`
	TotalTablesFound           int    `json:"total_tables_found"`
	TablesSelectedForMigration int    `json:"tables_selected_for_migration"`
	DiscoveryValidationHash    string `json:"discovery_validation_hash,omitempty"`
}

// Document is the complete migration plan: metadata, the resolved environment
// profile, and an ordered list of per-table plans. Created by discovery,
// optionally hand-edited by an operator, and consumed read-only by the
// validators.
type Document struct {
	Metadata    Metadata             `json:"metadata"`
	Environment EnvironmentProfile   `json:"environment"`
	Tables      []TableMigrationPlan `json:"tables"`
}

// Table returns the plan for the named table, or nil.
func (d *Document) Table(name string) *TableMigrationPlan {
	for i := range d.Tables {
		if d.Tables[i].TableName == name {
			return &d.Tables[i]
		}
	}
	return nil
}

// EnabledCount returns how many tables are enabled for migration.
func (d *Document) EnabledCount() int {
	n := 0
	for i := range d.Tables {
		if d.Tables[i].Enabled {
			n++
		}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
