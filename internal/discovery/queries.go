package discovery

import (
	"context"
	"strings"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plan"
)

// The discovery query set is fixed and bounded: six dictionary reads per
// table plus one enumeration per run. All object names travel through bind
// parameters.

func (d *Discoverer) listTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM ALL_TABLES
		WHERE OWNER = :1
		  AND TEMPORARY = 'N'
		  AND NESTED = 'NO'
		ORDER BY TABLE_NAME`

	rows, err := d.sess.QueryRows(ctx, query, d.opts.Schema)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, row := range rows {
		name := catalog.AsString(row["TABLE_NAME"])
		if name == "" || !d.matchesPatterns(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (d *Discoverer) loadStats(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT NVL(NUM_ROWS, 0) AS NUM_ROWS, NVL(AVG_ROW_LEN, 0) AS AVG_ROW_LEN,
		       TABLESPACE_NAME, PCT_FREE, INI_TRANS, LOGGING, COMPRESSION
		FROM ALL_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]

	p.RowCount = catalog.AsInt64(row["NUM_ROWS"])
	p.AvgRowLen = int(catalog.AsInt64(row["AVG_ROW_LEN"]))
	p.SizeGB = estimateSizeGB(p.RowCount, p.AvgRowLen)
	p.Storage = plan.StorageInfo{
		Tablespace:  catalog.AsString(row["TABLESPACE_NAME"]),
		PctFree:     int(catalog.AsInt64(row["PCT_FREE"])),
		IniTrans:    int(catalog.AsInt64(row["INI_TRANS"])),
		Logging:     catalog.AsString(row["LOGGING"]) == "YES",
		Compression: catalog.AsString(row["COMPRESSION"]),
	}
	return nil
}

// estimateSizeGB estimates table size from optimizer statistics, floored at
// 0.01 GB for any non-empty table so tiny tables never round to zero.
func estimateSizeGB(rowCount int64, avgRowLen int) float64 {
	sizeGB := float64(rowCount) * float64(avgRowLen) / (1024 * 1024 * 1024)
	if rowCount > 0 && sizeGB < 0.01 {
		return 0.01
	}
	return sizeGB
}

func (d *Discoverer) loadPartitionState(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT PARTITIONING_TYPE, SUBPARTITIONING_TYPE, INTERVAL, PARTITION_COUNT
		FROM ALL_PART_TABLES
		WHERE OWNER = :1 AND TABLE_NAME = :2`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil // not partitioned
	}
	row := rows[0]

	state := &plan.PartitionState{
		PartitionType:    catalog.AsString(row["PARTITIONING_TYPE"]),
		SubpartitionType: catalog.AsString(row["SUBPARTITIONING_TYPE"]),
		Interval:         catalog.AsString(row["INTERVAL"]),
		PartitionCount:   int(catalog.AsInt64(row["PARTITION_COUNT"])),
	}
	if state.SubpartitionType == "NONE" {
		state.SubpartitionType = ""
	}

	keyRows, err := d.sess.QueryRows(ctx, `
		SELECT COLUMN_NAME
		FROM ALL_PART_KEY_COLUMNS
		WHERE OWNER = :1 AND NAME = :2 AND OBJECT_TYPE = 'TABLE'
		ORDER BY COLUMN_POSITION`, p.Owner, p.Name)
	if err != nil {
		return err
	}
	if len(keyRows) > 0 {
		state.PartitionKey = catalog.AsString(keyRows[0]["COLUMN_NAME"])
	}

	if state.SubpartitionType != "" {
		cnt, err := d.sess.QueryValue(ctx, `
			SELECT COUNT(*) FROM ALL_TAB_SUBPARTITIONS
			WHERE TABLE_OWNER = :1 AND TABLE_NAME = :2`, p.Owner, p.Name)
		if err != nil {
			return err
		}
		state.SubpartitionCount = int(catalog.AsInt64(cnt))
	}

	p.Partitioning = state
	return nil
}

func (d *Discoverer) loadColumns(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, DATA_LENGTH, DATA_PRECISION, DATA_SCALE,
		       NULLABLE, DATA_DEFAULT, IDENTITY_COLUMN
		FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1 AND TABLE_NAME = :2
		ORDER BY COLUMN_ID`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}

	for _, row := range rows {
		col := plan.ColumnInfo{
			Name:       catalog.AsString(row["COLUMN_NAME"]),
			DataType:   catalog.AsString(row["DATA_TYPE"]),
			DataLength: int(catalog.AsInt64(row["DATA_LENGTH"])),
			Nullable:   catalog.AsString(row["NULLABLE"]) == "Y",
			Default:    catalog.AsString(row["DATA_DEFAULT"]),
			Identity:   catalog.AsString(row["IDENTITY_COLUMN"]) == "YES",
		}
		if v := row["DATA_PRECISION"]; v != nil {
			prec := int(catalog.AsInt64(v))
			col.Precision = &prec
		}
		if v := row["DATA_SCALE"]; v != nil {
			scale := int(catalog.AsInt64(v))
			col.Scale = &scale
		}
		p.Columns = append(p.Columns, col)
	}
	return nil
}

func (d *Discoverer) loadLOBs(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT COLUMN_NAME, SEGMENT_NAME, TABLESPACE_NAME, SECUREFILE
		FROM ALL_LOBS
		WHERE OWNER = :1 AND TABLE_NAME = :2
		ORDER BY COLUMN_NAME`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}

	for _, row := range rows {
		p.LOBs = append(p.LOBs, plan.LOBInfo{
			ColumnName:  catalog.AsString(row["COLUMN_NAME"]),
			SegmentName: catalog.AsString(row["SEGMENT_NAME"]),
			Tablespace:  catalog.AsString(row["TABLESPACE_NAME"]),
			SecureFile:  catalog.AsString(row["SECUREFILE"]) == "YES",
		})
	}
	p.LOBCount = len(p.LOBs)
	return nil
}

func (d *Discoverer) loadIndexes(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT i.INDEX_NAME, i.UNIQUENESS, i.INDEX_TYPE, i.TABLESPACE_NAME, ic.COLUMN_NAME
		FROM ALL_INDEXES i
		JOIN ALL_IND_COLUMNS ic
		  ON i.INDEX_NAME = ic.INDEX_NAME AND i.OWNER = ic.INDEX_OWNER
		WHERE i.TABLE_OWNER = :1 AND i.TABLE_NAME = :2
		ORDER BY i.INDEX_NAME, ic.COLUMN_POSITION`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}

	grouped := make(map[string]*plan.IndexInfo)
	var order []string
	for _, row := range rows {
		name := catalog.AsString(row["INDEX_NAME"])
		idx, exists := grouped[name]
		if !exists {
			idx = &plan.IndexInfo{
				Name:       name,
				Unique:     catalog.AsString(row["UNIQUENESS"]) == "UNIQUE",
				Type:       catalog.AsString(row["INDEX_TYPE"]),
				Tablespace: catalog.AsString(row["TABLESPACE_NAME"]),
			}
			grouped[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, catalog.AsString(row["COLUMN_NAME"]))
	}

	for _, name := range order {
		p.Indexes = append(p.Indexes, *grouped[name])
	}
	p.IndexCount = len(p.Indexes)
	return nil
}

func (d *Discoverer) loadGrants(ctx context.Context, p *plan.TableProfile) error {
	query := `
		SELECT GRANTEE, PRIVILEGE, GRANTABLE
		FROM ALL_TAB_PRIVS
		WHERE TABLE_SCHEMA = :1 AND TABLE_NAME = :2
		ORDER BY GRANTEE, PRIVILEGE`

	rows, err := d.sess.QueryRows(ctx, query, p.Owner, p.Name)
	if err != nil {
		return err
	}

	for _, row := range rows {
		p.Grants = append(p.Grants, plan.GrantInfo{
			Grantee:   catalog.AsString(row["GRANTEE"]),
			Privilege: catalog.AsString(row["PRIVILEGE"]),
			Grantable: catalog.AsString(row["GRANTABLE"]) == "YES",
		})
	}
	return nil
}

// classifyColumns fills the timestamp/numeric/string candidate sets from the
// full column list. Strings longer than 100 characters are poor hash keys and
// are excluded; each set is capped at 10 entries.
func classifyColumns(p *plan.TableProfile) {
	const maxPerClass = 10
	const maxStringLen = 100

	for _, col := range p.Columns {
		dt := strings.ToUpper(col.DataType)
		switch {
		case dt == "DATE" || strings.HasPrefix(dt, "TIMESTAMP"):
			if len(p.TimestampColumns) < maxPerClass {
				p.TimestampColumns = append(p.TimestampColumns, col.Name)
			}
		case dt == "NUMBER" || dt == "FLOAT" || dt == "INTEGER" ||
			dt == "BINARY_FLOAT" || dt == "BINARY_DOUBLE":
			if len(p.NumericColumns) < maxPerClass {
				p.NumericColumns = append(p.NumericColumns, col.Name)
			}
		case dt == "VARCHAR2" || dt == "CHAR" || dt == "NVARCHAR2" || dt == "NCHAR":
			if col.DataLength <= maxStringLen && len(p.StringColumns) < maxPerClass {
				p.StringColumns = append(p.StringColumns, col.Name)
			}
		}
	}
}
