package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Oracle driver
	_ "github.com/sijms/go-ora/v2"
)

// OracleSession implements Session over go-ora (pure Go, no Instant Client).
type OracleSession struct {
	connStr string
	db      *sql.DB
}

// ConnString builds the go-ora connection URL.
func ConnString(username, password, host string, port int, service string) string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s", username, password, host, port, service)
}

// Open opens and pings an Oracle session. The connection pool is capped at
// one connection so the session stays single-owner.
func Open(ctx context.Context, connStr string) (*OracleSession, error) {
	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening Oracle connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging Oracle: %w", err)
	}

	return &OracleSession{connStr: connStr, db: db}, nil
}

func (s *OracleSession) QueryRows(ctx context.Context, sqlStr string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return results, nil
}

func (s *OracleSession) QueryValue(ctx context.Context, sqlStr string, args ...any) (any, error) {
	var val any
	err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return val, nil
}

func (s *OracleSession) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *OracleSession) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// QuoteIdent quotes an identifier for embedding in query text. Only
// catalog-derived identifiers may be passed here.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// compile-time interface check
var _ Session = (*OracleSession)(nil)
