// Package catalog provides the read-only query session the planner uses to
// inspect the database dictionary. The session is a non-shareable resource:
// one logical operation owns it at a time and must Close it on every exit
// path.
package catalog

import "context"

// Session executes read-only queries against one database connection.
// Identifiers embedded in query text must come from prior catalog reads or
// validated configuration, never free text; values travel as bind parameters.
type Session interface {
	// QueryRows runs a query and returns all rows as column-name keyed maps.
	QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error)

	// QueryValue runs a query expected to return a single value. A query
	// with no rows returns (nil, nil).
	QueryValue(ctx context.Context, sql string, args ...any) (any, error)

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
