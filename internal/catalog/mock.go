package catalog

import (
	"context"
	"strings"
)

// Stub matches queries containing Contains (case-insensitive) and returns the
// configured rows or error. With Args set, bind arguments must also match.
type Stub struct {
	Contains string
	Args     []any
	Rows     []map[string]any
	Err      error
}

// MockSession is a test double for Session. Queries are matched against
// stubs in order; the first match wins. Unmatched queries return no rows.
type MockSession struct {
	Stubs   []Stub
	PingErr error

	Queries []string // every query text seen, in order
	Closed  bool
}

// AddStub appends a stub rule.
func (m *MockSession) AddStub(contains string, rows []map[string]any) {
	m.Stubs = append(m.Stubs, Stub{Contains: contains, Rows: rows})
}

// AddStubErr appends a stub rule that fails.
func (m *MockSession) AddStubErr(contains string, err error) {
	m.Stubs = append(m.Stubs, Stub{Contains: contains, Err: err})
}

func (m *MockSession) QueryRows(_ context.Context, sqlStr string, args ...any) ([]map[string]any, error) {
	m.Queries = append(m.Queries, sqlStr)
	for _, st := range m.Stubs {
		if !strings.Contains(strings.ToUpper(sqlStr), strings.ToUpper(st.Contains)) {
			continue
		}
		if st.Args != nil && !argsEqual(st.Args, args) {
			continue
		}
		return st.Rows, st.Err
	}
	return nil, nil
}

func (m *MockSession) QueryValue(ctx context.Context, sqlStr string, args ...any) (any, error) {
	rows, err := m.QueryRows(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for _, v := range rows[0] {
		return v, nil
	}
	return nil, nil
}

func (m *MockSession) Ping(_ context.Context) error {
	return m.PingErr
}

func (m *MockSession) Close() error {
	m.Closed = true
	return nil
}

func argsEqual(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

var _ Session = (*MockSession)(nil)
