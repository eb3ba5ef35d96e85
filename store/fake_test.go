package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow scans a fixed list of values into the destinations. A nil value leaves the
// destination at its zero value.
type fakeRow struct {
	values []any
	err    error
}

func rowOf(values ...any) fakeRow { return fakeRow{values: values} }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("fakeRow: scan into %d destinations, have %d values", len(dest), len(r.values))
	}
	for i, v := range r.values {
		if v == nil {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
	err  error

	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return r.rows[r.pos-1].Scan(dest...) }
func (r *fakeRows) Err() error             { return r.err }
func (r *fakeRows) Close()                 { r.closed = true }

type call struct {
	sql  string
	args []any
}

type fakeTx struct {
	queryRow  func(n int, sql string, args []any) pgx.Row
	commitErr error

	calls     []call
	commits   int
	rollbacks int
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.calls = append(t.calls, call{sql, args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	t.calls = append(t.calls, call{sql, args})
	return t.queryRow(len(t.calls)-1, sql, args)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.commits++
	return nil
}

// Rollback counts only rollbacks of a transaction that was not committed.
func (t *fakeTx) Rollback(context.Context) error {
	if t.commits == 0 {
		t.rollbacks++
	}
	return nil
}

type fakeConn struct {
	tx       *fakeTx
	beginErr error
	releases int
}

func (c *fakeConn) Begin(context.Context) (Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

func (c *fakeConn) Release() { c.releases++ }

type fakePool struct {
	conn       *fakeConn
	acquireErr error
	acquires   int

	query    func(sql string, args []any) (Rows, error)
	queryRow func(sql string, args []any) pgx.Row
	exec     func(sql string, args []any) (pgconn.CommandTag, error)
	calls    []call
}

func (p *fakePool) Acquire(context.Context) (Conn, error) {
	p.acquires++
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conn, nil
}

func (p *fakePool) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	p.calls = append(p.calls, call{sql, args})
	return p.query(sql, args)
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.calls = append(p.calls, call{sql, args})
	return p.queryRow(sql, args)
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.calls = append(p.calls, call{sql, args})
	return p.exec(sql, args)
}
