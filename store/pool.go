package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared connection pool. Single statements run directly on the pool and hold a
// connection only for the statement; Acquire hands out a dedicated connection for a transaction.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Conn is a connection checked out of the pool. Release must be called exactly once.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Release()
}

// Tx is the subset of pgx.Tx used by multi-statement writes.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Rows is the subset of pgx.Rows used by list queries.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// NewPgxPool adapts a pgx pool to Pool.
func NewPgxPool(p *pgxpool.Pool) Pool {
	return pgxPool{p}
}

type pgxPool struct {
	*pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pgxConn{c}, nil
}

func (p pgxPool) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return p.Pool.Query(ctx, sql, args...)
}

type pgxConn struct {
	*pgxpool.Conn
}

func (c pgxConn) Begin(ctx context.Context) (Tx, error) {
	return c.Conn.Begin(ctx)
}
