package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	rows := &fakeRows{}
	pool := &fakePool{
		queryRow: func(string, []any) pgx.Row {
			return rowOf(int64(3), int64(12), int64(2), int64(4), decimal.RequireFromString("120.50"), decimal.NewFromInt(30))
		},
		query: func(string, []any) (Rows, error) { return rows, nil },
	}

	d, err := New(pool).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.TotalInvoices)
	assert.Equal(t, int64(12), d.TotalProducts)
	assert.Equal(t, int64(2), d.TotalCategories)
	assert.Equal(t, int64(4), d.TotalUsers)
	assert.Equal(t, "120.5", d.Revenue.String())
	assert.True(t, d.RevenueToday.Equal(decimal.NewFromInt(30)))
	assert.NotNil(t, d.RecentInvoices)
	assert.Empty(t, d.RecentInvoices)
	assert.True(t, rows.closed)

	require.Len(t, pool.calls, 2)
	assert.Contains(t, pool.calls[0].sql, "(created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date")
	assert.Contains(t, pool.calls[1].sql, "WHERE i.deleted = false GROUP BY i.id ORDER BY i.created_at DESC, i.id DESC LIMIT $1")
	assert.Equal(t, []any{RecentInvoiceLimit}, pool.calls[1].args)
}

func TestDashboardTotalsError(t *testing.T) {
	pool := &fakePool{
		queryRow: func(string, []any) pgx.Row { return fakeRow{err: errors.New("boom")} },
	}

	_, err := New(pool).Dashboard(context.Background())
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "dashboard totals", qerr.Op)
}
