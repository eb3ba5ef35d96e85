package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/satheeshds/invoicer/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateSortedAndQuoted(t *testing.T) {
	query, args, err := buildUpdate("products", productPatchColumns, map[string]any{
		"price":       "12.50",
		"name":        " Nut ",
		"category_id": nil,
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE products SET "category_id" = $1, "name" = $2, "price" = $3 WHERE id = $4 AND deleted = false`, query)
	require.Len(t, args, 4)
	assert.Nil(t, args[0])
	assert.Equal(t, "Nut", args[1])
	assert.True(t, decimal.RequireFromString("12.5").Equal(args[2].(decimal.Decimal)))
	assert.Equal(t, int64(4), args[3])
}

func TestBuildUpdateRejects(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		field  string
	}{
		{"empty", map[string]any{}, ""},
		{"unknown key", map[string]any{"deleted": false}, "deleted"},
		{"injection key", map[string]any{`name" = 'x'; --`: "x"}, `name" = 'x'; --`},
		{"blank name", map[string]any{"name": "  "}, "name"},
		{"fractional qty", map[string]any{"qty": 1.5}, "qty"},
		{"negative price", map[string]any{"price": -1.0}, "price"},
		{"price text", map[string]any{"price": "ten"}, "price"},
		{"sub-cent price", map[string]any{"price": "1.005"}, "price"},
		{"price out of range", map[string]any{"price": 1e10}, "price"},
		{"zero category", map[string]any{"category_id": 0.0}, "category_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := buildUpdate("products", productPatchColumns, tc.fields, 1)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestBuildUpdateHashesPassword(t *testing.T) {
	query, args, err := buildUpdate("users", userPatchColumns, map[string]any{"password": "newpass1"}, 2)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE users SET "password_hash" = $1 WHERE id = $2 AND deleted = false`, query)
	assert.True(t, auth.CheckPassword("newpass1", args[0].(string)))

	_, _, err = buildUpdate("users", userPatchColumns, map[string]any{"password": "short"}, 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPatchInvoiceOnlyHeaderFields(t *testing.T) {
	pool := &fakePool{exec: func(string, []any) (pgconn.CommandTag, error) {
		t.Fatal("nothing may be written for a rejected patch")
		return pgconn.CommandTag{}, nil
	}}
	_, err := New(pool).PatchInvoice(context.Background(), 1, map[string]any{"total": 5.0})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "total", verr.Field)
}

func TestPatchProductNotFound(t *testing.T) {
	pool := &fakePool{
		exec: func(string, []any) (pgconn.CommandTag, error) { return pgconn.NewCommandTag("UPDATE 0"), nil },
		queryRow: func(string, []any) pgx.Row {
			t.Fatal("no read-back for a missing row")
			return nil
		},
	}
	_, err := New(pool).PatchProduct(context.Background(), 1, map[string]any{"qty": 3.0})
	assert.ErrorIs(t, err, ErrNotFound)
}
