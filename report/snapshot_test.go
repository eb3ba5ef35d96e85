package report

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	got      store.InvoiceFilter
	invoices []models.Invoice
}

func (f *fakeSource) ListInvoices(_ context.Context, filter store.InvoiceFilter) ([]models.Invoice, error) {
	f.got = filter
	return f.invoices, nil
}

func invoice(id int64, day int, total string, items ...models.InvoiceItem) models.Invoice {
	return models.Invoice{
		ID:          id,
		ProjectName: "Acme",
		InvoiceNb:   "INV-" + strconv.FormatInt(id, 10),
		Total:       decimal.RequireFromString(total),
		CreatedAt:   time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
		User:        &models.UserSummary{ID: 5, Username: "alice"},
		Items:       items,
	}
}

func TestSnapshot(t *testing.T) {
	src := &fakeSource{invoices: []models.Invoice{
		invoice(1, 10, "30.00",
			models.InvoiceItem{ID: 1, ProductID: 3, Qty: 2, Price: decimal.NewFromInt(10), Product: &models.ProductSummary{ID: 3, Name: "Bolt"}},
			models.InvoiceItem{ID: 2, ProductID: 4, Qty: 1, Price: decimal.NewFromInt(10)}),
		invoice(2, 10, "12.50"),
		invoice(3, 11, "7.25"),
	}}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "snapshot.duckdb")

	days, err := Snapshot(context.Background(), src, path, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, &from, src.got.StartDate)

	require.Len(t, days, 2)
	assert.Equal(t, int64(2), days[0].Invoices)
	assert.True(t, days[0].Revenue.Equal(decimal.RequireFromString("42.50")), days[0].Revenue.String())
	assert.Equal(t, 11, days[1].Day.Day())
	assert.True(t, days[1].Revenue.Equal(decimal.RequireFromString("7.25")))

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()
	var items int
	var name string
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), MAX(product_name) FROM invoice_items`).Scan(&items, &name))
	assert.Equal(t, 2, items)
	assert.Equal(t, "Bolt", name)
}

func TestSnapshotReplacesEarlierTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.duckdb")
	_, err := Snapshot(context.Background(), &fakeSource{invoices: []models.Invoice{invoice(1, 10, "5")}}, path, nil, nil)
	require.NoError(t, err)

	days, err := Snapshot(context.Background(), &fakeSource{invoices: []models.Invoice{}}, path, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, days)
}
