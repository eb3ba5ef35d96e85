// Package report exports invoices into a DuckDB file for offline analysis.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/shopspring/decimal"
)

// Source supplies the invoices to export.
type Source interface {
	ListInvoices(ctx context.Context, f store.InvoiceFilter) ([]models.Invoice, error)
}

// DailyRevenue is one row of the snapshot summary.
type DailyRevenue struct {
	Day      time.Time
	Invoices int64
	Revenue  decimal.Decimal
}

var snapshotSchema = []string{
	`CREATE OR REPLACE TABLE invoices (
		id BIGINT PRIMARY KEY,
		invoice_nb VARCHAR NOT NULL,
		project_name VARCHAR NOT NULL,
		notes VARCHAR,
		user_id BIGINT,
		username VARCHAR,
		total DECIMAL(12, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE OR REPLACE TABLE invoice_items (
		id BIGINT PRIMARY KEY,
		invoice_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		product_name VARCHAR,
		qty INTEGER NOT NULL,
		price DECIMAL(12, 2) NOT NULL
	)`,
}

// Snapshot writes the live invoices created between from and to (both optional, applied
// only together) to the DuckDB database at path, replacing earlier snapshot tables, and
// returns the revenue per day.
func Snapshot(ctx context.Context, src Source, path string, from, to *time.Time) ([]DailyRevenue, error) {
	invoices, err := src.ListInvoices(ctx, store.InvoiceFilter{StartDate: from, EndDate: to})
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	defer db.Close()

	if err := write(ctx, db, invoices); err != nil {
		return nil, err
	}
	slog.Info("snapshot written", "path", path, "invoices", len(invoices))
	return Summary(ctx, db)
}

func write(ctx context.Context, db *sql.DB, invoices []models.Invoice) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range snapshotSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("snapshot schema failed: %w\nstatement: %s", err, stmt)
		}
	}

	insInvoice, err := tx.PrepareContext(ctx, `INSERT INTO invoices
		VALUES (?, ?, ?, ?, ?, ?, CAST(? AS DECIMAL(12, 2)), ?)`)
	if err != nil {
		return fmt.Errorf("prepare invoice insert: %w", err)
	}
	defer insInvoice.Close()
	insItem, err := tx.PrepareContext(ctx, `INSERT INTO invoice_items
		VALUES (?, ?, ?, ?, ?, CAST(? AS DECIMAL(12, 2)))`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer insItem.Close()

	for _, inv := range invoices {
		var username any
		if inv.User != nil {
			username = inv.User.Username
		}
		if _, err := insInvoice.ExecContext(ctx, inv.ID, inv.InvoiceNb, inv.ProjectName, nullable(inv.Notes),
			nullable(inv.UserID), username, inv.Total.String(), inv.CreatedAt); err != nil {
			return fmt.Errorf("export invoice %d: %w", inv.ID, err)
		}
		for _, it := range inv.Items {
			var name any
			if it.Product != nil {
				name = it.Product.Name
			}
			if _, err := insItem.ExecContext(ctx, it.ID, inv.ID, it.ProductID, name, it.Qty, it.Price.String()); err != nil {
				return fmt.Errorf("export invoice item %d: %w", it.ID, err)
			}
		}
	}
	return tx.Commit()
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Summary returns the invoice count and revenue per calendar day (UTC) of a snapshot.
func Summary(ctx context.Context, db *sql.DB) ([]DailyRevenue, error) {
	rows, err := db.QueryContext(ctx, `SELECT CAST(timezone('UTC', created_at) AS DATE) AS day,
		COUNT(*), CAST(SUM(total) AS VARCHAR)
		FROM invoices GROUP BY day ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("snapshot summary: %w", err)
	}
	defer rows.Close()

	out := []DailyRevenue{}
	for rows.Next() {
		var d DailyRevenue
		var revenue string
		if err := rows.Scan(&d.Day, &d.Invoices, &revenue); err != nil {
			return nil, err
		}
		if d.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("snapshot revenue %q: %w", revenue, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
