package store

import (
	"context"

	"github.com/satheeshds/invoicer/models"
)

// RecentInvoiceLimit is how many invoices Dashboard returns.
const RecentInvoiceLimit = 5

const dashboardQuery = `SELECT
		(SELECT COUNT(*) FROM invoices WHERE deleted = false),
		(SELECT COUNT(*) FROM products WHERE deleted = false),
		(SELECT COUNT(*) FROM categories WHERE deleted = false),
		(SELECT COUNT(*) FROM users WHERE deleted = false),
		(SELECT COALESCE(SUM(total), 0) FROM invoices WHERE deleted = false),
		(SELECT COALESCE(SUM(total), 0) FROM invoices WHERE deleted = false AND (created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date)`

// Dashboard returns the live record counts, revenue totals and the newest invoices.
func (s *Store) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	err := s.pool.QueryRow(ctx, dashboardQuery).Scan(&d.TotalInvoices, &d.TotalProducts, &d.TotalCategories,
		&d.TotalUsers, &d.Revenue, &d.RevenueToday)
	if err != nil {
		return models.Dashboard{}, &QueryError{Op: "dashboard totals", Err: err}
	}

	rows, err := s.pool.Query(ctx, invoiceSelectQuery+" WHERE i.deleted = false"+invoiceGroupOrder+" LIMIT $1",
		RecentInvoiceLimit)
	if err != nil {
		return models.Dashboard{}, &QueryError{Op: "recent invoices", Err: err}
	}
	if d.RecentInvoices, err = collect(rows, scanInvoice); err != nil {
		return models.Dashboard{}, &QueryError{Op: "recent invoices", Err: err}
	}
	return d, nil
}
