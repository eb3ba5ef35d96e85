package models

import "github.com/shopspring/decimal"

// Dashboard summarises the live records for the apps' home screen.
type Dashboard struct {
	TotalInvoices   int64           `json:"total_invoices"`
	TotalProducts   int64           `json:"total_products"`
	TotalCategories int64           `json:"total_categories"`
	TotalUsers      int64           `json:"total_users"`
	Revenue         decimal.Decimal `json:"revenue"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`

	RecentInvoices []Invoice `json:"recent_invoices"`
}
