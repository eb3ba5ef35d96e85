package models

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents an invoice header together with its projected line items.
type Invoice struct {
	ID          int64           `json:"id"`
	ProjectName string          `json:"project_name"`
	Notes       *string         `json:"notes"`
	InvoiceNb   string          `json:"invoice_nb"`
	UserID      *int64          `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	Time        string          `json:"time"`
	Deleted     bool            `json:"deleted"`
	// Computed fields
	User  *UserSummary  `json:"users"`
	Items []InvoiceItem `json:"items"`
}

// InvoiceItem is one product line of an invoice.
type InvoiceItem struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Product   *ProductSummary `json:"products,omitempty"`
}

// InvoiceInput is used for creating invoices. CustomerName is accepted as an alias of
// ProjectName for older desktop clients.
type InvoiceInput struct {
	ProjectName  string             `json:"project_name"`
	CustomerName string             `json:"customer_name,omitempty"`
	Notes        *string            `json:"notes"`
	InvoiceNb    string             `json:"invoice_nb"`
	Total        *decimal.Decimal   `json:"total"`
	Items        []InvoiceItemInput `json:"items"`
}

// InvoiceItemInput is one line of an InvoiceInput.
type InvoiceItemInput struct {
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// MaxAmount is the first value a NUMERIC(12, 2) money column cannot hold.
var MaxAmount = decimal.New(1, 10)

// MaxQty is the largest quantity an INTEGER column holds.
const MaxQty = math.MaxInt32

// CheckAmount reports why d cannot be stored in a money column, or "" when it can.
func CheckAmount(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "must be non-negative"
	case !d.Equal(d.Round(2)):
		return "must have at most 2 decimal places"
	case d.GreaterThanOrEqual(MaxAmount):
		return "must be less than " + MaxAmount.String()
	}
	return ""
}

func (i *InvoiceInput) Validate() string {
	i.ProjectName = strings.TrimSpace(i.ProjectName)
	if i.ProjectName == "" {
		i.ProjectName = strings.TrimSpace(i.CustomerName)
	}
	i.InvoiceNb = strings.TrimSpace(i.InvoiceNb)

	if i.ProjectName == "" {
		return "project_name is required"
	}
	if i.InvoiceNb == "" {
		return "invoice_nb is required"
	}
	if i.Total != nil {
		if msg := CheckAmount(*i.Total); msg != "" {
			return "total " + msg
		}
	}
	if len(i.Items) == 0 {
		return "items must contain at least one line"
	}
	for _, it := range i.Items {
		if it.ProductID <= 0 {
			return "items: product_id is required"
		}
		if it.Qty <= 0 {
			return "items: qty must be positive"
		}
		if it.Qty > MaxQty {
			return "items: qty is too large"
		}
		if msg := CheckAmount(it.Price); msg != "" {
			return "items: price " + msg
		}
	}
	if i.Total == nil {
		if msg := CheckAmount(i.ItemsTotal()); msg != "" {
			return "total " + msg
		}
	}
	return ""
}

// ItemsTotal returns the sum of qty * price over all lines.
func (i *InvoiceInput) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range i.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}

// EffectiveTotal is the caller supplied total, or the line item sum when none was sent.
func (i *InvoiceInput) EffectiveTotal() decimal.Decimal {
	if i.Total != nil {
		return *i.Total
	}
	return i.ItemsTotal()
}
