package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Code       *string         `json:"code"`
	ImageURL   *string         `json:"image_url"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	Brand      *string         `json:"brand"`
	Unit       *string         `json:"unit"`
	CategoryID *int64          `json:"category_id"`
	Deleted    bool            `json:"deleted"`
	CreatedAt  time.Time       `json:"created_at"`
	// Computed fields
	Category *CategorySummary `json:"category"`
}

// ProductSummary is the product projection nested in invoice items.
type ProductSummary struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Code *string `json:"code"`
}

// ProductInput is used for creating products.
type ProductInput struct {
	Name       string          `json:"name"`
	Code       *string         `json:"code"`
	ImageURL   *string         `json:"image_url"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	Brand      *string         `json:"brand"`
	Unit       *string         `json:"unit"`
	CategoryID *int64          `json:"category_id"`
}

func (p *ProductInput) Validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "name is required"
	}
	if msg := CheckAmount(p.Price); msg != "" {
		return "price " + msg
	}
	if p.Qty < 0 || p.Qty > MaxQty {
		return "qty must be between 0 and " + strconv.Itoa(MaxQty)
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		return "category_id must be positive"
	}
	return ""
}
