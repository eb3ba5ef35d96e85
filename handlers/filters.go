package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/satheeshds/invoicer/store"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// firstOf returns the first non-empty value among keys.
func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseID(q url.Values, keys ...string) (*int64, error) {
	v := firstOf(q, keys...)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, &store.ValidationError{Field: keys[0], Msg: "must be a positive integer"}
	}
	return &id, nil
}

func parseDate(q url.Values, key string) (*time.Time, error) {
	v := firstOf(q, key)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, &store.ValidationError{Field: key, Msg: "must be a date formatted YYYY-MM-DD"}
	}
	return &d, nil
}

func parseDecimal(q url.Values, key string) (*decimal.Decimal, error) {
	v := firstOf(q, key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &store.ValidationError{Field: key, Msg: "must be a number"}
	}
	return &d, nil
}

// parseInvoiceFilter reads the invoice filter fields from a query string. Unknown keys are
// ignored.
func parseInvoiceFilter(q url.Values) (store.InvoiceFilter, error) {
	var f store.InvoiceFilter
	var err error
	if f.UserID, err = parseID(q, "userId"); err != nil {
		return f, err
	}
	if f.StartDate, err = parseDate(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(q, "endDate"); err != nil {
		return f, err
	}
	f.InvoiceNumber = firstOf(q, "invoiceNb", "invoiceNumber")
	f.ProjectName = firstOf(q, "projectName")
	return f, nil
}

// parseProductFilter reads the product filter fields from a query string.
func parseProductFilter(q url.Values) (store.ProductFilter, error) {
	var f store.ProductFilter
	var err error
	if f.CategoryID, err = parseID(q, "category", "categoryId", "categoryid"); err != nil {
		return f, err
	}
	if f.MinPrice, err = parseDecimal(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseDecimal(q, "maxPrice"); err != nil {
		return f, err
	}
	if f.StartDate, err = parseDate(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(q, "endDate"); err != nil {
		return f, err
	}
	f.Name = firstOf(q, "name")
	f.Brand = firstOf(q, "brand")
	f.Code = firstOf(q, "code")
	f.Unit = firstOf(q, "unit")
	return f, nil
}
