package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Comparison operators used by predicates.
const (
	opEqual    = "="
	opAtLeast  = ">="
	opAtMost   = "<="
	opContains = "ILIKE"
	opBetween  = "BETWEEN"
)

// predicate is one bound condition of a WHERE clause. column is always a constant of this
// package; caller data only ever travels in args.
type predicate struct {
	column string
	op     string
	args   []any
}

// predicates collects AND-combined conditions and renders them with positional placeholders.
type predicates struct {
	fixed []string
	list  []predicate
}

// literal adds a condition without parameters, e.g. the soft-delete guard.
func (p *predicates) literal(cond string) {
	p.fixed = append(p.fixed, cond)
}

func (p *predicates) equal(column string, v any) {
	p.list = append(p.list, predicate{column: column, op: opEqual, args: []any{v}})
}

func (p *predicates) atLeast(column string, v any) {
	p.list = append(p.list, predicate{column: column, op: opAtLeast, args: []any{v}})
}

func (p *predicates) atMost(column string, v any) {
	p.list = append(p.list, predicate{column: column, op: opAtMost, args: []any{v}})
}

// contains adds a case-insensitive substring match. LIKE metacharacters in v match literally.
func (p *predicates) contains(column, v string) {
	p.list = append(p.list, predicate{column: column, op: opContains, args: []any{"%" + escapeLike(v) + "%"}})
}

func (p *predicates) between(column string, lo, hi any) {
	p.list = append(p.list, predicate{column: column, op: opBetween, args: []any{lo, hi}})
}

// where renders " WHERE ..." (or "" when there are no conditions) and the bound arguments,
// numbering placeholders from $1.
func (p *predicates) where() (string, []any) {
	conds := append([]string{}, p.fixed...)
	var args []any
	for _, pr := range p.list {
		switch pr.op {
		case opBetween:
			conds = append(conds, fmt.Sprintf("%s BETWEEN $%d AND $%d", pr.column, len(args)+1, len(args)+2))
		default:
			conds = append(conds, fmt.Sprintf("%s %s $%d", pr.column, pr.op, len(args)+1))
		}
		args = append(args, pr.args...)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// InvoiceFilter is the sparse filter set accepted by invoice listing and search. Zero values
// impose no constraint. The date range applies only when both bounds are set.
type InvoiceFilter struct {
	UserID        *int64
	StartDate     *time.Time
	EndDate       *time.Time
	InvoiceNumber string
	ProjectName   string
}

func (f InvoiceFilter) predicates() *predicates {
	p := &predicates{}
	p.literal("i.deleted = false")
	if f.UserID != nil {
		p.equal("i.user_id", *f.UserID)
	}
	// Date bounds are UTC days, whatever the session time zone.
	if f.StartDate != nil && f.EndDate != nil {
		p.between("(i.created_at AT TIME ZONE 'UTC')::date", *f.StartDate, *f.EndDate)
	}
	if f.InvoiceNumber != "" {
		p.equal("i.invoice_nb", f.InvoiceNumber)
	}
	if f.ProjectName != "" {
		p.contains("i.project_name", f.ProjectName)
	}
	return p
}

// ProductFilter is the sparse filter set accepted by product listing.
type ProductFilter struct {
	Name       string
	CategoryID *int64
	Brand      string
	Code       string
	Unit       string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

func (f ProductFilter) predicates() *predicates {
	p := &predicates{}
	p.literal("p.deleted = false")
	if f.Name != "" {
		p.contains("p.name", f.Name)
	}
	if f.CategoryID != nil {
		p.equal("p.category_id", *f.CategoryID)
	}
	if f.Brand != "" {
		p.contains("p.brand", f.Brand)
	}
	if f.Code != "" {
		p.equal("p.code", f.Code)
	}
	if f.Unit != "" {
		p.equal("p.unit", f.Unit)
	}
	if f.MinPrice != nil {
		p.atLeast("p.price", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		p.atMost("p.price", *f.MaxPrice)
	}
	if f.StartDate != nil && f.EndDate != nil {
		p.between("(p.created_at AT TIME ZONE 'UTC')::date", *f.StartDate, *f.EndDate)
	}
	return p
}
