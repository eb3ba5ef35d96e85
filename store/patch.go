package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
	"github.com/shopspring/decimal"
)

// patchColumn maps one JSON key of a partial update onto a table column.
type patchColumn struct {
	column  string
	convert func(v any) (any, error)
}

var invoicePatchColumns = map[string]patchColumn{
	"project_name": {"project_name", requiredText},
	"notes":        {"notes", optionalText},
}

var productPatchColumns = map[string]patchColumn{
	"name":        {"name", requiredText},
	"code":        {"code", optionalText},
	"image_url":   {"image_url", optionalText},
	"price":       {"price", nonNegativeDecimal},
	"qty":         {"qty", integer},
	"brand":       {"brand", optionalText},
	"unit":        {"unit", optionalText},
	"category_id": {"category_id", optionalID},
}

var userPatchColumns = map[string]patchColumn{
	"name":     {"name", requiredText},
	"username": {"username", requiredText},
	"password": {"password_hash", passwordHash},
	"role":     {"role", requiredText},
	"is_admin": {"is_admin", boolean},
}

// buildUpdate renders an UPDATE of the live row id of table from the allow-listed keys in
// fields. Keys are processed in sorted order so the statement is deterministic.
func buildUpdate(table string, allowed map[string]patchColumn, fields map[string]any, id int64) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, invalid("", "no fields to update")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		col, ok := allowed[k]
		if !ok {
			return "", nil, invalid(k, "field cannot be updated")
		}
		v, err := col.convert(fields[k])
		if err != nil {
			return "", nil, invalid(k, err.Error())
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col.column}.Sanitize(), len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND deleted = false",
		table, strings.Join(sets, ", "), len(args))
	return query, args, nil
}

func requiredText(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

func optionalText(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string or null")
	}
	return s, nil
}

// JSON numbers arrive as float64.
func integer(v any) (any, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, fmt.Errorf("must be an integer")
	}
	return int64(f), nil
}

func optionalID(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, err := integer(v)
	if err != nil || n.(int64) <= 0 {
		return nil, fmt.Errorf("must be a positive integer or null")
	}
	return n, nil
}

func nonNegativeDecimal(v any) (any, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case float64:
		d = decimal.NewFromFloat(x)
	case string:
		var err error
		if d, err = decimal.NewFromString(x); err != nil {
			return nil, fmt.Errorf("must be a number")
		}
	default:
		return nil, fmt.Errorf("must be a number")
	}
	if msg := models.CheckAmount(d); msg != "" {
		return nil, errors.New(msg)
	}
	return d, nil
}

func boolean(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("must be a boolean")
	}
	return b, nil
}

func passwordHash(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	if len(s) < models.MinPasswordLength {
		return nil, fmt.Errorf("must be at least %d characters", models.MinPasswordLength)
	}
	return auth.HashPassword(s)
}
