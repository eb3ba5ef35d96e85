// Package store implements the invoicing persistence layer on Postgres: the transactional
// invoice write path, the filtered read queries and the single-row updates.
package store

import (
	"github.com/goccy/go-json"
)

// Store runs all statements against an injected Pool.
type Store struct {
	pool Pool
}

// New returns a Store backed by pool.
func New(pool Pool) *Store {
	return &Store{pool: pool}
}

// decodeJSONColumn unmarshals an aggregated json column. SQL NULL leaves v untouched.
func decodeJSONColumn(raw []byte, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
