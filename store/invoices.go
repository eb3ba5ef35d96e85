package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/invoicer/models"
)

const invoiceSelectQuery = `SELECT i.id, i.project_name, i.notes, i.invoice_nb, i.user_id, i.total, i.created_at,
		i.time::text, i.deleted,
		(SELECT json_build_object('id', u.id, 'username', u.username, 'name', u.name)
			FROM users u WHERE u.id = i.user_id) AS users,
		COALESCE(
			json_agg(
				json_build_object(
					'id', ii.id,
					'invoice_id', ii.invoice_id,
					'product_id', ii.product_id,
					'qty', ii.qty,
					'price', ii.price,
					'products', json_build_object('id', p.id, 'name', p.name, 'code', p.code)
				) ORDER BY ii.id
			) FILTER (WHERE ii.id IS NOT NULL),
			'[]'
		) AS items
		FROM invoices i
		LEFT JOIN invoice_items ii ON ii.invoice_id = i.id
		LEFT JOIN products p ON p.id = ii.product_id`

const invoiceGroupOrder = " GROUP BY i.id ORDER BY i.created_at DESC, i.id DESC"

const insertInvoiceQuery = `INSERT INTO invoices (project_name, notes, invoice_nb, user_id, total, created_at, time)
		VALUES ($1, $2, $3, $4, $5, NOW(), CURRENT_TIME)
		RETURNING id, project_name, notes, invoice_nb, user_id, total, created_at, time::text, deleted`

const insertInvoiceItemQuery = `INSERT INTO invoice_items (invoice_id, product_id, qty, price)
		VALUES ($1, $2, $3, $4) RETURNING id, price`

type scanner interface{ Scan(...any) error }

func scanInvoiceHeader(row scanner) (models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.ProjectName, &inv.Notes, &inv.InvoiceNb, &inv.UserID, &inv.Total,
		&inv.CreatedAt, &inv.Time, &inv.Deleted)
	return inv, err
}

func scanInvoice(row scanner) (models.Invoice, error) {
	var inv models.Invoice
	var users, items []byte
	err := row.Scan(&inv.ID, &inv.ProjectName, &inv.Notes, &inv.InvoiceNb, &inv.UserID, &inv.Total,
		&inv.CreatedAt, &inv.Time, &inv.Deleted, &users, &items)
	if err != nil {
		return inv, err
	}
	if err := decodeJSONColumn(users, &inv.User); err != nil {
		return inv, fmt.Errorf("decode invoice user: %w", err)
	}
	if err := decodeJSONColumn(items, &inv.Items); err != nil {
		return inv, fmt.Errorf("decode invoice items: %w", err)
	}
	if inv.Items == nil {
		inv.Items = []models.InvoiceItem{}
	}
	return inv, nil
}

// collect drains rows through scan. The result is never nil.
func collect[T any](rows Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateInvoice validates in and writes the header and every line item in one transaction
// owned by userID. Either all rows become visible or none do. The returned invoice carries
// the generated ids and timestamps; its User summary is not populated.
func (s *Store) CreateInvoice(ctx context.Context, userID int64, in models.InvoiceInput) (models.Invoice, error) {
	if msg := in.Validate(); msg != "" {
		return models.Invoice{}, invalid("", msg)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Invoice{}, &WriteError{Op: "acquire connection", Err: err}
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return models.Invoice{}, &WriteError{Op: "begin transaction", Err: err}
	}
	// No-op once committed. Runs on a context that outlives a cancelled request.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	inv, err := scanInvoiceHeader(tx.QueryRow(ctx, insertInvoiceQuery,
		in.ProjectName, in.Notes, in.InvoiceNb, userID, in.EffectiveTotal()))
	if err != nil {
		return models.Invoice{}, &WriteError{Op: "insert invoice", Err: err}
	}

	inv.Items = make([]models.InvoiceItem, 0, len(in.Items))
	for n, it := range in.Items {
		item := models.InvoiceItem{InvoiceID: inv.ID, ProductID: it.ProductID, Qty: it.Qty, Price: it.Price}
		if err := tx.QueryRow(ctx, insertInvoiceItemQuery, inv.ID, it.ProductID, it.Qty, it.Price).Scan(&item.ID, &item.Price); err != nil {
			return models.Invoice{}, &WriteError{Op: fmt.Sprintf("insert invoice item %d", n), Err: err}
		}
		inv.Items = append(inv.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Invoice{}, &WriteError{Op: "commit", Err: err}
	}
	return inv, nil
}

// ListInvoices returns the live invoices matching every populated field of f, newest first.
func (s *Store) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	where, args := f.predicates().where()
	rows, err := s.pool.Query(ctx, invoiceSelectQuery+where+invoiceGroupOrder, args...)
	if err != nil {
		return nil, &QueryError{Op: "list invoices", Err: err}
	}
	invoices, err := collect(rows, scanInvoice)
	if err != nil {
		return nil, &QueryError{Op: "list invoices", Err: err}
	}
	return invoices, nil
}

func (s *Store) getInvoice(ctx context.Context, op, cond string, arg any) (models.Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx,
		invoiceSelectQuery+" WHERE i.deleted = false AND "+cond+" = $1"+invoiceGroupOrder, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return inv, ErrNotFound
	}
	if err != nil {
		return inv, &QueryError{Op: op, Err: err}
	}
	return inv, nil
}

// GetInvoice returns one live invoice with its items.
func (s *Store) GetInvoice(ctx context.Context, id int64) (models.Invoice, error) {
	return s.getInvoice(ctx, "get invoice", "i.id", id)
}

// GetInvoiceByNumber returns the live invoice carrying invoice number nb.
func (s *Store) GetInvoiceByNumber(ctx context.Context, nb string) (models.Invoice, error) {
	return s.getInvoice(ctx, "get invoice by number", "i.invoice_nb", nb)
}

// LastInvoiceNumber returns the number of the most recently created invoice, or nil when
// there are none. Deleted invoices count: their numbers stay reserved.
func (s *Store) LastInvoiceNumber(ctx context.Context) (*string, error) {
	var nb string
	err := s.pool.QueryRow(ctx, `SELECT invoice_nb FROM invoices ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&nb)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &QueryError{Op: "last invoice number", Err: err}
	}
	return &nb, nil
}

// PatchInvoice updates the allow-listed header columns present in fields.
func (s *Store) PatchInvoice(ctx context.Context, id int64, fields map[string]any) (models.Invoice, error) {
	query, args, err := buildUpdate("invoices", invoicePatchColumns, fields, id)
	if err != nil {
		return models.Invoice{}, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return models.Invoice{}, &WriteError{Op: "update invoice", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return models.Invoice{}, ErrNotFound
	}
	return s.GetInvoice(ctx, id)
}

// DeleteInvoice soft-deletes an invoice. Its items stay in place.
func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "invoices", id)
}

// softDelete flags one live row of table as deleted. table is always a constant.
func (s *Store) softDelete(ctx context.Context, table string, id int64) error {
	tag, err := s.pool.Exec(ctx, "UPDATE "+table+" SET deleted = true WHERE id = $1 AND deleted = false", id)
	if err != nil {
		return &WriteError{Op: "delete from " + table, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
