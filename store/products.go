package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/invoicer/models"
)

const productSelectQuery = `SELECT p.id, p.name, p.code, p.image_url, p.price, p.qty, p.brand, p.unit, p.category_id,
		p.deleted, p.created_at,
		(SELECT json_build_object('id', c.id, 'name', c.name)
			FROM categories c WHERE c.id = p.category_id) AS category
		FROM products p`

const productOrder = " ORDER BY p.created_at DESC, p.id DESC"

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var category []byte
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.ImageURL, &p.Price, &p.Qty, &p.Brand, &p.Unit,
		&p.CategoryID, &p.Deleted, &p.CreatedAt, &category)
	if err != nil {
		return p, err
	}
	return p, decodeJSONColumn(category, &p.Category)
}

// ListProducts returns the live products matching every populated field of f, newest first.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	where, args := f.predicates().where()
	rows, err := s.pool.Query(ctx, productSelectQuery+where+productOrder, args...)
	if err != nil {
		return nil, &QueryError{Op: "list products", Err: err}
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, &QueryError{Op: "list products", Err: err}
	}
	return products, nil
}

func (s *Store) getProduct(ctx context.Context, op, cond string, arg any) (models.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelectQuery+" WHERE p.deleted = false AND "+cond+" = $1", arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, &QueryError{Op: op, Err: err}
	}
	return p, nil
}

// GetProduct returns one live product.
func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return s.getProduct(ctx, "get product", "p.id", id)
}

// GetProductByCode returns the live product with the given catalog code.
func (s *Store) GetProductByCode(ctx context.Context, code string) (models.Product, error) {
	return s.getProduct(ctx, "get product by code", "p.code", code)
}

// CreateProduct inserts a product and returns it as read back from the store.
func (s *Store) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if msg := in.Validate(); msg != "" {
		return models.Product{}, invalid("", msg)
	}
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO products (name, code, image_url, price, qty, brand, unit, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		in.Name, in.Code, in.ImageURL, in.Price, in.Qty, in.Brand, in.Unit, in.CategoryID).Scan(&id)
	if err != nil {
		return models.Product{}, &WriteError{Op: "insert product", Err: err}
	}
	return s.GetProduct(ctx, id)
}

// PatchProduct updates the allow-listed columns present in fields.
func (s *Store) PatchProduct(ctx context.Context, id int64, fields map[string]any) (models.Product, error) {
	query, args, err := buildUpdate("products", productPatchColumns, fields, id)
	if err != nil {
		return models.Product{}, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return models.Product{}, &WriteError{Op: "update product", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return models.Product{}, ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct soft-deletes a product. Invoice items referencing it keep resolving.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "products", id)
}
