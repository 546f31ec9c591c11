package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/shopapi/internal/domain/model"
)

const productColumns = `id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(photo, ''),
	COALESCE(price, 0.0), COALESCE(sale, ''), COALESCE("availableProduct", 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	err := r.Scan(&p.ID, &p.Title, &p.Description, &p.Photo, &p.Price, &p.Sale, &p.AvailableProduct)
	return p, err
}

func getProduct(ctx context.Context, q rowQuerier, id int64) (model.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM product WHERE id = ?`, id))
	if err != nil {
		return model.Product{}, classify(err)
	}
	return p, nil
}

// CreateProduct inserts p and reads the row back.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p model.Product) (out model.Product, err error) {
	defer s.observe(ctx, "create", model.ResourceProduct, time.Now(), &err)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO product (title, description, photo, price, sale, "availableProduct") VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.Photo, p.Price, p.Sale, p.AvailableProduct,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return getProduct(ctx, s.db, id)
}

// ListProducts returns every product ordered by id.
func (s *SQLiteStore) ListProducts(ctx context.Context) (out []model.Product, err error) {
	defer s.observe(ctx, "list", model.ResourceProduct, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM product ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns ErrNotFound if no row has id.
func (s *SQLiteStore) GetProduct(ctx context.Context, id int64) (out model.Product, err error) {
	defer s.observe(ctx, "get", model.ResourceProduct, time.Now(), &err)
	return getProduct(ctx, s.db, id)
}

// UpdateProduct overwrites every column of row id and returns the updated row.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, id int64, p model.Product) (out model.Product, err error) {
	defer s.observe(ctx, "update", model.ResourceProduct, time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		`UPDATE product SET title = ?, description = ?, photo = ?, price = ?, sale = ?, "availableProduct" = ? WHERE id = ?`,
		p.Title, p.Description, p.Photo, p.Price, p.Sale, p.AvailableProduct, id,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", id, classify(err))
	}
	if err := requireAffected(res); err != nil {
		return model.Product{}, err
	}
	out, err = getProduct(ctx, tx, id)
	if err != nil {
		return model.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// DeleteProduct removes row id and returns it as it was before deletion.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, id int64) (out model.Product, err error) {
	defer s.observe(ctx, "delete", model.ResourceProduct, time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	out, err = getProduct(ctx, tx, id)
	if err != nil {
		return model.Product{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM product WHERE id = ?`, id); err != nil {
		return model.Product{}, fmt.Errorf("delete product %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
