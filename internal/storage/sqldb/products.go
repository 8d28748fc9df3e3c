package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
)

const productColumns = "id, name, price, active, registered_at"

// CreateProduct inserts a new row into the products table.
func (s *Store) CreateProduct(ctx context.Context, product types.Product) (int64, error) {
	id, err := s.insert(ctx, s.Db,
		"INSERT INTO products (name, price, active, registered_at) VALUES (?, ?, ?, ?)",
		product.Name, product.Price, product.Active, s.timestamp(product.RegisteredAt),
	)
	if err != nil {
		return 0, fmt.Errorf("CreateProduct: %w", err)
	}
	return id, nil
}

func scanProduct(row interface{ Scan(...any) error }) (types.Product, error) {
	var (
		product    types.Product
		registered sql.NullTime
	)
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.Active, &registered); err != nil {
		return types.Product{}, err
	}
	product.RegisteredAt = nullTime(registered)
	return product, nil
}

// GetProductByID fetches one product by primary key.
func (s *Store) GetProductByID(ctx context.Context, id int64) (types.Product, error) {
	return s.getProduct(ctx, s.Db, id)
}

func (s *Store) getProduct(ctx context.Context, q querier, id int64) (types.Product, error) {
	stmt, err := s.prepare(ctx, q,
		"SELECT "+productColumns+" FROM products WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Product{}, fmt.Errorf("GetProductByID: prepare: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return types.Product{}, fmt.Errorf("no product found with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Product{}, fmt.Errorf("GetProductByID: scan: %w", err)
	}
	return product, nil
}

// GetProducts returns the products matching filter, ordered by name.
func (s *Store) GetProducts(ctx context.Context, filter storage.ProductFilter) ([]types.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Name != "" {
		where = append(where, s.dialect.ContainsFold("name"))
		args = append(args, containsPattern(filter.Name))
	}
	if filter.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *filter.Active)
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"

	stmt, err := s.prepare(ctx, s.Db, query)
	if err != nil {
		return nil, fmt.Errorf("GetProducts: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("GetProducts: query: %w", err)
	}
	defer rows.Close()

	products := make([]types.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("GetProducts: scan row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetProducts: rows iteration: %w", err)
	}

	return products, nil
}

// UpdateProductByID replaces name, price and active flag. Existing
// consumption records keep the unit price they were charged.
func (s *Store) UpdateProductByID(ctx context.Context, id int64, product types.Product) (types.Product, error) {
	n, err := s.exec(ctx, s.Db,
		"UPDATE products SET name = ?, price = ?, active = ? WHERE id = ?",
		product.Name, product.Price, product.Active, id,
	)
	if err != nil {
		return types.Product{}, fmt.Errorf("UpdateProductByID: %w", err)
	}
	if n == 0 {
		return types.Product{}, fmt.Errorf("no product found with id %d: %w", id, storage.ErrNotFound)
	}

	return s.GetProductByID(ctx, id)
}

// DeleteProductByID removes a product that has never been consumed.
// Products with history are restricted: the call fails with
// storage.ErrProductInUse and nothing is changed.
func (s *Store) DeleteProductByID(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getProduct(ctx, tx, id); err != nil {
			return err
		}

		used, err := s.exists(ctx, tx, "SELECT 1 FROM consumptions WHERE product_id = ? LIMIT 1", id)
		if err != nil {
			return fmt.Errorf("DeleteProductByID: check history: %w", err)
		}
		if used {
			return fmt.Errorf("product %d: %w", id, storage.ErrProductInUse)
		}

		if _, err := s.exec(ctx, tx, "DELETE FROM products WHERE id = ?", id); err != nil {
			return fmt.Errorf("DeleteProductByID: %w", err)
		}
		return nil
	})
}
