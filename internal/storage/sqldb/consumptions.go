package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
)

const consumptionColumns = "id, student_id, product_id, quantity, unit_price, consumed_at"

func scanConsumption(row interface{ Scan(...any) error }) (types.Consumption, error) {
	var (
		c        types.Consumption
		consumed sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.StudentID, &c.ProductID, &c.Quantity, &c.UnitPrice, &consumed); err != nil {
		return types.Consumption{}, err
	}
	c.ConsumedAt = nullTime(consumed)
	return c, nil
}

// checkReferences makes sure the student and product of a consumption
// exist, so a bad id surfaces as storage.ErrInvalidReference on every
// engine instead of a driver-specific constraint error.
func (s *Store) checkReferences(ctx context.Context, q querier, studentID, productID int64) error {
	ok, err := s.exists(ctx, q, "SELECT 1 FROM students WHERE id = ?", studentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("student %d: %w", studentID, storage.ErrInvalidReference)
	}

	ok, err = s.exists(ctx, q, "SELECT 1 FROM products WHERE id = ?", productID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %d: %w", productID, storage.ErrInvalidReference)
	}
	return nil
}

func (s *Store) insertConsumption(ctx context.Context, q querier, c types.Consumption) (int64, error) {
	return s.insert(ctx, q,
		"INSERT INTO consumptions (student_id, product_id, quantity, unit_price, consumed_at) VALUES (?, ?, ?, ?, ?)",
		c.StudentID, c.ProductID, c.Quantity, c.UnitPrice, c.ConsumedAt,
	)
}

// CreateConsumption inserts c exactly as given; the caller decides the
// quantity and the unit price charged.
func (s *Store) CreateConsumption(ctx context.Context, c types.Consumption) (int64, error) {
	c.ConsumedAt = s.timestamp(c.ConsumedAt)

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkReferences(ctx, tx, c.StudentID, c.ProductID); err != nil {
			return fmt.Errorf("CreateConsumption: %w", err)
		}

		var err error
		id, err = s.insertConsumption(ctx, tx, c)
		if err != nil {
			return fmt.Errorf("CreateConsumption: %w", err)
		}
		return nil
	})
	return id, err
}

// GetConsumptionByID fetches one consumption record.
func (s *Store) GetConsumptionByID(ctx context.Context, id int64) (types.Consumption, error) {
	stmt, err := s.prepare(ctx, s.Db,
		"SELECT "+consumptionColumns+" FROM consumptions WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Consumption{}, fmt.Errorf("GetConsumptionByID: prepare: %w", err)
	}
	defer stmt.Close()

	c, err := scanConsumption(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return types.Consumption{}, fmt.Errorf("no consumption found with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Consumption{}, fmt.Errorf("GetConsumptionByID: scan: %w", err)
	}
	return c, nil
}

// GetConsumptions returns the records matching filter, newest first.
func (s *Store) GetConsumptions(ctx context.Context, filter storage.ConsumptionFilter) ([]types.Consumption, error) {
	var (
		where []string
		args  []any
	)
	if filter.StudentID != 0 {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.ProductID != 0 {
		where = append(where, "product_id = ?")
		args = append(args, filter.ProductID)
	}
	if !filter.From.IsZero() {
		where = append(where, "consumed_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where = append(where, "consumed_at < ?")
		args = append(args, filter.To.UTC())
	}

	query := "SELECT " + consumptionColumns + " FROM consumptions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY consumed_at DESC, id DESC"

	return s.queryConsumptions(ctx, query, args...)
}

func (s *Store) queryConsumptions(ctx context.Context, query string, args ...any) ([]types.Consumption, error) {
	stmt, err := s.prepare(ctx, s.Db, query)
	if err != nil {
		return nil, fmt.Errorf("GetConsumptions: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("GetConsumptions: query: %w", err)
	}
	defer rows.Close()

	consumptions := make([]types.Consumption, 0)
	for rows.Next() {
		c, err := scanConsumption(rows)
		if err != nil {
			return nil, fmt.Errorf("GetConsumptions: scan row: %w", err)
		}
		consumptions = append(consumptions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetConsumptions: rows iteration: %w", err)
	}

	return consumptions, nil
}

// FindConsumptionsByStudent returns the consumption history of a student.
func (s *Store) FindConsumptionsByStudent(ctx context.Context, studentID int64) ([]types.Consumption, error) {
	if _, err := s.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.GetConsumptions(ctx, storage.ConsumptionFilter{StudentID: studentID})
}

// DeleteConsumptionByID removes a single consumption record.
func (s *Store) DeleteConsumptionByID(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, s.Db, "DELETE FROM consumptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteConsumptionByID: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no consumption found with id %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// RegisterConsumptions records a whole order for one student at once.
// Either every item is stored or none is.
func (s *Store) RegisterConsumptions(ctx context.Context, studentID int64, items []storage.RegisterItem) ([]types.Consumption, error) {
	consumedAt := s.timestamp(s.now())
	created := make([]types.Consumption, 0, len(items))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "SELECT 1 FROM students WHERE id = ?", studentID)
		if err != nil {
			return fmt.Errorf("RegisterConsumptions: %w", err)
		}
		if !ok {
			return fmt.Errorf("student %d: %w", studentID, storage.ErrInvalidReference)
		}

		for _, item := range items {
			product, err := s.getProduct(ctx, tx, item.ProductID)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("product %d: %w", item.ProductID, storage.ErrInvalidReference)
			}
			if err != nil {
				return fmt.Errorf("RegisterConsumptions: %w", err)
			}
			if !product.Active {
				return fmt.Errorf("product %d (%s): %w", product.ID, product.Name, storage.ErrProductInactive)
			}

			c := types.NewConsumption(studentID, product.ID, product.Price)
			if item.Quantity > 0 {
				c.Quantity = item.Quantity
			}
			c.ConsumedAt = consumedAt

			c.ID, err = s.insertConsumption(ctx, tx, c)
			if err != nil {
				return fmt.Errorf("RegisterConsumptions: %w", err)
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
