package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/storage/postgres"
	"github.com/aanand-mishra/cantina-api/internal/storage/sqldb"
	"github.com/aanand-mishra/cantina-api/internal/types"
)

// newStore connects to POSTGRES_TEST_DSN with empty tables.
func newStore(t *testing.T) (*qt.C, *sqldb.Store) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL storage tests: POSTGRES_TEST_DSN environment variable not set")
	}

	c := qt.New(t)

	store, err := postgres.Open(dsn)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { store.Close() })

	_, err = store.Db.Exec("TRUNCATE consumptions, products, students RESTART IDENTITY")
	c.Assert(err, qt.IsNil)

	return c, store
}

func TestPostgresCascadeAndRestrict(t *testing.T) {
	c, s := newStore(t)
	ctx := context.Background()

	ana, err := s.CreateStudent(ctx, types.Student{FullName: "Ana Silva", Classroom: "5B"})
	c.Assert(err, qt.IsNil)
	juice, err := s.CreateProduct(ctx, types.NewProduct("Juice", 3.50))
	c.Assert(err, qt.IsNil)

	id, err := s.CreateConsumption(ctx, types.Consumption{StudentID: ana, ProductID: juice, Quantity: 2, UnitPrice: 3.50})
	c.Assert(err, qt.IsNil)

	got, err := s.GetConsumptionByID(ctx, id)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Total(), qt.Equals, 7.0)

	c.Assert(s.DeleteProductByID(ctx, juice), qt.ErrorIs, storage.ErrProductInUse)

	_, err = s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", ana)
	c.Assert(err, qt.IsNil)

	left, err := s.GetConsumptions(ctx, storage.ConsumptionFilter{})
	c.Assert(err, qt.IsNil)
	c.Assert(left, qt.HasLen, 0)

	c.Assert(s.DeleteProductByID(ctx, juice), qt.IsNil)
}

func TestPostgresFiltersAndReports(t *testing.T) {
	c, s := newStore(t)
	ctx := context.Background()

	ana, err := s.CreateStudent(ctx, types.Student{FullName: "Ana Silva", Classroom: "5B"})
	c.Assert(err, qt.IsNil)
	water, err := s.CreateProduct(ctx, types.NewProduct("Water", 0.10))
	c.Assert(err, qt.IsNil)

	march := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	_, err = s.CreateConsumption(ctx, types.Consumption{StudentID: ana, ProductID: water, Quantity: 3, UnitPrice: 0.10, ConsumedAt: march})
	c.Assert(err, qt.IsNil)

	students, err := s.GetStudents(ctx, storage.StudentFilter{Name: "SILVA"})
	c.Assert(err, qt.IsNil)
	c.Assert(students, qt.HasLen, 1)

	active := true
	products, err := s.GetProducts(ctx, storage.ProductFilter{Active: &active})
	c.Assert(err, qt.IsNil)
	c.Assert(products, qt.HasLen, 1)

	report, err := s.MonthlyReport(ctx, 2025, time.March)
	c.Assert(err, qt.IsNil)
	c.Assert(report.GrandTotal, qt.Equals, 0.3)

	created, err := s.RegisterConsumptions(ctx, ana, []storage.RegisterItem{{ProductID: water, Quantity: 2}})
	c.Assert(err, qt.IsNil)
	c.Assert(created, qt.HasLen, 1)
	c.Assert(created[0].ID > 0, qt.IsTrue)
}
