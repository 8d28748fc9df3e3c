// Package storage defines the Storage interface, a contract that any
// database backend must satisfy to work with this application.
//
// Handlers receive a Storage value explicitly; there is no package-level
// database handle anywhere in the program. Tests and alternative backends
// plug in by implementing this interface.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/types"
)

// Sentinel errors. Implementations wrap them with %w so callers can test
// with errors.Is.
var (
	// ErrNotFound means no row matched the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrProductInUse is returned when deleting a product that still has
	// consumption history. Deactivate the product instead.
	ErrProductInUse = errors.New("product has consumption history and cannot be deleted")

	// ErrProductInactive is returned when registering a purchase of a
	// product that is no longer sold.
	ErrProductInactive = errors.New("product is not active")

	// ErrInvalidReference means a consumption points at a student or
	// product that does not exist.
	ErrInvalidReference = errors.New("referenced student or product does not exist")
)

// StudentFilter narrows GetStudents. Zero values match everything.
type StudentFilter struct {
	// Name matches any student whose full name contains it (case-insensitive).
	Name      string
	Classroom string
}

// ProductFilter narrows GetProducts. Zero values match everything.
type ProductFilter struct {
	Name   string
	Active *bool
}

// ConsumptionFilter narrows GetConsumptions. Zero values match everything.
// From is inclusive, To is exclusive.
type ConsumptionFilter struct {
	StudentID int64
	ProductID int64
	From      time.Time
	To        time.Time
}

// RegisterItem is one line of a bulk consumption registration.
type RegisterItem struct {
	ProductID int64
	Quantity  int64
}

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts s and returns the new id. A zero RegisteredAt
	// is set to the current time.
	CreateStudent(ctx context.Context, s types.Student) (int64, error)
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)
	// GetStudents returns an empty slice (not nil) if nothing matches.
	GetStudents(ctx context.Context, filter StudentFilter) ([]types.Student, error)
	// UpdateStudentByID replaces the name and classroom of a student and
	// returns the stored record.
	UpdateStudentByID(ctx context.Context, id int64, s types.Student) (types.Student, error)
	// DeleteStudentByID removes a student and every consumption record
	// that belongs to it, atomically.
	DeleteStudentByID(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p types.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (types.Product, error)
	GetProducts(ctx context.Context, filter ProductFilter) ([]types.Product, error)
	UpdateProductByID(ctx context.Context, id int64, p types.Product) (types.Product, error)
	// DeleteProductByID fails with ErrProductInUse when consumption
	// records still reference the product.
	DeleteProductByID(ctx context.Context, id int64) error

	// CreateConsumption inserts c as given. A zero ConsumedAt is set to
	// the current time. Unknown student or product ids give
	// ErrInvalidReference.
	CreateConsumption(ctx context.Context, c types.Consumption) (int64, error)
	GetConsumptionByID(ctx context.Context, id int64) (types.Consumption, error)
	GetConsumptions(ctx context.Context, filter ConsumptionFilter) ([]types.Consumption, error)
	// FindConsumptionsByStudent returns the student's consumption history,
	// newest first. Unknown students give ErrNotFound.
	FindConsumptionsByStudent(ctx context.Context, studentID int64) ([]types.Consumption, error)
	DeleteConsumptionByID(ctx context.Context, id int64) error
	// RegisterConsumptions records several purchases for one student in a
	// single transaction. Each unit price is captured from the product's
	// current price; inactive products abort the whole batch.
	RegisterConsumptions(ctx context.Context, studentID int64, items []RegisterItem) ([]types.Consumption, error)

	// MonthlyReport totals consumption per student for the given month.
	MonthlyReport(ctx context.Context, year int, month time.Month) (types.MonthlyReport, error)
	// StudentMonthlyReport lists one student's consumptions in the month.
	StudentMonthlyReport(ctx context.Context, studentID int64, year int, month time.Month) (types.StudentStatement, error)
	// DashboardStats summarises the month that contains now.
	DashboardStats(ctx context.Context, now time.Time) (types.DashboardStats, error)

	Close() error
}

// MonthRange returns the half-open interval [start, end) covering the
// given calendar month in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
