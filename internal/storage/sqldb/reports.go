package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
)

// topStudentsLimit is how many students the dashboard ranks.
const topStudentsLimit = 5

// monthLine is one consumption of the month joined with its student and
// product. Reports are aggregated in Go so every dialect shares the same
// decimal arithmetic.
type monthLine struct {
	consumption types.Consumption
	fullName    string
	classroom   string
	productName string
}

func (s *Store) monthLines(ctx context.Context, start, end time.Time, studentID int64) ([]monthLine, error) {
	query := `
		SELECT c.id, c.student_id, c.product_id, c.quantity, c.unit_price, c.consumed_at,
		       s.full_name, s.classroom, p.name
		FROM consumptions c
		JOIN students s ON s.id = c.student_id
		JOIN products p ON p.id = c.product_id
		WHERE c.consumed_at >= ? AND c.consumed_at < ?`
	args := []any{start, end}
	if studentID != 0 {
		query += " AND c.student_id = ?"
		args = append(args, studentID)
	}
	query += " ORDER BY c.consumed_at, c.id"

	stmt, err := s.prepare(ctx, s.Db, query)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var lines []monthLine
	for rows.Next() {
		var (
			l        monthLine
			c        = &l.consumption
			consumed sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.StudentID, &c.ProductID, &c.Quantity, &c.UnitPrice, &consumed,
			&l.fullName, &l.classroom, &l.productName); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		c.ConsumedAt = nullTime(consumed)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return lines, nil
}

// MonthlyReport totals what each student consumed in the month.
func (s *Store) MonthlyReport(ctx context.Context, year int, month time.Month) (types.MonthlyReport, error) {
	start, end := storage.MonthRange(year, month)

	lines, err := s.monthLines(ctx, start, end, 0)
	if err != nil {
		return types.MonthlyReport{}, fmt.Errorf("MonthlyReport: %w", err)
	}

	type acc struct {
		total types.StudentTotal
		value decimal.Decimal
	}
	byStudent := make(map[int64]*acc)
	grand := decimal.Zero

	for _, l := range lines {
		a, ok := byStudent[l.consumption.StudentID]
		if !ok {
			a = &acc{total: types.StudentTotal{
				StudentID: l.consumption.StudentID,
				FullName:  l.fullName,
				Classroom: l.classroom,
			}}
			byStudent[l.consumption.StudentID] = a
		}
		a.total.TotalItems += l.consumption.Quantity
		a.value = a.value.Add(l.consumption.TotalDecimal())
		grand = grand.Add(l.consumption.TotalDecimal())
	}

	students := make([]types.StudentTotal, 0, len(byStudent))
	for _, a := range byStudent {
		a.total.TotalValue = a.value.InexactFloat64()
		students = append(students, a.total)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return students[i].StudentID < students[j].StudentID
	})

	return types.MonthlyReport{
		Year:          year,
		Month:         int(month),
		TotalStudents: len(students),
		GrandTotal:    grand.InexactFloat64(),
		Students:      students,
	}, nil
}

// StudentMonthlyReport is the detailed statement of one student.
func (s *Store) StudentMonthlyReport(ctx context.Context, studentID int64, year int, month time.Month) (types.StudentStatement, error) {
	student, err := s.GetStudentByID(ctx, studentID)
	if err != nil {
		return types.StudentStatement{}, err
	}

	start, end := storage.MonthRange(year, month)
	lines, err := s.monthLines(ctx, start, end, studentID)
	if err != nil {
		return types.StudentStatement{}, fmt.Errorf("StudentMonthlyReport: %w", err)
	}

	statement := types.StudentStatement{
		Year:         year,
		Month:        int(month),
		Student:      student,
		Consumptions: make([]types.StatementLine, 0, len(lines)),
	}
	total := decimal.Zero
	for _, l := range lines {
		statement.TotalItems += l.consumption.Quantity
		total = total.Add(l.consumption.TotalDecimal())
		statement.Consumptions = append(statement.Consumptions, types.StatementLine{
			Consumption: l.consumption,
			ProductName: l.productName,
		})
	}
	statement.TotalValue = total.InexactFloat64()

	return statement, nil
}

// DashboardStats counts students and active products and ranks the top
// spenders of the month containing now.
func (s *Store) DashboardStats(ctx context.Context, now time.Time) (types.DashboardStats, error) {
	var stats types.DashboardStats

	if err := s.Db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&stats.TotalStudents); err != nil {
		return stats, fmt.Errorf("DashboardStats: count students: %w", err)
	}
	if err := s.Db.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT COUNT(*) FROM products WHERE active = ?"), true,
	).Scan(&stats.ActiveProducts); err != nil {
		return stats, fmt.Errorf("DashboardStats: count products: %w", err)
	}

	now = now.UTC()
	report, err := s.MonthlyReport(ctx, now.Year(), now.Month())
	if err != nil {
		return stats, fmt.Errorf("DashboardStats: %w", err)
	}
	stats.MonthRevenue = report.GrandTotal

	ranked := append([]types.StudentTotal(nil), report.Students...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalValue > ranked[j].TotalValue
	})
	if len(ranked) > topStudentsLimit {
		ranked = ranked[:topStudentsLimit]
	}

	stats.TopStudents = make([]types.TopStudent, 0, len(ranked))
	for _, st := range ranked {
		stats.TopStudents = append(stats.TopStudents, types.TopStudent{
			StudentID: st.StudentID,
			FullName:  st.FullName,
			Total:     st.TotalValue,
		})
	}

	return stats, nil
}
