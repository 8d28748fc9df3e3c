package types

import "encoding/json"

// StudentTotal is one line of the monthly report.
type StudentTotal struct {
	StudentID  int64   `json:"student_id"`
	FullName   string  `json:"full_name"`
	Classroom  string  `json:"classroom"`
	TotalItems int64   `json:"total_items"`
	TotalValue float64 `json:"total_value"`
}

// MonthlyReport sums what every student consumed in one calendar month.
// Only students with at least one consumption in the month are listed.
type MonthlyReport struct {
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	TotalStudents int            `json:"total_students"`
	GrandTotal    float64        `json:"grand_total"`
	Students      []StudentTotal `json:"students"`
}

// StatementLine is a consumption together with the name of its product.
type StatementLine struct {
	Consumption
	ProductName string
}

// MarshalJSON adds "product_name" to the serialized consumption.
func (l StatementLine) MarshalJSON() ([]byte, error) {
	m := l.Consumption.Serialize()
	m["product_name"] = l.ProductName
	return json.Marshal(m)
}

// StudentStatement is the detailed monthly statement of one student.
type StudentStatement struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Student      Student         `json:"student"`
	TotalItems   int64           `json:"total_items"`
	TotalValue   float64         `json:"total_value"`
	Consumptions []StatementLine `json:"consumptions"`
}

// TopStudent is a student ranked by spending in the current month.
type TopStudent struct {
	StudentID int64   `json:"student_id"`
	FullName  string  `json:"full_name"`
	Total     float64 `json:"total"`
}

// DashboardStats summarises the canteen for the current month.
type DashboardStats struct {
	TotalStudents  int64        `json:"total_students"`
	ActiveProducts int64        `json:"active_products"`
	MonthRevenue   float64      `json:"month_revenue"`
	TopStudents    []TopStudent `json:"top_students"`
}
