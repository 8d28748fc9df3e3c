package types

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuantity is used when a consumption is recorded without one.
const DefaultQuantity int64 = 1

// Consumption records that a student bought Quantity units of a product.
//
// UnitPrice is the price charged at the time of purchase, captured from the
// product when the record was made. It is deliberately decoupled from
// Product.Price so historical totals stay stable.
type Consumption struct {
	ID         int64
	StudentID  int64
	ProductID  int64
	Quantity   int64
	UnitPrice  float64
	ConsumedAt time.Time
}

// NewConsumption returns a consumption of a single unit.
func NewConsumption(studentID, productID int64, unitPrice float64) Consumption {
	return Consumption{
		StudentID: studentID,
		ProductID: productID,
		Quantity:  DefaultQuantity,
		UnitPrice: unitPrice,
	}
}

// TotalDecimal is Quantity * UnitPrice in fixed-point arithmetic.
//
// UnitPrice is taken at its shortest decimal representation, so 3 x 0.10
// is exactly 0.30. No rounding to cents is applied: zero quantities give
// zero and negative prices give negative totals. A non-finite UnitPrice
// has no decimal form and counts as zero.
func (c Consumption) TotalDecimal() decimal.Decimal {
	if !finite(c.UnitPrice) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(c.UnitPrice).Mul(decimal.NewFromInt(c.Quantity))
}

// Total is computed from the current field values on every call.
// A non-finite UnitPrice falls back to float multiplication.
func (c Consumption) Total() float64 {
	if !finite(c.UnitPrice) {
		return c.UnitPrice * float64(c.Quantity)
	}
	return c.TotalDecimal().InexactFloat64()
}

// Serialize returns the consumption as a JSON-ready mapping, including
// the derived "total".
func (c Consumption) Serialize() map[string]any {
	return map[string]any{
		"id":          c.ID,
		"student_id":  c.StudentID,
		"product_id":  c.ProductID,
		"quantity":    c.Quantity,
		"unit_price":  c.UnitPrice,
		"total":       c.Total(),
		"consumed_at": formatTimestamp(c.ConsumedAt),
	}
}

// MarshalJSON encodes the same mapping Serialize returns.
func (c Consumption) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Serialize())
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
