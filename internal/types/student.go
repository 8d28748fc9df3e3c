package types

import (
	"encoding/json"
	"time"
)

// Student is a person who buys from the canteen.
//
// Consumption records belonging to a student are NOT held here; ask the
// storage layer for them with FindConsumptionsByStudent. Deleting a
// student deletes its consumption records as well.
type Student struct {
	ID           int64
	FullName     string
	Classroom    string
	RegisteredAt time.Time
}

// Serialize returns the student as a JSON-ready mapping.
func (s Student) Serialize() map[string]any {
	return map[string]any{
		"id":            s.ID,
		"full_name":     s.FullName,
		"classroom":     s.Classroom,
		"registered_at": formatTimestamp(s.RegisteredAt),
	}
}

// MarshalJSON encodes the same mapping Serialize returns.
func (s Student) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Serialize())
}
