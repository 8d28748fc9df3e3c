package types

import (
	"encoding/json"
	"time"
)

// Product is something the canteen sells.
//
// Price is the current unit price. Consumption records copy it at purchase
// time, so changing it later does not rewrite history. A product that is
// no longer sold is switched off with Active=false rather than deleted.
type Product struct {
	ID           int64
	Name         string
	Price        float64
	Active       bool
	RegisteredAt time.Time
}

// NewProduct returns an active product. Active defaults to true whenever
// the caller does not say otherwise.
func NewProduct(name string, price float64) Product {
	return Product{Name: name, Price: price, Active: true}
}

// Serialize returns the product as a JSON-ready mapping.
// Negative prices are passed through untouched.
func (p Product) Serialize() map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"price":         p.Price,
		"active":        p.Active,
		"registered_at": formatTimestamp(p.RegisteredAt),
	}
}

// MarshalJSON encodes the same mapping Serialize returns.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Serialize())
}
