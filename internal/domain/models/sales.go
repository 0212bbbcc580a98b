package models

import "time"

// SaleItem is one line of a sale.
type SaleItem struct {
	ProductID   string  `json:"product_id" mapstructure:"product_id"`
	ProductName string  `json:"product_name" mapstructure:"product_name"`
	Category    string  `json:"category" mapstructure:"category"`
	Quantity    int     `json:"quantity" mapstructure:"quantity"`
	UnitPrice   float64 `json:"unit_price" mapstructure:"unit_price"`
	Total       float64 `json:"total" mapstructure:"total"`
}

// SalesRecord is an immutable sale. Stock is decremented when it is recorded.
type SalesRecord struct {
	ID        string     `json:"id" mapstructure:"id"`
	Items     []SaleItem `json:"items" mapstructure:"items"`
	Subtotal  float64    `json:"subtotal" mapstructure:"subtotal"`
	Tax       float64    `json:"tax" mapstructure:"tax"`
	Total     float64    `json:"total" mapstructure:"total"`
	Timestamp time.Time  `json:"timestamp" mapstructure:"timestamp"`
}

// SalesFields is the canonical field order used by positional formats.
var SalesFields = []string{"id", "items", "subtotal", "tax", "total", "timestamp"}

// Units sums item quantities, optionally restricted to one product.
func (s SalesRecord) Units(productID string) int {
	units := 0
	for _, item := range s.Items {
		if productID == "" || item.ProductID == productID {
			units += item.Quantity
		}
	}
	return units
}

// Revenue sums item totals, optionally restricted to one product.
func (s SalesRecord) Revenue(productID string) float64 {
	revenue := 0.0
	for _, item := range s.Items {
		if productID == "" || item.ProductID == productID {
			revenue += item.Total
		}
	}
	return revenue
}

// Clone copies the record and its items.
func (s SalesRecord) Clone() SalesRecord {
	out := s
	out.Items = append([]SaleItem(nil), s.Items...)
	return out
}
