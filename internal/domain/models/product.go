package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ProductIDPrefix = "PRD-"
	BatchIDPrefix   = "BAT-"
	SaleIDPrefix    = "SAL-"
)

// NewID returns a prefixed 8-hex-digit token such as PRD-1a2b3c4d.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Product is a sellable item. When RequiresBatchTracking is set, Quantity is
// always the sum of the batch quantities.
type Product struct {
	ProductID             string    `json:"product_id" mapstructure:"product_id"`
	Name                  string    `json:"name" mapstructure:"name"`
	CategoryMain          string    `json:"category_main" mapstructure:"category_main"`
	CategorySub           string    `json:"category_sub" mapstructure:"category_sub"`
	Quantity              int       `json:"quantity" mapstructure:"quantity"`
	Price                 float64   `json:"price" mapstructure:"price"`
	Description           string    `json:"description" mapstructure:"description"`
	MinQuantity           int       `json:"min_quantity" mapstructure:"min_quantity"`
	ReorderPoint          int       `json:"reorder_point" mapstructure:"reorder_point"`
	PreferredSupplierID   string    `json:"preferred_supplier_id" mapstructure:"preferred_supplier_id"`
	RequiresBatchTracking bool      `json:"requires_batch_tracking" mapstructure:"requires_batch_tracking"`
	Batches               []Batch   `json:"batches" mapstructure:"batches"`
	CreatedAt             time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// ProductFields is the canonical field order used by positional formats.
var ProductFields = []string{
	"product_id", "name", "category_main", "category_sub", "quantity", "price", "description",
	"min_quantity", "reorder_point", "preferred_supplier_id", "requires_batch_tracking", "batches",
	"created_at", "updated_at",
}

// Category renders the two-level category as "Main > Sub", or just "Main".
func (p Product) Category() string {
	if p.CategorySub == "" {
		return p.CategoryMain
	}
	return p.CategoryMain + " > " + p.CategorySub
}

// Value is the stock value at list price.
func (p Product) Value() float64 {
	return float64(p.Quantity) * p.Price
}

// BatchTotal sums the quantities of all batches.
func (p Product) BatchTotal() int {
	total := 0
	for _, b := range p.Batches {
		total += b.Quantity
	}
	return total
}

// Clone returns a deep copy so callers cannot alias the manager's batches.
func (p Product) Clone() Product {
	out := p
	if p.Batches != nil {
		out.Batches = make([]Batch, len(p.Batches))
		for i, b := range p.Batches {
			out.Batches[i] = b.Clone()
		}
	}
	return out
}

// Validate checks the invariants every stored product must satisfy.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return InvalidField("name", "must not be empty")
	}
	if p.Quantity < 0 {
		return InvalidField("quantity", "must not be negative, got %d", p.Quantity)
	}
	if p.Price < 0 {
		return InvalidField("price", "must not be negative, got %.2f", p.Price)
	}
	if p.MinQuantity < 0 {
		return InvalidField("min_quantity", "must not be negative")
	}
	if p.ReorderPoint < 0 {
		return InvalidField("reorder_point", "must not be negative")
	}
	for _, b := range p.Batches {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Batch is a dated sub-quantity of a product.
type Batch struct {
	BatchID           string     `json:"batch_id" mapstructure:"batch_id"`
	Quantity          int        `json:"quantity" mapstructure:"quantity"`
	ManufacturingDate time.Time  `json:"manufacturing_date" mapstructure:"manufacturing_date"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty" mapstructure:"expiration_date"`
	LotNumber         string     `json:"lot_number" mapstructure:"lot_number"`
	SupplierID        string     `json:"supplier_id" mapstructure:"supplier_id"`
	CostPerUnit       float64    `json:"cost_per_unit" mapstructure:"cost_per_unit"`
	Location          string     `json:"location" mapstructure:"location"`
}

// Clone copies the batch including its expiration date pointer.
func (b Batch) Clone() Batch {
	out := b
	if b.ExpirationDate != nil {
		exp := *b.ExpirationDate
		out.ExpirationDate = &exp
	}
	return out
}

// Validate checks the batch invariants.
func (b Batch) Validate() error {
	if b.Quantity < 0 {
		return InvalidField("batch.quantity", "must not be negative, got %d", b.Quantity)
	}
	if b.CostPerUnit < 0 {
		return InvalidField("batch.cost_per_unit", "must not be negative")
	}
	if b.ExpirationDate != nil && !b.ManufacturingDate.IsZero() && b.ExpirationDate.Before(b.ManufacturingDate) {
		return InvalidField("batch.expiration_date", "precedes manufacturing date")
	}
	return nil
}

// ExpiresWithin reports whether the batch expires before now+window.
func (b Batch) ExpiresWithin(now time.Time, window time.Duration) bool {
	if b.ExpirationDate == nil {
		return false
	}
	return b.ExpirationDate.Before(now.Add(window))
}
