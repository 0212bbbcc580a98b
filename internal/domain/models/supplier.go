package models

import (
	"fmt"
	"strings"
	"time"
)

// Supplier is a vendor that purchase orders are placed with.
type Supplier struct {
	ID            string    `json:"id" mapstructure:"id"`
	Name          string    `json:"name" mapstructure:"name"`
	ContactPerson string    `json:"contact_person" mapstructure:"contact_person"`
	Email         string    `json:"email" mapstructure:"email"`
	Phone         string    `json:"phone" mapstructure:"phone"`
	Address       string    `json:"address" mapstructure:"address"`
	PaymentTerms  string    `json:"payment_terms" mapstructure:"payment_terms"`
	Rating        float64   `json:"rating" mapstructure:"rating"`
	Notes         string    `json:"notes" mapstructure:"notes"`
	Active        bool      `json:"active" mapstructure:"active"`
	CreatedAt     time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// DefaultPaymentTerms applies when a supplier is created without terms.
const DefaultPaymentTerms = "Net 30"

// SupplierID formats the sequential supplier identifier.
func SupplierID(seq int) string { return fmt.Sprintf("SUP%04d", seq) }

// Validate checks the supplier invariants.
func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return InvalidField("name", "must not be empty")
	}
	if s.Rating < 0 || s.Rating > 5 {
		return InvalidField("rating", "must be between 0 and 5, got %.1f", s.Rating)
	}
	return nil
}
