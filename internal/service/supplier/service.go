package supplier

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

// Service tracks suppliers and the purchase-order lifecycle. Like the inventory
// service it expects a single caller at a time.
type Service struct {
	store  formats.Repository
	logger *zap.Logger
	now    func() time.Time

	suppliers    []models.Supplier
	orders       []models.PurchaseOrder
	nextSupplier int
	nextOrder    int
}

// NewService wires a new supplier service instance.
func NewService(store formats.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		logger:       logger,
		now:          time.Now,
		nextSupplier: 1,
		nextOrder:    1,
	}
}

// SupplierPatch carries the supplier fields to change; nil fields are kept.
type SupplierPatch struct {
	Name          *string  `json:"name"`
	ContactPerson *string  `json:"contact_person"`
	Email         *string  `json:"email"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	PaymentTerms  *string  `json:"payment_terms"`
	Rating        *float64 `json:"rating"`
	Notes         *string  `json:"notes"`
	Active        *bool    `json:"active"`
}

func (p SupplierPatch) apply(s *models.Supplier) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&s.Name, p.Name)
	setString(&s.ContactPerson, p.ContactPerson)
	setString(&s.Email, p.Email)
	setString(&s.Phone, p.Phone)
	setString(&s.Address, p.Address)
	setString(&s.PaymentTerms, p.PaymentTerms)
	setString(&s.Notes, p.Notes)
	if p.Rating != nil {
		s.Rating = *p.Rating
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

// AddSupplier assigns the next sequential id and stores an active supplier.
func (s *Service) AddSupplier(sup models.Supplier) (models.Supplier, error) {
	if sup.PaymentTerms == "" {
		sup.PaymentTerms = models.DefaultPaymentTerms
	}
	if err := sup.Validate(); err != nil {
		return models.Supplier{}, err
	}

	now := s.now()
	sup.ID = models.SupplierID(s.nextSupplier)
	sup.Active = true
	sup.CreatedAt = now
	sup.UpdatedAt = now
	s.nextSupplier++

	s.suppliers = append(s.suppliers, sup)
	s.logger.Info("supplier added", zap.String("supplier_id", sup.ID), zap.String("name", sup.Name))
	return sup, nil
}

// UpdateSupplier applies patch; nothing changes when the result is invalid.
func (s *Service) UpdateSupplier(id string, patch SupplierPatch) (models.Supplier, error) {
	idx := s.supplierIndex(id)
	if idx < 0 {
		return models.Supplier{}, fmt.Errorf("supplier %s: %w", id, models.ErrNotFound)
	}
	updated := s.suppliers[idx]
	patch.apply(&updated)
	if err := updated.Validate(); err != nil {
		return models.Supplier{}, err
	}
	updated.UpdatedAt = s.now()
	s.suppliers[idx] = updated

	s.logger.Info("supplier updated", zap.String("supplier_id", id))
	return updated, nil
}

// DeactivateSupplier keeps the supplier for history but marks it inactive.
func (s *Service) DeactivateSupplier(id string) (models.Supplier, error) {
	inactive := false
	return s.UpdateSupplier(id, SupplierPatch{Active: &inactive})
}

// DeleteSupplier removes the supplier. Its purchase orders keep the now dangling
// supplier id.
func (s *Service) DeleteSupplier(id string) error {
	idx := s.supplierIndex(id)
	if idx < 0 {
		return fmt.Errorf("supplier %s: %w", id, models.ErrNotFound)
	}
	s.suppliers = append(s.suppliers[:idx], s.suppliers[idx+1:]...)
	s.logger.Info("supplier deleted", zap.String("supplier_id", id))
	return nil
}

// GetSupplier returns the supplier with id.
func (s *Service) GetSupplier(id string) (models.Supplier, error) {
	idx := s.supplierIndex(id)
	if idx < 0 {
		return models.Supplier{}, fmt.Errorf("supplier %s: %w", id, models.ErrNotFound)
	}
	return s.suppliers[idx], nil
}

// Suppliers returns every supplier in creation order.
func (s *Service) Suppliers() []models.Supplier {
	return append([]models.Supplier(nil), s.suppliers...)
}

// SearchSuppliers matches name or contact person case-insensitively.
func (s *Service) SearchSuppliers(query string) []models.Supplier {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Supplier
	for _, sup := range s.suppliers {
		if strings.Contains(strings.ToLower(sup.Name), q) || strings.Contains(strings.ToLower(sup.ContactPerson), q) {
			out = append(out, sup)
		}
	}
	return out
}

func (s *Service) supplierIndex(id string) int {
	for i := range s.suppliers {
		if s.suppliers[i].ID == id {
			return i
		}
	}
	return -1
}
