package supplier

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// CreatePurchaseOrder places an order with a known supplier. TotalAmount is
// computed from items here and never recomputed.
func (s *Service) CreatePurchaseOrder(supplierID string, items []models.POItem, expected *time.Time, notes string) (models.PurchaseOrder, error) {
	sup, err := s.GetSupplier(supplierID)
	if err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("%w: %s", models.ErrUnknownSupplier, supplierID)
	}
	if err := models.ValidateItems(items); err != nil {
		return models.PurchaseOrder{}, err
	}
	if !sup.Active {
		s.logger.Warn("purchase order for inactive supplier", zap.String("supplier_id", supplierID))
	}

	now := s.now()
	po := models.PurchaseOrder{
		ID:            models.PurchaseOrderID(s.nextOrder),
		SupplierID:    supplierID,
		Items:         append([]models.POItem(nil), items...),
		Status:        models.POPending,
		PaymentStatus: models.PaymentUnpaid,
		OrderDate:     now,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if expected != nil {
		t := *expected
		po.ExpectedDelivery = &t
	}
	po.TotalAmount = math.Round(po.ItemsTotal()*100) / 100
	s.nextOrder++

	s.orders = append(s.orders, po)
	s.logger.Info("purchase order created",
		zap.String("po_id", po.ID),
		zap.String("supplier_id", supplierID),
		zap.Float64("total_amount", po.TotalAmount),
	)
	return po.Clone(), nil
}

// UpdatePOStatus moves an order along its lifecycle. Values outside the closed
// status set fail with ErrInvalidStatus, disallowed moves with
// ErrInvalidTransition. Delivery stamps DeliveredAt.
func (s *Service) UpdatePOStatus(id, status, notes string) (models.PurchaseOrder, error) {
	next, err := models.ParsePOStatus(status)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	po, err := s.order(id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	if !po.Status.CanTransition(next) {
		return models.PurchaseOrder{}, fmt.Errorf("%w: %s from %s to %s", models.ErrInvalidTransition, id, po.Status, next)
	}

	now := s.now()
	previous := po.Status
	po.Status = next
	if next == models.PODelivered {
		po.DeliveredAt = &now
	}
	if notes != "" {
		po.Notes = notes
	}
	po.UpdatedAt = now

	s.logger.Info("purchase order status changed",
		zap.String("po_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)
	return po.Clone(), nil
}

// UpdatePaymentStatus records how much of the order has been paid.
func (s *Service) UpdatePaymentStatus(id, status string) (models.PurchaseOrder, error) {
	next, err := models.ParsePaymentStatus(status)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	po, err := s.order(id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	po.PaymentStatus = next
	po.UpdatedAt = s.now()
	return po.Clone(), nil
}

// GetOrder returns the purchase order with id.
func (s *Service) GetOrder(id string) (models.PurchaseOrder, error) {
	po, err := s.order(id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	return po.Clone(), nil
}

// Orders returns every purchase order in creation order.
func (s *Service) Orders() []models.PurchaseOrder {
	return s.filterOrders(func(models.PurchaseOrder) bool { return true })
}

// PendingOrders returns the orders still awaiting confirmation.
func (s *Service) PendingOrders() []models.PurchaseOrder {
	return s.filterOrders(func(po models.PurchaseOrder) bool { return po.Status == models.POPending })
}

// OrderHistory returns every order placed with supplierID.
func (s *Service) OrderHistory(supplierID string) []models.PurchaseOrder {
	return s.filterOrders(func(po models.PurchaseOrder) bool { return po.SupplierID == supplierID })
}

// ResolveSupplier looks up the supplier an order points at. ok is false when
// the supplier has since been deleted.
func (s *Service) ResolveSupplier(po models.PurchaseOrder) (models.Supplier, bool) {
	idx := s.supplierIndex(po.SupplierID)
	if idx < 0 {
		return models.Supplier{}, false
	}
	return s.suppliers[idx], true
}

// Performance scores a supplier's delivered orders. An order is on time when
// delivered no later than its expected date; orders without one count as on
// time. AverageDelayDays averages whole days late over late deliveries only.
func (s *Service) Performance(supplierID string) (models.SupplierPerformance, error) {
	sup, err := s.GetSupplier(supplierID)
	if err != nil {
		return models.SupplierPerformance{}, fmt.Errorf("%w: %s", models.ErrUnknownSupplier, supplierID)
	}

	perf := models.SupplierPerformance{SupplierID: sup.ID, SupplierName: sup.Name}
	totalDelay := 0
	for _, po := range s.orders {
		if po.SupplierID != supplierID {
			continue
		}
		perf.TotalOrders++
		perf.TotalValue += po.TotalAmount

		switch po.Status {
		case models.POCancelled:
			perf.CancelledOrders++
		case models.PODelivered:
			perf.DeliveredOrders++
			delay := delayDays(po)
			if delay <= 0 {
				perf.OnTimeDeliveries++
				continue
			}
			perf.LateDeliveries++
			totalDelay += delay
		}
	}

	if perf.DeliveredOrders > 0 {
		perf.OnTimeRate = float64(perf.OnTimeDeliveries) / float64(perf.DeliveredOrders) * 100
	}
	if perf.LateDeliveries > 0 {
		perf.AverageDelayDays = float64(totalDelay) / float64(perf.LateDeliveries)
	}
	perf.TotalValue = math.Round(perf.TotalValue*100) / 100
	return perf, nil
}

// delayDays is the number of whole days between the expected and the actual
// delivery, rounded down.
func delayDays(po models.PurchaseOrder) int {
	if po.ExpectedDelivery == nil || po.DeliveredAt == nil {
		return 0
	}
	return int(math.Floor(po.DeliveredAt.Sub(*po.ExpectedDelivery).Hours() / 24))
}

func (s *Service) order(id string) (*models.PurchaseOrder, error) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, fmt.Errorf("purchase order %s: %w", id, models.ErrNotFound)
}

func (s *Service) filterOrders(keep func(models.PurchaseOrder) bool) []models.PurchaseOrder {
	var out []models.PurchaseOrder
	for _, po := range s.orders {
		if keep(po) {
			out = append(out, po.Clone())
		}
	}
	return out
}
