package inventory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// SaleLine is one requested line of a checkout.
type SaleLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// RecordSale sells quantity units of one product at price. Nothing changes when
// stock is short.
func (s *Service) RecordSale(productID string, quantity int, price float64) (models.SalesRecord, error) {
	return s.Checkout([]SaleLine{{ProductID: productID, Quantity: quantity, UnitPrice: price}})
}

// Checkout records a multi-line sale. Every line is checked before any stock is
// decremented, so a failing line leaves inventory and history unchanged.
func (s *Service) Checkout(lines []SaleLine) (models.SalesRecord, error) {
	if len(lines) == 0 {
		return models.SalesRecord{}, models.InvalidField("items", "at least one line is required")
	}

	requested := map[string]int{}
	indexes := make([]int, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return models.SalesRecord{}, models.InvalidField("quantity", "must be positive, got %d", line.Quantity)
		}
		if line.UnitPrice < 0 {
			return models.SalesRecord{}, models.InvalidField("price", "must not be negative, got %.2f", line.UnitPrice)
		}
		idx := s.indexOf(line.ProductID)
		if idx < 0 {
			return models.SalesRecord{}, fmt.Errorf("product %s: %w", line.ProductID, models.ErrNotFound)
		}
		indexes[i] = idx
		requested[line.ProductID] += line.Quantity
		if have := s.products[idx].Quantity; requested[line.ProductID] > have {
			return models.SalesRecord{}, fmt.Errorf("%w: %s has %d, requested %d",
				models.ErrInsufficientStock, line.ProductID, have, requested[line.ProductID])
		}
	}

	now := s.now()
	record := models.SalesRecord{
		ID:        models.NewID(models.SaleIDPrefix),
		Timestamp: now,
	}
	for i, line := range lines {
		p := &s.products[indexes[i]]
		if p.RequiresBatchTracking {
			consumeBatches(p, line.Quantity)
			p.Quantity = p.BatchTotal()
		} else {
			p.Quantity -= line.Quantity
		}
		p.UpdatedAt = now

		total := round2(float64(line.Quantity) * line.UnitPrice)
		record.Items = append(record.Items, models.SaleItem{
			ProductID:   p.ProductID,
			ProductName: p.Name,
			Category:    p.CategoryMain,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       total,
		})
		record.Subtotal += total
	}
	record.Subtotal = round2(record.Subtotal)
	record.Tax = round2(record.Subtotal * s.settings.TaxRate)
	record.Total = round2(record.Subtotal + record.Tax)

	s.sales = append(s.sales, record)
	s.logger.Info("sale recorded",
		zap.String("sale_id", record.ID),
		zap.Int("lines", len(record.Items)),
		zap.Float64("total", record.Total),
	)
	return record.Clone(), nil
}

// consumeBatches takes quantity units from the batches expiring first. The caller
// has already checked that enough stock exists.
func consumeBatches(p *models.Product, quantity int) {
	remaining := quantity
	for _, idx := range consumeOrder(p.Batches) {
		if remaining == 0 {
			break
		}
		take := p.Batches[idx].Quantity
		if take > remaining {
			take = remaining
		}
		p.Batches[idx].Quantity -= take
		remaining -= take
	}
}

// Sales returns copies of the recorded sales in order.
func (s *Service) Sales() []models.SalesRecord {
	out := make([]models.SalesRecord, len(s.sales))
	for i, r := range s.sales {
		out[i] = r.Clone()
	}
	return out
}
