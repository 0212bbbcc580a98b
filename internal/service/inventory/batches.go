package inventory

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// AddBatch attaches a batch to a batch-tracked product and returns it with its id.
func (s *Service) AddBatch(productID string, batch models.Batch) (models.Batch, error) {
	p, err := s.trackedProduct(productID)
	if err != nil {
		return models.Batch{}, err
	}
	batch = batch.Clone()
	if batch.BatchID == "" {
		batch.BatchID = models.NewID(models.BatchIDPrefix)
	}
	if batch.ManufacturingDate.IsZero() {
		batch.ManufacturingDate = s.now()
	}
	if err := batch.Validate(); err != nil {
		return models.Batch{}, err
	}

	p.Batches = append(p.Batches, batch)
	s.syncBatchQuantity(p)

	s.logger.Info("batch added",
		zap.String("product_id", productID),
		zap.String("batch_id", batch.BatchID),
		zap.Int("quantity", batch.Quantity),
	)
	return batch.Clone(), nil
}

// UpdateBatchQuantity sets a batch's quantity and recomputes the product total.
func (s *Service) UpdateBatchQuantity(productID, batchID string, quantity int) (models.Product, error) {
	if quantity < 0 {
		return models.Product{}, models.InvalidField("batch.quantity", "must not be negative, got %d", quantity)
	}
	p, err := s.trackedProduct(productID)
	if err != nil {
		return models.Product{}, err
	}
	idx := batchIndex(p.Batches, batchID)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("batch %s: %w", batchID, models.ErrNotFound)
	}

	p.Batches[idx].Quantity = quantity
	s.syncBatchQuantity(p)

	s.logger.Info("batch quantity updated",
		zap.String("product_id", productID),
		zap.String("batch_id", batchID),
		zap.Int("quantity", quantity),
	)
	return p.Clone(), nil
}

// RemoveBatch deletes a batch and recomputes the product total.
func (s *Service) RemoveBatch(productID, batchID string) (models.Product, error) {
	p, err := s.trackedProduct(productID)
	if err != nil {
		return models.Product{}, err
	}
	idx := batchIndex(p.Batches, batchID)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("batch %s: %w", batchID, models.ErrNotFound)
	}

	p.Batches = append(p.Batches[:idx], p.Batches[idx+1:]...)
	s.syncBatchQuantity(p)

	s.logger.Info("batch removed", zap.String("product_id", productID), zap.String("batch_id", batchID))
	return p.Clone(), nil
}

// ExpiringBatches lists batches with stock left that expire within window,
// including those already expired, soonest first.
func (s *Service) ExpiringBatches(window time.Duration) []models.ExpiringBatch {
	now := s.now()
	var out []models.ExpiringBatch
	for _, p := range s.products {
		for _, b := range p.Batches {
			if b.Quantity <= 0 || !b.ExpiresWithin(now, window) {
				continue
			}
			out = append(out, models.ExpiringBatch{
				ProductID:   p.ProductID,
				ProductName: p.Name,
				Batch:       b.Clone(),
				DaysLeft:    int(math.Floor(b.ExpirationDate.Sub(now).Hours() / 24)),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Batch.ExpirationDate.Before(*out[j].Batch.ExpirationDate)
	})
	return out
}

func (s *Service) trackedProduct(id string) (*models.Product, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	p := &s.products[idx]
	if !p.RequiresBatchTracking {
		return nil, fmt.Errorf("%s: %w", id, models.ErrNotBatchTracked)
	}
	return p, nil
}

// syncBatchQuantity keeps Quantity equal to the batch total.
func (s *Service) syncBatchQuantity(p *models.Product) {
	p.Quantity = p.BatchTotal()
	p.UpdatedAt = s.now()
}

func batchIndex(batches []models.Batch, id string) int {
	for i := range batches {
		if batches[i].BatchID == id {
			return i
		}
	}
	return -1
}

// consumeOrder returns batch indexes in first-expiring-first-out order. Batches
// without an expiration date go last, oldest manufacturing date first.
func consumeOrder(batches []models.Batch) []int {
	order := make([]int, len(batches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := batches[order[a]], batches[order[b]]
		switch {
		case x.ExpirationDate != nil && y.ExpirationDate != nil:
			if !x.ExpirationDate.Equal(*y.ExpirationDate) {
				return x.ExpirationDate.Before(*y.ExpirationDate)
			}
		case x.ExpirationDate != nil:
			return true
		case y.ExpirationDate != nil:
			return false
		}
		return x.ManufacturingDate.Before(y.ManufacturingDate)
	})
	return order
}
