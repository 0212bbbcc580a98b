package inventory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/catalog"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

// Settings tunes alerting and sale recording.
type Settings struct {
	Thresholds models.AlertThresholds
	TaxRate    float64
}

// Service owns the product collection and the sales history. It is not safe for
// concurrent use; hosts with several goroutines must serialise calls.
type Service struct {
	store      formats.Repository
	categories *catalog.Catalog
	settings   Settings
	logger     *zap.Logger
	now        func() time.Time

	products []models.Product
	sales    []models.SalesRecord
}

// NewService wires a new inventory service instance.
func NewService(store formats.Repository, categories *catalog.Catalog, settings Settings, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if categories == nil {
		categories = catalog.Default()
	}
	if settings.Thresholds == (models.AlertThresholds{}) {
		settings.Thresholds = models.DefaultThresholds
	}
	if err := settings.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if settings.TaxRate < 0 {
		return nil, models.InvalidField("tax_rate", "must not be negative")
	}
	return &Service{
		store:      store,
		categories: categories,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Thresholds returns the configured alert thresholds.
func (s *Service) Thresholds() models.AlertThresholds {
	return s.settings.Thresholds
}

// Categories returns the session category catalog.
func (s *Service) Categories() *catalog.Catalog {
	return s.categories
}

// AddProduct assigns identity and timestamps and appends the product. Names may
// repeat; a caller-supplied id is trusted as unique.
func (s *Service) AddProduct(p models.Product) (models.Product, error) {
	p = p.Clone()
	now := s.now()

	if p.ProductID == "" {
		p.ProductID = models.NewID(models.ProductIDPrefix)
	}
	if p.CategoryMain != "" && p.CategorySub == "" && strings.ContainsAny(p.CategoryMain, ">/") {
		p.CategoryMain, p.CategorySub = s.categories.Upgrade(p.CategoryMain)
	}
	if p.RequiresBatchTracking {
		for i := range p.Batches {
			if p.Batches[i].BatchID == "" {
				p.Batches[i].BatchID = models.NewID(models.BatchIDPrefix)
			}
		}
		p.Quantity = p.BatchTotal()
	} else if len(p.Batches) > 0 {
		return models.Product{}, fmt.Errorf("%w: batches given for %s", models.ErrNotBatchTracked, p.Name)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}

	s.products = append(s.products, p)
	s.logger.Info("product added",
		zap.String("product_id", p.ProductID),
		zap.String("name", p.Name),
		zap.Int("quantity", p.Quantity),
	)
	return p.Clone(), nil
}

// EditProduct applies the recognised fields of patch. The whole patch is checked
// before anything is written.
func (s *Service) EditProduct(id string, patch models.ProductPatch) (models.Product, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}

	values, err := patch.Check()
	if err != nil {
		return models.Product{}, err
	}

	updated := s.products[idx].Clone()
	tracked, toggled := values.Bool("requires_batch_tracking")
	_, setsQuantity := values.Int("quantity")

	switch {
	case toggled && tracked && !updated.RequiresBatchTracking:
		values.ApplyScalars(&updated)
		updated.RequiresBatchTracking = true
		if updated.Quantity > 0 {
			updated.Batches = []models.Batch{{
				BatchID:           models.NewID(models.BatchIDPrefix),
				Quantity:          updated.Quantity,
				ManufacturingDate: s.now(),
				LotNumber:         "OPENING",
				SupplierID:        updated.PreferredSupplierID,
				CostPerUnit:       updated.Price,
			}}
		}
		updated.Quantity = updated.BatchTotal()
	case toggled && !tracked && updated.RequiresBatchTracking:
		if len(updated.Batches) > 0 {
			return models.Product{}, models.InvalidField("requires_batch_tracking", "remove the %d batches of %s first", len(updated.Batches), id)
		}
		updated.RequiresBatchTracking = false
		values.ApplyScalars(&updated)
	case updated.RequiresBatchTracking && setsQuantity:
		return models.Product{}, fmt.Errorf("%s: %w", id, models.ErrBatchTracked)
	default:
		values.ApplyScalars(&updated)
	}

	if err := updated.Validate(); err != nil {
		return models.Product{}, err
	}
	updated.UpdatedAt = s.now()
	s.products[idx] = updated

	s.logger.Info("product updated", zap.String("product_id", id), zap.Strings("fields", patch.Keys()))
	return updated.Clone(), nil
}

// DeleteProduct removes the product with id.
func (s *Service) DeleteProduct(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// GetByID returns a copy of the product with id.
func (s *Service) GetByID(id string) (models.Product, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return s.products[idx].Clone(), nil
}

// All returns copies of every product in insertion order.
func (s *Service) All() []models.Product {
	out := make([]models.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

// Search matches query case-insensitively against name and both category levels.
// An empty query matches everything.
func (s *Service) Search(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Product
	for _, p := range s.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.CategoryMain), q) ||
			strings.Contains(strings.ToLower(p.CategorySub), q) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// FilterByCategory returns products in main, optionally narrowed to sub.
func (s *Service) FilterByCategory(main, sub string) []models.Product {
	var out []models.Product
	for _, p := range s.products {
		if !strings.EqualFold(p.CategoryMain, main) {
			continue
		}
		if sub != "" && !strings.EqualFold(p.CategorySub, sub) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// UpdateStock adds delta to a product that is not batch tracked.
func (s *Service) UpdateStock(id string, delta int) (models.Product, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	p := &s.products[idx]
	if p.RequiresBatchTracking {
		return models.Product{}, fmt.Errorf("%s: %w", id, models.ErrBatchTracked)
	}
	if p.Quantity+delta < 0 {
		return models.Product{}, fmt.Errorf("%w: %s has %d, cannot remove %d", models.ErrInsufficientStock, id, p.Quantity, -delta)
	}
	p.Quantity += delta
	p.UpdatedAt = s.now()

	s.logger.Info("stock updated", zap.String("product_id", id), zap.Int("delta", delta), zap.Int("quantity", p.Quantity))
	return p.Clone(), nil
}

// Stats summarises the collection.
func (s *Service) Stats() models.InventoryStats {
	stats := models.InventoryStats{AlertCounts: map[models.AlertLevel]int{
		models.AlertCritical: 0,
		models.AlertLow:      0,
		models.AlertReorder:  0,
	}}
	categories := map[string]struct{}{}
	for _, p := range s.products {
		stats.ProductCount++
		stats.TotalUnits += p.Quantity
		stats.InventoryValue += p.Value()
		if p.RequiresBatchTracking {
			stats.BatchTracked++
		}
		categories[p.CategoryMain] = struct{}{}
	}
	for _, alert := range s.CheckAlerts() {
		stats.AlertCounts[alert.Level]++
	}
	stats.CategoryCount = len(categories)
	stats.InventoryValue = round2(stats.InventoryValue)
	return stats
}

// CheckAlerts classifies every product against the thresholds and returns at
// most one alert per product, most severe first.
func (s *Service) CheckAlerts() []models.Alert {
	var alerts []models.Alert
	for _, p := range s.products {
		level := s.settings.Thresholds.Classify(p.Quantity, p.ReorderPoint)
		if level == "" {
			continue
		}
		alerts = append(alerts, models.NewAlert(p, level))
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level.Severity() < alerts[j].Level.Severity()
	})
	return alerts
}

// indexOf scans linearly; collections stay in the low thousands.
func (s *Service) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ProductID == id {
			return i
		}
	}
	return -1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
