package inventory

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

const (
	productsTable = "products"
	salesTable    = "sales"
	posTable      = "pos"
)

// POSFields is the column order of the point-of-sale export.
var POSFields = []string{"product_id", "name", "price", "quantity"}

// SaveTo writes the product collection to path in format.
func (s *Service) SaveTo(format formats.Format, path string) error {
	rows, err := formats.EncodeRecords(s.products)
	if err != nil {
		return models.PersistenceError("save", path, err)
	}
	err = s.store.Save(formats.Dataset{productsTable: rows}, format, path,
		formats.WithTable(productsTable), formats.WithColumns(models.ProductFields...))
	if err != nil {
		return err
	}
	s.logger.Info("inventory saved", zap.String("path", path), zap.String("format", string(format)), zap.Int("products", len(rows)))
	return nil
}

// LoadFrom replaces the product collection with the contents of path. The current
// collection is kept when any record fails to load.
func (s *Service) LoadFrom(format formats.Format, path string) error {
	ds, err := s.store.Load(format, path, formats.WithTable(productsTable), formats.WithColumns(models.ProductFields...))
	if err != nil {
		return err
	}

	rows := ds.Rows(productsTable)
	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		p, err := s.decodeProduct(row)
		if err != nil {
			return models.PersistenceError("load", path, fmt.Errorf("record %d: %w", i+1, err))
		}
		products = append(products, p)
	}

	s.products = products
	s.logger.Info("inventory loaded", zap.String("path", path), zap.String("format", string(format)), zap.Int("products", len(products)))
	return nil
}

// decodeProduct upgrades legacy fields, fills defaults and re-establishes the
// batch total.
func (s *Service) decodeProduct(row formats.Record) (models.Product, error) {
	row = s.upgradeLegacyRecord(row)

	var p models.Product
	if err := formats.DecodeRecord(row, &p); err != nil {
		return models.Product{}, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return models.Product{}, errors.New("missing required field name")
	}

	now := s.now()
	if p.ProductID == "" {
		p.ProductID = models.NewID(models.ProductIDPrefix)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.RequiresBatchTracking {
		for i := range p.Batches {
			if p.Batches[i].BatchID == "" {
				p.Batches[i].BatchID = models.NewID(models.BatchIDPrefix)
			}
		}
		if total := p.BatchTotal(); total != p.Quantity {
			s.logger.Warn("batch total differs from stored quantity",
				zap.String("product_id", p.ProductID),
				zap.Int("stored", p.Quantity),
				zap.Int("batches", total),
			)
			p.Quantity = total
		}
	}
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// upgradeLegacyRecord maps the older POS schema (id, stock, single category)
// onto the current field names.
func (s *Service) upgradeLegacyRecord(row formats.Record) formats.Record {
	out := make(formats.Record, len(row))
	for k, v := range row {
		out[k] = v
	}

	if isBlank(out["product_id"]) && !isBlank(out["id"]) {
		out["product_id"] = out["id"]
	}
	delete(out, "id")
	if isBlank(out["quantity"]) && !isBlank(out["stock"]) {
		out["quantity"] = out["stock"]
	}
	delete(out, "stock")

	if legacy, ok := out["category"]; ok {
		if isBlank(out["category_main"]) {
			main, sub := s.categories.Upgrade(fmt.Sprint(legacy))
			if isBlank(legacy) {
				main, sub = "", ""
			}
			out["category_main"] = main
			if isBlank(out["category_sub"]) {
				out["category_sub"] = sub
			}
		}
		delete(out, "category")
	}
	return out
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// SaveSales writes the sales history to path in format.
func (s *Service) SaveSales(format formats.Format, path string) error {
	rows, err := formats.EncodeRecords(s.sales)
	if err != nil {
		return models.PersistenceError("save", path, err)
	}
	return s.store.Save(formats.Dataset{salesTable: rows}, format, path,
		formats.WithTable(salesTable), formats.WithColumns(models.SalesFields...))
}

// LoadSales replaces the sales history with the contents of path.
func (s *Service) LoadSales(format formats.Format, path string) error {
	ds, err := s.store.Load(format, path, formats.WithTable(salesTable), formats.WithColumns(models.SalesFields...))
	if err != nil {
		return err
	}
	records, err := formats.DecodeRecords[models.SalesRecord](ds.Rows(salesTable))
	if err != nil {
		return models.PersistenceError("load", path, err)
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = models.NewID(models.SaleIDPrefix)
		}
	}
	s.sales = records
	s.logger.Info("sales history loaded", zap.String("path", path), zap.Int("sales", len(records)))
	return nil
}

// ExportPOS writes the pipe-delimited price list read by the till software.
func (s *Service) ExportPOS(path string) error {
	rows := make([]formats.Record, 0, len(s.products))
	for _, p := range s.products {
		rows = append(rows, formats.Record{
			"product_id": p.ProductID,
			"name":       p.Name,
			"price":      p.Price,
			"quantity":   int64(p.Quantity),
		})
	}
	return s.store.Save(formats.Dataset{posTable: rows}, formats.TXT, path,
		formats.WithTable(posTable), formats.WithColumns(POSFields...))
}
