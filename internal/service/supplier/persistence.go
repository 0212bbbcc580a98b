package supplier

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

const (
	suppliersTable = "suppliers"
	ordersTable    = "purchase_orders"
)

// SaveTo writes suppliers and purchase orders as two collections. Single
// collection formats (csv, txt) only accept one of them being non-empty.
func (s *Service) SaveTo(format formats.Format, path string) error {
	suppliers, err := formats.EncodeRecords(s.suppliers)
	if err != nil {
		return models.PersistenceError("save", path, err)
	}
	orders, err := formats.EncodeRecords(s.orders)
	if err != nil {
		return models.PersistenceError("save", path, err)
	}

	ds := formats.Dataset{suppliersTable: suppliers, ordersTable: orders}
	if err := s.store.Save(ds, format, path); err != nil {
		return err
	}
	s.logger.Info("suppliers saved",
		zap.String("path", path),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("purchase_orders", len(orders)),
	)
	return nil
}

// LoadFrom replaces suppliers and orders with the contents of path and moves the
// id counters past the highest loaded ids. State is unchanged on error.
func (s *Service) LoadFrom(format formats.Format, path string) error {
	ds, err := s.store.Load(format, path, formats.WithTable(suppliersTable))
	if err != nil {
		return err
	}

	suppliers, err := formats.DecodeRecords[models.Supplier](ds[suppliersTable])
	if err != nil {
		return models.PersistenceError("load", path, fmt.Errorf("suppliers: %w", err))
	}
	for i, sup := range suppliers {
		if err := sup.Validate(); err != nil {
			return models.PersistenceError("load", path, fmt.Errorf("supplier %d: %w", i+1, err))
		}
	}

	orders, err := formats.DecodeRecords[models.PurchaseOrder](ds[ordersTable])
	if err != nil {
		return models.PersistenceError("load", path, fmt.Errorf("purchase orders: %w", err))
	}
	for i, po := range orders {
		status, err := models.ParsePOStatus(string(po.Status))
		if err != nil {
			return models.PersistenceError("load", path, fmt.Errorf("purchase order %d: %w", i+1, err))
		}
		orders[i].Status = status
		if po.PaymentStatus == "" {
			orders[i].PaymentStatus = models.PaymentUnpaid
			continue
		}
		payment, err := models.ParsePaymentStatus(string(po.PaymentStatus))
		if err != nil {
			return models.PersistenceError("load", path, fmt.Errorf("purchase order %d: %w", i+1, err))
		}
		orders[i].PaymentStatus = payment
	}

	s.suppliers = suppliers
	s.orders = orders
	s.nextSupplier = 1
	for _, sup := range suppliers {
		s.nextSupplier = max(s.nextSupplier, sequence(sup.ID, "SUP")+1)
	}
	s.nextOrder = 1
	for _, po := range orders {
		s.nextOrder = max(s.nextOrder, sequence(po.ID, "PO")+1)
	}

	s.logger.Info("suppliers loaded",
		zap.String("path", path),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("purchase_orders", len(orders)),
	)
	return nil
}

// sequence extracts the numeric part of a sequential id, or 0 when id does not
// follow the pattern.
func sequence(id, prefix string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || !strings.HasPrefix(id, prefix) {
		return 0
	}
	return n
}
