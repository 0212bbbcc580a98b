package sheets

import (
	"context"
	"fmt"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// Sheet ranges written by the exporter.
const (
	SalesRange     = "Sales!A:H"
	ReportsRange   = "Reports!A:L"
	InventoryRange = "Inventory!A:J"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

var inventoryHeader = []interface{}{
	"product_id", "name", "category_main", "category_sub", "quantity", "price",
	"value", "reorder_point", "preferred_supplier_id", "batch_tracked",
}

// Exporter maps inventory entities onto spreadsheet rows.
type Exporter struct {
	repo Repository
}

// NewExporter wraps a sheet repository.
func NewExporter(repo Repository) *Exporter {
	return &Exporter{repo: repo}
}

// AppendSale journals one row per sale line.
func (e *Exporter) AppendSale(ctx context.Context, sale models.SalesRecord) error {
	if err := e.repo.AppendRows(ctx, SalesRange, SaleRows(sale)); err != nil {
		return fmt.Errorf("journal sale %s: %w", sale.ID, err)
	}
	return nil
}

// AppendDailyReport adds the report as one row of the Reports sheet.
func (e *Exporter) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	if err := e.repo.WriteRow(ctx, ReportsRange, ReportRow(report)); err != nil {
		return fmt.Errorf("export daily report: %w", err)
	}
	return nil
}

// ExportInventory overwrites the Inventory sheet with the current products.
func (e *Exporter) ExportInventory(ctx context.Context, products []models.Product) error {
	if err := e.repo.ReplaceRange(ctx, InventoryRange, InventoryRows(products)); err != nil {
		return fmt.Errorf("export inventory: %w", err)
	}
	return nil
}

// SaleRows renders date, time, sale id, product id, name, quantity, unit price and line total.
func SaleRows(sale models.SalesRecord) [][]interface{} {
	ts := sale.Timestamp.UTC()
	rows := make([][]interface{}, 0, len(sale.Items))
	for _, item := range sale.Items {
		rows = append(rows, []interface{}{
			ts.Format(dateLayout),
			ts.Format(timeLayout),
			sale.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Total,
		})
	}
	return rows
}

// ReportRow flattens a daily report.
func ReportRow(r models.DailyReport) []interface{} {
	return []interface{}{
		r.Date.UTC().Format(dateLayout),
		r.ProductCount,
		r.TotalUnits,
		r.InventoryValue,
		r.SalesCount,
		r.UnitsSold,
		r.Revenue,
		r.CriticalAlerts,
		r.LowAlerts,
		r.ReorderAlerts,
		r.DeadStockCount,
		r.DeadStockValue,
	}
}

// InventoryRows renders a header row followed by one row per product.
func InventoryRows(products []models.Product) [][]interface{} {
	rows := make([][]interface{}, 0, len(products)+1)
	rows = append(rows, inventoryHeader)
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.ProductID,
			p.Name,
			p.CategoryMain,
			p.CategorySub,
			p.Quantity,
			p.Price,
			p.Value(),
			p.ReorderPoint,
			p.PreferredSupplierID,
			p.RequiresBatchTracking,
		})
	}
	return rows
}
