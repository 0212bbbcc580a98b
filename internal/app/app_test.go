package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{
			DataDir:       dir,
			InventoryFile: "inventory.json",
			SuppliersFile: "suppliers.yaml",
			SalesFile:     "sales_history.json",
			BackupDir:     "backups",
		},
		Alerts: config.AlertConfig{CriticalStock: 5, LowStock: 10, ReorderPoint: 15},
		Sales:  config.SalesConfig{TaxRate: 0.2},
	}
}

func TestOpenStartsEmptyWithoutFiles(t *testing.T) {
	a, err := Open(testConfig(t.TempDir()), nil)
	require.NoError(t, err)
	assert.Empty(t, a.Inventory.All())
	assert.Empty(t, a.Suppliers.Suppliers())
}

func TestSaveThenOpenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	a, err := Open(cfg, nil)
	require.NoError(t, err)
	tea, err := a.Inventory.AddProduct(models.Product{Name: "Tea", Quantity: 10, Price: 2})
	require.NoError(t, err)
	_, err = a.Inventory.RecordSale(tea.ProductID, 1, 2)
	require.NoError(t, err)
	_, err = a.Suppliers.AddSupplier(models.Supplier{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, a.Save())

	assert.FileExists(t, filepath.Join(dir, "suppliers.yaml"))

	reopened, err := Open(cfg, nil)
	require.NoError(t, err)
	products := reopened.Inventory.All()
	require.Len(t, products, 1)
	assert.Equal(t, 9, products[0].Quantity)
	require.Len(t, reopened.Inventory.Sales(), 1)
	assert.Equal(t, 2.4, reopened.Inventory.Sales()[0].Total)

	added, err := reopened.Suppliers.AddSupplier(models.Supplier{Name: "Globex"})
	require.NoError(t, err)
	assert.Equal(t, "SUP0002", added.ID)
}

func TestOpenFailsOnCorruptInventory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.json"), []byte("{oops"), 0o644))

	_, err := Open(testConfig(dir), nil)
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestOpenRejectsBadThresholds(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Alerts.LowStock = 2

	_, err := Open(cfg, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOpenRejectsSingleTableSuppliersFile(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Storage.SuppliersFile = "suppliers.csv"

	_, err := Open(cfg, nil)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestSaveKeepsEachFileInItsFormat(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Storage.InventoryFile = "inventory.csv"
	cfg.Storage.SuppliersFile = "suppliers.db"

	a, err := Open(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory.csv", "sales_history.json", "suppliers.db"}, a.Files())

	tea, err := a.Inventory.AddProduct(models.Product{Name: "Tea", Quantity: 10, Price: 2})
	require.NoError(t, err)
	sup, err := a.Suppliers.AddSupplier(models.Supplier{Name: "Acme"})
	require.NoError(t, err)
	_, err = a.Suppliers.CreatePurchaseOrder(sup.ID, []models.POItem{{ProductID: tea.ProductID, Quantity: 5, UnitPrice: 1.5}}, nil, "")
	require.NoError(t, err)
	require.NoError(t, a.Save())

	reopened, err := Open(cfg, nil)
	require.NoError(t, err)
	require.Len(t, reopened.Inventory.All(), 1)
	assert.Len(t, reopened.Suppliers.Orders(), 1)
}
