package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/app"
	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// seedWorkspace points the configuration at a temp directory holding two products.
func seedWorkspace(t *testing.T) (string, models.Product) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("INVENTORY_FILE", "inventory.json")
	t.Setenv("SALES_FILE", "sales_history.json")
	t.Setenv("SUPPLIERS_FILE", "suppliers.json")
	t.Setenv("BACKUP_DIR", "backups")
	t.Setenv("SALES_TAX_RATE", "0.1")

	cfg, err := config.Load("")
	require.NoError(t, err)
	a, err := app.Open(cfg, nil)
	require.NoError(t, err)

	tea, err := a.Inventory.AddProduct(models.Product{Name: "Tea", Quantity: 20, Price: 2.5, CategoryMain: "Food & Beverages", CategorySub: "Beverages"})
	require.NoError(t, err)
	_, err = a.Inventory.AddProduct(models.Product{Name: "Milk", Quantity: 2, Price: 1.2})
	require.NoError(t, err)
	require.NoError(t, a.Save())
	return dir, tea
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExecSalePersists(t *testing.T) {
	_, tea := seedWorkspace(t)

	out, err := execute(t, "exec", "/sale", tea.ProductID, "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Sold 2 x Tea @ 2.50. Total 5.50 (tax 0.50).")

	cfg, err := config.Load("")
	require.NoError(t, err)
	reopened, err := app.Open(cfg, nil)
	require.NoError(t, err)
	saved, err := reopened.Inventory.GetByID(tea.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 18, saved.Quantity)
	assert.Len(t, reopened.Inventory.Sales(), 1)
}

func TestExecRejectsBadArguments(t *testing.T) {
	_, tea := seedWorkspace(t)

	_, err := execute(t, "exec", "/sale", tea.ProductID, "lots")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAlertsCommandListsLowStock(t *testing.T) {
	seedWorkspace(t)

	out, err := execute(t, "alerts")
	require.NoError(t, err)
	assert.Contains(t, out, "Milk")
	assert.Contains(t, out, string(models.AlertCritical))
	assert.NotContains(t, out, "Tea (")
}

func TestReportCommand(t *testing.T) {
	_, tea := seedWorkspace(t)
	_, err := execute(t, "exec", "/sale", tea.ProductID, "1")
	require.NoError(t, err)

	out, err := execute(t, "report", "--kind", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "SALES ANALYTICS REPORT")
	assert.Contains(t, out, "Total Transactions: 1")

	out, err = execute(t, "report", "--kind", "summary", "--json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	_, err = execute(t, "report", "--kind", "weekly")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	dir, _ := seedWorkspace(t)
	source := filepath.Join(dir, "inventory.json")
	target := filepath.Join(dir, "inventory.csv")

	out, err := execute(t, "convert", source, target)
	require.NoError(t, err)
	assert.Contains(t, out, "Converted")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tea")

	_, err = execute(t, "convert", source, filepath.Join(dir, "inventory.xml"))
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestExportPOSAndBackup(t *testing.T) {
	dir, tea := seedWorkspace(t)

	_, err := execute(t, "export-pos", "pos.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "pos.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), tea.ProductID+"|Tea|")

	out, err := execute(t, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up inventory.json")
	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
}

func TestCategoriesCommand(t *testing.T) {
	seedWorkspace(t)

	out, err := execute(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Beverages\n")
	assert.Contains(t, out, "  Beverages\n")
}
