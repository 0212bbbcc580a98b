package app

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/catalog"
	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
	"github.com/mamadbah2/stockroom/internal/service/inventory"
	"github.com/mamadbah2/stockroom/internal/service/supplier"
)

// App holds the managers backed by the configured data files.
type App struct {
	Store     *formats.Store
	Inventory *inventory.Service
	Suppliers *supplier.Service

	storage config.StorageConfig
	logger  *zap.Logger
}

// Open builds the managers and loads whichever data files already exist.
func Open(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}

	categories, err := catalog.Load(cfg.Storage.CategoriesPath(), logger.Named("catalog"))
	if err != nil {
		return nil, err
	}

	store := formats.NewStore(cfg.Storage.DataDir, cfg.Storage.BackupDir, logger.Named("repo.formats"))
	inv, err := inventory.NewService(store, categories, inventory.Settings{
		Thresholds: models.AlertThresholds{
			Critical: cfg.Alerts.CriticalStock,
			Low:      cfg.Alerts.LowStock,
			Reorder:  cfg.Alerts.ReorderPoint,
		},
		TaxRate: cfg.Sales.TaxRate,
	}, logger.Named("svc.inventory"))
	if err != nil {
		return nil, err
	}

	a := &App{
		Store:     store,
		Inventory: inv,
		Suppliers: supplier.NewService(store, logger.Named("svc.supplier")),
		storage:   cfg.Storage,
		logger:    logger,
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) load() error {
	steps := []struct {
		name string
		load func(formats.Format, string) error
	}{
		{a.storage.InventoryFile, a.Inventory.LoadFrom},
		{a.storage.SalesFile, a.Inventory.LoadSales},
		{a.storage.SuppliersFile, a.Suppliers.LoadFrom},
	}
	for _, step := range steps {
		if step.name == "" {
			continue
		}
		if _, err := os.Stat(a.Store.Path(step.name)); errors.Is(err, os.ErrNotExist) {
			a.logger.Info("data file missing, starting empty", zap.String("file", step.name))
			continue
		}
		format, err := formats.FormatFromPath(step.name)
		if err != nil {
			return err
		}
		if err := step.load(format, step.name); err != nil {
			return fmt.Errorf("load %s: %w", step.name, err)
		}
	}
	return nil
}

// Files lists the configured data file names, relative to the store.
func (a *App) Files() []string {
	var names []string
	for _, name := range []string{a.storage.InventoryFile, a.storage.SalesFile, a.storage.SuppliersFile} {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Save writes every collection back to its configured file.
func (a *App) Save() error {
	steps := []struct {
		name string
		save func(formats.Format, string) error
	}{
		{a.storage.InventoryFile, a.Inventory.SaveTo},
		{a.storage.SalesFile, a.Inventory.SaveSales},
		{a.storage.SuppliersFile, a.Suppliers.SaveTo},
	}
	var errs []error
	for _, step := range steps {
		if step.name == "" {
			continue
		}
		format, err := formats.FormatFromPath(step.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := step.save(format, step.name); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", step.name, err))
		}
	}
	return errors.Join(errs...)
}
