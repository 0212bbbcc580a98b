package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/service/alerts"
)

// Inventory is the part of the inventory service the jobs read or persist.
type Inventory interface {
	All() []models.Product
	Stats() models.InventoryStats
	CheckAlerts() []models.Alert
	ExpiringBatches(window time.Duration) []models.ExpiringBatch
}

// Backuper copies data files into the backup directory.
type Backuper interface {
	Backup(name string) (string, error)
}

// AlertNotifier delivers alert digests.
type AlertNotifier interface {
	Dispatch(ctx context.Context, alerts []models.Alert, expiring []models.ExpiringBatch) (alerts.Digest, error)
}

// ReportBuilder produces the end-of-day report.
type ReportBuilder interface {
	DailyReport() models.DailyReport
}

// ReportArchive stores daily reports.
type ReportArchive interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// ReportExporter publishes reports and the inventory snapshot.
type ReportExporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
	ExportInventory(ctx context.Context, products []models.Product) error
}

// Jobs holds the work run on a schedule. Lock guards every read of the
// inventory and is released before any network call. Save writes every data
// file in its configured format; Files names them for the backup copy.
// Archive, Exporter and Metrics are optional.
type Jobs struct {
	Lock      sync.Locker
	Inventory Inventory
	Store     Backuper
	Notifier  AlertNotifier
	Reports   ReportBuilder
	Archive   ReportArchive
	Exporter  ReportExporter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	Save         func() error
	Files        []string
	ExpiryWindow time.Duration
}

// CheckAlerts classifies stock and expiring batches and dispatches a digest.
func (j *Jobs) CheckAlerts(ctx context.Context) error {
	j.Lock.Lock()
	current := j.Inventory.CheckAlerts()
	expiring := j.Inventory.ExpiringBatches(j.ExpiryWindow)
	stats := j.Inventory.Stats()
	j.Lock.Unlock()

	if j.Metrics != nil {
		j.Metrics.ObserveStats(stats)
	}

	digest, err := j.Notifier.Dispatch(ctx, current, expiring)
	if !digest.Empty() && j.Metrics != nil {
		j.Metrics.ObserveDelivery(err)
	}
	if err != nil {
		return fmt.Errorf("dispatch alerts: %w", err)
	}
	j.logger().Info("alert check done", zap.Int("alerts", len(current)), zap.Int("expiring", len(expiring)))
	return nil
}

// Backup saves the data files and copies them into the backup directory.
func (j *Jobs) Backup(context.Context) error {
	j.Lock.Lock()
	err := j.Save()
	j.Lock.Unlock()
	if err != nil {
		return fmt.Errorf("save before backup: %w", err)
	}

	for _, name := range j.Files {
		path, err := j.Store.Backup(name)
		if err != nil {
			return err
		}
		j.logger().Info("backup written", zap.String("backup", path))
	}
	return nil
}

// DailyReport builds the day's report and hands it to the archive and the
// sheet export. Both are attempted; their failures are joined.
func (j *Jobs) DailyReport(ctx context.Context) error {
	j.Lock.Lock()
	report := j.Reports.DailyReport()
	products := j.Inventory.All()
	j.Lock.Unlock()

	var errs []error
	if j.Archive != nil {
		if err := j.Archive.SaveDailyReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("archive report: %w", err))
		}
	}
	if j.Exporter != nil {
		if err := j.Exporter.AppendDailyReport(ctx, report); err != nil {
			errs = append(errs, err)
		}
		if err := j.Exporter.ExportInventory(ctx, products); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (j *Jobs) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}
