package reporting

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	repo "github.com/mamadbah2/stockroom/internal/repository/sheets"
	"github.com/mamadbah2/stockroom/internal/service/analytics"
)

const dateLayout = "2006-01-02"

// Source is the read side of the inventory the reports are built from.
type Source interface {
	All() []models.Product
	Sales() []models.SalesRecord
	Stats() models.InventoryStats
	CheckAlerts() []models.Alert
}

// Service builds the end-of-day stock health report and summarises the sales
// journal kept in the export sheet.
type Service struct {
	source        Source
	repo          repo.Repository
	deadStockDays int
	logger        *zap.Logger
	now           func() time.Time
}

// NewService wires a new reporting service instance. repository may be nil when
// the sheet export is not configured.
func NewService(source Source, repository repo.Repository, deadStockDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deadStockDays <= 0 {
		deadStockDays = analytics.DefaultDeadStockDays
	}
	return &Service{
		source:        source,
		repo:          repository,
		deadStockDays: deadStockDays,
		logger:        logger,
		now:           time.Now,
	}
}

// DailyReport snapshots stock levels, today's sales, active alerts and dead stock.
func (s *Service) DailyReport() models.DailyReport {
	now := s.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := s.source.Stats()
	alerts := s.source.CheckAlerts()
	snap := analytics.NewSnapshot(s.source.All(), s.source.Sales(), now)
	today := snap.Summary(analytics.Window{Start: day, End: now})

	report := models.DailyReport{
		Date:           day,
		ProductCount:   stats.ProductCount,
		TotalUnits:     stats.TotalUnits,
		InventoryValue: stats.InventoryValue,
		SalesCount:     today.Transactions,
		UnitsSold:      today.UnitsSold,
		Revenue:        round2(today.TotalRevenue),
		Alerts:         alerts,
		CreatedAt:      now,
	}
	for _, a := range alerts {
		switch a.Level {
		case models.AlertCritical:
			report.CriticalAlerts++
		case models.AlertLow:
			report.LowAlerts++
		case models.AlertReorder:
			report.ReorderAlerts++
		}
	}
	for _, d := range snap.DeadStock(s.deadStockDays) {
		report.DeadStockCount++
		report.DeadStockValue += d.Value
	}
	report.DeadStockValue = round2(report.DeadStockValue)

	s.logger.Info("daily report built",
		zap.String("date", day.Format(dateLayout)),
		zap.Int("sales", report.SalesCount),
		zap.Int("critical_alerts", report.CriticalAlerts),
	)
	return report
}

// JournalSummary totals the sale lines journaled in the sheet between start and
// end and returns a one-line summary.
func (s *Service) JournalSummary(ctx context.Context, start, end time.Time) (string, error) {
	if s.repo == nil {
		return "", fmt.Errorf("sales journal: sheets export is not configured")
	}
	rows, err := s.repo.ReadRange(ctx, repo.SalesRange)
	if err != nil {
		return "", fmt.Errorf("load sales journal: %w", err)
	}

	sales := map[string]struct{}{}
	var units int
	var revenue float64

	for _, row := range rows {
		if len(row) < 8 {
			continue
		}

		dateValue, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip journal row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if dateValue.Before(truncate(start)) || dateValue.After(end) {
			continue
		}

		qty, err := parseInt(row[5])
		if err != nil {
			s.logger.Debug("skip journal row with invalid qty", zap.Any("value", row[5]), zap.Error(err))
			continue
		}
		total, err := parseFloat(row[7])
		if err != nil {
			s.logger.Debug("skip journal row with invalid total", zap.Any("value", row[7]), zap.Error(err))
			continue
		}

		sales[fmt.Sprint(row[2])] = struct{}{}
		units += qty
		revenue += total
	}

	if len(sales) == 0 {
		return fmt.Sprintf("Sales journal (%s-%s): no sales journaled.", start.Format(dateLayout), end.Format(dateLayout)), nil
	}

	return fmt.Sprintf("Sales journal (%s-%s): %d units across %d sales, %.2f before tax.",
		start.Format(dateLayout), end.Format(dateLayout), units, len(sales), round2(revenue)), nil
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}

func parseFloat(value interface{}) (float64, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
