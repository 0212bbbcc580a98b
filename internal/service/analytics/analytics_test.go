package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

var now = time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)

func sale(at time.Time, items ...models.SaleItem) models.SalesRecord {
	r := models.SalesRecord{ID: "SAL-" + at.Format("0102150405"), Items: items, Timestamp: at}
	for _, item := range items {
		r.Subtotal += item.Total
	}
	r.Tax = r.Subtotal * 0.1
	r.Total = r.Subtotal + r.Tax
	return r
}

func line(id, category string, qty int, price float64) models.SaleItem {
	return models.SaleItem{
		ProductID:   id,
		ProductName: "name-" + id,
		Category:    category,
		Quantity:    qty,
		UnitPrice:   price,
		Total:       float64(qty) * price,
	}
}

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestTurnover(t *testing.T) {
	products := []models.Product{
		{ProductID: "A", Name: "Widget", Quantity: 10, Price: 3},
		{ProductID: "B", Name: "Idle", Quantity: 0},
	}
	sales := []models.SalesRecord{
		sale(daysAgo(1), line("A", "Tools", 12, 3)),
		sale(daysAgo(20), line("A", "Tools", 8, 3)),
		sale(daysAgo(45), line("A", "Tools", 100, 3)),
	}
	snap := NewSnapshot(products, sales, now)

	got := snap.Turnover(30)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, 20, a.UnitsSold)
	assert.InDelta(t, 60.0, a.Revenue, 1e-9)
	assert.InDelta(t, 1.980, a.TurnoverRate, 1e-3)
	assert.InDelta(t, 13.04, a.DaysToStockout, 1e-2)

	b := got[1]
	assert.Equal(t, 0, b.UnitsSold)
	assert.Equal(t, 0.0, b.TurnoverRate)
	assert.Equal(t, 0.0, b.DaysToStockout)
}

func TestDeadStock(t *testing.T) {
	products := []models.Product{
		{ProductID: "NEVER", Name: "Never sold", Quantity: 5, Price: 4},
		{ProductID: "OLD", Name: "Sold long ago", Quantity: 2, Price: 50},
		{ProductID: "RECENT", Name: "Selling", Quantity: 9, Price: 1},
		{ProductID: "EMPTY", Name: "Sold out", Quantity: 0, Price: 1},
	}
	sales := []models.SalesRecord{
		sale(daysAgo(120), line("OLD", "", 1, 50)),
		sale(daysAgo(3), line("RECENT", "", 1, 1)),
	}
	snap := NewSnapshot(products, sales, now)

	dead := snap.DeadStock(0)
	require.Len(t, dead, 2)

	assert.Equal(t, "OLD", dead[0].ProductID)
	assert.Equal(t, 100.0, dead[0].Value)
	require.NotNil(t, dead[0].LastSold)
	assert.Equal(t, daysAgo(120), *dead[0].LastSold)

	assert.Equal(t, "NEVER", dead[1].ProductID)
	assert.Equal(t, 5, dead[1].Quantity)
	assert.Equal(t, 20.0, dead[1].Value)
	assert.Nil(t, dead[1].LastSold)

	assert.Len(t, snap.DeadStock(200), 1, "a wider window sees the old sale")
}

func TestPredictDemand(t *testing.T) {
	product := models.Product{ProductID: "A", Name: "Widget", Quantity: 5}
	sales := []models.SalesRecord{
		sale(daysAgo(2), line("A", "", 1, 1)),
		sale(daysAgo(2).Add(time.Hour), line("A", "", 1, 1), line("B", "", 7, 1)),
		sale(daysAgo(1), line("A", "", 4, 1)),
		sale(daysAgo(1), line("B", "", 3, 1)),
	}
	f := NewSnapshot(nil, sales, now).PredictDemand(product, 10)

	assert.Equal(t, 2, f.SaleDays)
	assert.InDelta(t, 3.0, f.AvgDailySales, 1e-9)
	assert.InDelta(t, 1.41421, f.StdDev, 1e-4)
	assert.InDelta(t, 30.0, f.PredictedNeed, 1e-9)
	assert.InDelta(t, 2.82843, f.SafetyStock, 1e-4)
	assert.InDelta(t, 27.82843, f.RecommendedOrder, 1e-4)
	assert.Equal(t, ConfidenceLow, f.Confidence)
}

func TestPredictDemandIsRepeatable(t *testing.T) {
	product := models.Product{ProductID: "A", Quantity: 3}
	var sales []models.SalesRecord
	for d := 1; d <= 40; d++ {
		sales = append(sales, sale(daysAgo(d), line("A", "", d%7+1, 0.7)))
	}
	snap := NewSnapshot(nil, sales, now)

	first := snap.PredictDemand(product, 30)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, snap.PredictDemand(product, 30))
	}
}

func TestBucketsFollowSnapshotLocation(t *testing.T) {
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	// 2024-05-09 01:00 at +05:00 is 2024-05-08 20:00 UTC.
	shifted := time.Date(2024, 5, 9, 1, 0, 0, 0, plus5)
	sales := []models.SalesRecord{
		sale(shifted, line("A", "", 2, 5)),
		sale(time.Date(2024, 5, 8, 23, 30, 0, 0, time.UTC), line("A", "", 1, 5)),
	}
	snap := NewSnapshot(nil, sales, now)

	trend := snap.DailyTrend(7)
	assert.Equal(t, "2024-05-08", trend.Days[5].Date)
	assert.Equal(t, 2, trend.Days[5].Transactions)
	assert.Zero(t, trend.Days[6].Transactions)

	pattern := snap.HourlyPattern(7)
	assert.Equal(t, 1, pattern.Hours[20].Transactions)
	assert.Zero(t, pattern.Hours[1].Transactions)

	f := snap.PredictDemand(models.Product{ProductID: "A"}, 10)
	assert.Equal(t, 1, f.SaleDays)
	assert.InDelta(t, 3.0, f.AvgDailySales, 1e-9)
}

func TestPredictDemandNeverOrdersBelowZero(t *testing.T) {
	product := models.Product{ProductID: "A", Quantity: 500}
	sales := []models.SalesRecord{sale(daysAgo(1), line("A", "", 2, 1))}

	f := NewSnapshot(nil, sales, now).PredictDemand(product, 30)
	assert.Equal(t, 0.0, f.StdDev, "one data point has no spread")
	assert.Equal(t, 0.0, f.RecommendedOrder)
}

func TestPredictDemandConfidence(t *testing.T) {
	tests := []struct {
		name string
		days int
		want Confidence
	}{
		{name: "no sales", days: 0, want: ConfidenceNoData},
		{name: "thirteen days", days: 13, want: ConfidenceLow},
		{name: "fourteen days", days: 14, want: ConfidenceMedium},
		{name: "twenty nine days", days: 29, want: ConfidenceMedium},
		{name: "thirty days", days: 30, want: ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sales []models.SalesRecord
			for d := 0; d < tt.days; d++ {
				sales = append(sales, sale(daysAgo(d+1), line("A", "", 2, 1)))
			}
			product := models.Product{ProductID: "A", Quantity: 7}
			f := NewSnapshot(nil, sales, now).PredictDemand(product, 30)

			assert.Equal(t, tt.want, f.Confidence)
			assert.Equal(t, tt.days, f.SaleDays)
			assert.Equal(t, 7, f.CurrentStock)
			if tt.days == 0 {
				assert.Zero(t, f.AvgDailySales)
				assert.Zero(t, f.StdDev)
				assert.Zero(t, f.PredictedNeed)
				assert.Zero(t, f.SafetyStock)
				assert.Zero(t, f.RecommendedOrder)
			}
		})
	}
}

func TestComputationsDoNotMutateInputs(t *testing.T) {
	products := []models.Product{{ProductID: "A", Name: "Widget", Quantity: 10, Price: 3}}
	sales := []models.SalesRecord{sale(daysAgo(1), line("A", "Tools", 2, 3))}
	snap := NewSnapshot(products, sales, now)

	first, err := snap.BuildReport(ReportOptions{})
	require.NoError(t, err)
	second, err := snap.BuildReport(ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 10, products[0].Quantity)
	assert.Len(t, sales[0].Items, 1)
}

func TestSummary(t *testing.T) {
	sales := []models.SalesRecord{
		sale(daysAgo(1), line("A", "", 2, 5)),
		sale(daysAgo(2), line("B", "", 1, 10)),
		sale(daysAgo(40), line("B", "", 1, 10)),
	}
	snap := NewSnapshot(nil, sales, now)

	sum := snap.Summary(Trailing(now, 30))
	assert.Equal(t, 2, sum.Transactions)
	assert.Equal(t, 3, sum.UnitsSold)
	assert.InDelta(t, 22.0, sum.TotalRevenue, 1e-9)
	assert.InDelta(t, 2.0, sum.TotalTax, 1e-9)
	assert.InDelta(t, 11.0, sum.AverageSale, 1e-9)

	empty := NewSnapshot(nil, nil, now).Summary(Trailing(now, 30))
	assert.Zero(t, empty.AverageSale)
}

func TestProductPerformance(t *testing.T) {
	sales := []models.SalesRecord{
		sale(daysAgo(1), line("A", "", 2, 5), line("B", "", 1, 30)),
		sale(daysAgo(2), line("A", "", 3, 5)),
	}
	perf := NewSnapshot(nil, sales, now).ProductPerformance(Trailing(now, 30))

	require.Equal(t, 2, perf.TotalProducts)
	assert.Equal(t, "B", perf.Products[0].ProductID)
	assert.Equal(t, "A", perf.Products[1].ProductID)
	assert.Equal(t, 5, perf.Products[1].QuantitySold)
	assert.Equal(t, 2, perf.Products[1].Transactions)
	assert.InDelta(t, 5.0, perf.Products[1].AveragePrice, 1e-9)
	assert.Len(t, perf.TopSellers, 2)
	assert.Len(t, perf.WorstSellers, 2)
}

func TestCategoryPerformanceIncludesQuietCategories(t *testing.T) {
	sales := []models.SalesRecord{
		sale(daysAgo(1), line("A", "Electronics", 1, 100), line("B", "", 2, 1)),
		sale(daysAgo(2), line("C", "Electronics", 1, 50)),
	}
	perf := NewSnapshot(nil, sales, now).CategoryPerformance(Trailing(now, 30), []string{"Electronics", "Books & Media"})

	require.Equal(t, 3, perf.TotalCategories)
	assert.Equal(t, "Electronics", perf.Categories[0].Category)
	assert.Equal(t, 2, perf.Categories[0].ProductCount)
	assert.InDelta(t, 75.0, perf.Categories[0].AverageTransaction, 1e-9)
	assert.Equal(t, uncategorized, perf.Categories[1].Category)
	assert.Equal(t, "Books & Media", perf.Categories[2].Category)
	assert.Zero(t, perf.Categories[2].Transactions)
	require.NotNil(t, perf.TopCategory)
	assert.Equal(t, "Electronics", perf.TopCategory.Category)
}

func TestDailyTrendIsZeroFilled(t *testing.T) {
	sales := []models.SalesRecord{
		sale(daysAgo(2), line("A", "", 2, 5)),
		sale(daysAgo(2).Add(-time.Hour), line("A", "", 1, 5)),
		sale(daysAgo(30), line("A", "", 1, 5)),
	}
	trend := NewSnapshot(nil, sales, now).DailyTrend(7)

	require.Len(t, trend.Days, 8)
	assert.Equal(t, "2024-05-03", trend.Days[0].Date)
	assert.Equal(t, "2024-05-10", trend.Days[7].Date)

	busy := trend.Days[5]
	assert.Equal(t, "2024-05-08", busy.Date)
	assert.Equal(t, 2, busy.Transactions)
	assert.Equal(t, 3, busy.ItemsSold)
	for i, day := range trend.Days {
		if i != 5 {
			assert.Zero(t, day.Transactions, day.Date)
		}
	}
	assert.Equal(t, 2, trend.TotalTransactions)
	assert.InDelta(t, trend.TotalRevenue/8, trend.AverageDailyRevenue, 1e-9)
}

func TestHourlyPattern(t *testing.T) {
	at := time.Date(2024, 5, 9, 9, 15, 0, 0, time.UTC)
	sales := []models.SalesRecord{
		sale(at, line("A", "", 1, 10)),
		sale(at.Add(10*time.Minute), line("A", "", 1, 30)),
		sale(at.Add(8*time.Hour), line("A", "", 1, 5)),
	}
	pattern := NewSnapshot(nil, sales, now).HourlyPattern(7)

	require.Len(t, pattern.Hours, 24)
	assert.Equal(t, 9, pattern.PeakHour.Hour)
	assert.Equal(t, 2, pattern.PeakHour.Transactions)
	assert.InDelta(t, 22.0, pattern.PeakHour.AverageTransaction, 1e-9)
	assert.Equal(t, 0, pattern.QuietHour.Hour)
	assert.Equal(t, 1, pattern.Hours[17].Transactions)
}

func TestBuildReportSections(t *testing.T) {
	products := []models.Product{{ProductID: "A", Name: "Widget", Quantity: 3, Price: 2}}
	sales := []models.SalesRecord{sale(daysAgo(1), line("A", "Tools", 2, 2))}
	snap := NewSnapshot(products, sales, now)

	tests := []struct {
		kind                          ReportKind
		products, categories, details bool
	}{
		{kind: ReportComprehensive, products: true, categories: true, details: true},
		{kind: ReportSummary},
		{kind: ReportProduct, products: true},
		{kind: ReportCategory, categories: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			report, err := snap.BuildReport(ReportOptions{Kind: tt.kind, Days: 7})
			require.NoError(t, err)

			assert.Equal(t, tt.kind, report.Kind)
			assert.Equal(t, now, report.GeneratedAt)
			assert.Equal(t, 1, report.Summary.Transactions)
			assert.Equal(t, tt.products, report.Products != nil)
			assert.Equal(t, tt.categories, report.Categories != nil)
			assert.Equal(t, tt.details, report.Daily != nil)
			assert.Equal(t, tt.details, report.Hourly != nil)
			assert.Equal(t, tt.details, report.Forecasts != nil)
		})
	}

	_, err := snap.BuildReport(ReportOptions{Kind: "weekly"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRenderText(t *testing.T) {
	products := []models.Product{
		{ProductID: "A", Name: "Widget", Quantity: 3, Price: 2},
		{ProductID: "D", Name: "Dusty", Quantity: 4, Price: 5},
	}
	sales := []models.SalesRecord{sale(daysAgo(1), line("A", "Tools", 2, 2))}
	report, err := NewSnapshot(products, sales, now).BuildReport(ReportOptions{})
	require.NoError(t, err)

	text := RenderText(report)
	assert.Contains(t, text, "SALES ANALYTICS REPORT")
	assert.Contains(t, text, "Date Range: 2024-04-10 to 2024-05-10")
	assert.Contains(t, text, "Total Revenue: $4.40")
	assert.Contains(t, text, "1. name-A - $4.00 (2 units)")
	assert.Contains(t, text, "D Dusty - 4 units, $20.00 tied up")
	assert.Contains(t, text, "RECOMMENDED ORDERS")
}
