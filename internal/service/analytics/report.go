package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// ReportKind selects the sections of a report.
type ReportKind string

const (
	ReportComprehensive ReportKind = "comprehensive"
	ReportSummary       ReportKind = "summary"
	ReportProduct       ReportKind = "product"
	ReportCategory      ReportKind = "category"
)

// ParseReportKind validates a report kind; empty means comprehensive.
func ParseReportKind(value string) (ReportKind, error) {
	switch kind := ReportKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case "":
		return ReportComprehensive, nil
	case ReportComprehensive, ReportSummary, ReportProduct, ReportCategory:
		return kind, nil
	default:
		return "", models.InvalidField("report_type", "unknown report type %q", value)
	}
}

// ReportOptions configures BuildReport. Zero values fall back to the defaults.
type ReportOptions struct {
	Kind          ReportKind
	Days          int
	DeadStockDays int
	ForecastDays  int
	Categories    []string
}

// Report is the structure handed to exporters and renderers. Sections not
// selected by Kind are nil.
type Report struct {
	Kind        ReportKind           `json:"report_type"`
	GeneratedAt time.Time            `json:"generated_at"`
	Window      Window               `json:"date_range"`
	Summary     Summary              `json:"summary"`
	Products    *ProductPerformance  `json:"product_performance,omitempty"`
	Categories  *CategoryPerformance `json:"category_performance,omitempty"`
	Daily       *DailyTrend          `json:"daily_trend,omitempty"`
	Hourly      *HourlyPattern       `json:"hourly_pattern,omitempty"`
	Turnover    []Turnover           `json:"turnover,omitempty"`
	DeadStock   []DeadStock          `json:"dead_stock,omitempty"`
	Forecasts   []Forecast           `json:"forecasts,omitempty"`
}

// BuildReport assembles the sections selected by opts.Kind.
func (s Snapshot) BuildReport(opts ReportOptions) (Report, error) {
	kind, err := ParseReportKind(string(opts.Kind))
	if err != nil {
		return Report{}, err
	}
	days := orDefault(opts.Days, DefaultTurnoverDays)
	w := s.trailing(days)

	report := Report{
		Kind:        kind,
		GeneratedAt: s.Now,
		Window:      w,
		Summary:     s.Summary(w),
	}
	if kind == ReportComprehensive || kind == ReportProduct {
		perf := s.ProductPerformance(w)
		report.Products = &perf
	}
	if kind == ReportComprehensive || kind == ReportCategory {
		perf := s.CategoryPerformance(w, opts.Categories)
		report.Categories = &perf
	}
	if kind == ReportComprehensive {
		daily := s.DailyTrend(days)
		hourly := s.HourlyPattern(days)
		report.Daily = &daily
		report.Hourly = &hourly
		report.Turnover = s.Turnover(days)
		report.DeadStock = s.DeadStock(opts.DeadStockDays)
		report.Forecasts = s.Forecasts(opts.ForecastDays)
	}
	return report, nil
}

// RenderText formats a report for terminals and plain-text attachments.
func RenderText(r Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "SALES ANALYTICS REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Date Range: %s to %s\n\n", r.Window.Start.Format(dateLayout), r.Window.End.Format(dateLayout))

	section(&b, "SUMMARY")
	fmt.Fprintf(&b, "Total Revenue: $%.2f\n", r.Summary.TotalRevenue)
	fmt.Fprintf(&b, "Total Tax: $%.2f\n", r.Summary.TotalTax)
	fmt.Fprintf(&b, "Total Transactions: %d\n", r.Summary.Transactions)
	fmt.Fprintf(&b, "Units Sold: %d\n", r.Summary.UnitsSold)
	fmt.Fprintf(&b, "Average Sale: $%.2f\n\n", r.Summary.AverageSale)

	if r.Products != nil && len(r.Products.TopSellers) > 0 {
		section(&b, "TOP SELLING PRODUCTS")
		for i, p := range r.Products.TopSellers[:min(5, len(r.Products.TopSellers))] {
			fmt.Fprintf(&b, "%d. %s - $%.2f (%d units)\n", i+1, p.Name, p.Revenue, p.QuantitySold)
		}
		b.WriteString("\n")
	}

	if r.Categories != nil && r.Categories.TotalCategories > 0 {
		section(&b, "CATEGORIES")
		for _, c := range r.Categories.Categories {
			fmt.Fprintf(&b, "%s - $%.2f (%d units, %d products)\n", c.Category, c.Revenue, c.QuantitySold, c.ProductCount)
		}
		b.WriteString("\n")
	}

	if r.Hourly != nil && r.Hourly.PeakHour.Transactions > 0 {
		section(&b, "PEAK HOUR")
		fmt.Fprintf(&b, "%02d:00 - $%.2f across %d sales\n\n", r.Hourly.PeakHour.Hour, r.Hourly.PeakHour.Revenue, r.Hourly.PeakHour.Transactions)
	}

	if len(r.DeadStock) > 0 {
		section(&b, "DEAD STOCK")
		for _, d := range r.DeadStock {
			fmt.Fprintf(&b, "%s %s - %d units, $%.2f tied up\n", d.ProductID, d.Name, d.Quantity, d.Value)
		}
		b.WriteString("\n")
	}

	var reorder []Forecast
	for _, f := range r.Forecasts {
		if f.RecommendedOrder > 0 {
			reorder = append(reorder, f)
		}
	}
	if len(reorder) > 0 {
		section(&b, "RECOMMENDED ORDERS")
		for _, f := range reorder {
			fmt.Fprintf(&b, "%s %s - order %.0f (confidence %s)\n", f.ProductID, f.Name, f.RecommendedOrder, f.Confidence)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func section(b *strings.Builder, title string) {
	fmt.Fprintln(b, title)
	fmt.Fprintln(b, strings.Repeat("-", len(title)))
}
