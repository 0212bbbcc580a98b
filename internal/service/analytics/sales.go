package analytics

import (
	"sort"
	"strings"
)

const topN = 10

// Summary aggregates the sales of a window.
type Summary struct {
	Window       Window  `json:"window"`
	Transactions int     `json:"total_transactions"`
	UnitsSold    int     `json:"units_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalTax     float64 `json:"total_tax"`
	AverageSale  float64 `json:"average_sale"`
}

// ProductSales is the performance of one product.
type ProductSales struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	AveragePrice float64 `json:"average_price"`
}

// ProductPerformance ranks products by revenue.
type ProductPerformance struct {
	Products      []ProductSales `json:"products"`
	TopSellers    []ProductSales `json:"top_sellers"`
	WorstSellers  []ProductSales `json:"worst_sellers"`
	TotalProducts int            `json:"total_products"`
}

// CategorySales is the performance of one main category.
type CategorySales struct {
	Category           string  `json:"category"`
	Revenue            float64 `json:"revenue"`
	QuantitySold       int     `json:"quantity_sold"`
	Transactions       int     `json:"transactions"`
	ProductCount       int     `json:"product_count"`
	AverageTransaction float64 `json:"average_transaction"`
}

// CategoryPerformance ranks categories by revenue.
type CategoryPerformance struct {
	Categories      []CategorySales `json:"categories"`
	TopCategory     *CategorySales  `json:"top_category,omitempty"`
	TotalCategories int             `json:"total_categories"`
}

// DayPoint is one calendar day of the daily trend.
type DayPoint struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	ItemsSold    int     `json:"items_sold"`
}

// DailyTrend has one point per calendar day of its window, zero-filled.
type DailyTrend struct {
	Days                []DayPoint `json:"daily_data"`
	TotalRevenue        float64    `json:"total_revenue"`
	TotalTransactions   int        `json:"total_transactions"`
	AverageDailyRevenue float64    `json:"average_daily_revenue"`
}

// HourPoint is one hour of the day.
type HourPoint struct {
	Hour               int     `json:"hour"`
	Revenue            float64 `json:"revenue"`
	Transactions       int     `json:"transactions"`
	AverageTransaction float64 `json:"average_transaction"`
}

// HourlyPattern always has 24 points, hour 0 first.
type HourlyPattern struct {
	Hours     []HourPoint `json:"hourly_data"`
	PeakHour  HourPoint   `json:"peak_hour"`
	QuietHour HourPoint   `json:"quiet_hour"`
}

// Summary totals revenue, tax and transactions over w.
func (s Snapshot) Summary(w Window) Summary {
	sum := Summary{Window: w}
	for _, sale := range s.salesIn(w) {
		sum.Transactions++
		sum.UnitsSold += sale.Units("")
		sum.TotalRevenue += sale.Total
		sum.TotalTax += sale.Tax
	}
	if sum.Transactions > 0 {
		sum.AverageSale = sum.TotalRevenue / float64(sum.Transactions)
	}
	return sum
}

// ProductPerformance groups the sale lines of w by product.
func (s Snapshot) ProductPerformance(w Window) ProductPerformance {
	byID := map[string]*ProductSales{}
	var order []string
	for _, sale := range s.salesIn(w) {
		for _, item := range sale.Items {
			ps, ok := byID[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Name: item.ProductName}
				byID[item.ProductID] = ps
				order = append(order, item.ProductID)
			}
			ps.QuantitySold += item.Quantity
			ps.Revenue += item.Total
			ps.Transactions++
		}
	}

	products := make([]ProductSales, 0, len(order))
	for _, id := range order {
		ps := *byID[id]
		if ps.QuantitySold > 0 {
			ps.AveragePrice = ps.Revenue / float64(ps.QuantitySold)
		}
		products = append(products, ps)
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Revenue > products[j].Revenue })

	perf := ProductPerformance{Products: products, TotalProducts: len(products)}
	perf.TopSellers = products[:min(topN, len(products))]
	perf.WorstSellers = products[max(0, len(products)-topN):]
	return perf
}

// CategoryPerformance groups the sale lines of w by main category. Every name in
// categories is reported even without sales.
func (s Snapshot) CategoryPerformance(w Window, categories []string) CategoryPerformance {
	stats := map[string]*CategorySales{}
	products := map[string]map[string]struct{}{}
	entry := func(name string) *CategorySales {
		if cs, ok := stats[name]; ok {
			return cs
		}
		cs := &CategorySales{Category: name}
		stats[name] = cs
		products[name] = map[string]struct{}{}
		return cs
	}
	for _, name := range categories {
		entry(name)
	}

	for _, sale := range s.salesIn(w) {
		for _, item := range sale.Items {
			name := strings.TrimSpace(item.Category)
			if name == "" {
				name = uncategorized
			}
			cs := entry(name)
			cs.Revenue += item.Total
			cs.QuantitySold += item.Quantity
			cs.Transactions++
			products[name][item.ProductID] = struct{}{}
		}
	}

	out := make([]CategorySales, 0, len(stats))
	for name, cs := range stats {
		cs.ProductCount = len(products[name])
		if cs.Transactions > 0 {
			cs.AverageTransaction = cs.Revenue / float64(cs.Transactions)
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})

	perf := CategoryPerformance{Categories: out, TotalCategories: len(out)}
	if len(out) > 0 {
		top := out[0]
		perf.TopCategory = &top
	}
	return perf
}

// DailyTrend reports each calendar day from now-days to now inclusive.
func (s Snapshot) DailyTrend(days int) DailyTrend {
	days = orDefault(days, DefaultTurnoverDays)
	w := s.trailing(days)

	var trend DailyTrend
	index := map[string]int{}
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(trend.Days)
		trend.Days = append(trend.Days, DayPoint{Date: key})
	}

	for _, sale := range s.salesIn(w) {
		i, ok := index[s.local(sale.Timestamp).Format(dateLayout)]
		if !ok {
			continue
		}
		point := &trend.Days[i]
		point.Revenue += sale.Total
		point.Transactions++
		point.ItemsSold += sale.Units("")
		trend.TotalRevenue += sale.Total
		trend.TotalTransactions++
	}
	trend.AverageDailyRevenue = trend.TotalRevenue / float64(len(trend.Days))
	return trend
}

// HourlyPattern buckets the sales of the trailing days by hour of day.
func (s Snapshot) HourlyPattern(days int) HourlyPattern {
	days = orDefault(days, 7)
	pattern := HourlyPattern{Hours: make([]HourPoint, 24)}
	for h := range pattern.Hours {
		pattern.Hours[h].Hour = h
	}

	for _, sale := range s.salesIn(s.trailing(days)) {
		point := &pattern.Hours[s.local(sale.Timestamp).Hour()]
		point.Revenue += sale.Total
		point.Transactions++
	}

	peak, quiet := 0, 0
	for h := range pattern.Hours {
		point := &pattern.Hours[h]
		if point.Transactions > 0 {
			point.AverageTransaction = point.Revenue / float64(point.Transactions)
		}
		if point.Revenue > pattern.Hours[peak].Revenue {
			peak = h
		}
		if point.Revenue < pattern.Hours[quiet].Revenue {
			quiet = h
		}
	}
	pattern.PeakHour = pattern.Hours[peak]
	pattern.QuietHour = pattern.Hours[quiet]
	return pattern
}
