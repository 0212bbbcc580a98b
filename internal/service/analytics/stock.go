package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// Confidence labels a demand forecast by how much history backs it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNoData Confidence = "NO_DATA"

	highConfidenceDays   = 30
	mediumConfidenceDays = 14
	safetyFactor         = 2.0
)

// Turnover is the sell-through of one product over a trailing window.
type Turnover struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	CurrentStock   int     `json:"current_stock"`
	UnitsSold      int     `json:"units_sold"`
	Revenue        float64 `json:"revenue"`
	TurnoverRate   float64 `json:"turnover_rate"`
	DaysToStockout float64 `json:"days_to_stockout"`
}

// DeadStock is a product with stock on hand and no sale in the window.
type DeadStock struct {
	ProductID string     `json:"product_id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Value     float64    `json:"value"`
	LastSold  *time.Time `json:"last_sold,omitempty"`
}

// Forecast is the projected demand of one product.
type Forecast struct {
	ProductID        string     `json:"product_id"`
	Name             string     `json:"name"`
	CurrentStock     int        `json:"current_stock"`
	ForecastDays     int        `json:"forecast_days"`
	SaleDays         int        `json:"sale_days"`
	AvgDailySales    float64    `json:"avg_daily_sales"`
	StdDev           float64    `json:"std_dev"`
	PredictedNeed    float64    `json:"predicted_need"`
	SafetyStock      float64    `json:"safety_stock"`
	RecommendedOrder float64    `json:"recommended_order"`
	Confidence       Confidence `json:"confidence"`
}

// Turnover reports every product's units sold, revenue, turnover rate and days
// to stock-out over the trailing days, in product order.
func (s Snapshot) Turnover(days int) []Turnover {
	days = orDefault(days, DefaultTurnoverDays)
	sales := s.salesIn(s.trailing(days))

	out := make([]Turnover, 0, len(s.Products))
	for _, p := range s.Products {
		t := Turnover{ProductID: p.ProductID, Name: p.Name, CurrentStock: p.Quantity}
		for _, sale := range sales {
			t.UnitsSold += sale.Units(p.ProductID)
			t.Revenue += sale.Revenue(p.ProductID)
		}
		stock := float64(p.Quantity)
		t.TurnoverRate = float64(t.UnitsSold) / (stock + Epsilon)
		t.DaysToStockout = stock / (float64(t.UnitsSold)/float64(days) + Epsilon)
		out = append(out, t)
	}
	return out
}

// DeadStock lists products with stock on hand and no sale in the trailing days,
// largest tied-up value first.
func (s Snapshot) DeadStock(days int) []DeadStock {
	window := s.trailing(orDefault(days, DefaultDeadStockDays))

	lastSold := map[string]time.Time{}
	for _, sale := range s.Sales {
		for _, item := range sale.Items {
			if last, ok := lastSold[item.ProductID]; !ok || sale.Timestamp.After(last) {
				lastSold[item.ProductID] = sale.Timestamp
			}
		}
	}

	var out []DeadStock
	for _, p := range s.Products {
		if p.Quantity <= 0 {
			continue
		}
		last, sold := lastSold[p.ProductID]
		if sold && !last.Before(window.Start) {
			continue
		}
		entry := DeadStock{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Value:     p.Value(),
		}
		if sold {
			entry.LastSold = &last
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// PredictDemand forecasts the need of product over forecastDays from its whole
// sales history grouped by calendar day. SafetyStock is two sample standard
// deviations, an approximation of a 95% one-sided bound that assumes normally
// distributed daily demand.
func (s Snapshot) PredictDemand(product models.Product, forecastDays int) Forecast {
	forecastDays = orDefault(forecastDays, DefaultForecastDays)
	f := Forecast{
		ProductID:    product.ProductID,
		Name:         product.Name,
		CurrentStock: product.Quantity,
		ForecastDays: forecastDays,
		Confidence:   ConfidenceNoData,
	}

	perDay := map[string]int{}
	total := 0
	for _, sale := range s.Sales {
		units := sale.Units(product.ProductID)
		if units == 0 {
			continue
		}
		perDay[s.local(sale.Timestamp).Format(dateLayout)] += units
		total += units
	}
	if len(perDay) == 0 {
		return f
	}

	f.SaleDays = len(perDay)
	f.AvgDailySales = float64(total) / float64(f.SaleDays)
	f.StdDev = sampleStdDev(perDay, f.AvgDailySales)
	f.PredictedNeed = f.AvgDailySales * float64(forecastDays)
	f.SafetyStock = safetyFactor * f.StdDev
	f.RecommendedOrder = math.Max(0, f.PredictedNeed+f.SafetyStock-float64(product.Quantity))

	switch {
	case f.SaleDays >= highConfidenceDays:
		f.Confidence = ConfidenceHigh
	case f.SaleDays >= mediumConfidenceDays:
		f.Confidence = ConfidenceMedium
	default:
		f.Confidence = ConfidenceLow
	}
	return f
}

// Forecasts runs PredictDemand for every product.
func (s Snapshot) Forecasts(forecastDays int) []Forecast {
	out := make([]Forecast, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, s.PredictDemand(p, forecastDays))
	}
	return out
}

func sampleStdDev(perDay map[string]int, mean float64) float64 {
	if len(perDay) < 2 {
		return 0
	}
	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var sum float64
	for _, day := range days {
		d := float64(perDay[day]) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(perDay)-1))
}
