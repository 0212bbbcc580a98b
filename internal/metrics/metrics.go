package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// Metrics holds every collector exported by the process. Each instance owns its
// registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesTotal   prometheus.Counter
	UnitsSold    prometheus.Counter
	RevenueTotal prometheus.Counter

	ProductCount   prometheus.Gauge
	StockUnits     prometheus.Gauge
	InventoryValue prometheus.Gauge
	ActiveAlerts   *prometheus.GaugeVec

	AlertDeliveries *prometheus.CounterVec
	JobRuns         *prometheus.CounterVec
}

// New registers the collectors under cfg.Prefix.
func New(cfg config.MetricsConfig) *Metrics {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "stockroom"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		SalesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_sales_total",
			Help: "Total number of recorded sales",
		}),
		UnitsSold: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_units_sold_total",
			Help: "Total number of units sold",
		}),
		RevenueTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_revenue_total",
			Help: "Total revenue of recorded sales, tax included",
		}),

		ProductCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_products",
			Help: "Number of products in the inventory",
		}),
		StockUnits: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_stock_units",
			Help: "Units on hand across all products",
		}),
		InventoryValue: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_inventory_value",
			Help: "Stock value at list price",
		}),
		ActiveAlerts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_active_alerts",
				Help: "Products currently in each alert tier",
			},
			[]string{"level"},
		),

		AlertDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_alert_deliveries_total",
				Help: "Alert digests handed to transports",
			},
			[]string{"status"},
		),
		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_job_runs_total",
				Help: "Scheduled job executions",
			},
			[]string{"job", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// ObserveSale counts a recorded sale.
func (m *Metrics) ObserveSale(sale models.SalesRecord) {
	m.SalesTotal.Inc()
	m.UnitsSold.Add(float64(sale.Units("")))
	m.RevenueTotal.Add(sale.Total)
}

// ObserveStats refreshes the stock gauges from an inventory snapshot.
func (m *Metrics) ObserveStats(stats models.InventoryStats) {
	m.ProductCount.Set(float64(stats.ProductCount))
	m.StockUnits.Set(float64(stats.TotalUnits))
	m.InventoryValue.Set(stats.InventoryValue)
	for _, level := range []models.AlertLevel{models.AlertCritical, models.AlertLow, models.AlertReorder} {
		m.ActiveAlerts.WithLabelValues(string(level)).Set(float64(stats.AlertCounts[level]))
	}
}

// ObserveDelivery counts one alert dispatch round.
func (m *Metrics) ObserveDelivery(err error) {
	m.AlertDeliveries.WithLabelValues(status(err)).Inc()
}

// ObserveJob counts one scheduled job execution.
func (m *Metrics) ObserveJob(job string, err error) {
	m.JobRuns.WithLabelValues(job, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
