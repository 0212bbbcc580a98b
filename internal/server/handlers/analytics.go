package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockroom/internal/service/analytics"
)

// snapshot copies the collections under the lock so the computations below run
// without holding it.
func (h *Handler) snapshot() analytics.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return analytics.NewSnapshot(h.inventory.All(), h.inventory.Sales(), h.now())
}

// Report builds an analytics report. ?kind= selects the sections, ?format=text
// renders it as plain text.
func (h *Handler) Report(c *gin.Context) {
	kind, err := analytics.ParseReportKind(c.Query("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	days, err := intQuery(c, "days", h.analytics.TurnoverDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	report, err := h.snapshot().BuildReport(analytics.ReportOptions{
		Kind:          kind,
		Days:          days,
		DeadStockDays: h.analytics.DeadStockDays,
		ForecastDays:  h.analytics.ForecastDays,
		Categories:    categories,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, analytics.RenderText(report))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Turnover returns the turnover of every product over ?days=.
func (h *Handler) Turnover(c *gin.Context) {
	days, err := intQuery(c, "days", h.analytics.TurnoverDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot().Turnover(days))
}

// DeadStock lists stock without a sale in ?days=.
func (h *Handler) DeadStock(c *gin.Context) {
	days, err := intQuery(c, "days", h.analytics.DeadStockDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dead := h.snapshot().DeadStock(days)
	if dead == nil {
		dead = []analytics.DeadStock{}
	}
	c.JSON(http.StatusOK, dead)
}

// Forecast returns the demand forecast of every product, or of ?product_id=.
func (h *Handler) Forecast(c *gin.Context) {
	days, err := intQuery(c, "days", h.analytics.ForecastDays)
	if err != nil {
		h.respondError(c, err)
		return
	}

	snap := h.snapshot()
	if id := c.Query("product_id"); id != "" {
		for _, p := range snap.Products {
			if p.ProductID == id {
				c.JSON(http.StatusOK, snap.PredictDemand(p, days))
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "product " + id + " not found"})
		return
	}
	c.JSON(http.StatusOK, snap.Forecasts(days))
}

// DailyTrend returns one point per day over ?days=.
func (h *Handler) DailyTrend(c *gin.Context) {
	days, err := intQuery(c, "days", h.analytics.TurnoverDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot().DailyTrend(days))
}

// HourlyPattern returns the 24 hourly buckets over ?days= (default 7).
func (h *Handler) HourlyPattern(c *gin.Context) {
	days, err := intQuery(c, "days", 7)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot().HourlyPattern(days))
}
