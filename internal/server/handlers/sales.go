package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/inventory"
)

type checkoutRequest struct {
	Items []inventory.SaleLine `json:"items"`
}

// RecordSale checks out a basket. A line without unit_price sells at list price.
func (h *Handler) RecordSale(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, line := range req.Items {
		if line.UnitPrice != 0 {
			continue
		}
		p, err := h.inventory.GetByID(line.ProductID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		req.Items[i].UnitPrice = p.Price
	}

	sale, err := h.inventory.Checkout(req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSale(sale)
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusCreated, sale)
}

// ListSales returns the sales history.
func (h *Handler) ListSales(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sales := h.inventory.Sales()
	if sales == nil {
		sales = []models.SalesRecord{}
	}
	c.JSON(http.StatusOK, sales)
}
