package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// ListProducts returns every product, or those matching ?q= or ?main=&sub=.
func (h *Handler) ListProducts(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var products []models.Product
	switch {
	case c.Query("main") != "":
		products = h.inventory.FilterByCategory(c.Query("main"), c.Query("sub"))
	default:
		products = h.inventory.Search(c.Query("q"))
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.inventory.GetByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct adds a product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := h.inventory.AddProduct(p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusCreated, created)
}

// UpdateProduct applies a partial update.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	updated, err := h.inventory.EditProduct(c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusOK, updated)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.inventory.DeleteProduct(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

// AdjustStock applies a signed stock delta.
func (h *Handler) AdjustStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	updated, err := h.inventory.UpdateStock(c.Param("id"), req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusOK, updated)
}

// AddBatch attaches a batch to a batch-tracked product.
func (h *Handler) AddBatch(c *gin.Context) {
	var b models.Batch
	if err := c.ShouldBindJSON(&b); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	batch, err := h.inventory.AddBatch(c.Param("id"), b)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusCreated, batch)
}

type batchQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateBatch sets a batch quantity.
func (h *Handler) UpdateBatch(c *gin.Context) {
	var req batchQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.inventory.UpdateBatchQuantity(c.Param("id"), c.Param("batch"), req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusOK, p)
}

// RemoveBatch deletes a batch.
func (h *Handler) RemoveBatch(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.inventory.RemoveBatch(c.Param("id"), c.Param("batch"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	h.refreshGauges()
	c.JSON(http.StatusOK, p)
}

// ExpiringBatches lists batches expiring within ?days= (default 30).
func (h *Handler) ExpiringBatches(c *gin.Context) {
	days, err := intQuery(c, "days", 30)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	expiring := h.inventory.ExpiringBatches(time.Duration(days) * 24 * time.Hour)
	if expiring == nil {
		expiring = []models.ExpiringBatch{}
	}
	c.JSON(http.StatusOK, expiring)
}

// Alerts returns the current stock alerts, most severe first.
func (h *Handler) Alerts(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	alerts := h.inventory.CheckAlerts()
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

// Stats summarises the inventory.
func (h *Handler) Stats(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, h.inventory.Stats())
}

// Categories returns the category tree.
func (h *Handler) Categories(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, h.inventory.Categories().Tree())
}
