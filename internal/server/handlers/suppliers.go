package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/supplier"
)

// ListSuppliers returns every supplier, or those matching ?q=.
func (h *Handler) ListSuppliers(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []models.Supplier
	if q := c.Query("q"); q != "" {
		out = h.suppliers.SearchSuppliers(q)
	} else {
		out = h.suppliers.Suppliers()
	}
	if out == nil {
		out = []models.Supplier{}
	}
	c.JSON(http.StatusOK, out)
}

// GetSupplier returns one supplier.
func (h *Handler) GetSupplier(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.suppliers.GetSupplier(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// CreateSupplier registers a supplier.
func (h *Handler) CreateSupplier(c *gin.Context) {
	var s models.Supplier
	if err := c.ShouldBindJSON(&s); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := h.suppliers.AddSupplier(s)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.JSON(http.StatusCreated, created)
}

// UpdateSupplier applies the fields present in the body.
func (h *Handler) UpdateSupplier(c *gin.Context) {
	var patch supplier.SupplierPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	updated, err := h.suppliers.UpdateSupplier(c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.JSON(http.StatusOK, updated)
}

// DeleteSupplier removes a supplier; its orders keep the dangling reference.
func (h *Handler) DeleteSupplier(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.suppliers.DeleteSupplier(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.Status(http.StatusNoContent)
}

// SupplierPerformance scores a supplier's deliveries.
func (h *Handler) SupplierPerformance(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	perf, err := h.suppliers.Performance(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

type purchaseOrderRequest struct {
	SupplierID       string          `json:"supplier_id"`
	Items            []models.POItem `json:"items"`
	ExpectedDelivery *time.Time      `json:"expected_delivery"`
	Notes            string          `json:"notes"`
}

// ListOrders returns every order, only pending ones with ?pending=true, or one
// supplier's history with ?supplier_id=.
func (h *Handler) ListOrders(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []models.PurchaseOrder
	switch {
	case c.Query("pending") == "true":
		out = h.suppliers.PendingOrders()
	case c.Query("supplier_id") != "":
		out = h.suppliers.OrderHistory(c.Query("supplier_id"))
	default:
		out = h.suppliers.Orders()
	}
	if out == nil {
		out = []models.PurchaseOrder{}
	}
	c.JSON(http.StatusOK, out)
}

// GetOrder returns one purchase order.
func (h *Handler) GetOrder(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	po, err := h.suppliers.GetOrder(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// CreateOrder places a purchase order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req purchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	po, err := h.suppliers.CreatePurchaseOrder(req.SupplierID, req.Items, req.ExpectedDelivery, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.JSON(http.StatusCreated, po)
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateOrderStatus moves an order along its lifecycle.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	po, err := h.suppliers.UpdatePOStatus(c.Param("id"), req.Status, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.JSON(http.StatusOK, po)
}

// UpdateOrderPayment records the payment status.
func (h *Handler) UpdateOrderPayment(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	po, err := h.suppliers.UpdatePaymentStatus(c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saved()
	c.JSON(http.StatusOK, po)
}
