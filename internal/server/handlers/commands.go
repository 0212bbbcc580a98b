package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

type commandRequest struct {
	Text string `json:"text"`
}

// ExecCommand runs a quick POS command such as "/sale PRD-1a2b3c4d 2".
func (h *Handler) ExecCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if h.dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands are disabled"})
		return
	}

	cmd := models.ParseCommand(req.Text)

	h.mu.Lock()
	defer h.mu.Unlock()

	reply, err := h.dispatcher.HandleCommand(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("command executed", zap.String("command", string(cmd.Type)))
	if cmd.Type == models.CommandSale || cmd.Type == models.CommandRestock {
		h.saved()
		h.refreshGauges()
	}
	c.JSON(http.StatusOK, reply)
}
