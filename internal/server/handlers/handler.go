package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/service/commands"
	"github.com/mamadbah2/stockroom/internal/service/inventory"
	"github.com/mamadbah2/stockroom/internal/service/supplier"
)

// Handler adapts the managers to HTTP. The managers are not safe for
// concurrent use, so every request holds mu while it touches them.
type Handler struct {
	mu         sync.Locker
	inventory  *inventory.Service
	suppliers  *supplier.Service
	dispatcher commands.Dispatcher
	metrics    *metrics.Metrics
	analytics  config.AnalyticsConfig
	persist    func() error
	logger     *zap.Logger
	now        func() time.Time
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Dispatcher commands.Dispatcher
	Metrics    *metrics.Metrics
	Analytics  config.AnalyticsConfig
	// Persist is called after every successful mutation.
	Persist func() error
}

// New constructs the HTTP handler adapter. mu must be the lock shared with
// every other goroutine that uses the managers.
func New(mu sync.Locker, inv *inventory.Service, sup *supplier.Service, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mu:         mu,
		inventory:  inv,
		suppliers:  sup,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		analytics:  opts.Analytics,
		persist:    opts.Persist,
		logger:     logger,
		now:        time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// saved runs the persist hook; a failure is logged and does not undo the change.
// Callers hold mu.
func (h *Handler) saved() {
	if h.persist == nil {
		return
	}
	if err := h.persist(); err != nil {
		h.logger.Error("persist after mutation failed", zap.Error(err))
	}
}

// refreshGauges updates the stock gauges. Callers hold mu.
func (h *Handler) refreshGauges() {
	if h.metrics != nil {
		h.metrics.ObserveStats(h.inventory.Stats())
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, commands.ErrUnsupportedCommand):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// intQuery reads a positive integer query parameter, falling back when absent.
func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, models.InvalidField(key, "must be a positive integer, got %q", raw)
	}
	return v, nil
}
