package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. m may be nil.
func New(h *handlers.Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger, m))

	r.GET("/healthz", h.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	products := r.Group("/products")
	products.GET("", h.ListProducts)
	products.POST("", h.CreateProduct)
	products.GET("/:id", h.GetProduct)
	products.PATCH("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
	products.POST("/:id/stock", h.AdjustStock)
	products.POST("/:id/batches", h.AddBatch)
	products.PATCH("/:id/batches/:batch", h.UpdateBatch)
	products.DELETE("/:id/batches/:batch", h.RemoveBatch)

	r.GET("/batches/expiring", h.ExpiringBatches)
	r.GET("/alerts", h.Alerts)
	r.GET("/stats", h.Stats)
	r.GET("/categories", h.Categories)

	r.GET("/sales", h.ListSales)
	r.POST("/sales", h.RecordSale)

	a := r.Group("/analytics")
	a.GET("/report", h.Report)
	a.GET("/turnover", h.Turnover)
	a.GET("/dead-stock", h.DeadStock)
	a.GET("/forecast", h.Forecast)
	a.GET("/daily", h.DailyTrend)
	a.GET("/hourly", h.HourlyPattern)

	suppliers := r.Group("/suppliers")
	suppliers.GET("", h.ListSuppliers)
	suppliers.POST("", h.CreateSupplier)
	suppliers.GET("/:id", h.GetSupplier)
	suppliers.PATCH("/:id", h.UpdateSupplier)
	suppliers.DELETE("/:id", h.DeleteSupplier)
	suppliers.GET("/:id/performance", h.SupplierPerformance)

	orders := r.Group("/purchase-orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:id", h.GetOrder)
	orders.POST("/:id/status", h.UpdateOrderStatus)
	orders.POST("/:id/payment", h.UpdateOrderPayment)

	r.POST("/commands", h.ExecCommand)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		if m != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), elapsed)
		}

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", elapsed),
			zap.String("client_ip", c.ClientIP()))
	}
}
