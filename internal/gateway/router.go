// Package gateway assembles the terminal's HTTP surface.
package gateway

import (
	"net/http"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/gateway/handlers"
	"feedmart-pos/internal/gateway/middleware"
	"feedmart-pos/internal/telemetry"
	"feedmart-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	User      *handlers.UserHTTPHandler
	Inventory *handlers.InventoryHTTPHandler
	POS       *handlers.POSHTTPHandler
	Closure   *handlers.ClosureHTTPHandler
}

type RouterConfig struct {
	Issuer      *utils.TokenIssuer
	Metrics     *telemetry.Metrics
	MetricsPath bool
	RateLimit   gin.HandlerFunc
	CORSOrigins []string
	// Health reports readiness of the terminal's dependencies.
	Health func() (bool, map[string]string)
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", h.User.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(cfg.Issuer))
	{
		products := protected.Group("/products")
		{
			products.GET("", h.Inventory.ListProducts)
			products.GET("/:id", h.Inventory.GetProduct)
		}

		cartGroup := protected.Group("/cart")
		{
			cartGroup.GET("", h.POS.GetCart)
			cartGroup.DELETE("", h.POS.ClearCart)
			cartGroup.POST("/items", h.POS.AddItem)
			cartGroup.PATCH("/items/:product_id/:unit", h.POS.UpdateQuantity)
			cartGroup.PUT("/items/:product_id/:unit/discount", h.POS.SetLineDiscount)
			cartGroup.DELETE("/items/:product_id/:unit", h.POS.RemoveLine)
			cartGroup.DELETE("/products/:product_id", h.POS.RemoveProduct)
			cartGroup.PUT("/discount", h.POS.SetOrderDiscount)
			cartGroup.PUT("/payment", h.POS.SetPayment)
			cartGroup.GET("/preview", h.POS.PreviewCheckout)
		}

		protected.POST("/checkout", h.POS.Checkout)

		receipts := protected.Group("/receipts")
		receipts.Use(middleware.RequireCapability(access.ViewJournal))
		{
			receipts.GET("", h.POS.ListReceipts)
			receipts.GET("/:id", h.POS.GetReceipt)
		}

		closureGroup := protected.Group("/closure")
		closureGroup.Use(middleware.RequireCapability(access.CloseDay))
		{
			closureGroup.GET("/summary", h.Closure.GetSummary)
			closureGroup.POST("/variance", h.Closure.ComputeVariance)
		}
	}

	r.GET("/health", healthCheckHandler(cfg.Health))
	if cfg.MetricsPath {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}

func healthCheckHandler(check func() (bool, map[string]string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthy, deps := true, map[string]string{}
		if check != nil {
			healthy, deps = check()
		}

		status := "healthy"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
