package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiprono/dukapos-api/internal/config"
	domainRepo "github.com/kiprono/dukapos-api/internal/domain/repository"
	"github.com/kiprono/dukapos-api/internal/presentation/http/handler"
	"github.com/kiprono/dukapos-api/internal/presentation/http/middleware"
	"github.com/kiprono/dukapos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Session  *handler.SessionHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Sale     *handler.SaleHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerSessionRoutes(protected, h, deps)
		registerCatalogRoutes(protected, h)
		registerCustomerRoutes(protected, h)
		registerSaleRoutes(protected, h)
	}

	return router
}

func registerSessionRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sessions := protected.Group("/sessions")
	{
		sessions.POST("", h.Session.Open)
		sessions.GET("/:id", h.Session.Get)
		sessions.DELETE("/:id", h.Session.Close)

		sessions.POST("/:id/items", h.Session.AddItem)
		sessions.DELETE("/:id/items", h.Session.ClearItems)
		sessions.PUT("/:id/items/:productId", h.Session.SetQuantity)
		sessions.DELETE("/:id/items/:productId", h.Session.RemoveItem)

		sessions.PUT("/:id/customer", h.Session.SetCustomer)
		sessions.PUT("/:id/note", h.Session.SetNote)
		sessions.PUT("/:id/discount", h.Session.SetDiscount)

		sessions.POST("/:id/checkout", h.Session.Checkout)
		sessions.POST("/:id/payments", h.Session.AddPayment)
		sessions.PUT("/:id/payments/:index", h.Session.UpdatePayment)
		sessions.DELETE("/:id/payments/:index", h.Session.RemovePayment)
		sessions.POST("/:id/cancel", h.Session.Cancel)

		// Commit mutates stock; a network retry must replay, not re-run.
		sessions.POST("/:id/commit",
			middleware.IdempotencyRequired(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
			h.Session.Commit)

		sessions.POST("/:id/park", h.Session.Park)
		sessions.POST("/:id/resume/:parkedId", h.Session.Resume)
	}

	protected.GET("/parked-sales", h.Session.ListParked)
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", h.Product.ListCategories)
		categories.POST("", h.Product.CreateCategory)
		categories.DELETE("/:id", h.Product.DeleteCategory)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers) {
	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/receipt/:receiptNo", h.Sale.GetByReceiptNo)
	}
}
