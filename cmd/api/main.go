package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiprono/dukapos-api/internal/application/service"
	"github.com/kiprono/dukapos-api/internal/config"
	"github.com/kiprono/dukapos-api/internal/domain/sale"
	"github.com/kiprono/dukapos-api/internal/infrastructure/database"
	"github.com/kiprono/dukapos-api/internal/infrastructure/repository"
	"github.com/kiprono/dukapos-api/internal/presentation/http/handler"
	"github.com/kiprono/dukapos-api/internal/presentation/http/routes"
	"github.com/kiprono/dukapos-api/pkg/logger"
	"github.com/kiprono/dukapos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedAdminUser(db, &cfg.App, zapLogger); err != nil {
		zapLogger.Warn("failed to seed admin user", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	parkedRepo := repository.NewParkedSaleRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// The configured tax policy maps category slugs to rates.
	taxPolicy := sale.NewTaxPolicy(cfg.Tax.StandardRate, cfg.Tax.TaxableCategories)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	customerService := service.NewCustomerService(customerRepo)
	saleService := service.NewSaleService(saleRepo)
	sessionService := service.NewSessionService(productRepo, customerRepo, saleRepo, parkedRepo, taxPolicy, zapLogger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Session:  handler.NewSessionHandler(sessionService),
		Product:  handler.NewProductHandler(catalogService),
		Customer: handler.NewCustomerHandler(customerService),
		Sale:     handler.NewSaleHandler(saleService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          zapLogger,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	zapLogger.Info("starting server",
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
