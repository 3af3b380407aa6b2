package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opdexport/quotation-api/docs"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/config"
	"github.com/opdexport/quotation-api/internal/database"
	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/opdexport/quotation-api/internal/http/handler"
	"github.com/opdexport/quotation-api/internal/http/middleware"
	"github.com/opdexport/quotation-api/internal/http/router"
	"github.com/opdexport/quotation-api/internal/jobs"
	"github.com/opdexport/quotation-api/internal/logger"
	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/internal/service"
	"go.uber.org/zap"
)

// @title Opdexport Quotation API
// @version 1.0
// @description Multi-tenant quotation API for company representation, catalog and quotation document management

// @contact.name API Support
// @contact.email support@opdexport.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "quotation-api-staging.opdexport.io"
	case "production":
		docs.SwaggerInfo.Host = "api.opdexport.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	representationRepo := repository.NewRepresentationRepository(db)
	requestRepo := repository.NewRepresentationRequestRepository(db)
	sequenceRepo := repository.NewDocumentSequenceRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Exchange rate resolution chain: admin override, cache, primary
	// provider, fallback provider, static default
	rateCache := exchange.NewRateCache(cfg.Exchange.CacheTTLDuration(), exchange.SystemClock())
	primaryProvider := exchange.NewAwesomeAPIProvider(cfg.Exchange.PrimaryURL, cfg.Exchange.TimeoutDuration())
	fallbackProvider := exchange.NewOpenERAPIProvider(cfg.Exchange.FallbackURL, cfg.Exchange.TimeoutDuration())
	resolver := exchange.NewResolver(settingRepo, rateCache, primaryProvider, fallbackProvider, cfg.Exchange.DefaultRate, log)

	// Initialize services
	documentNumberService := service.NewDocumentNumberService(sequenceRepo, log)
	representationService := service.NewRepresentationService(representationRepo, requestRepo, companyRepo, sellerRepo, log)
	companyService := service.NewCompanyService(companyRepo, log)
	sellerService := service.NewSellerService(sellerRepo, log)
	clientService := service.NewClientService(clientRepo, log)
	productService := service.NewProductService(productRepo, companyRepo, representationService, log)
	quotationService := service.NewQuotationService(
		quotationRepo,
		companyRepo,
		sellerRepo,
		clientRepo,
		productRepo,
		documentNumberService,
		representationService,
		resolver,
		log,
	)
	exchangeService := service.NewExchangeService(resolver, settingRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(log)
	companyHandler := handler.NewCompanyHandler(companyService, representationService, log)
	sellerHandler := handler.NewSellerHandler(sellerService, representationService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	productHandler := handler.NewProductHandler(productService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)
	representationHandler := handler.NewRepresentationHandler(representationService, log)
	exchangeHandler := handler.NewExchangeHandler(exchangeService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		companyHandler,
		sellerHandler,
		clientHandler,
		productHandler,
		quotationHandler,
		representationHandler,
		exchangeHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterRateWarmJob(scheduler, resolver, log, cfg.Exchange.WarmSchedule); err != nil {
		log.Error("Failed to register rate warm job", zap.Error(err))
	} else {
		scheduler.Start()
		log.Info("Scheduler started with rate warm job",
			zap.String("cron_expr", cfg.Exchange.WarmSchedule),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		schedulerCtx := scheduler.Stop()
		<-schedulerCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
