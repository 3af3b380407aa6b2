package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/config"
	"github.com/opdexport/quotation-api/internal/database"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/http/handler"
	"github.com/opdexport/quotation-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/opdexport/quotation-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                   *config.Config
	logger                *zap.Logger
	db                    *gorm.DB
	authMiddleware        *auth.Middleware
	rateLimiter           *middleware.RateLimiter
	authHandler           *handler.AuthHandler
	companyHandler        *handler.CompanyHandler
	sellerHandler         *handler.SellerHandler
	clientHandler         *handler.ClientHandler
	productHandler        *handler.ProductHandler
	quotationHandler      *handler.QuotationHandler
	representationHandler *handler.RepresentationHandler
	exchangeHandler       *handler.ExchangeHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	sellerHandler *handler.SellerHandler,
	clientHandler *handler.ClientHandler,
	productHandler *handler.ProductHandler,
	quotationHandler *handler.QuotationHandler,
	representationHandler *handler.RepresentationHandler,
	exchangeHandler *handler.ExchangeHandler,
) *Router {
	return &Router{
		cfg:                   cfg,
		logger:                logger,
		db:                    db,
		authMiddleware:        authMiddleware,
		rateLimiter:           rateLimiter,
		authHandler:           authHandler,
		companyHandler:        companyHandler,
		sellerHandler:         sellerHandler,
		clientHandler:         clientHandler,
		productHandler:        productHandler,
		quotationHandler:      quotationHandler,
		representationHandler: representationHandler,
		exchangeHandler:       exchangeHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Companies
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", rt.companyHandler.List)
				r.With(rt.authMiddleware.RequireAdmin).Post("/", rt.companyHandler.Create)
				r.Get("/{id}", rt.companyHandler.Get)
				r.With(rt.authMiddleware.RequireAdmin).Put("/{id}", rt.companyHandler.Update)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.companyHandler.Delete)
				r.Get("/{id}/products", rt.productHandler.ListByCompany)
				r.With(rt.authMiddleware.RequireAdmin).Get("/{id}/representations", rt.companyHandler.Representations)
			})

			// Sellers
			r.Route("/sellers", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.sellerHandler.List)
				r.Post("/", rt.sellerHandler.Create)
				r.Get("/{id}", rt.sellerHandler.Get)
				r.Put("/{id}", rt.sellerHandler.Update)
				r.Patch("/{id}/active", rt.sellerHandler.SetActive)
				r.Delete("/{id}", rt.sellerHandler.Delete)
				r.Get("/{id}/representations", rt.sellerHandler.Representations)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleSeller))
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.Get)
				r.Put("/{id}", rt.clientHandler.Update)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.clientHandler.Delete)
			})

			// Products
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.productHandler.List)
				r.With(rt.authMiddleware.RequireAdmin).Post("/", rt.productHandler.Create)
				r.Get("/{id}", rt.productHandler.Get)
				r.With(rt.authMiddleware.RequireAdmin).Put("/{id}", rt.productHandler.Update)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.productHandler.Delete)
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/stats", rt.quotationHandler.Stats)
				r.Get("/{id}", rt.quotationHandler.Get)
				r.Delete("/{id}", rt.quotationHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/send", rt.quotationHandler.Send)
				r.Post("/{id}/approve", rt.quotationHandler.Approve)
				r.Post("/{id}/reject", rt.quotationHandler.Reject)
				r.Post("/{id}/expire", rt.quotationHandler.Expire)
			})

			// Representations
			r.Route("/representations", func(r chi.Router) {
				r.Post("/requests", rt.representationHandler.Request)
				r.With(rt.authMiddleware.RequireAdmin).Get("/requests", rt.representationHandler.ListPending)
				r.With(rt.authMiddleware.RequireAdmin).Post("/requests/resolve", rt.representationHandler.Resolve)
				r.Get("/requests/mine", rt.representationHandler.MyRequests)
				r.Get("/mine", rt.representationHandler.Mine)
				r.With(rt.authMiddleware.RequireAdmin).Patch("/{id}/active", rt.representationHandler.Toggle)
			})

			// Exchange rates
			r.Route("/exchange", func(r chi.Router) {
				r.Get("/rate", rt.exchangeHandler.Rate)
				r.With(rt.authMiddleware.RequireAdmin).Post("/rate/refresh", rt.exchangeHandler.Refresh)
				r.With(rt.authMiddleware.RequireAdmin).Get("/config", rt.exchangeHandler.GetConfig)
				r.With(rt.authMiddleware.RequireAdmin).Put("/config", rt.exchangeHandler.UpdateConfig)
			})
		})
	})

	return r
}
