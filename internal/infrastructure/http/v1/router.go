// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
	"salescore/internal/domain/auth"
	"salescore/internal/domain/catalogs/currency"
	"salescore/internal/domain/catalogs/party"
	"salescore/internal/domain/catalogs/product"
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/domain/documents/quote"
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/domain/events"
	"salescore/internal/domain/payments"
	"salescore/internal/infrastructure/http/v1/handlers"
	"salescore/internal/infrastructure/http/v1/middleware"
	"salescore/internal/infrastructure/storage/postgres"
	"salescore/internal/infrastructure/storage/postgres/catalog_repo"
	"salescore/internal/infrastructure/storage/postgres/document_repo"
	"salescore/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the shared connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs repository calls inside transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// Publisher receives document lifecycle events
	Publisher events.Publisher

	// Audit records catalog change history (optional)
	Audit *postgres.AuditService

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL is how long completed keys are replayable
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		// Protected endpoints: company scope comes from the JWT claims
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.TxManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerAuditRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	public := rg.Group("/auth")
	{
		public.POST("/login", authHandler.Login)
		public.POST("/refresh", authHandler.Refresh)
	}

	// Protected auth endpoints (JWT required)
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
		// Collaborator administration stays admin-only.
		protected.POST("/users", middleware.RequireAdmin(), authHandler.Register)
		protected.GET("/users", middleware.RequireAdmin(), authHandler.ListUsers)
	}
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PARTIES ---
	{
		repo := catalog_repo.NewPartyRepo(cfg.TxManager)
		service := party.NewService(repo, cfg.TxManager, cfg.Numerator)
		registerAuditHooks(service.Hooks(), cfg.Audit, "party", func(p *party.Party) (id.ID, map[string]any) {
			return p.ID, map[string]any{"code": p.Code, "name": p.Name, "kind": p.Kind, "status": p.Status}
		})
		handler := handlers.NewPartyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/parties"), handler)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.TxManager, cfg.Numerator)
		registerAuditHooks(service.Hooks(), cfg.Audit, "product", func(p *product.Product) (id.ID, map[string]any) {
			return p.ID, map[string]any{"code": p.Code, "name": p.Name, "type": p.Type, "unitPrice": p.UnitPrice}
		})
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler)
	}

	// --- CURRENCIES ---
	{
		repo := catalog_repo.NewCurrencyRepo(cfg.TxManager)
		service := currency.NewService(repo, cfg.TxManager)
		registerAuditHooks(service.Hooks(), cfg.Audit, "currency", func(c *currency.Currency) (id.ID, map[string]any) {
			return c.ID, map[string]any{"code": c.Code, "name": c.Name, "isoCode": c.ISOCode}
		})
		handler := handlers.NewCurrencyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/currencies"), handler)
	}
}

// registerAuditHooks records catalog creates and updates in the audit log.
// Hooks run inside the service transaction, so the audit row commits with
// the change it describes.
func registerAuditHooks[T any](
	hooks *domain.HookRegistry[T],
	audit *postgres.AuditService,
	entityType string,
	snapshot func(T) (id.ID, map[string]any),
) {
	if audit == nil {
		return
	}

	hooks.On(domain.AfterCreate, func(ctx context.Context, sc scope.Scope, e T) error {
		entityID, changes := snapshot(e)
		return audit.LogChange(ctx, sc, entityType, entityID, postgres.AuditActionCreate, changes)
	})
	hooks.On(domain.AfterUpdate, func(ctx context.Context, sc scope.Scope, e T) error {
		entityID, changes := snapshot(e)
		return audit.LogChange(ctx, sc, entityType, entityID, postgres.AuditActionUpdate, changes)
	})
}

// registerAuditRoutes exposes the change history endpoint.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Audit == nil {
		return
	}

	handler := handlers.NewAuditHandler(handlers.NewBaseHandler(), cfg.Audit)
	rg.GET("/audit/:entityType/:id", handler.History)
}

// registerDocumentRoutes registers the sales document lifecycle endpoints.
// The quote service converts through the order service, and the invoice
// service bills orders through the same instance, so the chain is wired
// bottom-up: orders first, then quotes and invoices, then payments.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docs := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	orderRepo := document_repo.NewSalesOrderRepo(cfg.TxManager)
	orderService := salesorder.NewService(orderRepo, cfg.Numerator, cfg.TxManager, cfg.Publisher)

	quoteRepo := document_repo.NewQuoteRepo(cfg.TxManager)
	quoteService := quote.NewService(quoteRepo, orderService, cfg.Numerator, cfg.TxManager, cfg.Publisher)

	invoiceRepo := document_repo.NewInvoiceRepo(cfg.TxManager)
	invoiceService := invoice.NewService(invoiceRepo, orderService, cfg.Numerator, cfg.TxManager, cfg.Publisher)

	paymentRepo := document_repo.NewPaymentRepo(cfg.TxManager)
	paymentService := payments.NewService(paymentRepo, invoiceRepo, cfg.Numerator, cfg.TxManager, cfg.Publisher)

	// --- QUOTES ---
	{
		handler := handlers.NewQuoteHandler(baseHandler, quoteService)
		group := docs.Group("/quotes")
		RegisterDocumentRoutes(group, handler)
		group.POST("/:id/convert", handler.ConvertToOrder)
	}

	// --- SALES ORDERS ---
	{
		handler := handlers.NewSalesOrderHandler(baseHandler, orderService)
		group := docs.Group("/sales-orders")
		RegisterDocumentRoutes(group, handler)
		group.POST("/:id/fulfillment", handler.RecordFulfillment)
	}

	// --- INVOICES + PAYMENTS ---
	{
		invoiceHandler := handlers.NewInvoiceHandler(baseHandler, invoiceService)
		paymentHandler := handlers.NewPaymentHandler(baseHandler, paymentService)

		group := docs.Group("/invoices")
		RegisterDocumentRoutes(group, invoiceHandler)
		group.POST("/from-order", invoiceHandler.CreateFromOrder)
		group.POST("/:id/payments", paymentHandler.Apply)
		group.GET("/:id/payments", paymentHandler.ListByInvoice)

		paymentsGroup := docs.Group("/payments")
		paymentsGroup.GET("", paymentHandler.List)
		paymentsGroup.POST("", paymentHandler.Record)
		paymentsGroup.GET("/:id", paymentHandler.Get)
	}
}
