// Package http - Router configuration for REST API.
//
// Router собирает все handlers и middleware в единую точку входа.
//
// Pattern: Composition Root
// - Все зависимости собираются здесь
// - Handlers получают только нужные им use cases
// - Middleware применяется к соответствующим группам routes
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nissmart/ledger/internal/adapters/http/common"
	"github.com/nissmart/ledger/internal/adapters/http/handlers"
	"github.com/nissmart/ledger/internal/adapters/http/middleware"
)

// ============================================
// Router Configuration
// ============================================

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware
	Logger *slog.Logger
	// Database pool для health checks
	Pool *pgxpool.Pool
	// Version приложения
	Version string
	// BuildTime время сборки
	BuildTime string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins для CORS (production)
	AllowedOrigins []string
}

// DefaultRouterConfig - конфигурация по умолчанию для development.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
	}
}

// ============================================
// Use Case Providers
// ============================================

// UserUseCases - provider для user use cases.
type UserUseCases struct {
	CreateUser handlers.CreateUserUseCase
	GetUser    handlers.GetUserUseCase
	ListUsers  handlers.ListUsersUseCase
}

// LedgerUseCases - provider для ledger use cases.
type LedgerUseCases struct {
	Deposit    handlers.DepositUseCase
	Transfer   handlers.TransferUseCase
	Withdraw   handlers.WithdrawUseCase
	GetBalance handlers.GetBalanceUseCase
}

// TransactionUseCases - provider для transaction use cases.
type TransactionUseCases struct {
	ListTransactions handlers.ListTransactionsUseCase
}

// AdminUseCases - provider для admin use cases.
type AdminUseCases struct {
	Summary handlers.AdminSummaryUseCase
}

// ============================================
// Router Builder
// ============================================

// RouterBuilder - builder для создания роутера.
//
// Pattern: Builder
// - Позволяет пошагово настроить роутер
// - Проще тестировать
// - Можно переиспользовать части конфигурации
type RouterBuilder struct {
	config       *RouterConfig
	users        *UserUseCases
	ledger       *LedgerUseCases
	transactions *TransactionUseCases
	admin        *AdminUseCases
}

// NewRouterBuilder создаёт новый builder.
func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{
		config: config,
	}
}

// WithUserUseCases добавляет user use cases.
func (b *RouterBuilder) WithUserUseCases(useCases *UserUseCases) *RouterBuilder {
	b.users = useCases
	return b
}

// WithLedgerUseCases добавляет ledger use cases.
func (b *RouterBuilder) WithLedgerUseCases(useCases *LedgerUseCases) *RouterBuilder {
	b.ledger = useCases
	return b
}

// WithTransactionUseCases добавляет transaction use cases.
func (b *RouterBuilder) WithTransactionUseCases(useCases *TransactionUseCases) *RouterBuilder {
	b.transactions = useCases
	return b
}

// WithAdminUseCases добавляет admin use cases.
func (b *RouterBuilder) WithAdminUseCases(useCases *AdminUseCases) *RouterBuilder {
	b.admin = useCases
	return b
}

// Build создаёт сконфигурированный Gin Engine.
func (b *RouterBuilder) Build() *gin.Engine {
	// Настраиваем режим Gin
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Создаём router без default middleware
	router := gin.New()

	// Настраиваем кастомные валидаторы
	handlers.SetupValidator()

	// ============================================
	// Global Middleware
	// ============================================

	// 1. Recovery - должен быть первым
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))

	// 2. Request ID
	router.Use(middleware.RequestID())

	// 3. CORS
	if b.config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	// 4. Logging
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))

	// 5. Rate Limiting (global)
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	// 6. Metrics (Prometheus)
	router.Use(middleware.Metrics())

	// ============================================
	// Metrics Endpoint
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================
	// Health Check Routes
	// ============================================

	healthHandler := handlers.NewHealthHandler(
		b.config.Pool,
		b.config.Version,
		b.config.BuildTime,
	)
	healthHandler.RegisterRoutes(router)

	// ============================================
	// API Routes
	// ============================================

	api := router.Group("/api")

	// User routes
	if b.users != nil {
		userHandler := handlers.NewUserHandler(
			b.users.CreateUser,
			b.users.GetUser,
			b.users.ListUsers,
		)
		userHandler.RegisterRoutes(api)
	}

	// Ledger routes: write-операции под более строгим rate limit
	if b.ledger != nil {
		ledgerHandler := handlers.NewLedgerHandler(
			b.ledger.Deposit,
			b.ledger.Transfer,
			b.ledger.Withdraw,
			b.ledger.GetBalance,
		)
		ledger := api.Group("/ledger")
		{
			writes := ledger.Group("")
			writes.Use(middleware.WriteRateLimit())
			{
				writes.POST("/deposit", ledgerHandler.Deposit)
				writes.POST("/transfer", ledgerHandler.Transfer)
				writes.POST("/withdraw", ledgerHandler.Withdraw)
			}

			ledger.GET("/balance/:user_id", ledgerHandler.GetBalance)
		}
	}

	// Transaction routes
	if b.transactions != nil {
		txHandler := handlers.NewTransactionHandler(b.transactions.ListTransactions)
		txHandler.RegisterRoutes(api)
	}

	// Admin dashboard routes
	if b.admin != nil {
		adminHandler := handlers.NewAdminHandler(b.admin.Summary)
		adminHandler.RegisterRoutes(api)
	}

	// ============================================
	// 404 Handler
	// ============================================

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, http.StatusNotFound, common.ErrCodeNotFound, "endpoint not found")
	})

	return router
}

// ============================================
// Quick Setup Functions
// ============================================

// NewRouter создаёт роутер с базовой конфигурацией (для простых случаев).
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}
