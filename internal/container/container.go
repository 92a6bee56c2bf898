// Package container - Dependency Injection container for the application.
//
// Container управляет жизненным циклом всех зависимостей:
// - Создание (lazy initialization)
// - Доступ (getters)
// - Закрытие (cleanup)
//
// Pattern: Composition Root
// - Все зависимости собираются в одном месте
// - Легко тестировать
// - Легко заменять реализации
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nissmart/ledger/internal/adapters/http"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/application/usecases/admin"
	"github.com/nissmart/ledger/internal/application/usecases/ledger"
	"github.com/nissmart/ledger/internal/application/usecases/transaction"
	"github.com/nissmart/ledger/internal/application/usecases/user"
	"github.com/nissmart/ledger/internal/config"
	"github.com/nissmart/ledger/internal/infrastructure/persistence/postgres"
)

// ============================================
// Container
// ============================================

// Container - DI контейнер приложения.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool *pgxpool.Pool

	// Repositories
	userRepo        ports.UserRepository
	accountRepo     ports.AccountRepository
	transactionRepo ports.TransactionRepository
	entryRepo       ports.LedgerEntryRepository
	idempotencyRepo ports.IdempotencyRepository
	outboxRepo      *postgres.OutboxRepository

	// Unit of Work
	uow ports.UnitOfWork

	// Event Publisher
	eventPublisher ports.EventPublisher

	// Application services
	gate     *idempotency.Gate
	registry *ledger.AccountRegistry
	engine   *ledger.PostingEngine

	// Use Cases
	createUserUC       *user.CreateUserUseCase
	getUserUC          *user.GetUserUseCase
	listUsersUC        *user.ListUsersUseCase
	depositUC          *ledger.DepositUseCase
	transferUC         *ledger.TransferUseCase
	withdrawUC         *ledger.WithdrawUseCase
	getBalanceUC       *ledger.GetBalanceUseCase
	listTransactionsUC *transaction.ListTransactionsUseCase
	adminSummaryUC     *admin.SummaryUseCase

	// HTTP
	httpServer *http.Server
}

// New создаёт новый контейнер с заданной конфигурацией.
func New(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// ============================================
// Initialization
// ============================================

// Initialize инициализирует все зависимости.
func (c *Container) Initialize(ctx context.Context) error {
	c.logger = c.initLogger()
	c.logger.Info("Initializing application container...")

	// 1. Database
	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database connected")

	// 2. Repositories
	c.initRepositories()
	c.logger.Info("Repositories initialized")

	// 3. Use Cases
	c.initUseCases()
	c.logger.Info("Use cases initialized")

	// 4. HTTP Server
	c.initHTTPServer()
	c.logger.Info("HTTP server initialized")

	c.logger.Info("Container initialization complete")
	return nil
}

// initLogger инициализирует логгер.
func (c *Container) initLogger() *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch c.config.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: c.config.App.Debug,
	}

	if c.config.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// initDatabase инициализирует подключение к БД.
func (c *Container) initDatabase(ctx context.Context) error {
	pool, err := postgres.NewConnectionPool(ctx, postgres.PoolConfig{
		DSN:             c.config.Database.DSN(),
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}

	c.pool = pool
	return nil
}

// initRepositories инициализирует репозитории.
func (c *Container) initRepositories() {
	c.userRepo = postgres.NewUserRepository(c.pool)
	c.accountRepo = postgres.NewAccountRepository(c.pool)
	c.transactionRepo = postgres.NewTransactionRepository(c.pool)
	c.entryRepo = postgres.NewLedgerEntryRepository(c.pool)
	c.idempotencyRepo = postgres.NewIdempotencyRepository(c.pool)
	c.outboxRepo = postgres.NewOutboxRepository(c.pool)

	// Unit of Work
	c.uow = postgres.NewUnitOfWork(c.pool)

	// Event Publisher (OutboxRepository реализует интерфейс)
	c.eventPublisher = c.outboxRepo
}

// initUseCases инициализирует use cases.
func (c *Container) initUseCases() {
	hostname, _ := os.Hostname()

	// Idempotency Gate
	c.gate = idempotency.NewGate(c.idempotencyRepo, c.config.Idempotency.TTL(), hostname)

	// Posting Engine
	c.registry = ledger.NewAccountRegistry(c.accountRepo, c.eventPublisher)
	c.engine = ledger.NewPostingEngine(
		c.userRepo,
		c.accountRepo,
		c.transactionRepo,
		c.entryRepo,
		c.registry,
		c.eventPublisher,
	)

	// User Use Cases
	c.createUserUC = user.NewCreateUserUseCase(c.userRepo, c.eventPublisher, c.gate, c.uow)
	c.getUserUC = user.NewGetUserUseCase(c.userRepo)
	c.listUsersUC = user.NewListUsersUseCase(c.userRepo)

	// Ledger Use Cases
	c.depositUC = ledger.NewDepositUseCase(c.engine, c.gate, c.uow)
	c.transferUC = ledger.NewTransferUseCase(c.engine, c.gate, c.uow)
	c.withdrawUC = ledger.NewWithdrawUseCase(c.engine, c.gate, c.uow)
	c.getBalanceUC = ledger.NewGetBalanceUseCase(c.userRepo, c.accountRepo)

	// Transaction Use Cases
	c.listTransactionsUC = transaction.NewListTransactionsUseCase(c.transactionRepo)

	// Admin Use Cases
	c.adminSummaryUC = admin.NewSummaryUseCase(c.userRepo, c.accountRepo, c.transactionRepo)
}

// initHTTPServer инициализирует HTTP сервер.
func (c *Container) initHTTPServer() {
	// Router Config
	routerConfig := &http.RouterConfig{
		Logger:         c.logger,
		Pool:           c.pool,
		Version:        c.config.App.Version,
		Environment:    c.config.App.Environment,
		AllowedOrigins: c.config.CORS.AllowedOrigins,
	}

	// Build Router
	router := http.NewRouterBuilder(routerConfig).
		WithUserUseCases(&http.UserUseCases{
			CreateUser: c.createUserUC,
			GetUser:    c.getUserUC,
			ListUsers:  c.listUsersUC,
		}).
		WithLedgerUseCases(&http.LedgerUseCases{
			Deposit:    c.depositUC,
			Transfer:   c.transferUC,
			Withdraw:   c.withdrawUC,
			GetBalance: c.getBalanceUC,
		}).
		WithTransactionUseCases(&http.TransactionUseCases{
			ListTransactions: c.listTransactionsUC,
		}).
		WithAdminUseCases(&http.AdminUseCases{
			Summary: c.adminSummaryUC,
		}).
		Build()

	// Server Config
	serverConfig := &http.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// ============================================
// Getters
// ============================================

// Config возвращает конфигурацию.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger возвращает логгер.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Pool возвращает пул соединений к БД.
func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

// HTTPServer возвращает HTTP сервер.
func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

// ============================================
// Repository Getters
// ============================================

// UserRepository возвращает репозиторий пользователей.
func (c *Container) UserRepository() ports.UserRepository {
	return c.userRepo
}

// AccountRepository возвращает репозиторий счетов.
func (c *Container) AccountRepository() ports.AccountRepository {
	return c.accountRepo
}

// TransactionRepository возвращает репозиторий транзакций.
func (c *Container) TransactionRepository() ports.TransactionRepository {
	return c.transactionRepo
}

// LedgerEntryRepository возвращает репозиторий проводок.
func (c *Container) LedgerEntryRepository() ports.LedgerEntryRepository {
	return c.entryRepo
}

// UnitOfWork возвращает Unit of Work.
func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// ============================================
// Use Case Getters
// ============================================

// CreateUserUseCase возвращает use case регистрации пользователя.
func (c *Container) CreateUserUseCase() *user.CreateUserUseCase {
	return c.createUserUC
}

// DepositUseCase возвращает use case пополнения счёта.
func (c *Container) DepositUseCase() *ledger.DepositUseCase {
	return c.depositUC
}

// TransferUseCase возвращает use case перевода между пользователями.
func (c *Container) TransferUseCase() *ledger.TransferUseCase {
	return c.transferUC
}

// WithdrawUseCase возвращает use case вывода средств.
func (c *Container) WithdrawUseCase() *ledger.WithdrawUseCase {
	return c.withdrawUC
}

// GetBalanceUseCase возвращает use case запроса балансов.
func (c *Container) GetBalanceUseCase() *ledger.GetBalanceUseCase {
	return c.getBalanceUC
}

// ============================================
// Shutdown
// ============================================

// Shutdown выполняет graceful shutdown всех компонентов.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	// 1. HTTP Server
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// 2. Database (даём время на завершение транзакций)
	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// ============================================
// Run
// ============================================

// Run запускает приложение и ожидает сигнал завершения.
func (c *Container) Run() error {
	c.logger.Info("Starting Ledger API Server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("address", c.config.Server.Address()),
	)

	return c.httpServer.Run()
}

// ============================================
// Builder Pattern (Alternative)
// ============================================

// ContainerBuilder - builder для создания контейнера с кастомными компонентами.
type ContainerBuilder struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	eventPublisher ports.EventPublisher
}

// NewBuilder создаёт новый builder.
func NewBuilder(cfg *config.Config) *ContainerBuilder {
	return &ContainerBuilder{
		cfg: cfg,
	}
}

// WithLogger устанавливает кастомный логгер.
func (b *ContainerBuilder) WithLogger(logger *slog.Logger) *ContainerBuilder {
	b.logger = logger
	return b
}

// WithPool устанавливает готовый пул соединений.
func (b *ContainerBuilder) WithPool(pool *pgxpool.Pool) *ContainerBuilder {
	b.pool = pool
	return b
}

// WithEventPublisher устанавливает кастомный event publisher.
func (b *ContainerBuilder) WithEventPublisher(ep ports.EventPublisher) *ContainerBuilder {
	b.eventPublisher = ep
	return b
}

// Build создаёт контейнер.
func (b *ContainerBuilder) Build(ctx context.Context) (*Container, error) {
	c := New(b.cfg)

	// Use provided or initialize
	if b.logger != nil {
		c.logger = b.logger
	} else {
		c.logger = c.initLogger()
	}

	if b.pool != nil {
		c.pool = b.pool
	} else {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	c.initRepositories()

	if b.eventPublisher != nil {
		c.eventPublisher = b.eventPublisher
	}

	c.initUseCases()
	c.initHTTPServer()

	return c, nil
}
