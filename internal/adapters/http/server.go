// Package http - HTTP server lifecycle.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// ============================================
// Server Configuration
// ============================================

// ServerConfig - конфигурация HTTP сервера.
type ServerConfig struct {
	Host string
	Port string
	// ReadTimeout - максимальное время чтения запроса
	ReadTimeout time.Duration
	// WriteTimeout - максимальное время записи ответа
	WriteTimeout time.Duration
	// IdleTimeout - максимальное время ожидания следующего запроса
	IdleTimeout time.Duration
	// ShutdownTimeout - время на graceful shutdown
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// DefaultServerConfig - конфигурация по умолчанию.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Logger:          slog.Default(),
	}
}

// Address возвращает адрес для прослушивания.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// ============================================
// Server
// ============================================

// Server - HTTP сервер с graceful shutdown.
//
// Graceful shutdown важен для write-операций: прерванный посреди
// Unit of Work запрос откатится, но клиент получит обрыв соединения
// вместо ответа. Дожидаемся активных запросов в пределах
// ShutdownTimeout.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	router     *gin.Engine
}

// NewServer создаёт новый HTTP сервер поверх gin engine.
func NewServer(config *ServerConfig, router *gin.Engine) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	return &Server{
		config: config,
		httpServer: &http.Server{
			Addr:         config.Address(),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		router: router,
	}
}

// Start запускает сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.config.Logger.Info("starting ledger API server",
		slog.String("address", s.config.Address()),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown выполняет graceful shutdown в пределах ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.config.Logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.config.Logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		return err
	}

	s.config.Logger.Info("HTTP server stopped")
	return nil
}

// Run запускает сервер и останавливает его по SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return s.serveUntil(func(errChan <-chan error) error {
		select {
		case err := <-errChan:
			return err
		case sig := <-quit:
			s.config.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			return nil
		}
	})
}

// RunWithContext запускает сервер и останавливает его при отмене контекста.
func (s *Server) RunWithContext(ctx context.Context) error {
	return s.serveUntil(func(errChan <-chan error) error {
		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
			s.config.Logger.Info("context cancelled, initiating shutdown")
			return nil
		}
	})
}

// serveUntil запускает сервер в горутине и ждёт, пока wait не вернёт
// управление: ошибка сервера пробрасывается, иначе делается shutdown.
func (s *Server) serveUntil(wait func(<-chan error) error) error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errChan <- err
		}
	}()

	if err := wait(errChan); err != nil {
		return err
	}
	return s.Shutdown(context.Background())
}
