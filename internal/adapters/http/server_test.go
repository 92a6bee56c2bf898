package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.NotNil(t, cfg.Logger)
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     string
		expected string
	}{
		{"Localhost", "localhost", "8080", "localhost:8080"},
		{"AllInterfaces", "0.0.0.0", "3000", "0.0.0.0:3000"},
		{"EmptyHost", "", "8080", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ServerConfig{Host: tt.host, Port: tt.port}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestNewServer_AppliesTimeouts(t *testing.T) {
	cfg := &ServerConfig{
		Host:         "localhost",
		Port:         "8080",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  20 * time.Second,
		Logger:       quietLogger(),
	}

	server := NewServer(cfg, gin.New())

	require.NotNil(t, server.httpServer)
	assert.Equal(t, "localhost:8080", server.httpServer.Addr)
	assert.Equal(t, 5*time.Second, server.httpServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, server.httpServer.WriteTimeout)
	assert.Equal(t, 20*time.Second, server.httpServer.IdleTimeout)
}

func TestNewServer_NilConfigUsesDefaults(t *testing.T) {
	server := NewServer(nil, gin.New())

	require.NotNil(t, server.config)
	assert.Equal(t, "0.0.0.0:8080", server.config.Address())
}

func TestServer_ServesConfiguredRoutes(t *testing.T) {
	router := gin.New()
	router.GET("/api/ledger/balance/:user_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.Param("user_id")})
	})

	server := NewServer(&ServerConfig{Host: "localhost", Port: "8080", Logger: quietLogger()}, router)

	req := httptest.NewRequest("GET", "/api/ledger/balance/abc", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc")
}

func TestServer_Shutdown(t *testing.T) {
	server := NewServer(&ServerConfig{
		Host:            "localhost",
		Port:            "0",
		ShutdownTimeout: 5 * time.Second,
		Logger:          quietLogger(),
	}, gin.New())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-errChan)
}

func TestServer_RunWithContext_Cancellation(t *testing.T) {
	server := NewServer(&ServerConfig{
		Host:            "localhost",
		Port:            "0",
		ShutdownTimeout: time.Second,
		Logger:          quietLogger(),
	}, gin.New())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.RunWithContext(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
