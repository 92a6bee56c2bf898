package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("AllowsAllOrigins", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.GET("/api/users", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})

	t.Run("AllowsSpecificOrigin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(ProductionCORSConfig([]string{"https://app.example.com"})))
		router.GET("/api/users", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("UnallowedOriginGetsNoHeaders", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(ProductionCORSConfig([]string{"https://app.example.com"})))
		router.GET("/api/users", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "http://malicious.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PreflightForWriteEndpoint", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.POST("/api/ledger/deposit", func(c *gin.Context) {
			c.String(201, "should not reach here")
		})

		req := httptest.NewRequest(http.MethodOptions, "/api/ledger/deposit", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
		assert.NotContains(t, w.Body.String(), "should not reach here")
	})

	t.Run("NilConfigUsesDefaults", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.GET("/api/users", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("NoOriginHeader", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.GET("/api/users", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	config := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, config.AllowOrigins)
	// API читает и пишет только через GET/POST
	assert.ElementsMatch(t,
		[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
		config.AllowMethods)
	assert.Contains(t, config.AllowHeaders, "Idempotency-Key")
	assert.Contains(t, config.ExposeHeaders, "X-Request-ID")
	assert.Contains(t, config.ExposeHeaders, "Retry-After")
	assert.False(t, config.AllowCredentials)
}

func TestProductionCORSConfig(t *testing.T) {
	origins := []string{"https://app.example.com", "https://admin.example.com"}
	config := ProductionCORSConfig(origins)

	assert.Equal(t, origins, config.AllowOrigins)
	assert.True(t, config.AllowCredentials)
	assert.Contains(t, config.AllowHeaders, "Idempotency-Key")
}
