// Package middleware - Logging middleware для структурированного логирования.
package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingConfig - конфигурация для logging middleware.
type LoggingConfig struct {
	Logger *slog.Logger
	// SkipPaths - пути без access-лога (health probes, metrics)
	SkipPaths []string
	// LogRequestBody - логировать тело запроса. Осторожно с PII!
	LogRequestBody bool
	// MaxBodySize - максимальный размер логируемого тела
	MaxBodySize int
}

// DefaultLoggingConfig - конфигурация по умолчанию.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logger:         slog.Default(),
		SkipPaths:      []string{"/health", "/ready", "/live", "/metrics"},
		LogRequestBody: false,
		MaxBodySize:    1024,
	}
}

// Logging middleware пишет одну access-log запись на запрос: метод, путь,
// статус, длительность, request_id, IP и размер ответа. Тела ответов не
// логируются никогда: успешные write-ответы кешируются для идемпотентного
// replay и могут содержать полные данные транзакций.
//
// Уровень записи выбирается по статусу: 5xx - Error, 4xx - Warn, иначе Info.
func Logging(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			requestBody = truncate(string(raw), config.MaxBodySize)
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", GetRequestID(c)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Int("response_size", c.Writer.Size()),
		}
		if requestBody != "" {
			attrs = append(attrs, slog.String("request_body", requestBody))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		config.Logger.LogAttrs(c.Request.Context(), levelFor(status), "http request", attrs...)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
