// Package middleware - Rate Limiting middleware.
//
// Fixed Window Counter с in-memory хранением. Лимитирование по IP:
// API не аутентифицирует клиентов, других признаков у запроса нет.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig - конфигурация для rate limiting.
type RateLimitConfig struct {
	// Limit - запросов за окно
	Limit int
	// Window - размер окна
	Window time.Duration
	// KeyFunc - ключ лимитирования, по умолчанию IP клиента
	KeyFunc func(*gin.Context) string
	// OnLimitReached - callback при достижении лимита
	OnLimitReached func(*gin.Context)
}

// DefaultRateLimitConfig - общий лимит для всех endpoints.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limit:  100,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// fixedWindowLimiter считает запросы по ключу в пределах окна.
type fixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  *RateLimitConfig
}

type window struct {
	used    int
	startAt time.Time
}

func newFixedWindowLimiter(config *RateLimitConfig) *fixedWindowLimiter {
	l := &fixedWindowLimiter{
		windows: make(map[string]*window),
		config:  config,
	}
	go l.evictStale()
	return l
}

// allow регистрирует запрос и возвращает (разрешён, осталось, до сброса).
func (l *fixedWindowLimiter) allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.startAt) >= l.config.Window {
		w = &window{startAt: now}
		l.windows[key] = w
	}

	resetIn := l.config.Window - now.Sub(w.startAt)
	if w.used >= l.config.Limit {
		return false, 0, resetIn
	}

	w.used++
	return true, l.config.Limit - w.used, resetIn
}

// evictStale периодически удаляет окна, по которым давно нет запросов.
func (l *fixedWindowLimiter) evictStale() {
	ticker := time.NewTicker(l.config.Window * 2)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.Sub(w.startAt) > l.config.Window*2 {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit middleware ограничивает количество запросов на ключ.
//
// Headers:
// - X-RateLimit-Limit: максимум запросов за окно
// - X-RateLimit-Remaining: остаток в текущем окне
// - X-RateLimit-Reset: Unix timestamp сброса окна
// - Retry-After: секунд до сброса (только при 429)
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	limiter := newFixedWindowLimiter(config)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		allowed, remaining, resetIn := limiter.allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))

		if !allowed {
			retrySeconds := int(resetIn.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))

			if config.OnLimitReached != nil {
				config.OnLimitReached(c)
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":        "TOO_MANY_REQUESTS",
					"message":     "rate limit exceeded, please try again later",
					"retry_after": retrySeconds,
				},
			})
			return
		}

		c.Next()
	}
}

// WriteRateLimit - более строгий лимит для write-операций.
// Deposit/transfer/withdraw дороже чтения: каждая операция держит
// блокировки счетов и пишет в несколько таблиц.
func WriteRateLimit() gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return "write:" + c.ClientIP()
		},
	})
}
