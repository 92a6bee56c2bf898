// Package common содержит общие типы для HTTP слоя.
//
// Вынесен в отдельный пакет чтобы избежать циклических импортов
// между handlers и основным http пакетом.
package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nissmart/ledger/internal/application/dtos"
	domainerrors "github.com/nissmart/ledger/internal/domain/errors"
)

// ============================================
// Error Response Format
// ============================================

// ErrorResponse - формат ответа с ошибкой: {"error": {"code": ..., "message": ...}}.
// Успешные ответы отдаются плоскими схемами без конверта.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError - структура ошибки API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ============================================
// Error Codes
// ============================================

const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidAmount         = "INVALID_AMOUNT"
	ErrCodeSameAccount           = "SAME_ACCOUNT"
	ErrCodeCurrencyMismatch      = "CURRENCY_MISMATCH"
	ErrCodeInsufficientFunds     = "INSUFFICIENT_FUNDS"
	ErrCodeAccountNotActive      = "ACCOUNT_NOT_ACTIVE"
	ErrCodeMissingIdempotencyKey = "MISSING_IDEMPOTENCY_KEY"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeIdempotencyConflict   = "IDEMPOTENCY_CONFLICT"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeTooManyRequests       = "TOO_MANY_REQUESTS"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// ============================================
// Request ID
// ============================================

const RequestIDKey = "X-Request-ID"

// GetRequestID возвращает Request ID из контекста.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}

// SetRequestID устанавливает Request ID в контекст.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

// ============================================
// Response Helpers
// ============================================

// Error отправляет ответ с ошибкой.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{Error: APIError{Code: code, Message: message}})
}

// Replay отдаёт результат write-операции байт-в-байт.
// Повтор запроса с тем же Idempotency-Key обязан вернуть идентичное тело,
// поэтому сериализованный ответ пишется как есть, без повторного маршалинга.
func Replay(c *gin.Context, result dtos.LedgerResult) {
	c.Data(result.StatusCode, "application/json; charset=utf-8", result.Body)
}

// BadRequestResponse создаёт ответ для некорректного запроса.
func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeValidation, message)
}

// NotFoundResponse создаёт ответ для 404.
func NotFoundResponse(c *gin.Context, resource string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, resource+" not found")
}

// ConflictResponse создаёт ответ для 409.
func ConflictResponse(c *gin.Context, message string) {
	Error(c, http.StatusConflict, ErrCodeConflict, message)
}

// TooManyRequestsResponse создаёт ответ для rate limiting.
func TooManyRequestsResponse(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	Error(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, "too many requests, please try again later")
}

// InternalErrorResponse создаёт ответ для внутренней ошибки.
func InternalErrorResponse(c *gin.Context) {
	Error(c, http.StatusInternalServerError, ErrCodeInternal, "an unexpected error occurred")
}

// ============================================
// Domain Error to HTTP Error Mapper
// ============================================

// HandleDomainError преобразует domain error в HTTP response.
//
// Маппинг:
//   - отсутствие Idempotency-Key, невалидный payload, отказ постинга -> 400
//   - сущность не найдена -> 404
//   - конфликт идемпотентности, повтор уникального значения,
//     проигранная optimistic-гонка после всех ретраев -> 409
//   - всё остальное -> 500
func HandleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrMissingIdempotencyKey):
		Error(c, http.StatusBadRequest, ErrCodeMissingIdempotencyKey, err.Error())

	case errors.Is(err, domainerrors.ErrInvalidAmount):
		Error(c, http.StatusBadRequest, ErrCodeInvalidAmount, err.Error())

	case errors.Is(err, domainerrors.ErrSameAccount):
		Error(c, http.StatusBadRequest, ErrCodeSameAccount, err.Error())

	case errors.Is(err, domainerrors.ErrCurrencyMismatch):
		Error(c, http.StatusBadRequest, ErrCodeCurrencyMismatch, err.Error())

	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		Error(c, http.StatusBadRequest, ErrCodeInsufficientFunds, err.Error())

	case errors.Is(err, domainerrors.ErrAccountNotActive):
		Error(c, http.StatusBadRequest, ErrCodeAccountNotActive, err.Error())

	case domainerrors.IsValidation(err):
		BadRequestResponse(c, err.Error())

	case domainerrors.IsNotFound(err):
		NotFoundResponse(c, "resource")

	case domainerrors.IsIdempotencyConflict(err):
		Error(c, http.StatusConflict, ErrCodeIdempotencyConflict, err.Error())

	case domainerrors.IsUniqueViolation(err):
		ConflictResponse(c, err.Error())

	case domainerrors.IsConcurrency(err):
		ConflictResponse(c, "resource was modified by a concurrent request, please retry")

	default:
		InternalErrorResponse(c)
	}
}
