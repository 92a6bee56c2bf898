// Package http содержит HTTP адаптеры (REST API).
//
// Структура пакета:
// - common/: Общие типы и helpers (вынесены для избежания циклических импортов)
// - middleware/: HTTP middleware (request id, logging, recovery, cors, metrics)
// - handlers/: HTTP handlers для каждого ресурса
// - router.go: Конфигурация маршрутов
// - server.go: HTTP server lifecycle
//
// Pattern: Adapter (Hexagonal Architecture)
// - HTTP - внешний адаптер, который преобразует HTTP запросы в вызовы Use Cases
// - Не содержит бизнес-логики
// - Занимается только преобразованием данных и HTTP семантикой
package http

import (
	"github.com/nissmart/ledger/internal/adapters/http/common"
)

// Re-export types from common package for convenience
type (
	// ErrorResponse - формат ответа с ошибкой.
	ErrorResponse = common.ErrorResponse
	// APIError - структура ошибки API.
	APIError = common.APIError
)

// Re-export error codes
const (
	ErrCodeValidation            = common.ErrCodeValidation
	ErrCodeInvalidAmount         = common.ErrCodeInvalidAmount
	ErrCodeSameAccount           = common.ErrCodeSameAccount
	ErrCodeCurrencyMismatch      = common.ErrCodeCurrencyMismatch
	ErrCodeInsufficientFunds     = common.ErrCodeInsufficientFunds
	ErrCodeAccountNotActive      = common.ErrCodeAccountNotActive
	ErrCodeMissingIdempotencyKey = common.ErrCodeMissingIdempotencyKey
	ErrCodeNotFound              = common.ErrCodeNotFound
	ErrCodeIdempotencyConflict   = common.ErrCodeIdempotencyConflict
	ErrCodeConflict              = common.ErrCodeConflict
	ErrCodeTooManyRequests       = common.ErrCodeTooManyRequests
	ErrCodeInternal              = common.ErrCodeInternal
)

// Re-export functions
var (
	// GetRequestID возвращает Request ID из контекста.
	GetRequestID = common.GetRequestID
	// SetRequestID устанавливает Request ID в контекст.
	SetRequestID = common.SetRequestID
	// Error отправляет ответ с ошибкой.
	Error = common.Error
	// Replay отдаёт результат write-операции байт-в-байт.
	Replay = common.Replay
	// BadRequestResponse создаёт ответ для некорректного запроса.
	BadRequestResponse = common.BadRequestResponse
	// NotFoundResponse создаёт ответ для 404.
	NotFoundResponse = common.NotFoundResponse
	// ConflictResponse создаёт ответ для 409.
	ConflictResponse = common.ConflictResponse
	// TooManyRequestsResponse создаёт ответ для rate limiting.
	TooManyRequestsResponse = common.TooManyRequestsResponse
	// InternalErrorResponse создаёт ответ для внутренней ошибки.
	InternalErrorResponse = common.InternalErrorResponse
	// HandleDomainError преобразует domain error в HTTP response.
	HandleDomainError = common.HandleDomainError
)
