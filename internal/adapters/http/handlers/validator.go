// Package handlers содержит HTTP handlers для REST API.
//
// Handler - это Adapter в терминах Clean Architecture:
// - Принимает HTTP запрос
// - Преобразует в Command/Query DTO
// - Вызывает Use Case
// - Преобразует результат в HTTP ответ
//
// SOLID:
// - SRP: Каждый handler отвечает за один endpoint
// - DIP: Handler зависит от интерфейса Use Case
package handlers

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nissmart/ledger/internal/adapters/http/common"
)

// ============================================
// Custom Validator Setup
// ============================================

var setupOnce sync.Once

// SetupValidator настраивает кастомные валидаторы для Gin.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Используем json tag для имён полей в ошибках
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})

			_ = v.RegisterValidation("currency_code", validateCurrencyCode)
			_ = v.RegisterValidation("money_amount", validateMoneyAmount)
			_ = v.RegisterValidation("transaction_type", validateTransactionType)
			_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
		}
	})
}

// ============================================
// Custom Validators
// ============================================

// validateCurrencyCode проверяет код валюты (3 заглавные буквы).
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// validateMoneyAmount проверяет формат суммы: decimal-строка, максимум
// 2 знака после точки (scale баланса).
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

func validateMoneyAmount(fl validator.FieldLevel) bool {
	return moneyPattern.MatchString(fl.Field().String())
}

// validateTransactionType проверяет тип транзакции.
func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DEPOSIT", "TRANSFER", "WITHDRAWAL":
		return true
	}
	return false
}

// validateTransactionStatus проверяет статус транзакции.
func validateTransactionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "COMPLETED", "FAILED":
		return true
	}
	return false
}

// ============================================
// Validation Error Handling
// ============================================

// HandleValidationErrors преобразует ошибки валидации в HTTP ответ.
func HandleValidationErrors(c *gin.Context, err error) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fe := validationErrors[0]
		common.BadRequestResponse(c, fe.Field()+": "+getValidationMessage(fe))
		return
	}
	common.BadRequestResponse(c, "invalid request body: "+err.Error())
}

// getValidationMessage возвращает человекочитаемое сообщение об ошибке.
func getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "uuid":
		return "invalid UUID format"
	case "min":
		return "value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "value is too long (maximum: " + fe.Param() + ")"
	case "len":
		return "value must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "value must be one of: " + fe.Param()
	case "currency_code":
		return "invalid currency code (must be 3 uppercase letters)"
	case "money_amount":
		return "invalid amount format (use a decimal like '100.50')"
	case "transaction_type":
		return "invalid transaction type"
	case "transaction_status":
		return "invalid transaction status"
	default:
		return "invalid value"
	}
}

// ============================================
// Request Parsing Helpers
// ============================================

// BindJSON биндит JSON тело запроса и возвращает ошибку если что-то не так.
// Возвращает true если успешно, false если была ошибка (ответ уже отправлен).
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindURI биндит URI параметры.
func BindURI[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindUri(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// IdempotencyKey извлекает Idempotency-Key из заголовков запроса.
// Пустая строка означает отсутствие заголовка; use case вернёт 400.
func IdempotencyKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}

// ============================================
// Pagination Helpers
// ============================================

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PageParams - limit/offset пагинация из query string.
type PageParams struct {
	Offset int
	Limit  int
}

// ParsePage парсит limit/offset из запроса, применяя defaults и границы.
func ParsePage(c *gin.Context) PageParams {
	params := PageParams{Offset: 0, Limit: defaultPageLimit}

	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			params.Offset = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxPageLimit {
			params.Limit = v
		}
	}

	return params
}
