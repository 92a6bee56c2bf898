// Package handlers - Transaction HTTP handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nissmart/ledger/internal/adapters/http/common"
	"github.com/nissmart/ledger/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// ListTransactionsUseCase - интерфейс списка транзакций с фильтрацией.
type ListTransactionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error)
}

// ============================================
// Transaction Handler
// ============================================

// TransactionHandler обрабатывает HTTP запросы истории транзакций.
type TransactionHandler struct {
	listTransactions ListTransactionsUseCase
}

// NewTransactionHandler создаёт новый TransactionHandler.
func NewTransactionHandler(listTransactions ListTransactionsUseCase) *TransactionHandler {
	return &TransactionHandler{listTransactions: listTransactions}
}

// ============================================
// HTTP Handlers
// ============================================

// ListTransactions возвращает страницу транзакций с фильтрами.
//
// GET /api/transactions?user_id&type&status&start_date&end_date&limit&offset
// Даты принимаются в RFC 3339 либо как YYYY-MM-DD.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page := ParsePage(c)

	query := dtos.ListTransactionsQuery{
		Offset: page.Offset,
		Limit:  page.Limit,
	}

	if v := c.Query("user_id"); v != "" {
		query.UserID = &v
	}
	if v := c.Query("type"); v != "" {
		query.Type = &v
	}
	if v := c.Query("status"); v != "" {
		query.Status = &v
	}

	if v := c.Query("start_date"); v != "" {
		t, err := parseQueryTime(v, false)
		if err != nil {
			common.BadRequestResponse(c, "start_date: invalid date format")
			return
		}
		query.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := parseQueryTime(v, true)
		if err != nil {
			common.BadRequestResponse(c, "end_date: invalid date format")
			return
		}
		query.EndDate = &t
	}

	result, err := h.listTransactions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseQueryTime парсит дату из query параметра. Дата без времени
// задаёт границу дня включительно: для start это полночь, для end -
// конец дня (23:59:59.999999, точность timestamptz), иначе фильтр
// occurred_at <= end отрезал бы весь последний день.
func parseQueryTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return t, nil
}

// RegisterRoutes регистрирует маршруты для TransactionHandler.
//
// Routes:
// - GET /transactions - List transactions with filters
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/transactions", h.ListTransactions)
}
