// Package handlers - Ledger HTTP handlers (deposit, transfer, withdraw, balance).
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/adapters/http/common"
	"github.com/nissmart/ledger/internal/adapters/http/middleware"
	"github.com/nissmart/ledger/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// DepositUseCase - интерфейс пополнения счёта.
type DepositUseCase interface {
	Execute(ctx context.Context, idempotencyKey string, cmd dtos.DepositCommand) (dtos.LedgerResult, error)
}

// TransferUseCase - интерфейс перевода между пользователями.
type TransferUseCase interface {
	Execute(ctx context.Context, idempotencyKey string, cmd dtos.TransferCommand) (dtos.LedgerResult, error)
}

// WithdrawUseCase - интерфейс вывода средств.
type WithdrawUseCase interface {
	Execute(ctx context.Context, idempotencyKey string, cmd dtos.WithdrawCommand) (dtos.LedgerResult, error)
}

// GetBalanceUseCase - интерфейс запроса балансов пользователя.
type GetBalanceUseCase interface {
	Execute(ctx context.Context, userID string) (dtos.UserBalanceResponse, error)
}

// ============================================
// Ledger Handler
// ============================================

// LedgerHandler обрабатывает HTTP запросы ledger-операций.
// Все write-операции требуют Idempotency-Key и отдают тело
// из idempotency-записи байт-в-байт при повторе.
type LedgerHandler struct {
	deposit    DepositUseCase
	transfer   TransferUseCase
	withdraw   WithdrawUseCase
	getBalance GetBalanceUseCase
}

// NewLedgerHandler создаёт новый LedgerHandler.
func NewLedgerHandler(
	deposit DepositUseCase,
	transfer TransferUseCase,
	withdraw WithdrawUseCase,
	getBalance GetBalanceUseCase,
) *LedgerHandler {
	return &LedgerHandler{
		deposit:    deposit,
		transfer:   transfer,
		withdraw:   withdraw,
		getBalance: getBalance,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// DepositRequest - запрос пополнения счёта.
type DepositRequest struct {
	UserID      string  `json:"user_id" binding:"required,uuid"`
	Amount      string  `json:"amount" binding:"required,money_amount"`
	Currency    string  `json:"currency" binding:"required,currency_code"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
}

// TransferRequest - запрос перевода между пользователями.
type TransferRequest struct {
	SourceUserID      string  `json:"source_user_id" binding:"required,uuid"`
	DestinationUserID string  `json:"destination_user_id" binding:"required,uuid"`
	Amount            string  `json:"amount" binding:"required,money_amount"`
	Currency          string  `json:"currency" binding:"required,currency_code"`
	Description       *string `json:"description,omitempty"`
	Reference         *string `json:"reference,omitempty"`
}

// WithdrawRequest - запрос вывода средств.
type WithdrawRequest struct {
	UserID      string  `json:"user_id" binding:"required,uuid"`
	Amount      string  `json:"amount" binding:"required,money_amount"`
	Currency    string  `json:"currency" binding:"required,currency_code"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
}

// BalanceUserIDParam - параметр user_id из URL.
type BalanceUserIDParam struct {
	UserID string `uri:"user_id" binding:"required"`
}

// ============================================
// HTTP Handlers
// ============================================

// recordPosting пишет бизнес-метрики после успешной write-операции.
func recordPosting(operation, currency, amount string, result dtos.LedgerResult) {
	if result.Replayed {
		middleware.RecordIdempotentReplay(operation)
		return
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		value = 0
	}
	middleware.RecordTransaction(operation, currency, value)
}

// Deposit зачисляет средства на счёт пользователя.
//
// POST /api/ledger/deposit
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.DepositCommand{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Reference:   req.Reference,
	}

	result, err := h.deposit.Execute(c.Request.Context(), IdempotencyKey(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	recordPosting("DEPOSIT", req.Currency, req.Amount, result)
	common.Replay(c, result)
}

// Transfer переводит средства между пользователями.
//
// POST /api/ledger/transfer
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.TransferCommand{
		SourceUserID:      req.SourceUserID,
		DestinationUserID: req.DestinationUserID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Description:       req.Description,
		Reference:         req.Reference,
	}

	result, err := h.transfer.Execute(c.Request.Context(), IdempotencyKey(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	recordPosting("TRANSFER", req.Currency, req.Amount, result)
	common.Replay(c, result)
}

// Withdraw списывает средства со счёта пользователя на внешний счёт.
//
// POST /api/ledger/withdraw
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.WithdrawCommand{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Reference:   req.Reference,
	}

	result, err := h.withdraw.Execute(c.Request.Context(), IdempotencyKey(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	recordPosting("WITHDRAWAL", req.Currency, req.Amount, result)
	common.Replay(c, result)
}

// GetBalance возвращает все счета пользователя с итогами по валютам.
//
// GET /api/ledger/balance/:user_id
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	var params BalanceUserIDParam
	if !BindURI(c, &params) {
		return
	}

	if _, err := uuid.Parse(params.UserID); err != nil {
		common.BadRequestResponse(c, "user_id: invalid UUID format")
		return
	}

	result, err := h.getBalance.Execute(c.Request.Context(), params.UserID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для LedgerHandler.
//
// Routes:
// - POST /ledger/deposit           - Deposit funds
// - POST /ledger/transfer          - Transfer funds between users
// - POST /ledger/withdraw          - Withdraw funds
// - GET  /ledger/balance/:user_id  - Get user balances
func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	ledger := router.Group("/ledger")
	{
		ledger.POST("/deposit", h.Deposit)
		ledger.POST("/transfer", h.Transfer)
		ledger.POST("/withdraw", h.Withdraw)
		ledger.GET("/balance/:user_id", h.GetBalance)
	}
}
