package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/ledger/internal/application/dtos"
	domainerrors "github.com/nissmart/ledger/internal/domain/errors"
)

// ============================================
// Mock Use Cases
// ============================================

type mockDepositUseCase struct {
	executeFunc func(ctx context.Context, key string, cmd dtos.DepositCommand) (dtos.LedgerResult, error)
}

func (m *mockDepositUseCase) Execute(ctx context.Context, key string, cmd dtos.DepositCommand) (dtos.LedgerResult, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, key, cmd)
	}
	return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{}`)}, nil
}

type mockTransferUseCase struct {
	executeFunc func(ctx context.Context, key string, cmd dtos.TransferCommand) (dtos.LedgerResult, error)
}

func (m *mockTransferUseCase) Execute(ctx context.Context, key string, cmd dtos.TransferCommand) (dtos.LedgerResult, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, key, cmd)
	}
	return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{}`)}, nil
}

type mockWithdrawUseCase struct {
	executeFunc func(ctx context.Context, key string, cmd dtos.WithdrawCommand) (dtos.LedgerResult, error)
}

func (m *mockWithdrawUseCase) Execute(ctx context.Context, key string, cmd dtos.WithdrawCommand) (dtos.LedgerResult, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, key, cmd)
	}
	return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{}`)}, nil
}

type mockGetBalanceUseCase struct {
	executeFunc func(ctx context.Context, userID string) (dtos.UserBalanceResponse, error)
}

func (m *mockGetBalanceUseCase) Execute(ctx context.Context, userID string) (dtos.UserBalanceResponse, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, userID)
	}
	return dtos.UserBalanceResponse{}, nil
}

// ============================================
// Test Setup
// ============================================

type ledgerMocks struct {
	deposit    *mockDepositUseCase
	transfer   *mockTransferUseCase
	withdraw   *mockWithdrawUseCase
	getBalance *mockGetBalanceUseCase
}

func setupLedgerRouter() (*gin.Engine, *ledgerMocks) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	mocks := &ledgerMocks{
		deposit:    &mockDepositUseCase{},
		transfer:   &mockTransferUseCase{},
		withdraw:   &mockWithdrawUseCase{},
		getBalance: &mockGetBalanceUseCase{},
	}
	handler := NewLedgerHandler(mocks.deposit, mocks.transfer, mocks.withdraw, mocks.getBalance)

	router := gin.New()
	api := router.Group("/api")
	handler.RegisterRoutes(api)
	return router, mocks
}

func postJSON(router *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const testUserID = "b6f3a0f2-9f6f-4e11-8f1b-1a2b3c4d5e6f"
const testUserID2 = "0d3f9a11-2c4e-4b6d-9a8f-7e6d5c4b3a21"

// ============================================
// Deposit
// ============================================

func TestLedgerHandler_Deposit_Success(t *testing.T) {
	router, mocks := setupLedgerRouter()

	var gotKey string
	var gotCmd dtos.DepositCommand
	mocks.deposit.executeFunc = func(_ context.Context, key string, cmd dtos.DepositCommand) (dtos.LedgerResult, error) {
		gotKey = key
		gotCmd = cmd
		return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{"type":"DEPOSIT"}`)}, nil
	}

	w := postJSON(router, "/api/ledger/deposit", gin.H{
		"user_id":  testUserID,
		"amount":   "100.50",
		"currency": "USD",
	}, map[string]string{"Idempotency-Key": "dep-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"type":"DEPOSIT"}`, w.Body.String())
	assert.Equal(t, "dep-1", gotKey)
	assert.Equal(t, testUserID, gotCmd.UserID)
	assert.Equal(t, "100.50", gotCmd.Amount)
	assert.Equal(t, "USD", gotCmd.Currency)
}

func TestLedgerHandler_Deposit_ReplayBodyVerbatim(t *testing.T) {
	router, mocks := setupLedgerRouter()

	stored := []byte(`{"id":"abc","amount":"100.00","type":"DEPOSIT"}`)
	mocks.deposit.executeFunc = func(context.Context, string, dtos.DepositCommand) (dtos.LedgerResult, error) {
		return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: stored, Replayed: true}, nil
	}

	w := postJSON(router, "/api/ledger/deposit", gin.H{
		"user_id":  testUserID,
		"amount":   "100.00",
		"currency": "USD",
	}, map[string]string{"Idempotency-Key": "dep-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, stored, w.Body.Bytes())
}

func TestLedgerHandler_Deposit_MissingIdempotencyKey(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.deposit.executeFunc = func(_ context.Context, key string, _ dtos.DepositCommand) (dtos.LedgerResult, error) {
		assert.Empty(t, key)
		return dtos.LedgerResult{}, domainerrors.ErrMissingIdempotencyKey
	}

	w := postJSON(router, "/api/ledger/deposit", gin.H{
		"user_id":  testUserID,
		"amount":   "100.00",
		"currency": "USD",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDEMPOTENCY_KEY")
}

func TestLedgerHandler_Deposit_ValidationRejectsBeforeUseCase(t *testing.T) {
	router, mocks := setupLedgerRouter()

	called := false
	mocks.deposit.executeFunc = func(context.Context, string, dtos.DepositCommand) (dtos.LedgerResult, error) {
		called = true
		return dtos.LedgerResult{}, nil
	}

	tests := []struct {
		name string
		body gin.H
	}{
		{"MissingUserID", gin.H{"amount": "100.00", "currency": "USD"}},
		{"BadUUID", gin.H{"user_id": "nope", "amount": "100.00", "currency": "USD"}},
		{"BadAmount", gin.H{"user_id": testUserID, "amount": "12.345", "currency": "USD"}},
		{"NegativeAmount", gin.H{"user_id": testUserID, "amount": "-5.00", "currency": "USD"}},
		{"LowercaseCurrency", gin.H{"user_id": testUserID, "amount": "100.00", "currency": "usd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/ledger/deposit", tt.body, map[string]string{"Idempotency-Key": "k"})

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, called)
		})
	}
}

func TestLedgerHandler_Deposit_IdempotencyConflict(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.deposit.executeFunc = func(context.Context, string, dtos.DepositCommand) (dtos.LedgerResult, error) {
		return dtos.LedgerResult{}, domainerrors.ErrIdempotencyConflict
	}

	w := postJSON(router, "/api/ledger/deposit", gin.H{
		"user_id":  testUserID,
		"amount":   "100.00",
		"currency": "USD",
	}, map[string]string{"Idempotency-Key": "dep-1"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_CONFLICT")
}

// ============================================
// Transfer
// ============================================

func TestLedgerHandler_Transfer_Success(t *testing.T) {
	router, mocks := setupLedgerRouter()

	var gotCmd dtos.TransferCommand
	mocks.transfer.executeFunc = func(_ context.Context, _ string, cmd dtos.TransferCommand) (dtos.LedgerResult, error) {
		gotCmd = cmd
		return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{"type":"TRANSFER"}`)}, nil
	}

	w := postJSON(router, "/api/ledger/transfer", gin.H{
		"source_user_id":      testUserID,
		"destination_user_id": testUserID2,
		"amount":              "30.00",
		"currency":            "USD",
	}, map[string]string{"Idempotency-Key": "tr-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testUserID, gotCmd.SourceUserID)
	assert.Equal(t, testUserID2, gotCmd.DestinationUserID)
}

func TestLedgerHandler_Transfer_InsufficientFunds(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.transfer.executeFunc = func(context.Context, string, dtos.TransferCommand) (dtos.LedgerResult, error) {
		return dtos.LedgerResult{}, domainerrors.ErrInsufficientFunds
	}

	w := postJSON(router, "/api/ledger/transfer", gin.H{
		"source_user_id":      testUserID,
		"destination_user_id": testUserID2,
		"amount":              "30.00",
		"currency":            "USD",
	}, map[string]string{"Idempotency-Key": "tr-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_FUNDS")
}

func TestLedgerHandler_Transfer_SameAccount(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.transfer.executeFunc = func(context.Context, string, dtos.TransferCommand) (dtos.LedgerResult, error) {
		return dtos.LedgerResult{}, domainerrors.ErrSameAccount
	}

	w := postJSON(router, "/api/ledger/transfer", gin.H{
		"source_user_id":      testUserID,
		"destination_user_id": testUserID,
		"amount":              "30.00",
		"currency":            "USD",
	}, map[string]string{"Idempotency-Key": "tr-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "SAME_ACCOUNT")
}

// ============================================
// Withdraw
// ============================================

func TestLedgerHandler_Withdraw_Success(t *testing.T) {
	router, mocks := setupLedgerRouter()

	var gotCmd dtos.WithdrawCommand
	mocks.withdraw.executeFunc = func(_ context.Context, _ string, cmd dtos.WithdrawCommand) (dtos.LedgerResult, error) {
		gotCmd = cmd
		return dtos.LedgerResult{StatusCode: http.StatusCreated, Body: []byte(`{"type":"WITHDRAWAL"}`)}, nil
	}

	w := postJSON(router, "/api/ledger/withdraw", gin.H{
		"user_id":  testUserID,
		"amount":   "40.00",
		"currency": "USD",
	}, map[string]string{"Idempotency-Key": "wd-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "40.00", gotCmd.Amount)
}

func TestLedgerHandler_Withdraw_ConcurrencyConflict(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.withdraw.executeFunc = func(context.Context, string, dtos.WithdrawCommand) (dtos.LedgerResult, error) {
		return dtos.LedgerResult{}, domainerrors.NewConcurrencyError("Account", testUserID, "version mismatch")
	}

	w := postJSON(router, "/api/ledger/withdraw", gin.H{
		"user_id":  testUserID,
		"amount":   "40.00",
		"currency": "USD",
	}, map[string]string{"Idempotency-Key": "wd-1"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

// ============================================
// GetBalance
// ============================================

func TestLedgerHandler_GetBalance_Success(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.getBalance.executeFunc = func(_ context.Context, userID string) (dtos.UserBalanceResponse, error) {
		return dtos.UserBalanceResponse{
			UserID: userID,
			Totals: []dtos.CurrencyTotal{{Currency: "USD", Balance: "100.00", AvailableBalance: "100.00"}},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/balance/"+testUserID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dtos.UserBalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, testUserID, response.UserID)
	require.Len(t, response.Totals, 1)
	assert.Equal(t, "100.00", response.Totals[0].Balance)
}

func TestLedgerHandler_GetBalance_InvalidUUID(t *testing.T) {
	router, mocks := setupLedgerRouter()

	called := false
	mocks.getBalance.executeFunc = func(context.Context, string) (dtos.UserBalanceResponse, error) {
		called = true
		return dtos.UserBalanceResponse{}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/balance/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestLedgerHandler_GetBalance_UnknownUser(t *testing.T) {
	router, mocks := setupLedgerRouter()

	mocks.getBalance.executeFunc = func(context.Context, string) (dtos.UserBalanceResponse, error) {
		return dtos.UserBalanceResponse{}, domainerrors.ErrEntityNotFound
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/balance/"+testUserID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
