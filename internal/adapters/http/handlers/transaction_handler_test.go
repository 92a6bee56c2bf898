package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/ledger/internal/application/dtos"
	domainerrors "github.com/nissmart/ledger/internal/domain/errors"
)

type mockListTransactionsUseCase struct {
	executeFunc func(ctx context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error)
}

func (m *mockListTransactionsUseCase) Execute(ctx context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, query)
	}
	return dtos.TransactionListResponse{}, nil
}

func setupTransactionRouter() (*gin.Engine, *mockListTransactionsUseCase) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	mock := &mockListTransactionsUseCase{}
	handler := NewTransactionHandler(mock)

	router := gin.New()
	api := router.Group("/api")
	handler.RegisterRoutes(api)
	return router, mock
}

func getTransactions(router *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTransactionHandler_ListTransactions_Success(t *testing.T) {
	router, mock := setupTransactionRouter()

	mock.executeFunc = func(context.Context, dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
		return dtos.TransactionListResponse{
			Items: []dtos.TransactionResponse{{Type: "DEPOSIT", Amount: "100.00"}},
			Total: 1,
		}, nil
	}

	w := getTransactions(router, "")

	require.Equal(t, http.StatusOK, w.Code)

	var response dtos.TransactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.Equal(t, "DEPOSIT", response.Items[0].Type)
	assert.Equal(t, int64(1), response.Total)
}

func TestTransactionHandler_ListTransactions_PassesFilters(t *testing.T) {
	router, mock := setupTransactionRouter()

	var gotQuery dtos.ListTransactionsQuery
	mock.executeFunc = func(_ context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
		gotQuery = query
		return dtos.TransactionListResponse{}, nil
	}

	w := getTransactions(router, "?user_id="+testUserID+"&type=TRANSFER&status=COMPLETED&limit=20&offset=40")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotQuery.UserID)
	assert.Equal(t, testUserID, *gotQuery.UserID)
	require.NotNil(t, gotQuery.Type)
	assert.Equal(t, "TRANSFER", *gotQuery.Type)
	require.NotNil(t, gotQuery.Status)
	assert.Equal(t, "COMPLETED", *gotQuery.Status)
	assert.Equal(t, 20, gotQuery.Limit)
	assert.Equal(t, 40, gotQuery.Offset)
}

func TestTransactionHandler_ListTransactions_DateFormats(t *testing.T) {
	router, mock := setupTransactionRouter()

	var gotQuery dtos.ListTransactionsQuery
	mock.executeFunc = func(_ context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
		gotQuery = query
		return dtos.TransactionListResponse{}, nil
	}

	t.Run("RFC3339", func(t *testing.T) {
		w := getTransactions(router, "?start_date=2026-08-01T00:00:00Z")

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotQuery.StartDate)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), gotQuery.StartDate.UTC())
	})

	t.Run("DateOnlyStartIsMidnight", func(t *testing.T) {
		w := getTransactions(router, "?start_date=2026-08-24")

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotQuery.StartDate)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), gotQuery.StartDate.UTC())
	})

	t.Run("DateOnlyEndCoversWholeDay", func(t *testing.T) {
		w := getTransactions(router, "?end_date=2026-08-24")

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotQuery.EndDate)
		// Полуденная транзакция того же дня обязана попасть под границу
		noon := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
		assert.False(t, gotQuery.EndDate.Before(noon))
		assert.Equal(t, time.Date(2026, 8, 24, 23, 59, 59, 999999000, time.UTC), gotQuery.EndDate.UTC())
	})

	t.Run("Invalid", func(t *testing.T) {
		w := getTransactions(router, "?start_date=yesterday")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "start_date")
	})
}

func TestTransactionHandler_ListTransactions_InvalidFilter(t *testing.T) {
	router, mock := setupTransactionRouter()

	mock.executeFunc = func(context.Context, dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
		return dtos.TransactionListResponse{}, domainerrors.ValidationError{Field: "type", Message: "unknown transaction type"}
	}

	w := getTransactions(router, "?type=REFUND")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
