package dtos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

func TestToUserBalanceResponse(t *testing.T) {
	userID := uuid.New()

	usd1 := entities.NewUserAccount(userID, valueobjects.CurrencyUSD)
	require.NoError(t, usd1.Credit(valueobjects.MustNewMoney("100.00")))
	usd2 := entities.NewUserAccount(userID, valueobjects.CurrencyUSD)
	require.NoError(t, usd2.Credit(valueobjects.MustNewMoney("25.50")))
	kes := entities.NewUserAccount(userID, valueobjects.CurrencyKES)
	require.NoError(t, kes.Credit(valueobjects.MustNewMoney("300.00")))

	resp := ToUserBalanceResponse(userID.String(), []*entities.Account{usd1, kes, usd2})

	assert.Equal(t, userID.String(), resp.UserID)
	assert.Len(t, resp.Accounts, 3)

	// Итоги агрегируются по валюте и сортируются по коду
	require.Len(t, resp.Totals, 2)
	assert.Equal(t, "KES", resp.Totals[0].Currency)
	assert.Equal(t, "300.00", resp.Totals[0].Balance)
	assert.Equal(t, "USD", resp.Totals[1].Currency)
	assert.Equal(t, "125.50", resp.Totals[1].Balance)
	assert.Equal(t, "125.50", resp.Totals[1].AvailableBalance)
}

func TestToUserBalanceResponse_NoAccounts(t *testing.T) {
	resp := ToUserBalanceResponse(uuid.New().String(), nil)

	assert.Empty(t, resp.Accounts)
	assert.Empty(t, resp.Totals)
}

func TestToTransactionResponse(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()

	tx, err := entities.NewTransaction(
		"dep-001",
		&userID,
		accountID,
		entities.TransactionTypeDeposit,
		valueobjects.MustNewMoney("50.00"),
		valueobjects.CurrencyUSD,
		"Top up",
		map[string]any{"channel": "mobile"},
	)
	require.NoError(t, err)

	resp := ToTransactionResponse(tx)

	assert.Equal(t, tx.ID().String(), resp.ID)
	assert.Equal(t, "dep-001", resp.Reference)
	require.NotNil(t, resp.UserID)
	assert.Equal(t, userID.String(), *resp.UserID)
	assert.Equal(t, accountID.String(), resp.AccountID)
	assert.Equal(t, "DEPOSIT", resp.Type)
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, "50.00", resp.Amount)
	assert.Equal(t, "USD", resp.Currency)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "Top up", *resp.Description)
	assert.Equal(t, "mobile", resp.ContextData["channel"])
}

func TestToTransactionResponse_OptionalFields(t *testing.T) {
	tx, err := entities.NewTransaction(
		"",
		nil,
		uuid.New(),
		entities.TransactionTypeDeposit,
		valueobjects.MustNewMoney("10.00"),
		valueobjects.CurrencyUSD,
		"",
		nil,
	)
	require.NoError(t, err)

	resp := ToTransactionResponse(tx)

	assert.Nil(t, resp.UserID)
	assert.Nil(t, resp.Description)
	assert.NotEmpty(t, resp.Reference)
}

func TestToUserResponseList(t *testing.T) {
	first, err := entities.NewUser("first@example.com", "First User")
	require.NoError(t, err)
	second, err := entities.NewUser("second@example.com", "Second User")
	require.NoError(t, err)

	list := ToUserResponseList([]*entities.User{first, second})

	require.Len(t, list, 2)
	assert.Equal(t, "first@example.com", list[0].Email)
	assert.Equal(t, "Second User", list[1].FullName)
}
