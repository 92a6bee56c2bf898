// Package dtos - Mappers для конвертации domain entities в DTOs.
//
// Pattern: Mapper/Converter
// Отделяет domain representation от API representation
package dtos

import (
	"sort"

	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// ============================================
// User Mappers
// ============================================

// ToUserResponse конвертирует domain entity User в DTO.
func ToUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:        user.ID().String(),
		Email:     user.Email(),
		FullName:  user.FullName(),
		IsActive:  user.IsActive(),
		CreatedAt: user.CreatedAt(),
		UpdatedAt: user.UpdatedAt(),
	}
}

// ToUserResponseList конвертирует список пользователей.
func ToUserResponseList(users []*entities.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, user := range users {
		result[i] = ToUserResponse(user)
	}
	return result
}

// ============================================
// Account Mappers
// ============================================

// ToAccountResponse конвертирует domain entity Account в DTO.
func ToAccountResponse(account *entities.Account) AccountResponse {
	var userID *string
	if owner := account.OwnerUserID(); owner != nil {
		s := owner.String()
		userID = &s
	}
	return AccountResponse{
		ID:               account.ID().String(),
		UserID:           userID,
		Name:             account.Name(),
		Currency:         account.Currency().Code(),
		Type:             string(account.Type()),
		Status:           string(account.Status()),
		Balance:          account.Balance().String(),
		AvailableBalance: account.AvailableBalance().String(),
		CreatedAt:        account.CreatedAt(),
		UpdatedAt:        account.UpdatedAt(),
	}
}

// ToUserBalanceResponse собирает все счета пользователя и итоги по валютам.
func ToUserBalanceResponse(userID string, accounts []*entities.Account) UserBalanceResponse {
	items := make([]AccountResponse, len(accounts))
	balances := map[valueobjects.Currency]valueobjects.Money{}
	available := map[valueobjects.Currency]valueobjects.Money{}
	for i, account := range accounts {
		items[i] = ToAccountResponse(account)
		ccy := account.Currency()
		balances[ccy] = balances[ccy].Add(account.Balance())
		available[ccy] = available[ccy].Add(account.AvailableBalance())
	}

	currencies := make([]valueobjects.Currency, 0, len(balances))
	for ccy := range balances {
		currencies = append(currencies, ccy)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	totals := make([]CurrencyTotal, len(currencies))
	for i, ccy := range currencies {
		totals[i] = CurrencyTotal{
			Currency:         ccy.Code(),
			Balance:          balances[ccy].String(),
			AvailableBalance: available[ccy].String(),
		}
	}

	return UserBalanceResponse{
		UserID:   userID,
		Accounts: items,
		Totals:   totals,
	}
}

// ============================================
// Transaction Mappers
// ============================================

// ToTransactionResponse конвертирует domain entity Transaction в DTO.
func ToTransactionResponse(tx *entities.Transaction) TransactionResponse {
	var userID *string
	if id := tx.UserID(); id != nil {
		s := id.String()
		userID = &s
	}
	var description *string
	if d := tx.Description(); d != "" {
		description = &d
	}
	return TransactionResponse{
		ID:          tx.ID().String(),
		Reference:   tx.Reference(),
		UserID:      userID,
		AccountID:   tx.AccountID().String(),
		Type:        string(tx.Type()),
		Status:      string(tx.Status()),
		Amount:      tx.Amount().String(),
		Currency:    tx.Currency().Code(),
		Description: description,
		ContextData: tx.Metadata(),
		OccurredAt:  tx.OccurredAt(),
		CreatedAt:   tx.CreatedAt(),
		UpdatedAt:   tx.UpdatedAt(),
	}
}

// ToTransactionResponseList конвертирует список транзакций.
func ToTransactionResponseList(txs []*entities.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = ToTransactionResponse(tx)
	}
	return result
}
