// Package admin - агрегирующие use cases для админ-дашборда.
package admin

import (
	"context"
	"fmt"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
)

// SummaryUseCase собирает системную сводку: счётчики и денежные агрегаты
// по типам операций. Простые SQL-фолды, без блокировок.
type SummaryUseCase struct {
	users    ports.UserRepository
	accounts ports.AccountRepository
	txns     ports.TransactionRepository
}

// NewSummaryUseCase создаёт новый use case.
func NewSummaryUseCase(users ports.UserRepository, accounts ports.AccountRepository, txns ports.TransactionRepository) *SummaryUseCase {
	return &SummaryUseCase{users: users, accounts: accounts, txns: txns}
}

// Execute возвращает сводку.
// total_wallet_value - сумма балансов USER счетов по всем валютам.
func (uc *SummaryUseCase) Execute(ctx context.Context) (dtos.AdminSummaryResponse, error) {
	totalUsers, err := uc.users.Count(ctx)
	if err != nil {
		return dtos.AdminSummaryResponse{}, fmt.Errorf("count users: %w", err)
	}
	walletValue, err := uc.accounts.SumBalancesByType(ctx, entities.AccountTypeUser)
	if err != nil {
		return dtos.AdminSummaryResponse{}, fmt.Errorf("sum user balances: %w", err)
	}

	summary := dtos.AdminSummaryResponse{
		TotalUsers:       totalUsers,
		TotalWalletValue: walletValue,
	}

	counts := []struct {
		txType entities.TransactionType
		count  *int64
		amount *float64
	}{
		{entities.TransactionTypeDeposit, &summary.TotalDeposits, &summary.TotalDepositsAmount},
		{entities.TransactionTypeTransfer, &summary.TotalTransfers, &summary.TotalTransfersAmount},
		{entities.TransactionTypeWithdrawal, &summary.TotalWithdrawals, &summary.TotalWithdrawalsAmount},
	}
	for _, c := range counts {
		n, err := uc.txns.CountByType(ctx, c.txType)
		if err != nil {
			return dtos.AdminSummaryResponse{}, fmt.Errorf("count %s transactions: %w", c.txType, err)
		}
		amount, err := uc.txns.SumAmountByType(ctx, c.txType)
		if err != nil {
			return dtos.AdminSummaryResponse{}, fmt.Errorf("sum %s amounts: %w", c.txType, err)
		}
		*c.count = n
		*c.amount = amount
	}
	return summary, nil
}
