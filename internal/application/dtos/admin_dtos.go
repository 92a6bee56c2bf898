// Package dtos - Admin dashboard DTOs.
package dtos

// AdminSummaryResponse - сводка по всей системе для админ-дашборда.
// Денежные агрегаты отдаются числами (SQL SUM), а не decimal-строками:
// это витрина, а не бухгалтерия.
type AdminSummaryResponse struct {
	TotalUsers             int64   `json:"total_users"`
	TotalWalletValue       float64 `json:"total_wallet_value"`
	TotalDeposits          int64   `json:"total_deposits"`
	TotalTransfers         int64   `json:"total_transfers"`
	TotalWithdrawals       int64   `json:"total_withdrawals"`
	TotalDepositsAmount    float64 `json:"total_deposits_amount"`
	TotalTransfersAmount   float64 `json:"total_transfers_amount"`
	TotalWithdrawalsAmount float64 `json:"total_withdrawals_amount"`
}
