package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/errors"
)

// GetBalanceUseCase возвращает все счета пользователя с итогами по валютам.
// Read-only: выполняется вне явной транзакции, снимок на уровне запроса.
type GetBalanceUseCase struct {
	users    ports.UserRepository
	accounts ports.AccountRepository
}

// NewGetBalanceUseCase создаёт новый use case.
func NewGetBalanceUseCase(users ports.UserRepository, accounts ports.AccountRepository) *GetBalanceUseCase {
	return &GetBalanceUseCase{users: users, accounts: accounts}
}

// Execute возвращает балансы пользователя.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID string) (dtos.UserBalanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return dtos.UserBalanceResponse{}, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	user, err := uc.users.FindByID(ctx, uid)
	if err != nil {
		return dtos.UserBalanceResponse{}, err
	}
	accounts, err := uc.accounts.FindByOwner(ctx, user.ID())
	if err != nil {
		return dtos.UserBalanceResponse{}, err
	}
	return dtos.ToUserBalanceResponse(user.ID().String(), accounts), nil
}
