package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/errors"
)

// GetUserUseCase возвращает пользователя по ID.
type GetUserUseCase struct {
	users ports.UserRepository
}

// NewGetUserUseCase создаёт новый use case.
func NewGetUserUseCase(users ports.UserRepository) *GetUserUseCase {
	return &GetUserUseCase{users: users}
}

// Execute загружает пользователя.
func (uc *GetUserUseCase) Execute(ctx context.Context, userID string) (dtos.UserResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return dtos.UserResponse{}, errors.ValidationError{Field: "id", Message: "invalid UUID"}
	}
	user, err := uc.users.FindByID(ctx, uid)
	if err != nil {
		return dtos.UserResponse{}, err
	}
	return dtos.ToUserResponse(user), nil
}
