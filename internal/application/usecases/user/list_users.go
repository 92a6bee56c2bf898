package user

import (
	"context"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/ports"
)

// ListUsersUseCase возвращает страницу пользователей с общим количеством.
type ListUsersUseCase struct {
	users ports.UserRepository
}

// NewListUsersUseCase создаёт новый use case.
func NewListUsersUseCase(users ports.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

// Execute возвращает страницу пользователей.
func (uc *ListUsersUseCase) Execute(ctx context.Context, query dtos.ListUsersQuery) (dtos.UserListResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := uc.users.List(ctx, offset, limit)
	if err != nil {
		return dtos.UserListResponse{}, err
	}
	total, err := uc.users.Count(ctx)
	if err != nil {
		return dtos.UserListResponse{}, err
	}
	return dtos.UserListResponse{
		Items: dtos.ToUserResponseList(users),
		Total: total,
	}, nil
}
