// Package dtos - DTOs для передачи данных между HTTP-слоем и use cases.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// CreateUserCommand - команда для регистрации пользователя.
type CreateUserCommand struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
}

// CanonicalPayload возвращает поля команды для канонического хеширования.
func (c CreateUserCommand) CanonicalPayload() map[string]any {
	return map[string]any{
		"email":     c.Email,
		"full_name": c.FullName,
	}
}

// ============================================
// Queries (Read операции)
// ============================================

// ListUsersQuery - запрос списка пользователей с пагинацией.
type ListUsersQuery struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// UserResponse - представление пользователя в API.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse - страница пользователей.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Total int64          `json:"total"`
}
