// Package handlers - User HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/adapters/http/common"
	"github.com/nissmart/ledger/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// CreateUserUseCase - интерфейс для регистрации пользователя.
// Write-операция, требует Idempotency-Key.
type CreateUserUseCase interface {
	Execute(ctx context.Context, idempotencyKey string, cmd dtos.CreateUserCommand) (dtos.LedgerResult, error)
}

// GetUserUseCase - интерфейс для получения пользователя (query).
type GetUserUseCase interface {
	Execute(ctx context.Context, userID string) (dtos.UserResponse, error)
}

// ListUsersUseCase - интерфейс для получения списка пользователей.
type ListUsersUseCase interface {
	Execute(ctx context.Context, query dtos.ListUsersQuery) (dtos.UserListResponse, error)
}

// ============================================
// User Handler
// ============================================

// UserHandler обрабатывает HTTP запросы для пользователей.
//
// Pattern: Adapter (Hexagonal Architecture)
// - Преобразует HTTP запросы в Use Case вызовы
// - Преобразует результаты в HTTP ответы
type UserHandler struct {
	createUser CreateUserUseCase
	getUser    GetUserUseCase
	listUsers  ListUsersUseCase
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(
	createUser CreateUserUseCase,
	getUser GetUserUseCase,
	listUsers ListUsersUseCase,
) *UserHandler {
	return &UserHandler{
		createUser: createUser,
		getUser:    getUser,
		listUsers:  listUsers,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// CreateUserRequest - запрос на регистрацию пользователя.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,min=1,max=255"`
}

// UserIDParam - параметр ID пользователя из URL.
type UserIDParam struct {
	ID string `uri:"id" binding:"required"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateUser регистрирует нового пользователя.
//
// POST /api/users
// Повтор с тем же Idempotency-Key и телом возвращает исходный ответ
// байт-в-байт; повтор с другим телом - 409.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.CreateUserCommand{
		Email:    req.Email,
		FullName: req.FullName,
	}

	result, err := h.createUser.Execute(c.Request.Context(), IdempotencyKey(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Replay(c, result)
}

// GetUser возвращает пользователя по ID.
//
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	var params UserIDParam
	if !BindURI(c, &params) {
		return
	}

	if _, err := uuid.Parse(params.ID); err != nil {
		common.BadRequestResponse(c, "id: invalid UUID format")
		return
	}

	result, err := h.getUser.Execute(c.Request.Context(), params.ID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUsers возвращает список пользователей с limit/offset пагинацией.
//
// GET /api/users?limit&offset
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := ParsePage(c)

	query := dtos.ListUsersQuery{
		Offset: page.Offset,
		Limit:  page.Limit,
	}

	result, err := h.listUsers.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для UserHandler.
//
// Routes:
// - POST   /users      - Register user
// - GET    /users      - List users
// - GET    /users/:id  - Get user by ID
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
	}
}
