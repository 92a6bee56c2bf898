// Package handlers - Admin dashboard HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nissmart/ledger/internal/adapters/http/common"
	"github.com/nissmart/ledger/internal/application/dtos"
)

// AdminSummaryUseCase - интерфейс сводки для админ-дашборда.
type AdminSummaryUseCase interface {
	Execute(ctx context.Context) (dtos.AdminSummaryResponse, error)
}

// AdminHandler обрабатывает HTTP запросы админ-дашборда.
type AdminHandler struct {
	summary AdminSummaryUseCase
}

// NewAdminHandler создаёт новый AdminHandler.
func NewAdminHandler(summary AdminSummaryUseCase) *AdminHandler {
	return &AdminHandler{summary: summary}
}

// Summary возвращает агрегированную сводку по платформе.
//
// GET /api/dashboard/admin
func (h *AdminHandler) Summary(c *gin.Context) {
	result, err := h.summary.Execute(c.Request.Context())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для AdminHandler.
//
// Routes:
// - GET /dashboard/admin - Platform summary
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard/admin", h.Summary)
}
