package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/http/handlers/common"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/repository"
)

type portfolioService interface {
	ListForFreelancer(ctx context.Context, viewer *models.Principal, freelancerID uuid.UUID, limit, offset int) ([]models.PortfolioItem, int, error)
	Update(ctx context.Context, principal models.Principal, id uuid.UUID, update repository.PortfolioUpdate) (*models.PortfolioItem, error)
}

// PortfolioHandler обслуживает маршруты портфолио.
type PortfolioHandler struct {
	portfolio portfolioService
}

// NewPortfolioHandler создаёт новый хэндлер.
func NewPortfolioHandler(portfolio portfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// ListFreelancerPortfolio обрабатывает GET /users/:id/portfolio.
// Анонимный посетитель видит только опубликованные работы.
func (h *PortfolioHandler) ListFreelancerPortfolio(c *gin.Context) {
	freelancerID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	page := common.GetPagination(c)
	items, total, err := h.portfolio.ListForFreelancer(c.Request.Context(), common.OptionalPrincipal(c), freelancerID, page.Limit(), page.Offset())
	if err != nil {
		common.Fail(c, err)
		return
	}
	if items == nil {
		items = []models.PortfolioItem{}
	}

	response.Paginated(c, items, page.Page, page.PerPage, total)
}

// UpdatePortfolioItem обрабатывает PATCH /portfolio/:id.
func (h *PortfolioHandler) UpdatePortfolioItem(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsVisible  *bool `json:"is_visible"`
		IsFeatured *bool `json:"is_featured"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	item, err := h.portfolio.Update(c.Request.Context(), principal, id, repository.PortfolioUpdate{
		IsVisible:  req.IsVisible,
		IsFeatured: req.IsFeatured,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "работа обновлена", item)
}
