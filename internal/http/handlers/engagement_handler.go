package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/http/handlers/common"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/service"
)

type engagementService interface {
	Create(ctx context.Context, principal models.Principal, input service.CreateEngagementInput) (*models.Engagement, error)
	Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error)
	ListMine(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error)
	AssignFreelancer(ctx context.Context, principal models.Principal, id, freelancerID uuid.UUID) (*models.Engagement, error)
	MarkStarted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error)
	MarkCompleted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error)
	Cancel(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.Engagement, error)
}

// EngagementHandler обслуживает маршруты проектов.
type EngagementHandler struct {
	engagements engagementService
}

// NewEngagementHandler создаёт новый хэндлер.
func NewEngagementHandler(engagements engagementService) *EngagementHandler {
	return &EngagementHandler{engagements: engagements}
}

// CreateEngagement обрабатывает POST /engagements.
func (h *EngagementHandler) CreateEngagement(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	var req struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Budget      decimal.Decimal `json:"budget"`
		Currency    string          `json:"currency" binding:"required"`
		Deadline    *time.Time      `json:"deadline"`
		IsSensitive bool            `json:"is_sensitive"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	engagement, err := h.engagements.Create(c.Request.Context(), principal, service.CreateEngagementInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Currency:    req.Currency,
		Deadline:    req.Deadline,
		IsSensitive: req.IsSensitive,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, "проект создан", engagement)
}

// ListMyEngagements обрабатывает GET /engagements/my.
func (h *EngagementHandler) ListMyEngagements(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	page := common.GetPagination(c)
	items, total, err := h.engagements.ListMine(c.Request.Context(), principal, page.Limit(), page.Offset())
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Paginated(c, items, page.Page, page.PerPage, total)
}

// GetEngagement обрабатывает GET /engagements/:id.
func (h *EngagementHandler) GetEngagement(c *gin.Context) {
	h.withEngagement(c, func(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, string, error) {
		engagement, err := h.engagements.Get(ctx, principal, id)
		return engagement, "", err
	})
}

// AssignFreelancer обрабатывает POST /engagements/:id/assign.
func (h *EngagementHandler) AssignFreelancer(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FreelancerID uuid.UUID `json:"freelancer_id"`
	}
	if !common.BindJSON(c, &req) {
		return
	}
	if req.FreelancerID == uuid.Nil {
		response.BadRequest(c, "freelancer_id обязателен")
		return
	}

	engagement, err := h.engagements.AssignFreelancer(c.Request.Context(), principal, id, req.FreelancerID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "фрилансер назначен", engagement)
}

// StartEngagement обрабатывает POST /engagements/:id/start.
func (h *EngagementHandler) StartEngagement(c *gin.Context) {
	h.withEngagement(c, func(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, string, error) {
		engagement, err := h.engagements.MarkStarted(ctx, principal, id)
		return engagement, "работа начата", err
	})
}

// CompleteEngagement обрабатывает POST /engagements/:id/complete.
func (h *EngagementHandler) CompleteEngagement(c *gin.Context) {
	h.withEngagement(c, func(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, string, error) {
		engagement, err := h.engagements.MarkCompleted(ctx, principal, id)
		return engagement, "проект завершён", err
	})
}

// CancelEngagement обрабатывает POST /engagements/:id/cancel.
func (h *EngagementHandler) CancelEngagement(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !common.BindOptionalJSON(c, &req) {
		return
	}

	engagement, err := h.engagements.Cancel(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "проект отменён", engagement)
}

type engagementAction func(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, string, error)

// withEngagement обслуживает действия над проектом без тела запроса.
func (h *EngagementHandler) withEngagement(c *gin.Context, action engagementAction) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	engagement, message, err := action(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, message, engagement)
}
