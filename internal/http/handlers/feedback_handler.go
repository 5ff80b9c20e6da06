package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/http/handlers/common"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/service"
)

type feedbackService interface {
	Post(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, input service.PostFeedbackInput) (*models.FeedbackItem, error)
	Resolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error)
	Unresolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error)
	List(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, includeResolved bool, limit, offset int) (*models.FeedbackThreadPage, error)
}

// FeedbackHandler обслуживает обсуждение версий.
type FeedbackHandler struct {
	feedback feedbackService
}

// NewFeedbackHandler создаёт новый хэндлер.
func NewFeedbackHandler(feedback feedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// feedbackPage дополняет страницу числом нерешённых комментариев версии.
type feedbackPage struct {
	response.Page
	UnresolvedCount int `json:"unresolved_count"`
}

// PostFeedback обрабатывает POST /deliverables/:id/feedback.
func (h *FeedbackHandler) PostFeedback(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	deliverableID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Kind     valueobject.FeedbackKind `json:"kind"`
		Body     string                   `json:"body" binding:"required"`
		Priority *valueobject.Priority    `json:"priority"`
		ParentID *uuid.UUID               `json:"parent_id"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	item, err := h.feedback.Post(c.Request.Context(), principal, deliverableID, service.PostFeedbackInput{
		Kind:     req.Kind,
		Body:     req.Body,
		Priority: req.Priority,
		ParentID: req.ParentID,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, "комментарий добавлен", item)
}

// ListFeedback обрабатывает GET /deliverables/:id/feedback?include_resolved=&page=&per_page=.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	deliverableID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	page := common.GetPagination(c)
	includeResolved := common.ParseBoolQuery(c, "include_resolved", false)

	thread, err := h.feedback.List(c.Request.Context(), principal, deliverableID, includeResolved, page.Limit(), page.Offset())
	if err != nil {
		common.Fail(c, err)
		return
	}

	items := thread.Items
	if items == nil {
		items = []models.FeedbackItem{}
	}
	response.Success(c, "", feedbackPage{
		Page: response.Page{
			Items:      items,
			Pagination: response.NewPagination(page.Page, page.PerPage, thread.TotalItems),
		},
		UnresolvedCount: thread.UnresolvedCount,
	})
}

// ResolveFeedback обрабатывает POST /feedback/:id/resolve.
func (h *FeedbackHandler) ResolveFeedback(c *gin.Context) {
	h.setResolved(c, true)
}

// UnresolveFeedback обрабатывает POST /feedback/:id/unresolve.
func (h *FeedbackHandler) UnresolveFeedback(c *gin.Context) {
	h.setResolved(c, false)
}

func (h *FeedbackHandler) setResolved(c *gin.Context, resolved bool) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var (
		item    *models.FeedbackItem
		err     error
		message string
	)
	if resolved {
		item, err = h.feedback.Resolve(c.Request.Context(), principal, id)
		message = "комментарий решён"
	} else {
		item, err = h.feedback.Unresolve(c.Request.Context(), principal, id)
		message = "комментарий переоткрыт"
	}
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, message, item)
}
