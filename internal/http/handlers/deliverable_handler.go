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

type deliverableService interface {
	Submit(ctx context.Context, principal models.Principal, engagementID uuid.UUID, input service.SubmitInput) (*models.DeliverableVersion, error)
	Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.DeliverableVersion, error)
	ListVersions(ctx context.Context, principal models.Principal, engagementID uuid.UUID) ([]models.DeliverableVersion, error)
	Compare(ctx context.Context, principal models.Principal, fromID, toID uuid.UUID) (*models.VersionComparison, error)
	Approve(ctx context.Context, principal models.Principal, id uuid.UUID, comment *string) (*models.DeliverableVersion, error)
	RequestRevision(ctx context.Context, principal models.Principal, id uuid.UUID, body string, priority *valueobject.Priority) (*models.DeliverableVersion, error)
	Reject(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.DeliverableVersion, error)
}

// DeliverableHandler обслуживает версии результатов и их ревью.
type DeliverableHandler struct {
	deliverables deliverableService
}

// NewDeliverableHandler создаёт новый хэндлер.
func NewDeliverableHandler(deliverables deliverableService) *DeliverableHandler {
	return &DeliverableHandler{deliverables: deliverables}
}

// SubmitDeliverable обрабатывает POST /engagements/:id/deliverables (multipart/form-data).
// Поля: file, title, description, change_notes.
func (h *DeliverableHandler) SubmitDeliverable(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	engagementID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "файл обязателен")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	version, err := h.deliverables.Submit(c.Request.Context(), principal, engagementID, service.SubmitInput{
		Title:       c.PostForm("title"),
		Description: optionalForm(c, "description"),
		ChangeNotes: optionalForm(c, "change_notes"),
		FileName:    header.Filename,
		Content:     file,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, "версия загружена", version)
}

// ListDeliverables обрабатывает GET /engagements/:id/deliverables.
func (h *DeliverableHandler) ListDeliverables(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	engagementID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	versions, err := h.deliverables.ListVersions(c.Request.Context(), principal, engagementID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if versions == nil {
		versions = []models.DeliverableVersion{}
	}

	response.Success(c, "", versions)
}

// GetDeliverable обрабатывает GET /deliverables/:id.
func (h *DeliverableHandler) GetDeliverable(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	version, err := h.deliverables.Get(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "", version)
}

// CompareDeliverables обрабатывает GET /deliverables/compare?a=&b=.
func (h *DeliverableHandler) CompareDeliverables(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	fromID, ok := common.ParseUUIDQuery(c, "a")
	if !ok {
		return
	}
	toID, ok := common.ParseUUIDQuery(c, "b")
	if !ok {
		return
	}

	comparison, err := h.deliverables.Compare(c.Request.Context(), principal, fromID, toID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "", comparison)
}

// ApproveDeliverable обрабатывает POST /deliverables/:id/approve.
func (h *DeliverableHandler) ApproveDeliverable(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Comment *string `json:"comment"`
	}
	if !common.BindOptionalJSON(c, &req) {
		return
	}

	version, err := h.deliverables.Approve(c.Request.Context(), principal, id, req.Comment)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "версия принята", version)
}

// RequestRevision обрабатывает POST /deliverables/:id/request-revision.
func (h *DeliverableHandler) RequestRevision(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body     string                `json:"body" binding:"required"`
		Priority *valueobject.Priority `json:"priority"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	version, err := h.deliverables.RequestRevision(c.Request.Context(), principal, id, req.Body, req.Priority)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "запрошена доработка", version)
}

// RejectDeliverable обрабатывает POST /deliverables/:id/reject.
func (h *DeliverableHandler) RejectDeliverable(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	version, err := h.deliverables.Reject(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "версия отклонена", version)
}

// optionalForm возвращает nil, если поле формы не передано.
func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}
