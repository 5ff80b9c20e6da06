package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/http/handlers/common"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

type notificationService interface {
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	notifications notificationService
}

// NewNotificationHandler создаёт новый хэндлер.
func NewNotificationHandler(notifications notificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications обрабатывает GET /notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	page := common.GetPagination(c)
	unreadOnly := common.ParseBoolQuery(c, "unread_only", false)

	items, total, err := h.notifications.List(c.Request.Context(), principal.ID, page.Limit(), page.Offset(), unreadOnly)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	response.Paginated(c, items, page.Page, page.PerPage, total)
}

// MarkAsRead обрабатывает PUT /notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), principal.ID, id); err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "уведомление отмечено как прочитанное", nil)
}

// MarkAllAsRead обрабатывает PUT /notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllAsRead(c.Request.Context(), principal.ID); err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "все уведомления отмечены как прочитанные", nil)
}

// CountUnread обрабатывает GET /notifications/unread/count.
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), principal.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "", gin.H{"count": count})
}
