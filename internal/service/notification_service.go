package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/config"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

// Notifier доставляет уведомление получателю по принципу fire-and-forget.
// Возвращает false, если уведомление не было доставлено; ошибки не пробрасываются.
type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, template string, data map[string]any) bool
}

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Pusher отправляет событие подключённым клиентам пользователя.
type Pusher interface {
	Push(userID uuid.UUID, event string, data any) error
}

// NotificationService сохраняет уведомления и отправляет их через WebSocket.
type NotificationService struct {
	repo    NotificationRepository
	pusher  Pusher
	enabled bool
}

// NewNotificationService создаёт новый сервис уведомлений. pusher может быть nil.
func NewNotificationService(repo NotificationRepository, pusher Pusher, cfg config.NotifyConfig) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher, enabled: cfg.Enabled}
}

// Notify сохраняет уведомление и, если получатель подключён, отправляет его сразу.
func (s *NotificationService) Notify(ctx context.Context, recipient uuid.UUID, template string, data map[string]any) bool {
	if !s.enabled {
		return false
	}

	log := logger.Entry(logrus.Fields{"recipient": recipient, "template": template})

	payload, err := json.Marshal(map[string]any{
		"event": template,
		"data":  data,
	})
	if err != nil {
		log.WithError(err).Warn("notification: не удалось сериализовать данные")
		return false
	}

	notification := &models.Notification{UserID: recipient, Payload: payload}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.WithError(err).Warn("notification: не удалось сохранить уведомление")
		return false
	}

	if s.pusher != nil {
		if err := s.pusher.Push(recipient, template, notification); err != nil {
			log.WithError(err).Warn("notification: не удалось отправить через websocket")
		}
	}

	return true
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error) {
	items, total, err := s.repo.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("notification service: list %w", err)
	}
	return items, total, nil
}

// MarkAsRead отмечает уведомление как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead отмечает все уведомления как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
