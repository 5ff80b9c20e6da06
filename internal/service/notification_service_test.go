package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/engagement-backend/internal/config"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

func TestNotificationService_Notify(t *testing.T) {
	repo := new(mockNotificationRepo)
	pusher := new(mockPusher)
	svc := NewNotificationService(repo, pusher, config.NotifyConfig{Enabled: true})
	ctx := context.Background()
	userID := uuid.New()

	var saved *models.Notification
	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Notification) }).
		Return(nil)
	pusher.On("Push", userID, models.TemplateDeliverableApproved, mock.Anything).Return(nil)

	ok := svc.Notify(ctx, userID, models.TemplateDeliverableApproved, map[string]any{"version_number": 2})
	require.True(t, ok)
	require.NotNil(t, saved)
	assert.Equal(t, userID, saved.UserID)

	var payload struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(saved.Payload, &payload))
	assert.Equal(t, models.TemplateDeliverableApproved, payload.Event)
	assert.Equal(t, float64(2), payload.Data["version_number"])
	pusher.AssertExpectations(t)
}

func TestNotificationService_Notify_Disabled(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil, config.NotifyConfig{Enabled: false})

	assert.False(t, svc.Notify(context.Background(), uuid.New(), models.TemplatePaymentReleased, nil))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_Notify_RepositoryFailure(t *testing.T) {
	repo := new(mockNotificationRepo)
	pusher := new(mockPusher)
	svc := NewNotificationService(repo, pusher, config.NotifyConfig{Enabled: true})

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.False(t, svc.Notify(context.Background(), uuid.New(), models.TemplatePaymentRefunded, nil))
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_Notify_PushFailureStillDelivered(t *testing.T) {
	repo := new(mockNotificationRepo)
	pusher := new(mockPusher)
	svc := NewNotificationService(repo, pusher, config.NotifyConfig{Enabled: true})

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pusher.On("Push", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("hub stopped"))

	assert.True(t, svc.Notify(context.Background(), uuid.New(), models.TemplateRevisionRequested, nil))
}

func TestNotificationService_List(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil, config.NotifyConfig{Enabled: true})
	ctx := context.Background()
	userID := uuid.New()

	repo.On("List", ctx, userID, 20, 0, true).Return([]models.Notification{{ID: uuid.New()}}, 1, nil)

	items, total, err := svc.List(ctx, userID, 20, 0, true)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
}
