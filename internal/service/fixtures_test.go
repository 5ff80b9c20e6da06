package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

func clientPrincipal(id uuid.UUID) models.Principal {
	return models.Principal{ID: id, Role: models.RoleClient}
}

func freelancerPrincipal(id uuid.UUID) models.Principal {
	return models.Principal{ID: id, Role: models.RoleFreelancer}
}

func adminPrincipal() models.Principal {
	return models.Principal{ID: uuid.New(), Role: models.RoleAdmin}
}

func newEngagement(clientID uuid.UUID, freelancerID *uuid.UUID, status valueobject.EngagementStatus) *models.Engagement {
	return &models.Engagement{
		ID:            uuid.New(),
		ClientID:      clientID,
		FreelancerID:  freelancerID,
		Title:         "Фирменный стиль",
		Budget:        decimal.RequireFromString("500.00"),
		Currency:      "USD",
		Status:        status,
		PaymentStatus: valueobject.PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
	}
}

func newVersion(engagementID, uploaderID uuid.UUID, number int, status valueobject.DeliverableStatus) *models.DeliverableVersion {
	return &models.DeliverableVersion{
		ID:            uuid.New(),
		EngagementID:  engagementID,
		VersionNumber: number,
		UploaderID:    uploaderID,
		FileURL:       "/files/v.png",
		ContentID:     "v.png",
		MediaKind:     "image",
		Title:         "Макет",
		Status:        status,
		CreatedAt:     time.Now(),
	}
}
