package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
)

// Engagement описывает проект между клиентом и фрилансером.
type Engagement struct {
	ID                 uuid.UUID                    `db:"id" json:"id"`
	ClientID           uuid.UUID                    `db:"client_id" json:"client_id"`
	FreelancerID       *uuid.UUID                   `db:"freelancer_id" json:"freelancer_id,omitempty"`
	Title              string                       `db:"title" json:"title"`
	Description        string                       `db:"description" json:"description"`
	Budget             decimal.Decimal              `db:"budget" json:"budget"`
	Currency           string                       `db:"currency" json:"currency"`
	Deadline           *time.Time                   `db:"deadline" json:"deadline,omitempty"`
	IsSensitive        bool                         `db:"is_sensitive" json:"is_sensitive"`
	Status             valueobject.EngagementStatus `db:"status" json:"status"`
	PaymentStatus      valueobject.PaymentStatus    `db:"payment_status" json:"payment_status"`
	CancellationReason *string                      `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	MatchedAt          *time.Time                   `db:"matched_at" json:"matched_at,omitempty"`
	StartedAt          *time.Time                   `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time                   `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt        *time.Time                   `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time                    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `db:"updated_at" json:"updated_at"`
}

// IsParticipant сообщает, является ли пользователь клиентом или назначенным фрилансером.
func (e *Engagement) IsParticipant(userID uuid.UUID) bool {
	return e.ClientID == userID || e.IsAssignedFreelancer(userID)
}

// IsAssignedFreelancer сообщает, назначен ли пользователь исполнителем.
func (e *Engagement) IsAssignedFreelancer(userID uuid.UUID) bool {
	return e.FreelancerID != nil && *e.FreelancerID == userID
}

// PortfolioEligible проверяет условия автоматического создания работы в портфолио.
func (e *Engagement) PortfolioEligible() bool {
	return e.Status == valueobject.EngagementStatusCompleted && !e.IsSensitive && e.FreelancerID != nil
}
