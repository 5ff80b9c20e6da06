package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Шаблоны уведомлений.
const (
	TemplateDeliverableSubmitted = "deliverable_submitted"
	TemplateDeliverableApproved  = "deliverable_approved"
	TemplateRevisionRequested    = "revision_requested"
	TemplateDeliverableRejected  = "deliverable_rejected"
	TemplatePortfolioCreated     = "portfolio_item_created"
	TemplatePaymentReleased      = "payment_released"
	TemplatePaymentRefunded      = "payment_refunded"
)

// Notification описывает событие, отправленное пользователю.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
