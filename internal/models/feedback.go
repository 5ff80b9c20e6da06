package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
)

// FeedbackItem описывает комментарий к версии результата.
type FeedbackItem struct {
	ID            uuid.UUID                `db:"id" json:"id"`
	DeliverableID uuid.UUID                `db:"deliverable_id" json:"deliverable_id"`
	AuthorID      uuid.UUID                `db:"author_id" json:"author_id"`
	ParentID      *uuid.UUID               `db:"parent_id" json:"parent_id,omitempty"`
	Kind          valueobject.FeedbackKind `db:"kind" json:"kind"`
	Body          string                   `db:"body" json:"body"`
	Priority      *valueobject.Priority    `db:"priority" json:"priority,omitempty"`
	IsResolved    bool                     `db:"is_resolved" json:"is_resolved"`
	ResolvedAt    *time.Time               `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt     time.Time                `db:"created_at" json:"created_at"`
	Replies       []FeedbackItem           `db:"-" json:"replies,omitempty"`
}

// FeedbackThreadPage описывает страницу верхнеуровневых комментариев с ответами.
type FeedbackThreadPage struct {
	Items           []FeedbackItem `json:"items"`
	TotalItems      int            `json:"total_items"`
	UnresolvedCount int            `json:"unresolved_count"`
}
