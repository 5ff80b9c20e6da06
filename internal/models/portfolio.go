package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PortfolioItem описывает работу в портфолио, созданную по завершённому проекту.
type PortfolioItem struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	FreelancerID  uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	EngagementID  uuid.UUID      `db:"engagement_id" json:"engagement_id"`
	DeliverableID *uuid.UUID     `db:"deliverable_id" json:"deliverable_id,omitempty"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	CoverURL      *string        `db:"cover_url" json:"cover_url,omitempty"`
	Tags          pq.StringArray `db:"tags" json:"tags"`
	IsVisible     bool           `db:"is_visible" json:"is_visible"`
	IsFeatured    bool           `db:"is_featured" json:"is_featured"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}
