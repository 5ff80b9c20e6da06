package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
)

// UploadedContent описывает результат загрузки в хранилище.
type UploadedContent struct {
	URL       string `json:"url"`
	ContentID string `json:"content_id"`
	ByteSize  *int64 `json:"byte_size,omitempty"`
	MediaKind string `json:"media_kind"`
}

// DeliverableVersion описывает одну пронумерованную сдачу работы по проекту.
type DeliverableVersion struct {
	ID            uuid.UUID                     `db:"id" json:"id"`
	EngagementID  uuid.UUID                     `db:"engagement_id" json:"engagement_id"`
	VersionNumber int                           `db:"version_number" json:"version_number"`
	UploaderID    uuid.UUID                     `db:"uploader_id" json:"uploader_id"`
	FileURL       string                        `db:"file_url" json:"file_url"`
	ContentID     string                        `db:"content_id" json:"content_id"`
	ByteSize      *int64                        `db:"byte_size" json:"byte_size,omitempty"`
	MediaKind     string                        `db:"media_kind" json:"media_kind"`
	Title         string                        `db:"title" json:"title"`
	Description   *string                       `db:"description" json:"description,omitempty"`
	ChangeNotes   *string                       `db:"change_notes" json:"change_notes,omitempty"`
	Status        valueobject.DeliverableStatus `db:"status" json:"status"`
	ReviewerID    *uuid.UUID                    `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time                    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time                     `db:"created_at" json:"created_at"`
}

// VersionComparison описывает разницу между двумя версиями одного проекта.
type VersionComparison struct {
	From           *DeliverableVersion `json:"from"`
	To             *DeliverableVersion `json:"to"`
	VersionDelta   int                 `json:"version_delta"`
	ElapsedDelta   time.Duration       `json:"-"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	SizeDelta      *int64              `json:"size_delta"`
	StatusChanged  bool                `json:"status_changed"`
}
