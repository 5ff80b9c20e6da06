package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

const (
	versionNumberConstraint = "deliverable_versions_engagement_version_key"
	maxVersionAttempts      = 5
)

// DeliverableRepository хранит версии результатов работы.
type DeliverableRepository struct {
	db *sqlx.DB
}

// NewDeliverableRepository создаёт экземпляр репозитория.
func NewDeliverableRepository(db *sqlx.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

// EngagementGuard проверяет заблокированный проект перед вставкой версии.
type EngagementGuard func(engagement *models.Engagement) error

// ReviewParams описывает изменение статуса версии при ревью.
type ReviewParams struct {
	VersionID      uuid.UUID
	From           []valueobject.DeliverableStatus
	To             valueobject.DeliverableStatus
	ReviewerID     uuid.UUID
	RecordReviewer bool
	Feedback       *models.FeedbackItem
}

// Submit сохраняет новую версию с номером MAX+1.
// Строка проекта блокируется на время транзакции, поэтому параллельные загрузки
// получают номера по очереди. Конфликт уникального ключа повторяется.
func (r *DeliverableRepository) Submit(ctx context.Context, version *models.DeliverableVersion, guard EngagementGuard) error {
	insert := `
		INSERT INTO deliverable_versions (
			engagement_id, version_number, uploader_id, file_url, content_id, byte_size,
			media_kind, title, description, change_notes, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending')
		RETURNING *
	`

	for attempt := 1; ; attempt++ {
		err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
			engagement, err := common.LockByID[models.Engagement](ctx, tx, common.TableEngagements, version.EngagementID, apperror.ErrEngagementNotFound)
			if err != nil {
				return err
			}
			if guard != nil {
				if err := guard(engagement); err != nil {
					return err
				}
			}

			var next int
			if err := tx.GetContext(ctx, &next,
				`SELECT COALESCE(MAX(version_number), 0) + 1 FROM deliverable_versions WHERE engagement_id = $1`,
				version.EngagementID,
			); err != nil {
				return fmt.Errorf("next version number: %w", err)
			}

			return tx.GetContext(ctx, version, insert,
				version.EngagementID,
				next,
				version.UploaderID,
				version.FileURL,
				version.ContentID,
				version.ByteSize,
				version.MediaKind,
				version.Title,
				version.Description,
				version.ChangeNotes,
			)
		})
		if err == nil {
			return nil
		}
		if common.IsUniqueViolation(err, versionNumberConstraint) && attempt < maxVersionAttempts {
			continue
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("deliverable repository: submit %w", err)
	}
}

// GetByID возвращает версию по идентификатору.
func (r *DeliverableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DeliverableVersion, error) {
	return common.GetByID[models.DeliverableVersion](ctx, r.db, common.TableDeliverables, id, apperror.ErrDeliverableNotFound)
}

// ListByEngagement возвращает версии проекта по возрастанию номера.
func (r *DeliverableRepository) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.DeliverableVersion, error) {
	versions := []models.DeliverableVersion{}
	if err := r.db.SelectContext(ctx, &versions,
		`SELECT * FROM deliverable_versions WHERE engagement_id = $1 ORDER BY version_number ASC`,
		engagementID,
	); err != nil {
		return nil, fmt.Errorf("deliverable repository: list %w", err)
	}

	return versions, nil
}

// Review меняет статус версии и, если задан Feedback, создаёт комментарий в той же транзакции.
func (r *DeliverableRepository) Review(ctx context.Context, params ReviewParams) (*models.DeliverableVersion, error) {
	query := `
		UPDATE deliverable_versions SET
			status = $2,
			reviewer_id = CASE WHEN $4 THEN $3 ELSE reviewer_id END,
			reviewed_at = CASE WHEN $4 THEN NOW() ELSE reviewed_at END
		WHERE id = $1 AND status = ANY($5)
		RETURNING *
	`

	from := make([]string, 0, len(params.From))
	for _, s := range params.From {
		from = append(from, string(s))
	}

	var version models.DeliverableVersion
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &version, query,
			params.VersionID, string(params.To), params.ReviewerID, params.RecordReviewer, pq.Array(from),
		)
		if errors.Is(err, sql.ErrNoRows) {
			current, getErr := common.GetByID[models.DeliverableVersion](ctx, tx, common.TableDeliverables, params.VersionID, apperror.ErrDeliverableNotFound)
			if getErr != nil {
				return getErr
			}
			return apperror.InvalidTransition(
				fmt.Sprintf("нельзя перевести версию из статуса %s в %s", current.Status, params.To),
			)
		}
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if params.Feedback == nil {
			return nil
		}
		params.Feedback.DeliverableID = version.ID
		return insertFeedback(ctx, tx, params.Feedback)
	})
	if err != nil {
		if common.IsCheckViolation(err) {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные данные отзыва")
		}
		return nil, err
	}

	return &version, nil
}
