package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

// EngagementRepository отвечает за хранение проектов.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository создаёт экземпляр репозитория.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// TransitionParams описывает условный переход статуса проекта.
type TransitionParams struct {
	From         []valueobject.EngagementStatus
	To           valueobject.EngagementStatus
	FreelancerID *uuid.UUID
	Reason       *string
}

// Create сохраняет новый проект.
func (r *EngagementRepository) Create(ctx context.Context, engagement *models.Engagement) error {
	query := `
		INSERT INTO engagements (client_id, title, description, budget, currency, deadline, is_sensitive)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`

	if err := r.db.GetContext(ctx, engagement, query,
		engagement.ClientID,
		engagement.Title,
		engagement.Description,
		engagement.Budget,
		engagement.Currency,
		engagement.Deadline,
		engagement.IsSensitive,
	); err != nil {
		return fmt.Errorf("engagement repository: create %w", err)
	}

	return nil
}

// GetByID возвращает проект по идентификатору.
func (r *EngagementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	return common.GetByID[models.Engagement](ctx, r.db, common.TableEngagements, id, apperror.ErrEngagementNotFound)
}

// ListForUser возвращает проекты, в которых участвует пользователь. Администратор видит все.
func (r *EngagementRepository) ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error) {
	where := ""
	args := []interface{}{}

	switch principal.Role {
	case models.RoleClient:
		where = "client_id = $1"
		args = append(args, principal.ID)
	case models.RoleFreelancer:
		where = "freelancer_id = $1"
		args = append(args, principal.ID)
	}

	engagements, total, err := common.ListPage[models.Engagement](ctx, r.db, common.PageQuery{
		Table:   common.TableEngagements,
		Where:   where,
		Args:    args,
		OrderBy: "created_at DESC",
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("engagement repository: list %w", err)
	}

	return engagements, total, nil
}

// Transition переводит проект в новый статус одним условным UPDATE.
// Если текущий статус не входит в From, строка не меняется.
func (r *EngagementRepository) Transition(ctx context.Context, id uuid.UUID, params TransitionParams) (*models.Engagement, error) {
	query := `
		UPDATE engagements SET
			status = $2::text,
			freelancer_id = COALESCE($3, freelancer_id),
			cancellation_reason = COALESCE($4, cancellation_reason),
			matched_at = CASE WHEN $2::text = 'matched' THEN NOW() ELSE matched_at END,
			started_at = CASE WHEN $2::text = 'in_progress' THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $2::text = 'completed' THEN NOW() ELSE completed_at END,
			cancelled_at = CASE WHEN $2::text = 'cancelled' THEN NOW() ELSE cancelled_at END,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING *
	`

	from := make([]string, 0, len(params.From))
	for _, s := range params.From {
		from = append(from, string(s))
	}

	rows, err := r.db.QueryxContext(ctx, query, id, string(params.To), params.FreelancerID, params.Reason, pq.Array(from))
	if err != nil {
		return nil, fmt.Errorf("engagement repository: transition %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var engagement models.Engagement
		if err := rows.StructScan(&engagement); err != nil {
			return nil, fmt.Errorf("engagement repository: transition scan %w", err)
		}
		return &engagement, nil
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("engagement repository: transition %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, apperror.InvalidTransition(
		fmt.Sprintf("нельзя перевести проект из статуса %s в %s", current.Status, params.To),
	)
}

