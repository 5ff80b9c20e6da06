package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

// FeedbackRepository хранит комментарии к версиям результатов.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository создаёт экземпляр репозитория.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func insertFeedback(ctx context.Context, q sqlx.QueryerContext, item *models.FeedbackItem) error {
	query := `
		INSERT INTO feedback_items (deliverable_id, author_id, parent_id, kind, body, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`

	if err := sqlx.GetContext(ctx, q, item, query,
		item.DeliverableID,
		item.AuthorID,
		item.ParentID,
		item.Kind,
		item.Body,
		item.Priority,
	); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	return nil
}

// Create сохраняет комментарий. Родитель, если указан, должен относиться к той же версии.
func (r *FeedbackRepository) Create(ctx context.Context, item *models.FeedbackItem) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if item.ParentID != nil {
			var parentDeliverable uuid.UUID
			err := tx.GetContext(ctx, &parentDeliverable,
				`SELECT deliverable_id FROM feedback_items WHERE id = $1`, *item.ParentID)
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrUnknownParent
			}
			if err != nil {
				return fmt.Errorf("feedback repository: parent lookup %w", err)
			}
			if parentDeliverable != item.DeliverableID {
				return apperror.ErrUnknownParent
			}
		}

		return insertFeedback(ctx, tx, item)
	})
}

// GetByID возвращает комментарий по идентификатору.
func (r *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackItem, error) {
	return common.GetByID[models.FeedbackItem](ctx, r.db, common.TableFeedback, id, apperror.ErrFeedbackNotFound)
}

// SetResolved выставляет или снимает отметку о решении. Повторный вызов ничего не меняет.
func (r *FeedbackRepository) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.FeedbackItem, error) {
	query := `
		UPDATE feedback_items SET
			is_resolved = $2,
			resolved_at = CASE WHEN $2 THEN COALESCE(resolved_at, NOW()) ELSE NULL END
		WHERE id = $1
		RETURNING *
	`

	var item models.FeedbackItem
	if err := r.db.GetContext(ctx, &item, query, id, resolved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("feedback repository: set resolved %w", err)
	}

	return &item, nil
}

// ListThread возвращает страницу верхнеуровневых комментариев (новые сверху)
// с прямыми ответами (старые сверху). Более глубокие ответы не выбираются.
func (r *FeedbackRepository) ListThread(ctx context.Context, deliverableID uuid.UUID, includeResolved bool, limit, offset int) ([]models.FeedbackItem, int, error) {
	filter := ""
	if !includeResolved {
		filter = " AND is_resolved = FALSE"
	}

	top, total, err := common.ListPage[models.FeedbackItem](ctx, r.db, common.PageQuery{
		Table:   common.TableFeedback,
		Where:   "deliverable_id = $1 AND parent_id IS NULL" + filter,
		Args:    []interface{}{deliverableID},
		OrderBy: "created_at DESC, id DESC",
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("feedback repository: list top level %w", err)
	}
	if len(top) == 0 {
		return top, total, nil
	}

	parentIDs := make([]string, 0, len(top))
	for _, item := range top {
		parentIDs = append(parentIDs, item.ID.String())
	}

	replies := []models.FeedbackItem{}
	if err := r.db.SelectContext(ctx, &replies,
		`SELECT * FROM feedback_items WHERE parent_id = ANY($1)`+filter+` ORDER BY created_at ASC, id ASC`,
		pq.Array(parentIDs),
	); err != nil {
		return nil, 0, fmt.Errorf("feedback repository: list replies %w", err)
	}

	byParent := make(map[uuid.UUID][]models.FeedbackItem, len(top))
	for _, reply := range replies {
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
	}
	for i := range top {
		top[i].Replies = byParent[top[i].ID]
	}

	return top, total, nil
}

// CountUnresolved считает нерешённые комментарии версии отдельным запросом.
func (r *FeedbackRepository) CountUnresolved(ctx context.Context, deliverableID uuid.UUID) (int, error) {
	count, err := common.Count(ctx, r.db,
		`SELECT COUNT(*) FROM feedback_items WHERE deliverable_id = $1 AND is_resolved = FALSE`,
		deliverableID,
	)
	if err != nil {
		return 0, fmt.Errorf("feedback repository: count unresolved %w", err)
	}
	return count, nil
}
