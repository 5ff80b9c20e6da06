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

// PortfolioRepository отвечает за работу с портфолио.
type PortfolioRepository struct {
	db *sqlx.DB
}

// NewPortfolioRepository создаёт экземпляр репозитория.
func NewPortfolioRepository(db *sqlx.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// PortfolioUpdate описывает изменяемые владельцем флаги.
type PortfolioUpdate struct {
	IsVisible  *bool
	IsFeatured *bool
}

// GenerateForEngagement создаёт работу портфолио по завершённому проекту.
// Проверка условий и вставка выполняются под блокировкой строки проекта;
// дубликат отсекается ограничением portfolio_items_engagement_key.
// Возвращает nil, false, nil если проект не подходит или работа уже есть.
func (r *PortfolioRepository) GenerateForEngagement(ctx context.Context, engagementID uuid.UUID) (*models.PortfolioItem, bool, error) {
	insert := `
		INSERT INTO portfolio_items (freelancer_id, engagement_id, deliverable_id, title, description, cover_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (engagement_id) DO NOTHING
		RETURNING *
	`

	var item *models.PortfolioItem
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		engagement, err := common.LockByID[models.Engagement](ctx, tx, common.TableEngagements, engagementID, apperror.ErrEngagementNotFound)
		if err != nil {
			return err
		}
		if !engagement.PortfolioEligible() {
			return nil
		}

		var latest models.DeliverableVersion
		err = tx.GetContext(ctx, &latest, `
			SELECT * FROM deliverable_versions
			WHERE engagement_id = $1 AND status = 'approved'
			ORDER BY version_number DESC
			LIMIT 1
		`, engagementID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("latest approved version: %w", err)
		}

		var description *string
		if engagement.Description != "" {
			description = &engagement.Description
		}
		tags := []string{}
		if latest.MediaKind != "" {
			tags = append(tags, latest.MediaKind)
		}

		rows, err := tx.QueryxContext(ctx, insert,
			*engagement.FreelancerID,
			engagement.ID,
			latest.ID,
			engagement.Title,
			description,
			latest.FileURL,
			pq.Array(tags),
		)
		if err != nil {
			return fmt.Errorf("insert portfolio item: %w", err)
		}
		defer rows.Close()

		if rows.Next() {
			item = &models.PortfolioItem{}
			if err := rows.StructScan(item); err != nil {
				return fmt.Errorf("scan portfolio item: %w", err)
			}
		}
		return rows.Err()
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("portfolio repository: generate %w", err)
	}

	return item, item != nil, nil
}

// GetByID возвращает работу портфолио по идентификатору.
func (r *PortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error) {
	return common.GetByID[models.PortfolioItem](ctx, r.db, common.TablePortfolio, id, apperror.ErrPortfolioNotFound)
}

// CountByEngagement возвращает число работ портфолио по проекту.
func (r *PortfolioRepository) CountByEngagement(ctx context.Context, engagementID uuid.UUID) (int, error) {
	return common.Count(ctx, r.db, `SELECT COUNT(*) FROM portfolio_items WHERE engagement_id = $1`, engagementID)
}

// ListByFreelancer возвращает работы фрилансера. Скрытые работы видны только владельцу.
func (r *PortfolioRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, includeHidden bool, limit, offset int) ([]models.PortfolioItem, int, error) {
	where := "freelancer_id = $1"
	if !includeHidden {
		where += " AND is_visible = TRUE"
	}

	items, total, err := common.ListPage[models.PortfolioItem](ctx, r.db, common.PageQuery{
		Table:   common.TablePortfolio,
		Where:   where,
		Args:    []interface{}{freelancerID},
		OrderBy: "is_featured DESC, created_at DESC",
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("portfolio repository: list %w", err)
	}

	return items, total, nil
}

// Update меняет флаги видимости и избранного.
func (r *PortfolioRepository) Update(ctx context.Context, id uuid.UUID, update PortfolioUpdate) (*models.PortfolioItem, error) {
	query := `
		UPDATE portfolio_items SET
			is_visible = COALESCE($2, is_visible),
			is_featured = COALESCE($3, is_featured),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`

	var item models.PortfolioItem
	if err := r.db.GetContext(ctx, &item, query, id, update.IsVisible, update.IsFeatured); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("portfolio repository: update %w", err)
	}

	return &item, nil
}
