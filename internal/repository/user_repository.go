package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

// UserRepository читает пользователей в объёме, нужном для назначения исполнителя.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, common.TableUsers, id, apperror.ErrUserNotFound)
}

// IsAvailable сообщает, может ли фрилансер взять новый проект.
func (r *UserRepository) IsAvailable(ctx context.Context, freelancerID uuid.UUID) (bool, error) {
	user, err := r.GetByID(ctx, freelancerID)
	if err != nil {
		return false, err
	}
	if user.Role != models.RoleFreelancer {
		return false, apperror.Validation(fmt.Sprintf("пользователь %s не является фрилансером", freelancerID))
	}

	return user.IsAvailable, nil
}
