package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository"
)

// PortfolioRepository описывает хранилище работ портфолио.
type PortfolioRepository interface {
	GenerateForEngagement(ctx context.Context, engagementID uuid.UUID) (*models.PortfolioItem, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, includeHidden bool, limit, offset int) ([]models.PortfolioItem, int, error)
	Update(ctx context.Context, id uuid.UUID, update repository.PortfolioUpdate) (*models.PortfolioItem, error)
}

// PortfolioGenerator создаёт работу портфолио по подходящему проекту.
type PortfolioGenerator interface {
	MaybeGenerate(ctx context.Context, engagementID uuid.UUID)
}

// PortfolioService создаёт и показывает работы портфолио.
type PortfolioService struct {
	repo     PortfolioRepository
	notifier Notifier
}

// NewPortfolioService создаёт сервис портфолио.
func NewPortfolioService(repo PortfolioRepository, notifier Notifier) *PortfolioService {
	return &PortfolioService{repo: repo, notifier: notifier}
}

// MaybeGenerate создаёт работу портфолио, если проект завершён, не помечен
// как конфиденциальный, имеет исполнителя и ещё не попал в портфолио.
// Ошибки только логируются.
func (s *PortfolioService) MaybeGenerate(ctx context.Context, engagementID uuid.UUID) {
	if _, _, err := s.Generate(ctx, engagementID); err != nil {
		logger.Entry(logrus.Fields{"engagement_id": engagementID}).
			WithError(err).
			Error("portfolio: не удалось создать работу портфолио")
	}
}

// Generate выполняет ту же проверку, что MaybeGenerate, но возвращает результат и ошибку.
func (s *PortfolioService) Generate(ctx context.Context, engagementID uuid.UUID) (*models.PortfolioItem, bool, error) {
	item, created, err := s.repo.GenerateForEngagement(ctx, engagementID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return nil, false, nil
	}

	logger.Entry(logrus.Fields{
		"engagement_id":     engagementID,
		"portfolio_item_id": item.ID,
		"freelancer_id":     item.FreelancerID,
	}).Info("portfolio: создана работа портфолио")

	if s.notifier != nil {
		s.notifier.Notify(ctx, item.FreelancerID, models.TemplatePortfolioCreated, map[string]any{
			"portfolio_item_id": item.ID,
			"engagement_id":     engagementID,
			"title":             item.Title,
		})
	}

	return item, true, nil
}

// ListForFreelancer возвращает портфолио фрилансера. Скрытые работы видят владелец и администратор.
func (s *PortfolioService) ListForFreelancer(ctx context.Context, viewer *models.Principal, freelancerID uuid.UUID, limit, offset int) ([]models.PortfolioItem, int, error) {
	includeHidden := viewer != nil && (viewer.ID == freelancerID || viewer.IsAdmin())
	return s.repo.ListByFreelancer(ctx, freelancerID, includeHidden, limit, offset)
}

// Update меняет видимость и флаг избранного. Доступно только владельцу.
func (s *PortfolioService) Update(ctx context.Context, principal models.Principal, id uuid.UUID, update repository.PortfolioUpdate) (*models.PortfolioItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.FreelancerID != principal.ID {
		return nil, apperror.ErrForbidden
	}
	if update.IsVisible == nil && update.IsFeatured == nil {
		return item, nil
	}

	return s.repo.Update(ctx, id, update)
}
