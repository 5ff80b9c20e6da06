package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository"
	"github.com/ignatzorin/engagement-backend/internal/validation"
)

// EngagementRepository описывает хранилище проектов.
type EngagementRepository interface {
	Create(ctx context.Context, engagement *models.Engagement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error)
	Transition(ctx context.Context, id uuid.UUID, params repository.TransitionParams) (*models.Engagement, error)
}

// FreelancerAvailability сообщает, может ли фрилансер взять проект.
type FreelancerAvailability interface {
	IsAvailable(ctx context.Context, freelancerID uuid.UUID) (bool, error)
}

// CreateEngagementInput содержит поля нового проекта.
type CreateEngagementInput struct {
	Title       string
	Description string
	Budget      decimal.Decimal
	Currency    string
	Deadline    *time.Time
	IsSensitive bool
}

// EngagementService управляет жизненным циклом проекта.
type EngagementService struct {
	repo         EngagementRepository
	availability FreelancerAvailability
	portfolio    PortfolioGenerator
}

// NewEngagementService создаёт сервис проектов.
func NewEngagementService(repo EngagementRepository, availability FreelancerAvailability, portfolio PortfolioGenerator) *EngagementService {
	return &EngagementService{repo: repo, availability: availability, portfolio: portfolio}
}

// Create создаёт проект от имени клиента.
func (s *EngagementService) Create(ctx context.Context, principal models.Principal, input CreateEngagementInput) (*models.Engagement, error) {
	if principal.Role != models.RoleClient {
		return nil, apperror.ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validation.ValidateEngagement(title, description); err != nil {
		return nil, err
	}

	budget, err := valueobject.NewMoney(input.Budget, input.Currency)
	if err != nil {
		return nil, err
	}

	engagement := &models.Engagement{
		ClientID:    principal.ID,
		Title:       title,
		Description: description,
		Budget:      budget.Amount,
		Currency:    budget.Currency,
		Deadline:    input.Deadline,
		IsSensitive: input.IsSensitive,
	}
	if err := s.repo.Create(ctx, engagement); err != nil {
		return nil, err
	}

	logger.Entry(logrus.Fields{"engagement_id": engagement.ID, "client_id": principal.ID}).Info("engagement: создан проект")
	return engagement, nil
}

// Get возвращает проект участнику.
func (s *EngagementService) Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, apperror.ErrForbidden
	}
	return engagement, nil
}

// ListMine возвращает проекты участника.
func (s *EngagementService) ListMine(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error) {
	return s.repo.ListForUser(ctx, principal, limit, offset)
}

// AssignFreelancer назначает исполнителя: submitted -> matched.
func (s *EngagementService) AssignFreelancer(ctx context.Context, principal models.Principal, id, freelancerID uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(principal, engagement) {
		return nil, apperror.ErrForbidden
	}
	if !engagement.Status.CanTransitionTo(valueobject.EngagementStatusMatched) {
		return nil, apperror.InvalidTransition("назначить исполнителя можно только до начала работ")
	}
	if freelancerID == engagement.ClientID {
		return nil, apperror.Validation("клиент не может быть исполнителем своего проекта")
	}

	available, err := s.availability.IsAvailable(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperror.ErrFreelancerBusy
	}

	return s.transition(ctx, id, repository.TransitionParams{
		To:           valueobject.EngagementStatusMatched,
		FreelancerID: &freelancerID,
	})
}

// MarkStarted переводит проект в работу: matched -> in_progress.
func (s *EngagementService) MarkStarted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, apperror.ErrForbidden
	}

	return s.transition(ctx, id, repository.TransitionParams{To: valueobject.EngagementStatusInProgress})
}

// MarkCompleted завершает проект: in_progress -> completed.
// После фиксации запускается генерация портфолио.
func (s *EngagementService) MarkCompleted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(principal, engagement) {
		return nil, apperror.ErrForbidden
	}

	completed, err := s.transition(ctx, id, repository.TransitionParams{To: valueobject.EngagementStatusCompleted})
	if err != nil {
		return nil, err
	}

	runPostCommit(ctx, logrus.Fields{"engagement_id": id}, s.portfolioHook(id))
	return completed, nil
}

// Cancel отменяет проект из любого нетерминального статуса.
func (s *EngagementService) Cancel(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(principal, engagement) && !engagement.IsAssignedFreelancer(principal.ID) {
		return nil, apperror.ErrForbidden
	}

	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина отмены", reason, 0, validation.MaxReasonLength); err != nil {
		return nil, err
	}

	params := repository.TransitionParams{To: valueobject.EngagementStatusCancelled}
	if reason != "" {
		params.Reason = &reason
	}
	return s.transition(ctx, id, params)
}

func (s *EngagementService) transition(ctx context.Context, id uuid.UUID, params repository.TransitionParams) (*models.Engagement, error) {
	params.From = valueobject.EngagementSourcesFor(params.To)

	engagement, err := s.repo.Transition(ctx, id, params)
	if err != nil {
		return nil, err
	}

	logger.Entry(logrus.Fields{"engagement_id": id, "status": engagement.Status}).Info("engagement: статус изменён")
	return engagement, nil
}

func (s *EngagementService) portfolioHook(engagementID uuid.UUID) PostCommitHook {
	return PostCommitHook{
		Name: "portfolio",
		Run: func(ctx context.Context) error {
			if s.portfolio != nil {
				s.portfolio.MaybeGenerate(ctx, engagementID)
			}
			return nil
		},
	}
}
