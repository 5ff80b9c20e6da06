package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/validation"
)

// FeedbackRepository описывает хранилище комментариев.
type FeedbackRepository interface {
	Create(ctx context.Context, item *models.FeedbackItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackItem, error)
	SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.FeedbackItem, error)
	ListThread(ctx context.Context, deliverableID uuid.UUID, includeResolved bool, limit, offset int) ([]models.FeedbackItem, int, error)
	CountUnresolved(ctx context.Context, deliverableID uuid.UUID) (int, error)
}

// DeliverableReader читает версию результата по идентификатору.
type DeliverableReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeliverableVersion, error)
}

// PostFeedbackInput описывает новый комментарий.
type PostFeedbackInput struct {
	Kind     valueobject.FeedbackKind
	Body     string
	Priority *valueobject.Priority
	ParentID *uuid.UUID
}

// FeedbackService ведёт обсуждение версий результатов.
// Текст комментария не редактируется, меняется только отметка о решении.
type FeedbackService struct {
	feedback     FeedbackRepository
	deliverables DeliverableReader
	engagements  EngagementReader
}

// NewFeedbackService создаёт сервис комментариев.
func NewFeedbackService(feedback FeedbackRepository, deliverables DeliverableReader, engagements EngagementReader) *FeedbackService {
	return &FeedbackService{feedback: feedback, deliverables: deliverables, engagements: engagements}
}

// Post добавляет комментарий или ответ к версии.
func (s *FeedbackService) Post(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, input PostFeedbackInput) (*models.FeedbackItem, error) {
	if input.Kind == "" {
		input.Kind = valueobject.FeedbackKindComment
	}
	if !input.Kind.IsValid() {
		return nil, apperror.Validation("некорректный вид комментария")
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, apperror.Validation("некорректный приоритет")
	}
	body := strings.TrimSpace(input.Body)
	if err := validation.ValidateFeedbackBody(body); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, principal, deliverableID); err != nil {
		return nil, err
	}

	item := &models.FeedbackItem{
		DeliverableID: deliverableID,
		AuthorID:      principal.ID,
		ParentID:      input.ParentID,
		Kind:          input.Kind,
		Body:          body,
		Priority:      input.Priority,
	}
	if err := s.feedback.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Resolve отмечает комментарий решённым. Повторный вызов ничего не меняет.
func (s *FeedbackService) Resolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error) {
	return s.setResolved(ctx, principal, id, true)
}

// Unresolve снимает отметку о решении.
func (s *FeedbackService) Unresolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error) {
	return s.setResolved(ctx, principal, id, false)
}

func (s *FeedbackService) setResolved(ctx context.Context, principal models.Principal, id uuid.UUID, resolved bool) (*models.FeedbackItem, error) {
	item, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, principal, item.DeliverableID); err != nil {
		return nil, err
	}
	if item.IsResolved == resolved {
		return item, nil
	}

	return s.feedback.SetResolved(ctx, id, resolved)
}

// List возвращает страницу обсуждения и число нерешённых комментариев версии.
func (s *FeedbackService) List(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, includeResolved bool, limit, offset int) (*models.FeedbackThreadPage, error) {
	if err := s.authorize(ctx, principal, deliverableID); err != nil {
		return nil, err
	}

	items, total, err := s.feedback.ListThread(ctx, deliverableID, includeResolved, limit, offset)
	if err != nil {
		return nil, err
	}
	unresolved, err := s.feedback.CountUnresolved(ctx, deliverableID)
	if err != nil {
		return nil, err
	}

	return &models.FeedbackThreadPage{Items: items, TotalItems: total, UnresolvedCount: unresolved}, nil
}

func (s *FeedbackService) authorize(ctx context.Context, principal models.Principal, deliverableID uuid.UUID) error {
	version, err := s.deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return err
	}
	engagement, err := s.engagements.GetByID(ctx, version.EngagementID)
	if err != nil {
		return err
	}
	if !canAccess(principal, engagement) {
		return apperror.ErrForbidden
	}
	return nil
}
