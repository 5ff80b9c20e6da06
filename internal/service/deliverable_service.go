package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository"
	"github.com/ignatzorin/engagement-backend/internal/validation"
)

// DeliverableRepository описывает хранилище версий результатов.
type DeliverableRepository interface {
	Submit(ctx context.Context, version *models.DeliverableVersion, guard repository.EngagementGuard) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeliverableVersion, error)
	ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.DeliverableVersion, error)
	Review(ctx context.Context, params repository.ReviewParams) (*models.DeliverableVersion, error)
}

// EngagementReader читает проект по идентификатору.
type EngagementReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
}

// UploadProvider сохраняет содержимое результата во внешнем хранилище.
type UploadProvider interface {
	Upload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (*models.UploadedContent, error)
	Delete(ctx context.Context, contentID string) error
}

// SubmitInput описывает новую версию результата.
type SubmitInput struct {
	Title       string
	Description *string
	ChangeNotes *string
	FileName    string
	Content     io.Reader
}

// DeliverableService ведёт учёт версий результатов и их ревью.
type DeliverableService struct {
	deliverables DeliverableRepository
	engagements  EngagementReader
	uploads      UploadProvider
	notifier     Notifier
	portfolio    PortfolioGenerator
}

// NewDeliverableService создаёт сервис версий результатов.
func NewDeliverableService(
	deliverables DeliverableRepository,
	engagements EngagementReader,
	uploads UploadProvider,
	notifier Notifier,
	portfolio PortfolioGenerator,
) *DeliverableService {
	return &DeliverableService{
		deliverables: deliverables,
		engagements:  engagements,
		uploads:      uploads,
		notifier:     notifier,
		portfolio:    portfolio,
	}
}

// submissionGuard проверяет проект под блокировкой перед присвоением номера.
func submissionGuard(uploaderID uuid.UUID) repository.EngagementGuard {
	return func(engagement *models.Engagement) error {
		if !engagement.IsAssignedFreelancer(uploaderID) {
			return apperror.ErrForbidden
		}
		if engagement.Status == valueobject.EngagementStatusCancelled {
			return apperror.InvalidTransition("проект отменён, новые версии не принимаются")
		}
		return nil
	}
}

// Submit загружает файл и сохраняет новую версию со следующим номером.
// Ошибка хранилища возвращается вызывающему, версия при этом не создаётся.
func (s *DeliverableService) Submit(ctx context.Context, principal models.Principal, engagementID uuid.UUID, input SubmitInput) (*models.DeliverableVersion, error) {
	title := strings.TrimSpace(input.Title)
	description := validation.NormalizeOptional(input.Description)
	changeNotes := validation.NormalizeOptional(input.ChangeNotes)
	if err := validation.ValidateDeliverable(title, description, changeNotes); err != nil {
		return nil, err
	}
	if input.Content == nil {
		return nil, apperror.Validation("файл обязателен")
	}

	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	guard := submissionGuard(principal.ID)
	if err := guard(engagement); err != nil {
		return nil, err
	}

	content, err := s.uploads.Upload(ctx, principal.ID, input.FileName, input.Content)
	if err != nil {
		return nil, err
	}

	version := &models.DeliverableVersion{
		EngagementID: engagementID,
		UploaderID:   principal.ID,
		FileURL:      content.URL,
		ContentID:    content.ContentID,
		ByteSize:     content.ByteSize,
		MediaKind:    content.MediaKind,
		Title:        title,
		Description:  description,
		ChangeNotes:  changeNotes,
	}
	if err := s.deliverables.Submit(ctx, version, guard); err != nil {
		if delErr := s.uploads.Delete(context.WithoutCancel(ctx), content.ContentID); delErr != nil {
			logger.Entry(logrus.Fields{"content_id": content.ContentID}).
				WithError(delErr).
				Warn("deliverable: не удалось удалить загруженный файл")
		}
		return nil, err
	}

	log := logrus.Fields{"engagement_id": engagementID, "deliverable_id": version.ID, "version_number": version.VersionNumber}
	logger.Entry(log).Info("deliverable: загружена новая версия")

	runPostCommit(ctx, log, notifyHook(s.notifier, engagement.ClientID, models.TemplateDeliverableSubmitted, map[string]any{
		"engagement_id":  engagementID,
		"deliverable_id": version.ID,
		"version_number": version.VersionNumber,
		"title":          version.Title,
	}))

	return version, nil
}

// Get возвращает версию участнику проекта.
func (s *DeliverableService) Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.DeliverableVersion, error) {
	version, _, err := s.loadForAccess(ctx, principal, id)
	return version, err
}

// ListVersions возвращает версии проекта по возрастанию номера.
func (s *DeliverableService) ListVersions(ctx context.Context, principal models.Principal, engagementID uuid.UUID) ([]models.DeliverableVersion, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, apperror.ErrForbidden
	}
	return s.deliverables.ListByEngagement(ctx, engagementID)
}

// Compare сравнивает две версии одного проекта.
func (s *DeliverableService) Compare(ctx context.Context, principal models.Principal, fromID, toID uuid.UUID) (*models.VersionComparison, error) {
	from, err := s.deliverables.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.deliverables.GetByID(ctx, toID)
	if err != nil {
		return nil, err
	}
	if from.EngagementID != to.EngagementID {
		return nil, apperror.ErrCrossEngagement
	}

	engagement, err := s.engagements.GetByID(ctx, from.EngagementID)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, apperror.ErrForbidden
	}

	return compareVersions(from, to), nil
}

func compareVersions(from, to *models.DeliverableVersion) *models.VersionComparison {
	elapsed := to.CreatedAt.Sub(from.CreatedAt)
	cmp := &models.VersionComparison{
		From:           from,
		To:             to,
		VersionDelta:   to.VersionNumber - from.VersionNumber,
		ElapsedDelta:   elapsed,
		ElapsedSeconds: elapsed.Seconds(),
		StatusChanged:  from.Status != to.Status,
	}
	if from.ByteSize != nil && to.ByteSize != nil {
		delta := *to.ByteSize - *from.ByteSize
		cmp.SizeDelta = &delta
	}
	return cmp
}

// Approve одобряет версию. Повторное одобрение возвращает InvalidTransition.
// Необязательный комментарий сохраняется как отзыв вида approval в той же транзакции.
func (s *DeliverableService) Approve(ctx context.Context, principal models.Principal, id uuid.UUID, comment *string) (*models.DeliverableVersion, error) {
	current, engagement, err := s.loadForReview(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	params := repository.ReviewParams{
		VersionID:      id,
		From:           valueobject.ReviewableFrom(valueobject.DeliverableStatusApproved),
		To:             valueobject.DeliverableStatusApproved,
		ReviewerID:     principal.ID,
		RecordReviewer: true,
	}
	if body := validation.NormalizeOptional(comment); body != nil {
		if err := validation.ValidateFeedbackBody(*body); err != nil {
			return nil, err
		}
		params.Feedback = &models.FeedbackItem{AuthorID: principal.ID, Kind: valueobject.FeedbackKindApproval, Body: *body}
	}

	version, err := s.deliverables.Review(ctx, params)
	if err != nil {
		return nil, err
	}

	log := logrus.Fields{"engagement_id": engagement.ID, "deliverable_id": id, "reviewer_id": principal.ID}
	logger.Entry(log).Info("deliverable: версия одобрена")

	runPostCommit(ctx, log,
		notifyHook(s.notifier, current.UploaderID, models.TemplateDeliverableApproved, map[string]any{
			"engagement_id":  engagement.ID,
			"deliverable_id": id,
			"version_number": version.VersionNumber,
		}),
		PostCommitHook{
			Name: "portfolio",
			Run: func(ctx context.Context) error {
				if s.portfolio != nil {
					s.portfolio.MaybeGenerate(ctx, engagement.ID)
				}
				return nil
			},
		},
	)

	return version, nil
}

// RequestRevision запрашивает доработку. Статус и отзыв вида revision
// сохраняются в одной транзакции. Рецензент и время ревью не записываются.
func (s *DeliverableService) RequestRevision(ctx context.Context, principal models.Principal, id uuid.UUID, body string, priority *valueobject.Priority) (*models.DeliverableVersion, error) {
	body = strings.TrimSpace(body)
	if err := validation.ValidateFeedbackBody(body); err != nil {
		return nil, err
	}
	if priority != nil && !priority.IsValid() {
		return nil, apperror.Validation("некорректный приоритет")
	}

	current, engagement, err := s.loadForReview(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	version, err := s.deliverables.Review(ctx, repository.ReviewParams{
		VersionID:  id,
		From:       valueobject.ReviewableFrom(valueobject.DeliverableStatusRevisionRequested),
		To:         valueobject.DeliverableStatusRevisionRequested,
		ReviewerID: principal.ID,
		Feedback: &models.FeedbackItem{
			AuthorID: principal.ID,
			Kind:     valueobject.FeedbackKindRevision,
			Body:     body,
			Priority: priority,
		},
	})
	if err != nil {
		return nil, err
	}

	log := logrus.Fields{"engagement_id": engagement.ID, "deliverable_id": id}
	logger.Entry(log).Info("deliverable: запрошена доработка")

	runPostCommit(ctx, log, notifyHook(s.notifier, current.UploaderID, models.TemplateRevisionRequested, map[string]any{
		"engagement_id":  engagement.ID,
		"deliverable_id": id,
		"version_number": version.VersionNumber,
		"feedback":       body,
	}))

	return version, nil
}

// Reject отклоняет версию. Причина сохраняется как отзыв вида revision с высоким приоритетом.
func (s *DeliverableService) Reject(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.DeliverableVersion, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateFeedbackBody(reason); err != nil {
		return nil, err
	}

	current, engagement, err := s.loadForReview(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	high := valueobject.PriorityHigh
	version, err := s.deliverables.Review(ctx, repository.ReviewParams{
		VersionID:      id,
		From:           valueobject.ReviewableFrom(valueobject.DeliverableStatusRejected),
		To:             valueobject.DeliverableStatusRejected,
		ReviewerID:     principal.ID,
		RecordReviewer: true,
		Feedback: &models.FeedbackItem{
			AuthorID: principal.ID,
			Kind:     valueobject.FeedbackKindRevision,
			Body:     reason,
			Priority: &high,
		},
	})
	if err != nil {
		return nil, err
	}

	log := logrus.Fields{"engagement_id": engagement.ID, "deliverable_id": id}
	logger.Entry(log).Info("deliverable: версия отклонена")

	runPostCommit(ctx, log, notifyHook(s.notifier, current.UploaderID, models.TemplateDeliverableRejected, map[string]any{
		"engagement_id":  engagement.ID,
		"deliverable_id": id,
		"version_number": version.VersionNumber,
		"reason":         reason,
	}))

	return version, nil
}

func (s *DeliverableService) loadForAccess(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.DeliverableVersion, *models.Engagement, error) {
	version, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	engagement, err := s.engagements.GetByID(ctx, version.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, nil, apperror.ErrForbidden
	}
	return version, engagement, nil
}

// loadForReview: ревью доступно только клиенту проекта и администратору.
func (s *DeliverableService) loadForReview(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.DeliverableVersion, *models.Engagement, error) {
	version, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	engagement, err := s.engagements.GetByID(ctx, version.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	if !canManage(principal, engagement) {
		return nil, nil, apperror.ErrForbidden
	}
	return version, engagement, nil
}
