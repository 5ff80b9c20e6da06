package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/repository"
)

type mockEngagementRepo struct {
	mock.Mock
}

func (m *mockEngagementRepo) Create(ctx context.Context, engagement *models.Engagement) error {
	args := m.Called(ctx, engagement)
	return args.Error(0)
}

func (m *mockEngagementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

func (m *mockEngagementRepo) ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error) {
	args := m.Called(ctx, principal, limit, offset)
	return args.Get(0).([]models.Engagement), args.Int(1), args.Error(2)
}

func (m *mockEngagementRepo) Transition(ctx context.Context, id uuid.UUID, params repository.TransitionParams) (*models.Engagement, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

type mockAvailability struct {
	mock.Mock
}

func (m *mockAvailability) IsAvailable(ctx context.Context, freelancerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, freelancerID)
	return args.Bool(0), args.Error(1)
}

type mockPortfolioGenerator struct {
	mock.Mock
}

func (m *mockPortfolioGenerator) MaybeGenerate(ctx context.Context, engagementID uuid.UUID) {
	m.Called(ctx, engagementID)
}

type mockDeliverableRepo struct {
	mock.Mock
}

func (m *mockDeliverableRepo) Submit(ctx context.Context, version *models.DeliverableVersion, guard repository.EngagementGuard) error {
	args := m.Called(ctx, version, guard)
	return args.Error(0)
}

func (m *mockDeliverableRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DeliverableVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliverableVersion), args.Error(1)
}

func (m *mockDeliverableRepo) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.DeliverableVersion, error) {
	args := m.Called(ctx, engagementID)
	return args.Get(0).([]models.DeliverableVersion), args.Error(1)
}

func (m *mockDeliverableRepo) Review(ctx context.Context, params repository.ReviewParams) (*models.DeliverableVersion, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliverableVersion), args.Error(1)
}

type mockUploads struct {
	mock.Mock
}

func (m *mockUploads) Upload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (*models.UploadedContent, error) {
	args := m.Called(ctx, ownerID, originalName, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedContent), args.Error(1)
}

func (m *mockUploads) Delete(ctx context.Context, contentID string) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, recipient uuid.UUID, template string, data map[string]any) bool {
	args := m.Called(ctx, recipient, template, data)
	return args.Bool(0)
}

type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) Create(ctx context.Context, item *models.FeedbackItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockFeedbackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackItem), args.Error(1)
}

func (m *mockFeedbackRepo) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.FeedbackItem, error) {
	args := m.Called(ctx, id, resolved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackItem), args.Error(1)
}

func (m *mockFeedbackRepo) ListThread(ctx context.Context, deliverableID uuid.UUID, includeResolved bool, limit, offset int) ([]models.FeedbackItem, int, error) {
	args := m.Called(ctx, deliverableID, includeResolved, limit, offset)
	return args.Get(0).([]models.FeedbackItem), args.Int(1), args.Error(2)
}

func (m *mockFeedbackRepo) CountUnresolved(ctx context.Context, deliverableID uuid.UUID) (int, error) {
	args := m.Called(ctx, deliverableID)
	return args.Int(0), args.Error(1)
}

type mockEscrowRepo struct {
	mock.Mock
}

func (m *mockEscrowRepo) Open(ctx context.Context, escrow *models.EscrowTransaction, invoice *models.Invoice) error {
	args := m.Called(ctx, escrow, invoice)
	return args.Error(0)
}

func (m *mockEscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowTransaction), args.Error(1)
}

func (m *mockEscrowRepo) GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.EscrowTransaction, error) {
	args := m.Called(ctx, engagementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowTransaction), args.Error(1)
}

func (m *mockEscrowRepo) Settle(ctx context.Context, id uuid.UUID, to valueobject.EscrowStatus, notes *string) (*models.EscrowTransaction, error) {
	args := m.Called(ctx, id, to, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowTransaction), args.Error(1)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error) {
	args := m.Called(ctx, principal, limit, offset)
	return args.Get(0).([]models.Invoice), args.Int(1), args.Error(2)
}

func (m *mockInvoiceRepo) Pay(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoicePayment), args.Error(1)
}

func (m *mockInvoiceRepo) Cancel(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockPortfolioRepo struct {
	mock.Mock
}

func (m *mockPortfolioRepo) GenerateForEngagement(ctx context.Context, engagementID uuid.UUID) (*models.PortfolioItem, bool, error) {
	args := m.Called(ctx, engagementID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.PortfolioItem), args.Bool(1), args.Error(2)
}

func (m *mockPortfolioRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortfolioItem), args.Error(1)
}

func (m *mockPortfolioRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, includeHidden bool, limit, offset int) ([]models.PortfolioItem, int, error) {
	args := m.Called(ctx, freelancerID, includeHidden, limit, offset)
	return args.Get(0).([]models.PortfolioItem), args.Int(1), args.Error(2)
}

func (m *mockPortfolioRepo) Update(ctx context.Context, id uuid.UUID, update repository.PortfolioUpdate) (*models.PortfolioItem, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortfolioItem), args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	return args.Get(0).([]models.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) Push(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}
