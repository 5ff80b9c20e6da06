package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/repository"
	"github.com/ignatzorin/engagement-backend/internal/service"
)

type mockEngagementService struct{ mock.Mock }

func (m *mockEngagementService) engagement(args mock.Arguments) (*models.Engagement, error) {
	e, _ := args.Get(0).(*models.Engagement)
	return e, args.Error(1)
}

func (m *mockEngagementService) Create(ctx context.Context, principal models.Principal, input service.CreateEngagementInput) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, input))
}

func (m *mockEngagementService) Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, id))
}

func (m *mockEngagementService) ListMine(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Engagement, int, error) {
	args := m.Called(ctx, principal, limit, offset)
	items, _ := args.Get(0).([]models.Engagement)
	return items, args.Int(1), args.Error(2)
}

func (m *mockEngagementService) AssignFreelancer(ctx context.Context, principal models.Principal, id, freelancerID uuid.UUID) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, id, freelancerID))
}

func (m *mockEngagementService) MarkStarted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, id))
}

func (m *mockEngagementService) MarkCompleted(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, id))
}

func (m *mockEngagementService) Cancel(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.Engagement, error) {
	return m.engagement(m.Called(ctx, principal, id, reason))
}

type mockDeliverableService struct{ mock.Mock }

func (m *mockDeliverableService) version(args mock.Arguments) (*models.DeliverableVersion, error) {
	v, _ := args.Get(0).(*models.DeliverableVersion)
	return v, args.Error(1)
}

func (m *mockDeliverableService) Submit(ctx context.Context, principal models.Principal, engagementID uuid.UUID, input service.SubmitInput) (*models.DeliverableVersion, error) {
	return m.version(m.Called(ctx, principal, engagementID, input))
}

func (m *mockDeliverableService) Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.DeliverableVersion, error) {
	return m.version(m.Called(ctx, principal, id))
}

func (m *mockDeliverableService) ListVersions(ctx context.Context, principal models.Principal, engagementID uuid.UUID) ([]models.DeliverableVersion, error) {
	args := m.Called(ctx, principal, engagementID)
	items, _ := args.Get(0).([]models.DeliverableVersion)
	return items, args.Error(1)
}

func (m *mockDeliverableService) Compare(ctx context.Context, principal models.Principal, fromID, toID uuid.UUID) (*models.VersionComparison, error) {
	args := m.Called(ctx, principal, fromID, toID)
	cmp, _ := args.Get(0).(*models.VersionComparison)
	return cmp, args.Error(1)
}

func (m *mockDeliverableService) Approve(ctx context.Context, principal models.Principal, id uuid.UUID, comment *string) (*models.DeliverableVersion, error) {
	return m.version(m.Called(ctx, principal, id, comment))
}

func (m *mockDeliverableService) RequestRevision(ctx context.Context, principal models.Principal, id uuid.UUID, body string, priority *valueobject.Priority) (*models.DeliverableVersion, error) {
	return m.version(m.Called(ctx, principal, id, body, priority))
}

func (m *mockDeliverableService) Reject(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.DeliverableVersion, error) {
	return m.version(m.Called(ctx, principal, id, reason))
}

type mockFeedbackService struct{ mock.Mock }

func (m *mockFeedbackService) item(args mock.Arguments) (*models.FeedbackItem, error) {
	item, _ := args.Get(0).(*models.FeedbackItem)
	return item, args.Error(1)
}

func (m *mockFeedbackService) Post(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, input service.PostFeedbackInput) (*models.FeedbackItem, error) {
	return m.item(m.Called(ctx, principal, deliverableID, input))
}

func (m *mockFeedbackService) Resolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error) {
	return m.item(m.Called(ctx, principal, id))
}

func (m *mockFeedbackService) Unresolve(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.FeedbackItem, error) {
	return m.item(m.Called(ctx, principal, id))
}

func (m *mockFeedbackService) List(ctx context.Context, principal models.Principal, deliverableID uuid.UUID, includeResolved bool, limit, offset int) (*models.FeedbackThreadPage, error) {
	args := m.Called(ctx, principal, deliverableID, includeResolved, limit, offset)
	page, _ := args.Get(0).(*models.FeedbackThreadPage)
	return page, args.Error(1)
}

type mockEscrowService struct{ mock.Mock }

func (m *mockEscrowService) escrow(args mock.Arguments) (*models.EscrowTransaction, error) {
	e, _ := args.Get(0).(*models.EscrowTransaction)
	return e, args.Error(1)
}

func (m *mockEscrowService) invoice(args mock.Arguments) (*models.Invoice, error) {
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}

func (m *mockEscrowService) Open(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string) (*models.EscrowTransaction, *models.Invoice, error) {
	args := m.Called(ctx, principal, engagementID, amount, currency)
	e, _ := args.Get(0).(*models.EscrowTransaction)
	inv, _ := args.Get(1).(*models.Invoice)
	return e, inv, args.Error(2)
}

func (m *mockEscrowService) IssueInvoice(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string, dueAt *time.Time) (*models.Invoice, error) {
	return m.invoice(m.Called(ctx, principal, engagementID, amount, currency, dueAt))
}

func (m *mockEscrowService) GetByEngagement(ctx context.Context, principal models.Principal, engagementID uuid.UUID) (*models.EscrowTransaction, error) {
	return m.escrow(m.Called(ctx, principal, engagementID))
}

func (m *mockEscrowService) Release(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.EscrowTransaction, error) {
	return m.escrow(m.Called(ctx, principal, id))
}

func (m *mockEscrowService) Refund(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error) {
	return m.escrow(m.Called(ctx, principal, id, reason))
}

func (m *mockEscrowService) Dispute(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error) {
	return m.escrow(m.Called(ctx, principal, id, reason))
}

func (m *mockEscrowService) PayInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.InvoicePayment, error) {
	args := m.Called(ctx, principal, id)
	p, _ := args.Get(0).(*models.InvoicePayment)
	return p, args.Error(1)
}

func (m *mockEscrowService) GetInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error) {
	return m.invoice(m.Called(ctx, principal, id))
}

func (m *mockEscrowService) ListInvoices(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error) {
	args := m.Called(ctx, principal, limit, offset)
	items, _ := args.Get(0).([]models.Invoice)
	return items, args.Int(1), args.Error(2)
}

func (m *mockEscrowService) CancelInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error) {
	return m.invoice(m.Called(ctx, principal, id))
}

type mockPortfolioService struct{ mock.Mock }

func (m *mockPortfolioService) ListForFreelancer(ctx context.Context, viewer *models.Principal, freelancerID uuid.UUID, limit, offset int) ([]models.PortfolioItem, int, error) {
	args := m.Called(ctx, viewer, freelancerID, limit, offset)
	items, _ := args.Get(0).([]models.PortfolioItem)
	return items, args.Int(1), args.Error(2)
}

func (m *mockPortfolioService) Update(ctx context.Context, principal models.Principal, id uuid.UUID, update repository.PortfolioUpdate) (*models.PortfolioItem, error) {
	args := m.Called(ctx, principal, id, update)
	item, _ := args.Get(0).(*models.PortfolioItem)
	return item, args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	items, _ := args.Get(0).([]models.Notification)
	return items, args.Int(1), args.Error(2)
}

func (m *mockNotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockNotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
