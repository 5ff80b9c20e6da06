package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

func openEscrow(t *testing.T, repo *EscrowRepository, f engagementFixture) (*models.EscrowTransaction, *models.Invoice) {
	t.Helper()
	number := "INV-TEST-" + uuid.NewString()[:8]
	escrow := &models.EscrowTransaction{
		EngagementID:  f.Engagement.ID,
		ClientID:      f.ClientID,
		FreelancerID:  f.FreelancerID,
		Amount:        decimal.RequireFromString("800.00"),
		Currency:      "USD",
		InvoiceNumber: number,
	}
	invoice := &models.Invoice{
		EngagementID:  f.Engagement.ID,
		ClientID:      f.ClientID,
		FreelancerID:  f.FreelancerID,
		InvoiceNumber: number,
		Amount:        escrow.Amount,
		Currency:      "USD",
		DueAt:         time.Now().Add(14 * 24 * time.Hour),
	}
	require.NoError(t, repo.Open(context.Background(), escrow, invoice))
	return escrow, invoice
}

func TestEscrowRepository_OpenLinksInvoice(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	repo := NewEscrowRepository(conn)
	ctx := context.Background()

	escrow, invoice := openEscrow(t, repo, f)
	assert.Equal(t, valueobject.EscrowStatusHeld, escrow.Status)
	require.NotNil(t, invoice.EscrowID)
	assert.Equal(t, escrow.ID, *invoice.EscrowID)
	assert.Equal(t, valueobject.InvoiceStatusUnpaid, invoice.Status)
	assert.True(t, escrow.Amount.Equal(decimal.RequireFromString("800")))

	engagement, err := NewEngagementRepository(conn).GetByID(ctx, f.Engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentStatusInEscrow, engagement.PaymentStatus)

	second := *escrow
	second.InvoiceNumber = "INV-TEST-OTHER-" + uuid.NewString()[:4]
	err = repo.Open(ctx, &second, nil)
	assert.ErrorIs(t, err, apperror.ErrDuplicateEscrow)
}

func TestEscrowRepository_DuplicateInvoiceNumber(t *testing.T) {
	conn := testDB(t)
	repo := NewEscrowRepository(conn)
	first := startedEngagement(t, conn, false)
	second := startedEngagement(t, conn, false)

	escrow, _ := openEscrow(t, repo, first)

	err := repo.Open(context.Background(), &models.EscrowTransaction{
		EngagementID:  second.Engagement.ID,
		ClientID:      second.ClientID,
		FreelancerID:  second.FreelancerID,
		Amount:        decimal.RequireFromString("10"),
		Currency:      "USD",
		InvoiceNumber: escrow.InvoiceNumber,
	}, nil)
	assert.ErrorIs(t, err, apperror.ErrDuplicateInvoice)

	engagement, err := NewEngagementRepository(conn).GetByID(context.Background(), second.Engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentStatusUnpaid, engagement.PaymentStatus)
}

func TestEscrowRepository_ReleaseRefundRace(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	repo := NewEscrowRepository(conn)
	ctx := context.Background()
	escrow, _ := openEscrow(t, repo, f)

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for _, to := range []valueobject.EscrowStatus{valueobject.EscrowStatusReleased, valueobject.EscrowStatusRefunded} {
		to := to
		g.Go(func() error {
			_, err := repo.Settle(ctx, escrow.ID, to, nil)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperror.IsInvalidTransition(err):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(1), rejected.Load())

	final, err := repo.GetByID(ctx, escrow.ID)
	require.NoError(t, err)
	engagement, err := NewEngagementRepository(conn).GetByID(ctx, f.Engagement.ID)
	require.NoError(t, err)

	switch final.Status {
	case valueobject.EscrowStatusReleased:
		assert.NotNil(t, final.ReleasedAt)
		assert.Nil(t, final.RefundedAt)
		assert.Equal(t, valueobject.PaymentStatusReleased, engagement.PaymentStatus)
	case valueobject.EscrowStatusRefunded:
		assert.NotNil(t, final.RefundedAt)
		assert.Nil(t, final.ReleasedAt)
		assert.Equal(t, valueobject.PaymentStatusRefunded, engagement.PaymentStatus)
	default:
		t.Fatalf("unexpected escrow status %s", final.Status)
	}
}

func TestEscrowRepository_DisputeIsTerminal(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	repo := NewEscrowRepository(conn)
	ctx := context.Background()
	escrow, _ := openEscrow(t, repo, f)
	reason := "работа не сдана"

	disputed, err := repo.Settle(ctx, escrow.ID, valueobject.EscrowStatusDisputed, &reason)
	require.NoError(t, err)
	assert.Equal(t, valueobject.EscrowStatusDisputed, disputed.Status)
	require.NotNil(t, disputed.Notes)
	assert.Equal(t, reason, *disputed.Notes)

	_, err = repo.Settle(ctx, escrow.ID, valueobject.EscrowStatusReleased, nil)
	assert.True(t, apperror.IsInvalidTransition(err))

	_, err = repo.Settle(ctx, escrow.ID, valueobject.EscrowStatusHeld, nil)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestInvoiceRepository_ConcurrentPayReleasesOnce(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	escrows := NewEscrowRepository(conn)
	invoices := NewInvoiceRepository(conn)
	ctx := context.Background()
	_, invoice := openEscrow(t, escrows, f)

	var released, alreadyPaid atomic.Int32
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			payment, err := invoices.Pay(ctx, invoice.ID)
			if err != nil {
				return err
			}
			if payment.ReleasedEscrow {
				released.Add(1)
			}
			if payment.AlreadyPaid {
				alreadyPaid.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), released.Load())
	assert.Equal(t, int32(1), alreadyPaid.Load())

	paid, err := invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvoiceStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
}

func TestInvoiceRepository_PayAfterRefundFails(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	escrows := NewEscrowRepository(conn)
	invoices := NewInvoiceRepository(conn)
	ctx := context.Background()
	escrow, invoice := openEscrow(t, escrows, f)

	_, err := escrows.Settle(ctx, escrow.ID, valueobject.EscrowStatusRefunded, nil)
	require.NoError(t, err)

	_, err = invoices.Pay(ctx, invoice.ID)
	assert.True(t, apperror.IsInvalidTransition(err))

	current, err := invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvoiceStatusUnpaid, current.Status)
}

func TestInvoiceRepository_MarkOverdueAndCancel(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	invoices := NewInvoiceRepository(conn)
	ctx := context.Background()

	invoice := &models.Invoice{
		EngagementID:  f.Engagement.ID,
		ClientID:      f.ClientID,
		FreelancerID:  f.FreelancerID,
		InvoiceNumber: "INV-OVERDUE-" + uuid.NewString()[:8],
		Amount:        decimal.RequireFromString("120.00"),
		Currency:      "USD",
		DueAt:         time.Now().Add(time.Hour),
	}
	require.NoError(t, invoices.Create(ctx, invoice))

	count, err := invoices.MarkOverdue(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(1))

	overdue, err := invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvoiceStatusOverdue, overdue.Status)

	cancelled, err := invoices.Cancel(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvoiceStatusCancelled, cancelled.Status)

	_, err = invoices.Cancel(ctx, invoice.ID)
	assert.True(t, apperror.IsInvalidTransition(err))
}
