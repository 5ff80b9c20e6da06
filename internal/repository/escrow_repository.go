package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

const (
	escrowEngagementConstraint = "escrow_transactions_engagement_key"
	escrowInvoiceConstraint    = "escrow_transactions_invoice_number_key"
	invoiceNumberConstraint    = "invoices_invoice_number_key"
)

// EscrowRepository хранит escrow-транзакции проектов.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository создаёт экземпляр репозитория.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// translateUnique переводит нарушения уникальности в доменные ошибки.
func translateUnique(err error) error {
	name, ok := common.UniqueViolation(err)
	if !ok {
		return err
	}

	switch name {
	case escrowEngagementConstraint:
		return apperror.ErrDuplicateEscrow
	case escrowInvoiceConstraint, invoiceNumberConstraint:
		return apperror.ErrDuplicateInvoice
	default:
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
	}
}

func insertInvoice(ctx context.Context, q sqlx.QueryerContext, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (
			engagement_id, client_id, freelancer_id, escrow_id, invoice_number,
			amount, currency, status, due_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'unpaid', $8)
		RETURNING *
	`

	return sqlx.GetContext(ctx, q, invoice, query,
		invoice.EngagementID,
		invoice.ClientID,
		invoice.FreelancerID,
		invoice.EscrowID,
		invoice.InvoiceNumber,
		invoice.Amount,
		invoice.Currency,
		invoice.DueAt,
	)
}

// Open создаёт escrow в статусе held, связанный счёт (если передан)
// и переводит оплату проекта в in_escrow. Всё выполняется одной транзакцией.
func (r *EscrowRepository) Open(ctx context.Context, escrow *models.EscrowTransaction, invoice *models.Invoice) error {
	query := `
		INSERT INTO escrow_transactions (
			engagement_id, client_id, freelancer_id, admin_id, amount, currency, status, invoice_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'held', $7)
		RETURNING *
	`

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := common.LockByID[models.Engagement](ctx, tx, common.TableEngagements, escrow.EngagementID, apperror.ErrEngagementNotFound); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, escrow, query,
			escrow.EngagementID,
			escrow.ClientID,
			escrow.FreelancerID,
			escrow.AdminID,
			escrow.Amount,
			escrow.Currency,
			escrow.InvoiceNumber,
		); err != nil {
			return translateUnique(err)
		}

		if invoice != nil {
			invoice.EscrowID = &escrow.ID
			if err := insertInvoice(ctx, tx, invoice); err != nil {
				return translateUnique(err)
			}
		}

		return setPaymentStatus(ctx, tx, escrow.EngagementID, valueobject.PaymentStatusInEscrow)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("escrow repository: open %w", err)
	}

	return nil
}

// GetByID возвращает escrow по идентификатору.
func (r *EscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	return common.GetByID[models.EscrowTransaction](ctx, r.db, common.TableEscrow, id, apperror.ErrEscrowNotFound)
}

// GetByEngagement возвращает escrow проекта.
func (r *EscrowRepository) GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.EscrowTransaction, error) {
	var escrow models.EscrowTransaction
	if err := r.db.GetContext(ctx, &escrow,
		`SELECT * FROM escrow_transactions WHERE engagement_id = $1`, engagementID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("escrow repository: get by engagement %w", err)
	}

	return &escrow, nil
}

// Settle переводит escrow из held в конечный статус.
func (r *EscrowRepository) Settle(ctx context.Context, id uuid.UUID, to valueobject.EscrowStatus, notes *string) (*models.EscrowTransaction, error) {
	var escrow *models.EscrowTransaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		escrow, err = settleInTx(ctx, tx, id, to, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	return escrow, nil
}

// settleInTx проверяет статус и меняет его одним условным UPDATE,
// поэтому из двух параллельных вызовов успешен только первый.
func settleInTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, to valueobject.EscrowStatus, notes *string) (*models.EscrowTransaction, error) {
	query := `
		UPDATE escrow_transactions SET
			status = $2::text,
			released_at = CASE WHEN $2::text = 'released' THEN NOW() ELSE released_at END,
			refunded_at = CASE WHEN $2::text = 'refunded' THEN NOW() ELSE refunded_at END,
			disputed_at = CASE WHEN $2::text = 'disputed' THEN NOW() ELSE disputed_at END,
			notes = COALESCE($3, notes),
			updated_at = NOW()
		WHERE id = $1 AND status = 'held'
		RETURNING *
	`

	if !valueobject.EscrowStatusHeld.CanTransitionTo(to) {
		return nil, apperror.InvalidTransition(fmt.Sprintf("недопустимый статус escrow %s", to))
	}

	var escrow models.EscrowTransaction
	err := tx.GetContext(ctx, &escrow, query, id, string(to), notes)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := common.GetByID[models.EscrowTransaction](ctx, tx, common.TableEscrow, id, apperror.ErrEscrowNotFound)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("нельзя перевести escrow из статуса %s в %s", current.Status, to),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("escrow repository: settle %w", err)
	}

	switch to {
	case valueobject.EscrowStatusReleased:
		err = setPaymentStatus(ctx, tx, escrow.EngagementID, valueobject.PaymentStatusReleased)
	case valueobject.EscrowStatusRefunded:
		err = setPaymentStatus(ctx, tx, escrow.EngagementID, valueobject.PaymentStatusRefunded)
	}
	if err != nil {
		return nil, err
	}

	return &escrow, nil
}

func setPaymentStatus(ctx context.Context, tx *sqlx.Tx, engagementID uuid.UUID, status valueobject.PaymentStatus) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE engagements SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		engagementID, string(status),
	); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}
