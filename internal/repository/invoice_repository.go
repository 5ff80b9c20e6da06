package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/repository/common"
)

// InvoiceRepository хранит счета.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository создаёт экземпляр репозитория.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create сохраняет счёт без привязки к escrow.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := insertInvoice(ctx, r.db, invoice); err != nil {
		translated := translateUnique(err)
		var appErr *apperror.AppError
		if errors.As(translated, &appErr) {
			return translated
		}
		return fmt.Errorf("invoice repository: create %w", err)
	}
	return nil
}

// GetByID возвращает счёт по идентификатору.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return common.GetByID[models.Invoice](ctx, r.db, common.TableInvoices, id, apperror.ErrInvoiceNotFound)
}

// ListForUser возвращает счета клиента или фрилансера. Администратор видит все.
func (r *InvoiceRepository) ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error) {
	where := ""
	args := []interface{}{}

	switch principal.Role {
	case models.RoleClient:
		where = "client_id = $1"
		args = append(args, principal.ID)
	case models.RoleFreelancer:
		where = "freelancer_id = $1"
		args = append(args, principal.ID)
	}

	invoices, total, err := common.ListPage[models.Invoice](ctx, r.db, common.PageQuery{
		Table:   common.TableInvoices,
		Where:   where,
		Args:    args,
		OrderBy: "issued_at DESC",
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("invoice repository: list %w", err)
	}

	return invoices, total, nil
}

// Pay отмечает счёт оплаченным и освобождает связанный escrow в той же транзакции.
// Повторная оплата возвращает AlreadyPaid и ничего не меняет.
func (r *InvoiceRepository) Pay(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error) {
	payment := &models.InvoicePayment{}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		invoice, err := common.LockByID[models.Invoice](ctx, tx, common.TableInvoices, id, apperror.ErrInvoiceNotFound)
		if err != nil {
			return err
		}

		if invoice.Status == valueobject.InvoiceStatusPaid {
			payment.Invoice = invoice
			payment.AlreadyPaid = true
			if invoice.EscrowID != nil {
				payment.Escrow, err = common.GetByID[models.EscrowTransaction](ctx, tx, common.TableEscrow, *invoice.EscrowID, apperror.ErrEscrowNotFound)
			}
			return err
		}

		if !invoice.Status.CanTransitionTo(valueobject.InvoiceStatusPaid) {
			return apperror.InvalidTransition(fmt.Sprintf("счёт в статусе %s нельзя оплатить", invoice.Status))
		}

		var paid models.Invoice
		if err := tx.GetContext(ctx, &paid,
			`UPDATE invoices SET status = 'paid', paid_at = NOW() WHERE id = $1 RETURNING *`, id,
		); err != nil {
			return fmt.Errorf("invoice repository: mark paid %w", err)
		}
		payment.Invoice = &paid

		if paid.EscrowID == nil {
			return nil
		}

		escrow, err := common.LockByID[models.EscrowTransaction](ctx, tx, common.TableEscrow, *paid.EscrowID, apperror.ErrEscrowNotFound)
		if err != nil {
			return err
		}

		switch escrow.Status {
		case valueobject.EscrowStatusReleased:
			payment.Escrow = escrow
			return nil
		case valueobject.EscrowStatusHeld:
			payment.Escrow, err = settleInTx(ctx, tx, escrow.ID, valueobject.EscrowStatusReleased, nil)
			payment.ReleasedEscrow = err == nil
			return err
		default:
			return apperror.InvalidTransition(
				fmt.Sprintf("связанный escrow в статусе %s, оплата невозможна", escrow.Status),
			)
		}
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// Cancel отменяет неоплаченный или просроченный счёт.
func (r *InvoiceRepository) Cancel(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := common.LockByID[models.Invoice](ctx, tx, common.TableInvoices, id, apperror.ErrInvoiceNotFound)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(valueobject.InvoiceStatusCancelled) {
			return apperror.InvalidTransition(fmt.Sprintf("счёт в статусе %s нельзя отменить", current.Status))
		}

		invoice = &models.Invoice{}
		return tx.GetContext(ctx, invoice,
			`UPDATE invoices SET status = 'cancelled' WHERE id = $1 RETURNING *`, id)
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// MarkOverdue переводит неоплаченные счета с истёкшим сроком в overdue.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'overdue' WHERE status = 'unpaid' AND due_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("invoice repository: mark overdue %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("invoice repository: mark overdue rows affected %w", err)
	}

	return rows, nil
}
