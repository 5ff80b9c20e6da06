package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
	"github.com/ignatzorin/engagement-backend/internal/validation"
)

const invoiceNumberAttempts = 3

// EscrowRepository описывает хранилище escrow.
type EscrowRepository interface {
	Open(ctx context.Context, escrow *models.EscrowTransaction, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error)
	GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.EscrowTransaction, error)
	Settle(ctx context.Context, id uuid.UUID, to valueobject.EscrowStatus, notes *string) (*models.EscrowTransaction, error)
}

// InvoiceRepository описывает хранилище счетов.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListForUser(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error)
	Pay(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// EscrowService управляет удержанием средств и оплатой счетов.
type EscrowService struct {
	escrows     EscrowRepository
	invoices    InvoiceRepository
	engagements EngagementReader
	notifier    Notifier
	dueIn       time.Duration
	now         func() time.Time
	newNumber   func(now time.Time) (string, error)
}

// NewEscrowService создаёт сервис расчётов. dueDays задаёт срок оплаты счёта.
func NewEscrowService(escrows EscrowRepository, invoices InvoiceRepository, engagements EngagementReader, notifier Notifier, dueDays int) *EscrowService {
	return &EscrowService{
		escrows:     escrows,
		invoices:    invoices,
		engagements: engagements,
		notifier:    notifier,
		dueIn:       time.Duration(dueDays) * 24 * time.Hour,
		now:         time.Now,
		newNumber:   NewInvoiceNumber,
	}
}

// NewInvoiceNumber формирует номер вида INV-20260101-9F2C41AB.
func NewInvoiceNumber(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf))), nil
}

// withInvoiceNumber повторяет вставку с новым номером, если номер уже занят.
func (s *EscrowService) withInvoiceNumber(fn func(number string) error) error {
	var err error
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		var number string
		number, err = s.newNumber(s.now())
		if err != nil {
			return err
		}
		err = fn(number)
		if !errors.Is(err, apperror.ErrDuplicateInvoice) {
			return err
		}
	}
	return err
}

// settlementParties проверяет, что по проекту можно проводить расчёты.
func (s *EscrowService) settlementParties(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string) (*models.Engagement, valueobject.Money, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, valueobject.Money{}, err
	}
	if !canManage(principal, engagement) {
		return nil, valueobject.Money{}, apperror.ErrForbidden
	}
	if engagement.FreelancerID == nil {
		return nil, valueobject.Money{}, apperror.Validation("исполнитель проекта не назначен")
	}
	if engagement.Status == valueobject.EngagementStatusCancelled {
		return nil, valueobject.Money{}, apperror.InvalidTransition("проект отменён")
	}

	money, err := valueobject.NewPositiveMoney(amount, currency)
	if err != nil {
		return nil, valueobject.Money{}, err
	}
	if money.Currency != strings.TrimSpace(engagement.Currency) {
		return nil, valueobject.Money{}, apperror.Validation(
			fmt.Sprintf("валюта %s не совпадает с валютой проекта %s", money.Currency, engagement.Currency),
		)
	}

	return engagement, money, nil
}

// Open удерживает средства по проекту и выставляет связанный счёт с тем же номером.
func (s *EscrowService) Open(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string) (*models.EscrowTransaction, *models.Invoice, error) {
	engagement, money, err := s.settlementParties(ctx, principal, engagementID, amount, currency)
	if err != nil {
		return nil, nil, err
	}

	var adminID *uuid.UUID
	if principal.IsAdmin() {
		adminID = &principal.ID
	}

	var escrow *models.EscrowTransaction
	var invoice *models.Invoice
	err = s.withInvoiceNumber(func(number string) error {
		escrow = &models.EscrowTransaction{
			EngagementID:  engagement.ID,
			ClientID:      engagement.ClientID,
			FreelancerID:  *engagement.FreelancerID,
			AdminID:       adminID,
			Amount:        money.Amount,
			Currency:      money.Currency,
			InvoiceNumber: number,
		}
		invoice = &models.Invoice{
			EngagementID:  engagement.ID,
			ClientID:      engagement.ClientID,
			FreelancerID:  *engagement.FreelancerID,
			InvoiceNumber: number,
			Amount:        money.Amount,
			Currency:      money.Currency,
			DueAt:         s.now().Add(s.dueIn),
		}
		return s.escrows.Open(ctx, escrow, invoice)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Entry(logrus.Fields{
		"engagement_id":  engagement.ID,
		"escrow_id":      escrow.ID,
		"invoice_number": escrow.InvoiceNumber,
		"amount":         money.String(),
	}).Info("escrow: средства удержаны")

	return escrow, invoice, nil
}

// IssueInvoice выставляет счёт без escrow.
func (s *EscrowService) IssueInvoice(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string, dueAt *time.Time) (*models.Invoice, error) {
	engagement, money, err := s.settlementParties(ctx, principal, engagementID, amount, currency)
	if err != nil {
		return nil, err
	}

	due := s.now().Add(s.dueIn)
	if dueAt != nil {
		if !dueAt.After(s.now()) {
			return nil, apperror.Validation("срок оплаты должен быть в будущем")
		}
		due = *dueAt
	}

	var invoice *models.Invoice
	err = s.withInvoiceNumber(func(number string) error {
		invoice = &models.Invoice{
			EngagementID:  engagement.ID,
			ClientID:      engagement.ClientID,
			FreelancerID:  *engagement.FreelancerID,
			InvoiceNumber: number,
			Amount:        money.Amount,
			Currency:      money.Currency,
			DueAt:         due,
		}
		return s.invoices.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetByEngagement возвращает escrow проекта участнику.
func (s *EscrowService) GetByEngagement(ctx context.Context, principal models.Principal, engagementID uuid.UUID) (*models.EscrowTransaction, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, engagement) {
		return nil, apperror.ErrForbidden
	}
	return s.escrows.GetByEngagement(ctx, engagementID)
}

// Release переводит средства фрилансеру: held -> released.
func (s *EscrowService) Release(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.EscrowTransaction, error) {
	if _, err := s.loadEscrow(ctx, principal, id, canManage); err != nil {
		return nil, err
	}

	escrow, err := s.escrows.Settle(ctx, id, valueobject.EscrowStatusReleased, nil)
	if err != nil {
		return nil, err
	}

	s.afterSettlement(ctx, escrow, models.TemplatePaymentReleased)
	return escrow, nil
}

// Refund возвращает средства клиенту: held -> refunded.
func (s *EscrowService) Refund(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error) {
	notes, err := settlementNotes(reason)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadEscrow(ctx, principal, id, canManage); err != nil {
		return nil, err
	}

	escrow, err := s.escrows.Settle(ctx, id, valueobject.EscrowStatusRefunded, notes)
	if err != nil {
		return nil, err
	}

	s.afterSettlement(ctx, escrow, models.TemplatePaymentRefunded)
	return escrow, nil
}

// Dispute открывает спор: held -> disputed. Из disputed выхода нет.
func (s *EscrowService) Dispute(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.Validation("причина спора обязательна")
	}
	notes, err := settlementNotes(reason)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadEscrow(ctx, principal, id, canAccess); err != nil {
		return nil, err
	}

	escrow, err := s.escrows.Settle(ctx, id, valueobject.EscrowStatusDisputed, notes)
	if err != nil {
		return nil, err
	}

	logger.Entry(logrus.Fields{"escrow_id": id, "opened_by": principal.ID}).Warn("escrow: открыт спор")
	return escrow, nil
}

// PayInvoice подтверждает оплату счёта клиентом. Связанный escrow
// освобождается в той же транзакции; повторная оплата ничего не меняет.
func (s *EscrowService) PayInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.InvoicePayment, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.ClientID != principal.ID {
		return nil, apperror.ErrForbidden
	}

	payment, err := s.invoices.Pay(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.AlreadyPaid {
		return payment, nil
	}

	logger.Entry(logrus.Fields{
		"invoice_id":      id,
		"invoice_number":  payment.Invoice.InvoiceNumber,
		"released_escrow": payment.ReleasedEscrow,
	}).Info("invoice: счёт оплачен")

	if payment.ReleasedEscrow && payment.Escrow != nil {
		s.afterSettlement(ctx, payment.Escrow, models.TemplatePaymentReleased)
	}
	return payment, nil
}

// GetInvoice возвращает счёт клиенту, фрилансеру или администратору.
func (s *EscrowService) GetInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && invoice.ClientID != principal.ID && invoice.FreelancerID != principal.ID {
		return nil, apperror.ErrForbidden
	}
	return invoice, nil
}

// ListInvoices возвращает счета участника.
func (s *EscrowService) ListInvoices(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error) {
	return s.invoices.ListForUser(ctx, principal, limit, offset)
}

// CancelInvoice отменяет неоплаченный счёт. Только для администратора.
func (s *EscrowService) CancelInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error) {
	if !principal.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	return s.invoices.Cancel(ctx, id)
}

// MarkOverdue переводит просроченные счета в overdue.
func (s *EscrowService) MarkOverdue(ctx context.Context) (int64, error) {
	count, err := s.invoices.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Entry(logrus.Fields{"count": count}).Info("invoice: счета просрочены")
	}
	return count, nil
}

func (s *EscrowService) loadEscrow(ctx context.Context, principal models.Principal, id uuid.UUID, allowed func(models.Principal, *models.Engagement) bool) (*models.EscrowTransaction, error) {
	escrow, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	engagement, err := s.engagements.GetByID(ctx, escrow.EngagementID)
	if err != nil {
		return nil, err
	}
	if !allowed(principal, engagement) {
		return nil, apperror.ErrForbidden
	}
	return escrow, nil
}

func (s *EscrowService) afterSettlement(ctx context.Context, escrow *models.EscrowTransaction, template string) {
	fields := logrus.Fields{"escrow_id": escrow.ID, "engagement_id": escrow.EngagementID, "status": escrow.Status}
	logger.Entry(fields).Info("escrow: расчёт завершён")

	data := map[string]any{
		"escrow_id":      escrow.ID,
		"engagement_id":  escrow.EngagementID,
		"amount":         escrow.Amount.StringFixed(2),
		"currency":       escrow.Currency,
		"invoice_number": escrow.InvoiceNumber,
	}
	runPostCommit(ctx, fields,
		notifyHook(s.notifier, escrow.FreelancerID, template, data),
		notifyHook(s.notifier, escrow.ClientID, template, data),
	)
}

func settlementNotes(reason string) (*string, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина", reason, 0, validation.MaxReasonLength); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, nil
	}
	return &reason, nil
}
