package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/http/handlers/common"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

type escrowService interface {
	Open(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string) (*models.EscrowTransaction, *models.Invoice, error)
	IssueInvoice(ctx context.Context, principal models.Principal, engagementID uuid.UUID, amount decimal.Decimal, currency string, dueAt *time.Time) (*models.Invoice, error)
	GetByEngagement(ctx context.Context, principal models.Principal, engagementID uuid.UUID) (*models.EscrowTransaction, error)
	Release(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.EscrowTransaction, error)
	Refund(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error)
	Dispute(ctx context.Context, principal models.Principal, id uuid.UUID, reason string) (*models.EscrowTransaction, error)
	PayInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.InvoicePayment, error)
	GetInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, principal models.Principal, limit, offset int) ([]models.Invoice, int, error)
	CancelInvoice(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Invoice, error)
}

// EscrowHandler обслуживает escrow и счета.
type EscrowHandler struct {
	escrow escrowService
}

// NewEscrowHandler создаёт новый хэндлер.
func NewEscrowHandler(escrow escrowService) *EscrowHandler {
	return &EscrowHandler{escrow: escrow}
}

type amountRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// OpenEscrow обрабатывает POST /engagements/:id/escrow.
func (h *EscrowHandler) OpenEscrow(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	engagementID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req amountRequest
	if !common.BindJSON(c, &req) {
		return
	}

	escrow, invoice, err := h.escrow.Open(c.Request.Context(), principal, engagementID, req.Amount, req.Currency)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, "средства зарезервированы", gin.H{
		"escrow":  escrow,
		"invoice": invoice,
	})
}

// GetEscrow обрабатывает GET /engagements/:id/escrow.
func (h *EscrowHandler) GetEscrow(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	engagementID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	escrow, err := h.escrow.GetByEngagement(c.Request.Context(), principal, engagementID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "", escrow)
}

// ReleaseEscrow обрабатывает POST /escrow/:id/release.
func (h *EscrowHandler) ReleaseEscrow(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	escrow, err := h.escrow.Release(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "средства переведены фрилансеру", escrow)
}

// RefundEscrow обрабатывает POST /escrow/:id/refund.
func (h *EscrowHandler) RefundEscrow(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reasonRequest
	if !common.BindOptionalJSON(c, &req) {
		return
	}

	escrow, err := h.escrow.Refund(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "средства возвращены клиенту", escrow)
}

// DisputeEscrow обрабатывает POST /escrow/:id/dispute.
func (h *EscrowHandler) DisputeEscrow(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reasonRequest
	if !common.BindJSON(c, &req) {
		return
	}

	escrow, err := h.escrow.Dispute(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "открыт спор", escrow)
}

// IssueInvoice обрабатывает POST /engagements/:id/invoices.
func (h *EscrowHandler) IssueInvoice(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	engagementID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		amountRequest
		DueAt *time.Time `json:"due_at"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	invoice, err := h.escrow.IssueInvoice(c.Request.Context(), principal, engagementID, req.Amount, req.Currency, req.DueAt)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, "счёт выставлен", invoice)
}

// ListMyInvoices обрабатывает GET /invoices/my.
func (h *EscrowHandler) ListMyInvoices(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}

	page := common.GetPagination(c)
	items, total, err := h.escrow.ListInvoices(c.Request.Context(), principal, page.Limit(), page.Offset())
	if err != nil {
		common.Fail(c, err)
		return
	}
	if items == nil {
		items = []models.Invoice{}
	}

	response.Paginated(c, items, page.Page, page.PerPage, total)
}

// GetInvoice обрабатывает GET /invoices/:id.
func (h *EscrowHandler) GetInvoice(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.escrow.GetInvoice(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "", invoice)
}

// PayInvoice обрабатывает POST /invoices/:id/pay.
// Повторная оплата не ошибка: в ответе already_paid=true.
func (h *EscrowHandler) PayInvoice(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.escrow.PayInvoice(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	message := "счёт оплачен"
	if payment.AlreadyPaid {
		message = "счёт уже оплачен"
	}
	response.Success(c, message, payment)
}

// CancelInvoice обрабатывает POST /invoices/:id/cancel.
func (h *EscrowHandler) CancelInvoice(c *gin.Context) {
	principal, ok := common.RequirePrincipal(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.escrow.CancelInvoice(c.Request.Context(), principal, id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, "счёт отменён", invoice)
}
