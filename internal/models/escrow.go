package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
)

// EscrowTransaction представляет средства, удерживаемые по проекту.
type EscrowTransaction struct {
	ID            uuid.UUID                `db:"id" json:"id"`
	EngagementID  uuid.UUID                `db:"engagement_id" json:"engagement_id"`
	ClientID      uuid.UUID                `db:"client_id" json:"client_id"`
	FreelancerID  uuid.UUID                `db:"freelancer_id" json:"freelancer_id"`
	AdminID       *uuid.UUID               `db:"admin_id" json:"admin_id,omitempty"`
	Amount        decimal.Decimal          `db:"amount" json:"amount"`
	Currency      string                   `db:"currency" json:"currency"`
	Status        valueobject.EscrowStatus `db:"status" json:"status"`
	InvoiceNumber string                   `db:"invoice_number" json:"invoice_number"`
	HeldAt        time.Time                `db:"held_at" json:"held_at"`
	ReleasedAt    *time.Time               `db:"released_at" json:"released_at,omitempty"`
	RefundedAt    *time.Time               `db:"refunded_at" json:"refunded_at,omitempty"`
	DisputedAt    *time.Time               `db:"disputed_at" json:"disputed_at,omitempty"`
	Notes         *string                  `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time                `db:"updated_at" json:"updated_at"`
}

// Invoice представляет счёт, по которому клиент подтверждает оплату.
type Invoice struct {
	ID            uuid.UUID                 `db:"id" json:"id"`
	EngagementID  uuid.UUID                 `db:"engagement_id" json:"engagement_id"`
	ClientID      uuid.UUID                 `db:"client_id" json:"client_id"`
	FreelancerID  uuid.UUID                 `db:"freelancer_id" json:"freelancer_id"`
	EscrowID      *uuid.UUID                `db:"escrow_id" json:"escrow_id,omitempty"`
	InvoiceNumber string                    `db:"invoice_number" json:"invoice_number"`
	Amount        decimal.Decimal           `db:"amount" json:"amount"`
	Currency      string                    `db:"currency" json:"currency"`
	Status        valueobject.InvoiceStatus `db:"status" json:"status"`
	IssuedAt      time.Time                 `db:"issued_at" json:"issued_at"`
	DueAt         time.Time                 `db:"due_at" json:"due_at"`
	PaidAt        *time.Time                `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time                 `db:"created_at" json:"created_at"`
}

// InvoicePayment описывает результат оплаты счёта.
type InvoicePayment struct {
	Invoice        *Invoice           `json:"invoice"`
	Escrow         *EscrowTransaction `json:"escrow,omitempty"`
	AlreadyPaid    bool               `json:"already_paid"`
	ReleasedEscrow bool               `json:"released_escrow"`
}
