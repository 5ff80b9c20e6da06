package valueobject

import "github.com/ignatzorin/engagement-backend/internal/pkg/apperror"

type EngagementStatus string

const (
	EngagementStatusSubmitted  EngagementStatus = "submitted"
	EngagementStatusMatched    EngagementStatus = "matched"
	EngagementStatusInProgress EngagementStatus = "in_progress"
	EngagementStatusCompleted  EngagementStatus = "completed"
	EngagementStatusCancelled  EngagementStatus = "cancelled"
)

var engagementTransitions = map[EngagementStatus][]EngagementStatus{
	EngagementStatusSubmitted:  {EngagementStatusMatched, EngagementStatusCancelled},
	EngagementStatusMatched:    {EngagementStatusInProgress, EngagementStatusCancelled},
	EngagementStatusInProgress: {EngagementStatusCompleted, EngagementStatusCancelled},
	EngagementStatusCompleted:  {},
	EngagementStatusCancelled:  {},
}

func (s EngagementStatus) IsValid() bool {
	_, ok := engagementTransitions[s]
	return ok
}

func (s EngagementStatus) CanTransitionTo(next EngagementStatus) bool {
	return contains(engagementTransitions[s], next)
}

func (s EngagementStatus) IsTerminal() bool {
	return s == EngagementStatusCompleted || s == EngagementStatusCancelled
}

// HasFreelancer сообщает, допускает ли статус назначенного фрилансера.
// Для cancelled фрилансер может быть как назначен, так и нет.
func (s EngagementStatus) HasFreelancer() bool {
	switch s {
	case EngagementStatusMatched, EngagementStatusInProgress, EngagementStatusCompleted:
		return true
	}
	return false
}

// EngagementSourcesFor возвращает статусы проекта, из которых допустим переход в next.
func EngagementSourcesFor(next EngagementStatus) []EngagementStatus {
	var from []EngagementStatus
	for _, s := range []EngagementStatus{EngagementStatusSubmitted, EngagementStatusMatched, EngagementStatusInProgress, EngagementStatusCompleted, EngagementStatusCancelled} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

func NewEngagementStatus(status string) (EngagementStatus, error) {
	s := EngagementStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус проекта")
	}
	return s, nil
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusInEscrow PaymentStatus = "in_escrow"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type DeliverableStatus string

const (
	DeliverableStatusPending           DeliverableStatus = "pending"
	DeliverableStatusApproved          DeliverableStatus = "approved"
	DeliverableStatusRevisionRequested DeliverableStatus = "revision_requested"
	DeliverableStatusRejected          DeliverableStatus = "rejected"
)

// approved и rejected терминальны: повторная итерация оформляется новой версией.
var deliverableTransitions = map[DeliverableStatus][]DeliverableStatus{
	DeliverableStatusPending:           {DeliverableStatusApproved, DeliverableStatusRevisionRequested, DeliverableStatusRejected},
	DeliverableStatusRevisionRequested: {DeliverableStatusApproved, DeliverableStatusRevisionRequested, DeliverableStatusRejected},
	DeliverableStatusApproved:          {},
	DeliverableStatusRejected:          {},
}

func (s DeliverableStatus) IsValid() bool {
	_, ok := deliverableTransitions[s]
	return ok
}

func (s DeliverableStatus) CanTransitionTo(next DeliverableStatus) bool {
	return contains(deliverableTransitions[s], next)
}

// ReviewableFrom возвращает статусы, из которых допустим переход в next.
// Используется в условии UPDATE ... WHERE status = ANY(...).
func ReviewableFrom(next DeliverableStatus) []DeliverableStatus {
	var from []DeliverableStatus
	for _, s := range []DeliverableStatus{DeliverableStatusPending, DeliverableStatusRevisionRequested, DeliverableStatusApproved, DeliverableStatusRejected} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

type FeedbackKind string

const (
	FeedbackKindComment  FeedbackKind = "comment"
	FeedbackKindRevision FeedbackKind = "revision"
	FeedbackKindApproval FeedbackKind = "approval"
)

func (k FeedbackKind) IsValid() bool {
	switch k {
	case FeedbackKindComment, FeedbackKindRevision, FeedbackKindApproval:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
	EscrowStatusDisputed EscrowStatus = "disputed"
)

var escrowTransitions = map[EscrowStatus][]EscrowStatus{
	EscrowStatusHeld:     {EscrowStatusReleased, EscrowStatusRefunded, EscrowStatusDisputed},
	EscrowStatusReleased: {},
	EscrowStatusRefunded: {},
	EscrowStatusDisputed: {},
}

func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	return contains(escrowTransitions[s], next)
}

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusUnpaid:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return contains(invoiceTransitions[s], next)
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
