package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

func TestEngagementStatus_Transitions(t *testing.T) {
	assert.True(t, EngagementStatusSubmitted.CanTransitionTo(EngagementStatusMatched))
	assert.True(t, EngagementStatusMatched.CanTransitionTo(EngagementStatusInProgress))
	assert.True(t, EngagementStatusInProgress.CanTransitionTo(EngagementStatusCompleted))

	assert.False(t, EngagementStatusSubmitted.CanTransitionTo(EngagementStatusInProgress))
	assert.False(t, EngagementStatusMatched.CanTransitionTo(EngagementStatusCompleted))
	assert.False(t, EngagementStatusCompleted.CanTransitionTo(EngagementStatusCancelled))
	assert.False(t, EngagementStatusCancelled.CanTransitionTo(EngagementStatusSubmitted))

	for _, s := range []EngagementStatus{EngagementStatusSubmitted, EngagementStatusMatched, EngagementStatusInProgress} {
		assert.True(t, s.CanTransitionTo(EngagementStatusCancelled), s)
	}
}

func TestNewEngagementStatus(t *testing.T) {
	s, err := NewEngagementStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, EngagementStatusInProgress, s)

	_, err = NewEngagementStatus("archived")
	assert.True(t, apperror.IsValidation(err))
}

func TestDeliverableStatus_TerminalStates(t *testing.T) {
	assert.False(t, DeliverableStatusApproved.CanTransitionTo(DeliverableStatusApproved))
	assert.False(t, DeliverableStatusRejected.CanTransitionTo(DeliverableStatusApproved))
	assert.False(t, DeliverableStatusRejected.CanTransitionTo(DeliverableStatusRevisionRequested))
	assert.True(t, DeliverableStatusRevisionRequested.CanTransitionTo(DeliverableStatusApproved))
	assert.False(t, DeliverableStatusApproved.CanTransitionTo(DeliverableStatusPending))
}

func TestReviewableFrom(t *testing.T) {
	reviewable := []DeliverableStatus{DeliverableStatusPending, DeliverableStatusRevisionRequested}
	assert.ElementsMatch(t, reviewable, ReviewableFrom(DeliverableStatusApproved))
	assert.ElementsMatch(t, reviewable, ReviewableFrom(DeliverableStatusRejected))
	assert.Empty(t, ReviewableFrom(DeliverableStatusPending))
}

func TestEngagementSourcesFor(t *testing.T) {
	assert.Equal(t, []EngagementStatus{EngagementStatusSubmitted}, EngagementSourcesFor(EngagementStatusMatched))
	assert.Equal(t, []EngagementStatus{EngagementStatusInProgress}, EngagementSourcesFor(EngagementStatusCompleted))
	assert.ElementsMatch(t,
		[]EngagementStatus{EngagementStatusSubmitted, EngagementStatusMatched, EngagementStatusInProgress},
		EngagementSourcesFor(EngagementStatusCancelled),
	)
	assert.Empty(t, EngagementSourcesFor(EngagementStatusSubmitted))
}

func TestEscrowAndInvoiceTransitions(t *testing.T) {
	assert.True(t, EscrowStatusHeld.CanTransitionTo(EscrowStatusReleased))
	assert.True(t, EscrowStatusHeld.CanTransitionTo(EscrowStatusDisputed))
	assert.False(t, EscrowStatusReleased.CanTransitionTo(EscrowStatusRefunded))
	assert.False(t, EscrowStatusRefunded.CanTransitionTo(EscrowStatusReleased))

	assert.True(t, InvoiceStatusOverdue.CanTransitionTo(InvoiceStatusPaid))
	assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusCancelled))
}

func TestNewMoney(t *testing.T) {
	m, err := NewPositiveMoney(decimal.RequireFromString("500.00"), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, "500.00 USD", m.String())

	_, err = NewPositiveMoney(decimal.Zero, "USD")
	assert.True(t, apperror.IsValidation(err))

	_, err = NewMoney(decimal.RequireFromString("-1"), "USD")
	assert.True(t, apperror.IsValidation(err))

	_, err = NewMoney(decimal.RequireFromString("10.005"), "USD")
	assert.True(t, apperror.IsValidation(err))

	_, err = NewMoney(decimal.RequireFromString("10"), "")
	assert.True(t, apperror.IsValidation(err))
}

func TestMoney_NoFloatDrift(t *testing.T) {
	a := decimal.RequireFromString("0.10")
	b := decimal.RequireFromString("0.20")
	m, err := NewMoney(a.Add(b), "EUR")
	require.NoError(t, err)
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("0.30")))
}
