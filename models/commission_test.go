package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommissionStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to CommissionStatus
	}{
		{CommissionStatusAvailable, CommissionStatusPending},
		{CommissionStatusAvailable, CommissionStatusCancelled},
		{CommissionStatusPending, CommissionStatusPaid},
		{CommissionStatusPending, CommissionStatusAvailable},
		{CommissionStatusPending, CommissionStatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct {
		from, to CommissionStatus
	}{
		{CommissionStatusAvailable, CommissionStatusPaid},
		{CommissionStatusPaid, CommissionStatusAvailable},
		{CommissionStatusPaid, CommissionStatusPending},
		{CommissionStatusPaid, CommissionStatusCancelled},
		{CommissionStatusCancelled, CommissionStatusAvailable},
		{CommissionStatusCancelled, CommissionStatusPending},
		{CommissionStatusCancelled, CommissionStatusPaid},
		{CommissionStatusAvailable, CommissionStatusAvailable},
		{CommissionStatusPending, CommissionStatusPending},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestCommissionStatusIsValid(t *testing.T) {
	for _, s := range []CommissionStatus{
		CommissionStatusAvailable, CommissionStatusPending,
		CommissionStatusPaid, CommissionStatusCancelled,
	} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, CommissionStatus("refunded").IsValid())
	assert.False(t, CommissionStatus("").IsValid())
}
