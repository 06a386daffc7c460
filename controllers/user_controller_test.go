package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/services"
)

// A failed credit must come back as a failed outcome, never as an error that
// could turn an already-applied purchase into an error response.
func TestRecordCommissionFailureYieldsFailedOutcome(t *testing.T) {
	uc := &UserController{commissionService: &services.CommissionService{}}

	outcome := uc.recordCommission(primitive.NewObjectID(), "", "", 100, 1, models.TransactionTypePackagePurchase)

	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.Transaction)
	assert.Nil(t, outcome.Commissions)
	assert.Nil(t, outcome.Details)
}
