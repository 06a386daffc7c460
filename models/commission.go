// models/commission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionType tags which hop of the referral chain earned the entry.
type CommissionType string

const (
	CommissionTypeUpliner  CommissionType = "upliner"
	CommissionTypeTeamLead CommissionType = "team_lead"
)

// CommissionStatus is the lifecycle state of one ledger entry.
type CommissionStatus string

const (
	CommissionStatusAvailable CommissionStatus = "available"
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// commissionTransitions is the full transition table. Anything not listed
// here is rejected; paid and cancelled are terminal.
var commissionTransitions = map[CommissionStatus][]CommissionStatus{
	CommissionStatusAvailable: {CommissionStatusPending, CommissionStatusCancelled},
	CommissionStatusPending:   {CommissionStatusPaid, CommissionStatusAvailable, CommissionStatusCancelled},
	CommissionStatusPaid:      {},
	CommissionStatusCancelled: {},
}

// CanTransitionTo reports whether moving from s to next is a valid lifecycle
// transition.
func (s CommissionStatus) CanTransitionTo(next CommissionStatus) bool {
	for _, allowed := range commissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known states.
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusAvailable, CommissionStatusPending, CommissionStatusPaid, CommissionStatusCancelled:
		return true
	}
	return false
}

// Commission is a single ledger entry: money owed to a recipient from one
// transaction. An entry may be split during withdrawal reservation, in which
// case the original amount is reduced and a sibling entry carries the
// reserved remainder; the two always sum to the original amount.
type Commission struct {
	ID                  primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	TransactionID       primitive.ObjectID  `json:"transactionId" bson:"transactionId"`
	RecipientID         primitive.ObjectID  `json:"recipientId" bson:"recipientId"`
	RecipientName       string              `json:"recipientName" bson:"recipientName"`
	Amount              float64             `json:"amount" bson:"amount"`
	Percentage          float64             `json:"percentage" bson:"percentage"`
	CommissionType      CommissionType      `json:"commissionType" bson:"commissionType"`
	Status              CommissionStatus    `json:"status" bson:"status"`
	PendingWithdrawalID *primitive.ObjectID `json:"pendingWithdrawalId,omitempty" bson:"pendingWithdrawalId,omitempty"`
	CreatedAt           time.Time           `json:"createdAt" bson:"createdAt"`
	PaidAt              *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// CommissionSummary is the aggregated balance view for one recipient,
// always recomputed from the ledger entries.
type CommissionSummary struct {
	TotalEarned         float64 `json:"totalEarned" bson:"totalEarned"`
	TotalAvailable      float64 `json:"totalAvailable" bson:"totalAvailable"`
	TotalPending        float64 `json:"totalPending" bson:"totalPending"`
	TotalPaid           float64 `json:"totalPaid" bson:"totalPaid"`
	TotalCommissions    int64   `json:"totalCommissions" bson:"totalCommissions"`
	UplinerCommissions  int64   `json:"uplinerCommissions" bson:"uplinerCommissions"`
	TeamLeadCommissions int64   `json:"teamLeadCommissions" bson:"teamLeadCommissions"`
}

// CommissionDetails summarizes what one purchase generated.
type CommissionDetails struct {
	UplinerCommission  float64 `json:"uplinerCommission"`
	TeamLeadCommission float64 `json:"teamLeadCommission"`
	TotalCommissions   float64 `json:"totalCommissions"`
}
