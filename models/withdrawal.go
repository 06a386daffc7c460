// models/withdrawal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Withdrawal statuses
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Payment methods accepted for withdrawals
const (
	PaymentMethodEasypaisa = "easypaisa"
	PaymentMethodJazzcash  = "jazzcash"
	PaymentMethodBank      = "bank"
)

// MinWithdrawalAmount is the smallest withdrawal a user may request.
const MinWithdrawalAmount = 100.0

type AccountDetails struct {
	AccountNumber string `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	AccountTitle  string `json:"accountTitle,omitempty" bson:"accountTitle,omitempty"`
	BankName      string `json:"bankName,omitempty" bson:"bankName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
}

// Withdrawal is a cash-out request. It owns the commission entries whose
// pendingWithdrawalId points back at it while the request is pending.
type Withdrawal struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `json:"userId" bson:"userId"`
	Amount         float64             `json:"amount" bson:"amount"`
	PaymentMethod  string              `json:"paymentMethod" bson:"paymentMethod"`
	AccountDetails AccountDetails      `json:"accountDetails" bson:"accountDetails"`
	Status         string              `json:"status" bson:"status"`
	AdminNote      string              `json:"adminNote,omitempty" bson:"adminNote,omitempty"`
	ProcessedBy    *primitive.ObjectID `json:"processedBy,omitempty" bson:"processedBy,omitempty"`
	ProcessedAt    *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	TransactionRef string              `json:"transactionRef,omitempty" bson:"transactionRef,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type WithdrawalRequest struct {
	Amount         float64        `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string         `json:"paymentMethod" validate:"required"`
	AccountDetails AccountDetails `json:"accountDetails"`
}

type UpdateWithdrawalStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	AdminNote string `json:"adminNote,omitempty"`
}

// WithdrawalStats is the admin dashboard aggregate over withdrawal requests.
type WithdrawalStats struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Approved       int64   `json:"approved"`
	Rejected       int64   `json:"rejected"`
	TotalAmount    float64 `json:"totalAmount"`
	PendingAmount  float64 `json:"pendingAmount"`
	ApprovedAmount float64 `json:"approvedAmount"`
	RejectedAmount float64 `json:"rejectedAmount"`
}
