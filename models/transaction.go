// models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types
const (
	TransactionTypePackagePurchase         = "package_purchase"
	TransactionTypeProductPurchase         = "product_purchase"
	TransactionTypeRegistrationWithPackage = "registration_with_package"
)

// Transaction records a completed purchase. It is written once by the
// commission engine and never mutated afterwards.
type Transaction struct {
	ID                   primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID               primitive.ObjectID  `json:"userId" bson:"userId"`
	UserName             string              `json:"userName" bson:"userName"`
	ProductID            string              `json:"productId" bson:"productId"`
	ProductName          string              `json:"productName" bson:"productName"`
	ProductPrice         float64             `json:"productPrice" bson:"productPrice"`
	Quantity             int                 `json:"quantity" bson:"quantity"`
	TotalAmount          float64             `json:"totalAmount" bson:"totalAmount"`
	ReferringUplinerID   *primitive.ObjectID `json:"referringUplinerId,omitempty" bson:"referringUplinerId,omitempty"`
	ReferringUplinerName string              `json:"referringUplinerName,omitempty" bson:"referringUplinerName,omitempty"`
	TeamLeadID           *primitive.ObjectID `json:"teamLeadId,omitempty" bson:"teamLeadId,omitempty"`
	TeamLeadName         string              `json:"teamLeadName,omitempty" bson:"teamLeadName,omitempty"`
	TransactionType      string              `json:"transactionType" bson:"transactionType"`
	Status               string              `json:"status" bson:"status"` // "completed", "pending", "cancelled", "refunded"
	CommissionsGenerated bool                `json:"commissionsGenerated" bson:"commissionsGenerated"`
	CreatedAt            time.Time           `json:"createdAt" bson:"createdAt"`
}

// TransactionStats is the admin dashboard aggregate
type TransactionStats struct {
	TotalSales        float64              `json:"totalSales"`
	TotalTransactions int64                `json:"totalTransactions"`
	MonthlySales      []MonthlySalesBucket `json:"monthlySales"`
	SalesByType       []SalesTypeBucket    `json:"salesByType"`
}

type MonthlySalesBucket struct {
	Year  int     `json:"year" bson:"year"`
	Month int     `json:"month" bson:"month"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

type SalesTypeBucket struct {
	TransactionType string  `json:"transactionType" bson:"_id"`
	Total           float64 `json:"total" bson:"total"`
	Count           int64   `json:"count" bson:"count"`
}
