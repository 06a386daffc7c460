// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                 primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name               string              `json:"name" bson:"name"`
	Email              string              `json:"email" bson:"email"`
	Password           string              `json:"password,omitempty" bson:"password"`
	Phone              string              `json:"phone,omitempty" bson:"phone,omitempty"`
	DateOfBirth        string              `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Country            string              `json:"country,omitempty" bson:"country,omitempty"`
	Province           string              `json:"province,omitempty" bson:"province,omitempty"`
	CinicNumber        string              `json:"cinicNumber,omitempty" bson:"cinicNumber,omitempty"`
	UplineName         string              `json:"uplineName,omitempty" bson:"uplineName,omitempty"`
	UplineID           *primitive.ObjectID `json:"uplineId,omitempty" bson:"uplineId,omitempty"`
	ReferralCode       string              `json:"referralCode" bson:"referralCode"`
	Role               string              `json:"role" bson:"role"` // "user" or "admin"
	Designation        string              `json:"designation" bson:"designation"`
	Points             float64             `json:"points" bson:"points"`
	DiscountPercentage float64             `json:"discountPercentage" bson:"discountPercentage"`
	PackageID          string              `json:"packageId,omitempty" bson:"packageId,omitempty"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	DateOfBirth     string `json:"dob,omitempty"`
	Country         string `json:"country,omitempty"`
	Province        string `json:"province,omitempty"`
	UplineName      string `json:"uplineName,omitempty"`
	UplineID        string `json:"uplineId,omitempty"` // ObjectID hex or short referral code
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	CinicNumber     string `json:"cinicNumber,omitempty"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	PackageID       string `json:"packageId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateUserRequest struct {
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Points      *float64 `json:"points,omitempty"`
}

type AddPointsRequest struct {
	UserID string  `json:"userId" validate:"required"`
	Points float64 `json:"points" validate:"required"`
}

// ReferralData is returned by the referral info endpoint
type ReferralData struct {
	ReferralCode  string  `json:"referralCode"`
	ReferralCount int     `json:"referralCount"`
	Points        float64 `json:"points"`
	ReferralLink  string  `json:"referralLink"`
}
