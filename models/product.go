// models/product.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID       primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	SKU      string             `json:"id" bson:"id"` // catalog identifier used by the storefront
	Name     string             `json:"name" bson:"name"`
	Price    float64            `json:"price" bson:"price"`
	Discount string             `json:"discount,omitempty" bson:"discount,omitempty"`
	Image    string             `json:"image,omitempty" bson:"image,omitempty"`
	Rating   float64            `json:"rating" bson:"rating"`
	Reviews  int                `json:"reviews" bson:"reviews"`
	Category string             `json:"category,omitempty" bson:"category,omitempty"`
	Points   float64            `json:"points" bson:"points"`
}

// Package is an enrollment package a user can register with or purchase later.
type Package struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Points            float64 `json:"points"`
	UplinerPoints     float64 `json:"uplinerPoints"`
	TeamLeaderPoints  float64 `json:"teamLeaderPoints"`
	PurchaserDiscount float64 `json:"purchaserDiscount"`
}

// Packages is the static enrollment catalog.
var Packages = []Package{
	{ID: "starter", Name: "Essential Starter", Price: 3000, Points: 3, UplinerPoints: 3, TeamLeaderPoints: 3, PurchaserDiscount: 3},
	{ID: "business", Name: "Prime", Price: 5500, Points: 5, UplinerPoints: 3, TeamLeaderPoints: 3, PurchaserDiscount: 5},
	{ID: "empire", Name: "VIP", Price: 9500, Points: 7, UplinerPoints: 3, TeamLeaderPoints: 3, PurchaserDiscount: 8},
	{ID: "ultimate", Name: "Supreme", Price: 15000, Points: 11, UplinerPoints: 3, TeamLeaderPoints: 3, PurchaserDiscount: 10},
}

// FindPackage looks up a package by its catalog id.
func FindPackage(id string) *Package {
	for i := range Packages {
		if Packages[i].ID == id {
			return &Packages[i]
		}
	}
	return nil
}
