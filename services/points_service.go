// services/points_service.go
package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// designationTier maps a points threshold to a rank and the discount it
// unlocks. Tiers are ordered ascending and a user never loses a discount
// once earned.
type designationTier struct {
	MinPoints   float64
	Name        string
	DiscountPct float64
}

var designationTiers = []designationTier{
	{0, "Bronze", 0},
	{100, "Silver", 5},
	{500, "Gold", 10},
	{1500, "Platinum", 15},
	{3000, "Diamond", 20},
}

// CalculateDesignation returns the rank and discount for a points total.
func CalculateDesignation(points float64) (string, float64) {
	tier := designationTiers[0]
	for _, t := range designationTiers {
		if points >= t.MinPoints {
			tier = t
		}
	}
	return tier.Name, tier.DiscountPct
}

type PointsService struct {
	users *mongo.Collection
}

func NewPointsService(db *mongo.Client) *PointsService {
	return &PointsService{users: config.GetCollection(db, "users")}
}

// AddPoints credits points to one user and refreshes their designation.
// $max on the discount keeps an already earned discount from shrinking if
// an admin ever subtracts points.
func (s *PointsService) AddPoints(userID primitive.ObjectID, points float64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newPoints := user.Points + points
	designation, discount := CalculateDesignation(newPoints)

	update := bson.M{
		"$inc": bson.M{"points": points},
		"$set": bson.M{
			"designation": designation,
			"updatedAt":   time.Now(),
		},
		"$max": bson.M{"discountPercentage": discount},
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return nil, err
	}

	user.Points = newPoints
	user.Designation = designation
	if discount > user.DiscountPercentage {
		user.DiscountPercentage = discount
	}
	return &user, nil
}

// DistributePoints awards purchase points up the referral chain. Each hop
// has its own points value from the catalog. A broken chain is logged and
// the remaining hops are skipped.
func (s *PointsService) DistributePoints(purchaser *models.User, purchaserPoints, uplinerPoints, teamLeadPoints float64) {
	if purchaserPoints > 0 {
		if _, err := s.AddPoints(purchaser.ID, purchaserPoints); err != nil {
			log.Printf("Failed to add points to purchaser %s: %v", purchaser.ID.Hex(), err)
		}
	}
	if uplinerPoints <= 0 && teamLeadPoints <= 0 {
		return
	}

	lookup := func(id primitive.ObjectID) (*models.User, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var u models.User
		err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &u, nil
	}

	upliner, teamLead, err := ResolveReferralChain(purchaser, lookup)
	if err != nil {
		log.Printf("Failed to resolve referral chain for points distribution: %v", err)
		return
	}
	if upliner != nil && uplinerPoints > 0 {
		if _, err := s.AddPoints(upliner.ID, uplinerPoints); err != nil {
			log.Printf("Failed to add points to upliner %s: %v", upliner.ID.Hex(), err)
		}
	}
	if teamLead != nil && teamLeadPoints > 0 {
		if _, err := s.AddPoints(teamLead.ID, teamLeadPoints); err != nil {
			log.Printf("Failed to add points to team lead %s: %v", teamLead.ID.Hex(), err)
		}
	}
}
