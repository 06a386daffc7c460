// services/commission_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// Commission percentages for the two-hop referral chain.
const (
	UplinerCommissionPercent  = 15.0
	TeamLeadCommissionPercent = 5.0
)

const summaryCacheTTL = 5 * time.Minute

type CommissionService struct {
	db           *mongo.Client
	commissions  *mongo.Collection
	transactions *mongo.Collection
	users        *mongo.Collection
	redis        *redis.Client
}

func NewCommissionService(db *mongo.Client, redisClient *redis.Client) *CommissionService {
	return &CommissionService{
		db:           db,
		commissions:  config.GetCollection(db, "commissions"),
		transactions: config.GetCollection(db, "transactions"),
		users:        config.GetCollection(db, "users"),
		redis:        redisClient,
	}
}

// Round2 rounds to two decimal places, half away from zero for positive
// amounts. All commission amounts pass through here exactly once.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ResolveReferralChain walks at most two hops up from the purchaser: the
// direct upliner earns the upliner commission and the upliner's own upline
// earns the team lead commission. Self-references and two-hop cycles are
// skipped rather than rejected, so a corrupt chain degrades to fewer
// commissions instead of a failed purchase.
func ResolveReferralChain(purchaser *models.User, lookup func(primitive.ObjectID) (*models.User, error)) (upliner, teamLead *models.User, err error) {
	if purchaser.UplineID == nil {
		return nil, nil, nil
	}
	if *purchaser.UplineID == purchaser.ID {
		return nil, nil, nil
	}

	upliner, err = lookup(*purchaser.UplineID)
	if err != nil {
		return nil, nil, err
	}
	if upliner == nil {
		return nil, nil, nil
	}

	if upliner.UplineID == nil {
		return upliner, nil, nil
	}
	if *upliner.UplineID == purchaser.ID || *upliner.UplineID == upliner.ID {
		return upliner, nil, nil
	}

	teamLead, err = lookup(*upliner.UplineID)
	if err != nil {
		return upliner, nil, err
	}
	return upliner, teamLead, nil
}

// ProcessCommission records a completed purchase and credits the referral
// chain. The transaction document and the commission entries are written in
// a single mongo transaction so a crash can never leave a purchase with half
// its commissions. Purchase inputs are validated before anything is read or
// written. A broken referral chain is logged and produces fewer entries,
// never a failed purchase.
func (s *CommissionService) ProcessCommission(userID primitive.ObjectID, productID, productName string, productPrice float64, quantity int, transactionType string) (*models.Transaction, []models.Commission, *models.CommissionDetails, error) {
	if err := validatePurchase(productID, productName, productPrice, quantity); err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var purchaser models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&purchaser); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, nil, ErrUserNotFound
		}
		return nil, nil, nil, err
	}

	lookup := func(id primitive.ObjectID) (*models.User, error) {
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

	upliner, teamLead, err := ResolveReferralChain(&purchaser, lookup)
	if err != nil {
		log.Printf("Failed to resolve referral chain for user %s: %v", userID.Hex(), err)
		upliner, teamLead = nil, nil
	}

	totalAmount := Round2(productPrice * float64(quantity))
	now := time.Now()

	transaction := models.Transaction{
		ID:              primitive.NewObjectID(),
		UserID:          purchaser.ID,
		UserName:        purchaser.Name,
		ProductID:       productID,
		ProductName:     productName,
		ProductPrice:    productPrice,
		Quantity:        quantity,
		TotalAmount:     totalAmount,
		TransactionType: transactionType,
		Status:          "completed",
		CreatedAt:       now,
	}

	details := &models.CommissionDetails{}
	var entries []models.Commission

	if upliner != nil {
		amount := Round2(totalAmount * UplinerCommissionPercent / 100)
		details.UplinerCommission = amount
		transaction.ReferringUplinerID = &upliner.ID
		transaction.ReferringUplinerName = upliner.Name
		entries = append(entries, models.Commission{
			ID:             primitive.NewObjectID(),
			TransactionID:  transaction.ID,
			RecipientID:    upliner.ID,
			RecipientName:  upliner.Name,
			Amount:         amount,
			Percentage:     UplinerCommissionPercent,
			CommissionType: models.CommissionTypeUpliner,
			Status:         models.CommissionStatusAvailable,
			CreatedAt:      now,
		})
	}

	if teamLead != nil {
		amount := Round2(totalAmount * TeamLeadCommissionPercent / 100)
		details.TeamLeadCommission = amount
		transaction.TeamLeadID = &teamLead.ID
		transaction.TeamLeadName = teamLead.Name
		entries = append(entries, models.Commission{
			ID:             primitive.NewObjectID(),
			TransactionID:  transaction.ID,
			RecipientID:    teamLead.ID,
			RecipientName:  teamLead.Name,
			Amount:         amount,
			Percentage:     TeamLeadCommissionPercent,
			CommissionType: models.CommissionTypeTeamLead,
			Status:         models.CommissionStatusAvailable,
			CreatedAt:      now,
		})
	}

	details.TotalCommissions = Round2(details.UplinerCommission + details.TeamLeadCommission)
	transaction.CommissionsGenerated = len(entries) > 0

	session, err := s.db.StartSession()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.transactions.InsertOne(sc, transaction); err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			docs := make([]interface{}, len(entries))
			for i, entry := range entries {
				docs[i] = entry
			}
			if _, err := s.commissions.InsertMany(sc, docs); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if upliner != nil {
		s.invalidateSummaryCache(upliner.ID)
	}
	if teamLead != nil {
		s.invalidateSummaryCache(teamLead.ID)
	}

	return &transaction, entries, details, nil
}

func validatePurchase(productID, productName string, productPrice float64, quantity int) error {
	if productID == "" {
		return NewValidationError("productId", "product id is required")
	}
	if productName == "" {
		return NewValidationError("productName", "product name is required")
	}
	if productPrice <= 0 {
		return NewValidationError("productPrice", "must be positive")
	}
	if quantity <= 0 {
		return NewValidationError("quantity", "must be positive")
	}
	return nil
}

// CommissionQuery filters a recipient's ledger history.
type CommissionQuery struct {
	Status    string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int64
	Limit     int64
}

// GetUserCommissions returns a user's ledger entries, newest first, with
// optional status, type and date-range filters and page/limit pagination.
func (s *CommissionService) GetUserCommissions(userID primitive.ObjectID, q CommissionQuery) ([]models.Commission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"recipientId": userID}
	if q.Status != "" {
		if !models.CommissionStatus(q.Status).IsValid() {
			return nil, NewValidationError("status", "unknown commission status")
		}
		filter["status"] = q.Status
	}
	if q.Type != "" {
		filter["commissionType"] = q.Type
	}
	if q.StartDate != nil || q.EndDate != nil {
		dateFilter := bson.M{}
		if q.StartDate != nil {
			dateFilter["$gte"] = *q.StartDate
		}
		if q.EndDate != nil {
			dateFilter["$lte"] = *q.EndDate
		}
		filter["createdAt"] = dateFilter
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Page < 1 {
		q.Page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)
	cursor, err := s.commissions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	commissions := []models.Commission{}
	if err := cursor.All(ctx, &commissions); err != nil {
		return nil, err
	}
	return commissions, nil
}

// GetUserCommissionSummary aggregates a user's balance from the ledger. The
// summary is cached in redis and invalidated on every ledger mutation, so a
// cache hit is never more than one mutation stale. A malformed id yields a
// zeroed summary rather than an error.
func (s *CommissionService) GetUserCommissionSummary(userID string) (*models.CommissionSummary, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &models.CommissionSummary{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, summaryCacheKey(objID)).Result()
		if err == nil {
			var summary models.CommissionSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	// totalEarned counts every entry regardless of status, so the per-status
	// sums and cancelled write-offs always add back up to it.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipientId": objID}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalEarned": bson.M{"$sum": "$amount"},
			"totalAvailable": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.CommissionStatusAvailable}}, "$amount", 0,
			}}},
			"totalPending": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.CommissionStatusPending}}, "$amount", 0,
			}}},
			"totalPaid": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.CommissionStatusPaid}}, "$amount", 0,
			}}},
			"totalCommissions": bson.M{"$sum": 1},
			"uplinerCommissions": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$commissionType", models.CommissionTypeUpliner}}, 1, 0,
			}}},
			"teamLeadCommissions": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$commissionType", models.CommissionTypeTeamLead}}, 1, 0,
			}}},
		}}},
	}

	cursor, err := s.commissions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summary := &models.CommissionSummary{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(summary); err != nil {
			return nil, err
		}
	}
	summary.TotalEarned = Round2(summary.TotalEarned)
	summary.TotalAvailable = Round2(summary.TotalAvailable)
	summary.TotalPending = Round2(summary.TotalPending)
	summary.TotalPaid = Round2(summary.TotalPaid)

	if s.redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.redis.Set(ctx, summaryCacheKey(objID), data, summaryCacheTTL)
		}
	}

	return summary, nil
}

// CancelCommission writes off a single ledger entry. Entries reserved by an
// open withdrawal cannot be cancelled until the withdrawal is decided.
func (s *CommissionService) CancelCommission(commissionID primitive.ObjectID) (*models.Commission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var commission models.Commission
	if err := s.commissions.FindOne(ctx, bson.M{"_id": commissionID}).Decode(&commission); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}

	// An entry reserved by an open withdrawal stays out of reach even though
	// pending->cancelled is a legal transition: writing it off here would
	// leave the withdrawal covering less than its amount. The withdrawal has
	// to be decided first.
	if commission.PendingWithdrawalID != nil {
		return nil, fmt.Errorf("%w: entry is reserved by withdrawal %s",
			ErrInvalidTransition, commission.PendingWithdrawalID.Hex())
	}
	if !commission.Status.CanTransitionTo(models.CommissionStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, commission.Status)
	}

	// Status in the filter guards against a concurrent reservation taking
	// the entry between the read above and this write.
	result, err := s.commissions.UpdateOne(ctx,
		bson.M{"_id": commissionID, "status": commission.Status},
		bson.M{"$set": bson.M{"status": models.CommissionStatusCancelled}},
	)
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 0 {
		return nil, ErrReservationConflict
	}

	commission.Status = models.CommissionStatusCancelled
	s.invalidateSummaryCache(commission.RecipientID)
	return &commission, nil
}

func summaryCacheKey(userID primitive.ObjectID) string {
	return "commission:summary:" + userID.Hex()
}

func (s *CommissionService) invalidateSummaryCache(userID primitive.ObjectID) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.redis.Del(ctx, summaryCacheKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate commission summary cache for %s: %v", userID.Hex(), err)
	}
}
