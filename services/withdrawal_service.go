// services/withdrawal_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// reservationRetries bounds the optimistic retry loop when concurrent
// withdrawals race over the same ledger entries.
const reservationRetries = 3

type WithdrawalService struct {
	db                *mongo.Client
	withdrawals       *mongo.Collection
	commissions       *mongo.Collection
	commissionService *CommissionService
}

func NewWithdrawalService(db *mongo.Client, commissionService *CommissionService) *WithdrawalService {
	return &WithdrawalService{
		db:                db,
		withdrawals:       config.GetCollection(db, "withdrawals"),
		commissions:       config.GetCollection(db, "commissions"),
		commissionService: commissionService,
	}
}

// ReservationTake is one step of a reservation plan: move Take off the entry
// into pending. Remainder is what stays available on the original entry; a
// zero remainder means the whole entry flips status instead of splitting.
type ReservationTake struct {
	Entry     models.Commission
	Take      float64
	Remainder float64
}

// BuildReservationPlan walks the available entries oldest first and decides
// which entries to reserve to cover amount. At most the last take is partial.
// Entries must already be sorted by createdAt ascending.
func BuildReservationPlan(entries []models.Commission, amount float64) ([]ReservationTake, error) {
	amount = Round2(amount)
	if amount <= 0 {
		return nil, NewValidationError("amount", "must be positive")
	}

	var plan []ReservationTake
	remaining := amount
	for _, entry := range entries {
		if remaining <= 0 {
			break
		}
		if entry.Amount <= remaining {
			plan = append(plan, ReservationTake{Entry: entry, Take: entry.Amount})
			remaining = Round2(remaining - entry.Amount)
		} else {
			plan = append(plan, ReservationTake{
				Entry:     entry,
				Take:      remaining,
				Remainder: Round2(entry.Amount - remaining),
			})
			remaining = 0
		}
	}
	if remaining > 0 {
		return nil, ErrInsufficientBalance
	}
	return plan, nil
}

func validateWithdrawalRequest(req *models.WithdrawalRequest) error {
	if req.Amount < models.MinWithdrawalAmount {
		return NewValidationError("amount",
			fmt.Sprintf("minimum withdrawal amount is %.0f", models.MinWithdrawalAmount))
	}
	switch req.PaymentMethod {
	case models.PaymentMethodEasypaisa, models.PaymentMethodJazzcash:
		if req.AccountDetails.PhoneNumber == "" {
			return NewValidationError("accountDetails.phoneNumber",
				"phone number is required for "+req.PaymentMethod)
		}
	case models.PaymentMethodBank:
		if req.AccountDetails.AccountNumber == "" || req.AccountDetails.AccountTitle == "" || req.AccountDetails.BankName == "" {
			return NewValidationError("accountDetails",
				"account number, account title and bank name are required for bank transfers")
		}
	default:
		return NewValidationError("paymentMethod",
			"must be one of easypaisa, jazzcash, bank")
	}
	return nil
}

// CreateWithdrawal reserves available commission entries to cover the
// requested amount and files a pending withdrawal. The reservation runs in a
// mongo transaction with optimistic status checks on every touched entry. If
// a concurrent withdrawal wins the race on an entry, the whole transaction
// aborts and the reservation is rebuilt from a fresh read, up to
// reservationRetries times.
func (s *WithdrawalService) CreateWithdrawal(userID primitive.ObjectID, req *models.WithdrawalRequest) (*models.Withdrawal, error) {
	if err := validateWithdrawalRequest(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var withdrawal *models.Withdrawal
	var err error
	for attempt := 0; attempt < reservationRetries; attempt++ {
		withdrawal, err = s.tryReserve(ctx, userID, req)
		if err == nil {
			s.commissionService.invalidateSummaryCache(userID)
			return withdrawal, nil
		}
		if !errors.Is(err, ErrReservationConflict) {
			return nil, err
		}
		log.Printf("Withdrawal reservation conflict for user %s, attempt %d", userID.Hex(), attempt+1)
	}
	return nil, ErrReservationConflict
}

func (s *WithdrawalService) tryReserve(ctx context.Context, userID primitive.ObjectID, req *models.WithdrawalRequest) (*models.Withdrawal, error) {
	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := s.commissions.Find(sc, bson.M{
			"recipientId": userID,
			"status":      models.CommissionStatusAvailable,
		}, opts)
		if err != nil {
			return nil, err
		}
		var available []models.Commission
		if err := cursor.All(sc, &available); err != nil {
			return nil, err
		}

		plan, err := BuildReservationPlan(available, req.Amount)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		withdrawal := &models.Withdrawal{
			ID:             primitive.NewObjectID(),
			UserID:         userID,
			Amount:         Round2(req.Amount),
			PaymentMethod:  req.PaymentMethod,
			AccountDetails: req.AccountDetails,
			Status:         models.WithdrawalStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := s.withdrawals.InsertOne(sc, withdrawal); err != nil {
			return nil, err
		}

		for _, take := range plan {
			if err := s.applyTake(sc, take, withdrawal.ID); err != nil {
				return nil, err
			}
		}
		return withdrawal, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Withdrawal), nil
}

// applyTake moves one planned take into pending. The status filter is the
// optimistic check: if another writer already took the entry the update
// matches nothing and the transaction aborts with a conflict.
func (s *WithdrawalService) applyTake(sc mongo.SessionContext, take ReservationTake, withdrawalID primitive.ObjectID) error {
	if take.Remainder == 0 {
		res, err := s.commissions.UpdateOne(sc,
			bson.M{"_id": take.Entry.ID, "status": models.CommissionStatusAvailable},
			bson.M{"$set": bson.M{
				"status":              models.CommissionStatusPending,
				"pendingWithdrawalId": withdrawalID,
			}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return ErrReservationConflict
		}
		return nil
	}

	// Partial take: shrink the original in place and insert a pending
	// sibling for the reserved slice. The two amounts sum to the original.
	res, err := s.commissions.UpdateOne(sc,
		bson.M{"_id": take.Entry.ID, "status": models.CommissionStatusAvailable, "amount": take.Entry.Amount},
		bson.M{"$set": bson.M{"amount": take.Remainder}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrReservationConflict
	}

	sibling := take.Entry
	sibling.ID = primitive.NewObjectID()
	sibling.Amount = take.Take
	sibling.Status = models.CommissionStatusPending
	sibling.PendingWithdrawalID = &withdrawalID
	_, err = s.commissions.InsertOne(sc, sibling)
	return err
}

// DecideReservation maps the entries reserved by a withdrawal to their
// post-decision state. Approval settles them to paid and stamps the payment
// time; rejection releases them back to available. Either way the
// reservation link is cleared and amounts are untouched, so the reserved
// total is conserved.
func DecideReservation(reserved []models.Commission, approved bool, decidedAt time.Time) []models.Commission {
	decided := make([]models.Commission, len(reserved))
	for i, entry := range reserved {
		entry.PendingWithdrawalID = nil
		if approved {
			entry.Status = models.CommissionStatusPaid
			paidAt := decidedAt
			entry.PaidAt = &paidAt
		} else {
			entry.Status = models.CommissionStatusAvailable
		}
		decided[i] = entry
	}
	return decided
}

// UpdateWithdrawalStatus is the admin decision on a pending withdrawal.
// Approval settles every reserved entry to paid and stamps a payout
// reference; rejection releases them back to available. Split entries are
// not re-merged on release.
func (s *WithdrawalService) UpdateWithdrawalStatus(withdrawalID, adminID primitive.ObjectID, req *models.UpdateWithdrawalStatusRequest) (*models.Withdrawal, error) {
	if req.Status != models.WithdrawalStatusApproved && req.Status != models.WithdrawalStatusRejected {
		return nil, NewValidationError("status", "must be approved or rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var withdrawal models.Withdrawal
		if err := s.withdrawals.FindOne(sc, bson.M{"_id": withdrawalID}).Decode(&withdrawal); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrWithdrawalNotFound
			}
			return nil, err
		}
		if withdrawal.Status != models.WithdrawalStatusPending {
			return nil, ErrWithdrawalProcessed
		}

		now := time.Now()
		approved := req.Status == models.WithdrawalStatusApproved

		cursor, err := s.commissions.Find(sc, bson.M{
			"pendingWithdrawalId": withdrawalID,
			"status":              models.CommissionStatusPending,
		})
		if err != nil {
			return nil, err
		}
		var reserved []models.Commission
		if err := cursor.All(sc, &reserved); err != nil {
			return nil, err
		}

		for _, entry := range DecideReservation(reserved, approved, now) {
			if _, err := s.commissions.ReplaceOne(sc, bson.M{"_id": entry.ID}, entry); err != nil {
				return nil, err
			}
		}

		update := bson.M{
			"status":      req.Status,
			"adminNote":   req.AdminNote,
			"processedBy": adminID,
			"processedAt": now,
			"updatedAt":   now,
		}
		if approved {
			ref := uuid.New().String()
			update["transactionRef"] = ref
			withdrawal.TransactionRef = ref
		}

		// Status in the filter keeps two admins from deciding the same
		// request twice.
		res, err := s.withdrawals.UpdateOne(sc,
			bson.M{"_id": withdrawalID, "status": models.WithdrawalStatusPending},
			bson.M{"$set": update},
		)
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount == 0 {
			return nil, ErrWithdrawalProcessed
		}

		withdrawal.Status = req.Status
		withdrawal.AdminNote = req.AdminNote
		withdrawal.ProcessedBy = &adminID
		withdrawal.ProcessedAt = &now
		withdrawal.UpdatedAt = now
		return &withdrawal, nil
	})
	if err != nil {
		return nil, err
	}

	withdrawal := result.(*models.Withdrawal)
	s.commissionService.invalidateSummaryCache(withdrawal.UserID)
	return withdrawal, nil
}

func (s *WithdrawalService) GetWithdrawalByID(withdrawalID primitive.ObjectID) (*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var withdrawal models.Withdrawal
	if err := s.withdrawals.FindOne(ctx, bson.M{"_id": withdrawalID}).Decode(&withdrawal); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &withdrawal, nil
}

func (s *WithdrawalService) GetUserWithdrawals(userID primitive.ObjectID) ([]models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.withdrawals.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *WithdrawalService) GetAllWithdrawals(status string) ([]models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.withdrawals.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *WithdrawalService) GetRecentWithdrawals(limit int64) ([]models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := s.withdrawals.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// GetWithdrawalStats aggregates withdrawal counts and amounts by status for
// the admin dashboard.
func (s *WithdrawalService) GetWithdrawalStats() (*models.WithdrawalStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}
	cursor, err := s.withdrawals.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Status string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}

	stats := &models.WithdrawalStats{}
	for _, b := range buckets {
		stats.Total += b.Count
		stats.TotalAmount = Round2(stats.TotalAmount + b.Amount)
		switch b.Status {
		case models.WithdrawalStatusPending:
			stats.Pending = b.Count
			stats.PendingAmount = Round2(b.Amount)
		case models.WithdrawalStatusApproved:
			stats.Approved = b.Count
			stats.ApprovedAmount = Round2(b.Amount)
		case models.WithdrawalStatusRejected:
			stats.Rejected = b.Count
			stats.RejectedAmount = Round2(b.Amount)
		}
	}
	return stats, nil
}
