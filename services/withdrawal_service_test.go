package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/empowerup/empowerup_backend/models"
)

// entries builds available ledger entries with ascending createdAt, oldest
// first, matching the order CreateWithdrawal reads them in.
func entries(amounts ...float64) []models.Commission {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Commission, len(amounts))
	for i, a := range amounts {
		out[i] = models.Commission{
			ID:        primitive.NewObjectID(),
			Amount:    a,
			Status:    models.CommissionStatusAvailable,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func planTotals(plan []ReservationTake) (taken float64) {
	for _, t := range plan {
		taken += t.Take
	}
	return Round2(taken)
}

func TestBuildReservationPlan(t *testing.T) {
	t.Run("partial take splits the last entry", func(t *testing.T) {
		avail := entries(100, 50, 30)
		plan, err := BuildReservationPlan(avail, 120)
		require.NoError(t, err)
		require.Len(t, plan, 2)

		// First entry taken whole.
		assert.Equal(t, avail[0].ID, plan[0].Entry.ID)
		assert.Equal(t, 100.0, plan[0].Take)
		assert.Equal(t, 0.0, plan[0].Remainder)

		// Second entry split 20/30.
		assert.Equal(t, avail[1].ID, plan[1].Entry.ID)
		assert.Equal(t, 20.0, plan[1].Take)
		assert.Equal(t, 30.0, plan[1].Remainder)

		assert.Equal(t, 120.0, planTotals(plan))
	})

	t.Run("exact amount takes entries whole", func(t *testing.T) {
		avail := entries(100, 50, 30)
		plan, err := BuildReservationPlan(avail, 150)
		require.NoError(t, err)
		require.Len(t, plan, 2)
		for _, take := range plan {
			assert.Equal(t, 0.0, take.Remainder)
		}
		assert.Equal(t, 150.0, planTotals(plan))
	})

	t.Run("single entry partial", func(t *testing.T) {
		avail := entries(500)
		plan, err := BuildReservationPlan(avail, 120)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, 120.0, plan[0].Take)
		assert.Equal(t, 380.0, plan[0].Remainder)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := BuildReservationPlan(entries(50, 30), 120)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("no available entries", func(t *testing.T) {
		_, err := BuildReservationPlan(nil, 100)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("never leaves a zero remainder split", func(t *testing.T) {
		avail := entries(100, 50)
		plan, err := BuildReservationPlan(avail, 100)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, 0.0, plan[0].Remainder)
	})

	t.Run("conserves entry amounts", func(t *testing.T) {
		avail := entries(123.45, 67.89, 200.01)
		plan, err := BuildReservationPlan(avail, 250)
		require.NoError(t, err)
		for _, take := range plan {
			assert.Equal(t, take.Entry.Amount, Round2(take.Take+take.Remainder))
		}
		assert.Equal(t, 250.0, planTotals(plan))
	})

	t.Run("fifo order", func(t *testing.T) {
		avail := entries(30, 100)
		plan, err := BuildReservationPlan(avail, 30)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, avail[0].ID, plan[0].Entry.ID)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := BuildReservationPlan(entries(100), 0)
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestValidateWithdrawalRequest(t *testing.T) {
	t.Run("below minimum", func(t *testing.T) {
		err := validateWithdrawalRequest(&models.WithdrawalRequest{
			Amount:        99.99,
			PaymentMethod: models.PaymentMethodEasypaisa,
			AccountDetails: models.AccountDetails{
				PhoneNumber: "03001234567",
			},
		})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "amount")
	})

	t.Run("wallet methods require phone number", func(t *testing.T) {
		for _, method := range []string{models.PaymentMethodEasypaisa, models.PaymentMethodJazzcash} {
			err := validateWithdrawalRequest(&models.WithdrawalRequest{
				Amount:        150,
				PaymentMethod: method,
			})
			assert.Error(t, err, method)
		}
	})

	t.Run("bank requires full account details", func(t *testing.T) {
		err := validateWithdrawalRequest(&models.WithdrawalRequest{
			Amount:        150,
			PaymentMethod: models.PaymentMethodBank,
			AccountDetails: models.AccountDetails{
				AccountNumber: "PK00BANK0001",
			},
		})
		assert.Error(t, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		err := validateWithdrawalRequest(&models.WithdrawalRequest{
			Amount:        150,
			PaymentMethod: "paypal",
		})
		assert.Error(t, err)
	})

	t.Run("valid bank request", func(t *testing.T) {
		err := validateWithdrawalRequest(&models.WithdrawalRequest{
			Amount:        150,
			PaymentMethod: models.PaymentMethodBank,
			AccountDetails: models.AccountDetails{
				AccountNumber: "PK00BANK0001",
				AccountTitle:  "Ayesha Khan",
				BankName:      "HBL",
			},
		})
		assert.NoError(t, err)
	})

	t.Run("valid wallet request", func(t *testing.T) {
		err := validateWithdrawalRequest(&models.WithdrawalRequest{
			Amount:        models.MinWithdrawalAmount,
			PaymentMethod: models.PaymentMethodJazzcash,
			AccountDetails: models.AccountDetails{
				PhoneNumber: "03001234567",
			},
		})
		assert.NoError(t, err)
	})
}

// applyPlan materializes a reservation plan the way the store write does:
// whole takes flip to pending, partial takes leave a shrunken available
// entry behind and reserve a pending sibling for the taken slice.
func applyPlan(plan []ReservationTake, withdrawalID primitive.ObjectID) (reserved, leftover []models.Commission) {
	for _, take := range plan {
		entry := take.Entry
		if take.Remainder == 0 {
			entry.Status = models.CommissionStatusPending
			entry.PendingWithdrawalID = &withdrawalID
			reserved = append(reserved, entry)
			continue
		}
		remainder := entry
		remainder.Amount = take.Remainder
		leftover = append(leftover, remainder)

		sibling := entry
		sibling.ID = primitive.NewObjectID()
		sibling.Amount = take.Take
		sibling.Status = models.CommissionStatusPending
		sibling.PendingWithdrawalID = &withdrawalID
		reserved = append(reserved, sibling)
	}
	return reserved, leftover
}

func sumByStatus(entries []models.Commission, status models.CommissionStatus) (total float64) {
	for _, e := range entries {
		if e.Status == status {
			total += e.Amount
		}
	}
	return Round2(total)
}

func TestDecideReservation(t *testing.T) {
	withdrawalID := primitive.NewObjectID()
	decidedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	reserve := func(t *testing.T, amounts []float64, amount float64) (reserved, leftover []models.Commission) {
		t.Helper()
		plan, err := BuildReservationPlan(entries(amounts...), amount)
		require.NoError(t, err)
		return applyPlan(plan, withdrawalID)
	}

	t.Run("approval settles every reserved entry", func(t *testing.T) {
		reserved, _ := reserve(t, []float64{100, 50, 30}, 120)
		decided := DecideReservation(reserved, true, decidedAt)
		require.Len(t, decided, len(reserved))
		for _, entry := range decided {
			assert.Equal(t, models.CommissionStatusPaid, entry.Status)
			assert.Nil(t, entry.PendingWithdrawalID)
			require.NotNil(t, entry.PaidAt)
			assert.Equal(t, decidedAt, *entry.PaidAt)
		}
		assert.Equal(t, 120.0, sumByStatus(decided, models.CommissionStatusPaid))
	})

	t.Run("rejection releases every reserved entry", func(t *testing.T) {
		reserved, _ := reserve(t, []float64{100, 50, 30}, 120)
		decided := DecideReservation(reserved, false, decidedAt)
		for _, entry := range decided {
			assert.Equal(t, models.CommissionStatusAvailable, entry.Status)
			assert.Nil(t, entry.PendingWithdrawalID)
			assert.Nil(t, entry.PaidAt)
		}
		assert.Equal(t, 120.0, sumByStatus(decided, models.CommissionStatusAvailable))
	})

	t.Run("settlement conserves the ledger total", func(t *testing.T) {
		amounts := []float64{123.45, 67.89, 200.01}
		total := Round2(123.45 + 67.89 + 200.01)

		reserved, leftover := reserve(t, amounts, 250)
		decided := DecideReservation(reserved, true, decidedAt)

		after := append(leftover, decided...)
		paid := sumByStatus(after, models.CommissionStatusPaid)
		available := sumByStatus(after, models.CommissionStatusAvailable)
		assert.Equal(t, 250.0, paid)
		assert.Equal(t, total, Round2(paid+available))
	})

	t.Run("release restores the full available balance", func(t *testing.T) {
		amounts := []float64{123.45, 67.89, 200.01}
		total := Round2(123.45 + 67.89 + 200.01)

		reserved, leftover := reserve(t, amounts, 250)
		decided := DecideReservation(reserved, false, decidedAt)

		after := append(leftover, decided...)
		assert.Equal(t, total, sumByStatus(after, models.CommissionStatusAvailable))
		// Split entries stay split; only the amounts are promised back.
		assert.Greater(t, len(after), len(amounts))
	})

	t.Run("empty reservation decides to nothing", func(t *testing.T) {
		assert.Empty(t, DecideReservation(nil, true, decidedAt))
	})
}
