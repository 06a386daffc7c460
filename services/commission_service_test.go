package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/empowerup/empowerup_backend/models"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"whole number", 100, 100},
		{"two decimals untouched", 12.34, 12.34},
		{"rounds down", 1.234, 1.23},
		{"rounds up", 1.236, 1.24},
		{"1.005 stored below half stays down", 1.005, 1.0},
		{"half cent rounds up", 0.125, 0.13},
		{"commission of 3000 at 15 percent", 3000 * 0.15, 450},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Round2(tt.input), 1e-9)
		})
	}
}

func TestCommissionAmounts(t *testing.T) {
	// A 5500 package pays 825 to the upliner and 275 to the team lead.
	total := 5500.0
	assert.Equal(t, 825.0, Round2(total*UplinerCommissionPercent/100))
	assert.Equal(t, 275.0, Round2(total*TeamLeadCommissionPercent/100))
}

func userWithUpline(id primitive.ObjectID, uplineID *primitive.ObjectID) *models.User {
	return &models.User{ID: id, UplineID: uplineID}
}

func TestResolveReferralChain(t *testing.T) {
	purchaserID := primitive.NewObjectID()
	uplinerID := primitive.NewObjectID()
	teamLeadID := primitive.NewObjectID()

	uplinerWithLead := userWithUpline(uplinerID, &teamLeadID)
	teamLead := userWithUpline(teamLeadID, nil)

	lookupFrom := func(users map[primitive.ObjectID]*models.User) func(primitive.ObjectID) (*models.User, error) {
		return func(id primitive.ObjectID) (*models.User, error) {
			return users[id], nil
		}
	}

	t.Run("no upline", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, nil)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(nil))
		require.NoError(t, err)
		assert.Nil(t, upliner)
		assert.Nil(t, lead)
	})

	t.Run("one hop", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, &uplinerID)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(map[primitive.ObjectID]*models.User{
			uplinerID: userWithUpline(uplinerID, nil),
		}))
		require.NoError(t, err)
		require.NotNil(t, upliner)
		assert.Equal(t, uplinerID, upliner.ID)
		assert.Nil(t, lead)
	})

	t.Run("two hops", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, &uplinerID)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(map[primitive.ObjectID]*models.User{
			uplinerID:  uplinerWithLead,
			teamLeadID: teamLead,
		}))
		require.NoError(t, err)
		require.NotNil(t, upliner)
		require.NotNil(t, lead)
		assert.Equal(t, uplinerID, upliner.ID)
		assert.Equal(t, teamLeadID, lead.ID)
	})

	t.Run("self reference yields no commissions", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, &purchaserID)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(nil))
		require.NoError(t, err)
		assert.Nil(t, upliner)
		assert.Nil(t, lead)
	})

	t.Run("two hop cycle stops at upliner", func(t *testing.T) {
		// Upliner points back at the purchaser.
		purchaser := userWithUpline(purchaserID, &uplinerID)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(map[primitive.ObjectID]*models.User{
			uplinerID: userWithUpline(uplinerID, &purchaserID),
		}))
		require.NoError(t, err)
		require.NotNil(t, upliner)
		assert.Nil(t, lead)
	})

	t.Run("missing upliner yields no commissions", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, &uplinerID)
		upliner, lead, err := ResolveReferralChain(purchaser, lookupFrom(nil))
		require.NoError(t, err)
		assert.Nil(t, upliner)
		assert.Nil(t, lead)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		purchaser := userWithUpline(purchaserID, &uplinerID)
		boom := errors.New("db down")
		_, _, err := ResolveReferralChain(purchaser, func(primitive.ObjectID) (*models.User, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestProcessCommissionRejectsBadInput(t *testing.T) {
	svc := &CommissionService{}
	cases := []struct {
		name        string
		productID   string
		productName string
		price       float64
		quantity    int
	}{
		{"missing product id", "", "Starter", 3000, 1},
		{"missing product name", "starter", "", 3000, 1},
		{"zero price", "starter", "Starter", 0, 1},
		{"negative price", "starter", "Starter", -10, 1},
		{"zero quantity", "starter", "Starter", 3000, 0},
		{"negative quantity", "starter", "Starter", 3000, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.ProcessCommission(primitive.NewObjectID(),
				tc.productID, tc.productName, tc.price, tc.quantity, models.TransactionTypePackagePurchase)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}
