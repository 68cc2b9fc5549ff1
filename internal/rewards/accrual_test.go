package rewards_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
)

func TestAccrue(t *testing.T) {
	cards, _, overrides := scenario()

	tests := []struct {
		name        string
		tx          models.Transaction
		wantCard    *float64
		wantOptimal bool
	}{
		{
			name:        "override rate on optimal card",
			tx:          models.Transaction{CardID: ptr(uint(1)), MerchantID: ptr(amazonID), Amount: 14000},
			wantCard:    ptr(350.0),
			wantOptimal: true,
		},
		{
			name:        "base rate on suboptimal card",
			tx:          models.Transaction{CardID: ptr(uint(2)), MerchantID: ptr(amazonID), Amount: 14000},
			wantCard:    ptr(210.0),
			wantOptimal: false,
		},
		{
			name:        "no merchant uses base rate",
			tx:          models.Transaction{CardID: ptr(uint(1)), Amount: 1000},
			wantCard:    ptr(10.0),
			wantOptimal: false,
		},
		{
			name:        "card not owned",
			tx:          models.Transaction{CardID: ptr(uint(99)), MerchantID: ptr(amazonID), Amount: 1000},
			wantCard:    nil,
			wantOptimal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.tx
			rewards.Accrue(&tx, cards, overrides, 100)

			require.NotNil(t, tx.CompanyRewardPoints)
			assert.Equal(t, 100.0, *tx.CompanyRewardPoints)
			assert.Equal(t, tt.wantOptimal, tx.IsOptimal)
			if tt.wantCard == nil {
				assert.Nil(t, tx.CardRewardPoints)
				assert.Nil(t, tx.RewardPoints)
				return
			}
			require.NotNil(t, tx.CardRewardPoints)
			assert.InDelta(t, *tt.wantCard, *tx.CardRewardPoints, 1e-9)
			assert.Equal(t, tx.CardRewardPoints, tx.RewardPoints)
		})
	}
}
