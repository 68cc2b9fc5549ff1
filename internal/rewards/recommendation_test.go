package rewards_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
)

func TestBuildRecommendation(t *testing.T) {
	cards, merchants, overrides := scenario()

	rec, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", 14000)
	require.NoError(t, err)

	assert.Equal(t, "Amazon", rec.Merchant.Name)
	assert.Equal(t, uint(1), rec.OptimalCard.Card.ID)
	assert.Equal(t, 2.5, rec.OptimalCard.Rate)
	assert.Equal(t, int64(350), rec.OptimalCard.EstimatedPoints)
	require.Len(t, rec.OtherCards, 1)
	assert.Equal(t, uint(2), rec.OtherCards[0].Card.ID)
	assert.Equal(t, 1.5, rec.OtherCards[0].Rate)
	assert.Equal(t, int64(210), rec.OtherCards[0].EstimatedPoints)
}

func TestBuildRecommendation_CaseInsensitiveMerchant(t *testing.T) {
	cards, merchants, overrides := scenario()

	lower, err := rewards.BuildRecommendation(cards, merchants, overrides, "amazon", 14000)
	require.NoError(t, err)
	upper, err := rewards.BuildRecommendation(cards, merchants, overrides, "AMAZON", 14000)
	require.NoError(t, err)

	assert.Equal(t, amazonID, lower.Merchant.ID)
	assert.Equal(t, lower, upper)
}

func TestBuildRecommendation_MerchantNotFound(t *testing.T) {
	cards, merchants, overrides := scenario()

	_, err := rewards.BuildRecommendation(cards, merchants, overrides, "Nowhere", 100)
	assert.ErrorIs(t, err, rewards.ErrMerchantNotFound)

	_, err = rewards.BuildRecommendation(cards, merchants, overrides, "Amazon.com", 100)
	assert.ErrorIs(t, err, rewards.ErrMerchantNotFound)
}

func TestBuildRecommendation_NoCards(t *testing.T) {
	_, merchants, overrides := scenario()

	_, err := rewards.BuildRecommendation(nil, merchants, overrides, "Amazon", 100)
	assert.ErrorIs(t, err, rewards.ErrNoCardsAvailable)
}

func TestBuildRecommendation_InvalidAmount(t *testing.T) {
	cards, merchants, overrides := scenario()

	for name, amount := range map[string]float64{
		"negative": -1,
		"nan":      math.NaN(),
		"+inf":     math.Inf(1),
		"-inf":     math.Inf(-1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", amount)
			assert.ErrorIs(t, err, rewards.ErrInvalidAmount)
		})
	}
}

func TestBuildRecommendation_ZeroAmount(t *testing.T) {
	cards, merchants, overrides := scenario()

	rec, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.PurchaseAmount)
	assert.Equal(t, int64(0), rec.OptimalCard.EstimatedPoints)
}

func TestBuildRecommendation_SingleCardHasEmptyOthers(t *testing.T) {
	_, merchants, overrides := scenario()

	rec, err := rewards.BuildRecommendation([]models.Card{card(2, 1.5)}, merchants, overrides, "Amazon", 1000)
	require.NoError(t, err)
	assert.NotNil(t, rec.OtherCards)
	assert.Empty(t, rec.OtherCards)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"other_cards":[]`)
}

func TestBuildRecommendation_Idempotent(t *testing.T) {
	cards, merchants, overrides := scenario()
	cards = append(cards, card(3, 2.5), card(4, 0.8))

	first, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", 12345.67)
	require.NoError(t, err)
	second, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", 12345.67)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildRecommendation_EstimatesMatchRoundedPoints(t *testing.T) {
	cards, merchants, overrides := scenario()
	cards = append(cards, card(3, 0.8))

	for _, amount := range []float64{0, 1, 99, 150, 1350, 5600, 12800, 14000, 123456.78} {
		rec, err := rewards.BuildRecommendation(cards, merchants, overrides, "Amazon", amount)
		require.NoError(t, err)
		assert.Equal(t, rewards.EstimatePoints(amount, rec.OptimalCard.Rate), rec.OptimalCard.EstimatedPoints)
		for _, o := range rec.OtherCards {
			assert.LessOrEqual(t, o.Rate, rec.OptimalCard.Rate)
		}
	}
}

func TestFindMerchant_DuplicateNamesPickLowestID(t *testing.T) {
	merchants := []models.Merchant{merchant(9, "Apple"), merchant(4, "apple")}

	m, err := rewards.FindMerchant(merchants, "APPLE")
	require.NoError(t, err)
	assert.Equal(t, uint(4), m.ID)
}

func TestEstimatePoints(t *testing.T) {
	tests := []struct {
		amount, rate float64
		want         int64
	}{
		{14000, 2.5, 350},
		{14000, 1.5, 210},
		{12800, 1.0, 128},
		{150, 1.0, 2},
		{50, 1.0, 1},
		{49, 1.0, 0},
		{0, 3.0, 0},
		{1350, 1.5, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rewards.EstimatePoints(tt.amount, tt.rate), "amount=%v rate=%v", tt.amount, tt.rate)
	}
}

func TestPoints(t *testing.T) {
	assert.InDelta(t, 320.0, rewards.Points(12800, 2.5), 1e-9)
	assert.InDelta(t, 0.025, rewards.Points(10, 0.25), 1e-12)
}

func TestEstimatePoints_NonFinite(t *testing.T) {
	assert.Equal(t, int64(0), rewards.EstimatePoints(math.NaN(), 2.5))
	assert.Equal(t, int64(0), rewards.EstimatePoints(math.Inf(1), 2.5))
	assert.Equal(t, int64(0), rewards.EstimatePoints(1000, math.NaN()))
}

func TestValidAmount(t *testing.T) {
	assert.True(t, rewards.ValidAmount(0))
	assert.True(t, rewards.ValidAmount(14000))
	assert.False(t, rewards.ValidAmount(-0.01))
	assert.False(t, rewards.ValidAmount(math.NaN()))
	assert.False(t, rewards.ValidAmount(math.Inf(1)))
	assert.False(t, rewards.ValidAmount(math.Inf(-1)))
}
