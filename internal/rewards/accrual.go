package rewards

import "rewards-optimizer-go/internal/models"

// Accrue fills the reward figures of t from the rates in effect when it is
// recorded. Card points stay nil when the card is not among cards; company
// points are a flat per-purchase accrual.
func Accrue(t *models.Transaction, cards []models.Card, overrides []models.RewardOverride, companyPoints float64) {
	table := NewRateTable(overrides)

	company := companyPoints
	t.CompanyRewardPoints = &company
	t.CardRewardPoints = nil
	t.RewardPoints = nil
	t.IsOptimal = isOptimal(*t, cards, table)

	if t.CardID == nil {
		return
	}
	used, ok := indexCards(cards)[*t.CardID]
	if !ok {
		return
	}
	rate := used.BaseRewardRate
	if t.MerchantID != nil {
		rate = table.Rate(used, *t.MerchantID)
	}
	pts := Points(t.Amount, rate)
	t.CardRewardPoints = &pts
	t.RewardPoints = &pts
}
