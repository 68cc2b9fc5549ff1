package rewards

import (
	"strings"

	"rewards-optimizer-go/internal/models"
)

type CardEstimate struct {
	Card            models.Card `json:"card"`
	Rate            float64     `json:"reward_rate"`
	EstimatedPoints int64       `json:"estimated_points"`
}

type Recommendation struct {
	Merchant       models.Merchant `json:"merchant"`
	PurchaseAmount float64         `json:"purchase_amount"`
	OptimalCard    CardEstimate    `json:"optimal_card"`
	OtherCards     []CardEstimate  `json:"other_cards"`
}

// FindMerchant matches name case-insensitively. Several matches resolve to
// the lowest id.
func FindMerchant(merchants []models.Merchant, name string) (models.Merchant, error) {
	var (
		found models.Merchant
		ok    bool
	)
	for _, m := range merchants {
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		if !ok || m.ID < found.ID {
			found, ok = m, true
		}
	}
	if !ok {
		return models.Merchant{}, ErrMerchantNotFound
	}
	return found, nil
}

// BuildRecommendation ranks cards for a prospective purchase at the named
// merchant. The head of the ranking is the optimal card; the rest keep their
// order in OtherCards.
func BuildRecommendation(
	cards []models.Card,
	merchants []models.Merchant,
	overrides []models.RewardOverride,
	merchantName string,
	purchaseAmount float64,
) (Recommendation, error) {
	if !ValidAmount(purchaseAmount) {
		return Recommendation{}, ErrInvalidAmount
	}
	merchant, err := FindMerchant(merchants, merchantName)
	if err != nil {
		return Recommendation{}, err
	}
	ranked, err := RankCards(cards, merchant.ID, overrides)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{
		Merchant:       merchant,
		PurchaseAmount: purchaseAmount,
		OptimalCard:    estimate(ranked[0], purchaseAmount),
		OtherCards:     make([]CardEstimate, 0, len(ranked)-1),
	}
	for _, cr := range ranked[1:] {
		rec.OtherCards = append(rec.OtherCards, estimate(cr, purchaseAmount))
	}
	return rec, nil
}

func estimate(cr CardRate, amount float64) CardEstimate {
	return CardEstimate{
		Card:            cr.Card,
		Rate:            cr.Rate,
		EstimatedPoints: EstimatePoints(amount, cr.Rate),
	}
}
