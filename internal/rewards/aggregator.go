package rewards

import (
	"math"
	"sort"

	"rewards-optimizer-go/internal/models"
)

// RateTolerance absorbs floating point noise when comparing rates.
const RateTolerance = 1e-9

type CardTotal struct {
	CardID       uint    `json:"card_id"`
	Label        string  `json:"label"`
	Points       float64 `json:"points"`
	Spent        float64 `json:"spent"`
	Transactions int     `json:"transactions"`
}

type Summary struct {
	CardPoints           float64             `json:"card_points"`
	CompanyPoints        float64             `json:"company_points"`
	PotentialExtraPoints float64             `json:"potential_extra_points"`
	PerCard              []CardTotal         `json:"per_card"`
	Ambiguous            []AmbiguousOverride `json:"-"`
}

// SummarizeRewards totals realized card and company points and the points
// forfeited by not using the optimal card. Transactions without a merchant
// in the catalog contribute nothing to the forfeited total.
func SummarizeRewards(
	transactions []models.Transaction,
	cards []models.Card,
	merchants []models.Merchant,
	overrides []models.RewardOverride,
) Summary {
	table := NewRateTable(overrides)
	known := make(map[uint]struct{}, len(merchants))
	for _, m := range merchants {
		known[m.ID] = struct{}{}
	}
	byID := indexCards(cards)

	res := Summary{
		PerCard:   []CardTotal{},
		Ambiguous: table.Ambiguous(),
	}
	perCard := make(map[uint]*CardTotal)

	for _, t := range transactions {
		res.CardPoints += t.CardPoints()
		res.CompanyPoints += t.CompanyPoints()

		if t.CardID != nil {
			ct, ok := perCard[*t.CardID]
			if !ok {
				ct = &CardTotal{CardID: *t.CardID, Label: "Unknown Card"}
				if c, found := byID[*t.CardID]; found {
					ct.Label = c.Label()
				}
				perCard[*t.CardID] = ct
			}
			ct.Points += t.CardPoints()
			ct.Spent += t.Amount
			ct.Transactions++
		}

		if t.MerchantID == nil {
			continue
		}
		if _, ok := known[*t.MerchantID]; !ok {
			continue
		}
		res.PotentialExtraPoints += missedPoints(t, byID, cards, table)
	}

	for _, ct := range perCard {
		res.PerCard = append(res.PerCard, *ct)
	}
	sort.Slice(res.PerCard, func(i, j int) bool {
		if res.PerCard[i].Points != res.PerCard[j].Points {
			return res.PerCard[i].Points > res.PerCard[j].Points
		}
		return res.PerCard[i].CardID < res.PerCard[j].CardID
	})
	return res
}

// missedPoints is max(best - actual, 0) for one transaction at a known merchant.
func missedPoints(t models.Transaction, byID map[uint]models.Card, cards []models.Card, table RateTable) float64 {
	best, err := selectOptimal(cards, *t.MerchantID, table)
	if err != nil {
		return 0
	}
	optimal := Points(t.Amount, best.Rate)

	var actual float64
	switch {
	case t.CardRewardPoints != nil:
		actual = *t.CardRewardPoints
	case t.CardID != nil:
		if c, ok := byID[*t.CardID]; ok {
			actual = Points(t.Amount, table.Rate(c, *t.MerchantID))
		}
	}
	return math.Max(optimal-actual, 0)
}

// AnnotateOptimality reports whether the card used for t achieves the best
// effective rate among cards at t's merchant.
func AnnotateOptimality(t models.Transaction, cards []models.Card, overrides []models.RewardOverride) bool {
	return isOptimal(t, cards, NewRateTable(overrides))
}

func isOptimal(t models.Transaction, cards []models.Card, table RateTable) bool {
	if t.CardID == nil || t.MerchantID == nil {
		return false
	}
	used, ok := indexCards(cards)[*t.CardID]
	if !ok {
		return false
	}
	best, err := selectOptimal(cards, *t.MerchantID, table)
	if err != nil {
		return false
	}
	return table.Rate(used, *t.MerchantID) >= best.Rate-RateTolerance
}

func indexCards(cards []models.Card) map[uint]models.Card {
	m := make(map[uint]models.Card, len(cards))
	for _, c := range cards {
		m[c.ID] = c
	}
	return m
}
