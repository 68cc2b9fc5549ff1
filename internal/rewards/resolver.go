// Package rewards computes effective reward rates, optimal card selection,
// reward aggregation and checkout recommendations. Every function here is
// pure: inputs are snapshots already fetched from storage and are never
// mutated.
package rewards

import (
	"sort"

	"rewards-optimizer-go/internal/models"
)

type pairKey struct {
	cardID     uint
	merchantID uint
}

// AmbiguousOverride reports a (card, merchant) pair with more than one
// override row. The maximum rate is the one applied.
type AmbiguousOverride struct {
	CardID     uint      `json:"card_id"`
	MerchantID uint      `json:"merchant_id"`
	Rates      []float64 `json:"rates"`
	Applied    float64   `json:"applied"`
}

// RateTable indexes overrides by (card, merchant). When a pair has several
// overrides the highest rate wins.
type RateTable struct {
	rates map[pairKey]float64
	all   map[pairKey][]float64
}

func NewRateTable(overrides []models.RewardOverride) RateTable {
	t := RateTable{
		rates: make(map[pairKey]float64, len(overrides)),
		all:   make(map[pairKey][]float64, len(overrides)),
	}
	for _, o := range overrides {
		k := pairKey{cardID: o.CardID, merchantID: o.MerchantID}
		t.all[k] = append(t.all[k], o.RewardRate)
		if cur, ok := t.rates[k]; !ok || o.RewardRate > cur {
			t.rates[k] = o.RewardRate
		}
	}
	return t
}

// Override returns the override rate for the pair, if any.
func (t RateTable) Override(cardID, merchantID uint) (float64, bool) {
	r, ok := t.rates[pairKey{cardID: cardID, merchantID: merchantID}]
	return r, ok
}

// Rate returns the effective rate of card at merchantID.
func (t RateTable) Rate(card models.Card, merchantID uint) float64 {
	if r, ok := t.Override(card.ID, merchantID); ok {
		return r
	}
	return card.BaseRewardRate
}

// Ambiguous lists pairs with duplicate overrides, ordered by card then merchant.
func (t RateTable) Ambiguous() []AmbiguousOverride {
	var out []AmbiguousOverride
	for k, rates := range t.all {
		if len(rates) < 2 {
			continue
		}
		cp := append([]float64(nil), rates...)
		sort.Float64s(cp)
		out = append(out, AmbiguousOverride{
			CardID:     k.cardID,
			MerchantID: k.merchantID,
			Rates:      cp,
			Applied:    t.rates[k],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CardID != out[j].CardID {
			return out[i].CardID < out[j].CardID
		}
		return out[i].MerchantID < out[j].MerchantID
	})
	return out
}

// ResolveRate returns the override rate for (card, merchantID) when one
// exists, else the card's base rate.
func ResolveRate(card models.Card, merchantID uint, overrides []models.RewardOverride) float64 {
	return NewRateTable(overrides).Rate(card, merchantID)
}
