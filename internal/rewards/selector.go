package rewards

import (
	"math"
	"sort"

	"rewards-optimizer-go/internal/models"
)

// CardRate pairs a card with its effective rate at one merchant.
type CardRate struct {
	Card models.Card `json:"card"`
	Rate float64     `json:"reward_rate"`
}

// SelectOptimal returns the card with the highest effective rate at
// merchantID. Ties go to the lowest card id.
func SelectOptimal(cards []models.Card, merchantID uint, overrides []models.RewardOverride) (CardRate, error) {
	return selectOptimal(cards, merchantID, NewRateTable(overrides))
}

// RankCards orders every card by descending effective rate, ties by
// ascending card id. The input slice is left untouched.
func RankCards(cards []models.Card, merchantID uint, overrides []models.RewardOverride) ([]CardRate, error) {
	return rankCards(cards, merchantID, NewRateTable(overrides))
}

func selectOptimal(cards []models.Card, merchantID uint, table RateTable) (CardRate, error) {
	if len(cards) == 0 {
		return CardRate{}, ErrNoCardsAvailable
	}
	best := CardRate{Card: cards[0], Rate: table.Rate(cards[0], merchantID)}
	for _, c := range cards[1:] {
		r := table.Rate(c, merchantID)
		if better(r, c.ID, best.Rate, best.Card.ID) {
			best = CardRate{Card: c, Rate: r}
		}
	}
	return best, nil
}

func rankCards(cards []models.Card, merchantID uint, table RateTable) ([]CardRate, error) {
	if len(cards) == 0 {
		return nil, ErrNoCardsAvailable
	}
	ranked := make([]CardRate, 0, len(cards))
	for _, c := range cards {
		ranked = append(ranked, CardRate{Card: c, Rate: table.Rate(c, merchantID)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return better(ranked[i].Rate, ranked[i].Card.ID, ranked[j].Rate, ranked[j].Card.ID)
	})
	return ranked, nil
}

// better orders by rate, treating rates within RateTolerance as tied so the
// lowest id wins the same ties AnnotateOptimality accepts.
func better(rate float64, id uint, otherRate float64, otherID uint) bool {
	if math.Abs(rate-otherRate) > RateTolerance {
		return rate > otherRate
	}
	return id < otherID
}

// Best is SelectOptimal against an already built table, for callers that
// evaluate many merchants over one override snapshot.
func (t RateTable) Best(cards []models.Card, merchantID uint) (CardRate, error) {
	return selectOptimal(cards, merchantID, t)
}
