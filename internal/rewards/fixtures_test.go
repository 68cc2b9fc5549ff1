package rewards_test

import "rewards-optimizer-go/internal/models"

func card(id uint, base float64) models.Card {
	return models.Card{ID: id, UserID: 1, CardType: "VISA", LastFour: "0000", BaseRewardRate: base}
}

func merchant(id uint, name string) models.Merchant {
	return models.Merchant{ID: id, Name: name}
}

func override(cardID, merchantID uint, rate float64) models.RewardOverride {
	return models.RewardOverride{CardID: cardID, MerchantID: merchantID, RewardRate: rate}
}

func ptr[T any](v T) *T {
	return &v
}

const (
	amazonID  uint = 1
	unknownID uint = 2
)

// cardA earns 1.0% base and 2.5% at Amazon; cardB earns 1.5% everywhere.
func scenario() ([]models.Card, []models.Merchant, []models.RewardOverride) {
	cards := []models.Card{card(1, 1.0), card(2, 1.5)}
	merchants := []models.Merchant{merchant(amazonID, "Amazon"), merchant(unknownID, "Unknown Shop")}
	overrides := []models.RewardOverride{override(1, amazonID, 2.5)}
	return cards, merchants, overrides
}
