package models

// RewardOverride is a merchant-specific rate for one card. Uniqueness of
// (CardID, MerchantID) is not enforced by the schema.
type RewardOverride struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CardID     uint    `gorm:"index" json:"card_id"`
	MerchantID uint    `gorm:"index" json:"merchant_id"`
	RewardRate float64 `json:"reward_rate"`
}

func (RewardOverride) TableName() string {
	return "card_merchant_rewards"
}
