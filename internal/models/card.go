package models

import (
	"time"
)

type Card struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	CardType       string    `gorm:"size:50" json:"card_type"` // visa, mastercard, amex, jcb
	LastFour       string    `gorm:"size:4" json:"last_four"`
	ExpiryDate     string    `gorm:"size:7" json:"expiry_date"` // MM/YY
	BaseRewardRate float64   `json:"base_reward_rate"`          // percentage, 1.5 means 1.5%
	Nickname       *string   `gorm:"size:100" json:"nickname,omitempty"`
	Issuer         *string   `gorm:"size:100" json:"issuer,omitempty"`
	LogoURL        *string   `gorm:"size:255" json:"logo_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Label is the short human form used in logs and listings, e.g. "VISA •••• 4582".
func (c Card) Label() string {
	if c.Nickname != nil && *c.Nickname != "" {
		return *c.Nickname
	}
	return c.CardType + " •••• " + c.LastFour
}
