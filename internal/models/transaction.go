package models

import (
	"time"
)

type Transaction struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"index" json:"user_id"`
	CardID              *uint     `gorm:"index" json:"card_id"`
	MerchantID          *uint     `gorm:"index" json:"merchant_id"`
	Amount              float64   `json:"amount"`
	Date                time.Time `gorm:"index" json:"date"`
	RewardPoints        *float64  `json:"reward_points"`
	CardRewardPoints    *float64  `json:"card_reward_points"`
	CompanyRewardPoints *float64  `json:"company_reward_points"`
	IsOptimal           bool      `gorm:"default:false" json:"is_optimal"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// CardPoints returns the stored card-program points, 0 when absent.
func (t Transaction) CardPoints() float64 {
	if t.CardRewardPoints == nil {
		return 0
	}
	return *t.CardRewardPoints
}

// CompanyPoints returns the stored company-loyalty points, 0 when absent.
func (t Transaction) CompanyPoints() float64 {
	if t.CompanyRewardPoints == nil {
		return 0
	}
	return *t.CompanyRewardPoints
}
