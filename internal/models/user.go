package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"uniqueIndex" json:"uuid"` // Public ID for API tokens check
	Username     string    `gorm:"size:50;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"` // Bcrypt hash, hidden from JSON
	CreatedAt    time.Time `json:"created_at"`
}

// All returns every model managed by AutoMigrate, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Card{},
		&Merchant{},
		&RewardOverride{},
		&Transaction{},
		&FavoriteMerchant{},
	}
}
