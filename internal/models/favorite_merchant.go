package models

type FavoriteMerchant struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserID     uint `gorm:"uniqueIndex:idx_favorite_user_merchant" json:"user_id"`
	MerchantID uint `gorm:"uniqueIndex:idx_favorite_user_merchant" json:"merchant_id"`
}
