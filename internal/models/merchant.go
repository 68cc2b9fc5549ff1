package models

type Merchant struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:100;index" json:"name"`
	Category *string `gorm:"size:50" json:"category,omitempty"`
	LogoURL  *string `gorm:"size:255" json:"logo_url,omitempty"`
}
