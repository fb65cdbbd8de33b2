package models

// Category groups a user's transactions. The transaction foreign key uses
// RESTRICT, so a category cannot be deleted while transactions reference it.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"size:80;not null" json:"name"`
	Icon   string `gorm:"size:80" json:"icon"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"transactions,omitempty"`
}
