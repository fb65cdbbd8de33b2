package models

import "time"

// PasswordResetToken is a single-use, time-limited token for resetting a
// user's password. Issuance deletes any prior token for the same user, so at
// most one is outstanding at a time. Expiry is checked lazily at use time.
type PasswordResetToken struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"type:uuid;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Valid reports whether the token can still be consumed at time now.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
