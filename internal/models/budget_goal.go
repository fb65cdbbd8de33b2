package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetGoal is a per-user monthly target. Month is always normalized to the
// first day of its calendar month, and (user_id, month) is unique: writing a
// goal for a month that already has one overwrites it in place.
type BudgetGoal struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;uniqueIndex:idx_goal_user_month" json:"user_id"`
	Month        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_goal_user_month" json:"month"`
	TargetAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"target_amount"`
	GoldAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"gold_amount"`
}

// NormalizeMonth truncates t to the first day of its calendar month in UTC.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
