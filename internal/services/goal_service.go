package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// goalService handles budget goal business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// ListGoals retrieves a paginated list of the user's goals, newest month first.
func (s *goalService) ListGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetGoal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.BudgetGoal
	if err := base.Scopes(pagination.Paginate(page)).
		Order("month DESC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpsertGoal writes the goal row for (user, calendar month). The month is
// normalized to its first day before the lookup, and the write rides on the
// (user_id, month) unique constraint: a concurrent upsert for the same key
// resolves to a single row with the later values.
func (s *goalService) UpsertGoal(userID string, month time.Time, targetAmount, goldAmount decimal.Decimal) (*models.BudgetGoal, error) {
	if targetAmount.IsNegative() || goldAmount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	goal := &models.BudgetGoal{
		UserID:       userID,
		Month:        models.NormalizeMonth(month),
		TargetAmount: targetAmount,
		GoldAmount:   goldAmount,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_amount", "gold_amount", "updated_at"}),
	}).Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so the caller sees the surviving row (the conflict path keeps
	// the existing primary key, not the one generated above).
	var saved models.BudgetGoal
	if err := s.db.Where("user_id = ? AND month = ?", userID, goal.Month).
		First(&saved).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &saved, nil
}

// GetGoalByID retrieves a goal by ID for a specific user.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.BudgetGoal, error) {
	var goal models.BudgetGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// DeleteGoal removes a goal immediately.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	result := s.db.Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.BudgetGoal{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}
