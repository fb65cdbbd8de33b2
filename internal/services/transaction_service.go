package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
	}
}

// CreateTransaction creates a new transaction for one of the user's categories.
func (s *transactionService) CreateTransaction(
	userID, categoryID string,
	txType models.TransactionType,
	amount decimal.Decimal,
	date time.Time,
	note string,
) (*models.Transaction, error) {
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	// The category must exist and belong to the user.
	category, err := s.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:     userID,
		CategoryID: category.ID,
		Type:       txType,
		Amount:     amount,
		Date:       date,
		Note:       note,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// filtered returns the base query over the user's transactions with the
// filter's predicates applied. List, count, and summary all start here so
// the three can never disagree about which rows are in scope.
func (s *transactionService) filtered(userID string, filter TransactionFilter) *gorm.DB {
	q := s.db.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	return filter.Apply(q)
}

// ListTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) ListTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	var totalItems int64
	if err := s.filtered(userID, filter).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := s.filtered(userID, filter).
		Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Summarize reduces the filtered transaction set to income/expense totals,
// their balance, and the row count across both types. Totals are summed as
// fixed-point decimals; an empty set yields zeros.
func (s *transactionService) Summarize(userID string, filter TransactionFilter) (*TransactionSummary, error) {
	var rows []struct {
		Type  models.TransactionType
		Total decimal.Decimal
		N     int64
	}
	if err := s.filtered(userID, filter).
		Select("transactions.type AS type, COALESCE(SUM(transactions.amount), 0) AS total, COUNT(*) AS n").
		Group("transactions.type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &TransactionSummary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, row := range rows {
		switch row.Type {
		case models.TransactionTypeIncome:
			summary.Income = row.Total
		case models.TransactionTypeExpense:
			summary.Expense = row.Total
		}
		summary.Count += row.N
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the non-nil fields of params to a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		if *params.Type != models.TransactionTypeIncome && *params.Type != models.TransactionTypeExpense {
			return nil, apperrors.ErrInvalidTransactionType
		}
		transaction.Type = *params.Type
	}
	if params.Amount != nil {
		if params.Amount.IsNegative() {
			return nil, apperrors.ErrNegativeAmount
		}
		transaction.Amount = *params.Amount
	}
	if params.Date != nil {
		transaction.Date = *params.Date
	}
	if params.CategoryID != nil {
		category, err := s.categoryService.GetCategoryByID(userID, *params.CategoryID)
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = category.ID
		transaction.Category = category
	}
	if params.Note != nil {
		transaction.Note = *params.Note
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction removes a transaction immediately.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
