package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("creates_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		tx, err := txSvc.CreateTransaction(user.ID, category.ID, models.TransactionTypeExpense,
			decimal.RequireFromString("25.50"), time.Now(), "Lunch")
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.Amount.StringFixed(2) != "25.50" {
			t.Errorf("expected amount 25.50, got %s", tx.Amount)
		}
	})

	t.Run("zero_amount_is_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		_, err := txSvc.CreateTransaction(user.ID, category.ID, models.TransactionTypeIncome,
			decimal.Zero, time.Now(), "")
		testutil.AssertNoError(t, err)
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		_, err := txSvc.CreateTransaction(user.ID, category.ID, models.TransactionTypeIncome,
			decimal.RequireFromString("-1"), time.Now(), "")
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		_, err := txSvc.CreateTransaction(user.ID, category.ID, "transfer",
			decimal.NewFromInt(10), time.Now(), "")
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		user := testutil.CreateTestUser(t, db)

		_, err := txSvc.CreateTransaction(user.ID, "b7e9a3a2-0000-0000-0000-000000000000",
			models.TransactionTypeIncome, decimal.NewFromInt(10), time.Now(), "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_users_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		txSvc := NewTransactionService(db, catSvc)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, owner.ID)

		_, err := txSvc.CreateTransaction(intruder.ID, category.ID,
			models.TransactionTypeIncome, decimal.NewFromInt(10), time.Now(), "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("filters_compose_by_and", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Food")
		salary := testutil.CreateTestCategoryWithName(t, db, user.ID, "Salary")

		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, "25.50")
		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, "80.00")
		testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, "1000.00")

		filter, err := ParseTransactionFilter(TransactionFilterParams{Type: "expense", Max: "50"})
		testutil.AssertNoError(t, err)

		page, err := txSvc.ListTransactions(user.ID, filter, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 expense under 50, got %d", page.TotalItems)
		}
	})

	t.Run("search_matches_note_or_category_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		groceries := testutil.CreateTestCategoryWithName(t, db, user.ID, "Groceries")
		other := testutil.CreateTestCategoryWithName(t, db, user.ID, "Utilities")

		byCategory := testutil.CreateTestTransaction(t, db, user.ID, groceries.ID, models.TransactionTypeExpense, "10.00")
		byNote := testutil.CreateTestTransactionOn(t, db, user.ID, other.ID, models.TransactionTypeExpense, "20.00", time.Now())
		byNote.Note = "groceries run"
		testutil.AssertNoError(t, db.Save(byNote).Error)
		testutil.CreateTestTransaction(t, db, user.ID, other.ID, models.TransactionTypeExpense, "30.00")

		filter, err := ParseTransactionFilter(TransactionFilterParams{Search: "GROCER"})
		testutil.AssertNoError(t, err)

		page, err := txSvc.ListTransactions(user.ID, filter, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 matches (note and category name), got %d", page.TotalItems)
		}
		ids := map[string]bool{}
		for _, tx := range page.Data {
			ids[tx.ID] = true
		}
		if !ids[byCategory.ID] || !ids[byNote.ID] {
			t.Error("search should match by category name and by note")
		}
	})

	t.Run("search_ands_with_other_filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		groceries := testutil.CreateTestCategoryWithName(t, db, user.ID, "Weekly Groceries")

		testutil.CreateTestTransaction(t, db, user.ID, groceries.ID, models.TransactionTypeExpense, "10.00")
		testutil.CreateTestTransaction(t, db, user.ID, groceries.ID, models.TransactionTypeIncome, "5.00")

		filter, err := ParseTransactionFilter(TransactionFilterParams{Search: "groceries", Type: "expense"})
		testutil.AssertNoError(t, err)

		page, err := txSvc.ListTransactions(user.ID, filter, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("search should AND with the type filter, got %d rows", page.TotalItems)
		}
	})

	t.Run("unknown_category_matches_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		filter, err := ParseTransactionFilter(TransactionFilterParams{Category: "b7e9a3a2-0000-0000-0000-000000000000"})
		testutil.AssertNoError(t, err)

		page, err := txSvc.ListTransactions(user.ID, filter, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("unknown category should match nothing, got %d rows", page.TotalItems)
		}
	})

	t.Run("scoped_to_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		page, err := txSvc.ListTransactions(other.ID, TransactionFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("other user should see no rows, got %d", page.TotalItems)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("income_expense_balance_count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "25.50")
		testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeIncome, "1000.00")

		summary, err := txSvc.Summarize(user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if summary.Income.StringFixed(2) != "1000.00" {
			t.Errorf("expected income 1000.00, got %s", summary.Income)
		}
		if summary.Expense.StringFixed(2) != "25.50" {
			t.Errorf("expected expense 25.50, got %s", summary.Expense)
		}
		if summary.Balance.StringFixed(2) != "974.50" {
			t.Errorf("expected balance 974.50, got %s", summary.Balance)
		}
		if summary.Count != 2 {
			t.Errorf("expected count 2, got %d", summary.Count)
		}
	})

	t.Run("empty_set_yields_zeros", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)

		summary, err := txSvc.Summarize(user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if !summary.Income.IsZero() || !summary.Expense.IsZero() || !summary.Balance.IsZero() || summary.Count != 0 {
			t.Errorf("expected all-zero summary, got %+v", summary)
		}
	})

	t.Run("decimal_sums_do_not_drift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		// 0.10 summed ten times is exactly 1.00 in fixed-point arithmetic.
		for i := 0; i < 10; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "0.10")
		}

		summary, err := txSvc.Summarize(user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if summary.Expense.StringFixed(2) != "1.00" {
			t.Errorf("expected expense 1.00, got %s", summary.Expense)
		}
	})

	t.Run("count_matches_list_count_for_same_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Street Food")
		rent := testutil.CreateTestCategoryWithName(t, db, user.ID, "Rent")

		testutil.CreateTestTransactionOn(t, db, user.ID, food.ID, models.TransactionTypeExpense, "12.00", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionOn(t, db, user.ID, food.ID, models.TransactionTypeExpense, "45.00", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionOn(t, db, user.ID, rent.ID, models.TransactionTypeExpense, "900.00", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionOn(t, db, user.ID, rent.ID, models.TransactionTypeIncome, "100.00", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))

		paramSets := []TransactionFilterParams{
			{},
			{Type: "expense"},
			{From: "2025-02-01", To: "2025-02-28"},
			{Type: "expense", Min: "20", Search: "food"},
			{Category: rent.ID},
		}
		for _, params := range paramSets {
			filter, err := ParseTransactionFilter(params)
			testutil.AssertNoError(t, err)

			page, err := txSvc.ListTransactions(user.ID, filter, pagination.PageRequest{})
			testutil.AssertNoError(t, err)
			summary, err := txSvc.Summarize(user.ID, filter)
			testutil.AssertNoError(t, err)

			if page.TotalItems != summary.Count {
				t.Errorf("params %+v: list count %d != summary count %d", params, page.TotalItems, summary.Count)
			}
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		amount := decimal.RequireFromString("42.00")
		updated, err := txSvc.UpdateTransaction(user.ID, tx.ID, UpdateTransactionParams{Amount: &amount})
		testutil.AssertNoError(t, err)

		if updated.Amount.StringFixed(2) != "42.00" {
			t.Errorf("expected amount 42.00, got %s", updated.Amount)
		}
		if updated.Type != models.TransactionTypeExpense {
			t.Errorf("type should be untouched, got %s", updated.Type)
		}
	})

	t.Run("reject_negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		amount := decimal.RequireFromString("-5")
		_, err := txSvc.UpdateTransaction(user.ID, tx.ID, UpdateTransactionParams{Amount: &amount})
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("reject_foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		foreign := testutil.CreateTestCategory(t, db, other.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		_, err := txSvc.UpdateTransaction(user.ID, tx.ID, UpdateTransactionParams{CategoryID: &foreign.ID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("deletes_own_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		testutil.AssertNoError(t, txSvc.DeleteTransaction(user.ID, tx.ID))

		_, err := txSvc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("cannot_delete_foreign_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewCategoryService(db))
		user := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, "10.00")

		err := txSvc.DeleteTransaction(intruder.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		_, err = txSvc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
	})
}
