package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestUpsertGoal(t *testing.T) {
	t.Run("creates_new_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.UpsertGoal(user.ID, time.Date(2025, 4, 18, 10, 30, 0, 0, time.UTC),
			decimal.NewFromInt(2000), decimal.NewFromInt(150))
		testutil.AssertNoError(t, err)

		if !goal.Month.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("month should be normalized to its first day, got %s", goal.Month)
		}
		if goal.TargetAmount.StringFixed(2) != "2000.00" {
			t.Errorf("expected target 2000.00, got %s", goal.TargetAmount)
		}
	})

	t.Run("second_write_replaces_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		first, err := svc.UpsertGoal(user.ID, month, decimal.NewFromInt(1000), decimal.NewFromInt(50))
		testutil.AssertNoError(t, err)

		second, err := svc.UpsertGoal(user.ID, month.AddDate(0, 0, 20), decimal.NewFromInt(3000), decimal.NewFromInt(75))
		testutil.AssertNoError(t, err)

		if second.ID != first.ID {
			t.Errorf("second upsert should keep the surviving row, got %s vs %s", second.ID, first.ID)
		}
		if second.TargetAmount.StringFixed(2) != "3000.00" || second.GoldAmount.StringFixed(2) != "75.00" {
			t.Errorf("amounts should be replaced, got %s / %s", second.TargetAmount, second.GoldAmount)
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.BudgetGoal{}).
			Where("user_id = ?", user.ID).Count(&count).Error)
		if count != 1 {
			t.Errorf("expected a single row for the month, got %d", count)
		}
	})

	t.Run("months_are_independent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertGoal(user.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1000), decimal.Zero)
		testutil.AssertNoError(t, err)
		_, err = svc.UpsertGoal(user.ID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1200), decimal.Zero)
		testutil.AssertNoError(t, err)

		page, err := svc.ListGoals(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 goals, got %d", page.TotalItems)
		}
	})

	t.Run("users_are_independent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

		a, err := svc.UpsertGoal(alice.ID, month, decimal.NewFromInt(500), decimal.Zero)
		testutil.AssertNoError(t, err)
		b, err := svc.UpsertGoal(bob.ID, month, decimal.NewFromInt(700), decimal.Zero)
		testutil.AssertNoError(t, err)

		if a.ID == b.ID {
			t.Error("different users must get different rows for the same month")
		}
	})

	t.Run("negative_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertGoal(user.ID, time.Now(), decimal.NewFromInt(-1), decimal.Zero)
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})
}

func TestListGoals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestGoal(t, db, user.ID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestGoal(t, db, user.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestGoal(t, db, user.ID, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	page, err := svc.ListGoals(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 3 {
		t.Fatalf("expected 3 goals, got %d", page.TotalItems)
	}
	if page.Data[0].Month.Month() != time.March {
		t.Errorf("expected newest month first, got %s", page.Data[0].Month)
	}
}

func TestDeleteGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	goal := testutil.CreateTestGoal(t, db, user.ID, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))

	err := svc.DeleteGoal(intruder.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteGoal(user.ID, goal.ID))

	_, err = svc.GetGoalByID(user.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}
