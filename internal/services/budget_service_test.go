package services

import (
	"testing"
	"time"

	"fiscus/internal/models"
	"fiscus/internal/pagination"
	"fiscus/internal/testutil"
)

// fixedClock pins the current month to August 2025 for future-month checks.
func fixedClock() time.Time {
	return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
}

func TestCreateBudget(t *testing.T) {
	t.Run("valid_draft", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			ActualIncome:  480000,
		})
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected non-empty budget ID")
		}
		if budget.Status != models.BudgetStatusDraft {
			t.Errorf("expected draft status by default, got %s", budget.Status)
		}
		if budget.Month != "2025-08" {
			t.Errorf("expected month 2025-08, got %s", budget.Month)
		}
	})

	t.Run("invalid_month_format", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{Month: "08-2025", PlannedIncome: 500000})
		testutil.AssertAppError(t, err, "INVALID_MONTH_FORMAT")
	})

	t.Run("future_month_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{Month: "2025-09", PlannedIncome: 500000})
		testutil.AssertAppError(t, err, "FUTURE_MONTH_NOT_ALLOWED")
	})

	t.Run("past_month_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{Month: "2024-12", PlannedIncome: 500000})
		testutil.AssertNoError(t, err)
	})

	t.Run("negative_income_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{Month: "2025-08", PlannedIncome: -1})
		testutil.AssertAppError(t, err, "NEGATIVE_INCOME_NOT_ALLOWED")
	})

	t.Run("invalid_status_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			Status:        models.BudgetStatus("archived"),
		})
		testutil.AssertAppError(t, err, "INVALID_BUDGET_STATUS")
	})

	t.Run("duplicate_active_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			Status:        models.BudgetStatusActive,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 600000,
			Status:        models.BudgetStatusActive,
		})
		testutil.AssertAppError(t, err, "DUPLICATE_ACTIVE_BUDGET")
	})

	t.Run("second_draft_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			Status:        models.BudgetStatusActive,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 600000,
			Status:        models.BudgetStatusDraft,
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("other_users_unaffected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user1.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			Status:        models.BudgetStatusActive,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user2.ID, CreateBudgetInput{
			Month:         "2025-08",
			PlannedIncome: 500000,
			Status:        models.BudgetStatusActive,
		})
		testutil.AssertNoError(t, err)
	})
}

func TestGetBudgetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

		got, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.ID != budget.ID {
			t.Errorf("expected budget %s, got %s", budget.ID, got.ID)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user1.ID, "2025-08")

		_, err := svc.GetBudgetByID(user2.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetBudgetsByMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := &budgetService{db: db, now: fixedClock}
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, user.ID, "2025-07", models.BudgetStatusClosed)
	testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusActive)
	testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusDraft)

	budgets, err := svc.GetBudgetsByMonth(user.ID, "2025-08")
	testutil.AssertNoError(t, err)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}

	_, err = svc.GetBudgetsByMonth(user.ID, "bad-token")
	testutil.AssertAppError(t, err, "INVALID_MONTH_FORMAT")
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("sorted_by_month_ascending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, "2025-08")
		testutil.CreateTestBudget(t, db, user.ID, "2024-12")
		testutil.CreateTestBudget(t, db, user.ID, "2025-03")

		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{}, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Fatalf("expected 3 budgets, got %d", result.TotalItems)
		}
		months := []string{result.Data[0].Month, result.Data[1].Month, result.Data[2].Month}
		if months[0] != "2024-12" || months[1] != "2025-03" || months[2] != "2025-08" {
			t.Errorf("expected ascending month order, got %v", months)
		}
	})

	t.Run("status_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, "2025-07", models.BudgetStatusClosed)
		testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusActive)

		active := models.BudgetStatusActive
		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{}, &active)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Fatalf("expected 1 active budget, got %d", result.TotalItems)
		}
		if result.Data[0].Month != "2025-08" {
			t.Errorf("expected 2025-08, got %s", result.Data[0].Month)
		}
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

		income := int64(620000)
		updated, err := svc.UpdateBudget(user.ID, budget.ID, UpdateBudgetInput{ActualIncome: &income})
		testutil.AssertNoError(t, err)

		if updated.ActualIncome != 620000 {
			t.Errorf("expected actual income 620000, got %d", updated.ActualIncome)
		}
		if updated.Month != budget.Month {
			t.Errorf("expected month unchanged, got %s", updated.Month)
		}
		if updated.PlannedIncome != budget.PlannedIncome {
			t.Errorf("expected planned income unchanged, got %d", updated.PlannedIncome)
		}
	})

	t.Run("negative_income_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

		income := int64(-5)
		_, err := svc.UpdateBudget(user.ID, budget.ID, UpdateBudgetInput{PlannedIncome: &income})
		testutil.AssertAppError(t, err, "NEGATIVE_INCOME_NOT_ALLOWED")
	})

	t.Run("activation_checks_duplicates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusActive)
		draft := testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusDraft)

		active := models.BudgetStatusActive
		_, err := svc.UpdateBudget(user.ID, draft.ID, UpdateBudgetInput{Status: &active})
		testutil.AssertAppError(t, err, "DUPLICATE_ACTIVE_BUDGET")
	})

	t.Run("activation_succeeds_when_unique", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		draft := testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusDraft)

		active := models.BudgetStatusActive
		updated, err := svc.UpdateBudget(user.ID, draft.ID, UpdateBudgetInput{Status: &active})
		testutil.AssertNoError(t, err)
		if updated.Status != models.BudgetStatusActive {
			t.Errorf("expected active status, got %s", updated.Status)
		}
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("active_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusActive)

		err := svc.DeleteBudget(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "ACTIVE_BUDGET_DELETE")
	})

	t.Run("cascades_to_allocations", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")
		testutil.CreateTestAllocation(t, db, budget.ID, cat.ID, 100000, 0)

		err := svc.DeleteBudget(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		var count int64
		db.Model(&models.CategoryAllocation{}).Where("budget_id = ?", budget.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected allocations to be deleted, found %d", count)
		}
	})
}

func TestRecalculateTotalAllocated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := &budgetService{db: db, now: fixedClock}
	user := testutil.CreateTestUser(t, db)
	cat1 := testutil.CreateTestCategory(t, db, user.ID)
	cat2 := testutil.CreateTestCategory(t, db, user.ID)
	budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

	testutil.CreateTestAllocation(t, db, budget.ID, cat1.ID, 150000, 0)
	testutil.CreateTestAllocation(t, db, budget.ID, cat2.ID, 100000, 0)

	total, err := svc.RecalculateTotalAllocated(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if total != 250000 {
		t.Fatalf("expected total 250000, got %d", total)
	}

	refreshed, err := svc.GetBudgetByID(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if refreshed.TotalAllocated != 250000 {
		t.Errorf("expected persisted total 250000, got %d", refreshed.TotalAllocated)
	}
}

func TestGetBudgetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := &budgetService{db: db, now: fixedClock}
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")
	testutil.CreateTestAllocation(t, db, budget.ID, cat.ID, 200000, 80000)

	summary, err := svc.GetBudgetSummary(user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	if summary.TotalAllocated != 200000 {
		t.Errorf("expected allocated 200000, got %d", summary.TotalAllocated)
	}
	if summary.TotalSpent != 80000 {
		t.Errorf("expected spent 80000, got %d", summary.TotalSpent)
	}
	if summary.Unallocated != 300000 {
		t.Errorf("expected unallocated 300000, got %d", summary.Unallocated)
	}
}

func TestCompareWithPreviousMonth(t *testing.T) {
	t.Run("previous_exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		previous := testutil.CreateTestBudget(t, db, user.ID, "2025-07", models.BudgetStatusClosed)
		current := testutil.CreateTestBudget(t, db, user.ID, "2025-08", models.BudgetStatusActive)
		testutil.CreateTestAllocation(t, db, previous.ID, cat.ID, 200000, 100000)
		testutil.CreateTestAllocation(t, db, current.ID, cat.ID, 220000, 110000)

		cmp, err := svc.CompareWithPreviousMonth(user.ID, current.ID)
		testutil.AssertNoError(t, err)

		if cmp.PreviousMonth != "2025-07" {
			t.Errorf("expected previous month 2025-07, got %s", cmp.PreviousMonth)
		}
		if cmp.Allocated.Change != 20000 {
			t.Errorf("expected allocated change 20000, got %d", cmp.Allocated.Change)
		}
		if cmp.Spent.ChangePercentage != 10 {
			t.Errorf("expected spent change 10%%, got %v", cmp.Spent.ChangePercentage)
		}
	})

	t.Run("january_compares_against_december", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, "2024-12", models.BudgetStatusClosed)
		current := testutil.CreateTestBudget(t, db, user.ID, "2025-01", models.BudgetStatusActive)

		cmp, err := svc.CompareWithPreviousMonth(user.ID, current.ID)
		testutil.AssertNoError(t, err)
		if cmp.PreviousMonth != "2024-12" {
			t.Errorf("expected previous month 2024-12, got %s", cmp.PreviousMonth)
		}
	})

	t.Run("no_previous_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &budgetService{db: db, now: fixedClock}
		user := testutil.CreateTestUser(t, db)
		current := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

		_, err := svc.CompareWithPreviousMonth(user.ID, current.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetRolloverReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := &budgetService{db: db, now: fixedClock}
	user := testutil.CreateTestUser(t, db)
	cat1 := testutil.CreateTestCategory(t, db, user.ID)
	cat2 := testutil.CreateTestCategory(t, db, user.ID)
	budget := testutil.CreateTestBudget(t, db, user.ID, "2025-08")

	rolling := testutil.CreateTestAllocation(t, db, budget.ID, cat1.ID, 100000, 60000)
	db.Model(rolling).Update("rollover", true)
	testutil.CreateTestAllocation(t, db, budget.ID, cat2.ID, 100000, 20000)

	report, err := svc.GetRolloverReport(user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	if report.Total != 40000 {
		t.Errorf("expected total rollover 40000, got %d", report.Total)
	}
	if len(report.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(report.ByCategory))
	}
}
