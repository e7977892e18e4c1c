package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"fiscus/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a budget for the given month. Status defaults to
// draft unless given.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, month string, status ...models.BudgetStatus) *models.Budget {
	t.Helper()

	s := models.BudgetStatusDraft
	if len(status) > 0 {
		s = status[0]
	}

	budget := &models.Budget{
		UserID:        userID,
		Month:         month,
		PlannedIncome: 500000, // $5000.00
		ActualIncome:  500000,
		Status:        s,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestAllocation creates a fixed allocation with the given allocated
// and spent amounts (in minor units).
func CreateTestAllocation(t *testing.T, db *gorm.DB, budgetID, categoryID string, allocated, spent int64) *models.CategoryAllocation {
	t.Helper()

	allocation := &models.CategoryAllocation{
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Type:       models.AllocationTypeFixed,
		Value:      float64(allocated),
		Allocated:  allocated,
		Spent:      spent,
	}
	if err := db.Create(allocation).Error; err != nil {
		t.Fatalf("failed to create test allocation: %v", err)
	}
	return allocation
}

// CreateTestPercentAllocation creates a percentage allocation with the
// given points, materialized against the budget's planned income.
func CreateTestPercentAllocation(t *testing.T, db *gorm.DB, budgetID, categoryID string, points float64, allocated int64) *models.CategoryAllocation {
	t.Helper()

	allocation := &models.CategoryAllocation{
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Type:       models.AllocationTypePercentage,
		Value:      points,
		Allocated:  allocated,
	}
	if err := db.Create(allocation).Error; err != nil {
		t.Fatalf("failed to create test percent allocation: %v", err)
	}
	return allocation
}
