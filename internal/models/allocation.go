package models

import "fiscus/internal/money"

// AllocationType discriminates how an allocation's amount is derived.
type AllocationType string

const (
	AllocationTypeFixed      AllocationType = "fixed"
	AllocationTypePercentage AllocationType = "percentage"
)

// IsValid reports whether t is one of the known allocation types.
func (t AllocationType) IsValid() bool {
	switch t {
	case AllocationTypeFixed, AllocationTypePercentage:
		return true
	}
	return false
}

// CategoryAllocation assigns a portion of a budget's income to one spending
// category, either as a fixed minor-unit amount or as a percentage of
// planned income. Exactly one allocation exists per budget and category.
type CategoryAllocation struct {
	Base
	BudgetID   string         `gorm:"type:uuid;not null;index:idx_allocations_budget_category" json:"budget_id"`
	CategoryID string         `gorm:"type:uuid;not null;index:idx_allocations_budget_category" json:"category_id"`
	Type       AllocationType `gorm:"size:10;not null" json:"allocation_type"`
	Value      float64        `gorm:"not null" json:"allocation_value"`
	Allocated  int64          `gorm:"not null" json:"allocated_minor"`
	Spent      int64          `gorm:"not null;default:0" json:"spent_minor"`
	Rollover   bool           `gorm:"not null;default:false" json:"rollover"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Plan returns the allocation as a money.Plan so calculation sites handle
// the two variants exhaustively instead of comparing strings.
func (a *CategoryAllocation) Plan() money.Plan {
	if a.Type == AllocationTypePercentage {
		return money.PercentPlan{Points: a.Value}
	}
	return money.FixedPlan{Amount: a.Allocated}
}

// Remaining returns the unspent portion of the allocation. May be negative
// when the category is overspent; callers decide whether to clamp.
func (a *CategoryAllocation) Remaining() int64 {
	return a.Allocated - a.Spent
}
