package money

import apperrors "fiscus/internal/errors"

// Plan is the allocation plan for a single category: either a fixed
// minor-unit amount or a percentage of the budget's planned income.
// Calculation sites switch on the concrete type, so adding a variant
// breaks every site that fails to handle it.
type Plan interface {
	isPlan()
}

// FixedPlan allocates a fixed minor-unit amount regardless of income.
type FixedPlan struct {
	Amount int64
}

// PercentPlan allocates a percentage of the budget's planned income.
type PercentPlan struct {
	Points float64
}

func (FixedPlan) isPlan()   {}
func (PercentPlan) isPlan() {}

// Materialize resolves the plan to a minor-unit amount against the given
// income. Fixed plans ignore income entirely.
func Materialize(p Plan, incomeMinor int64) (int64, error) {
	switch v := p.(type) {
	case FixedPlan:
		return v.Amount, nil
	case PercentPlan:
		return FromPercent(v.Points, incomeMinor)
	default:
		return 0, apperrors.ErrInvalidAllocationType
	}
}
