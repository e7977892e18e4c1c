// Package errors provides custom error types for the Fiscus API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse    = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing allocations", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetNotFound        = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrInvalidMonthFormat    = &AppError{Code: "INVALID_MONTH_FORMAT", Message: "Month must be in YYYY-MM format", StatusCode: http.StatusBadRequest}
	ErrFutureMonth           = &AppError{Code: "FUTURE_MONTH_NOT_ALLOWED", Message: "Budget month cannot be in the future", StatusCode: http.StatusBadRequest}
	ErrNegativeIncome        = &AppError{Code: "NEGATIVE_INCOME_NOT_ALLOWED", Message: "Monetary amounts must be non-negative", StatusCode: http.StatusBadRequest}
	ErrInvalidBudgetStatus   = &AppError{Code: "INVALID_BUDGET_STATUS", Message: "Budget status must be draft, active, or closed", StatusCode: http.StatusBadRequest}
	ErrDuplicateActiveBudget = &AppError{Code: "DUPLICATE_ACTIVE_BUDGET", Message: "An active budget already exists for this month", StatusCode: http.StatusConflict}
	ErrImmutableFieldUpdate  = &AppError{Code: "IMMUTABLE_FIELD_UPDATE", Message: "Immutable fields cannot be updated", StatusCode: http.StatusBadRequest}
	ErrActiveBudgetDelete    = &AppError{Code: "ACTIVE_BUDGET_DELETE", Message: "Active budgets cannot be deleted", StatusCode: http.StatusConflict}
)

// Allocation errors.
var (
	ErrAllocationNotFound      = &AppError{Code: "ALLOCATION_NOT_FOUND", Message: "Allocation not found", StatusCode: http.StatusNotFound}
	ErrInvalidAllocationType   = &AppError{Code: "INVALID_ALLOCATION_TYPE", Message: "Allocation type must be fixed or percentage", StatusCode: http.StatusBadRequest}
	ErrAllocationValueNegative = &AppError{Code: "ALLOCATION_VALUE_NEGATIVE", Message: "Allocation value must be non-negative", StatusCode: http.StatusBadRequest}
	ErrPercentageExceeds100    = &AppError{Code: "PERCENTAGE_EXCEEDS_100", Message: "Percentage allocations cannot exceed 100", StatusCode: http.StatusBadRequest}
	ErrAllocatedNegative       = &AppError{Code: "ALLOCATED_AMOUNT_NEGATIVE", Message: "Allocated amount must be non-negative", StatusCode: http.StatusBadRequest}
	ErrSpentNegative           = &AppError{Code: "SPENT_AMOUNT_NEGATIVE", Message: "Spent amount must be non-negative", StatusCode: http.StatusBadRequest}
	ErrSpentExceedsAllocated   = &AppError{Code: "SPENT_EXCEEDS_ALLOCATED", Message: "Spent amount cannot exceed the allocated amount", StatusCode: http.StatusBadRequest}
	ErrDuplicateAllocation     = &AppError{Code: "DUPLICATE_ALLOCATION", Message: "An allocation already exists for this category", StatusCode: http.StatusConflict}
	ErrAllocationHasSpending   = &AppError{Code: "ALLOCATION_HAS_SPENDING", Message: "Allocations with recorded spending cannot be deleted", StatusCode: http.StatusConflict}
)

// Money errors.
var (
	ErrPercentageOutOfRange = &AppError{Code: "PERCENTAGE_OUT_OF_RANGE", Message: "Percentage must be between 0 and 100", StatusCode: http.StatusBadRequest}
)
