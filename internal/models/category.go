package models

// Category represents a spending category. The allocation engine only
// consults it for display metadata; calculation correctness never depends
// on category fields.
type Category struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`

	Allocations []CategoryAllocation `gorm:"foreignKey:CategoryID" json:"allocations,omitempty"`
}
