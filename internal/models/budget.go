package models

// Budget links a spending category to a monthly limit for one user.
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string

	// UserID is the owner of the budget.
	UserID string

	// Category is the spending category the limit applies to.
	Category string

	// Limit is the monthly spending limit for the category.
	Limit float64

	// AlertsEnabled controls whether threshold alerts fire for this budget.
	AlertsEnabled bool

	// CreatedAt is the Unix timestamp when the budget was created.
	CreatedAt int64
}

// BudgetWithSpent is a budget joined with the current month's spending
// in its category.
type BudgetWithSpent struct {
	Budget
	CurrentSpent float64
}

// RoomBudget is a per-category limit scoped to a room instead of a user.
type RoomBudget struct {
	ID        string
	RoomID    string
	Category  string
	Limit     float64
	CreatedAt int64
}

// RoomBudgetWithSpent is a room budget joined with the current month's
// shared spending in its category.
type RoomBudgetWithSpent struct {
	RoomBudget
	CurrentSpent float64
}
