package models

// IncomeType classifies how income recurs.
type IncomeType string

const (
	IncomeYearlySalary  IncomeType = "yearly_salary"
	IncomeMonthlySalary IncomeType = "monthly_salary"
	IncomeOneTime       IncomeType = "one_time"
)

// ValidIncomeType reports whether t is one of the known income types.
func ValidIncomeType(t IncomeType) bool {
	switch t {
	case IncomeYearlySalary, IncomeMonthlySalary, IncomeOneTime:
		return true
	}
	return false
}

// Expense is one personal spending event.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// UserID is the owner of the expense.
	UserID string

	// Amount is the positive magnitude spent.
	Amount float64

	// Category buckets the expense for budgets and analytics
	// (e.g. "Groceries", "Transport"). Defaults to "Other".
	Category string

	// Description is an optional free-text note.
	Description string

	// Date is the day the expense occurred, YYYY-MM-DD.
	Date string

	// CreatedAt is the Unix timestamp when the row was inserted.
	CreatedAt int64
}

// Income is one personal income event.
type Income struct {
	ID          string
	UserID      string
	Amount      float64
	Type        IncomeType
	Description string
	Date        string
	CreatedAt   int64
}

// Transaction is the unified read model for dashboards and analytics:
// expenses and income merged into one stream.
type Transaction struct {
	ID          string
	Date        string
	Category    string
	Description string

	// Amount keeps the stored positive magnitude.
	Amount float64

	IsIncome bool

	// IncomeType is set only when IsIncome is true.
	IncomeType IncomeType
}
