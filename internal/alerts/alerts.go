// Package alerts evaluates budget threshold crossings. An alert fires when
// a budget's month-to-date spending reaches 50, 90, or 100 percent of its
// limit. Acknowledgements are durable and scoped to user, budget, threshold,
// and month, so a crossed threshold alerts once per budget period rather
// than once per page load.
package alerts

import (
	"fmt"
	"sort"
)

// Thresholds are the percent-of-limit marks that trigger alerts,
// in ascending order.
var Thresholds = []int{50, 90, 100}

// BudgetStatus is the slice of a budget the evaluator needs.
type BudgetStatus struct {
	BudgetID      string
	Category      string
	Limit         float64
	Spent         float64
	AlertsEnabled bool
}

// Alert is one crossed threshold for one budget.
type Alert struct {
	// ID is stable per budget/threshold pair, so acknowledgements can
	// key on it.
	ID          string  `json:"id"`
	BudgetID    string  `json:"budgetId"`
	Category    string  `json:"category"`
	Threshold   int     `json:"threshold"`
	PercentUsed float64 `json:"percentUsed"`
	Spent       float64 `json:"currentSpent"`
	Limit       float64 `json:"budgetLimit"`
	Message     string  `json:"message"`
}

// AlertID builds the stable identifier for a budget/threshold pair.
func AlertID(budgetID string, threshold int) string {
	return fmt.Sprintf("%s_%d", budgetID, threshold)
}

// Evaluate returns every crossed threshold for the budgets that have alerts
// enabled, highest thresholds first, then by category. Budgets with a
// non-positive limit never alert.
func Evaluate(budgets []BudgetStatus) []Alert {
	var out []Alert
	for _, b := range budgets {
		if !b.AlertsEnabled || b.Limit <= 0 {
			continue
		}
		percent := b.Spent / b.Limit * 100
		for _, threshold := range Thresholds {
			if percent < float64(threshold) {
				continue
			}
			out = append(out, Alert{
				ID:          AlertID(b.BudgetID, threshold),
				BudgetID:    b.BudgetID,
				Category:    b.Category,
				Threshold:   threshold,
				PercentUsed: percent,
				Spent:       b.Spent,
				Limit:       b.Limit,
				Message:     ThresholdMessage(threshold),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Threshold != out[j].Threshold {
			return out[i].Threshold > out[j].Threshold
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Unacknowledged filters out alerts the user has already acknowledged this
// period. acked is keyed by alert ID.
func Unacknowledged(all []Alert, acked map[string]bool) []Alert {
	var out []Alert
	for _, a := range all {
		if !acked[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// ThresholdMessage is the user-facing text for a threshold crossing.
func ThresholdMessage(threshold int) string {
	switch threshold {
	case 50:
		return "Half of your budget used"
	case 90:
		return "Almost at your limit"
	default:
		return "Budget limit reached"
	}
}
