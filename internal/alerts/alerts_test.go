package alerts

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		budgets []BudgetStatus
		validate func(t *testing.T, alerts []Alert)
	}{
		{
			name: "crossing all thresholds fires all three",
			budgets: []BudgetStatus{
				{BudgetID: "b1", Category: "Groceries", Limit: 400, Spent: 420, AlertsEnabled: true},
			},
			validate: func(t *testing.T, alerts []Alert) {
				if len(alerts) != 3 {
					t.Fatalf("got %d alerts, want 3", len(alerts))
				}
				// Highest threshold first.
				for i, want := range []int{100, 90, 50} {
					if alerts[i].Threshold != want {
						t.Errorf("alert %d threshold = %d, want %d", i, alerts[i].Threshold, want)
					}
				}
				if math.Abs(alerts[0].PercentUsed-105) > 1e-9 {
					t.Errorf("percent used = %v, want 105", alerts[0].PercentUsed)
				}
			},
		},
		{
			name: "between thresholds fires only the crossed ones",
			budgets: []BudgetStatus{
				{BudgetID: "b1", Category: "Transport", Limit: 200, Spent: 130, AlertsEnabled: true},
			},
			validate: func(t *testing.T, alerts []Alert) {
				if len(alerts) != 1 {
					t.Fatalf("got %d alerts, want 1", len(alerts))
				}
				if alerts[0].Threshold != 50 {
					t.Errorf("threshold = %d, want 50", alerts[0].Threshold)
				}
			},
		},
		{
			name: "disabled budgets never alert",
			budgets: []BudgetStatus{
				{BudgetID: "b1", Category: "Dining", Limit: 100, Spent: 150, AlertsEnabled: false},
			},
			validate: func(t *testing.T, alerts []Alert) {
				if len(alerts) != 0 {
					t.Errorf("got %d alerts for a disabled budget, want 0", len(alerts))
				}
			},
		},
		{
			name: "zero limit never alerts",
			budgets: []BudgetStatus{
				{BudgetID: "b1", Category: "Misc", Limit: 0, Spent: 50, AlertsEnabled: true},
			},
			validate: func(t *testing.T, alerts []Alert) {
				if len(alerts) != 0 {
					t.Errorf("got %d alerts for a zero-limit budget, want 0", len(alerts))
				}
			},
		},
		{
			name: "same threshold sorts by category",
			budgets: []BudgetStatus{
				{BudgetID: "b2", Category: "Transport", Limit: 100, Spent: 60, AlertsEnabled: true},
				{BudgetID: "b1", Category: "Groceries", Limit: 100, Spent: 55, AlertsEnabled: true},
			},
			validate: func(t *testing.T, alerts []Alert) {
				if len(alerts) != 2 {
					t.Fatalf("got %d alerts, want 2", len(alerts))
				}
				if alerts[0].Category != "Groceries" || alerts[1].Category != "Transport" {
					t.Errorf("order = %s, %s; want Groceries, Transport", alerts[0].Category, alerts[1].Category)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, Evaluate(tt.budgets))
		})
	}
}

func TestUnacknowledged(t *testing.T) {
	all := Evaluate([]BudgetStatus{
		{BudgetID: "b1", Category: "Groceries", Limit: 100, Spent: 95, AlertsEnabled: true},
	})
	if len(all) != 2 {
		t.Fatalf("got %d alerts, want 2", len(all))
	}

	acked := map[string]bool{AlertID("b1", 90): true}
	visible := Unacknowledged(all, acked)
	if len(visible) != 1 {
		t.Fatalf("got %d visible alerts, want 1", len(visible))
	}
	if visible[0].Threshold != 50 {
		t.Errorf("remaining threshold = %d, want 50", visible[0].Threshold)
	}
}

func TestThresholdMessage(t *testing.T) {
	if got := ThresholdMessage(50); got != "Half of your budget used" {
		t.Errorf("message(50) = %q", got)
	}
	if got := ThresholdMessage(100); got != "Budget limit reached" {
		t.Errorf("message(100) = %q", got)
	}
}
