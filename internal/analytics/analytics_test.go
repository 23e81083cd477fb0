package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/roomledger/roomledger/internal/models"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func expense(date, category string, amount float64) models.Transaction {
	return models.Transaction{Date: date, Category: category, Amount: amount}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		period    Period
		wantStart string
		wantEnd   string
	}{
		{PeriodWeek, "2025-03-09", "2025-03-15"},
		{PeriodMonth, "2025-02-14", "2025-03-15"},
		{PeriodYear, "2025-01-01", "2025-03-15"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end := DateRange(tt.period, testNow)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("DateRange(%s) = [%s, %s], want [%s, %s]",
					tt.period, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestExpenseBreakdown(t *testing.T) {
	txns := []models.Transaction{
		expense("2025-03-14", "Groceries", 60),
		expense("2025-03-13", "Groceries", 20),
		expense("2025-03-12", "Transport", 20),
		expense("2025-01-02", "Utilities", 500),                   // outside week window
		{Date: "2025-03-14", Category: "Salary", Amount: 3000, IsIncome: true}, // income ignored
	}

	items := ExpenseBreakdown(txns, PeriodWeek, testNow)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Groceries" || items[0].Value != 80 {
		t.Errorf("top item = %+v, want Groceries 80", items[0])
	}
	if items[0].Percent != 80.0 {
		t.Errorf("Groceries percent = %v, want 80.0", items[0].Percent)
	}
	if items[1].Name != "Transport" || items[1].Percent != 20.0 {
		t.Errorf("second item = %+v, want Transport 20%%", items[1])
	}
}

func TestExpenseBreakdownEmpty(t *testing.T) {
	if items := ExpenseBreakdown(nil, PeriodMonth, testNow); items != nil {
		t.Errorf("breakdown of nothing = %+v, want nil", items)
	}
}

func TestTopSpending(t *testing.T) {
	txns := []models.Transaction{
		expense("2025-03-10", "Groceries", 100),
		expense("2025-03-10", "Transport", 50),
		expense("2025-03-10", "Dining", 75),
	}

	top := TopSpending(txns, PeriodWeek, testNow, 2)
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2", len(top))
	}
	if top[0].Name != "Groceries" || top[1].Name != "Dining" {
		t.Errorf("top = %+v, want Groceries then Dining", top)
	}
}

func TestSpendingTrend(t *testing.T) {
	txns := []models.Transaction{
		expense("2025-03-15", "Groceries", 25),
		expense("2025-03-09", "Transport", 10),
		expense("2025-03-01", "Dining", 40), // outside week window
	}

	t.Run("week has seven daily points", func(t *testing.T) {
		points := SpendingTrend(txns, PeriodWeek, testNow)
		if len(points) != 7 {
			t.Fatalf("got %d points, want 7", len(points))
		}
		if points[0].Date != "2025-03-09" || points[0].Spent != 10 {
			t.Errorf("first point = %+v, want 2025-03-09 spent 10", points[0])
		}
		if points[6].Date != "2025-03-15" || points[6].Spent != 25 {
			t.Errorf("last point = %+v, want 2025-03-15 spent 25", points[6])
		}
	})

	t.Run("month has thirty daily points", func(t *testing.T) {
		points := SpendingTrend(txns, PeriodMonth, testNow)
		if len(points) != 30 {
			t.Fatalf("got %d points, want 30", len(points))
		}
		total := 0.0
		for _, p := range points {
			total += p.Spent
		}
		if math.Abs(total-75) > 1e-9 {
			t.Errorf("month trend total = %v, want 75", total)
		}
	})

	t.Run("year has 52 weekly buckets oldest first", func(t *testing.T) {
		points := SpendingTrend(txns, PeriodYear, testNow)
		if len(points) != 52 {
			t.Fatalf("got %d points, want 52", len(points))
		}
		if points[51].Spent != 35 {
			t.Errorf("latest week spent = %v, want 35", points[51].Spent)
		}
		for i := 1; i < len(points); i++ {
			if points[i].Date <= points[i-1].Date {
				t.Fatalf("points not in ascending date order at %d: %s then %s",
					i, points[i-1].Date, points[i].Date)
			}
		}
	})
}

func TestMonthlySpendingByCategory(t *testing.T) {
	txns := []models.Transaction{
		expense("2025-03-01", "Groceries", 50),
		expense("2025-03-20", "Groceries", 30),
		expense("2025-02-28", "Groceries", 999),
		{Date: "2025-03-05", Category: "Salary", Amount: 3000, IsIncome: true},
	}

	spent := MonthlySpendingByCategory(txns, "2025-03")
	if got := spent["Groceries"]; got != 80 {
		t.Errorf("Groceries spent = %v, want 80", got)
	}
	if _, ok := spent["Salary"]; ok {
		t.Error("income must not appear in spending")
	}
}

func TestSavingsRatePercent(t *testing.T) {
	tests := []struct {
		name     string
		income   float64
		expenses float64
		want     *float64
	}{
		{"typical", 3000, 2100, ptr(30.0)},
		{"overspent goes negative", 1000, 1500, ptr(-50.0)},
		{"zero income undefined", 0, 500, nil},
		{"negative income undefined", -100, 0, nil},
		{"rounds to one decimal", 3000, 2000, ptr(33.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SavingsRatePercent(tt.income, tt.expenses)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("SavingsRatePercent(%v, %v) = %v, want %v", tt.income, tt.expenses, got, tt.want)
			}
			if got != nil && math.Abs(*got-*tt.want) > 1e-9 {
				t.Errorf("SavingsRatePercent(%v, %v) = %v, want %v", tt.income, tt.expenses, *got, *tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }
