// Package analytics shapes transaction history into dashboard series:
// category breakdowns, spending trends, and savings rates over fixed
// reporting periods. All functions are pure over the supplied snapshot;
// the reference time is a parameter so reports are reproducible.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/roomledger/roomledger/internal/models"
)

// Period selects the reporting window.
type Period string

const (
	PeriodWeek  Period = "week"  // last 7 days, today inclusive
	PeriodMonth Period = "month" // last 30 days, today inclusive
	PeriodYear  Period = "year"  // Jan 1 of the current year through today
)

// ValidPeriod reports whether p is a known reporting period.
func ValidPeriod(p Period) bool {
	return p == PeriodWeek || p == PeriodMonth || p == PeriodYear
}

const dateLayout = "2006-01-02"

// DateRange returns the inclusive [start, end] date strings for a period.
func DateRange(p Period, now time.Time) (start, end string) {
	end = now.Format(dateLayout)
	switch p {
	case PeriodWeek:
		start = now.AddDate(0, 0, -6).Format(dateLayout)
	case PeriodMonth:
		start = now.AddDate(0, 0, -29).Format(dateLayout)
	default:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
	}
	return start, end
}

func expensesInRange(txns []models.Transaction, start, end string) []models.Transaction {
	var out []models.Transaction
	for _, t := range txns {
		if !t.IsIncome && t.Date >= start && t.Date <= end {
			out = append(out, t)
		}
	}
	return out
}

// BreakdownItem is one category's slice of period spending.
type BreakdownItem struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"` // share of period total, one decimal
}

// ExpenseBreakdown aggregates period spending by category, largest first.
// Returns nil when nothing was spent in the period.
func ExpenseBreakdown(txns []models.Transaction, p Period, now time.Time) []BreakdownItem {
	start, end := DateRange(p, now)
	byCategory := make(map[string]float64)
	total := 0.0
	for _, t := range expensesInRange(txns, start, end) {
		amt := math.Abs(t.Amount)
		byCategory[t.Category] += amt
		total += amt
	}
	if total == 0 {
		return nil
	}

	items := make([]BreakdownItem, 0, len(byCategory))
	for name, value := range byCategory {
		items = append(items, BreakdownItem{
			Name:    name,
			Value:   value,
			Percent: math.Round(value/total*1000) / 10,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// CategoryValue is a category paired with its period spending.
type CategoryValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TopSpending returns the top categories by period spending, capped at limit.
func TopSpending(txns []models.Transaction, p Period, now time.Time, limit int) []CategoryValue {
	start, end := DateRange(p, now)
	byCategory := make(map[string]float64)
	for _, t := range expensesInRange(txns, start, end) {
		byCategory[t.Category] += math.Abs(t.Amount)
	}

	items := make([]CategoryValue, 0, len(byCategory))
	for name, value := range byCategory {
		items = append(items, CategoryValue{Name: name, Value: value})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Name < items[j].Name
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// TrendPoint is one bucket of the spending trend series.
type TrendPoint struct {
	Date  string  `json:"date"`
	Spent float64 `json:"spent"`
	Label string  `json:"label"`
}

// SpendingTrend buckets spending over the period: one point per day for
// week and month, 52 weekly buckets for year. Points are ordered oldest
// first and include zero-spend buckets so charts stay evenly spaced.
func SpendingTrend(txns []models.Transaction, p Period, now time.Time) []TrendPoint {
	switch p {
	case PeriodWeek:
		return dailyTrend(txns, now, 7)
	case PeriodMonth:
		return dailyTrend(txns, now, 30)
	default:
		return weeklyTrend(txns, now, 52)
	}
}

func dailyTrend(txns []models.Transaction, now time.Time, days int) []TrendPoint {
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format(dateLayout)
		spent := 0.0
		for _, t := range txns {
			if !t.IsIncome && t.Date == date {
				spent += math.Abs(t.Amount)
			}
		}
		points = append(points, TrendPoint{
			Date:  date,
			Spent: spent,
			Label: day.Format("Jan 2"),
		})
	}
	return points
}

func weeklyTrend(txns []models.Transaction, now time.Time, weeks int) []TrendPoint {
	points := make([]TrendPoint, 0, weeks)
	weekEnd := now
	for w := 0; w < weeks; w++ {
		weekStart := weekEnd.AddDate(0, 0, -6)
		startStr := weekStart.Format(dateLayout)
		endStr := weekEnd.Format(dateLayout)
		spent := 0.0
		for _, t := range txns {
			if !t.IsIncome && t.Date >= startStr && t.Date <= endStr {
				spent += math.Abs(t.Amount)
			}
		}
		points = append(points, TrendPoint{
			Date:  startStr,
			Spent: spent,
			Label: weekStart.Format("Jan 2"),
		})
		weekEnd = weekStart.AddDate(0, 0, -1)
	}
	// Buckets were built newest first.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

// MonthlySpendingByCategory sums spending per category for one month
// (yearMonth in YYYY-MM form).
func MonthlySpendingByCategory(txns []models.Transaction, yearMonth string) map[string]float64 {
	byCategory := make(map[string]float64)
	for _, t := range txns {
		if !t.IsIncome && len(t.Date) >= 7 && t.Date[:7] == yearMonth {
			byCategory[t.Category] += math.Abs(t.Amount)
		}
	}
	return byCategory
}

// SavingsRatePercent computes (income - expenses) / income as a percent,
// rounded to one decimal. Returns nil when income is zero or negative,
// since the rate is undefined without income.
func SavingsRatePercent(income, expenses float64) *float64 {
	if income <= 0 || math.IsNaN(income) || math.IsInf(income, 0) {
		return nil
	}
	rate := (income - expenses) / income * 100
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	rounded := math.Round(rate*10) / 10
	return &rounded
}
