package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roomledger/roomledger/internal/analytics"
	"github.com/roomledger/roomledger/internal/models"
)

// AnalyticsService computes spending insights over a user's transaction
// stream.
type AnalyticsService struct {
	transactions *TransactionService

	// now is swappable for tests.
	now func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(transactions *TransactionService) *AnalyticsService {
	return &AnalyticsService{
		transactions: transactions,
		now:          time.Now,
	}
}

// Overview bundles the insight views for one period into a single response.
type Overview struct {
	Period      analytics.Period         `json:"period"`
	Breakdown   []analytics.BreakdownItem `json:"breakdown"`
	TopSpending []analytics.CategoryValue `json:"topSpending"`
	Trend       []analytics.TrendPoint    `json:"trend"`

	// SavingsRate is this month's (income - expenses) / income as a
	// percentage; nil when no income is recorded.
	SavingsRate *float64 `json:"savingsRate"`
}

// Overview computes the breakdown, top categories, trend, and savings rate
// for the user over the given period.
func (s *AnalyticsService) Overview(ctx context.Context, userID string, period analytics.Period) (*Overview, error) {
	if !analytics.ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q: %w", period, ErrInvalidInput)
	}

	txns, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &Overview{
		Period:      period,
		Breakdown:   analytics.ExpenseBreakdown(txns, period, now),
		TopSpending: analytics.TopSpending(txns, period, now, 10),
		Trend:       analytics.SpendingTrend(txns, period, now),
		SavingsRate: s.savingsRate(txns, now),
	}, nil
}

// savingsRate compares this month's normalized income against this month's
// spending. Salaries count every month (yearly divided by 12); one-time
// income counts only in its own month.
func (s *AnalyticsService) savingsRate(txns []models.Transaction, now time.Time) *float64 {
	month := now.Format("2006-01")

	var income, expenses float64
	for _, t := range txns {
		if !t.IsIncome {
			if strings.HasPrefix(t.Date, month) {
				expenses += t.Amount
			}
			continue
		}
		switch t.IncomeType {
		case models.IncomeMonthlySalary:
			income += t.Amount
		case models.IncomeYearlySalary:
			income += t.Amount / 12
		case models.IncomeOneTime:
			if strings.HasPrefix(t.Date, month) {
				income += t.Amount
			}
		}
	}

	return analytics.SavingsRatePercent(income, expenses)
}
