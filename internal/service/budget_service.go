package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roomledger/roomledger/internal/alerts"
	"github.com/roomledger/roomledger/internal/analytics"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// BudgetService manages per-category budgets and their threshold alerts.
type BudgetService struct {
	store        storage.Store
	transactions *TransactionService

	// now is swappable for tests.
	now func() time.Time
}

// NewBudgetService creates a new BudgetService with the given storage
// backend.
func NewBudgetService(store storage.Store, transactions *TransactionService) *BudgetService {
	return &BudgetService{
		store:        store,
		transactions: transactions,
		now:          time.Now,
	}
}

// CreateBudget validates and stores a new budget for the user.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, budget *models.Budget) error {
	if budget.Category = strings.TrimSpace(budget.Category); budget.Category == "" {
		return fmt.Errorf("category is required: %w", ErrInvalidInput)
	}
	if budget.Limit <= 0 {
		return fmt.Errorf("limit must be positive: %w", ErrInvalidInput)
	}
	budget.UserID = userID

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	slog.Info("Budget created", "user_id", userID, "budget_id", budget.ID, "category", budget.Category)
	return nil
}

// UpdateBudget applies the same validation as CreateBudget and writes the
// row, scoped to the owning user.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID string, budget *models.Budget) error {
	if budget.Category = strings.TrimSpace(budget.Category); budget.Category == "" {
		return fmt.Errorf("category is required: %w", ErrInvalidInput)
	}
	if budget.Limit <= 0 {
		return fmt.Errorf("limit must be positive: %w", ErrInvalidInput)
	}
	budget.UserID = userID

	return s.store.UpdateBudget(ctx, budget)
}

// DeleteBudget removes a budget owned by the user.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	return s.store.DeleteBudget(ctx, userID, budgetID)
}

// ListBudgetsWithSpent returns the user's budgets joined with how much was
// spent in each category this month.
func (s *BudgetService) ListBudgetsWithSpent(ctx context.Context, userID string) ([]models.BudgetWithSpent, error) {
	budgets, err := s.store.ListBudgetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	spent, err := s.monthlySpending(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.BudgetWithSpent, len(budgets))
	for i, b := range budgets {
		out[i] = models.BudgetWithSpent{
			Budget:       *b,
			CurrentSpent: spent[b.Category],
		}
	}
	return out, nil
}

// ActiveAlerts evaluates the user's budgets against this month's spending
// and returns the crossed thresholds not yet acknowledged this month.
func (s *BudgetService) ActiveAlerts(ctx context.Context, userID string) ([]alerts.Alert, error) {
	budgets, err := s.store.ListBudgetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	spent, err := s.monthlySpending(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]alerts.BudgetStatus, len(budgets))
	for i, b := range budgets {
		statuses[i] = alerts.BudgetStatus{
			BudgetID:      b.ID,
			Category:      b.Category,
			Limit:         b.Limit,
			Spent:         spent[b.Category],
			AlertsEnabled: b.AlertsEnabled,
		}
	}

	acked, err := s.store.ListAlertAcks(ctx, userID, s.currentMonth())
	if err != nil {
		return nil, fmt.Errorf("failed to list alert acks: %w", err)
	}

	return alerts.Unacknowledged(alerts.Evaluate(statuses), acked), nil
}

// AcknowledgeAlert records that the user dismissed a threshold alert for
// this month. Repeat acknowledgements are no-ops.
func (s *BudgetService) AcknowledgeAlert(ctx context.Context, userID, budgetID string, threshold int) error {
	valid := false
	for _, t := range alerts.Thresholds {
		if t == threshold {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown threshold %d: %w", threshold, ErrInvalidInput)
	}

	if err := s.store.AcknowledgeAlert(ctx, userID, budgetID, threshold, s.currentMonth()); err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return nil
}

func (s *BudgetService) currentMonth() string {
	return s.now().Format("2006-01")
}

func (s *BudgetService) monthlySpending(ctx context.Context, userID string) (map[string]float64, error) {
	txns, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlySpendingByCategory(txns, s.currentMonth()), nil
}
