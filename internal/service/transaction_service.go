package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

const defaultCategory = "Other"

// TransactionService manages personal expenses and income and exposes them
// as a unified transaction stream.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService with the given
// storage backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// CreateExpense validates and stores a new expense for the user. Amounts
// are stored as positive magnitudes; the category defaults to "Other".
func (s *TransactionService) CreateExpense(ctx context.Context, userID string, expense *models.Expense) error {
	if err := normalizeAmount(&expense.Amount); err != nil {
		return err
	}
	if err := normalizeDate(&expense.Date); err != nil {
		return err
	}
	if expense.Category = strings.TrimSpace(expense.Category); expense.Category == "" {
		expense.Category = defaultCategory
	}
	expense.UserID = userID

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	slog.Info("Expense created", "user_id", userID, "expense_id", expense.ID, "amount", expense.Amount)
	return nil
}

// UpdateExpense applies the same normalization as CreateExpense and writes
// the row, scoped to the owning user.
func (s *TransactionService) UpdateExpense(ctx context.Context, userID string, expense *models.Expense) error {
	if err := normalizeAmount(&expense.Amount); err != nil {
		return err
	}
	if err := normalizeDate(&expense.Date); err != nil {
		return err
	}
	if expense.Category = strings.TrimSpace(expense.Category); expense.Category == "" {
		expense.Category = defaultCategory
	}
	expense.UserID = userID

	return s.store.UpdateExpense(ctx, expense)
}

// DeleteExpense removes an expense owned by the user.
func (s *TransactionService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return s.store.DeleteExpense(ctx, userID, expenseID)
}

// ListExpenses returns the user's expenses, newest date first.
func (s *TransactionService) ListExpenses(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.store.ListExpensesByUser(ctx, userID)
}

// CreateIncome validates and stores a new income entry.
func (s *TransactionService) CreateIncome(ctx context.Context, userID string, income *models.Income) error {
	if err := normalizeAmount(&income.Amount); err != nil {
		return err
	}
	if err := normalizeDate(&income.Date); err != nil {
		return err
	}
	if !models.ValidIncomeType(income.Type) {
		return fmt.Errorf("unknown income type %q: %w", income.Type, ErrInvalidInput)
	}
	income.UserID = userID

	if err := s.store.CreateIncome(ctx, income); err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	slog.Info("Income created", "user_id", userID, "income_id", income.ID, "type", income.Type)
	return nil
}

// UpdateIncome applies the same normalization as CreateIncome and writes
// the row, scoped to the owning user.
func (s *TransactionService) UpdateIncome(ctx context.Context, userID string, income *models.Income) error {
	if err := normalizeAmount(&income.Amount); err != nil {
		return err
	}
	if err := normalizeDate(&income.Date); err != nil {
		return err
	}
	if !models.ValidIncomeType(income.Type) {
		return fmt.Errorf("unknown income type %q: %w", income.Type, ErrInvalidInput)
	}
	income.UserID = userID

	return s.store.UpdateIncome(ctx, income)
}

// DeleteIncome removes an income entry owned by the user.
func (s *TransactionService) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	return s.store.DeleteIncome(ctx, userID, incomeID)
}

// ListIncome returns the user's income entries, newest date first.
func (s *TransactionService) ListIncome(ctx context.Context, userID string) ([]*models.Income, error) {
	return s.store.ListIncomeByUser(ctx, userID)
}

// ListTransactions merges the user's expenses and income into one stream,
// newest date first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	income, err := s.store.ListIncomeByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income: %w", err)
	}

	txns := make([]models.Transaction, 0, len(expenses)+len(income))
	for _, e := range expenses {
		txns = append(txns, models.Transaction{
			ID:          e.ID,
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	for _, in := range income {
		txns = append(txns, models.Transaction{
			ID:          in.ID,
			Date:        in.Date,
			Category:    "Income",
			Description: in.Description,
			Amount:      in.Amount,
			IsIncome:    true,
			IncomeType:  in.Type,
		})
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date > txns[j].Date
	})
	return txns, nil
}

// WipeUserData deletes all of the user's personal data and owned rooms.
func (s *TransactionService) WipeUserData(ctx context.Context, userID string) error {
	if err := s.store.WipeUserData(ctx, userID); err != nil {
		return fmt.Errorf("failed to wipe user data: %w", err)
	}
	slog.Info("User data wiped", "user_id", userID)
	return nil
}

// normalizeAmount rejects zero amounts and stores magnitudes unsigned.
func normalizeAmount(amount *float64) error {
	*amount = math.Abs(*amount)
	if *amount == 0 {
		return fmt.Errorf("amount must be non-zero: %w", ErrInvalidInput)
	}
	return nil
}

// normalizeDate trims the value to YYYY-MM-DD, defaulting to today.
func normalizeDate(date *string) error {
	if *date == "" {
		*date = time.Now().Format("2006-01-02")
		return nil
	}
	if len(*date) >= 10 {
		*date = (*date)[:10]
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalidInput)
	}
	return nil
}
