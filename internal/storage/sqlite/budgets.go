package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
)

// CreateBudget persists a new category budget.
func (s *SQLiteStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt == 0 {
		budget.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, budget_limit, alerts_enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.UserID, budget.Category, budget.Limit, boolToInt(budget.AlertsEnabled), budget.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

// ListBudgetsByUser retrieves all budgets for a user, oldest first.
func (s *SQLiteStore) ListBudgetsByUser(ctx context.Context, userID string) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, category, budget_limit, alerts_enabled, created_at
		 FROM budgets WHERE user_id = ? ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget := &models.Budget{}
		var alertsEnabled int
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.Category, &budget.Limit,
			&alertsEnabled, &budget.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budget.AlertsEnabled = alertsEnabled != 0
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget updates a budget's category, limit, and alert flag.
func (s *SQLiteStore) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, budget_limit = ?, alerts_enabled = ?
		 WHERE id = ? AND user_id = ?`,
		budget.Category, budget.Limit, boolToInt(budget.AlertsEnabled), budget.ID, budget.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if err := requireRow(result, "budget", budget.ID); err != nil {
		return err
	}
	// Callers pass a request-built model, so restore the original timestamp.
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM budgets WHERE id = ?", budget.ID,
	).Scan(&budget.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to read back budget: %w", err)
	}
	return nil
}

// DeleteBudget removes a budget owned by the user.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", budgetID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRow(result, "budget", budgetID)
}

// AcknowledgeAlert durably records that the user has seen one threshold
// alert for one budget in one month. Re-acknowledging is a no-op.
func (s *SQLiteStore) AcknowledgeAlert(ctx context.Context, userID, budgetID string, threshold int, month string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO budget_alert_acks (user_id, budget_id, threshold, month, acked_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, budgetID, threshold, month, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return nil
}

// ListAlertAcks returns the user's acknowledgements for one month, keyed by
// "<budgetID>_<threshold>" (the alert ID format).
func (s *SQLiteStore) ListAlertAcks(ctx context.Context, userID, month string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT budget_id, threshold FROM budget_alert_acks WHERE user_id = ? AND month = ?",
		userID, month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert acks: %w", err)
	}
	defer rows.Close()

	acks := make(map[string]bool)
	for rows.Next() {
		var budgetID string
		var threshold int
		if err := rows.Scan(&budgetID, &threshold); err != nil {
			return nil, fmt.Errorf("failed to scan alert ack: %w", err)
		}
		acks[fmt.Sprintf("%s_%d", budgetID, threshold)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert acks: %w", err)
	}
	return acks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
