package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateExpense persists a new personal expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.Amount, expense.Category,
		nullIfEmpty(expense.Description), expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListExpensesByUser retrieves all expenses for a user, newest date first.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount, category, description, date, created_at
		 FROM expenses WHERE user_id = ? ORDER BY date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var description sql.NullString
		if err := rows.Scan(&expense.ID, &expense.UserID, &expense.Amount, &expense.Category,
			&description, &expense.Date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Description = description.String
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense updates an existing expense owned by its user.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		expense.Amount, expense.Category, nullIfEmpty(expense.Description), expense.Date,
		expense.ID, expense.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := requireRow(result, "expense", expense.ID); err != nil {
		return err
	}
	// Callers pass a request-built model, so restore the original timestamp.
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM expenses WHERE id = ?", expense.ID,
	).Scan(&expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to read back expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense owned by the user.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", expenseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRow(result, "expense", expenseID)
}

// WipeUserData deletes all personal data plus rooms owned by the user.
// Room contents (members, shared expenses, splits, budgets, settlements)
// cascade with the rooms.
func (s *SQLiteStore) WipeUserData(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM expenses WHERE user_id = ?",
		"DELETE FROM income WHERE user_id = ?",
		"DELETE FROM budgets WHERE user_id = ?",
		"DELETE FROM rooms WHERE created_by = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to wipe user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// requireRow converts a zero-row update/delete into a wrapped ErrNotFound.
func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
