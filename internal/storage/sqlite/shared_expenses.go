package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
)

// CreateSharedExpense persists a shared expense and its custom split rows
// in one transaction, so a failed split insert leaves no orphaned expense.
func (s *SQLiteStore) CreateSharedExpense(ctx context.Context, expense *models.SharedExpense, splits []models.ExpenseSplit) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shared_expenses (id, room_id, amount, category, description, date, paid_by, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.RoomID, expense.Amount, expense.Category,
		nullIfEmpty(expense.Description), expense.Date, expense.PaidBy,
		string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shared expense: %w", err)
	}

	for _, split := range splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (shared_expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, split.UserID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSharedExpensesByRoom retrieves a room's shared expenses, newest date
// first.
func (s *SQLiteStore) ListSharedExpensesByRoom(ctx context.Context, roomID string) ([]*models.SharedExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, amount, category, description, date, paid_by, split_type, created_at
		 FROM shared_expenses WHERE room_id = ? ORDER BY date DESC, created_at DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.SharedExpense
	for rows.Next() {
		expense := &models.SharedExpense{}
		var splitType string
		var description sql.NullString
		if err := rows.Scan(&expense.ID, &expense.RoomID, &expense.Amount, &expense.Category,
			&description, &expense.Date, &expense.PaidBy, &splitType, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shared expense: %w", err)
		}
		expense.Description = description.String
		expense.SplitType = models.SplitType(splitType)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shared expenses: %w", err)
	}
	return expenses, nil
}

// DeleteSharedExpense removes a shared expense; its split rows cascade.
func (s *SQLiteStore) DeleteSharedExpense(ctx context.Context, roomID, expenseID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM shared_expenses WHERE id = ? AND room_id = ?", expenseID, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete shared expense: %w", err)
	}
	return requireRow(result, "shared expense", expenseID)
}

// ListExpenseSplitsByRoom retrieves every custom split row belonging to a
// room's expenses in one query, for the ledger snapshot.
func (s *SQLiteStore) ListExpenseSplitsByRoom(ctx context.Context, roomID string) ([]models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sp.shared_expense_id, sp.user_id, sp.amount
		 FROM expense_splits sp
		 JOIN shared_expenses e ON e.id = sp.shared_expense_id
		 WHERE e.room_id = ?`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer rows.Close()

	var splits []models.ExpenseSplit
	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.SharedExpenseID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return splits, nil
}
