package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
)

// CreateIncome persists a new income row.
func (s *SQLiteStore) CreateIncome(ctx context.Context, income *models.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	if income.CreatedAt == 0 {
		income.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO income (id, user_id, amount, income_type, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		income.ID, income.UserID, income.Amount, string(income.Type),
		nullIfEmpty(income.Description), income.Date, income.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

// ListIncomeByUser retrieves all income for a user, newest date first.
func (s *SQLiteStore) ListIncomeByUser(ctx context.Context, userID string) ([]*models.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount, income_type, description, date, created_at
		 FROM income WHERE user_id = ? ORDER BY date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list income: %w", err)
	}
	defer rows.Close()

	var incomes []*models.Income
	for rows.Next() {
		income := &models.Income{}
		var incomeType string
		var description sql.NullString
		if err := rows.Scan(&income.ID, &income.UserID, &income.Amount, &incomeType,
			&description, &income.Date, &income.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		income.Type = models.IncomeType(incomeType)
		income.Description = description.String
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income: %w", err)
	}
	return incomes, nil
}

// UpdateIncome updates an existing income row owned by its user.
func (s *SQLiteStore) UpdateIncome(ctx context.Context, income *models.Income) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE income SET amount = ?, income_type = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		income.Amount, string(income.Type), nullIfEmpty(income.Description), income.Date,
		income.ID, income.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	if err := requireRow(result, "income", income.ID); err != nil {
		return err
	}
	// Callers pass a request-built model, so restore the original timestamp.
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM income WHERE id = ?", income.ID,
	).Scan(&income.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to read back income: %w", err)
	}
	return nil
}

// DeleteIncome removes an income row owned by the user.
func (s *SQLiteStore) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM income WHERE id = ? AND user_id = ?", incomeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return requireRow(result, "income", incomeID)
}
