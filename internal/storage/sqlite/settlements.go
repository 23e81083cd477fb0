package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
)

// CreateSettlement persists a new settlement.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, room_id, from_user_id, to_user_id, amount, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.RoomID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount, nullIfEmpty(settlement.Note), settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListSettlementsByRoom retrieves all settlements for a room, newest first.
func (s *SQLiteStore) ListSettlementsByRoom(ctx context.Context, roomID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, from_user_id, to_user_id, amount, note, created_at
		 FROM settlements WHERE room_id = ? ORDER BY created_at DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var note sql.NullString
		if err := rows.Scan(&settlement.ID, &settlement.RoomID, &settlement.FromUserID,
			&settlement.ToUserID, &settlement.Amount, &note, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.Note = note.String
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// DeleteSettlement removes a settlement.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, roomID, settlementID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE id = ? AND room_id = ?", settlementID, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return requireRow(result, "settlement", settlementID)
}
