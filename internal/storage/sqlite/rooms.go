package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateRoom persists a new room and its owning member in one transaction.
// ID, invite code, and timestamps are generated when unset.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.InviteCode == "" {
		code, err := generateInviteCode()
		if err != nil {
			return fmt.Errorf("failed to generate invite code: %w", err)
		}
		room.InviteCode = code
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO rooms (id, name, created_by, invite_code, created_at) VALUES (?, ?, ?, ?, ?)",
		room.ID, room.Name, room.CreatedBy, room.InviteCode, room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO room_members (room_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		room.ID, room.CreatedBy, string(models.RoleOwner), room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, "id = ?", roomID)
}

// GetRoomByInviteCode retrieves a room by its invite code.
func (s *SQLiteStore) GetRoomByInviteCode(ctx context.Context, inviteCode string) (*models.Room, error) {
	return s.getRoom(ctx, "invite_code = ?", inviteCode)
}

func (s *SQLiteStore) getRoom(ctx context.Context, where string, arg any) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, invite_code, created_at FROM rooms WHERE "+where, arg,
	).Scan(&room.ID, &room.Name, &room.CreatedBy, &room.InviteCode, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// UpdateRoomName renames a room.
func (s *SQLiteStore) UpdateRoomName(ctx context.Context, roomID, name string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE rooms SET name = ? WHERE id = ?", name, roomID)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return requireRow(result, "room", roomID)
}

// DeleteRoom removes a room; members, shared expenses, splits, budgets, and
// settlements cascade.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, roomID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return requireRow(result, "room", roomID)
}

// ListRoomsForUser retrieves rooms the user belongs to or created, newest
// first.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT r.id, r.name, r.created_by, r.invite_code, r.created_at
		 FROM rooms r
		 LEFT JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? OR r.created_by = ?
		 ORDER BY r.created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room := &models.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedBy, &room.InviteCode, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// AddRoomMember inserts a membership row. Adding an existing member is a
// no-op so joining by invite code stays idempotent.
func (s *SQLiteStore) AddRoomMember(ctx context.Context, member *models.RoomMember) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO room_members (room_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		member.RoomID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add room member: %w", err)
	}
	return nil
}

// RemoveRoomMember deletes a membership row.
func (s *SQLiteStore) RemoveRoomMember(ctx context.Context, roomID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM room_members WHERE room_id = ? AND user_id = ?", roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove room member: %w", err)
	}
	return requireRow(result, "room member", userID)
}

// ListRoomMembers retrieves a room's members with display names resolved
// from the users table, oldest joiner first.
func (s *SQLiteStore) ListRoomMembers(ctx context.Context, roomID string) ([]*models.RoomMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.room_id, m.user_id, m.role, m.joined_at, COALESCE(u.display_name, '')
		 FROM room_members m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = ?
		 ORDER BY m.joined_at ASC, m.user_id ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	defer rows.Close()

	var members []*models.RoomMember
	for rows.Next() {
		member := &models.RoomMember{}
		var role string
		if err := rows.Scan(&member.RoomID, &member.UserID, &role, &member.JoinedAt, &member.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		member.Role = models.RoomRole(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room members: %w", err)
	}
	return members, nil
}

// CreateRoomBudget persists a per-category limit for a room.
func (s *SQLiteStore) CreateRoomBudget(ctx context.Context, budget *models.RoomBudget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt == 0 {
		budget.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO room_budgets (id, room_id, category, budget_limit, created_at) VALUES (?, ?, ?, ?, ?)",
		budget.ID, budget.RoomID, budget.Category, budget.Limit, budget.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room budget: %w", err)
	}
	return nil
}

// ListRoomBudgets retrieves a room's budgets, oldest first.
func (s *SQLiteStore) ListRoomBudgets(ctx context.Context, roomID string) ([]*models.RoomBudget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, category, budget_limit, created_at
		 FROM room_budgets WHERE room_id = ? ORDER BY created_at ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list room budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.RoomBudget
	for rows.Next() {
		budget := &models.RoomBudget{}
		if err := rows.Scan(&budget.ID, &budget.RoomID, &budget.Category, &budget.Limit, &budget.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room budgets: %w", err)
	}
	return budgets, nil
}

// DeleteRoomBudget removes a room budget.
func (s *SQLiteStore) DeleteRoomBudget(ctx context.Context, roomID, budgetID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM room_budgets WHERE id = ? AND room_id = ?", budgetID, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete room budget: %w", err)
	}
	return requireRow(result, "room budget", budgetID)
}

// generateInviteCode returns an 8-character hex code.
func generateInviteCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
