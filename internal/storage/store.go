// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/roomledger/roomledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services need. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// Users. GetUserByEmail and GetUserByID return (nil, nil) when the user
	// does not exist, so callers can distinguish "missing" from "failed".
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Personal expenses.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID string) error

	// Personal income.
	CreateIncome(ctx context.Context, income *models.Income) error
	ListIncomeByUser(ctx context.Context, userID string) ([]*models.Income, error)
	UpdateIncome(ctx context.Context, income *models.Income) error
	DeleteIncome(ctx context.Context, userID, incomeID string) error

	// Budgets and alert acknowledgements.
	CreateBudget(ctx context.Context, budget *models.Budget) error
	ListBudgetsByUser(ctx context.Context, userID string) ([]*models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	AcknowledgeAlert(ctx context.Context, userID, budgetID string, threshold int, month string) error
	ListAlertAcks(ctx context.Context, userID, month string) (map[string]bool, error)

	// Rooms and membership. CreateRoom also records the creator as the
	// owning member, atomically.
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	GetRoomByInviteCode(ctx context.Context, inviteCode string) (*models.Room, error)
	UpdateRoomName(ctx context.Context, roomID, name string) error
	DeleteRoom(ctx context.Context, roomID string) error
	ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error)
	AddRoomMember(ctx context.Context, member *models.RoomMember) error
	RemoveRoomMember(ctx context.Context, roomID, userID string) error
	ListRoomMembers(ctx context.Context, roomID string) ([]*models.RoomMember, error)

	// Room budgets.
	CreateRoomBudget(ctx context.Context, budget *models.RoomBudget) error
	ListRoomBudgets(ctx context.Context, roomID string) ([]*models.RoomBudget, error)
	DeleteRoomBudget(ctx context.Context, roomID, budgetID string) error

	// Shared expenses. CreateSharedExpense writes the expense and its custom
	// split rows in one transaction.
	CreateSharedExpense(ctx context.Context, expense *models.SharedExpense, splits []models.ExpenseSplit) error
	ListSharedExpensesByRoom(ctx context.Context, roomID string) ([]*models.SharedExpense, error)
	DeleteSharedExpense(ctx context.Context, roomID, expenseID string) error
	ListExpenseSplitsByRoom(ctx context.Context, roomID string) ([]models.ExpenseSplit, error)

	// Settlements.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	ListSettlementsByRoom(ctx context.Context, roomID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, roomID, settlementID string) error

	// WipeUserData deletes the user's expenses, income, budgets, and owned
	// rooms (room contents cascade). Memberships in other users' rooms stay.
	WipeUserData(ctx context.Context, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
