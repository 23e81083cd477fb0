package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roomledger/roomledger/internal/cache"
	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// splitSumTolerance is how far custom shares may drift from the expense
// amount before the write is rejected. Compared in decimal so a nominal
// one-cent gap is not pushed over the line by float addition error.
var splitSumTolerance = decimal.NewFromFloat(0.01)

// balancesTTL bounds how long a memoized balance survives if invalidation
// is missed.
const balancesTTL = 5 * time.Minute

// RoomService manages rooms, shared expenses, settlements, and the balance
// views computed from them.
type RoomService struct {
	store storage.Store
	cache cache.Cache
}

// NewRoomService creates a new RoomService with the given storage backend
// and balance cache.
func NewRoomService(store storage.Store, c cache.Cache) *RoomService {
	return &RoomService{store: store, cache: c}
}

// CreateRoom creates a room with the user as its owner and generates an
// invite code.
func (s *RoomService) CreateRoom(ctx context.Context, userID, name string) (*models.Room, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, fmt.Errorf("room name is required: %w", ErrInvalidInput)
	}

	room := &models.Room{Name: name, CreatedBy: userID}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	slog.Info("Room created", "room_id", room.ID, "user_id", userID)
	return room, nil
}

// GetRoom returns the room with its members. The caller must be a member.
func (s *RoomService) GetRoom(ctx context.Context, roomID, userID string) (*models.Room, []*models.RoomMember, error) {
	members, err := s.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return room, members, nil
}

// ListRooms returns every room the user belongs to.
func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]*models.Room, error) {
	return s.store.ListRoomsForUser(ctx, userID)
}

// JoinRoom adds the user to the room behind an invite code. Joining a
// room twice is a no-op.
func (s *RoomService) JoinRoom(ctx context.Context, userID, inviteCode string) (*models.Room, error) {
	room, err := s.store.GetRoomByInviteCode(ctx, strings.TrimSpace(inviteCode))
	if err != nil {
		return nil, err
	}

	member := &models.RoomMember{RoomID: room.ID, UserID: userID, Role: models.RoleMember}
	if err := s.store.AddRoomMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	s.invalidateBalances(ctx, room.ID)
	slog.Info("User joined room", "room_id", room.ID, "user_id", userID)
	return room, nil
}

// InvitePreview describes a room to someone holding its invite code,
// before they commit to joining.
type InvitePreview struct {
	RoomName      string
	MemberCount   int
	AlreadyMember bool
}

// PreviewInvite looks up the room behind an invite code. userID may be
// empty for an unauthenticated caller, in which case AlreadyMember is
// always false.
func (s *RoomService) PreviewInvite(ctx context.Context, inviteCode, userID string) (*InvitePreview, error) {
	room, err := s.store.GetRoomByInviteCode(ctx, strings.TrimSpace(inviteCode))
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListRoomMembers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	return &InvitePreview{
		RoomName:      room.Name,
		MemberCount:   len(members),
		AlreadyMember: userID != "" && containsMember(members, userID),
	}, nil
}

// RenameRoom changes the room's name. Only the owner may rename.
func (s *RoomService) RenameRoom(ctx context.Context, roomID, userID, name string) error {
	if name = strings.TrimSpace(name); name == "" {
		return fmt.Errorf("room name is required: %w", ErrInvalidInput)
	}
	if err := s.requireOwner(ctx, roomID, userID); err != nil {
		return err
	}
	return s.store.UpdateRoomName(ctx, roomID, name)
}

// DeleteRoom removes the room and everything in it. Only the owner may
// delete.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, userID string) error {
	if err := s.requireOwner(ctx, roomID, userID); err != nil {
		return err
	}

	s.invalidateBalances(ctx, roomID)
	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	slog.Info("Room deleted", "room_id", roomID, "user_id", userID)
	return nil
}

// LeaveRoom removes the user from the room. The owner cannot leave their
// own room; they delete it instead.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatedBy == userID {
		return fmt.Errorf("the owner cannot leave their own room: %w", ErrInvalidInput)
	}

	if err := s.store.RemoveRoomMember(ctx, roomID, userID); err != nil {
		return err
	}
	s.invalidateBalances(ctx, roomID)
	return nil
}

// RemoveMember kicks a member out of the room. Only the owner may remove
// members, and the owner cannot remove themselves.
func (s *RoomService) RemoveMember(ctx context.Context, roomID, ownerID, memberID string) error {
	if err := s.requireOwner(ctx, roomID, ownerID); err != nil {
		return err
	}
	if memberID == ownerID {
		return fmt.Errorf("the owner cannot remove themselves: %w", ErrInvalidInput)
	}

	if err := s.store.RemoveRoomMember(ctx, roomID, memberID); err != nil {
		return err
	}
	s.invalidateBalances(ctx, roomID)
	return nil
}

// ListMembers returns the room's members with display names resolved.
// The caller must be a member.
func (s *RoomService) ListMembers(ctx context.Context, roomID, userID string) ([]*models.RoomMember, error) {
	return s.requireMember(ctx, roomID, userID)
}

// AddSharedExpense validates and records a shared expense. For custom
// splits the share rows must sum to the expense amount.
func (s *RoomService) AddSharedExpense(ctx context.Context, userID string, expense *models.SharedExpense, splits []models.ExpenseSplit) error {
	members, err := s.requireMember(ctx, expense.RoomID, userID)
	if err != nil {
		return err
	}

	if err := normalizeAmount(&expense.Amount); err != nil {
		return err
	}
	if err := normalizeDate(&expense.Date); err != nil {
		return err
	}
	if expense.Category = strings.TrimSpace(expense.Category); expense.Category == "" {
		expense.Category = defaultCategory
	}
	if !models.ValidSplitType(expense.SplitType) {
		return fmt.Errorf("unknown split type %q: %w", expense.SplitType, ErrInvalidInput)
	}
	if !containsMember(members, expense.PaidBy) {
		return fmt.Errorf("payer is not a room member: %w", ErrInvalidInput)
	}

	if expense.SplitType == models.SplitCustom {
		sum := decimal.Zero
		for _, sp := range splits {
			if sp.Amount < 0 {
				return fmt.Errorf("split shares must be non-negative: %w", ErrInvalidInput)
			}
			sum = sum.Add(decimal.NewFromFloat(sp.Amount))
		}
		gap := sum.Sub(decimal.NewFromFloat(expense.Amount)).Abs()
		if gap.GreaterThan(splitSumTolerance) {
			return fmt.Errorf("split shares sum to %s, expense is %.2f: %w", sum.StringFixed(2), expense.Amount, ErrInvalidInput)
		}
	} else {
		// Share rows only exist for custom splits.
		splits = nil
	}

	if err := s.store.CreateSharedExpense(ctx, expense, splits); err != nil {
		return fmt.Errorf("failed to create shared expense: %w", err)
	}

	s.invalidateBalances(ctx, expense.RoomID)
	slog.Info("Shared expense created",
		"room_id", expense.RoomID,
		"expense_id", expense.ID,
		"split_type", expense.SplitType,
		"amount", expense.Amount,
	)
	return nil
}

// ListSharedExpenses returns the room's shared expenses, newest date first.
// The caller must be a member.
func (s *RoomService) ListSharedExpenses(ctx context.Context, roomID, userID string) ([]*models.SharedExpense, error) {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.ListSharedExpensesByRoom(ctx, roomID)
}

// DeleteSharedExpense removes a shared expense and its splits. The caller
// must be a member.
func (s *RoomService) DeleteSharedExpense(ctx context.Context, roomID, userID, expenseID string) error {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSharedExpense(ctx, roomID, expenseID); err != nil {
		return err
	}
	s.invalidateBalances(ctx, roomID)
	return nil
}

// RecordSettlement validates and stores a payment between two members.
func (s *RoomService) RecordSettlement(ctx context.Context, userID string, settlement *models.Settlement) error {
	members, err := s.requireMember(ctx, settlement.RoomID, userID)
	if err != nil {
		return err
	}

	if err := normalizeAmount(&settlement.Amount); err != nil {
		return err
	}
	if settlement.FromUserID == settlement.ToUserID {
		return fmt.Errorf("cannot settle with yourself: %w", ErrInvalidInput)
	}
	if !containsMember(members, settlement.FromUserID) || !containsMember(members, settlement.ToUserID) {
		return fmt.Errorf("both parties must be room members: %w", ErrInvalidInput)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	s.invalidateBalances(ctx, settlement.RoomID)
	slog.Info("Settlement recorded",
		"room_id", settlement.RoomID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount,
	)
	return nil
}

// SettlementDetail is a settlement with both parties' display names
// resolved.
type SettlementDetail struct {
	models.Settlement
	FromDisplayName string
	ToDisplayName   string
}

// ListSettlements returns the room's settlements, newest first, with party
// display names resolved. The caller must be a member.
func (s *RoomService) ListSettlements(ctx context.Context, roomID, userID string) ([]SettlementDetail, error) {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(settlements)*2)
	for _, st := range settlements {
		ids = append(ids, st.FromUserID, st.ToUserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settlement parties: %w", err)
	}

	out := make([]SettlementDetail, len(settlements))
	for i, st := range settlements {
		detail := SettlementDetail{Settlement: *st}
		if u := users[st.FromUserID]; u != nil {
			detail.FromDisplayName = u.DisplayName
		}
		if u := users[st.ToUserID]; u != nil {
			detail.ToDisplayName = u.DisplayName
		}
		out[i] = detail
	}
	return out, nil
}

// DeleteSettlement removes a recorded settlement. The caller must be a
// member.
func (s *RoomService) DeleteSettlement(ctx context.Context, roomID, userID, settlementID string) error {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSettlement(ctx, roomID, settlementID); err != nil {
		return err
	}
	s.invalidateBalances(ctx, roomID)
	return nil
}

// CreateRoomBudget adds a per-category limit to the room. The caller must
// be a member.
func (s *RoomService) CreateRoomBudget(ctx context.Context, userID string, budget *models.RoomBudget) error {
	if _, err := s.requireMember(ctx, budget.RoomID, userID); err != nil {
		return err
	}
	if budget.Category = strings.TrimSpace(budget.Category); budget.Category == "" {
		return fmt.Errorf("category is required: %w", ErrInvalidInput)
	}
	if budget.Limit <= 0 {
		return fmt.Errorf("limit must be positive: %w", ErrInvalidInput)
	}
	return s.store.CreateRoomBudget(ctx, budget)
}

// ListRoomBudgets returns the room's budgets joined with this month's
// spending per category. The caller must be a member.
func (s *RoomService) ListRoomBudgets(ctx context.Context, roomID, userID string) ([]models.RoomBudgetWithSpent, error) {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	budgets, err := s.store.ListRoomBudgets(ctx, roomID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListSharedExpensesByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	month := time.Now().Format("2006-01")
	spent := make(map[string]float64)
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, month) {
			spent[e.Category] += e.Amount
		}
	}

	out := make([]models.RoomBudgetWithSpent, len(budgets))
	for i, b := range budgets {
		out[i] = models.RoomBudgetWithSpent{
			RoomBudget:   *b,
			CurrentSpent: spent[b.Category],
		}
	}
	return out, nil
}

// DeleteRoomBudget removes a room budget. The caller must be a member.
func (s *RoomService) DeleteRoomBudget(ctx context.Context, roomID, userID, budgetID string) error {
	if _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return err
	}
	return s.store.DeleteRoomBudget(ctx, roomID, budgetID)
}

// RoomBalances is the balance view for one member of a room.
type RoomBalances struct {
	// OwedPerUser is each member's gross total across all shared expenses.
	OwedPerUser []MemberTotal `json:"owedPerUser"`

	// OwedToEach is what the viewing member still owes each other member
	// after settlements.
	OwedToEach []OwedItem `json:"owedToEach"`
}

// MemberTotal is one member's aggregate total.
type MemberTotal struct {
	MemberID    string  `json:"memberId"`
	Amount      float64 `json:"amount"`
	DisplayName string  `json:"displayName"`
}

// OwedItem is an outstanding debt from the viewing member to one other
// member.
type OwedItem struct {
	ToUserID    string  `json:"toUserId"`
	Amount      float64 `json:"amount"`
	DisplayName string  `json:"displayName"`
}

// Balances computes the room's balance view from the perspective of the
// given member. Results are memoized per room and member until the next
// room mutation.
func (s *RoomService) Balances(ctx context.Context, roomID, userID string) (*RoomBalances, error) {
	members, err := s.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	key := balancesKey(roomID, userID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var balances RoomBalances
		if err := json.Unmarshal([]byte(cached), &balances); err == nil {
			return &balances, nil
		}
	}

	expenses, err := s.store.ListSharedExpensesByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	splits, err := s.store.ListExpenseSplitsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(members))
	displayNames := make(map[string]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		if m.DisplayName != "" {
			displayNames[m.UserID] = m.DisplayName
		}
	}

	ledgerExpenses := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		ledgerExpenses[i] = ledger.Expense{
			ID:        e.ID,
			Amount:    e.Amount,
			PaidBy:    e.PaidBy,
			SplitType: ledger.SplitType(e.SplitType),
		}
	}
	ledgerSplits := make([]ledger.Split, len(splits))
	for i, sp := range splits {
		ledgerSplits[i] = ledger.Split{
			ExpenseID: sp.SharedExpenseID,
			MemberID:  sp.UserID,
			Amount:    sp.Amount,
		}
	}
	ledgerSettlements := make([]ledger.Settlement, len(settlements))
	for i, st := range settlements {
		ledgerSettlements[i] = ledger.Settlement{
			FromID: st.FromUserID,
			ToID:   st.ToUserID,
			Amount: st.Amount,
		}
	}

	totals := ledger.OwedPerUser(ledgerExpenses, memberIDs, ledgerSplits, displayNames, userID)
	debts := ledger.OwedToEach(ledgerExpenses, memberIDs, ledgerSplits, ledgerSettlements, displayNames, userID)

	balances := &RoomBalances{
		OwedPerUser: make([]MemberTotal, len(totals)),
		OwedToEach:  make([]OwedItem, len(debts)),
	}
	for i, t := range totals {
		balances.OwedPerUser[i] = MemberTotal{MemberID: t.MemberID, Amount: t.Amount, DisplayName: t.DisplayName}
	}
	for i, d := range debts {
		balances.OwedToEach[i] = OwedItem{ToUserID: d.ToMemberID, Amount: d.Amount, DisplayName: d.DisplayName}
	}

	if encoded, err := json.Marshal(balances); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), balancesTTL); err != nil {
			slog.Warn("Failed to cache balances", "room_id", roomID, "error", err)
		}
	}

	return balances, nil
}

func balancesKey(roomID, userID string) string {
	return "balances:" + roomID + ":" + userID
}

// invalidateBalances drops the memoized balance view for every member of
// the room. Cache failures are logged, not returned; the TTL bounds
// staleness.
func (s *RoomService) invalidateBalances(ctx context.Context, roomID string) {
	members, err := s.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		slog.Warn("Failed to list members for cache invalidation", "room_id", roomID, "error", err)
		return
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = balancesKey(roomID, m.UserID)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		slog.Warn("Failed to invalidate balance cache", "room_id", roomID, "error", err)
	}
}

// requireMember returns the room's members, or ErrNotMember when the user
// is not among them.
func (s *RoomService) requireMember(ctx context.Context, roomID, userID string) ([]*models.RoomMember, error) {
	members, err := s.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !containsMember(members, userID) {
		return nil, ErrNotMember
	}
	return members, nil
}

func (s *RoomService) requireOwner(ctx context.Context, roomID, userID string) error {
	members, err := s.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == userID && m.Role == models.RoleOwner {
			return nil
		}
	}
	return ErrNotMember
}

func containsMember(members []*models.RoomMember, userID string) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
