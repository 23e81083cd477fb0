package models

// SplitType is the rule for attributing a shared expense's cost to members.
type SplitType string

const (
	// SplitFull: the payer absorbs the amount fully and is not reimbursed.
	SplitFull SplitType = "full"
	// SplitEqual: the amount is divided evenly among all room members.
	SplitEqual SplitType = "equal"
	// SplitCustom: explicit per-member share rows carry the attribution.
	SplitCustom SplitType = "custom"
)

// ValidSplitType reports whether t is one of the known split policies.
func ValidSplitType(t SplitType) bool {
	switch t {
	case SplitFull, SplitEqual, SplitCustom:
		return true
	}
	return false
}

// RoomRole is a member's role within a room.
type RoomRole string

const (
	RoleOwner  RoomRole = "owner"
	RoleMember RoomRole = "member"
)

// Room is a shared context in which multiple members jointly track expenses.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Name is the display name of the room (e.g. "Flat 4B", "Ski Trip").
	Name string

	// CreatedBy is the user ID of the room's creator.
	CreatedBy string

	// InviteCode is the shareable code other users join with.
	InviteCode string

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64
}

// RoomMember is one participant in a room.
type RoomMember struct {
	RoomID string
	UserID string
	Role   RoomRole

	// JoinedAt is the Unix timestamp when the member joined.
	JoinedAt int64

	// DisplayName is resolved from the users table when listing members;
	// empty when the row is read without the join.
	DisplayName string
}

// SharedExpense is one shared cost event in a room.
type SharedExpense struct {
	ID     string
	RoomID string

	// Amount is the positive magnitude of the cost.
	Amount float64

	Category    string
	Description string

	// Date is the day the expense occurred, YYYY-MM-DD.
	Date string

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// SplitType is the attribution policy for this expense.
	SplitType SplitType

	CreatedAt int64
}

// ExpenseSplit is one member's custom share of a SharedExpense.
// Rows exist only for expenses with SplitCustom; shares for one expense
// sum to that expense's amount.
type ExpenseSplit struct {
	SharedExpenseID string
	UserID          string
	Amount          float64
}
