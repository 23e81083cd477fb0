package models

// Settlement represents a payment between room members to clear debts.
// It reduces a previously computed debt; the underlying shared expenses
// stay in the room's history.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// RoomID is the room this settlement belongs to.
	RoomID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount float64

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
