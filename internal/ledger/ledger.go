// Package ledger computes debt summaries for a room from immutable
// snapshots of its shared expenses, members, custom splits, and recorded
// settlements.
//
// The functions here are pure: no I/O, no errors, deterministic output for
// identical inputs. Callers re-fetch the snapshots after every mutation and
// recompute from scratch. Malformed input degrades silently to a zero share
// (missing custom rows, split rows referencing non-members, zero-member
// equal splits); validation belongs to the write path, not here.
//
// Arithmetic runs on decimal values so equal shares and settlement floors
// come out exact, converting to float64 only at the boundary.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SplitType mirrors the room split policies. The ledger keeps its own
// constants so the package stays decoupled from the models; values are
// identical to models.SplitType.
type SplitType string

const (
	SplitFull   SplitType = "full"
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// Expense is the slice of a shared expense the ledger needs.
type Expense struct {
	ID        string
	Amount    float64
	PaidBy    string
	SplitType SplitType
}

// Split is one member's custom share of an expense.
type Split struct {
	ExpenseID string
	MemberID  string
	Amount    float64
}

// Settlement is a recorded payment reducing debt from FromID to ToID.
type Settlement struct {
	FromID string
	ToID   string
	Amount float64
}

// MemberTotal is one member's aggregate gross total across all expenses.
type MemberTotal struct {
	MemberID    string
	Amount      float64
	DisplayName string
}

// Debt is what the viewpoint member owes one specific other member.
type Debt struct {
	ToMemberID  string
	Amount      float64
	DisplayName string
}

// OwedPerUser computes each member's aggregate contribution/consumption
// total under the split policies:
//
//   - full: the whole amount goes to the payer
//   - equal: amount / member count to every member, payer included
//   - custom: each recorded share to its member
//
// The result has one entry per member, ordered by member ID. Expenses whose
// payer or split rows reference someone outside members contribute nothing
// for that reference.
func OwedPerUser(expenses []Expense, members []string, splits []Split, displayNames map[string]string, currentUserID string) []MemberTotal {
	totals := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		totals[m] = decimal.Zero
	}

	byExpense := groupSplits(splits)

	for _, exp := range expenses {
		amount := decimal.NewFromFloat(exp.Amount)
		switch exp.SplitType {
		case SplitFull:
			addIfMember(totals, exp.PaidBy, amount)
		case SplitEqual:
			if len(members) == 0 {
				continue
			}
			share := amount.Div(decimal.NewFromInt(int64(len(members))))
			for _, m := range members {
				totals[m] = totals[m].Add(share)
			}
		case SplitCustom:
			for _, sp := range byExpense[exp.ID] {
				addIfMember(totals, sp.MemberID, decimal.NewFromFloat(sp.Amount))
			}
		}
	}

	result := make([]MemberTotal, 0, len(members))
	for _, m := range members {
		total, _ := totals[m].Float64()
		result = append(result, MemberTotal{
			MemberID:    m,
			Amount:      total,
			DisplayName: resolveName(displayNames, m, currentUserID),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result
}

// OwedToEach computes, from the viewpoint of currentUserID, how much they
// owe each member who paid for something on their behalf, net of recorded
// settlements. Expenses paid by the viewpoint member are skipped entirely;
// a member never owes themselves. Settlements from the viewpoint member
// subtract from the debt to their payee, floored at zero. Entries that end
// at zero are dropped, and the result is ordered by member ID.
func OwedToEach(expenses []Expense, members []string, splits []Split, settlements []Settlement, displayNames map[string]string, currentUserID string) []Debt {
	owed := make(map[string]decimal.Decimal)
	byExpense := groupSplits(splits)

	for _, exp := range expenses {
		if exp.PaidBy == currentUserID {
			continue
		}

		var share decimal.Decimal
		switch exp.SplitType {
		case SplitFull:
			// Payer absorbs the full amount.
		case SplitEqual:
			if len(members) == 0 {
				continue
			}
			share = decimal.NewFromFloat(exp.Amount).Div(decimal.NewFromInt(int64(len(members))))
		case SplitCustom:
			for _, sp := range byExpense[exp.ID] {
				if sp.MemberID == currentUserID {
					share = share.Add(decimal.NewFromFloat(sp.Amount))
				}
			}
		}

		if share.IsPositive() {
			owed[exp.PaidBy] = owed[exp.PaidBy].Add(share)
		}
	}

	for _, s := range settlements {
		if s.FromID != currentUserID || s.ToID == currentUserID {
			continue
		}
		remaining, ok := owed[s.ToID]
		if !ok {
			continue
		}
		remaining = remaining.Sub(decimal.NewFromFloat(s.Amount))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		owed[s.ToID] = remaining
	}

	result := make([]Debt, 0, len(owed))
	for memberID, amount := range owed {
		if !amount.IsPositive() {
			continue
		}
		f, _ := amount.Float64()
		result = append(result, Debt{
			ToMemberID:  memberID,
			Amount:      f,
			DisplayName: resolveName(displayNames, memberID, currentUserID),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ToMemberID < result[j].ToMemberID })
	return result
}

func groupSplits(splits []Split) map[string][]Split {
	if len(splits) == 0 {
		return nil
	}
	byExpense := make(map[string][]Split)
	for _, sp := range splits {
		byExpense[sp.ExpenseID] = append(byExpense[sp.ExpenseID], sp)
	}
	return byExpense
}

func addIfMember(totals map[string]decimal.Decimal, memberID string, amount decimal.Decimal) {
	if current, ok := totals[memberID]; ok {
		totals[memberID] = current.Add(amount)
	}
}

func resolveName(displayNames map[string]string, memberID, currentUserID string) string {
	if memberID == currentUserID {
		return "You"
	}
	if name := displayNames[memberID]; name != "" {
		return name
	}
	return "Unknown member"
}
