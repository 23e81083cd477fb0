package ledger

import (
	"math"
	"testing"
)

const tolerance = 1e-9

var names = map[string]string{
	"alice": "Alice",
	"bob":   "Bob",
	"carol": "Carol",
}

func findTotal(t *testing.T, totals []MemberTotal, memberID string) MemberTotal {
	t.Helper()
	for _, mt := range totals {
		if mt.MemberID == memberID {
			return mt
		}
	}
	t.Fatalf("no total for member %s", memberID)
	return MemberTotal{}
}

func findDebt(debts []Debt, memberID string) (Debt, bool) {
	for _, d := range debts {
		if d.ToMemberID == memberID {
			return d, true
		}
	}
	return Debt{}, false
}

func TestOwedPerUser(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	tests := []struct {
		name     string
		expenses []Expense
		members  []string
		splits   []Split
		validate func(t *testing.T, totals []MemberTotal)
	}{
		{
			name: "equal split conserves the amount",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members: members,
			validate: func(t *testing.T, totals []MemberTotal) {
				sum := 0.0
				for _, mt := range totals {
					if math.Abs(mt.Amount-30) > tolerance {
						t.Errorf("%s share = %v, want 30", mt.MemberID, mt.Amount)
					}
					sum += mt.Amount
				}
				if math.Abs(sum-90) > tolerance {
					t.Errorf("sum of shares = %v, want 90", sum)
				}
			},
		},
		{
			name: "full split attributes everything to the payer",
			expenses: []Expense{
				{ID: "e1", Amount: 45, PaidBy: "bob", SplitType: SplitFull},
			},
			members: members,
			validate: func(t *testing.T, totals []MemberTotal) {
				if got := findTotal(t, totals, "bob").Amount; math.Abs(got-45) > tolerance {
					t.Errorf("bob total = %v, want 45", got)
				}
				for _, id := range []string{"alice", "carol"} {
					if got := findTotal(t, totals, id).Amount; got != 0 {
						t.Errorf("%s total = %v, want 0", id, got)
					}
				}
			},
		},
		{
			name: "custom split follows the recorded shares",
			expenses: []Expense{
				{ID: "e1", Amount: 100, PaidBy: "alice", SplitType: SplitCustom},
			},
			members: members,
			splits: []Split{
				{ExpenseID: "e1", MemberID: "alice", Amount: 70},
				{ExpenseID: "e1", MemberID: "bob", Amount: 30},
			},
			validate: func(t *testing.T, totals []MemberTotal) {
				if got := findTotal(t, totals, "alice").Amount; math.Abs(got-70) > tolerance {
					t.Errorf("alice total = %v, want 70", got)
				}
				if got := findTotal(t, totals, "bob").Amount; math.Abs(got-30) > tolerance {
					t.Errorf("bob total = %v, want 30", got)
				}
				if got := findTotal(t, totals, "carol").Amount; got != 0 {
					t.Errorf("carol total = %v, want 0", got)
				}
			},
		},
		{
			name: "custom split with no recorded rows degrades to zero",
			expenses: []Expense{
				{ID: "e1", Amount: 100, PaidBy: "alice", SplitType: SplitCustom},
			},
			members: members,
			validate: func(t *testing.T, totals []MemberTotal) {
				for _, mt := range totals {
					if mt.Amount != 0 {
						t.Errorf("%s total = %v, want 0", mt.MemberID, mt.Amount)
					}
				}
			},
		},
		{
			name: "no expenses yields zero totals per member",
			members: members,
			validate: func(t *testing.T, totals []MemberTotal) {
				if len(totals) != 3 {
					t.Fatalf("got %d totals, want 3", len(totals))
				}
				for _, mt := range totals {
					if mt.Amount != 0 {
						t.Errorf("%s total = %v, want 0", mt.MemberID, mt.Amount)
					}
				}
			},
		},
		{
			name: "no members yields empty result and skips equal splits",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members: nil,
			validate: func(t *testing.T, totals []MemberTotal) {
				if len(totals) != 0 {
					t.Errorf("got %d totals, want 0", len(totals))
				}
			},
		},
		{
			name: "split row referencing a non-member is ignored",
			expenses: []Expense{
				{ID: "e1", Amount: 50, PaidBy: "alice", SplitType: SplitCustom},
			},
			members: members,
			splits: []Split{
				{ExpenseID: "e1", MemberID: "mallory", Amount: 50},
			},
			validate: func(t *testing.T, totals []MemberTotal) {
				for _, mt := range totals {
					if mt.Amount != 0 {
						t.Errorf("%s total = %v, want 0", mt.MemberID, mt.Amount)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := OwedPerUser(tt.expenses, tt.members, tt.splits, names, "alice")
			tt.validate(t, totals)
		})
	}
}

func TestOwedPerUserDisplayNames(t *testing.T) {
	totals := OwedPerUser(nil, []string{"alice", "bob", "dave"}, nil, names, "bob")

	if got := findTotal(t, totals, "bob").DisplayName; got != "You" {
		t.Errorf("viewpoint member display name = %q, want \"You\"", got)
	}
	if got := findTotal(t, totals, "alice").DisplayName; got != "Alice" {
		t.Errorf("alice display name = %q, want \"Alice\"", got)
	}
	if got := findTotal(t, totals, "dave").DisplayName; got != "Unknown member" {
		t.Errorf("unmapped display name = %q, want fallback", got)
	}
}

func TestOwedToEach(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	tests := []struct {
		name        string
		expenses    []Expense
		members     []string
		splits      []Split
		settlements []Settlement
		viewpoint   string
		validate    func(t *testing.T, debts []Debt)
	}{
		{
			name: "equal split: bob owes alice a third",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members:   members,
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				if len(debts) != 1 {
					t.Fatalf("got %d debts, want 1", len(debts))
				}
				if debts[0].ToMemberID != "alice" {
					t.Errorf("debt to %s, want alice", debts[0].ToMemberID)
				}
				if math.Abs(debts[0].Amount-30) > tolerance {
					t.Errorf("debt = %v, want 30", debts[0].Amount)
				}
			},
		},
		{
			name: "no self-debt: payer's viewpoint is empty",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members:   members,
			viewpoint: "alice",
			validate: func(t *testing.T, debts []Debt) {
				if len(debts) != 0 {
					t.Errorf("got %d debts for the payer, want 0", len(debts))
				}
			},
		},
		{
			name: "full split creates no debt for anyone else",
			expenses: []Expense{
				{ID: "e1", Amount: 200, PaidBy: "alice", SplitType: SplitFull},
			},
			members:   members,
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				if len(debts) != 0 {
					t.Errorf("got %d debts under full split, want 0", len(debts))
				}
			},
		},
		{
			name: "custom split passes the recorded share through",
			expenses: []Expense{
				{ID: "e1", Amount: 100, PaidBy: "carol", SplitType: SplitCustom},
			},
			members: members,
			splits: []Split{
				{ExpenseID: "e1", MemberID: "alice", Amount: 60},
				{ExpenseID: "e1", MemberID: "bob", Amount: 40},
			},
			viewpoint: "alice",
			validate: func(t *testing.T, debts []Debt) {
				d, ok := findDebt(debts, "carol")
				if !ok {
					t.Fatal("expected a debt to carol")
				}
				if math.Abs(d.Amount-60) > tolerance {
					t.Errorf("debt = %v, want 60", d.Amount)
				}
			},
		},
		{
			name: "custom split with no row for the viewpoint member owes nothing",
			expenses: []Expense{
				{ID: "e1", Amount: 100, PaidBy: "carol", SplitType: SplitCustom},
			},
			members: members,
			splits: []Split{
				{ExpenseID: "e1", MemberID: "bob", Amount: 100},
			},
			viewpoint: "alice",
			validate: func(t *testing.T, debts []Debt) {
				if len(debts) != 0 {
					t.Errorf("got %d debts, want 0", len(debts))
				}
			},
		},
		{
			name: "settlement reduces the debt",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members: members,
			settlements: []Settlement{
				{FromID: "bob", ToID: "alice", Amount: 10},
			},
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				d, ok := findDebt(debts, "alice")
				if !ok {
					t.Fatal("expected a remaining debt to alice")
				}
				if math.Abs(d.Amount-20) > tolerance {
					t.Errorf("debt = %v, want 20", d.Amount)
				}
			},
		},
		{
			name: "settlement at or above the debt drops the entry",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members: members,
			settlements: []Settlement{
				{FromID: "bob", ToID: "alice", Amount: 45},
			},
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				if _, ok := findDebt(debts, "alice"); ok {
					t.Error("overpaid debt should be absent, not negative")
				}
			},
		},
		{
			name: "settlements from other members do not affect the viewpoint",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members: members,
			settlements: []Settlement{
				{FromID: "carol", ToID: "alice", Amount: 30},
			},
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				d, ok := findDebt(debts, "alice")
				if !ok {
					t.Fatal("expected a debt to alice")
				}
				if math.Abs(d.Amount-30) > tolerance {
					t.Errorf("debt = %v, want 30", d.Amount)
				}
			},
		},
		{
			name: "debts accumulate per payer across expenses",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
				{ID: "e2", Amount: 30, PaidBy: "alice", SplitType: SplitEqual},
				{ID: "e3", Amount: 60, PaidBy: "carol", SplitType: SplitEqual},
			},
			members:   members,
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				a, _ := findDebt(debts, "alice")
				if math.Abs(a.Amount-40) > tolerance {
					t.Errorf("debt to alice = %v, want 40", a.Amount)
				}
				c, _ := findDebt(debts, "carol")
				if math.Abs(c.Amount-20) > tolerance {
					t.Errorf("debt to carol = %v, want 20", c.Amount)
				}
			},
		},
		{
			name: "zero members skips equal splits without dividing",
			expenses: []Expense{
				{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
			},
			members:   nil,
			viewpoint: "bob",
			validate: func(t *testing.T, debts []Debt) {
				if len(debts) != 0 {
					t.Errorf("got %d debts, want 0", len(debts))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debts := OwedToEach(tt.expenses, tt.members, tt.splits, tt.settlements, names, tt.viewpoint)
			tt.validate(t, debts)
		})
	}
}

// TestSettleUpScenario walks the documented room example: three members,
// one 90 expense split equally, then a 30 settlement clears Bob's debt.
func TestSettleUpScenario(t *testing.T) {
	members := []string{"alice", "bob", "carol"}
	expenses := []Expense{
		{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
	}

	bobOwes := OwedToEach(expenses, members, nil, nil, names, "bob")
	if len(bobOwes) != 1 || bobOwes[0].ToMemberID != "alice" || math.Abs(bobOwes[0].Amount-30) > tolerance {
		t.Fatalf("bob's debts before settling = %+v, want 30 to alice", bobOwes)
	}

	aliceOwes := OwedToEach(expenses, members, nil, nil, names, "alice")
	if len(aliceOwes) != 0 {
		t.Fatalf("alice's debts = %+v, want none", aliceOwes)
	}

	settlements := []Settlement{{FromID: "bob", ToID: "alice", Amount: 30}}
	afterSettle := OwedToEach(expenses, members, nil, settlements, names, "bob")
	if len(afterSettle) != 0 {
		t.Fatalf("bob's debts after settling = %+v, want none", afterSettle)
	}
}

// TestDeterminism checks that input ordering does not change the output.
func TestDeterminism(t *testing.T) {
	members := []string{"carol", "alice", "bob"}
	expenses := []Expense{
		{ID: "e1", Amount: 90, PaidBy: "alice", SplitType: SplitEqual},
		{ID: "e2", Amount: 50, PaidBy: "carol", SplitType: SplitCustom},
	}
	splits := []Split{
		{ExpenseID: "e2", MemberID: "bob", Amount: 35},
		{ExpenseID: "e2", MemberID: "alice", Amount: 15},
	}
	settlements := []Settlement{
		{FromID: "bob", ToID: "alice", Amount: 5},
	}

	reversed := func(n int) []int {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = n - 1 - i
		}
		return idx
	}

	revExpenses := make([]Expense, len(expenses))
	for i, j := range reversed(len(expenses)) {
		revExpenses[i] = expenses[j]
	}
	revSplits := make([]Split, len(splits))
	for i, j := range reversed(len(splits)) {
		revSplits[i] = splits[j]
	}
	revMembers := []string{"bob", "carol", "alice"}

	first := OwedToEach(expenses, members, splits, settlements, names, "bob")
	second := OwedToEach(revExpenses, revMembers, revSplits, settlements, names, "bob")

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ToMemberID != second[i].ToMemberID || math.Abs(first[i].Amount-second[i].Amount) > tolerance {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}

	firstTotals := OwedPerUser(expenses, members, splits, names, "bob")
	secondTotals := OwedPerUser(revExpenses, revMembers, revSplits, names, "bob")
	if len(firstTotals) != len(secondTotals) {
		t.Fatalf("total lengths differ: %d vs %d", len(firstTotals), len(secondTotals))
	}
	for i := range firstTotals {
		if firstTotals[i].MemberID != secondTotals[i].MemberID || math.Abs(firstTotals[i].Amount-secondTotals[i].Amount) > tolerance {
			t.Errorf("total %d differs: %+v vs %+v", i, firstTotals[i], secondTotals[i])
		}
	}
}
