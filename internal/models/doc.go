// Package models defines the core domain models for roomledger.
//
// # Model Groups
//
//   - User: registered account (email + password auth)
//   - Expense, Income: personal transactions owned by one user
//   - Budget: per-category monthly spending limit with optional alerts
//   - Room, RoomMember: shared context in which members jointly track expenses
//   - SharedExpense, ExpenseSplit: one shared cost event and its custom shares
//   - Settlement: recorded payment between two members reducing a prior debt
//   - RoomBudget: per-category limit scoped to a room instead of a user
//
// # Design Principles
//
// 1. **Plain values**: models carry no behavior beyond small constructors;
// computation lives in the ledger, analytics, and alerts packages.
// 2. **Avoid circular references**: relationships use ID strings, never
// pointers to other models.
// 3. **Positive magnitudes**: amounts are stored as positive numbers; whether
// a row spends or earns is carried by its table, not its sign.
// 4. **Date-only dates**: transaction dates are YYYY-MM-DD strings, matching
// how they are bucketed; creation times are Unix timestamps.
package models
