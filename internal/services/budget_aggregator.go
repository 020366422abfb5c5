package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"famledger/internal/core"
)

// BudgetAggregator computes total and per-category spend for a budget's
// period from the ledger store.
type BudgetAggregator struct {
	budgets BudgetStore
	ledger  LedgerStore
}

func NewBudgetAggregator(budgets BudgetStore, ledger LedgerStore) *BudgetAggregator {
	return &BudgetAggregator{budgets: budgets, ledger: ledger}
}

// SpendStatus loads the budget, fetches all non-deleted expense entries in
// its period and returns the derived snapshot. There are no partial results:
// a failing ledger query fails the whole aggregation.
func (a *BudgetAggregator) SpendStatus(ctx context.Context, budgetID, familyID string) (core.BudgetSpendSnapshot, error) {
	budget, err := a.budgets.FindBudget(ctx, budgetID, familyID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.BudgetSpendSnapshot{}, err
		}
		return core.BudgetSpendSnapshot{}, fmt.Errorf("%w: load budget: %v", core.ErrPersistence, err)
	}

	from, to := budget.Period.Bounds()
	entries, err := a.ledger.FindExpensesInRange(ctx, familyID, from, to)
	if err != nil {
		return core.BudgetSpendSnapshot{}, fmt.Errorf("%w: query ledger: %v", core.ErrPersistence, err)
	}

	snapshot := BuildSnapshot(budget, entries)

	slog.DebugContext(ctx, "Computed budget spend snapshot",
		"budget_id", budget.ID,
		"family_id", familyID,
		"entries", len(entries),
		"spent_minor", snapshot.Overall.SpentMinor)

	return snapshot, nil
}

// BuildSnapshot derives the spend snapshot from a budget and the expense
// entries of its period. Entries are summed regardless of recurring origin;
// the budget's includeRecurring flag is configuration only. Categories listed
// on the budget but absent from the entries report zero spend.
func BuildSnapshot(budget core.Budget, entries []core.LedgerEntry) core.BudgetSpendSnapshot {
	var total int64
	byCategory := make(map[string]int64)
	for _, e := range entries {
		if e.Type != core.Expense || e.DeletedAt != nil {
			continue
		}
		total += e.Amount.Minor
		byCategory[e.CategoryID] += e.Amount.Minor
	}

	snapshot := core.BudgetSpendSnapshot{
		BudgetID: budget.ID,
		Period:   budget.Period,
		Overall: core.SpendFigure{
			LimitMinor: budget.OverallLimitMinor,
			SpentMinor: total,
		},
	}
	for _, cb := range budget.PerCategory {
		snapshot.ByCategory = append(snapshot.ByCategory, core.CategorySpend{
			CategoryID: cb.CategoryID,
			LimitMinor: cb.LimitMinor,
			SpentMinor: byCategory[cb.CategoryID],
		})
	}
	return snapshot
}
