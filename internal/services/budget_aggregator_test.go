package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"famledger/internal/core"
)

type fakeBudgetStore struct {
	budgets map[string]core.Budget
	findErr error
}

func (f *fakeBudgetStore) FindBudgetsByFamily(ctx context.Context, familyID string) ([]core.Budget, error) {
	return nil, nil
}

func (f *fakeBudgetStore) FindBudget(ctx context.Context, id, familyID string) (core.Budget, error) {
	if f.findErr != nil {
		return core.Budget{}, f.findErr
	}
	b, ok := f.budgets[id]
	if !ok || b.FamilyID != familyID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (f *fakeBudgetStore) SaveBudget(ctx context.Context, budget *core.Budget) error { return nil }

func (f *fakeBudgetStore) UpdateBudget(ctx context.Context, budget core.Budget) error { return nil }

func (f *fakeBudgetStore) DeleteBudget(ctx context.Context, id, familyID string) error { return nil }

func septemberBudget() core.Budget {
	return core.Budget{
		ID:       "budget-1",
		FamilyID: "fam-1",
		Name:     "September",
		Period: core.Period{
			Type:  core.PeriodMonth,
			Start: core.NewDate(2026, 9, 1),
			End:   core.NewDate(2026, 9, 30),
		},
		OverallLimitMinor: 18000,
		AlertThresholdPct: 80,
		PerCategory: []core.CategoryBudget{
			{CategoryID: "cat-food", LimitMinor: 10000},
			{CategoryID: "cat-transport", LimitMinor: 5000},
		},
	}
}

func expenseAt(familyID, categoryID string, minor int64, day int) core.LedgerEntry {
	return core.LedgerEntry{
		FamilyID:   familyID,
		Type:       core.Expense,
		Amount:     core.MoneyAmount{Minor: minor, Currency: "EUR"},
		CategoryID: categoryID,
		OccurredAt: time.Date(2026, 9, day, 10, 0, 0, 0, time.UTC),
	}
}

func TestBudgetAggregator_SpendStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("sums all expenses in the budget period", func(t *testing.T) {
		budgets := &fakeBudgetStore{budgets: map[string]core.Budget{"budget-1": septemberBudget()}}
		ledger := &fakeLedgerStore{entries: []core.LedgerEntry{
			expenseAt("fam-1", "cat-food", 15000, 3),
			expenseAt("fam-1", "cat-transport", 5000, 12),
		}}

		snapshot, err := NewBudgetAggregator(budgets, ledger).SpendStatus(ctx, "budget-1", "fam-1")
		if err != nil {
			t.Fatalf("SpendStatus() unexpected error: %v", err)
		}
		if snapshot.Overall.SpentMinor != 20000 {
			t.Errorf("overall spent = %d, want 20000", snapshot.Overall.SpentMinor)
		}
		if snapshot.Overall.LimitMinor != 18000 {
			t.Errorf("overall limit = %d, want 18000", snapshot.Overall.LimitMinor)
		}
		if len(snapshot.ByCategory) != 2 {
			t.Fatalf("ByCategory has %d rows, want 2", len(snapshot.ByCategory))
		}
		if snapshot.ByCategory[0].SpentMinor != 15000 || snapshot.ByCategory[1].SpentMinor != 5000 {
			t.Errorf("category spend = %d/%d, want 15000/5000",
				snapshot.ByCategory[0].SpentMinor, snapshot.ByCategory[1].SpentMinor)
		}
	})

	t.Run("entries outside the period are ignored", func(t *testing.T) {
		budgets := &fakeBudgetStore{budgets: map[string]core.Budget{"budget-1": septemberBudget()}}
		outside := expenseAt("fam-1", "cat-food", 9999, 1)
		outside.OccurredAt = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		ledger := &fakeLedgerStore{entries: []core.LedgerEntry{
			expenseAt("fam-1", "cat-food", 1500, 3),
			outside,
		}}

		snapshot, err := NewBudgetAggregator(budgets, ledger).SpendStatus(ctx, "budget-1", "fam-1")
		if err != nil {
			t.Fatalf("SpendStatus() unexpected error: %v", err)
		}
		if snapshot.Overall.SpentMinor != 1500 {
			t.Errorf("overall spent = %d, want 1500", snapshot.Overall.SpentMinor)
		}
	})

	t.Run("unknown budget reports not found", func(t *testing.T) {
		budgets := &fakeBudgetStore{budgets: map[string]core.Budget{}}

		_, err := NewBudgetAggregator(budgets, &fakeLedgerStore{}).SpendStatus(ctx, "budget-1", "fam-1")
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("SpendStatus() error = %v, want %v", err, core.ErrNotFound)
		}
	})

	t.Run("ledger failure classifies as persistence", func(t *testing.T) {
		budgets := &fakeBudgetStore{budgets: map[string]core.Budget{"budget-1": septemberBudget()}}
		ledger := &fakeLedgerStore{findErr: errors.New("database locked")}

		_, err := NewBudgetAggregator(budgets, ledger).SpendStatus(ctx, "budget-1", "fam-1")
		if !errors.Is(err, core.ErrPersistence) {
			t.Errorf("SpendStatus() error = %v, want %v", err, core.ErrPersistence)
		}
	})
}

func TestBuildSnapshot(t *testing.T) {
	deleted := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("income and deleted entries do not count", func(t *testing.T) {
		income := expenseAt("fam-1", "cat-food", 50000, 5)
		income.Type = core.Income
		removed := expenseAt("fam-1", "cat-food", 2000, 6)
		removed.DeletedAt = &deleted

		snapshot := BuildSnapshot(septemberBudget(), []core.LedgerEntry{
			expenseAt("fam-1", "cat-food", 1200, 4),
			income,
			removed,
		})
		if snapshot.Overall.SpentMinor != 1200 {
			t.Errorf("overall spent = %d, want 1200", snapshot.Overall.SpentMinor)
		}
	})

	t.Run("budget categories without entries report zero spend", func(t *testing.T) {
		snapshot := BuildSnapshot(septemberBudget(), []core.LedgerEntry{
			expenseAt("fam-1", "cat-food", 800, 4),
		})
		if len(snapshot.ByCategory) != 2 {
			t.Fatalf("ByCategory has %d rows, want 2", len(snapshot.ByCategory))
		}
		if snapshot.ByCategory[1].CategoryID != "cat-transport" || snapshot.ByCategory[1].SpentMinor != 0 {
			t.Errorf("ByCategory[1] = %+v, want cat-transport with zero spend", snapshot.ByCategory[1])
		}
	})

	t.Run("spend in uncapped categories still counts overall", func(t *testing.T) {
		snapshot := BuildSnapshot(septemberBudget(), []core.LedgerEntry{
			expenseAt("fam-1", "cat-gifts", 3000, 10),
		})
		if snapshot.Overall.SpentMinor != 3000 {
			t.Errorf("overall spent = %d, want 3000", snapshot.Overall.SpentMinor)
		}
		for _, cs := range snapshot.ByCategory {
			if cs.SpentMinor != 0 {
				t.Errorf("category %s spent = %d, want 0", cs.CategoryID, cs.SpentMinor)
			}
		}
	})
}
