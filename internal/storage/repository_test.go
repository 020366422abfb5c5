package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"famledger/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "famledger-test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func storedRule(familyID string) core.RecurringRule {
	return core.RecurringRule{
		FamilyID:    familyID,
		Name:        "Rent",
		Type:        core.Expense,
		AmountMinor: 90000,
		Currency:    "EUR",
		CategoryID:  "cat-housing",
		MemberID:    "member-1",
		Frequency:   core.Frequency{Unit: core.Monthly, Interval: 1, ByMonthDay: []int{1, 15}},
		StartDate:   core.NewDate(2026, 1, 1),
		EndDate:     core.NewDate(2026, 12, 31),
		Timezone:    "Europe/Rome",
		NextRunAt:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteRepository_Rules(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t.Run("save and find round-trips every field", func(t *testing.T) {
		rule := storedRule("fam-1")
		if err := repo.SaveRule(ctx, &rule); err != nil {
			t.Fatalf("SaveRule() error: %v", err)
		}
		if rule.ID == "" {
			t.Fatal("SaveRule() did not assign an ID")
		}

		got, err := repo.FindRule(ctx, rule.ID, "fam-1")
		if err != nil {
			t.Fatalf("FindRule() error: %v", err)
		}
		if got.Name != rule.Name || got.AmountMinor != rule.AmountMinor || got.Currency != rule.Currency {
			t.Errorf("FindRule() = %+v, want fields of %+v", got, rule)
		}
		if got.Frequency.Unit != core.Monthly || len(got.Frequency.ByMonthDay) != 2 || got.Frequency.ByMonthDay[1] != 15 {
			t.Errorf("frequency = %+v, want monthly on days [1 15]", got.Frequency)
		}
		if got.StartDate.Year() != 2026 || got.EndDate.Month() != 12 {
			t.Errorf("dates = %v..%v, want 2026-01-01..2026-12-31", got.StartDate, got.EndDate)
		}
		if got.Timezone != "Europe/Rome" {
			t.Errorf("timezone = %q, want Europe/Rome", got.Timezone)
		}
		if !got.NextRunAt.Equal(rule.NextRunAt) {
			t.Errorf("nextRunAt = %v, want %v", got.NextRunAt, rule.NextRunAt)
		}
	})

	t.Run("rules are scoped to their family", func(t *testing.T) {
		rule := storedRule("fam-2")
		if err := repo.SaveRule(ctx, &rule); err != nil {
			t.Fatalf("SaveRule() error: %v", err)
		}
		if _, err := repo.FindRule(ctx, rule.ID, "fam-other"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("FindRule() error = %v, want %v", err, core.ErrNotFound)
		}
	})

	t.Run("due query skips paused, unscheduled and future rules", func(t *testing.T) {
		now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

		due := storedRule("fam-due")
		paused := storedRule("fam-due")
		paused.Paused = true
		unscheduled := storedRule("fam-due")
		unscheduled.NextRunAt = time.Time{}
		future := storedRule("fam-due")
		future.NextRunAt = now.AddDate(0, 1, 0)

		for _, r := range []*core.RecurringRule{&due, &paused, &unscheduled, &future} {
			if err := repo.SaveRule(ctx, r); err != nil {
				t.Fatalf("SaveRule() error: %v", err)
			}
		}

		got, err := repo.FindDueRules(ctx, now)
		if err != nil {
			t.Fatalf("FindDueRules() error: %v", err)
		}
		var dueIDs []string
		for _, r := range got {
			if r.FamilyID == "fam-due" {
				dueIDs = append(dueIDs, r.ID)
			}
		}
		if len(dueIDs) != 1 || dueIDs[0] != due.ID {
			t.Errorf("FindDueRules() returned %v, want only %s", dueIDs, due.ID)
		}
	})

	t.Run("schedule update touches only scheduling state", func(t *testing.T) {
		rule := storedRule("fam-3")
		if err := repo.SaveRule(ctx, &rule); err != nil {
			t.Fatalf("SaveRule() error: %v", err)
		}

		next := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		if err := repo.UpdateRuleSchedule(ctx, rule.ID, next, true); err != nil {
			t.Fatalf("UpdateRuleSchedule() error: %v", err)
		}

		got, err := repo.FindRule(ctx, rule.ID, "fam-3")
		if err != nil {
			t.Fatalf("FindRule() error: %v", err)
		}
		if !got.NextRunAt.Equal(next) || !got.Paused {
			t.Errorf("schedule = %v/%v, want %v/true", got.NextRunAt, got.Paused, next)
		}
		if got.Name != rule.Name || got.AmountMinor != rule.AmountMinor {
			t.Errorf("non-scheduling fields changed: %+v", got)
		}
	})

	t.Run("deleting an absent rule reports not found", func(t *testing.T) {
		if err := repo.DeleteRule(ctx, "no-such-rule", "fam-1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteRule() error = %v, want %v", err, core.ErrNotFound)
		}
	})
}

func storedEntry(familyID string, minor int64, occurredAt time.Time) core.LedgerEntry {
	return core.LedgerEntry{
		FamilyID:   familyID,
		Type:       core.Expense,
		Amount:     core.MoneyAmount{Minor: minor, Currency: "EUR"},
		CategoryID: "cat-food",
		OccurredAt: occurredAt,
		Notes:      "test entry",
	}
}

func TestSQLiteRepository_LedgerEntries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)

	t.Run("expense range query excludes income and out-of-range entries", func(t *testing.T) {
		inRange := storedEntry("fam-1", 1500, time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))
		income := storedEntry("fam-1", 250000, time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC))
		income.Type = core.Income
		dated := storedEntry("fam-1", 900, time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC))

		for _, e := range []*core.LedgerEntry{&inRange, &income, &dated} {
			if err := repo.SaveEntry(ctx, e); err != nil {
				t.Fatalf("SaveEntry() error: %v", err)
			}
		}

		got, err := repo.FindExpensesInRange(ctx, "fam-1", from, to)
		if err != nil {
			t.Fatalf("FindExpensesInRange() error: %v", err)
		}
		if len(got) != 1 || got[0].ID != inRange.ID {
			t.Errorf("FindExpensesInRange() = %v, want only %s", got, inRange.ID)
		}

		all, err := repo.ListEntries(ctx, "fam-1", from, to)
		if err != nil {
			t.Fatalf("ListEntries() error: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("ListEntries() returned %d entries, want 2 including income", len(all))
		}
	})

	t.Run("soft deleted entries disappear from queries", func(t *testing.T) {
		entry := storedEntry("fam-2", 3000, time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC))
		if err := repo.SaveEntry(ctx, &entry); err != nil {
			t.Fatalf("SaveEntry() error: %v", err)
		}

		if err := repo.SoftDeleteEntry(ctx, entry.ID, "fam-2"); err != nil {
			t.Fatalf("SoftDeleteEntry() error: %v", err)
		}

		got, err := repo.FindExpensesInRange(ctx, "fam-2", from, to)
		if err != nil {
			t.Fatalf("FindExpensesInRange() error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("FindExpensesInRange() returned %d entries after delete, want 0", len(got))
		}

		if err := repo.SoftDeleteEntry(ctx, entry.ID, "fam-2"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("second SoftDeleteEntry() error = %v, want %v", err, core.ErrNotFound)
		}
	})
}

func TestSQLiteRepository_Budgets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	budget := core.Budget{
		FamilyID: "fam-1",
		Name:     "September",
		Period: core.Period{
			Type:  core.PeriodMonth,
			Start: core.NewDate(2026, 9, 1),
			End:   core.NewDate(2026, 9, 30),
		},
		OverallLimitMinor: 18000,
		IncludeRecurring:  true,
		AlertThresholdPct: 80,
		PerCategory: []core.CategoryBudget{
			{CategoryID: "cat-food", LimitMinor: 10000},
			{CategoryID: "cat-transport", LimitMinor: 5000},
		},
	}

	t.Run("save and find round-trips categories", func(t *testing.T) {
		if err := repo.SaveBudget(ctx, &budget); err != nil {
			t.Fatalf("SaveBudget() error: %v", err)
		}

		got, err := repo.FindBudget(ctx, budget.ID, "fam-1")
		if err != nil {
			t.Fatalf("FindBudget() error: %v", err)
		}
		if got.Name != "September" || got.OverallLimitMinor != 18000 || !got.IncludeRecurring {
			t.Errorf("FindBudget() = %+v", got)
		}
		if len(got.PerCategory) != 2 || got.PerCategory[0].CategoryID != "cat-food" {
			t.Errorf("PerCategory = %v, want cat-food and cat-transport", got.PerCategory)
		}
	})

	t.Run("update replaces the category set", func(t *testing.T) {
		updated := budget
		updated.Name = "September revised"
		updated.PerCategory = []core.CategoryBudget{{CategoryID: "cat-gifts", LimitMinor: 2000}}

		if err := repo.UpdateBudget(ctx, updated); err != nil {
			t.Fatalf("UpdateBudget() error: %v", err)
		}

		got, err := repo.FindBudget(ctx, budget.ID, "fam-1")
		if err != nil {
			t.Fatalf("FindBudget() error: %v", err)
		}
		if got.Name != "September revised" {
			t.Errorf("name = %q, want %q", got.Name, "September revised")
		}
		if len(got.PerCategory) != 1 || got.PerCategory[0].CategoryID != "cat-gifts" {
			t.Errorf("PerCategory = %v, want only cat-gifts", got.PerCategory)
		}
	})

	t.Run("delete removes the budget and its categories", func(t *testing.T) {
		if err := repo.DeleteBudget(ctx, budget.ID, "fam-1"); err != nil {
			t.Fatalf("DeleteBudget() error: %v", err)
		}
		if _, err := repo.FindBudget(ctx, budget.ID, "fam-1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("FindBudget() error = %v, want %v", err, core.ErrNotFound)
		}
	})
}

func TestSQLiteRepository_Lease(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Minute

	t.Run("free lease is acquired", func(t *testing.T) {
		ok, err := repo.Acquire(ctx, "rule-scheduler", "worker-a", ttl, t0)
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if !ok {
			t.Error("Acquire() = false, want true for a free lease")
		}
	})

	t.Run("valid lease blocks other owners", func(t *testing.T) {
		ok, err := repo.Acquire(ctx, "rule-scheduler", "worker-b", ttl, t0.Add(30*time.Second))
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if ok {
			t.Error("Acquire() = true for another owner while the lease is valid")
		}
	})

	t.Run("holder can refresh its own lease", func(t *testing.T) {
		ok, err := repo.Acquire(ctx, "rule-scheduler", "worker-a", ttl, t0.Add(30*time.Second))
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if !ok {
			t.Error("Acquire() = false for the current holder")
		}
	})

	t.Run("expired lease can change hands", func(t *testing.T) {
		ok, err := repo.Acquire(ctx, "rule-scheduler", "worker-b", ttl, t0.Add(5*time.Minute))
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if !ok {
			t.Error("Acquire() = false after expiry, want true")
		}
	})

	t.Run("release frees the lease immediately", func(t *testing.T) {
		if err := repo.Release(ctx, "rule-scheduler", "worker-b"); err != nil {
			t.Fatalf("Release() error: %v", err)
		}
		ok, err := repo.Acquire(ctx, "rule-scheduler", "worker-c", ttl, t0.Add(5*time.Minute))
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if !ok {
			t.Error("Acquire() = false after release, want true")
		}
	})
}

func TestSQLiteRepository_Notifications(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := core.Notification{
		FamilyID:  "fam-1",
		Kind:      core.KindBudgetAlert,
		Title:     "Budget exceeded",
		Message:   "Spent 200.00 of 180.00",
		Payload:   `{"decision":"EXCEEDED"}`,
		CreatedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	second := first
	second.Title = "Budget warning"
	second.CreatedAt = time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	for _, n := range []*core.Notification{&first, &second} {
		if err := repo.SaveNotification(ctx, n); err != nil {
			t.Fatalf("SaveNotification() error: %v", err)
		}
	}

	got, err := repo.ListNotifications(ctx, "fam-1")
	if err != nil {
		t.Fatalf("ListNotifications() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListNotifications() returned %d, want 2", len(got))
	}
	if got[0].Title != "Budget warning" {
		t.Errorf("newest first ordering broken: got[0] = %q", got[0].Title)
	}
	if got[0].Read {
		t.Error("notification marked read on save")
	}
}
