// Package services provides the scheduling and aggregation engines:
// recurrence calculation, due-rule batch processing, budget spend
// aggregation and alert threshold evaluation.
package services

import (
	"context"
	"time"

	"famledger/internal/core"
)

// Ports for the collaborators the engines depend on. Stores are expected to
// enforce their own timeouts; the engines only propagate ctx.
type (
	RuleStore interface {
		// FindDueRules returns all non-paused rules with nextRunAt <= now,
		// across all families.
		FindDueRules(ctx context.Context, now time.Time) ([]core.RecurringRule, error)
		FindRulesByFamily(ctx context.Context, familyID string) ([]core.RecurringRule, error)
		FindRule(ctx context.Context, id, familyID string) (core.RecurringRule, error)
		SaveRule(ctx context.Context, rule *core.RecurringRule) error
		UpdateRule(ctx context.Context, rule core.RecurringRule) error
		// UpdateRuleSchedule persists only the scheduling state; all other
		// fields stay untouched.
		UpdateRuleSchedule(ctx context.Context, id string, nextRunAt time.Time, paused bool) error
		DeleteRule(ctx context.Context, id, familyID string) error
	}

	LedgerStore interface {
		SaveEntry(ctx context.Context, entry *core.LedgerEntry) error
		// FindExpensesInRange returns non-deleted EXPENSE entries with
		// occurredAt inside [from, to].
		FindExpensesInRange(ctx context.Context, familyID string, from, to time.Time) ([]core.LedgerEntry, error)
		FindExpensesByCategoryInRange(ctx context.Context, familyID, categoryID string, from, to time.Time) ([]core.LedgerEntry, error)
		ListEntries(ctx context.Context, familyID string, from, to time.Time) ([]core.LedgerEntry, error)
		SoftDeleteEntry(ctx context.Context, id, familyID string) error
	}

	BudgetStore interface {
		FindBudgetsByFamily(ctx context.Context, familyID string) ([]core.Budget, error)
		FindBudget(ctx context.Context, id, familyID string) (core.Budget, error)
		SaveBudget(ctx context.Context, budget *core.Budget) error
		UpdateBudget(ctx context.Context, budget core.Budget) error
		DeleteBudget(ctx context.Context, id, familyID string) error
	}

	// Notifier forwards a budget alert toward the notification transport.
	// Delivery is best effort; the dispatcher never propagates its errors.
	Notifier interface {
		DispatchBudgetAlert(ctx context.Context, alert core.BudgetAlert) error
	}

	// Lease serializes scheduler invocations across processes. Acquire
	// returns false when another owner currently holds the lease.
	Lease interface {
		Acquire(ctx context.Context, name, owner string, ttl time.Duration, now time.Time) (bool, error)
		Release(ctx context.Context, name, owner string) error
	}
)
