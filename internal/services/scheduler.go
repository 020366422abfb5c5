package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"famledger/internal/core"
)

// ErrLeaseHeld is returned when another scheduler instance holds the run
// lease; the caller should simply try again on its next trigger.
var ErrLeaseHeld = errors.New("scheduler lease held by another owner")

// SchedulerLeaseName is the lease key all scheduler instances contend on.
const SchedulerLeaseName = "rule-scheduler"

type (
	RuleFailure struct {
		RuleID string
		Err    error
	}

	// BatchResult is the terminal report of one scheduler invocation.
	// Per-rule failures are listed alongside successes; a non-empty Failed
	// slice is not a fatal error for the invocation.
	BatchResult struct {
		Succeeded []string
		Paused    []string
		Failed    []RuleFailure
	}
)

func (b BatchResult) FailureCount() int { return len(b.Failed) }

// Scheduler selects due recurring rules and posts one ledger entry per rule,
// isolating each rule's failure from its siblings.
type Scheduler struct {
	rules    RuleStore
	poster   *LedgerPoster
	lease    Lease // optional; nil disables cross-process exclusion
	leaseTTL time.Duration
	owner    string
}

func NewScheduler(rules RuleStore, poster *LedgerPoster) *Scheduler {
	return &Scheduler{rules: rules, poster: poster}
}

// WithLease makes RunDueRules contend on a cross-process lease before
// selecting due rules. Overlapping triggers without a lease can race on the
// same due rule and double-post.
func (s *Scheduler) WithLease(lease Lease, owner string, ttl time.Duration) *Scheduler {
	s.lease = lease
	s.owner = owner
	s.leaseTTL = ttl
	return s
}

// RunDueRules processes every non-paused rule with nextRunAt <= now. Rules
// are handled sequentially; a failing rule is recorded and the batch moves
// on, leaving that rule's nextRunAt untouched so it is retried on the next
// invocation (at-least-once semantics).
func (s *Scheduler) RunDueRules(ctx context.Context, now time.Time) (BatchResult, error) {
	var result BatchResult

	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx, SchedulerLeaseName, s.owner, s.leaseTTL, now)
		if err != nil {
			return result, fmt.Errorf("acquire scheduler lease: %w", err)
		}
		if !ok {
			return result, ErrLeaseHeld
		}
		defer func() {
			if err := s.lease.Release(ctx, SchedulerLeaseName, s.owner); err != nil {
				slog.WarnContext(ctx, "Failed to release scheduler lease", "owner", s.owner, "error", err)
			}
		}()
	}

	due, err := s.rules.FindDueRules(ctx, now)
	if err != nil {
		return result, fmt.Errorf("%w: find due rules: %v", core.ErrPersistence, err)
	}

	slog.InfoContext(ctx, "Processing due recurring rules",
		"due", len(due),
		"as_of", now.Format(time.RFC3339))

	for _, rule := range due {
		s.processRule(ctx, rule, now, &result)
	}

	slog.InfoContext(ctx, "Recurring rule batch complete",
		"succeeded", len(result.Succeeded),
		"paused", len(result.Paused),
		"failed", len(result.Failed))

	return result, nil
}

func (s *Scheduler) processRule(ctx context.Context, rule core.RecurringRule, now time.Time, result *BatchResult) {
	// A due occurrence already past the end date is exhausted: pause the
	// rule without posting.
	if exhausted, err := s.dueAfterEnd(rule); err != nil {
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: err})
		return
	} else if exhausted {
		s.pauseRule(ctx, rule, result)
		return
	}

	if err := rule.Validate(); err != nil {
		slog.ErrorContext(ctx, "Skipping invalid recurring rule",
			"rule_id", rule.ID, "error", err)
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: err})
		return
	}

	if _, err := s.poster.Post(ctx, rule, now); err != nil {
		slog.ErrorContext(ctx, "Failed to post entry for recurring rule",
			"rule_id", rule.ID, "error", err)
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: err})
		return
	}

	next, err := NextRun(rule, now)
	switch {
	case errors.Is(err, core.ErrRuleExhausted):
		// Posted the final occurrence; park the rule.
		result.Succeeded = append(result.Succeeded, rule.ID)
		if perr := s.rules.UpdateRuleSchedule(ctx, rule.ID, rule.NextRunAt, true); perr != nil {
			// The entry is posted; until the pause persists the rule stays
			// due and retry can double-post (at-least-once).
			slog.ErrorContext(ctx, "Failed to pause exhausted rule after final post",
				"rule_id", rule.ID, "error", perr)
			return
		}
		slog.InfoContext(ctx, "Recurring rule exhausted after final post, paused", "rule_id", rule.ID)
		result.Paused = append(result.Paused, rule.ID)
		return
	case err != nil:
		// Entry is posted but the schedule could not advance; the rule
		// stays due and may double-post on retry.
		slog.ErrorContext(ctx, "Failed to compute next run after posting",
			"rule_id", rule.ID, "error", err)
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: err})
		return
	}

	if err := s.rules.UpdateRuleSchedule(ctx, rule.ID, next, false); err != nil {
		slog.ErrorContext(ctx, "Failed to persist next run",
			"rule_id", rule.ID, "error", err)
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: fmt.Errorf("%w: %v", core.ErrPersistence, err)})
		return
	}

	slog.InfoContext(ctx, "Recurring rule advanced",
		"rule_id", rule.ID,
		"next_run_at", next.Format(time.RFC3339))
	result.Succeeded = append(result.Succeeded, rule.ID)
}

// dueAfterEnd reports whether the rule's current due date falls past its end
// date in the rule's timezone.
func (s *Scheduler) dueAfterEnd(rule core.RecurringRule) (bool, error) {
	if rule.EndDate.IsEmpty() || rule.NextRunAt.IsZero() {
		return false, nil
	}
	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return false, fmt.Errorf("%w: %q", core.ErrInvalidTimezone, rule.Timezone)
	}
	y, m, d := rule.NextRunAt.In(loc).Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := utcDate(rule.EndDate.Year(), rule.EndDate.Time.Month(), rule.EndDate.Day())
	return due.After(end), nil
}

func (s *Scheduler) pauseRule(ctx context.Context, rule core.RecurringRule, result *BatchResult) {
	if err := s.rules.UpdateRuleSchedule(ctx, rule.ID, rule.NextRunAt, true); err != nil {
		slog.ErrorContext(ctx, "Failed to pause exhausted rule",
			"rule_id", rule.ID, "error", err)
		result.Failed = append(result.Failed, RuleFailure{RuleID: rule.ID, Err: fmt.Errorf("%w: %v", core.ErrPersistence, err)})
		return
	}
	slog.InfoContext(ctx, "Recurring rule exhausted, paused", "rule_id", rule.ID)
	result.Paused = append(result.Paused, rule.ID)
}
