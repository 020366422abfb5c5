package services

import (
	"context"
	"log/slog"

	"famledger/internal/core"
)

// Evaluate classifies spend against a limit and an alert threshold using
// integer minor-unit math. EXCEEDED at or above the limit, WARNING at or
// above thresholdPct of it, NONE otherwise. A missing limit never alerts.
func Evaluate(spentMinor, limitMinor int64, thresholdPct int) core.AlertDecision {
	if limitMinor <= 0 {
		return core.AlertNone
	}
	if spentMinor >= limitMinor {
		return core.AlertExceeded
	}
	if spentMinor*100 >= limitMinor*int64(thresholdPct) {
		return core.AlertWarning
	}
	return core.AlertNone
}

// AlertDispatcher decides whether a snapshot warrants an alert and forwards
// it to the notification collaborator.
type AlertDispatcher struct {
	notifier Notifier
}

func NewAlertDispatcher(notifier Notifier) *AlertDispatcher {
	return &AlertDispatcher{notifier: notifier}
}

// DispatchBudgetAlert evaluates the snapshot's overall figure and, on
// WARNING or EXCEEDED, hands the alert to the notifier. Dispatch is fire and
// forget: a delivery failure is logged, never propagated. Evaluation is
// stateless; suppressing repeats per budget and period is left to consumers
// (an idempotency key of budget id, period and decision tier works).
func (d *AlertDispatcher) DispatchBudgetAlert(ctx context.Context, budget core.Budget, snapshot core.BudgetSpendSnapshot) core.AlertDecision {
	decision := Evaluate(snapshot.Overall.SpentMinor, snapshot.Overall.LimitMinor, budget.AlertThresholdPct)
	if decision == core.AlertNone {
		return decision
	}

	alert := core.BudgetAlert{
		BudgetID:    budget.ID,
		FamilyID:    budget.FamilyID,
		BudgetName:  budget.Name,
		Decision:    decision,
		PeriodStart: budget.Period.Start,
		PeriodEnd:   budget.Period.End,
		LimitMinor:  snapshot.Overall.LimitMinor,
		SpentMinor:  snapshot.Overall.SpentMinor,
		PctUsed:     pctUsed(snapshot.Overall.SpentMinor, snapshot.Overall.LimitMinor),
	}

	if d.notifier == nil {
		slog.WarnContext(ctx, "No notifier configured, dropping budget alert",
			"budget_id", budget.ID, "decision", decision)
		return decision
	}

	if err := d.notifier.DispatchBudgetAlert(ctx, alert); err != nil {
		slog.ErrorContext(ctx, "Failed to dispatch budget alert",
			"budget_id", budget.ID,
			"decision", decision,
			"error", err)
	} else {
		slog.InfoContext(ctx, "Dispatched budget alert",
			"budget_id", budget.ID,
			"decision", decision,
			"pct_used", alert.PctUsed)
	}
	return decision
}

func pctUsed(spent, limit int64) int {
	if limit <= 0 {
		return 0
	}
	return int(spent * 100 / limit)
}
