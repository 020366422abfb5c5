package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"famledger/internal/core"
)

// LedgerPoster creates ledger entries from a rule's fixed parameters.
type LedgerPoster struct {
	ledger LedgerStore
}

func NewLedgerPoster(ledger LedgerStore) *LedgerPoster {
	return &LedgerPoster{ledger: ledger}
}

// Post builds and persists the ledger entry for one due occurrence of the
// rule. Category existence is trusted from rule creation and not re-checked
// here; a since-deleted category leaves a dangling id that reporting layers
// render as "Unknown".
func (p *LedgerPoster) Post(ctx context.Context, rule core.RecurringRule, now time.Time) (core.LedgerEntry, error) {
	entry := core.LedgerEntry{
		FamilyID:    rule.FamilyID,
		MemberID:    rule.MemberID,
		Type:        rule.Type,
		Amount:      core.MoneyAmount{Minor: rule.AmountMinor, Currency: rule.Currency},
		CategoryID:  rule.CategoryID,
		OccurredAt:  now,
		Notes:       "Recurring: " + rule.Name,
		RecurringID: rule.ID,
	}
	if err := entry.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	if err := p.ledger.SaveEntry(ctx, &entry); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Posted ledger entry from recurring rule",
		"rule_id", rule.ID,
		"entry_id", entry.ID,
		"family_id", rule.FamilyID,
		"amount_minor", entry.Amount.Minor,
		"currency", entry.Amount.Currency)

	return entry, nil
}
