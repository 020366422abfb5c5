package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"famledger/internal/core"
)

type entryPayload struct {
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	CategoryID string `json:"category_id"`
	MemberID   string `json:"member_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
	Notes      string `json:"notes,omitempty"`
}

type entryView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	CategoryID  string `json:"category_id"`
	MemberID    string `json:"member_id,omitempty"`
	OccurredAt  string `json:"occurred_at"`
	Notes       string `json:"notes,omitempty"`
	RecurringID string `json:"recurring_id,omitempty"`
}

func (p entryPayload) toEntry(familyID string) (core.LedgerEntry, error) {
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("invalid amount: %w", err)
	}

	occurredAt, err := parseInstantOrDate(p.OccurredAt)
	if err != nil {
		return core.LedgerEntry{}, err
	}

	entry := core.LedgerEntry{
		FamilyID:   familyID,
		MemberID:   sanitizeInput(p.MemberID),
		Type:       core.TransactionType(p.Type),
		Amount:     core.MoneyAmount{Minor: amount, Currency: p.Currency},
		CategoryID: sanitizeInput(p.CategoryID),
		OccurredAt: occurredAt,
		Notes:      sanitizeInput(p.Notes),
	}
	if err := entry.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}
	return entry, nil
}

// parseInstantOrDate accepts RFC3339 instants and bare dates; a bare date
// lands at UTC midnight.
func parseInstantOrDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: occurred_at is required", core.ErrValidation)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid occurred_at %q, want RFC3339 or YYYY-MM-DD", core.ErrValidation, s)
}

func toEntryView(e core.LedgerEntry) entryView {
	return entryView{
		ID:          e.ID,
		Type:        string(e.Type),
		AmountMinor: e.Amount.Minor,
		Currency:    e.Amount.Currency,
		CategoryID:  e.CategoryID,
		MemberID:    e.MemberID,
		OccurredAt:  e.OccurredAt.UTC().Format(time.RFC3339),
		Notes:       e.Notes,
		RecurringID: e.RecurringID,
	}
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload entryPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	entry, err := payload.toEntry(famID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.SaveEntry(r.Context(), &entry); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateFamilySpend(famID)
	writeJSON(w, http.StatusCreated, toEntryView(entry))
}

// handleListEntries lists a family's entries inside an optional date range.
// The range defaults to the current calendar month.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		from = time.Date(d.Year(), d.Time.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		to = time.Date(d.Year(), d.Time.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
	}
	if to.Before(from) {
		writeError(w, core.ErrInvalidDateRange)
		return
	}

	entries, err := s.ledger.ListEntries(r.Context(), famID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.SoftDeleteEntry(r.Context(), r.PathValue("id"), famID); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateFamilySpend(famID)
	w.WriteHeader(http.StatusNoContent)
}
