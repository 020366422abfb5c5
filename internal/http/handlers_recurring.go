package http

import (
	"fmt"
	"net/http"
	"time"

	"famledger/internal/core"
	"famledger/internal/services"
)

type frequencyPayload struct {
	Unit       string `json:"unit"`
	Interval   int    `json:"interval"`
	ByMonthDay []int  `json:"by_month_day,omitempty"`
}

type rulePayload struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Amount     string           `json:"amount"`
	Currency   string           `json:"currency"`
	CategoryID string           `json:"category_id"`
	MemberID   string           `json:"member_id,omitempty"`
	Frequency  frequencyPayload `json:"frequency"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date,omitempty"`
	Timezone   string           `json:"timezone"`
	Paused     bool             `json:"paused,omitempty"`
}

type ruleView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	AmountMinor int64            `json:"amount_minor"`
	Currency    string           `json:"currency"`
	CategoryID  string           `json:"category_id"`
	MemberID    string           `json:"member_id,omitempty"`
	Frequency   frequencyPayload `json:"frequency"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date,omitempty"`
	Timezone    string           `json:"timezone"`
	NextRunAt   string           `json:"next_run_at,omitempty"`
	Paused      bool             `json:"paused"`
}

type ruleFailureView struct {
	RuleID string `json:"rule_id"`
	Error  string `json:"error"`
}

type batchReportView struct {
	Succeeded []string          `json:"succeeded"`
	Paused    []string          `json:"paused"`
	Failed    []ruleFailureView `json:"failed"`
}

func (p rulePayload) toRule(familyID string) (core.RecurringRule, error) {
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("invalid amount: %w", err)
	}
	start, err := parseDate(p.StartDate)
	if err != nil {
		return core.RecurringRule{}, err
	}
	var end core.Date
	if p.EndDate != "" {
		end, err = parseDate(p.EndDate)
		if err != nil {
			return core.RecurringRule{}, err
		}
	}

	rule := core.RecurringRule{
		FamilyID:    familyID,
		Name:        sanitizeInput(p.Name),
		Type:        core.TransactionType(p.Type),
		AmountMinor: amount,
		Currency:    p.Currency,
		CategoryID:  sanitizeInput(p.CategoryID),
		MemberID:    sanitizeInput(p.MemberID),
		Frequency: core.Frequency{
			Unit:       core.FrequencyUnit(p.Frequency.Unit),
			Interval:   p.Frequency.Interval,
			ByMonthDay: p.Frequency.ByMonthDay,
		},
		StartDate: start,
		EndDate:   end,
		Timezone:  p.Timezone,
		Paused:    p.Paused,
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	return rule, nil
}

func toRuleView(r core.RecurringRule) ruleView {
	view := ruleView{
		ID:          r.ID,
		Name:        r.Name,
		Type:        string(r.Type),
		AmountMinor: r.AmountMinor,
		Currency:    r.Currency,
		CategoryID:  r.CategoryID,
		MemberID:    r.MemberID,
		Frequency: frequencyPayload{
			Unit:       string(r.Frequency.Unit),
			Interval:   r.Frequency.Interval,
			ByMonthDay: r.Frequency.ByMonthDay,
		},
		StartDate: formatDate(r.StartDate),
		EndDate:   formatDate(r.EndDate),
		Timezone:  r.Timezone,
		Paused:    r.Paused,
	}
	if !r.NextRunAt.IsZero() {
		view.NextRunAt = r.NextRunAt.UTC().Format(time.RFC3339)
	}
	return view
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rules, err := s.rules.FindRulesByFamily(r.Context(), famID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, toRuleView(rule))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload rulePayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	rule, err := payload.toRule(famID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Schedule the first occurrence up front so the rule is picked up by
	// the next scheduler pass. A rule whose whole range is already in the
	// past is rejected rather than stored dead.
	next, err := services.NextRun(rule, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	rule.NextRunAt = next

	if err := s.rules.SaveRule(r.Context(), &rule); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRuleView(rule))
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rule, err := s.rules.FindRule(r.Context(), r.PathValue("id"), famID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleView(rule))
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload rulePayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	rule, err := payload.toRule(famID)
	if err != nil {
		writeError(w, err)
		return
	}
	rule.ID = r.PathValue("id")

	// Frequency or date changes reset the schedule from today.
	next, err := services.NextRun(rule, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	rule.NextRunAt = next

	if err := s.rules.UpdateRule(r.Context(), rule); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRuleView(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.rules.DeleteRule(r.Context(), r.PathValue("id"), famID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunDueRules triggers a scheduler pass immediately and reports the
// per-rule outcome. A pass already running elsewhere answers 409.
func (s *Server) handleRunDueRules(w http.ResponseWriter, r *http.Request) {
	result, err := s.scheduler.RunDueRules(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	// Posted entries change spend figures across families.
	s.spendCache.DeletePrefix("")

	report := batchReportView{
		Succeeded: result.Succeeded,
		Paused:    result.Paused,
		Failed:    make([]ruleFailureView, 0, len(result.Failed)),
	}
	for _, f := range result.Failed {
		report.Failed = append(report.Failed, ruleFailureView{RuleID: f.RuleID, Error: f.Err.Error()})
	}
	if report.Succeeded == nil {
		report.Succeeded = []string{}
	}
	if report.Paused == nil {
		report.Paused = []string{}
	}

	writeJSON(w, http.StatusOK, report)
}
