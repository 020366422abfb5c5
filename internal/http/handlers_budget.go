package http

import (
	"fmt"
	"net/http"

	"famledger/internal/core"
	applog "famledger/internal/log"
	"famledger/internal/services"
)

type periodPayload struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type categoryLimitPayload struct {
	CategoryID string `json:"category_id"`
	Limit      string `json:"limit"`
}

type budgetPayload struct {
	Name              string                 `json:"name"`
	Period            periodPayload          `json:"period"`
	OverallLimit      string                 `json:"overall_limit"`
	IncludeRecurring  bool                   `json:"include_recurring"`
	AlertThresholdPct int                    `json:"alert_threshold_pct"`
	PerCategory       []categoryLimitPayload `json:"per_category,omitempty"`
}

type categoryLimitView struct {
	CategoryID string `json:"category_id"`
	LimitMinor int64  `json:"limit_minor"`
}

type budgetView struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Period            periodPayload       `json:"period"`
	OverallLimitMinor int64               `json:"overall_limit_minor"`
	IncludeRecurring  bool                `json:"include_recurring"`
	AlertThresholdPct int                 `json:"alert_threshold_pct"`
	PerCategory       []categoryLimitView `json:"per_category,omitempty"`
}

type spendFigureView struct {
	LimitMinor int64 `json:"limit_minor"`
	SpentMinor int64 `json:"spent_minor"`
}

type categorySpendView struct {
	CategoryID string `json:"category_id"`
	LimitMinor int64  `json:"limit_minor"`
	SpentMinor int64  `json:"spent_minor"`
}

type spendView struct {
	BudgetID   string              `json:"budget_id"`
	Period     periodPayload       `json:"period"`
	Overall    spendFigureView     `json:"overall"`
	ByCategory []categorySpendView `json:"by_category"`
	Decision   core.AlertDecision  `json:"decision"`
}

func (p budgetPayload) toBudget(familyID string) (core.Budget, error) {
	start, err := parseDate(p.Period.Start)
	if err != nil {
		return core.Budget{}, err
	}
	end, err := parseDate(p.Period.End)
	if err != nil {
		return core.Budget{}, err
	}
	overall, err := parseAmount(p.OverallLimit)
	if err != nil {
		return core.Budget{}, fmt.Errorf("invalid overall limit: %w", err)
	}

	budget := core.Budget{
		FamilyID: familyID,
		Name:     sanitizeInput(p.Name),
		Period: core.Period{
			Type:  core.PeriodType(p.Period.Type),
			Start: start,
			End:   end,
		},
		OverallLimitMinor: overall,
		IncludeRecurring:  p.IncludeRecurring,
		AlertThresholdPct: p.AlertThresholdPct,
	}
	for _, cl := range p.PerCategory {
		limit, err := parseAmount(cl.Limit)
		if err != nil {
			return core.Budget{}, fmt.Errorf("invalid limit for category %s: %w", cl.CategoryID, err)
		}
		budget.PerCategory = append(budget.PerCategory, core.CategoryBudget{
			CategoryID: sanitizeInput(cl.CategoryID),
			LimitMinor: limit,
		})
	}
	if err := budget.Validate(); err != nil {
		return core.Budget{}, err
	}
	return budget, nil
}

func toBudgetView(b core.Budget) budgetView {
	view := budgetView{
		ID:   b.ID,
		Name: b.Name,
		Period: periodPayload{
			Type:  string(b.Period.Type),
			Start: formatDate(b.Period.Start),
			End:   formatDate(b.Period.End),
		},
		OverallLimitMinor: b.OverallLimitMinor,
		IncludeRecurring:  b.IncludeRecurring,
		AlertThresholdPct: b.AlertThresholdPct,
	}
	for _, cb := range b.PerCategory {
		view.PerCategory = append(view.PerCategory, categoryLimitView{
			CategoryID: cb.CategoryID,
			LimitMinor: cb.LimitMinor,
		})
	}
	return view
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	budgets, err := s.budgets.FindBudgetsByFamily(r.Context(), famID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload budgetPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	budget, err := payload.toBudget(famID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.budgets.SaveBudget(r.Context(), &budget); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateFamilySpend(famID)
	writeJSON(w, http.StatusCreated, toBudgetView(budget))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.budgets.FindBudget(r.Context(), r.PathValue("id"), famID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetView(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload budgetPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	budget, err := payload.toBudget(famID)
	if err != nil {
		writeError(w, err)
		return
	}
	budget.ID = r.PathValue("id")

	if err := s.budgets.UpdateBudget(r.Context(), budget); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateFamilySpend(famID)
	writeJSON(w, http.StatusOK, toBudgetView(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.budgets.DeleteBudget(r.Context(), r.PathValue("id"), famID); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateFamilySpend(famID)
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetSpend returns the current spend snapshot for a budget. Cache
// hits reuse the last aggregation; misses aggregate once per key even under
// concurrent requests, and a fresh aggregation also evaluates the alert
// threshold and dispatches when crossed.
func (s *Server) handleBudgetSpend(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	budgetID := r.PathValue("id")

	budget, err := s.budgets.FindBudget(r.Context(), budgetID, famID)
	if err != nil {
		writeError(w, err)
		return
	}

	key := s.spendCacheKey(famID, budgetID)
	if snapshot, found := s.spendCache.Get(key); found {
		decision := services.Evaluate(snapshot.Overall.SpentMinor, snapshot.Overall.LimitMinor, budget.AlertThresholdPct)
		writeJSON(w, http.StatusOK, toSpendView(snapshot, decision))
		return
	}

	result, err, _ := s.spendGroup.Do(key, func() (any, error) {
		snapshot, err := s.aggregator.SpendStatus(r.Context(), budgetID, famID)
		if err != nil {
			return nil, err
		}
		s.spendCache.Set(key, snapshot)
		return snapshot, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	snapshot := result.(core.BudgetSpendSnapshot)

	decision := s.dispatcher.DispatchBudgetAlert(r.Context(), budget, snapshot)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Spend snapshot aggregated",
		applog.FieldBudgetID, budgetID,
		applog.FieldFamilyID, famID,
		applog.FieldDecision, decision)
	writeJSON(w, http.StatusOK, toSpendView(snapshot, decision))
}

func (s *Server) handleExportBudget(w http.ResponseWriter, r *http.Request) {
	famID, err := familyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "spreadsheet export is not configured"})
		return
	}
	budgetID := r.PathValue("id")

	budget, err := s.budgets.FindBudget(r.Context(), budgetID, famID)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := s.aggregator.SpendStatus(r.Context(), budgetID, famID)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := s.exporter.ExportSpendReport(r.Context(), budget, snapshot)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrPersistence, err))
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Spend report exported",
		applog.FieldBudgetID, budgetID,
		applog.FieldOperation, applog.OpExport,
		"rows", rows)
	writeJSON(w, http.StatusOK, map[string]int{"rows": rows})
}

func toSpendView(snapshot core.BudgetSpendSnapshot, decision core.AlertDecision) spendView {
	view := spendView{
		BudgetID: snapshot.BudgetID,
		Period: periodPayload{
			Type:  string(snapshot.Period.Type),
			Start: formatDate(snapshot.Period.Start),
			End:   formatDate(snapshot.Period.End),
		},
		Overall: spendFigureView{
			LimitMinor: snapshot.Overall.LimitMinor,
			SpentMinor: snapshot.Overall.SpentMinor,
		},
		Decision: decision,
	}
	for _, cs := range snapshot.ByCategory {
		view.ByCategory = append(view.ByCategory, categorySpendView{
			CategoryID: cs.CategoryID,
			LimitMinor: cs.LimitMinor,
			SpentMinor: cs.SpentMinor,
		})
	}
	return view
}
