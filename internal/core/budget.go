package core

import (
	"strings"
	"time"
)

const (
	PeriodMonth   PeriodType = "MONTH"
	PeriodQuarter PeriodType = "QUARTER"
	PeriodYear    PeriodType = "YEAR"
	PeriodCustom  PeriodType = "CUSTOM"
)

type (
	PeriodType string

	// Period is a budget's inclusive date range and its classification.
	Period struct {
		Type  PeriodType
		Start Date
		End   Date
	}

	CategoryBudget struct {
		CategoryID string
		LimitMinor int64
	}

	Budget struct {
		ID                string
		FamilyID          string
		Name              string
		Period            Period
		OverallLimitMinor int64
		// IncludeRecurring is stored for forward compatibility; the
		// aggregator counts all expense entries regardless of origin.
		IncludeRecurring  bool
		AlertThresholdPct int
		PerCategory       []CategoryBudget
		CreatedAt         time.Time
		UpdatedAt         time.Time
	}

	SpendFigure struct {
		LimitMinor int64
		SpentMinor int64
	}

	CategorySpend struct {
		CategoryID string
		LimitMinor int64
		SpentMinor int64
	}

	// BudgetSpendSnapshot is derived on demand from ledger entries and is
	// never persisted.
	BudgetSpendSnapshot struct {
		BudgetID   string
		Period     Period
		Overall    SpendFigure
		ByCategory []CategorySpend
	}
)

func (p Period) Validate() error {
	switch p.Type {
	case PeriodMonth, PeriodQuarter, PeriodYear, PeriodCustom:
	default:
		return ErrInvalidPeriod
	}
	if err := p.Start.Validate(); err != nil {
		return err
	}
	if err := p.End.Validate(); err != nil {
		return err
	}
	if p.End.Before(p.Start.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Bounds expands the inclusive calendar range to instant boundaries:
// start-of-day through end-of-day in UTC.
func (p Period) Bounds() (from, to time.Time) {
	from = time.Date(p.Start.Year(), p.Start.Time.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(p.End.Year(), p.End.Time.Month(), p.End.Day(), 23, 59, 59, 0, time.UTC)
	return from, to
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.FamilyID) == "" {
		return ErrEmptyFamily
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if b.OverallLimitMinor <= 0 {
		return ErrInvalidAmount
	}
	if b.AlertThresholdPct < 0 || b.AlertThresholdPct > 100 {
		return ErrInvalidThreshold
	}
	for _, cb := range b.PerCategory {
		if strings.TrimSpace(cb.CategoryID) == "" {
			return ErrEmptyCategory
		}
		if cb.LimitMinor <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}
