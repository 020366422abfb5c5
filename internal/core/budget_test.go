package core

import (
	"errors"
	"testing"
	"time"
)

func validBudget() Budget {
	return Budget{
		FamilyID: "fam-1",
		Name:     "September",
		Period: Period{
			Type:  PeriodMonth,
			Start: NewDate(2026, 9, 1),
			End:   NewDate(2026, 9, 30),
		},
		OverallLimitMinor: 18000,
		AlertThresholdPct: 80,
		PerCategory: []CategoryBudget{
			{CategoryID: "cat-food", LimitMinor: 10000},
		},
	}
}

func TestBudget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Budget)
		wantErr error
	}{
		{name: "valid budget", mutate: func(b *Budget) {}},
		{name: "no category limits", mutate: func(b *Budget) { b.PerCategory = nil }},
		{name: "threshold disabled at zero", mutate: func(b *Budget) { b.AlertThresholdPct = 0 }},
		{name: "missing family", mutate: func(b *Budget) { b.FamilyID = "" }, wantErr: ErrEmptyFamily},
		{name: "missing name", mutate: func(b *Budget) { b.Name = " " }, wantErr: ErrEmptyName},
		{name: "unknown period type", mutate: func(b *Budget) { b.Period.Type = "WEEK" }, wantErr: ErrInvalidPeriod},
		{
			name:    "period end before start",
			mutate:  func(b *Budget) { b.Period.End = NewDate(2026, 8, 1) },
			wantErr: ErrInvalidDateRange,
		},
		{name: "zero limit", mutate: func(b *Budget) { b.OverallLimitMinor = 0 }, wantErr: ErrInvalidAmount},
		{name: "threshold above 100", mutate: func(b *Budget) { b.AlertThresholdPct = 150 }, wantErr: ErrInvalidThreshold},
		{
			name:    "category limit without category",
			mutate:  func(b *Budget) { b.PerCategory[0].CategoryID = "" },
			wantErr: ErrEmptyCategory,
		},
		{
			name:    "negative category limit",
			mutate:  func(b *Budget) { b.PerCategory[0].LimitMinor = -5 },
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := validBudget()
			tt.mutate(&budget)
			err := budget.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPeriod_Bounds(t *testing.T) {
	period := Period{
		Type:  PeriodMonth,
		Start: NewDate(2026, 9, 1),
		End:   NewDate(2026, 9, 30),
	}

	from, to := period.Bounds()
	wantFrom := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("Bounds() from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("Bounds() to = %v, want %v", to, wantTo)
	}
}
