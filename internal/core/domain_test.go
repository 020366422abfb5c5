package core

import (
	"errors"
	"testing"
	"time"
)

func validRule() RecurringRule {
	return RecurringRule{
		FamilyID:    "fam-1",
		Name:        "Rent",
		Type:        Expense,
		AmountMinor: 90000,
		Currency:    "EUR",
		CategoryID:  "cat-housing",
		Frequency:   Frequency{Unit: Monthly, Interval: 1},
		StartDate:   NewDate(2026, 1, 1),
		Timezone:    "Europe/Rome",
	}
}

func TestRecurringRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RecurringRule)
		wantErr error
	}{
		{name: "valid rule", mutate: func(r *RecurringRule) {}},
		{name: "open ended rule", mutate: func(r *RecurringRule) { r.EndDate = Date{} }},
		{name: "missing family", mutate: func(r *RecurringRule) { r.FamilyID = "  " }, wantErr: ErrEmptyFamily},
		{name: "missing name", mutate: func(r *RecurringRule) { r.Name = "" }, wantErr: ErrEmptyName},
		{name: "unknown type", mutate: func(r *RecurringRule) { r.Type = "TRANSFER" }, wantErr: ErrInvalidType},
		{name: "zero amount", mutate: func(r *RecurringRule) { r.AmountMinor = 0 }, wantErr: ErrInvalidAmount},
		{name: "missing category", mutate: func(r *RecurringRule) { r.CategoryID = "" }, wantErr: ErrEmptyCategory},
		{name: "missing start date", mutate: func(r *RecurringRule) { r.StartDate = Date{} }, wantErr: ErrEmptyDate},
		{
			name: "end before start",
			mutate: func(r *RecurringRule) {
				r.EndDate = NewDate(2025, 12, 1)
			},
			wantErr: ErrInvalidDateRange,
		},
		{name: "bad timezone", mutate: func(r *RecurringRule) { r.Timezone = "Narnia/Lantern" }, wantErr: ErrInvalidTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(&rule)
			err := rule.Validate()
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

func TestFrequency_Validate(t *testing.T) {
	tests := []struct {
		name      string
		frequency Frequency
		wantErr   error
	}{
		{name: "weekly", frequency: Frequency{Unit: Weekly, Interval: 1}},
		{name: "monthly with anchors", frequency: Frequency{Unit: Monthly, Interval: 1, ByMonthDay: []int{1, 15, 31}}},
		{name: "yearly every two years", frequency: Frequency{Unit: Yearly, Interval: 2}},
		{name: "unknown unit", frequency: Frequency{Unit: "DAILY", Interval: 1}, wantErr: ErrInvalidFrequency},
		{name: "zero interval", frequency: Frequency{Unit: Weekly, Interval: 0}, wantErr: ErrInvalidInterval},
		{
			name:      "month day anchors on a weekly rule",
			frequency: Frequency{Unit: Weekly, Interval: 1, ByMonthDay: []int{1}},
			wantErr:   ErrInvalidMonthDay,
		},
		{
			name:      "month day out of range",
			frequency: Frequency{Unit: Monthly, Interval: 1, ByMonthDay: []int{32}},
			wantErr:   ErrInvalidMonthDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frequency.Validate()
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

func TestLedgerEntry_Validate(t *testing.T) {
	valid := LedgerEntry{
		FamilyID:   "fam-1",
		Type:       Expense,
		Amount:     MoneyAmount{Minor: 1500, Currency: "EUR"},
		CategoryID: "cat-food",
		OccurredAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	missingDate := valid
	missingDate.OccurredAt = time.Time{}
	if err := missingDate.Validate(); !errors.Is(err, ErrEmptyDate) {
		t.Errorf("Validate() error = %v, want %v", err, ErrEmptyDate)
	}

	income := valid
	income.Type = Income
	if err := income.Validate(); err != nil {
		t.Errorf("Validate() unexpected error for income: %v", err)
	}
}
