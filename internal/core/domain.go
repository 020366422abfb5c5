package core

import (
	"strings"
	"time"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"
)

const (
	Weekly  FrequencyUnit = "WEEKLY"
	Monthly FrequencyUnit = "MONTHLY"
	Yearly  FrequencyUnit = "YEARLY"
)

type (
	TransactionType string

	FrequencyUnit string

	// Date is a calendar date. The time portion is always local midnight;
	// the zone it is interpreted in depends on the owning record.
	Date struct {
		time.Time
	}

	MoneyAmount struct {
		Minor    int64
		Currency string
	}

	// Frequency describes how often a recurring rule fires. ByMonthDay is
	// only meaningful for monthly rules; when empty, the start date's day
	// of month anchors the occurrence.
	Frequency struct {
		Unit       FrequencyUnit
		Interval   int
		ByMonthDay []int
	}

	RecurringRule struct {
		ID          string
		FamilyID    string
		Name        string
		Type        TransactionType
		AmountMinor int64
		Currency    string
		CategoryID  string
		MemberID    string
		Frequency   Frequency
		StartDate   Date
		EndDate     Date // zero when open-ended
		Timezone    string
		NextRunAt   time.Time // zero when the rule has never been scheduled
		Paused      bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	LedgerEntry struct {
		ID          string
		FamilyID    string
		MemberID    string
		Type        TransactionType
		Amount      MoneyAmount
		CategoryID  string
		OccurredAt  time.Time
		Notes       string
		RecurringID string // back-reference to the generating rule, if any
		CreatedAt   time.Time
		UpdatedAt   time.Time
		DeletedAt   *time.Time
	}
)

// NewDate creates a Date from year, month and day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// IsEmpty reports whether the date is unset (used for optional dates).
func (d Date) IsEmpty() bool { return d.IsZero() }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrEmptyDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidType
	}
}

func (m MoneyAmount) Validate() error {
	if m.Minor <= 0 {
		return ErrInvalidAmount
	}
	if len(m.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

func (f Frequency) Validate() error {
	switch f.Unit {
	case Weekly, Monthly, Yearly:
	default:
		return ErrInvalidFrequency
	}
	if f.Interval < 1 {
		return ErrInvalidInterval
	}
	if len(f.ByMonthDay) > 0 && f.Unit != Monthly {
		return ErrInvalidMonthDay
	}
	for _, d := range f.ByMonthDay {
		if d < 1 || d > 31 {
			return ErrInvalidMonthDay
		}
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.FamilyID) == "" {
		return ErrEmptyFamily
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := (MoneyAmount{Minor: r.AmountMinor, Currency: r.Currency}).Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if err := r.StartDate.Validate(); err != nil {
		return err
	}
	if !r.EndDate.IsEmpty() && r.EndDate.Before(r.StartDate.Time) {
		return ErrInvalidDateRange
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

func (e LedgerEntry) Validate() error {
	if strings.TrimSpace(e.FamilyID) == "" {
		return ErrEmptyFamily
	}
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if e.OccurredAt.IsZero() {
		return ErrEmptyDate
	}
	return nil
}
