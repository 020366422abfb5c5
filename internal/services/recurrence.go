package services

import (
	"fmt"
	"sort"
	"time"

	"famledger/internal/core"
)

// maxOccurrenceScan bounds the candidate search for monthly and yearly
// rules. 1200 months / years is far beyond any plausible rule horizon.
const maxOccurrenceScan = 1200

// NextRun computes the next eligible run instant for a recurring rule. It is
// a pure function: the same rule state and asOf always yield the same result.
//
// All date math happens in the rule's timezone so "the 1st of the month"
// means local midnight there. Occurrences are anchored at the start date and
// stepped by whole intervals; the calculator jumps straight to the first
// qualifying occurrence rather than enumerating every period missed during
// downtime, so at most one posting is ever produced per invocation.
//
// When the rule carries a current nextRunAt the result is the first
// occurrence strictly after that occurrence's local date, which is what makes
// a recompute right after posting advance exactly one period. A rule that has
// never been scheduled gets the first occurrence on or after asOf's date, or
// the start date itself when that is still in the future.
//
// Returns core.ErrRuleExhausted when the computed occurrence falls past the
// rule's end date.
func NextRun(rule core.RecurringRule, asOf time.Time) (time.Time, error) {
	if err := rule.Frequency.Validate(); err != nil {
		return time.Time{}, err
	}
	if rule.StartDate.IsEmpty() {
		return time.Time{}, core.ErrEmptyDate
	}
	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidTimezone, rule.Timezone)
	}

	start := utcDate(rule.StartDate.Year(), rule.StartDate.Time.Month(), rule.StartDate.Day())
	today := utcDate(asOf.In(loc).Date())

	// Earliest admissible occurrence date.
	floor := today
	if !rule.NextRunAt.IsZero() {
		prev := utcDate(rule.NextRunAt.In(loc).Date())
		if after := prev.AddDate(0, 0, 1); after.After(floor) {
			floor = after
		}
	}
	if start.After(floor) {
		floor = start
	}

	var next time.Time
	switch rule.Frequency.Unit {
	case core.Weekly:
		next = nextWeekly(start, floor, rule.Frequency.Interval)
	case core.Monthly:
		next, err = nextMonthly(start, floor, rule.Frequency.Interval, rule.Frequency.ByMonthDay)
	case core.Yearly:
		next, err = nextYearly(start, floor, rule.Frequency.Interval)
	}
	if err != nil {
		return time.Time{}, err
	}

	if !rule.EndDate.IsEmpty() {
		end := utcDate(rule.EndDate.Year(), rule.EndDate.Time.Month(), rule.EndDate.Day())
		if next.After(end) {
			return time.Time{}, core.ErrRuleExhausted
		}
	}

	// Local midnight of the computed date, as an instant in the rule's zone.
	y, m, d := next.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// utcDate normalizes a calendar date to UTC midnight so day arithmetic is
// exact regardless of DST in the rule's zone.
func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func nextWeekly(start, floor time.Time, interval int) time.Time {
	step := 7 * interval
	days := int(floor.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	periods := (days + step - 1) / step
	return start.AddDate(0, 0, periods*step)
}

func nextMonthly(start, floor time.Time, interval int, byMonthDay []int) (time.Time, error) {
	anchors := append([]int(nil), byMonthDay...)
	if len(anchors) == 0 {
		anchors = []int{start.Day()}
	}
	sort.Ints(anchors)

	startIdx := start.Year()*12 + int(start.Month()) - 1
	floorIdx := floor.Year()*12 + int(floor.Month()) - 1
	k := (floorIdx - startIdx) / interval
	if k < 0 {
		k = 0
	}

	for i := 0; i < maxOccurrenceScan; i, k = i+1, k+1 {
		monthIdx := startIdx + k*interval
		year, month := monthIdx/12, time.Month(monthIdx%12+1)
		last := daysInMonth(year, month)
		for _, anchor := range anchors {
			day := anchor
			if day > last {
				// Anchor past the month's length clamps to its last day,
				// e.g. 31 in a 30-day month runs on the 30th.
				day = last
			}
			cand := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if !cand.Before(floor) {
				return cand, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: no monthly occurrence within scan window", core.ErrValidation)
}

func nextYearly(start, floor time.Time, interval int) (time.Time, error) {
	k := (floor.Year() - start.Year()) / interval
	if k < 0 {
		k = 0
	}
	for i := 0; i < maxOccurrenceScan; i, k = i+1, k+1 {
		year := start.Year() + k*interval
		day := start.Day()
		if last := daysInMonth(year, start.Month()); day > last {
			day = last // Feb 29 anchors clamp to Feb 28 off leap years
		}
		cand := time.Date(year, start.Month(), day, 0, 0, 0, 0, time.UTC)
		if !cand.Before(floor) {
			return cand, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no yearly occurrence within scan window", core.ErrValidation)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
