// Package core holds the shared domain model: recurring rules, ledger
// entries, budgets, money handling and the error taxonomy the rest of the
// module classifies against.
package core

import (
	"errors"
	"fmt"
)

// Base classes of the error taxonomy. Specific sentinels wrap one of these
// so callers can classify with errors.Is without matching exact messages.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidCurrency  = fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	ErrInvalidType      = fmt.Errorf("%w: unknown transaction type", ErrValidation)
	ErrInvalidFrequency = fmt.Errorf("%w: unknown frequency unit", ErrValidation)
	ErrInvalidInterval  = fmt.Errorf("%w: interval must be at least 1", ErrValidation)
	ErrInvalidMonthDay  = fmt.Errorf("%w: byMonthDay values must be 1-31 on monthly rules", ErrValidation)
	ErrInvalidTimezone  = fmt.Errorf("%w: unknown timezone identifier", ErrValidation)
	ErrInvalidDateRange = fmt.Errorf("%w: end date before start date", ErrValidation)
	ErrInvalidThreshold = fmt.Errorf("%w: alert threshold must be 0-100", ErrValidation)
	ErrInvalidPeriod    = fmt.Errorf("%w: unknown period type", ErrValidation)
	ErrEmptyDate        = fmt.Errorf("%w: date is required", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmptyFamily      = fmt.Errorf("%w: family id is required", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: category id is required", ErrValidation)
)

// ErrRuleExhausted marks a rule whose next occurrence falls past its end
// date. It is a scheduling outcome, not a failure class.
var ErrRuleExhausted = errors.New("recurring rule exhausted")
