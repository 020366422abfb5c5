package core

import "time"

const (
	AlertNone     AlertDecision = "NONE"
	AlertWarning  AlertDecision = "WARNING"
	AlertExceeded AlertDecision = "EXCEEDED"
)

const KindBudgetAlert = "BUDGET_ALERT"

type (
	AlertDecision string

	// BudgetAlert is the payload handed to the notification collaborator
	// when a budget crosses its threshold.
	BudgetAlert struct {
		BudgetID    string
		FamilyID    string
		BudgetName  string
		Decision    AlertDecision
		PeriodStart Date
		PeriodEnd   Date
		LimitMinor  int64
		SpentMinor  int64
		PctUsed     int
	}

	// Notification is the persisted record of a delivered alert.
	Notification struct {
		ID        string
		FamilyID  string
		MemberID  string
		Kind      string
		Title     string
		Message   string
		Payload   string
		Read      bool
		CreatedAt time.Time
	}
)
