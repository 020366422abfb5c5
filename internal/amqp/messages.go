package amqp

import (
	"encoding/json"
	"time"

	"famledger/internal/core"
)

// BudgetAlertMessage is the wire form of a budget alert. The alert worker
// consumes these and persists a notification record for the family.
type BudgetAlertMessage struct {
	BudgetID    string             `json:"budget_id"`
	FamilyID    string             `json:"family_id"`
	BudgetName  string             `json:"budget_name"`
	Decision    core.AlertDecision `json:"decision"`
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
	LimitMinor  int64              `json:"limit_minor"`
	SpentMinor  int64              `json:"spent_minor"`
	PctUsed     int                `json:"pct_used"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewBudgetAlertMessage converts a domain alert to its wire form.
func NewBudgetAlertMessage(alert core.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		BudgetID:    alert.BudgetID,
		FamilyID:    alert.FamilyID,
		BudgetName:  alert.BudgetName,
		Decision:    alert.Decision,
		PeriodStart: alert.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   alert.PeriodEnd.Format("2006-01-02"),
		LimitMinor:  alert.LimitMinor,
		SpentMinor:  alert.SpentMinor,
		PctUsed:     alert.PctUsed,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
