package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"famledger/internal/amqp"
	"famledger/internal/core"
)

// NotificationStore persists notification records produced from alert
// messages.
type NotificationStore interface {
	SaveNotification(ctx context.Context, notification *core.Notification) error
}

// AlertWorker turns budget alert messages into persisted notifications for
// the family to read.
type AlertWorker struct {
	notifications NotificationStore
}

func NewAlertWorker(notifications NotificationStore) *AlertWorker {
	return &AlertWorker{notifications: notifications}
}

// HandleAlertMessage processes a single budget alert message from AMQP.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	slog.InfoContext(ctx, "Processing budget alert message",
		"budget_id", msg.BudgetID,
		"family_id", msg.FamilyID,
		"decision", msg.Decision)

	if msg.Decision == core.AlertNone {
		slog.InfoContext(ctx, "Alert carries no decision, skipping",
			"budget_id", msg.BudgetID)
		return nil
	}

	payload, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	notification := core.Notification{
		FamilyID:  msg.FamilyID,
		Kind:      core.KindBudgetAlert,
		Title:     alertTitle(msg),
		Message:   alertBody(msg),
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}

	if err := w.notifications.SaveNotification(ctx, &notification); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	slog.InfoContext(ctx, "Saved budget alert notification",
		"notification_id", notification.ID,
		"budget_id", msg.BudgetID,
		"decision", msg.Decision)

	return nil
}

func alertTitle(msg *amqp.BudgetAlertMessage) string {
	switch msg.Decision {
	case core.AlertExceeded:
		return fmt.Sprintf("Budget %q exceeded", msg.BudgetName)
	case core.AlertWarning:
		return fmt.Sprintf("Budget %q nearing its limit", msg.BudgetName)
	default:
		return fmt.Sprintf("Budget %q update", msg.BudgetName)
	}
}

func alertBody(msg *amqp.BudgetAlertMessage) string {
	return fmt.Sprintf("Spent %s of %s (%d%%) between %s and %s.",
		formatMinor(msg.SpentMinor), formatMinor(msg.LimitMinor),
		msg.PctUsed, msg.PeriodStart, msg.PeriodEnd)
}

func formatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
